package codegen

import (
	"github.com/agentgraph/agentgraph/internal/core/graph"
)

// Ordering selects how agent definitions are sequenced.
type Ordering string

const (
	// OrderTopological defines every handoff target before the agent that
	// references it. Agents on a handoff cycle are released earliest first
	// and the handoffs that would point forward are wired after all agents
	// exist.
	OrderTopological Ordering = "topological"
	// OrderTiered emits agents without handoffs first, then the rest, each
	// tier in encounter order. Deeper chains can still reference an agent
	// before it is defined; such references are emitted as is.
	OrderTiered Ordering = "tiered"
)

// agentPlan is the definition order plus the handoffs that must be wired
// after every agent has been defined.
type agentPlan struct {
	order    []*graph.Node
	deferred map[*graph.Node][]*graph.Node // agent -> handoff targets wired late
	cyclic   []*graph.Node            // agents released while on a cycle
}

func planAgents(g *graph.Graph, agents []*graph.Node, ordering Ordering) agentPlan {
	if ordering == OrderTiered {
		return planTiered(g, agents)
	}
	return planTopological(g, agents)
}

func planTiered(g *graph.Graph, agents []*graph.Node) agentPlan {
	var leaves, rest []*graph.Node
	for _, a := range agents {
		if len(g.Related(a, graph.RelHandoff)) == 0 {
			leaves = append(leaves, a)
		} else {
			rest = append(rest, a)
		}
	}
	return agentPlan{order: append(leaves, rest...)}
}

func planTopological(g *graph.Graph, agents []*graph.Node) agentPlan {
	plan := agentPlan{deferred: make(map[*graph.Node][]*graph.Node)}
	deps := make(map[*graph.Node][]*graph.Node, len(agents))
	for _, a := range agents {
		deps[a] = g.Related(a, graph.RelHandoff)
	}
	placed := make(map[*graph.Node]bool, len(agents))

	ready := func(a *graph.Node) bool {
		for _, d := range deps[a] {
			if !placed[d] {
				return false
			}
		}
		return true
	}

	for len(plan.order) < len(agents) {
		var next *graph.Node
		for _, a := range agents {
			if !placed[a] && ready(a) {
				next = a
				break
			}
		}
		if next == nil {
			// every remaining agent waits on another: break the earliest
			// cycle and wire the pending handoffs of that agent late
			for _, a := range agents {
				if !placed[a] && onCycle(a, deps, placed) {
					next = a
					break
				}
			}
			if next == nil {
				for _, a := range agents {
					if !placed[a] {
						next = a
						break
					}
				}
			}
			for _, d := range deps[next] {
				if !placed[d] {
					plan.deferred[next] = append(plan.deferred[next], d)
				}
			}
			plan.cyclic = append(plan.cyclic, next)
		}
		placed[next] = true
		plan.order = append(plan.order, next)
	}
	return plan
}

// onCycle reports whether start can reach itself through unplaced agents.
func onCycle(start *graph.Node, deps map[*graph.Node][]*graph.Node, placed map[*graph.Node]bool) bool {
	seen := make(map[*graph.Node]bool)
	stack := append([]*graph.Node(nil), deps[start]...)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n == start {
			return true
		}
		if placed[n] || seen[n] {
			continue
		}
		seen[n] = true
		stack = append(stack, deps[n]...)
	}
	return false
}
