package validation

import (
	"fmt"
	"strings"

	"github.com/agentgraph/agentgraph/internal/core/graph"
	"github.com/agentgraph/agentgraph/internal/core/project"
)

// ValidateDocument checks a project document's metadata and graph.
func ValidateDocument(doc *project.Document) ValidationErrors {
	if doc == nil {
		return ValidationErrors{{Code: CodeInvalid, Message: "document is nil"}}
	}
	errs := Struct(doc.Metadata, "metadata")
	return append(errs, ValidateGraph(doc.Graph())...)
}

// ValidateGraph reports every structural problem in g: missing or
// duplicate ids, unknown node types, dangling edges, unknown or misdirected
// ports, duplicate edges, runners with more than one agent and handoff
// cycles. The generator tolerates all of these; the report lets callers
// surface them before generating.
func ValidateGraph(g *graph.Graph) ValidationErrors {
	if g == nil {
		return ValidationErrors{{Code: CodeInvalid, Message: "graph is nil"}}
	}
	var errs ValidationErrors
	index := make(map[*graph.Node]int, len(g.Nodes))
	firstID := make(map[string]int, len(g.Nodes))

	for i, n := range g.Nodes {
		path := fmt.Sprintf("nodes[%d]", i)
		if n == nil {
			errs = append(errs, ValidationError{Field: path, Code: "required", Message: "node is null"})
			continue
		}
		index[n] = i
		errs = append(errs, Struct(NodeRef{ID: n.ID, Type: string(n.Kind)}, path)...)
		if n.ID != "" {
			if j, dup := firstID[n.ID]; dup {
				errs = append(errs, ValidationError{
					Field:   path + ".id",
					Code:    CodeDuplicateID,
					Value:   n.ID,
					Message: fmt.Sprintf("id already used by nodes[%d]", j),
				})
			} else {
				firstID[n.ID] = i
			}
		}
		if n.Data != nil && n.Data.Kind() != n.Kind {
			errs = append(errs, ValidationError{
				Field:   path + ".data",
				Code:    CodeInvalid,
				Value:   string(n.Data.Kind()),
				Message: "data does not match node type",
			})
		}
	}

	errs = append(errs, validateEdges(g)...)

	for _, r := range g.OfKind(graph.KindRunner) {
		if drivers := g.Related(r, graph.RelDrive); len(drivers) > 1 {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("nodes[%d]", index[r]),
				Code:    CodeMultipleDrivers,
				Value:   len(drivers),
				Message: "runner is connected to more than one agent; only the first is used",
			})
		}
	}

	for _, cycle := range handoffCycles(g) {
		ids := make([]string, len(cycle))
		for i, n := range cycle {
			ids[i] = n.ID
		}
		errs = append(errs, ValidationError{
			Field:   fmt.Sprintf("nodes[%d]", index[cycle[0]]),
			Code:    CodeHandoffCycle,
			Value:   strings.Join(ids, " -> "),
			Message: "agents hand off to each other in a cycle",
		})
	}
	return errs
}

func validateEdges(g *graph.Graph) ValidationErrors {
	type edgeKey struct{ source, sourceHandle, target, targetHandle string }
	var errs ValidationErrors
	seen := make(map[edgeKey]int, len(g.Edges))

	for i, e := range g.Edges {
		path := fmt.Sprintf("edges[%d]", i)
		if e == nil {
			errs = append(errs, ValidationError{Field: path, Code: "required", Message: "edge is null"})
			continue
		}
		errs = append(errs, Struct(EdgeRef{ID: e.ID, Source: e.Source, Target: e.Target}, path)...)

		src, dst := g.Node(e.Source), g.Node(e.Target)
		if e.Source != "" && src == nil {
			errs = append(errs, ValidationError{Field: path + ".source", Code: CodeDanglingEdge, Value: e.Source, Message: "source node does not exist"})
		}
		if e.Target != "" && dst == nil {
			errs = append(errs, ValidationError{Field: path + ".target", Code: CodeDanglingEdge, Value: e.Target, Message: "target node does not exist"})
		}
		if src != nil && dst != nil && src.Kind.Known() && dst.Kind.Known() {
			sr := graph.SourceRole(src.Kind, e.SourceHandle)
			tr := graph.TargetRole(dst.Kind, e.TargetHandle)
			switch {
			case sr == graph.PortUnknown:
				errs = append(errs, ValidationError{Field: path + ".sourceHandle", Code: CodeUnknownPort, Value: e.SourceHandle,
					Message: fmt.Sprintf("%s nodes have no handle %q", src.Kind, e.SourceHandle)})
			case tr == graph.PortUnknown:
				errs = append(errs, ValidationError{Field: path + ".targetHandle", Code: CodeUnknownPort, Value: e.TargetHandle,
					Message: fmt.Sprintf("%s nodes have no handle %q", dst.Kind, e.TargetHandle)})
			case !sr.IsOutput() || !tr.IsInput():
				errs = append(errs, ValidationError{Field: path, Code: CodePortDirection, Value: sr.String() + " -> " + tr.String(),
					Message: "edge must run from an output handle to an input handle"})
			}
		}

		k := edgeKey{e.Source, e.SourceHandle, e.Target, e.TargetHandle}
		if j, dup := seen[k]; dup {
			errs = append(errs, ValidationError{Field: path, Code: CodeDuplicateEdge, Value: e.ID, Message: fmt.Sprintf("same connection as edges[%d]", j)})
		} else {
			seen[k] = i
		}
	}
	return errs
}

// handoffCycles returns one closed path per back edge found by a colouring
// DFS over agents in encounter order. Each path starts and ends with the
// same agent.
func handoffCycles(g *graph.Graph) [][]*graph.Node {
	const (
		white = iota // unvisited
		gray         // on the stack
		black        // done
	)
	color := make(map[*graph.Node]int)
	var (
		stack  []*graph.Node
		cycles [][]*graph.Node
		visit  func(n *graph.Node)
	)
	visit = func(n *graph.Node) {
		color[n] = gray
		stack = append(stack, n)
		for _, next := range g.Related(n, graph.RelHandoff) {
			switch color[next] {
			case white:
				visit(next)
			case gray:
				for i := len(stack) - 1; i >= 0; i-- {
					if stack[i] == next {
						cycle := append([]*graph.Node(nil), stack[i:]...)
						cycles = append(cycles, append(cycle, next))
						break
					}
				}
			}
		}
		stack = stack[:len(stack)-1]
		color[n] = black
	}
	for _, a := range g.OfKind(graph.KindAgent) {
		if color[a] == white {
			visit(a)
		}
	}
	return cycles
}
