// Package graph provides the canvas graph model: an ordered list of typed
// nodes and an ordered list of handle-to-handle edges. Insertion order is
// meaningful; it breaks ties wherever the generator has to choose.
package graph

import (
	"fmt"
)

// Graph is the read-only input handed to the generator.
type Graph struct {
	Nodes []*Node `json:"nodes"`
	Edges []*Edge `json:"edges"`
}

// New builds a graph over the given nodes and edges without copying them.
func New(nodes []*Node, edges []*Edge) *Graph {
	return &Graph{Nodes: nodes, Edges: edges}
}

// Node returns the first node with the given id, or nil. Dangling edge
// endpoints simply resolve to nil.
func (g *Graph) Node(id string) *Node {
	for _, n := range g.Nodes {
		if n != nil && n.ID == id {
			return n
		}
	}
	return nil
}

// OfKind returns the nodes of one kind in insertion order.
func (g *Graph) OfKind(kind Kind) []*Node {
	var out []*Node
	for _, n := range g.Nodes {
		if n != nil && n.Kind == kind {
			out = append(out, n)
		}
	}
	return out
}

// Has reports whether at least one node of kind exists.
func (g *Graph) Has(kind Kind) bool {
	for _, n := range g.Nodes {
		if n != nil && n.Kind == kind {
			return true
		}
	}
	return false
}

// Related walks the edges in order and returns the far end of every edge
// touching n with the given relation. For RelTool, RelMCP and RelDrive n is
// the target; for RelHandoff n is the source.
func (g *Graph) Related(n *Node, rel Relation) []*Node {
	var out []*Node
	for _, e := range g.Edges {
		if e == nil {
			continue
		}
		var near, far string
		if rel == RelHandoff {
			near, far = e.Source, e.Target
		} else {
			near, far = e.Target, e.Source
		}
		if near != n.ID {
			continue
		}
		other := g.Node(far)
		if other == nil {
			continue
		}
		src, dst := other, n
		if rel == RelHandoff {
			src, dst = n, other
		}
		if Classify(src, dst, e) == rel && !contains(out, other) {
			out = append(out, other)
		}
	}
	return out
}

func contains(nodes []*Node, n *Node) bool {
	for _, x := range nodes {
		if x == n {
			return true
		}
	}
	return false
}

// Validate reports nil nodes and duplicate node IDs. Every other
// inconsistency is tolerated by the generator and reported by pkg/validation.
func (g *Graph) Validate() error {
	seen := make(map[string]struct{}, len(g.Nodes))
	for i, n := range g.Nodes {
		if n == nil {
			return fmt.Errorf("nodes[%d]: %w", i, ErrNilNode)
		}
		if _, dup := seen[n.ID]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateNode, n.ID)
		}
		seen[n.ID] = struct{}{}
	}
	return nil
}
