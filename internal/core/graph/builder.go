package graph

import (
	"fmt"

	"github.com/google/uuid"
)

// NewID allocates a stable, globally unique node or edge id.
func NewID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}

// Builder assembles a graph while enforcing the port vocabulary, so bad
// connections are rejected when they are made rather than when code is
// generated.
type Builder struct {
	g *Graph
}

// NewBuilder starts an empty graph.
func NewBuilder() *Builder {
	return &Builder{g: &Graph{}}
}

// Add appends a node with a freshly allocated id and returns that id.
func (b *Builder) Add(data NodeData) string {
	id := NewID(string(data.Kind()))
	b.g.Nodes = append(b.g.Nodes, &Node{ID: id, Kind: data.Kind(), Data: data})
	return id
}

// AddNode appends a node that already has an id.
func (b *Builder) AddNode(n *Node) error {
	if n == nil {
		return ErrNilNode
	}
	if err := n.Validate(); err != nil {
		return err
	}
	if b.g.Node(n.ID) != nil {
		return fmt.Errorf("%w: %s", ErrDuplicateNode, n.ID)
	}
	b.g.Nodes = append(b.g.Nodes, n)
	return nil
}

// Connect links source's sourceHandle to target's targetHandle.
func (b *Builder) Connect(source, sourceHandle, target, targetHandle string) (string, error) {
	e := &Edge{
		ID:           NewID("edge"),
		Source:       source,
		Target:       target,
		SourceHandle: sourceHandle,
		TargetHandle: targetHandle,
	}
	if err := e.Validate(); err != nil {
		return "", err
	}
	src := b.g.Node(source)
	if src == nil {
		return "", fmt.Errorf("%w: %s", ErrSourceNodeNotFound, source)
	}
	dst := b.g.Node(target)
	if dst == nil {
		return "", fmt.Errorf("%w: %s", ErrTargetNodeNotFound, target)
	}
	sr := SourceRole(src.Kind, sourceHandle)
	tr := TargetRole(dst.Kind, targetHandle)
	if sr == PortUnknown {
		return "", fmt.Errorf("%w: %s handle %q", ErrUnknownPort, src.Kind, sourceHandle)
	}
	if tr == PortUnknown {
		return "", fmt.Errorf("%w: %s handle %q", ErrUnknownPort, dst.Kind, targetHandle)
	}
	if !sr.IsOutput() || !tr.IsInput() {
		return "", fmt.Errorf("%w: %s -> %s", ErrPortMismatch, sr, tr)
	}
	for _, x := range b.g.Edges {
		if x.Source == e.Source && x.Target == e.Target &&
			x.SourceHandle == e.SourceHandle && x.TargetHandle == e.TargetHandle {
			return "", ErrDuplicateEdge
		}
	}
	b.g.Edges = append(b.g.Edges, e)
	return e.ID, nil
}

// Tool binds a function tool to an agent's tool-in port.
func (b *Builder) Tool(tool, agent string) error {
	_, err := b.Connect(tool, HandleA, agent, HandleD)
	return err
}

// Server binds an MCP server to an agent's mcp-in port.
func (b *Builder) Server(server, agent string) error {
	_, err := b.Connect(server, HandleB, agent, HandleE)
	return err
}

// Handoff lets from hand off to to.
func (b *Builder) Handoff(from, to string) error {
	_, err := b.Connect(from, HandleB, to, HandleA)
	return err
}

// Drive makes runner execute agent.
func (b *Builder) Drive(agent, runner string) error {
	_, err := b.Connect(agent, HandleB, runner, HandleA)
	return err
}

// Graph returns the assembled graph.
func (b *Builder) Graph() *Graph {
	return b.g
}
