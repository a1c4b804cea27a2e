package prebuilt

import (
	"fmt"

	"github.com/agentgraph/agentgraph/internal/core/graph"
)

// Built-in template names.
const (
	Assistant = "assistant"
	ToolAgent = "tool-agent"
	Triage    = "triage"
	FileAgent = "mcp-filesystem"
)

// grid spacing of template layouts, in canvas units
const (
	columnStep = 320
	rowStep    = 180
)

func init() {
	DefaultRegistry.MustRegister(NewBuildFunc(Assistant, "one agent driven by a runner", buildAssistant))
	DefaultRegistry.MustRegister(NewBuildFunc(ToolAgent, "an agent calling a function tool", buildToolAgent))
	DefaultRegistry.MustRegister(NewBuildFunc(Triage, "a triage agent handing off to two specialists", buildTriage))
	DefaultRegistry.MustRegister(NewBuildFunc(FileAgent, "an agent reading files through an MCP filesystem server", buildFileAgent))
}

// layout wraps a graph.Builder, placing nodes on a grid and keeping the
// first connection error.
type layout struct {
	b   *graph.Builder
	err error
}

func newLayout() *layout {
	return &layout{b: graph.NewBuilder()}
}

func (l *layout) add(data graph.NodeData, col, row int) string {
	id := l.b.Add(data)
	if n := l.b.Graph().Node(id); n != nil {
		n.Position = graph.Position{X: float64(col * columnStep), Y: float64(row * rowStep)}
	}
	return id
}

func (l *layout) check(err error) {
	if l.err == nil && err != nil {
		l.err = err
	}
}

func (l *layout) graph(template string) (*graph.Graph, error) {
	if l.err != nil {
		return nil, fmt.Errorf("build %s: %w", template, l.err)
	}
	return l.b.Graph(), nil
}

func agent(cfg Config, fallback string) *graph.AgentData {
	d := Defaults(graph.KindAgent).(*graph.AgentData)
	d.Name = fallback
	if cfg.AgentName != "" {
		d.Name = cfg.AgentName
	}
	return d
}

func runner(cfg Config) *graph.RunnerData {
	d := Defaults(graph.KindRunner).(*graph.RunnerData)
	if cfg.Input != "" {
		d.Input = cfg.Input
	}
	d.Trace = cfg.Trace
	return d
}

func buildAssistant(cfg Config) (*graph.Graph, error) {
	l := newLayout()
	a := l.add(agent(cfg, "Assistant"), 0, 0)
	r := l.add(runner(cfg), 1, 0)
	l.check(l.b.Drive(a, r))
	return l.graph(Assistant)
}

func buildToolAgent(cfg Config) (*graph.Graph, error) {
	l := newLayout()
	t := l.add(Defaults(graph.KindFunctionTool), 0, 1)
	a := l.add(agent(cfg, "Tool Agent"), 1, 0)
	r := l.add(runner(cfg), 2, 0)
	l.check(l.b.Tool(t, a))
	l.check(l.b.Drive(a, r))
	return l.graph(ToolAgent)
}

func buildTriage(cfg Config) (*graph.Graph, error) {
	l := newLayout()
	billing := l.add(&graph.AgentData{
		Name:               "Billing Agent",
		Instructions:       "You answer questions about invoices, refunds and payments.",
		HandoffDescription: "Specialist for billing questions",
	}, 0, 0)
	support := l.add(&graph.AgentData{
		Name:               "Support Agent",
		Instructions:       "You troubleshoot technical problems step by step.",
		HandoffDescription: "Specialist for technical support",
	}, 0, 1)
	triage := agent(cfg, "Triage Agent")
	triage.Instructions = "Route the user to the right specialist."
	t := l.add(triage, 1, 0)
	r := l.add(runner(cfg), 2, 0)
	l.check(l.b.Handoff(t, billing))
	l.check(l.b.Handoff(t, support))
	l.check(l.b.Drive(t, r))
	return l.graph(Triage)
}

func buildFileAgent(cfg Config) (*graph.Graph, error) {
	l := newLayout()
	s := l.add(Defaults(graph.KindMCP), 0, 1)
	d := agent(cfg, "File Agent")
	d.Instructions = "Use the filesystem tools to read files and answer questions about them."
	a := l.add(d, 1, 0)
	r := l.add(runner(cfg), 2, 0)
	l.check(l.b.Server(s, a))
	l.check(l.b.Drive(a, r))
	return l.graph(FileAgent)
}
