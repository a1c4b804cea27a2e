package codegen

import (
	"fmt"
	"strings"

	"github.com/agentgraph/agentgraph/internal/core/graph"
)

// DefaultWorkflowName labels the trace block of the entry point.
const DefaultWorkflowName = "Agent workflow"

const noRunnerHint = "No Runner node found. Add a Runner node and connect it to an Agent to execute the workflow."

// Options tunes generation. The zero value keeps colliding identifiers;
// use DefaultOptions for the recommended settings.
type Options struct {
	Ordering          Ordering `json:"ordering,omitempty"`
	DisambiguateNames bool     `json:"disambiguateNames"`
	WorkflowName      string   `json:"workflowName,omitempty"`
}

// DefaultOptions returns topological ordering with name disambiguation.
func DefaultOptions() Options {
	return Options{
		Ordering:          OrderTopological,
		DisambiguateNames: true,
		WorkflowName:      DefaultWorkflowName,
	}
}

// Warning is a non-fatal problem found while generating. NodeID is empty
// for graph-wide warnings.
type Warning struct {
	NodeID  string `json:"nodeId,omitempty"`
	Message string `json:"message"`
}

func (w Warning) String() string {
	if w.NodeID == "" {
		return w.Message
	}
	return w.NodeID + ": " + w.Message
}

// Stats summarises a generation run.
type Stats struct {
	Nodes     map[graph.Kind]int `json:"nodes"`
	Edges     int                `json:"edges"`
	Workflows int                `json:"workflows"`
}

// Result is the outcome of one generation.
type Result struct {
	Code         string    `json:"code"`
	Warnings     []Warning `json:"warnings"`
	Requirements []string  `json:"requirements"`
	Stats        Stats     `json:"stats"`
}

// Generator compiles graphs with a fixed set of options. It holds no
// per-run state and is safe for concurrent use.
type Generator struct {
	opts Options
}

// New returns a generator. Empty option fields take their defaults.
func New(opts Options) *Generator {
	if opts.Ordering == "" {
		opts.Ordering = OrderTopological
	}
	if opts.WorkflowName == "" {
		opts.WorkflowName = DefaultWorkflowName
	}
	return &Generator{opts: opts}
}

// Generate compiles nodes and edges with the default options.
func Generate(nodes []*graph.Node, edges []*graph.Edge) string {
	return New(DefaultOptions()).Generate(graph.New(nodes, edges)).Code
}

// Generate compiles g. It never fails and never modifies g.
func (gen *Generator) Generate(g *graph.Graph) *Result {
	r := &run{
		g:       g,
		opts:    gen.opts,
		defined: make(map[*graph.Node]string),
	}
	r.names = newNamer(gen.opts.DisambiguateNames, r.warnf)
	for i := range g.OfKind(graph.KindRunner) {
		r.names.reserve(fmt.Sprintf("run_workflow_%d", i+1))
		r.names.reserve(fmt.Sprintf("run_workflow_%d_sync", i+1))
	}
	code := r.assemble()
	return &Result{
		Code:         code,
		Warnings:     r.warnings,
		Requirements: Requirements(g),
		Stats:        r.stats(),
	}
}

// run carries the state of a single generation.
type run struct {
	g        *graph.Graph
	opts     Options
	names    *namer
	defined  map[*graph.Node]string // emitted entity -> identifier
	warnings []Warning
	calls    int
}

func (r *run) warnf(nodeID, format string, args ...any) {
	r.warnings = append(r.warnings, Warning{NodeID: nodeID, Message: fmt.Sprintf(format, args...)})
}

func (r *run) stats() Stats {
	s := Stats{Nodes: make(map[graph.Kind]int), Edges: len(r.g.Edges), Workflows: r.calls}
	for _, n := range r.g.Nodes {
		if n != nil {
			s.Nodes[n.Kind]++
		}
	}
	return s
}

// section is a titled run of blocks separated by blank lines.
type section struct {
	title  string
	blocks []string
}

func (s *section) add(w *writer) {
	if text := w.String(); text != "" {
		s.blocks = append(s.blocks, text)
	}
}

func (r *run) assemble() string {
	for _, n := range r.g.Nodes {
		if n != nil && !n.Kind.Known() {
			r.warnf(n.ID, "unsupported node type %q; skipped", n.Kind)
		}
	}

	code := section{title: "Embedded Code"}
	for _, n := range r.g.OfKind(graph.KindPythonCode) {
		w := &writer{}
		r.emitCode(w, n)
		code.add(w)
	}

	tools := section{title: "Function Tools"}
	for _, n := range r.g.OfKind(graph.KindFunctionTool) {
		w := &writer{}
		r.emitTool(w, n)
		r.defined[n] = r.names.assign(n)
		tools.add(w)
	}

	servers := section{title: "MCP Servers"}
	var serverIdents []string
	for _, n := range r.g.OfKind(graph.KindMCP) {
		w := &writer{}
		if r.emitServer(w, n) {
			ident := r.names.assign(n)
			r.defined[n] = ident
			serverIdents = append(serverIdents, ident)
		}
		servers.add(w)
	}

	agents := r.agentSection()

	runners := r.g.OfKind(graph.KindRunner)
	workflows := section{title: "Workflows"}
	// MCP servers and trace blocks run inside the event loop, where
	// Runner.run_sync cannot be called, so every workflow is awaited.
	traced := len(serverIdents) > 0
	for _, n := range runners {
		if n.Runner().Trace && len(r.g.Related(n, graph.RelDrive)) > 0 {
			traced = true
		}
	}
	var calls []runnerCall
	for i, n := range runners {
		w := &writer{}
		call, ok := r.emitRunner(w, n, i+1, traced)
		workflows.add(w)
		if ok {
			calls = append(calls, call)
		}
	}
	r.calls = len(calls)

	asyncMain := traced
	for _, c := range calls {
		asyncMain = asyncMain || c.async
	}
	if len(calls) == 0 {
		asyncMain, traced = false, false
	}

	entry := section{}
	switch {
	case len(runners) == 0:
		w := &writer{}
		w.line(comment(noRunnerHint))
		entry.add(w)
	case len(calls) > 0:
		entry.add(r.entryPoint(calls, serverIdents, asyncMain, traced))
	}

	imports := section{}
	imports.add(r.imports(asyncMain, traced, len(calls) > 0, len(serverIdents) > 0))

	var out strings.Builder
	for _, s := range []section{imports, code, tools, servers, agents, workflows, entry} {
		if len(s.blocks) == 0 {
			continue
		}
		if out.Len() > 0 {
			out.WriteByte('\n')
		}
		if s.title != "" {
			out.WriteString(comment("--- " + s.title + " ---"))
			out.WriteByte('\n')
		}
		for i, b := range s.blocks {
			if i > 0 {
				out.WriteByte('\n')
			}
			out.WriteString(b)
		}
	}
	return out.String()
}

func (r *run) agentSection() section {
	s := section{title: "Agent Definitions"}
	agents := r.g.OfKind(graph.KindAgent)
	if len(agents) == 0 {
		return s
	}
	plan := planAgents(r.g, agents, r.opts.Ordering)
	// identifiers follow definition order, so the first agent defined
	// keeps the plain name
	for _, a := range plan.order {
		r.names.assign(a)
	}
	for _, a := range plan.cyclic {
		r.warnf(a.ID, "agent %s is on a handoff cycle; its pending handoffs are wired after all agents are defined", r.names.assign(a))
	}

	for _, a := range plan.order {
		late := make(map[*graph.Node]bool)
		for _, d := range plan.deferred[a] {
			late[d] = true
		}
		for _, t := range r.g.Related(a, graph.RelHandoff) {
			if _, ok := r.defined[t]; !ok && !late[t] {
				r.warnf(a.ID, "handoff to %s references an agent defined later", r.names.assign(t))
			}
		}
		w := &writer{}
		r.emitAgent(w, a, late)
		r.defined[a] = r.names.assign(a)
		s.add(w)
	}

	w := &writer{}
	for _, a := range plan.order {
		for _, d := range plan.deferred[a] {
			w.line(fmt.Sprintf("%s.handoffs.append(%s)", r.names.assign(a), r.names.assign(d)))
		}
	}
	s.add(w)
	return s
}

// entryPoint writes the guarded invocation of every callable workflow.
func (r *run) entryPoint(calls []runnerCall, servers []string, asyncMain, traced bool) *writer {
	w := &writer{}
	if !asyncMain {
		w.line(`if __name__ == "__main__":`)
		w.indent()
		for _, c := range calls {
			w.line(c.fn + "()")
		}
		return w
	}

	w.line("async def main():")
	w.indent()
	for _, s := range servers {
		w.line(fmt.Sprintf("async with %s:", s))
		w.indent()
	}
	if traced {
		w.line("trace_id = gen_trace_id()")
		w.line(fmt.Sprintf("with trace(workflow_name=%s, trace_id=trace_id):", pyString(r.opts.WorkflowName)))
		w.indent()
		w.line(`print(f"View trace: https://platform.openai.com/traces/trace?trace_id={trace_id}")`)
	}
	for _, c := range calls {
		if c.async {
			w.line("await " + c.fn + "()")
		} else {
			w.line(c.fn + "()")
		}
	}
	w.depth = 0
	w.line("")
	w.line(`if __name__ == "__main__":`)
	w.indent()
	w.line("asyncio.run(main())")
	return w
}

func (r *run) imports(asyncMain, traced, hasCalls, hasServers bool) *writer {
	w := &writer{}
	if asyncMain {
		w.line("import asyncio")
	}
	var names []string
	if r.g.Has(graph.KindAgent) {
		names = append(names, "Agent")
	}
	if hasCalls {
		names = append(names, "Runner")
	}
	if r.g.Has(graph.KindFunctionTool) {
		names = append(names, "function_tool")
	}
	if traced {
		names = append(names, "gen_trace_id", "trace")
	}
	if len(names) > 0 {
		w.line("from agents import " + strings.Join(names, ", "))
	}
	if hasServers {
		w.line("from agents.mcp import MCPServerStdio")
	}
	for _, a := range r.g.OfKind(graph.KindAgent) {
		if strings.TrimSpace(a.Agent().OutputType) != "" {
			w.line("from pydantic import BaseModel")
			break
		}
	}
	return w
}
