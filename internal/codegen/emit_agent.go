package codegen

import (
	"fmt"
	"strings"

	"github.com/agentgraph/agentgraph/internal/core/graph"
)

// emitAgent writes an agent constructor. Handoffs to agents not yet
// defined are left to the late wiring pass when late is non-nil.
func (r *run) emitAgent(w *writer, n *graph.Node, late map[*graph.Node]bool) {
	d := n.Agent()
	ident := r.names.assign(n)

	name := d.Name
	if name == "" {
		name = "Unnamed Agent"
	}
	instructions := d.Instructions
	if instructions == "" {
		instructions = "No instructions provided."
	}

	w.line(ident + " = Agent(")
	w.indent()
	w.line(fmt.Sprintf("name=%s,", pyString(name)))
	w.line(fmt.Sprintf("instructions=%s,", pyBlockString(instructions)))
	if d.HandoffDescription != "" {
		w.line(fmt.Sprintf("handoff_description=%s,", pyString(d.HandoffDescription)))
	}
	if tools := r.identifiers(r.g.Related(n, graph.RelTool)); len(tools) > 0 {
		w.line(fmt.Sprintf("tools=[%s],", strings.Join(tools, ", ")))
	}
	if servers := r.identifiers(r.g.Related(n, graph.RelMCP)); len(servers) > 0 {
		w.line(fmt.Sprintf("mcp_servers=[%s],", strings.Join(servers, ", ")))
	}
	var handoffs []string
	for _, t := range r.g.Related(n, graph.RelHandoff) {
		if late[t] {
			continue
		}
		handoffs = append(handoffs, r.names.assign(t))
	}
	if len(handoffs) > 0 {
		w.line(fmt.Sprintf("handoffs=[%s],", strings.Join(handoffs, ", ")))
	}
	if t := strings.TrimSpace(d.OutputType); t != "" {
		w.line(fmt.Sprintf("output_type=%s,", t))
	}
	w.dedent()
	w.line(")")
}

// identifiers maps related nodes to the identifiers they were emitted
// under, skipping nodes that produced no definition.
func (r *run) identifiers(nodes []*graph.Node) []string {
	var out []string
	for _, n := range nodes {
		if ident, ok := r.defined[n]; ok {
			out = append(out, ident)
		}
	}
	return out
}
