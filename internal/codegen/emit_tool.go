package codegen

import (
	"fmt"
	"strings"

	"github.com/agentgraph/agentgraph/internal/core/graph"
)

// emitTool writes a decorated tool function. Parameters and return type
// are user text and are passed through.
func (r *run) emitTool(w *writer, n *graph.Node) {
	d := n.FunctionTool()
	ident := r.names.assign(n)
	w.line("@function_tool")
	w.line(fmt.Sprintf("def %s(%s) -> %s:", ident, strings.TrimSpace(d.Parameters), returnType(d.ReturnType)))
	w.indent()
	if strings.TrimSpace(d.Implementation) == "" {
		w.line(fmt.Sprintf("raise NotImplementedError(%s)", pyString(ident+" is not implemented")))
	} else {
		w.lines(d.Implementation)
	}
	w.dedent()
}

func returnType(t string) string {
	t = strings.TrimSpace(t)
	switch {
	case t == "":
		return "str"
	case strings.EqualFold(t, "none"):
		return "None"
	}
	return t
}
