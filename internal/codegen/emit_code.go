package codegen

import (
	"strings"

	"github.com/agentgraph/agentgraph/internal/core/graph"
)

// emitCode writes an embedded code block verbatim under a comment naming it.
func (r *run) emitCode(w *writer, n *graph.Node) {
	d := n.PythonCode()
	name := d.Name
	if name == "" {
		name = "Unnamed Python Node"
	}
	w.line(comment(name))
	code := d.Code
	if strings.TrimSpace(code) == "" {
		code = "# Empty code block"
	}
	w.verbatim(code)
}
