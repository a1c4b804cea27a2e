package codegen

import (
	"fmt"

	"github.com/agentgraph/agentgraph/internal/core/graph"
)

// runnerCall describes one emitted workflow function.
type runnerCall struct {
	fn    string
	async bool
}

// emitRunner writes the workflow function for runner number index, or a
// warning comment when no agent drives it.
func (r *run) emitRunner(w *writer, n *graph.Node, index int, forceAsync bool) (runnerCall, bool) {
	d := n.Runner()
	drivers := r.g.Related(n, graph.RelDrive)
	if len(drivers) == 0 {
		r.warnf(n.ID, "runner %d has no connected agent", index)
		w.line(comment(fmt.Sprintf("Warning: Runner %d has no connected agent; workflow %d was not generated.", index, index)))
		return runnerCall{}, false
	}
	if len(drivers) > 1 {
		r.warnf(n.ID, "runner %d has %d connected agents; using the first", index, len(drivers))
	}
	agent, ok := r.defined[drivers[0]]
	if !ok {
		agent = r.names.assign(drivers[0])
	}

	input := d.Input
	if input == "" {
		input = "Default input"
	}

	async := d.Async() || forceAsync
	call := runnerCall{fn: fmt.Sprintf("run_workflow_%d", index), async: async}
	if async {
		w.line(fmt.Sprintf("async def %s():", call.fn))
		w.indent()
		w.line(fmt.Sprintf(`print("--- Running Workflow %d (Async) ---")`, index))
		w.line(fmt.Sprintf("result = await Runner.run(%s, input=%s)", agent, pyString(input)))
	} else {
		call.fn += "_sync"
		w.line(fmt.Sprintf("def %s():", call.fn))
		w.indent()
		w.line(fmt.Sprintf(`print("--- Running Workflow %d (Sync) ---")`, index))
		w.line(fmt.Sprintf("result = Runner.run_sync(%s, input=%s)", agent, pyString(input)))
	}
	w.line(`print("Final Output:", result.final_output)`)
	w.line("return result")
	w.dedent()
	return call, true
}
