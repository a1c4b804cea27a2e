package codegen

import (
	"fmt"
	"strings"

	"github.com/agentgraph/agentgraph/internal/core/graph"
)

const (
	gitLauncher = "uvx"
	gitServer   = "mcp-server-git"
	fsLauncher  = "npx"
	fsServer    = "@modelcontextprotocol/server-filesystem"
)

// emitServer writes a stdio MCP server object. It reports false when the
// node does not describe a launchable server.
func (r *run) emitServer(w *writer, n *graph.Node) bool {
	d := n.MCP()
	name := d.Name
	if name == "" {
		name = "MCP Server"
	}
	var command string
	var args []string
	switch d.ServerType {
	case graph.MCPServerGit:
		command, args = gitLauncher, []string{gitServer}
		if dir := strings.TrimSpace(d.Directory); dir != "" {
			args = append(args, "--repository", dir)
		}
	case graph.MCPServerFilesystem:
		dir := strings.TrimSpace(d.Directory)
		if dir == "" {
			dir = "."
		}
		command, args = fsLauncher, []string{"-y", fsServer, dir}
	case graph.MCPServerCustom:
		command = strings.TrimSpace(d.Command)
		if command == "" {
			r.warnf(n.ID, "MCP server %q has no command; skipped", name)
			w.line(comment(fmt.Sprintf("Warning: MCP server %q has no command configured", name)))
			return false
		}
		args = splitArgs(d.Args)
	default:
		r.warnf(n.ID, "MCP server %q has unknown server type %q; skipped", name, d.ServerType)
		w.line(comment(fmt.Sprintf("Warning: MCP server %q has no supported server type", name)))
		return false
	}

	quoted := make([]string, len(args))
	for i, a := range args {
		quoted[i] = pyString(a)
	}

	ident := r.names.assign(n)
	w.line(ident + " = MCPServerStdio(")
	w.indent()
	w.line(fmt.Sprintf("name=%s,", pyString(name)))
	w.line("params={")
	w.indent()
	w.line(fmt.Sprintf(`"command": %s,`, pyString(command)))
	w.line(fmt.Sprintf(`"args": [%s],`, strings.Join(quoted, ", ")))
	w.dedent()
	w.line("},")
	if d.CacheToolsList {
		w.line("cache_tools_list=True,")
	}
	w.dedent()
	w.line(")")
	return true
}

// splitArgs splits a comma-separated argument list, trimming each entry
// and dropping empty ones.
func splitArgs(s string) []string {
	var out []string
	for _, a := range strings.Split(s, ",") {
		if a = strings.TrimSpace(a); a != "" {
			out = append(out, a)
		}
	}
	return out
}
