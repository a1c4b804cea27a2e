package codegen

import (
	"regexp"
	"strings"

	"github.com/agentgraph/agentgraph/internal/core/graph"
)

// SDKPackage is the distribution every generated program depends on.
const SDKPackage = "openai-agents"

var importPattern = regexp.MustCompile(`(?m)^(?:from|import)\s+([a-zA-Z0-9_]+)`)

// bundled modules are never reported as requirements
var bundled = map[string]struct{}{
	"os": {}, "sys": {}, "math": {}, "json": {}, "time": {}, "datetime": {},
	"random": {}, "asyncio": {}, "agents": {},
}

// Requirements lists the packages a generated program needs: the agents SDK,
// pydantic when an agent declares an output type, and every top-level
// module imported by an embedded code block. Order is first appearance.
func Requirements(g *graph.Graph) []string {
	reqs := []string{SDKPackage}
	seen := map[string]struct{}{SDKPackage: {}}
	add := func(pkg string) {
		if _, ok := seen[pkg]; ok {
			return
		}
		seen[pkg] = struct{}{}
		reqs = append(reqs, pkg)
	}

	for _, a := range g.OfKind(graph.KindAgent) {
		if strings.TrimSpace(a.Agent().OutputType) != "" {
			add("pydantic")
			break
		}
	}
	for _, n := range g.OfKind(graph.KindPythonCode) {
		for _, m := range importPattern.FindAllStringSubmatch(n.PythonCode().Code, -1) {
			if _, skip := bundled[m[1]]; !skip {
				add(m[1])
			}
		}
	}
	return reqs
}
