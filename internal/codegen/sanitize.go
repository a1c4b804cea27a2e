package codegen

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/agentgraph/agentgraph/internal/core/graph"
)

// FallbackIdentifier is returned for empty names.
const FallbackIdentifier = "unnamed_entity"

// Sanitize maps a display name to an identifier token: every rune outside
// [A-Za-z0-9_] becomes a single '_' and the result is lower-cased. Runes
// outside the Basic Multilingual Plane also map to one '_'.
func Sanitize(name string) string {
	if name == "" {
		return FallbackIdentifier
	}
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// names the emitted program defines itself
var reserved = []string{
	"asyncio", "main", "trace", "gen_trace_id", "function_tool", "result", "trace_id",
}

var pythonKeywords = map[string]struct{}{
	"and": {}, "as": {}, "assert": {}, "async": {},
	"await": {}, "break": {}, "class": {}, "continue": {}, "def": {}, "del": {}, "elif": {},
	"else": {}, "except": {}, "finally": {}, "for": {}, "from": {}, "global": {}, "if": {},
	"import": {}, "in": {}, "is": {}, "lambda": {}, "nonlocal": {}, "not": {}, "or": {},
	"pass": {}, "raise": {}, "return": {}, "try": {}, "while": {}, "with": {}, "yield": {},
}

// namer hands out one identifier per node. With disambiguation on, a taken
// identifier gets the next free numeric suffix and a warning is recorded;
// otherwise the colliding identifier is reused as is.
type namer struct {
	disambiguate bool
	taken        map[string]string // identifier -> node id
	assigned     map[string]string // node id -> identifier
	warn         func(nodeID, format string, args ...any)
}

func newNamer(disambiguate bool, warn func(nodeID, format string, args ...any)) *namer {
	n := &namer{
		disambiguate: disambiguate,
		taken:        make(map[string]string),
		assigned:     make(map[string]string),
		warn:         warn,
	}
	for _, r := range reserved {
		n.reserve(r)
	}
	return n
}

// reserve marks ident as owned by the generated program.
func (n *namer) reserve(ident string) {
	n.taken[ident] = ""
}

// assign returns the identifier for node, allocating it on first use.
func (n *namer) assign(node *graph.Node) string {
	if id, ok := n.assigned[node.ID]; ok {
		return id
	}
	base := Sanitize(node.Name())
	ident := base
	if n.disambiguate {
		if !validIdentifier(ident) {
			ident = "n_" + ident
			n.warn(node.ID, "name %q is not a valid identifier; using %s", node.Name(), ident)
			base = ident
		}
		if owner, clash := n.taken[ident]; clash {
			for i := 2; ; i++ {
				candidate := fmt.Sprintf("%s_%d", base, i)
				if _, used := n.taken[candidate]; !used {
					ident = candidate
					break
				}
			}
			if owner == "" {
				n.warn(node.ID, "identifier %s is reserved by the generated program; renamed to %s", base, ident)
			} else {
				n.warn(node.ID, "identifier %s already used by node %s; renamed to %s", base, owner, ident)
			}
		}
	}
	if _, ok := n.taken[ident]; !ok {
		n.taken[ident] = node.ID
	}
	n.assigned[node.ID] = ident
	return ident
}

func validIdentifier(s string) bool {
	if s == "" || (s[0] >= '0' && s[0] <= '9') {
		return false
	}
	_, kw := pythonKeywords[s]
	return !kw
}
