// Package graph provides edge definitions
package graph

// Edge represents a connection between two node handles. Extra carries
// editor styling such as animated, type and style.
type Edge struct {
	ID           string `json:"id"`
	Source       string `json:"source"`
	Target       string `json:"target"`
	SourceHandle string `json:"sourceHandle,omitempty"`
	TargetHandle string `json:"targetHandle,omitempty"`
	Extra        Extra  `json:"-"`
}

func (e *Edge) MarshalJSON() ([]byte, error) {
	type plain Edge
	return encodeExtra((*plain)(e), e.Extra)
}

func (e *Edge) UnmarshalJSON(b []byte) error {
	type plain Edge
	extra, err := decodeExtra(b, (*plain)(e))
	e.Extra = extra
	return err
}

// Validate ensures edge integrity
func (e *Edge) Validate() error {
	if e.Source == "" {
		return ErrInvalidSource
	}
	if e.Target == "" {
		return ErrInvalidTarget
	}
	if e.Source == e.Target {
		return ErrSelfLoop
	}
	return nil
}

// PortRole names what a handle on a node is for. Handles are tagged with
// short strings by the editor; the role is derived from (kind, tag).
type PortRole int

const (
	PortUnknown PortRole = iota
	// agent handles
	PortAgentIn
	PortHandoffOut
	PortAgentAux
	PortToolIn
	PortMCPIn
	// function tool handle
	PortToolOut
	// mcp handles
	PortServerIn
	PortServerOut
	// runner handles
	PortRunnerIn
	PortRunnerOut
	// python code handles
	PortCodeIn
	PortCodeOut
)

// Handle tags used by the editor.
const (
	HandleA = "a"
	HandleB = "b"
	HandleC = "c"
	HandleD = "d"
	HandleE = "e"
)

type portKey struct {
	kind Kind
	tag  string
}

var ports = map[portKey]PortRole{
	{KindAgent, HandleA}:        PortAgentIn,
	{KindAgent, HandleB}:        PortHandoffOut,
	{KindAgent, HandleC}:        PortAgentAux,
	{KindAgent, HandleD}:        PortToolIn,
	{KindAgent, HandleE}:        PortMCPIn,
	{KindFunctionTool, HandleA}: PortToolOut,
	{KindMCP, HandleA}:          PortServerIn,
	{KindMCP, HandleB}:          PortServerOut,
	{KindRunner, HandleA}:       PortRunnerIn,
	{KindRunner, HandleB}:       PortRunnerOut,
	{KindPythonCode, HandleA}:   PortCodeIn,
	{KindPythonCode, HandleB}:   PortCodeOut,
}

// default roles for an edge end that carries no handle tag
var (
	defaultSource = map[Kind]PortRole{
		KindAgent:        PortHandoffOut,
		KindFunctionTool: PortToolOut,
		KindMCP:          PortServerOut,
		KindRunner:       PortRunnerOut,
		KindPythonCode:   PortCodeOut,
	}
	defaultTarget = map[Kind]PortRole{
		KindAgent:      PortAgentIn,
		KindMCP:        PortServerIn,
		KindRunner:     PortRunnerIn,
		KindPythonCode: PortCodeIn,
	}
)

// SourceRole resolves the role of the handle an edge leaves from.
func SourceRole(kind Kind, tag string) PortRole {
	if tag == "" {
		return defaultSource[kind]
	}
	return ports[portKey{kind, tag}]
}

// TargetRole resolves the role of the handle an edge arrives at.
func TargetRole(kind Kind, tag string) PortRole {
	if tag == "" {
		return defaultTarget[kind]
	}
	return ports[portKey{kind, tag}]
}

// IsOutput reports whether the role is a handle edges leave from.
func (r PortRole) IsOutput() bool {
	switch r {
	case PortHandoffOut, PortAgentAux, PortToolOut, PortServerOut, PortRunnerOut, PortCodeOut:
		return true
	}
	return false
}

// IsInput reports whether the role is a handle edges arrive at.
func (r PortRole) IsInput() bool {
	return r != PortUnknown && !r.IsOutput()
}

func (r PortRole) String() string {
	switch r {
	case PortAgentIn:
		return "agent-in"
	case PortHandoffOut:
		return "handoff-out"
	case PortAgentAux:
		return "agent-aux"
	case PortToolIn:
		return "tool-in"
	case PortMCPIn:
		return "mcp-in"
	case PortToolOut:
		return "tool-out"
	case PortServerIn:
		return "server-in"
	case PortServerOut:
		return "server-out"
	case PortRunnerIn:
		return "runner-in"
	case PortRunnerOut:
		return "runner-out"
	case PortCodeIn:
		return "code-in"
	case PortCodeOut:
		return "code-out"
	}
	return "unknown"
}

// Relation is the meaning the generator gives to an edge.
type Relation int

const (
	// RelNone edges are decorative and carry no generated semantics
	RelNone Relation = iota
	// RelTool binds a function tool to an agent
	RelTool
	// RelMCP binds an MCP server to an agent
	RelMCP
	// RelHandoff lets the source agent hand off to the target agent
	RelHandoff
	// RelDrive makes a runner execute the source agent
	RelDrive
)

// Classify derives the relation an edge between src and dst expresses.
// Only the handle that disambiguates the relation is consulted, matching
// how the editor has always wired these ports.
func Classify(src, dst *Node, e *Edge) Relation {
	if src == nil || dst == nil || e == nil {
		return RelNone
	}
	switch {
	case dst.Kind == KindAgent && src.Kind == KindFunctionTool && TargetRole(dst.Kind, e.TargetHandle) == PortToolIn:
		return RelTool
	case dst.Kind == KindAgent && src.Kind == KindMCP && TargetRole(dst.Kind, e.TargetHandle) == PortMCPIn:
		return RelMCP
	case src.Kind == KindAgent && dst.Kind == KindAgent && SourceRole(src.Kind, e.SourceHandle) == PortHandoffOut:
		return RelHandoff
	case dst.Kind == KindRunner && src.Kind == KindAgent && TargetRole(dst.Kind, e.TargetHandle) == PortRunnerIn:
		return RelDrive
	}
	return RelNone
}
