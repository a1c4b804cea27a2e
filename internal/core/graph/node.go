// Package graph provides node definitions
package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Kind represents the type of node placed on the canvas
type Kind string

const (
	// KindAgent is an LLM agent definition
	KindAgent Kind = "agent"
	// KindRunner drives a single agent with an input
	KindRunner Kind = "runner"
	// KindFunctionTool is a decorated callable tool
	KindFunctionTool Kind = "functionTool"
	// KindMCP is a stdio MCP server
	KindMCP Kind = "mcp"
	// KindPythonCode is a verbatim embedded code block
	KindPythonCode Kind = "pythonCode"
)

// Kinds lists every known kind in canonical section order.
var Kinds = []Kind{KindPythonCode, KindFunctionTool, KindMCP, KindAgent, KindRunner}

// Known reports whether k is one of the kinds the generator understands.
func (k Kind) Known() bool {
	switch k {
	case KindAgent, KindRunner, KindFunctionTool, KindMCP, KindPythonCode:
		return true
	}
	return false
}

// Position is the canvas placement of a node. The generator ignores it.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node represents a vertex on the canvas. Data holds the kind-specific
// attributes; nodes of an unknown kind keep their raw data bag in Raw.
// Extra carries editor state such as selected or dragging.
type Node struct {
	ID       string
	Kind     Kind
	Position Position
	Width    *float64
	Height   *float64
	Data     NodeData
	Raw      json.RawMessage
	Extra    Extra
}

// NodeData is implemented by the per-kind attribute structs.
type NodeData interface {
	Kind() Kind
}

// AgentData holds agent attributes.
type AgentData struct {
	Name               string `json:"name,omitempty"`
	Instructions       string `json:"instructions,omitempty"`
	HandoffDescription string `json:"handoff_description,omitempty"`
	OutputType         string `json:"output_type,omitempty"`
	Extra              Extra  `json:"-"`
}

// RunnerData holds runner attributes. A nil IsAsync means asynchronous.
type RunnerData struct {
	Input   string `json:"input,omitempty"`
	IsAsync *bool  `json:"isAsync,omitempty"`
	Trace   bool   `json:"trace,omitempty"`
	Extra   Extra  `json:"-"`
}

// Async reports whether the runner should be awaited.
func (d *RunnerData) Async() bool {
	return d.IsAsync == nil || *d.IsAsync
}

// FunctionToolData holds function tool attributes.
type FunctionToolData struct {
	Name           string `json:"name,omitempty"`
	Parameters     string `json:"parameters,omitempty"`
	ReturnType     string `json:"returnType,omitempty"`
	Implementation string `json:"implementation,omitempty"`
	Extra          Extra  `json:"-"`
}

// MCPServerType selects how an MCP server is launched.
type MCPServerType string

const (
	MCPServerGit        MCPServerType = "git"
	MCPServerFilesystem MCPServerType = "filesystem"
	MCPServerCustom     MCPServerType = "custom"
)

// MCPData holds MCP server attributes.
type MCPData struct {
	Name           string        `json:"name,omitempty"`
	ServerType     MCPServerType `json:"serverType,omitempty"`
	Directory      string        `json:"directory,omitempty"`
	Command        string        `json:"command,omitempty"`
	Args           string        `json:"args,omitempty"`
	CacheToolsList bool          `json:"cacheToolsList,omitempty"`
	Extra          Extra         `json:"-"`
}

// PythonCodeData holds an embedded code block. ExecutionID belongs to the
// live execution bridge and is carried through untouched.
type PythonCodeData struct {
	Name        string `json:"name,omitempty"`
	Code        string `json:"code,omitempty"`
	ExecutionID string `json:"executionId,omitempty"`
	Extra       Extra  `json:"-"`
}

func (*AgentData) Kind() Kind        { return KindAgent }
func (*RunnerData) Kind() Kind       { return KindRunner }
func (*FunctionToolData) Kind() Kind { return KindFunctionTool }
func (*MCPData) Kind() Kind          { return KindMCP }
func (*PythonCodeData) Kind() Kind   { return KindPythonCode }

func (d *AgentData) MarshalJSON() ([]byte, error) {
	type plain AgentData
	return encodeExtra((*plain)(d), d.Extra)
}

func (d *AgentData) UnmarshalJSON(b []byte) error {
	type plain AgentData
	extra, err := decodeExtra(b, (*plain)(d))
	d.Extra = extra
	return err
}

func (d *RunnerData) MarshalJSON() ([]byte, error) {
	type plain RunnerData
	return encodeExtra((*plain)(d), d.Extra)
}

func (d *RunnerData) UnmarshalJSON(b []byte) error {
	type plain RunnerData
	extra, err := decodeExtra(b, (*plain)(d))
	d.Extra = extra
	return err
}

func (d *FunctionToolData) MarshalJSON() ([]byte, error) {
	type plain FunctionToolData
	return encodeExtra((*plain)(d), d.Extra)
}

func (d *FunctionToolData) UnmarshalJSON(b []byte) error {
	type plain FunctionToolData
	extra, err := decodeExtra(b, (*plain)(d))
	d.Extra = extra
	return err
}

func (d *MCPData) MarshalJSON() ([]byte, error) {
	type plain MCPData
	return encodeExtra((*plain)(d), d.Extra)
}

func (d *MCPData) UnmarshalJSON(b []byte) error {
	type plain MCPData
	extra, err := decodeExtra(b, (*plain)(d))
	d.Extra = extra
	return err
}

func (d *PythonCodeData) MarshalJSON() ([]byte, error) {
	type plain PythonCodeData
	return encodeExtra((*plain)(d), d.Extra)
}

func (d *PythonCodeData) UnmarshalJSON(b []byte) error {
	type plain PythonCodeData
	extra, err := decodeExtra(b, (*plain)(d))
	d.Extra = extra
	return err
}

// newData returns an empty attribute struct for kind, or nil when unknown.
func newData(kind Kind) NodeData {
	switch kind {
	case KindAgent:
		return &AgentData{}
	case KindRunner:
		return &RunnerData{}
	case KindFunctionTool:
		return &FunctionToolData{}
	case KindMCP:
		return &MCPData{}
	case KindPythonCode:
		return &PythonCodeData{}
	}
	return nil
}

// Name returns the user-supplied display name, if the kind has one.
func (n *Node) Name() string {
	switch n.Kind {
	case KindAgent:
		return n.Agent().Name
	case KindFunctionTool:
		return n.FunctionTool().Name
	case KindMCP:
		return n.MCP().Name
	case KindPythonCode:
		return n.PythonCode().Name
	}
	return ""
}

// Agent returns the agent attributes, empty when the node carries none.
func (n *Node) Agent() *AgentData {
	if d, ok := n.Data.(*AgentData); ok && d != nil {
		return d
	}
	return &AgentData{}
}

// Runner returns the runner attributes, empty when the node carries none.
func (n *Node) Runner() *RunnerData {
	if d, ok := n.Data.(*RunnerData); ok && d != nil {
		return d
	}
	return &RunnerData{}
}

// FunctionTool returns the function tool attributes, empty when the node carries none.
func (n *Node) FunctionTool() *FunctionToolData {
	if d, ok := n.Data.(*FunctionToolData); ok && d != nil {
		return d
	}
	return &FunctionToolData{}
}

// MCP returns the MCP server attributes, empty when the node carries none.
func (n *Node) MCP() *MCPData {
	if d, ok := n.Data.(*MCPData); ok && d != nil {
		return d
	}
	return &MCPData{}
}

// PythonCode returns the code block attributes, empty when the node carries none.
func (n *Node) PythonCode() *PythonCodeData {
	if d, ok := n.Data.(*PythonCodeData); ok && d != nil {
		return d
	}
	return &PythonCodeData{}
}

// Validate ensures node integrity
func (n *Node) Validate() error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if !n.Kind.Known() {
		return fmt.Errorf("%w: %q", ErrInvalidNodeKind, n.Kind)
	}
	if n.Data != nil && n.Data.Kind() != n.Kind {
		return fmt.Errorf("%w: data for %q on %q node", ErrInvalidNodeKind, n.Data.Kind(), n.Kind)
	}
	return nil
}

type nodeJSON struct {
	ID       string          `json:"id"`
	Type     Kind            `json:"type"`
	Position Position        `json:"position"`
	Width    *float64        `json:"width,omitempty"`
	Height   *float64        `json:"height,omitempty"`
	Data     json.RawMessage `json:"data,omitempty"`
}

// MarshalJSON writes the editor's node shape.
func (n *Node) MarshalJSON() ([]byte, error) {
	out := nodeJSON{
		ID:       n.ID,
		Type:     n.Kind,
		Position: n.Position,
		Width:    n.Width,
		Height:   n.Height,
		Data:     n.Raw,
	}
	if n.Data != nil {
		data, err := json.Marshal(n.Data)
		if err != nil {
			return nil, fmt.Errorf("node %s: encode data: %w", n.ID, err)
		}
		out.Data = data
	}
	return encodeExtra(out, n.Extra)
}

// UnmarshalJSON decodes the data bag according to the node type.
func (n *Node) UnmarshalJSON(b []byte) error {
	var in nodeJSON
	extra, err := decodeExtra(b, &in)
	if err != nil {
		return err
	}
	*n = Node{
		ID:       in.ID,
		Kind:     in.Type,
		Position: in.Position,
		Width:    in.Width,
		Height:   in.Height,
		Extra:    extra,
	}
	data := newData(in.Type)
	if data == nil {
		if len(in.Data) > 0 {
			var buf bytes.Buffer
			if err := json.Compact(&buf, in.Data); err != nil {
				return err
			}
			n.Raw = buf.Bytes()
		}
		return nil
	}
	if len(in.Data) > 0 && string(in.Data) != "null" {
		if err := json.Unmarshal(in.Data, data); err != nil {
			return fmt.Errorf("node %s: decode %s data: %w", in.ID, in.Type, err)
		}
	}
	n.Data = data
	return nil
}
