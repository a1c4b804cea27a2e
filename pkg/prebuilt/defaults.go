package prebuilt

import (
	"errors"

	"github.com/agentgraph/agentgraph/internal/core/graph"
)

// ErrUnknownTemplate is returned by Registry.Build for unregistered names.
var ErrUnknownTemplate = errors.New("unknown template")

// Palette defaults, as the editor fills them in when a node is dropped
// onto the canvas. Tool implementations hold the function body only.
const (
	DefaultAgentName    = "New Agent"
	DefaultInstructions = "You are a helpful assistant."
	DefaultInput        = "Initial input"
	DefaultToolName     = "new_function"
)

// Defaults returns fresh attributes for a newly placed node of kind, or nil
// for an unknown kind.
func Defaults(kind graph.Kind) graph.NodeData {
	switch kind {
	case graph.KindAgent:
		return &graph.AgentData{Name: DefaultAgentName, Instructions: DefaultInstructions}
	case graph.KindRunner:
		async := true
		return &graph.RunnerData{Input: DefaultInput, IsAsync: &async}
	case graph.KindFunctionTool:
		return &graph.FunctionToolData{
			Name:           DefaultToolName,
			Parameters:     "param: str",
			ReturnType:     "str",
			Implementation: "return f\"Processed: {param}\"",
		}
	case graph.KindMCP:
		return &graph.MCPData{Name: "filesystem", ServerType: graph.MCPServerFilesystem, Directory: "."}
	case graph.KindPythonCode:
		return &graph.PythonCodeData{Name: "code"}
	}
	return nil
}
