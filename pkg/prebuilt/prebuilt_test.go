package prebuilt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentgraph/agentgraph/internal/codegen"
	"github.com/agentgraph/agentgraph/internal/core/graph"
	"github.com/agentgraph/agentgraph/pkg/validation"
)

func TestDefaultRegistry_Names(t *testing.T) {
	assert.Equal(t, []string{Assistant, FileAgent, ToolAgent, Triage}, DefaultRegistry.Names())
}

func TestTemplates_CompileCleanly(t *testing.T) {
	tests := []struct {
		template string
		contains []string
	}{
		{Assistant, []string{
			"assistant = Agent(",
			`result = await Runner.run(assistant, input="Initial input")`,
		}},
		{ToolAgent, []string{
			"@function_tool",
			"def new_function(param: str) -> str:",
			`    return f"Processed: {param}"`,
			"tools=[new_function],",
		}},
		{Triage, []string{
			"handoffs=[billing_agent, support_agent],",
			`handoff_description="Specialist for billing questions",`,
			`result = await Runner.run(triage_agent, input="Initial input")`,
		}},
		{FileAgent, []string{
			"filesystem = MCPServerStdio(",
			`"args": ["-y", "@modelcontextprotocol/server-filesystem", "."],`,
			"mcp_servers=[filesystem],",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.template, func(t *testing.T) {
			g, err := DefaultRegistry.Build(tt.template, Config{})
			require.NoError(t, err)
			assert.Empty(t, validation.ValidateGraph(g))

			res := codegen.New(codegen.DefaultOptions()).Generate(g)
			assert.Empty(t, res.Warnings)
			for _, want := range tt.contains {
				assert.Contains(t, res.Code, want)
			}
		})
	}
}

func TestTemplates_Config(t *testing.T) {
	g, err := DefaultRegistry.Build("ASSISTANT", Config{AgentName: "Helper", Input: "What's new?", Trace: true})
	require.NoError(t, err)

	agents := g.OfKind(graph.KindAgent)
	require.Len(t, agents, 1)
	assert.Equal(t, "Helper", agents[0].Agent().Name)

	runners := g.OfKind(graph.KindRunner)
	require.Len(t, runners, 1)
	assert.Equal(t, "What's new?", runners[0].Runner().Input)
	assert.True(t, runners[0].Runner().Trace)
	assert.Equal(t, graph.Position{X: columnStep}, runners[0].Position)
}

func TestRegistry_UnknownTemplate(t *testing.T) {
	_, err := DefaultRegistry.Build("pipeline", Config{})
	assert.ErrorIs(t, err, ErrUnknownTemplate)
}

func TestRegistry_MustRegisterDuplicate(t *testing.T) {
	r := NewRegistry()
	b := NewBuildFunc("x", "", buildAssistant)
	r.MustRegister(b)
	assert.Panics(t, func() { r.MustRegister(b) })
}

func TestDefaults(t *testing.T) {
	for _, kind := range graph.Kinds {
		d := Defaults(kind)
		require.NotNil(t, d, kind)
		assert.Equal(t, kind, d.Kind())
	}
	assert.Nil(t, Defaults("image"))
	assert.True(t, Defaults(graph.KindRunner).(*graph.RunnerData).Async())
}
