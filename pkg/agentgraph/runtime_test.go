package agentgraph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentgraph/agentgraph/internal/core/project"
	"github.com/agentgraph/agentgraph/pkg/prebuilt"
	"github.com/agentgraph/agentgraph/pkg/validation"
)

func TestRuntime_TemplateRoundTrip(t *testing.T) {
	rt := NewRuntime(DefaultOptions())
	ctx := context.Background()

	data, err := Template(prebuilt.Triage, prebuilt.Config{Input: "My invoice is wrong"}, "Help Desk")
	require.NoError(t, err)

	errs, err := rt.Validate(data)
	require.NoError(t, err)
	assert.Empty(t, errs)

	res, err := rt.Compile(data)
	require.NoError(t, err)
	assert.Contains(t, res.Code, `result = await Runner.run(triage_agent, input="My invoice is wrong")`)

	rec, err := rt.Save(ctx, data)
	require.NoError(t, err)
	assert.Equal(t, "Help Desk", rec.Name)

	stored, err := rt.Code(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, res.Code, stored.Code)
}

func TestRuntime_Errors(t *testing.T) {
	rt := NewRuntime(DefaultOptions())

	_, err := rt.Compile([]byte(`{"nodes": []}`))
	assert.ErrorIs(t, err, project.ErrInvalidFormat)

	_, err = rt.Validate([]byte(`not json`))
	assert.ErrorIs(t, err, project.ErrInvalidFormat)

	_, err = rt.Code(context.Background(), "missing")
	assert.ErrorIs(t, err, project.ErrProjectNotFound)

	_, err = Template("pipeline", prebuilt.Config{}, "")
	assert.ErrorIs(t, err, prebuilt.ErrUnknownTemplate)
}

func TestTemplate_DefaultProjectName(t *testing.T) {
	data, err := Template(prebuilt.Assistant, prebuilt.Config{}, "")
	require.NoError(t, err)
	doc, err := project.Import(data)
	require.NoError(t, err)
	assert.Equal(t, project.DefaultName, doc.Metadata.Name)
	assert.Empty(t, validation.ValidateDocument(doc))
}
