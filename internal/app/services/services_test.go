package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentgraph/agentgraph/internal/adapters/repository/memory"
	"github.com/agentgraph/agentgraph/internal/app/dto"
	"github.com/agentgraph/agentgraph/internal/codegen"
	"github.com/agentgraph/agentgraph/internal/core/graph"
	"github.com/agentgraph/agentgraph/internal/core/project"
	"github.com/agentgraph/agentgraph/internal/infrastructure/metrics"
	"github.com/agentgraph/agentgraph/pkg/validation"
)

const projectFile = `{
  "nodes": [
    {"id": "1", "type": "agent", "position": {"x": 0, "y": 0}, "data": {"name": "Bot", "instructions": "Hi"}},
    {"id": "2", "type": "runner", "position": {"x": 200, "y": 0}, "data": {"input": "Hello", "isAsync": false}}
  ],
  "edges": [{"id": "e1", "source": "1", "sourceHandle": "b", "target": "2", "targetHandle": "a"}],
  "metadata": {"name": "Demo", "version": "1.0", "created": "2024-03-01T09:00:00Z", "lastModified": "2024-03-01T09:00:00Z"}
}`

func botGraph() *graph.Graph {
	b := graph.NewBuilder()
	agent := b.Add(&graph.AgentData{Name: "Bot", Instructions: "Hi"})
	runner := b.Add(&graph.RunnerData{Input: "Hello"})
	if err := b.Drive(agent, runner); err != nil {
		panic(err)
	}
	return b.Graph()
}

func TestGenerateService_Options(t *testing.T) {
	svc := NewGenerateService(codegen.DefaultOptions())
	off := false

	tests := []struct {
		name string
		in   validation.GenerateOptions
		want codegen.Options
	}{
		{"defaults", validation.GenerateOptions{}, codegen.DefaultOptions()},
		{
			"tiered",
			validation.GenerateOptions{Ordering: "tiered"},
			codegen.Options{Ordering: codegen.OrderTiered, DisambiguateNames: true, WorkflowName: codegen.DefaultWorkflowName},
		},
		{
			"no disambiguation and a name",
			validation.GenerateOptions{DisambiguateNames: &off, WorkflowName: "Support"},
			codegen.Options{Ordering: codegen.OrderTopological, WorkflowName: "Support"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, svc.Options(tt.in))
		})
	}
	assert.Equal(t, codegen.DefaultOptions(), svc.Defaults())
}

func TestGenerateService_Generate(t *testing.T) {
	svc := NewGenerateService(codegen.DefaultOptions())
	before := metrics.Snapshot()

	res := svc.Generate(botGraph(), svc.Defaults())
	assert.Contains(t, res.Code, "bot = Agent(")
	assert.Contains(t, res.Code, "await Runner.run(bot, input=\"Hello\")")
	assert.Equal(t, 1, res.Stats.Workflows)

	after := metrics.Snapshot()
	assert.Equal(t, int64(1), after["agentgraph_generations_total"]-before["agentgraph_generations_total"])
	assert.Equal(t, int64(1), after["agentgraph_workflows_total"]-before["agentgraph_workflows_total"])
}

func TestGenerateService_GenerateRequest(t *testing.T) {
	svc := NewGenerateService(codegen.DefaultOptions())
	g := botGraph()

	resp := svc.GenerateRequest(&validation.GenerateRequest{Nodes: g.Nodes, Edges: g.Edges})
	assert.Contains(t, resp.Code, "Runner.run")
	assert.NotNil(t, resp.Warnings)
	assert.Equal(t, []string{codegen.SDKPackage}, resp.Requirements)
}

func TestGenerateService_Validate(t *testing.T) {
	svc := NewGenerateService(codegen.DefaultOptions())

	resp := svc.Validate(botGraph())
	assert.True(t, resp.Valid)
	assert.NotNil(t, resp.Errors)
	assert.Equal(t, 0, resp.Count)

	bad := graph.New(botGraph().Nodes, []*graph.Edge{{ID: "e", Source: "ghost", Target: "nowhere"}})
	resp = svc.Validate(bad)
	assert.False(t, resp.Valid)
	assert.Equal(t, 2, resp.Count)
	assert.True(t, resp.Errors.Has(validation.CodeDanglingEdge))
}

func newProjectService(t *testing.T) (*ProjectService, *memory.Store) {
	t.Helper()
	now := time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)
	store := memory.New(memory.WithClock(func() time.Time { return now }))
	n := 0
	svc := NewProjectService(store,
		WithClock(func() time.Time { return now }),
		WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("project-%d", n)
		}),
	)
	return svc, store
}

func TestProjectService_ImportExport(t *testing.T) {
	svc, store := newProjectService(t)
	ctx := context.Background()

	rec, err := svc.Import(ctx, []byte(projectFile))
	require.NoError(t, err)
	assert.Equal(t, "project-1", rec.ID)
	assert.Equal(t, "Demo", rec.Name)
	assert.Equal(t, 1, rec.Revision)
	assert.Equal(t, 1, store.Len())

	got, data, err := svc.Export(ctx, "project-1")
	require.NoError(t, err)
	assert.Equal(t, "Demo", got.Name)
	doc, err := project.Import(data)
	require.NoError(t, err)
	require.Len(t, doc.Nodes, 2)
	assert.Equal(t, "Bot", doc.Nodes[0].Name())
}

func TestProjectService_Update(t *testing.T) {
	svc, _ := newProjectService(t)
	ctx := context.Background()

	rec, err := svc.Import(ctx, []byte(projectFile))
	require.NoError(t, err)

	updated, err := svc.Update(ctx, rec.ID, []byte(projectFile))
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Revision)
	assert.Equal(t, time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC), updated.Document.Metadata.LastModified)

	_, err = svc.Update(ctx, "", []byte(projectFile))
	assert.ErrorIs(t, err, dto.ErrMissingProjectID)
}

func TestProjectService_ImportDefaults(t *testing.T) {
	svc, _ := newProjectService(t)
	rec, err := svc.Import(context.Background(), []byte(`{"nodes":[],"edges":[],"metadata":{}}`))
	require.NoError(t, err)
	assert.Equal(t, project.DefaultName, rec.Name)
	assert.Equal(t, project.FormatVersion, rec.Document.Metadata.Version)
}

func TestProjectService_ImportRejected(t *testing.T) {
	svc, store := newProjectService(t)
	ctx := context.Background()
	before := metrics.Snapshot()

	_, err := svc.Import(ctx, nil)
	assert.ErrorIs(t, err, dto.ErrEmptyBody)

	_, err = svc.Import(ctx, []byte(`{"nodes":[]}`))
	assert.ErrorIs(t, err, project.ErrInvalidFormat)
	var fe *project.FormatError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "edges", fe.Field)

	assert.Equal(t, 0, store.Len())
	after := metrics.Snapshot()
	assert.Equal(t, int64(2), after["agentgraph_import_failures_total"]-before["agentgraph_import_failures_total"])
}

func TestProjectService_ListDelete(t *testing.T) {
	svc, _ := newProjectService(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Import(ctx, []byte(projectFile))
		require.NoError(t, err)
	}

	list, err := svc.List(ctx, project.Filter{Limit: 2})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 2, list[0].Nodes)
	assert.Equal(t, 1, list[0].Edges)

	_, err = svc.List(ctx, project.Filter{Limit: -1})
	assert.ErrorIs(t, err, project.ErrInvalidLimit)

	require.NoError(t, svc.Delete(ctx, "project-2"))
	_, err = svc.Get(ctx, "project-2")
	assert.ErrorIs(t, err, project.ErrProjectNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, "project-2"), project.ErrProjectNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, ""), dto.ErrMissingProjectID)
	_, err = svc.Get(ctx, "")
	assert.ErrorIs(t, err, dto.ErrMissingProjectID)
}
