package usecases

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentgraph/agentgraph/internal/app/dto"
	"github.com/agentgraph/agentgraph/internal/app/services"
	"github.com/agentgraph/agentgraph/internal/codegen"
	"github.com/agentgraph/agentgraph/internal/core/project"
)

func projectFile(agent string) []byte {
	return []byte(fmt.Sprintf(`{
  "nodes": [
    {"id": "1", "type": "agent", "position": {"x": 0, "y": 0}, "data": {"name": %q}},
    {"id": "2", "type": "runner", "position": {"x": 0, "y": 0}, "data": {"input": "Hi"}}
  ],
  "edges": [{"id": "e1", "source": "1", "sourceHandle": "b", "target": "2", "targetHandle": "a"}],
  "metadata": {"name": "p", "version": "1.0", "created": "2024-03-01T09:00:00Z", "lastModified": "2024-03-01T09:00:00Z"}
}`, agent))
}

func newBatch(t *testing.T, size int) *BatchGenerator {
	t.Helper()
	b, err := NewBatchGenerator(services.NewGenerateService(codegen.DefaultOptions()), codegen.DefaultOptions(), size)
	require.NoError(t, err)
	t.Cleanup(b.Close)
	return b
}

func TestNewBatchGenerator_Errors(t *testing.T) {
	_, err := NewBatchGenerator(nil, codegen.DefaultOptions(), 1)
	assert.Error(t, err)

	_, err = NewBatchGenerator(services.NewGenerateService(codegen.DefaultOptions()), codegen.DefaultOptions(), 0)
	assert.Error(t, err)
}

func TestBatchGenerator_Run(t *testing.T) {
	b := newBatch(t, 2)

	jobs := make([]Job, 0, 10)
	for i := 0; i < 9; i++ {
		jobs = append(jobs, Job{Name: fmt.Sprintf("p%d.json", i), Data: projectFile(fmt.Sprintf("Agent %d", i))})
	}
	jobs = append(jobs, Job{Name: "broken.json", Data: []byte(`{"nodes":[]}`)})

	outcomes, err := b.Run(context.Background(), jobs)
	require.NoError(t, err)
	require.Len(t, outcomes, len(jobs))

	for i := 0; i < 9; i++ {
		out := outcomes[i]
		assert.Equal(t, jobs[i].Name, out.Name)
		require.NoError(t, out.Err)
		require.NotNil(t, out.Result)
		assert.Contains(t, out.Result.Code, fmt.Sprintf("agent_%d = Agent(", i))
		assert.Equal(t, "p", out.Document.Metadata.Name)
	}

	broken := outcomes[9]
	assert.Equal(t, "broken.json", broken.Name)
	assert.ErrorIs(t, broken.Err, project.ErrInvalidFormat)
	assert.Nil(t, broken.Result)
}

func TestBatchGenerator_Empty(t *testing.T) {
	_, err := newBatch(t, 1).Run(context.Background(), nil)
	assert.ErrorIs(t, err, dto.ErrEmptyBatch)
}

func TestBatchGenerator_Cancelled(t *testing.T) {
	b := newBatch(t, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcomes, err := b.Run(ctx, []Job{{Name: "a.json", Data: projectFile("A")}})
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.ErrorIs(t, outcomes[0].Err, context.Canceled)
}
