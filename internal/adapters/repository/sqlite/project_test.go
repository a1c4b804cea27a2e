package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentgraph/agentgraph/internal/adapters/repository/storetest"
	"github.com/agentgraph/agentgraph/internal/core/project"
	"github.com/agentgraph/agentgraph/pkg/serialization"
)

func TestStore(t *testing.T) {
	ctx := context.Background()
	store, err := Open(ctx, ":memory:", nil)
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Ping(ctx))

	clock := storetest.NewClock()
	storetest.Run(t, store.WithClock(clock.Now), clock)
}

func TestStore_FileAndCustomTable(t *testing.T) {
	ctx := context.Background()
	s, err := serialization.New(serialization.Config{Codec: serialization.JSONCodec{}, Compression: serialization.CompressionGzip})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "projects.db")
	store, err := Open(ctx, path, s)
	require.NoError(t, err)
	store.WithTableName("canvas_projects")
	require.NoError(t, store.CreateTables(ctx))
	require.NoError(t, store.Save(ctx, project.NewRecord("p", storetest.Document("P"))))
	require.NoError(t, store.Close())

	reopened, err := Open(ctx, path, s)
	require.NoError(t, err)
	defer reopened.Close()
	reopened.WithTableName("canvas_projects")

	got, err := reopened.Load(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, "P", got.Name)
	assert.Equal(t, "Bot", got.Document.Nodes[0].Agent().Name)

	_, err = reopened.WithTableName("projects").Load(ctx, "p")
	assert.ErrorIs(t, err, project.ErrProjectNotFound)
}

func TestStore_UnsafeTableNameIgnored(t *testing.T) {
	store := NewStore(nil, nil).WithTableName("projects; DROP TABLE x")
	assert.Equal(t, "projects", store.tableName)
}

func TestBuildListQuery(t *testing.T) {
	store := NewStore(nil, nil)

	q, args := store.buildListQuery(project.Filter{})
	assert.Equal(t, "SELECT "+columns+" FROM projects ORDER BY updated_at DESC, id ASC", q)
	assert.Empty(t, args)

	q, args = store.buildListQuery(project.Filter{Name: "n", Offset: 2})
	assert.Contains(t, q, "WHERE name = ?")
	assert.Contains(t, q, "LIMIT ? OFFSET ?")
	assert.Equal(t, []any{"n", -1, 2}, args)
}
