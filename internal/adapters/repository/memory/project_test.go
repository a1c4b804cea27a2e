package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentgraph/agentgraph/internal/adapters/repository/storetest"
	"github.com/agentgraph/agentgraph/internal/core/project"
	"github.com/agentgraph/agentgraph/pkg/serialization"
)

func TestStore(t *testing.T) {
	clock := storetest.NewClock()
	storetest.Run(t, New(WithClock(clock.Now)), clock)
}

func TestStore_JSONSerializer(t *testing.T) {
	s, err := serialization.New(serialization.Config{Codec: serialization.JSONCodec{}})
	require.NoError(t, err)
	clock := storetest.NewClock()
	storetest.Run(t, New(WithSerializer(s), WithClock(clock.Now)), clock)
}

func TestStore_LoadReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store := New()
	require.NoError(t, store.Save(ctx, project.NewRecord("p", storetest.Document("P"))))

	got, err := store.Load(ctx, "p")
	require.NoError(t, err)
	got.Document.Nodes[0].Agent().Name = "changed"

	again, err := store.Load(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, "Bot", again.Document.Nodes[0].Agent().Name)
}

func TestStore_Concurrent(t *testing.T) {
	ctx := context.Background()
	store := New()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, store.Save(ctx, project.NewRecord("shared", storetest.Document("S"))))
			_, err := store.Load(ctx, "shared")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := store.Load(ctx, "shared")
	require.NoError(t, err)
	assert.Equal(t, 20, got.Revision)
	assert.Equal(t, 1, store.Len())
}
