// Package storetest holds the behaviour every project.Store must share.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentgraph/agentgraph/internal/core/graph"
	"github.com/agentgraph/agentgraph/internal/core/project"
)

// Clock is a manually advanced time source.
type Clock struct {
	t time.Time
}

// NewClock starts at a fixed instant.
func NewClock() *Clock {
	return &Clock{t: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
}

// Now returns the current instant.
func (c *Clock) Now() time.Time { return c.t }

// Advance moves the clock forward.
func (c *Clock) Advance(d time.Duration) { c.t = c.t.Add(d) }

// Document returns a small graph wrapped in a project document.
func Document(name string) *project.Document {
	x := project.Exporter{Now: NewClock().Now}
	nodes := []*graph.Node{
		{ID: "1", Kind: graph.KindAgent, Position: graph.Position{X: 1, Y: 2}, Data: &graph.AgentData{Name: "Bot", Instructions: "Help"}},
		{ID: "2", Kind: graph.KindRunner, Data: &graph.RunnerData{Input: "Hi"}},
		{ID: "3", Kind: "note", Raw: []byte(`{"text":"x"}`)},
	}
	edges := []*graph.Edge{{ID: "e1", Source: "1", SourceHandle: "b", Target: "2", TargetHandle: "a"}}
	return x.NewDocument(nodes, edges, name, name+" description")
}

// Run exercises store. The clock must be the one the store was built with.
func Run(t *testing.T, store project.Store, clock *Clock) {
	ctx := context.Background()

	t.Run("save and load", func(t *testing.T) {
		doc := Document("Alpha")
		rec := project.NewRecord("alpha", doc)
		require.NoError(t, store.Save(ctx, rec))
		assert.Equal(t, 1, rec.Revision)
		assert.True(t, clock.Now().Equal(rec.CreatedAt))

		got, err := store.Load(ctx, "alpha")
		require.NoError(t, err)
		assert.Equal(t, "Alpha", got.Name)
		assert.Equal(t, "Alpha description", got.Description)
		assert.Equal(t, 1, got.Revision)
		require.NotNil(t, got.Document)
		assert.Equal(t, doc.Nodes, got.Document.Nodes)
		assert.Equal(t, doc.Edges, got.Document.Edges)
		assert.Equal(t, doc.Metadata.Name, got.Document.Metadata.Name)
		assert.True(t, doc.Metadata.Created.Equal(got.Document.Metadata.Created))
	})

	t.Run("save again bumps revision", func(t *testing.T) {
		clock.Advance(time.Minute)
		doc := Document("Alpha v2")
		rec := project.NewRecord("alpha", doc)
		require.NoError(t, store.Save(ctx, rec))
		assert.Equal(t, 2, rec.Revision)

		got, err := store.Load(ctx, "alpha")
		require.NoError(t, err)
		assert.Equal(t, 2, got.Revision)
		assert.Equal(t, "Alpha v2", got.Name)
		assert.Equal(t, time.Minute, got.UpdatedAt.Sub(got.CreatedAt))
	})

	t.Run("list", func(t *testing.T) {
		clock.Advance(time.Minute)
		require.NoError(t, store.Save(ctx, project.NewRecord("beta", Document("Beta"))))
		clock.Advance(time.Minute)
		require.NoError(t, store.Save(ctx, project.NewRecord("gamma", Document("Gamma"))))

		all, err := store.List(ctx, project.Filter{})
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, []string{"gamma", "beta", "alpha"}, ids(all))

		page, err := store.List(ctx, project.Filter{Limit: 1, Offset: 1})
		require.NoError(t, err)
		assert.Equal(t, []string{"beta"}, ids(page))

		named, err := store.List(ctx, project.Filter{Name: "Gamma"})
		require.NoError(t, err)
		assert.Equal(t, []string{"gamma"}, ids(named))

		since := clock.Now().Add(-time.Minute)
		recent, err := store.List(ctx, project.Filter{Since: &since})
		require.NoError(t, err)
		assert.Equal(t, []string{"gamma", "beta"}, ids(recent))

		before := clock.Now()
		older, err := store.List(ctx, project.Filter{Before: &before})
		require.NoError(t, err)
		assert.Equal(t, []string{"beta", "alpha"}, ids(older))

		_, err = store.List(ctx, project.Filter{Limit: -1})
		assert.ErrorIs(t, err, project.ErrInvalidLimit)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, "beta"))
		_, err := store.Load(ctx, "beta")
		assert.ErrorIs(t, err, project.ErrProjectNotFound)
		assert.ErrorIs(t, store.Delete(ctx, "beta"), project.ErrProjectNotFound)
	})

	t.Run("invalid input", func(t *testing.T) {
		assert.ErrorIs(t, store.Save(ctx, nil), project.ErrInvalidProjectID)
		assert.ErrorIs(t, store.Save(ctx, &project.Record{ID: "x"}), project.ErrNilDocument)
		_, err := store.Load(ctx, "")
		assert.ErrorIs(t, err, project.ErrInvalidProjectID)
		_, err = store.Load(ctx, "missing")
		assert.ErrorIs(t, err, project.ErrProjectNotFound)
		assert.ErrorIs(t, store.Delete(ctx, ""), project.ErrInvalidProjectID)
	})
}

func ids(records []*project.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}
