package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentgraph/agentgraph/internal/config"
	"github.com/agentgraph/agentgraph/internal/core/project"
)

func TestOpenStore(t *testing.T) {
	dsn := "file:" + filepath.Join(t.TempDir(), "agentgraph.db")
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"memory", map[string]string{}},
		{"sqlite", map[string]string{"AGENTGRAPH_STORE": "sqlite", "AGENTGRAPH_SQLITE_DSN": dsn, "AGENTGRAPH_TABLE": "canvas"}},
		{"sqlite with gzip json", map[string]string{"AGENTGRAPH_STORE": "sqlite", "AGENTGRAPH_SQLITE_DSN": ":memory:", "AGENTGRAPH_CODEC": "json", "AGENTGRAPH_COMPRESSION": "gzip"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			cfg := config.FromEnv(func(k string) string { return tt.env[k] })
			require.NoError(t, cfg.Validate())

			store, health, closeStore, err := openStore(ctx, cfg)
			require.NoError(t, err)
			defer closeStore()

			require.NoError(t, health(ctx))
			doc := project.Exporter{}.NewDocument(nil, nil, "Flow", "")
			require.NoError(t, store.Save(ctx, project.NewRecord("p1", doc)))
			got, err := store.Load(ctx, "p1")
			require.NoError(t, err)
			assert.Equal(t, "Flow", got.Document.Metadata.Name)
		})
	}
}

func TestOpenStore_PostgresWithoutURL(t *testing.T) {
	cfg := config.FromEnv(func(k string) string {
		return map[string]string{"AGENTGRAPH_STORE": "postgres"}[k]
	})
	_, _, _, err := openStore(context.Background(), cfg)
	assert.Error(t, err)
}
