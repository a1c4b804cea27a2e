// Package main provides the agentgraph HTTP server: code generation,
// validation and project storage for the canvas.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/agentgraph/agentgraph/internal/adapters/repository/memory"
	"github.com/agentgraph/agentgraph/internal/adapters/repository/postgres"
	"github.com/agentgraph/agentgraph/internal/adapters/repository/sqlite"
	"github.com/agentgraph/agentgraph/internal/app/services"
	"github.com/agentgraph/agentgraph/internal/config"
	"github.com/agentgraph/agentgraph/internal/core/project"
	"github.com/agentgraph/agentgraph/internal/log"
	"github.com/agentgraph/agentgraph/internal/server"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("agentgraph-server: %v", err)
	}
}

func run() error {
	cfg, err := config.Load(".env")
	if err != nil {
		return err
	}
	log.SetLevel(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, health, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	srv := server.New(
		services.NewGenerateService(cfg.GenerateOptions()),
		services.NewProjectService(store),
		server.WithCORSOrigins(cfg.Server.CORSOrigins...),
		server.WithMaxBodyBytes(cfg.Server.MaxBodyBytes),
		server.WithHealthCheck(health),
	)
	httpServer := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      srv.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infow("starting agentgraph server", "addr", cfg.Server.Addr, "store", cfg.Store.Backend)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Infof("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// openStore builds the configured project store, its health check and its
// release function.
func openStore(ctx context.Context, cfg *config.Config) (project.Store, func(context.Context) error, func(), error) {
	ser, err := cfg.NewSerializer()
	if err != nil {
		return nil, nil, nil, err
	}

	switch cfg.Store.Backend {
	case config.BackendSQLite:
		s, err := sqlite.Open(ctx, cfg.Store.SQLiteDSN, ser)
		if err != nil {
			return nil, nil, nil, err
		}
		if cfg.Store.TableName != "" {
			s.WithTableName(cfg.Store.TableName)
			if err := s.CreateTables(ctx); err != nil {
				s.Close()
				return nil, nil, nil, err
			}
		}
		return s, s.Ping, func() { _ = s.Close() }, nil
	case config.BackendPostgres:
		pool, err := postgres.NewPool(ctx, cfg.Store.Postgres)
		if err != nil {
			return nil, nil, nil, err
		}
		s := postgres.NewStore(pool, ser)
		if cfg.Store.TableName != "" {
			s.WithTableName(cfg.Store.TableName)
		}
		if err := s.CreateTables(ctx); err != nil {
			s.Close()
			return nil, nil, nil, err
		}
		return s, s.Ping, func() { _ = s.Close() }, nil
	case config.BackendMemory, "":
		s := memory.New(memory.WithSerializer(ser))
		return s, func(context.Context) error { return nil }, func() {}, nil
	}
	return nil, nil, nil, fmt.Errorf("%w: unknown store backend %q", config.ErrInvalidConfig, cfg.Store.Backend)
}
