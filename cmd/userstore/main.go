package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/dkharitonov/userstore/internal/config"
	"github.com/dkharitonov/userstore/internal/logging"
	"github.com/dkharitonov/userstore/internal/storage"
)

func newManager(cfg *config.Config) (storage.Manager, error) {
	switch cfg.Backend {
	case config.BackendPostgres:
		return storage.NewPostgresManager(cfg.DatabaseDSN)
	case config.BackendSQLite:
		return storage.NewSQLiteManager(cfg.DatabaseDSN)
	default:
		return nil, fmt.Errorf("unknown backend: %s", cfg.Backend)
	}
}

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	m, err := newManager(cfg)
	if err != nil {
		logger.Error(ctx, err.Error())
		os.Exit(1)
	}
	defer m.Close()

	logger.Info(ctx, "provisioning user store", "backend", cfg.Backend)

	if err := m.Provision(ctx); err != nil {
		logger.Error(ctx, "provisioning failed", "error", err.Error())
		os.Exit(1)
	}

	logger.Info(ctx, "user store provisioned")
}
