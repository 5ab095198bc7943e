// Command seed-stores loads a YAML list of stores into the configured catalog.
//
// Usage:
//
//	seed-stores -file stores.yaml
//
// Every store goes through the same normalization and validation as the
// service layer applies. The exit code is 1 when any store failed.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/storefinder/backend/internal/app"
	"github.com/storefinder/backend/internal/config"
	"github.com/storefinder/backend/internal/seed"
	"github.com/storefinder/backend/internal/service"
	"github.com/storefinder/backend/internal/validator"
)

func main() {
	path := flag.String("file", "stores.yaml", "YAML file with a top-level stores: list")
	flag.Parse()

	cfg, err := config.LoadCatalog()
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}
	logger := app.NewLogger(os.Stderr, cfg.LogLevel)
	slog.SetDefault(logger)

	if code := run(cfg, *path, logger); code != 0 {
		os.Exit(code)
	}
}

func run(cfg config.Config, path string, logger *slog.Logger) int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	f, err := os.Open(path)
	if err != nil {
		logger.Error("cannot open seed file", "file", path, "error", err)
		return 1
	}
	defer func() { _ = f.Close() }()

	stores, err := seed.Decode(f)
	if err != nil {
		logger.Error("cannot decode seed file", "file", path, "error", err)
		return 1
	}

	catalog, closeCatalog, err := app.OpenCatalog(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open store catalog", "backend", cfg.CatalogBackend, "error", err)
		return 1
	}
	defer closeCatalog()

	svc := service.NewStoreService(catalog, validator.New())
	res, err := seed.Run(ctx, svc, stores, logger)
	logger.Info("seed finished", "file", path, "total", len(stores), "saved", res.Saved, "failed", res.Failed)
	if err != nil {
		logger.Error("seed interrupted", "error", err)
		return 1
	}
	if res.Failed > 0 {
		return 1
	}
	return 0
}
