// Package app holds the startup wiring shared by the API server and the
// seed command: logger construction and opening the configured store catalog.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for database/sql
	"github.com/olivere/elastic/v7"

	"github.com/storefinder/backend/internal/config"
	"github.com/storefinder/backend/internal/repo"
	"github.com/storefinder/backend/migrations"
)

// NewLogger returns a JSON slog.Logger writing to w at level. Unknown level
// names fall back to info.
func NewLogger(w io.Writer, level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl}))
}

// OpenCatalog connects to the catalog selected by cfg.CatalogBackend and
// prepares its schema: goose migrations for PostGIS, the index mapping for
// Elasticsearch. The returned close func releases the connection.
func OpenCatalog(ctx context.Context, cfg config.Config, log *slog.Logger) (repo.StoreRepo, func(), error) {
	switch cfg.CatalogBackend {
	case config.BackendElasticsearch:
		return openElastic(ctx, cfg, log)
	default:
		return openPostgres(ctx, cfg, log)
	}
}

func openPostgres(ctx context.Context, cfg config.Config, log *slog.Logger) (repo.StoreRepo, func(), error) {
	if err := migrate(ctx, cfg.DatabaseURL, log); err != nil {
		return nil, nil, err
	}

	// pgxpool.New does not open connections immediately; the ping does.
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("app.OpenCatalog: create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("app.OpenCatalog: ping database: %w", err)
	}
	log.Info("database connection established")

	return repo.NewStoreRepo(pool), pool.Close, nil
}

// migrate applies pending goose migrations over a short-lived database/sql
// connection, which is what goose drives.
func migrate(ctx context.Context, dsn string, log *slog.Logger) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("app.migrate: open: %w", err)
	}
	defer func() { _ = db.Close() }()

	applied, err := migrations.Up(ctx, db)
	if err != nil {
		return fmt.Errorf("app.migrate: %w", err)
	}
	log.Info("migrations applied", "count", applied)
	return nil
}

func openElastic(ctx context.Context, cfg config.Config, log *slog.Logger) (repo.StoreRepo, func(), error) {
	// Sniffing resolves node addresses that are unreachable from outside a
	// container network, so only the configured URL is used.
	client, err := elastic.NewClient(
		elastic.SetURL(cfg.ElasticsearchURL),
		elastic.SetSniff(false),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("app.OpenCatalog: elasticsearch client: %w", err)
	}

	catalog := repo.NewElasticStoreRepo(client, cfg.ElasticsearchIndex)
	created, err := catalog.EnsureIndex(ctx)
	if err != nil {
		client.Stop()
		return nil, nil, fmt.Errorf("app.OpenCatalog: %w", err)
	}
	log.Info("elasticsearch catalog ready", "index", cfg.ElasticsearchIndex, "created", created)

	return catalog, client.Stop, nil
}
