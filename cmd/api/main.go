// Package main is the entry point for the store locator API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/storefinder/backend/internal/app"
	"github.com/storefinder/backend/internal/config"
	"github.com/storefinder/backend/internal/handler"
	"github.com/storefinder/backend/internal/middleware"
	"github.com/storefinder/backend/internal/service"
	"github.com/storefinder/backend/internal/upstream/googlemaps"
	"github.com/storefinder/backend/internal/upstream/melhorenvio"
	"github.com/storefinder/backend/internal/upstream/viacep"
	"github.com/storefinder/backend/internal/validator"
)

// maxRequestBody caps request bodies. Every route is a GET, so anything
// larger than a few KB is not a legitimate client.
const maxRequestBody = 64 << 10

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		// Default logger until the configured one exists.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	logger := app.NewLogger(os.Stdout, cfg.LogLevel)
	slog.SetDefault(logger)

	// --- Catalog ----------------------------------------------------------
	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	catalog, closeCatalog, err := app.OpenCatalog(startCtx, cfg, logger)
	cancelStart()
	if err != nil {
		slog.Error("failed to open store catalog", "backend", cfg.CatalogBackend, "error", err)
		os.Exit(1)
	}
	defer closeCatalog()

	// --- Upstream APIs ----------------------------------------------------
	// One client for all three APIs; the timeout bounds each call.
	httpClient := &http.Client{Timeout: cfg.UpstreamTimeout}
	postal := viacep.New(cfg.ViaCEPBaseURL, httpClient, logger)
	maps := googlemaps.New(cfg.GoogleMapsBaseURL, cfg.GoogleAPIKey, httpClient, logger)
	carrier := melhorenvio.New(cfg.MelhorEnvioBaseURL, cfg.MelhorEnvioAPIKey, httpClient, logger)

	// --- Services & handlers ----------------------------------------------
	v := validator.New()
	stores := service.NewStoreService(catalog, v)
	delivery := service.NewDeliveryService(postal, maps, catalog, carrier)
	srv := handler.NewServer(stores, delivery, v, logger)

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Logger → Recoverer → CORS → body limit.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(maxRequestBody))
	r.Mount("/", srv.Routes())

	// --- HTTP Server ------------------------------------------------------
	// The delivery route chains up to four upstream calls, so the write
	// timeout leaves room for several UpstreamTimeouts.
	httpSrv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      4*cfg.UpstreamTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Graceful shutdown: wait for OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", httpSrv.Addr, "catalog", cfg.CatalogBackend, "env", cfg.Env)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case <-stop:
		slog.Info("shutting down server")
	case err := <-serveErr:
		slog.Error("server error", "error", err)
		closeCatalog()
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		return
	}
	slog.Info("server stopped")
}
