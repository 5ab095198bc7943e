// Package handler implements the HTTP handlers for the store locator API.
// Handlers bind and validate request parameters, call a service, and map the
// result (or error) to a JSON response. Methods are split into files by
// resource (health.go, store.go, delivery.go) but share the Server struct.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/storefinder/backend/internal/domain"
	"github.com/storefinder/backend/internal/validator"
)

// StoreServicer defines the catalog reads the store handlers depend on.
// Defining the interface here, in the consumer package, lets handler tests
// inject a mock without a database.
type StoreServicer interface {
	GetByID(ctx context.Context, storeID string) (domain.Store, error)
	List(ctx context.Context, p domain.PageParams) (domain.StorePage, error)
	ListByState(ctx context.Context, state string, p domain.PageParams) (domain.StorePage, error)
}

// DeliveryServicer defines the postal-code driven operations.
type DeliveryServicer interface {
	ListNearby(ctx context.Context, postalCode string) ([]domain.NearbyStore, error)
	QuoteNearestStore(ctx context.Context, postalCode string) (domain.DeliveryQuote, error)
}

// Server holds the dependencies shared by every handler.
type Server struct {
	stores   StoreServicer
	delivery DeliveryServicer
	validate *validator.Validator
	log      *slog.Logger
}

// NewServer constructs the Server with all its dependencies.
func NewServer(stores StoreServicer, delivery DeliveryServicer, v *validator.Validator, log *slog.Logger) *Server {
	return &Server{stores: stores, delivery: delivery, validate: v, log: log}
}

// Routes returns the API router. Middleware is applied by the caller.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)

	r.Route("/stores", func(r chi.Router) {
		r.Get("/", s.ListStores)
		r.Get("/state/{state}", s.ListStoresByState)
		r.Get("/nearby/{postalCode}", s.ListNearbyStores)
		r.Get("/delivery/{postalCode}", s.QuoteDelivery)
		r.Get("/{storeID}", s.GetStore)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, notFoundBody("Rota não encontrada."))
	})
	return r
}
