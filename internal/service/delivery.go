// Package service contains the business logic for the store locator API.
// Services enforce business rules and orchestrate repo and upstream calls.
// No SQL or HTTP lives here; services depend on interfaces, not implementations.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/storefinder/backend/internal/domain"
	"github.com/storefinder/backend/internal/repo"
)

// Search radii for the catalog queries, in meters.
const (
	NearbyRadiusMeters = 100_000
	PDVRadiusMeters    = 50_000
)

// PostalLookup resolves a postal code to an address.
// Implemented by viacep.Client.
type PostalLookup interface {
	Resolve(ctx context.Context, code string) (domain.PostalAddress, error)
}

// Geocoder turns addresses into coordinates and measures road travel.
// Implemented by googlemaps.Client.
type Geocoder interface {
	Geocode(ctx context.Context, addr domain.PostalAddress) (domain.Coordinates, error)
	TravelMetrics(ctx context.Context, origin domain.Coordinates, destinations []domain.Coordinates) ([]domain.TravelMetric, error)
}

// CarrierQuoter quotes carrier shipping between two postal codes.
// Implemented by melhorenvio.Client.
type CarrierQuoter interface {
	Quote(ctx context.Context, fromPostalCode, toPostalCode string) ([]domain.CarrierOption, error)
}

// DeliveryService answers "which stores are near this postal code?" and
// "what would delivery from the nearest relevant store cost?".
//
// Each operation is a strictly sequential pipeline: the first failing step
// ends it, and no partial result is returned.
type DeliveryService struct {
	postal  PostalLookup
	geo     Geocoder
	catalog repo.StoreRepo
	carrier CarrierQuoter
	newRef  func() string
}

// NewDeliveryService constructs a DeliveryService from its four collaborators.
func NewDeliveryService(postal PostalLookup, geo Geocoder, catalog repo.StoreRepo, carrier CarrierQuoter) *DeliveryService {
	return &DeliveryService{
		postal:  postal,
		geo:     geo,
		catalog: catalog,
		carrier: carrier,
		newRef:  uuid.NewString,
	}
}

// ListNearby returns every store within NearbyRadiusMeters of postalCode,
// in catalog order, each decorated with road distance and duration.
func (s *DeliveryService) ListNearby(ctx context.Context, postalCode string) ([]domain.NearbyStore, error) {
	_, coords, err := s.locate(ctx, postalCode)
	if err != nil {
		return nil, fmt.Errorf("service.DeliveryService.ListNearby: %w", err)
	}

	stores, err := s.catalog.FindNear(ctx, coords, NearbyRadiusMeters)
	if err != nil {
		return nil, fmt.Errorf("service.DeliveryService.ListNearby: %w", err)
	}
	if len(stores) == 0 {
		return nil, fmt.Errorf("service.DeliveryService.ListNearby: %w",
			domain.NotFound(fmt.Sprintf("Nenhuma loja encontrada no raio de %dKm.", NearbyRadiusMeters/1000)))
	}

	destinations := make([]domain.Coordinates, len(stores))
	for i, st := range stores {
		destinations[i] = st.Coordinates()
	}
	metrics, err := s.travel(ctx, coords, destinations)
	if err != nil {
		return nil, fmt.Errorf("service.DeliveryService.ListNearby: %w", err)
	}

	nearby := make([]domain.NearbyStore, len(stores))
	for i, st := range stores {
		nearby[i] = domain.NearbyStore{
			Store:    st,
			Distance: metrics[i].DistanceText,
			Duration: metrics[i].DurationText,
		}
	}
	return nearby, nil
}

// QuoteNearestStore picks the nearest PDV within PDVRadiusMeters, falling
// back to the nearest store of any type, and prices delivery from it.
func (s *DeliveryService) QuoteNearestStore(ctx context.Context, postalCode string) (domain.DeliveryQuote, error) {
	addr, coords, err := s.locate(ctx, postalCode)
	if err != nil {
		return domain.DeliveryQuote{}, fmt.Errorf("service.DeliveryService.QuoteNearestStore: %w", err)
	}

	store, err := s.nearestStore(ctx, coords)
	if err != nil {
		return domain.DeliveryQuote{}, fmt.Errorf("service.DeliveryService.QuoteNearestStore: %w", err)
	}

	metrics, err := s.travel(ctx, coords, []domain.Coordinates{store.Coordinates()})
	if err != nil {
		return domain.DeliveryQuote{}, fmt.Errorf("service.DeliveryService.QuoteNearestStore: %w", err)
	}
	metric := metrics[0]

	var lines []domain.DeliveryQuoteLine
	if store.Type == domain.StoreTypePDV {
		lines = []domain.DeliveryQuoteLine{localDeliveryLine(metric.DurationSeconds)}
	} else {
		options, err := s.carrier.Quote(ctx, store.PostalCode, addr.RawCode)
		if err != nil {
			return domain.DeliveryQuote{}, fmt.Errorf("service.DeliveryService.QuoteNearestStore: %w",
				asNotFound(err, "Nenhuma opção de frete encontrada para o cálculo."))
		}
		lines = carrierLines(options, s.newRef)
	}

	return domain.DeliveryQuote{
		Store:           store,
		Distance:        metric.DistanceText,
		DeliveryAddress: addr.Locality + ", " + addr.State,
		Lines:           lines,
		Pins: []domain.Pin{{
			Position: store.Coordinates(),
			Title:    store.StoreName,
		}},
		Page: domain.SinglePage(),
	}, nil
}

// locate resolves postalCode to an address and its coordinates.
func (s *DeliveryService) locate(ctx context.Context, postalCode string) (domain.PostalAddress, domain.Coordinates, error) {
	addr, err := s.postal.Resolve(ctx, postalCode)
	if err != nil {
		return domain.PostalAddress{}, domain.Coordinates{},
			asNotFound(err, "Não foi possível encontrar a localização para o CEP: "+postalCode)
	}

	coords, err := s.geo.Geocode(ctx, addr)
	if err != nil {
		return domain.PostalAddress{}, domain.Coordinates{},
			asNotFound(err, "Não foi possível recuperar as coordenadas para a localização informada.")
	}
	return addr, coords, nil
}

// nearestStore prefers a PDV inside PDVRadiusMeters and otherwise falls
// back, exactly once, to the nearest store of any type.
func (s *DeliveryService) nearestStore(ctx context.Context, coords domain.Coordinates) (domain.Store, error) {
	store, err := s.catalog.FindNearestOfType(ctx, coords, domain.StoreTypePDV, PDVRadiusMeters)
	if err == nil {
		return store, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domain.Store{}, err
	}

	store, err = s.catalog.FindNearestAny(ctx, coords)
	if err != nil {
		return domain.Store{}, asNotFound(err, "Nenhuma loja encontrada.")
	}
	return store, nil
}

// travel fetches metrics and checks they line up with destinations.
func (s *DeliveryService) travel(ctx context.Context, origin domain.Coordinates, destinations []domain.Coordinates) ([]domain.TravelMetric, error) {
	metrics, err := s.geo.TravelMetrics(ctx, origin, destinations)
	if err != nil {
		return nil, asNotFound(err, "Não foi possível calcular a distância até a loja.")
	}
	if len(metrics) != len(destinations) {
		return nil, fmt.Errorf("%w: %d travel metrics for %d destinations", domain.ErrUpstream, len(metrics), len(destinations))
	}
	return metrics, nil
}

// asNotFound replaces a bare not-found error with one carrying a
// caller-facing message. Any other error is returned unchanged.
func asNotFound(err error, message string) error {
	var nf *domain.NotFoundError
	if errors.As(err, &nf) || !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return domain.NotFound(message)
}
