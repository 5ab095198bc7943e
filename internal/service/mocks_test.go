package service_test

import (
	"context"

	"github.com/storefinder/backend/internal/domain"
	"github.com/storefinder/backend/internal/repo"
	"github.com/storefinder/backend/internal/service"
)

// Hand-written test doubles. Each method is a function field; set only the
// ones a test needs. Calling an unset field panics, which flags an
// unexpected collaborator call.

type mockPostal struct {
	resolve func(ctx context.Context, code string) (domain.PostalAddress, error)
	calls   int
}

func (m *mockPostal) Resolve(ctx context.Context, code string) (domain.PostalAddress, error) {
	m.calls++
	return m.resolve(ctx, code)
}

type mockGeocoder struct {
	geocode       func(ctx context.Context, addr domain.PostalAddress) (domain.Coordinates, error)
	travelMetrics func(ctx context.Context, origin domain.Coordinates, destinations []domain.Coordinates) ([]domain.TravelMetric, error)
}

func (m *mockGeocoder) Geocode(ctx context.Context, addr domain.PostalAddress) (domain.Coordinates, error) {
	return m.geocode(ctx, addr)
}
func (m *mockGeocoder) TravelMetrics(ctx context.Context, origin domain.Coordinates, destinations []domain.Coordinates) ([]domain.TravelMetric, error) {
	return m.travelMetrics(ctx, origin, destinations)
}

type mockCarrier struct {
	quote func(ctx context.Context, from, to string) ([]domain.CarrierOption, error)
}

func (m *mockCarrier) Quote(ctx context.Context, from, to string) ([]domain.CarrierOption, error) {
	return m.quote(ctx, from, to)
}

type mockStoreRepo struct {
	upsert            func(ctx context.Context, store domain.Store) (domain.Store, error)
	getByID           func(ctx context.Context, storeID string) (domain.Store, error)
	findNear          func(ctx context.Context, point domain.Coordinates, radius float64) ([]domain.Store, error)
	findNearestOfType func(ctx context.Context, point domain.Coordinates, t domain.StoreType, radius float64) (domain.Store, error)
	findNearestAny    func(ctx context.Context, point domain.Coordinates) (domain.Store, error)
	list              func(ctx context.Context, filter domain.StoreFilter, p domain.PageParams) ([]domain.Store, error)
	count             func(ctx context.Context, filter domain.StoreFilter) (int64, error)
}

func (m *mockStoreRepo) Upsert(ctx context.Context, store domain.Store) (domain.Store, error) {
	return m.upsert(ctx, store)
}
func (m *mockStoreRepo) GetByID(ctx context.Context, storeID string) (domain.Store, error) {
	return m.getByID(ctx, storeID)
}
func (m *mockStoreRepo) FindNear(ctx context.Context, point domain.Coordinates, radius float64) ([]domain.Store, error) {
	return m.findNear(ctx, point, radius)
}
func (m *mockStoreRepo) FindNearestOfType(ctx context.Context, point domain.Coordinates, t domain.StoreType, radius float64) (domain.Store, error) {
	return m.findNearestOfType(ctx, point, t, radius)
}
func (m *mockStoreRepo) FindNearestAny(ctx context.Context, point domain.Coordinates) (domain.Store, error) {
	return m.findNearestAny(ctx, point)
}
func (m *mockStoreRepo) List(ctx context.Context, filter domain.StoreFilter, p domain.PageParams) ([]domain.Store, error) {
	return m.list(ctx, filter, p)
}
func (m *mockStoreRepo) Count(ctx context.Context, filter domain.StoreFilter) (int64, error) {
	return m.count(ctx, filter)
}

// compile-time checks
var (
	_ service.PostalLookup  = (*mockPostal)(nil)
	_ service.Geocoder      = (*mockGeocoder)(nil)
	_ service.CarrierQuoter = (*mockCarrier)(nil)
	_ repo.StoreRepo        = (*mockStoreRepo)(nil)
)
