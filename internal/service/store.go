package service

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/storefinder/backend/internal/domain"
	"github.com/storefinder/backend/internal/phone"
	"github.com/storefinder/backend/internal/repo"
	"github.com/storefinder/backend/internal/validator"
)

// StoreService implements catalog reads for the HTTP layer and the single
// write path used by the seed command.
type StoreService struct {
	repo     repo.StoreRepo
	validate *validator.Validator
}

// NewStoreService constructs a StoreService backed by the provided StoreRepo.
func NewStoreService(r repo.StoreRepo, v *validator.Validator) *StoreService {
	return &StoreService{repo: r, validate: v}
}

// GetByID returns a single store.
// Returns a domain.NotFoundError when no store has that ID.
func (s *StoreService) GetByID(ctx context.Context, storeID string) (domain.Store, error) {
	store, err := s.repo.GetByID(ctx, storeID)
	if err != nil {
		return domain.Store{}, fmt.Errorf("service.StoreService.GetByID: %w",
			asNotFound(err, fmt.Sprintf("Loja com o storeID %s não foi encontrada.", storeID)))
	}
	return store, nil
}

// List returns one page of the whole catalog.
// An empty page is reported as not found.
func (s *StoreService) List(ctx context.Context, p domain.PageParams) (domain.StorePage, error) {
	page, err := s.listPage(ctx, domain.StoreFilter{}, p)
	if err != nil {
		return domain.StorePage{}, fmt.Errorf("service.StoreService.List: %w", err)
	}
	if len(page.Stores) == 0 {
		return domain.StorePage{}, fmt.Errorf("service.StoreService.List: %w", domain.NotFound("Nenhuma loja encontrada."))
	}
	return page, nil
}

// ListByState returns one page of the stores in a state (UF code, matched
// case-insensitively). An empty page is reported as not found.
func (s *StoreService) ListByState(ctx context.Context, state string, p domain.PageParams) (domain.StorePage, error) {
	uf := strings.ToUpper(strings.TrimSpace(state))
	if err := s.validate.Var("state", uf, "required,uf"); err != nil {
		return domain.StorePage{}, fmt.Errorf("service.StoreService.ListByState: %w", err)
	}

	page, err := s.listPage(ctx, domain.StoreFilter{State: uf}, p)
	if err != nil {
		return domain.StorePage{}, fmt.Errorf("service.StoreService.ListByState: %w", err)
	}
	if len(page.Stores) == 0 {
		return domain.StorePage{}, fmt.Errorf("service.StoreService.ListByState: %w",
			domain.NotFound(fmt.Sprintf("Nenhuma loja encontrada no estado %s.", uf)))
	}
	return page, nil
}

// listPage runs Count and List concurrently; the first failure cancels the other.
func (s *StoreService) listPage(ctx context.Context, filter domain.StoreFilter, p domain.PageParams) (domain.StorePage, error) {
	var (
		stores []domain.Store
		total  int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		total, err = s.repo.Count(gctx, filter)
		return err
	})
	g.Go(func() error {
		var err error
		stores, err = s.repo.List(gctx, filter, p)
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.StorePage{}, err
	}

	return domain.StorePage{Stores: stores, Page: domain.NewPage(total, p)}, nil
}

// storeRules carries the validation tags for a store about to be saved.
type storeRules struct {
	StoreID            string  `json:"storeID" validate:"required"`
	StoreName          string  `json:"storeName" validate:"required"`
	Address1           string  `json:"address1" validate:"required"`
	City               string  `json:"city" validate:"required"`
	District           string  `json:"district" validate:"required"`
	State              string  `json:"state" validate:"required,uf"`
	PostalCode         string  `json:"postalCode" validate:"required,cep"`
	Type               string  `json:"type" validate:"required,oneof=PDV LOJA"`
	Latitude           float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude          float64 `json:"longitude" validate:"gte=-180,lte=180"`
	EmailAddress       string  `json:"emailAddress" validate:"omitempty,email"`
	ShippingTimeInDays *int    `json:"shippingTimeInDays" validate:"omitempty,gte=0"`
}

// Save normalizes, validates and upserts a store.
// Returns domain.ErrValidation if input violates business rules.
func (s *StoreService) Save(ctx context.Context, store domain.Store) (domain.Store, error) {
	store = normalizeStore(store)

	if err := s.validate.Struct(storeRules{
		StoreID:            store.StoreID,
		StoreName:          store.StoreName,
		Address1:           store.Address1,
		City:               store.City,
		District:           store.District,
		State:              store.State,
		PostalCode:         store.PostalCode,
		Type:               string(store.Type),
		Latitude:           store.Latitude,
		Longitude:          store.Longitude,
		EmailAddress:       store.EmailAddress,
		ShippingTimeInDays: store.ShippingTimeInDays,
	}); err != nil {
		return domain.Store{}, fmt.Errorf("service.StoreService.Save: store %q: %w", store.StoreID, err)
	}

	saved, err := s.repo.Upsert(ctx, store)
	if err != nil {
		return domain.Store{}, fmt.Errorf("service.StoreService.Save: %w", err)
	}
	return saved, nil
}

// normalizeStore trims text fields, upper-cases codes, applies defaults,
// formats the phone as E.164 and derives the location.
func normalizeStore(store domain.Store) domain.Store {
	store.StoreID = strings.TrimSpace(store.StoreID)
	store.StoreName = strings.TrimSpace(store.StoreName)
	store.Address1 = strings.TrimSpace(store.Address1)
	store.Address2 = strings.TrimSpace(store.Address2)
	store.Address3 = strings.TrimSpace(store.Address3)
	store.City = strings.TrimSpace(store.City)
	store.District = strings.TrimSpace(store.District)
	store.State = strings.ToUpper(strings.TrimSpace(store.State))
	store.Type = domain.StoreType(strings.ToUpper(strings.TrimSpace(string(store.Type))))
	store.EmailAddress = strings.TrimSpace(store.EmailAddress)

	store.Country = strings.TrimSpace(store.Country)
	if store.Country == "" {
		store.Country = domain.DefaultCountry
	}

	if digits := domain.NormalizePostalCode(store.PostalCode); len(digits) == 8 {
		store.PostalCode = digits
	} else {
		store.PostalCode = strings.TrimSpace(store.PostalCode)
	}

	store.TelephoneNumber = phone.NormalizeE164(store.TelephoneNumber)
	store.SyncLocation()
	return store
}
