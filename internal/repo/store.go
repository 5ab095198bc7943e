// Package repo contains the store catalog: the geospatial point index the
// delivery pipeline queries. StoreRepo is implemented on PostGIS (this file)
// and on Elasticsearch (store_elastic.go).
// No business logic lives here, only queries and type mapping.
package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/storefinder/backend/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// StoreRepo is the store catalog contract. The service layer depends on this
// interface, not on a concrete backend.
type StoreRepo interface {
	// Upsert inserts or replaces a store by StoreID, deriving its location
	// from Latitude/Longitude, and returns the persisted record.
	Upsert(ctx context.Context, store domain.Store) (domain.Store, error)

	// GetByID returns the store with the given StoreID.
	// Returns domain.ErrNotFound if it does not exist.
	GetByID(ctx context.Context, storeID string) (domain.Store, error)

	// FindNear returns every store within radiusMeters of point.
	// Callers must not rely on the order.
	FindNear(ctx context.Context, point domain.Coordinates, radiusMeters float64) ([]domain.Store, error)

	// FindNearestOfType returns the closest store of type t within radiusMeters.
	// Returns domain.ErrNotFound if there is none.
	FindNearestOfType(ctx context.Context, point domain.Coordinates, t domain.StoreType, radiusMeters float64) (domain.Store, error)

	// FindNearestAny returns the closest store of any type, with no radius bound.
	// Returns domain.ErrNotFound only when the catalog is empty.
	FindNearestAny(ctx context.Context, point domain.Coordinates) (domain.Store, error)

	// List returns one page of stores matching filter, ordered by StoreID.
	List(ctx context.Context, filter domain.StoreFilter, p domain.PageParams) ([]domain.Store, error)

	// Count returns how many stores match filter.
	Count(ctx context.Context, filter domain.StoreFilter) (int64, error)
}

// pgStoreRepo is the PostGIS implementation of StoreRepo.
type pgStoreRepo struct {
	db db
}

// NewStoreRepo constructs a StoreRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewStoreRepo(db db) StoreRepo {
	return &pgStoreRepo{db: db}
}

const storeColumns = `
	store_id, store_name, take_out_in_store, shipping_time_in_days,
	latitude, longitude, ST_X(location::geometry), ST_Y(location::geometry),
	address1, address2, address3, city, district, state, country,
	postal_code, type, telephone_number, email_address, created_at, updated_at`

// origin is the geography literal for the @lng/@lat named args.
const origin = `ST_SetSRID(ST_MakePoint(@lng, @lat), 4326)::geography`

// Upsert writes the store and its derived location in one statement.
func (r *pgStoreRepo) Upsert(ctx context.Context, store domain.Store) (domain.Store, error) {
	const q = `
		INSERT INTO stores (
			store_id, store_name, take_out_in_store, shipping_time_in_days,
			latitude, longitude, location,
			address1, address2, address3, city, district, state, country,
			postal_code, type, telephone_number, email_address
		) VALUES (
			@store_id, @store_name, @take_out_in_store, @shipping_time_in_days,
			@lat, @lng, ` + origin + `,
			@address1, @address2, @address3, @city, @district, @state, @country,
			@postal_code, @type, @telephone_number, @email_address
		)
		ON CONFLICT (store_id) DO UPDATE SET
			store_name            = EXCLUDED.store_name,
			take_out_in_store     = EXCLUDED.take_out_in_store,
			shipping_time_in_days = EXCLUDED.shipping_time_in_days,
			latitude              = EXCLUDED.latitude,
			longitude             = EXCLUDED.longitude,
			location              = EXCLUDED.location,
			address1              = EXCLUDED.address1,
			address2              = EXCLUDED.address2,
			address3              = EXCLUDED.address3,
			city                  = EXCLUDED.city,
			district              = EXCLUDED.district,
			state                 = EXCLUDED.state,
			country               = EXCLUDED.country,
			postal_code           = EXCLUDED.postal_code,
			type                  = EXCLUDED.type,
			telephone_number      = EXCLUDED.telephone_number,
			email_address         = EXCLUDED.email_address,
			updated_at            = now()
		RETURNING` + storeColumns

	args := pgx.NamedArgs{
		"store_id":              store.StoreID,
		"store_name":            store.StoreName,
		"take_out_in_store":     store.TakeOutInStore,
		"shipping_time_in_days": store.ShippingTimeInDays, // nil becomes NULL
		"lat":                   store.Latitude,
		"lng":                   store.Longitude,
		"address1":              store.Address1,
		"address2":              store.Address2,
		"address3":              store.Address3,
		"city":                  store.City,
		"district":              store.District,
		"state":                 store.State,
		"country":               store.Country,
		"postal_code":           store.PostalCode,
		"type":                  string(store.Type),
		"telephone_number":      store.TelephoneNumber,
		"email_address":         store.EmailAddress,
	}

	result, err := scanStore(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Store{}, fmt.Errorf("repo.StoreRepo.Upsert: %w", err)
	}
	return result, nil
}

// GetByID retrieves a store by primary key.
func (r *pgStoreRepo) GetByID(ctx context.Context, storeID string) (domain.Store, error) {
	const q = `SELECT` + storeColumns + `
		FROM stores
		WHERE store_id = @store_id`

	result, err := scanStore(r.db.QueryRow(ctx, q, pgx.NamedArgs{"store_id": storeID}))
	if err != nil {
		return domain.Store{}, fmt.Errorf("repo.StoreRepo.GetByID: %w", err)
	}
	return result, nil
}

// FindNear uses ST_DWithin on geography so the radius is in meters and the
// GiST index on location is used. Results come back nearest first.
func (r *pgStoreRepo) FindNear(ctx context.Context, point domain.Coordinates, radiusMeters float64) ([]domain.Store, error) {
	const q = `SELECT` + storeColumns + `
		FROM stores
		WHERE ST_DWithin(location, ` + origin + `, @radius)
		ORDER BY location <-> ` + origin

	args := pgx.NamedArgs{"lat": point.Lat, "lng": point.Lng, "radius": radiusMeters}
	stores, err := r.queryStores(ctx, q, args)
	if err != nil {
		return nil, fmt.Errorf("repo.StoreRepo.FindNear: %w", err)
	}
	return stores, nil
}

// FindNearestOfType returns the closest store of type t inside the radius.
func (r *pgStoreRepo) FindNearestOfType(ctx context.Context, point domain.Coordinates, t domain.StoreType, radiusMeters float64) (domain.Store, error) {
	const q = `SELECT` + storeColumns + `
		FROM stores
		WHERE type = @type
		  AND ST_DWithin(location, ` + origin + `, @radius)
		ORDER BY location <-> ` + origin + `
		LIMIT 1`

	args := pgx.NamedArgs{"lat": point.Lat, "lng": point.Lng, "radius": radiusMeters, "type": string(t)}
	result, err := scanStore(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Store{}, fmt.Errorf("repo.StoreRepo.FindNearestOfType: %w", err)
	}
	return result, nil
}

// FindNearestAny returns the closest store regardless of type or distance.
func (r *pgStoreRepo) FindNearestAny(ctx context.Context, point domain.Coordinates) (domain.Store, error) {
	const q = `SELECT` + storeColumns + `
		FROM stores
		ORDER BY location <-> ` + origin + `
		LIMIT 1`

	result, err := scanStore(r.db.QueryRow(ctx, q, pgx.NamedArgs{"lat": point.Lat, "lng": point.Lng}))
	if err != nil {
		return domain.Store{}, fmt.Errorf("repo.StoreRepo.FindNearestAny: %w", err)
	}
	return result, nil
}

// List returns one page of stores ordered by store_id. An empty filter.State
// matches every state.
func (r *pgStoreRepo) List(ctx context.Context, filter domain.StoreFilter, p domain.PageParams) ([]domain.Store, error) {
	const q = `SELECT` + storeColumns + `
		FROM stores
		WHERE (@state = '' OR state = @state)
		ORDER BY store_id
		LIMIT @limit OFFSET @offset`

	args := pgx.NamedArgs{"state": filter.State, "limit": p.Limit, "offset": p.Offset}
	stores, err := r.queryStores(ctx, q, args)
	if err != nil {
		return nil, fmt.Errorf("repo.StoreRepo.List: %w", err)
	}
	return stores, nil
}

// Count returns the number of stores matching filter.
func (r *pgStoreRepo) Count(ctx context.Context, filter domain.StoreFilter) (int64, error) {
	const q = `
		SELECT count(*)
		FROM stores
		WHERE (@state = '' OR state = @state)`

	var total int64
	if err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"state": filter.State}).Scan(&total); err != nil {
		return 0, fmt.Errorf("repo.StoreRepo.Count: %w", err)
	}
	return total, nil
}

// queryStores runs q and scans every row. Always returns a non-nil slice.
func (r *pgStoreRepo) queryStores(ctx context.Context, q string, args pgx.NamedArgs) ([]domain.Store, error) {
	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stores := []domain.Store{}
	for rows.Next() {
		s, err := scanStore(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		stores = append(stores, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return stores, nil
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing scanStore to be
// reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// scanStore maps a row selected with storeColumns into a domain.Store.
// Location is read back from the stored geography, not recomputed.
func scanStore(s scanner) (domain.Store, error) {
	var (
		st       domain.Store
		lng, lat float64
		typ      string
	)

	err := s.Scan(
		&st.StoreID, &st.StoreName, &st.TakeOutInStore, &st.ShippingTimeInDays,
		&st.Latitude, &st.Longitude, &lng, &lat,
		&st.Address1, &st.Address2, &st.Address3, &st.City, &st.District, &st.State, &st.Country,
		&st.PostalCode, &typ, &st.TelephoneNumber, &st.EmailAddress, &st.CreatedAt, &st.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Store{}, domain.ErrNotFound
		}
		return domain.Store{}, err
	}

	st.Type = domain.StoreType(typ)
	st.Location = domain.NewGeoPoint(lat, lng)
	return st, nil
}
