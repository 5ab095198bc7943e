package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/olivere/elastic/v7"

	"github.com/storefinder/backend/internal/domain"
)

// maxResultWindow is Elasticsearch's default index.max_result_window; a
// from+size past it is rejected. FindNear returns at most this many stores.
const maxResultWindow = 10_000

// storeIndexMapping maps location as geo_point so geo_distance queries and
// sorts work; identifiers and filters are keywords.
const storeIndexMapping = `{
	"mappings": {
		"properties": {
			"storeID":            {"type": "keyword"},
			"storeName":          {"type": "text", "fields": {"raw": {"type": "keyword"}}},
			"takeOutInStore":     {"type": "boolean"},
			"shippingTimeInDays": {"type": "integer"},
			"latitude":           {"type": "double"},
			"longitude":          {"type": "double"},
			"location":           {"type": "geo_point"},
			"address1":           {"type": "text"},
			"address2":           {"type": "text"},
			"address3":           {"type": "text"},
			"city":               {"type": "keyword"},
			"district":           {"type": "keyword"},
			"state":              {"type": "keyword"},
			"country":            {"type": "keyword"},
			"postalCode":         {"type": "keyword"},
			"type":               {"type": "keyword"},
			"telephoneNumber":    {"type": "keyword"},
			"emailAddress":       {"type": "keyword"},
			"createdAt":          {"type": "date"},
			"updatedAt":          {"type": "date"}
		}
	}
}`

// storeDoc is the indexed document. Location is stored as a GeoJSON point,
// which Elasticsearch accepts for geo_point fields.
type storeDoc struct {
	StoreID            string          `json:"storeID"`
	StoreName          string          `json:"storeName"`
	TakeOutInStore     bool            `json:"takeOutInStore"`
	ShippingTimeInDays *int            `json:"shippingTimeInDays,omitempty"`
	Latitude           float64         `json:"latitude"`
	Longitude          float64         `json:"longitude"`
	Location           domain.GeoPoint `json:"location"`
	Address1           string          `json:"address1"`
	Address2           string          `json:"address2"`
	Address3           string          `json:"address3"`
	City               string          `json:"city"`
	District           string          `json:"district"`
	State              string          `json:"state"`
	Country            string          `json:"country"`
	PostalCode         string          `json:"postalCode"`
	Type               string          `json:"type"`
	TelephoneNumber    string          `json:"telephoneNumber"`
	EmailAddress       string          `json:"emailAddress"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`
}

func docFromStore(s domain.Store) storeDoc {
	return storeDoc{
		StoreID:            s.StoreID,
		StoreName:          s.StoreName,
		TakeOutInStore:     s.TakeOutInStore,
		ShippingTimeInDays: s.ShippingTimeInDays,
		Latitude:           s.Latitude,
		Longitude:          s.Longitude,
		Location:           domain.NewGeoPoint(s.Latitude, s.Longitude),
		Address1:           s.Address1,
		Address2:           s.Address2,
		Address3:           s.Address3,
		City:               s.City,
		District:           s.District,
		State:              s.State,
		Country:            s.Country,
		PostalCode:         s.PostalCode,
		Type:               string(s.Type),
		TelephoneNumber:    s.TelephoneNumber,
		EmailAddress:       s.EmailAddress,
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          s.UpdatedAt,
	}
}

func (d storeDoc) toStore() domain.Store {
	return domain.Store{
		StoreID:            d.StoreID,
		StoreName:          d.StoreName,
		TakeOutInStore:     d.TakeOutInStore,
		ShippingTimeInDays: d.ShippingTimeInDays,
		Latitude:           d.Latitude,
		Longitude:          d.Longitude,
		Location:           d.Location,
		Address1:           d.Address1,
		Address2:           d.Address2,
		Address3:           d.Address3,
		City:               d.City,
		District:           d.District,
		State:              d.State,
		Country:            d.Country,
		PostalCode:         d.PostalCode,
		Type:               domain.StoreType(d.Type),
		TelephoneNumber:    d.TelephoneNumber,
		EmailAddress:       d.EmailAddress,
		CreatedAt:          d.CreatedAt,
		UpdatedAt:          d.UpdatedAt,
	}
}

// ElasticStoreRepo is the Elasticsearch implementation of StoreRepo.
type ElasticStoreRepo struct {
	client *elastic.Client
	index  string
	now    func() time.Time
}

var _ StoreRepo = (*ElasticStoreRepo)(nil)

// NewElasticStoreRepo constructs a StoreRepo over the given index.
// Call EnsureIndex once at startup before serving queries.
func NewElasticStoreRepo(client *elastic.Client, index string) *ElasticStoreRepo {
	return &ElasticStoreRepo{client: client, index: index, now: time.Now}
}

// EnsureIndex creates the index with the store mapping if it does not exist.
// It reports whether the index was created.
func (r *ElasticStoreRepo) EnsureIndex(ctx context.Context) (bool, error) {
	exists, err := r.client.IndexExists(r.index).Do(ctx)
	if err != nil {
		return false, fmt.Errorf("repo.ElasticStoreRepo.EnsureIndex: exists: %w", err)
	}
	if exists {
		return false, nil
	}

	res, err := r.client.CreateIndex(r.index).BodyString(storeIndexMapping).Do(ctx)
	if err != nil {
		return false, fmt.Errorf("repo.ElasticStoreRepo.EnsureIndex: create: %w", err)
	}
	if !res.Acknowledged {
		return false, fmt.Errorf("repo.ElasticStoreRepo.EnsureIndex: create %q not acknowledged", r.index)
	}
	return true, nil
}

// Upsert indexes the store under _id = StoreID. CreatedAt survives
// replacement; UpdatedAt is always refreshed.
func (r *ElasticStoreRepo) Upsert(ctx context.Context, store domain.Store) (domain.Store, error) {
	now := r.now().UTC()
	store.CreatedAt = now
	store.UpdatedAt = now

	existing, err := r.GetByID(ctx, store.StoreID)
	switch {
	case err == nil:
		store.CreatedAt = existing.CreatedAt
	case !isNotFound(err):
		return domain.Store{}, fmt.Errorf("repo.ElasticStoreRepo.Upsert: %w", err)
	}

	doc := docFromStore(store)
	_, err = r.client.Index().
		Index(r.index).
		Id(store.StoreID).
		BodyJson(doc).
		Refresh("wait_for").
		Do(ctx)
	if err != nil {
		return domain.Store{}, fmt.Errorf("repo.ElasticStoreRepo.Upsert: %w", err)
	}
	return doc.toStore(), nil
}

// GetByID fetches the document by _id.
func (r *ElasticStoreRepo) GetByID(ctx context.Context, storeID string) (domain.Store, error) {
	res, err := r.client.Get().Index(r.index).Id(storeID).Do(ctx)
	if elastic.IsNotFound(err) || (err == nil && !res.Found) {
		return domain.Store{}, fmt.Errorf("repo.ElasticStoreRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return domain.Store{}, fmt.Errorf("repo.ElasticStoreRepo.GetByID: %w", err)
	}

	var doc storeDoc
	if err := json.Unmarshal(res.Source, &doc); err != nil {
		return domain.Store{}, fmt.Errorf("repo.ElasticStoreRepo.GetByID: decode: %w", err)
	}
	return doc.toStore(), nil
}

// FindNear returns every store inside the radius, nearest first, capped at
// the nearest maxResultWindow.
func (r *ElasticStoreRepo) FindNear(ctx context.Context, point domain.Coordinates, radiusMeters float64) ([]domain.Store, error) {
	total, err := r.client.Count(r.index).Query(withinRadius(point, radiusMeters)).Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("repo.ElasticStoreRepo.FindNear: count: %w", err)
	}
	if total == 0 {
		return []domain.Store{}, nil
	}

	size := int(min(total, maxResultWindow))
	query := elastic.NewBoolQuery().Filter(withinRadius(point, radiusMeters))
	stores, err := r.search(ctx, query, nearestFirst(point), 0, size)
	if err != nil {
		return nil, fmt.Errorf("repo.ElasticStoreRepo.FindNear: %w", err)
	}
	return stores, nil
}

// FindNearestOfType returns the closest store of type t inside the radius.
func (r *ElasticStoreRepo) FindNearestOfType(ctx context.Context, point domain.Coordinates, t domain.StoreType, radiusMeters float64) (domain.Store, error) {
	query := elastic.NewBoolQuery().Filter(
		elastic.NewTermQuery("type", string(t)),
		withinRadius(point, radiusMeters),
	)
	stores, err := r.search(ctx, query, nearestFirst(point), 0, 1)
	if err != nil {
		return domain.Store{}, fmt.Errorf("repo.ElasticStoreRepo.FindNearestOfType: %w", err)
	}
	if len(stores) == 0 {
		return domain.Store{}, fmt.Errorf("repo.ElasticStoreRepo.FindNearestOfType: %w", domain.ErrNotFound)
	}
	return stores[0], nil
}

// FindNearestAny returns the closest store with no type or radius bound.
func (r *ElasticStoreRepo) FindNearestAny(ctx context.Context, point domain.Coordinates) (domain.Store, error) {
	stores, err := r.search(ctx, elastic.NewMatchAllQuery(), nearestFirst(point), 0, 1)
	if err != nil {
		return domain.Store{}, fmt.Errorf("repo.ElasticStoreRepo.FindNearestAny: %w", err)
	}
	if len(stores) == 0 {
		return domain.Store{}, fmt.Errorf("repo.ElasticStoreRepo.FindNearestAny: %w", domain.ErrNotFound)
	}
	return stores[0], nil
}

// List returns one page ordered by storeID.
func (r *ElasticStoreRepo) List(ctx context.Context, filter domain.StoreFilter, p domain.PageParams) ([]domain.Store, error) {
	stores, err := r.search(ctx, filterQuery(filter), elastic.NewFieldSort("storeID").Asc(), p.Offset, p.Limit)
	if err != nil {
		return nil, fmt.Errorf("repo.ElasticStoreRepo.List: %w", err)
	}
	return stores, nil
}

// Count returns how many documents match filter.
func (r *ElasticStoreRepo) Count(ctx context.Context, filter domain.StoreFilter) (int64, error) {
	total, err := r.client.Count(r.index).Query(filterQuery(filter)).Do(ctx)
	if err != nil {
		return 0, fmt.Errorf("repo.ElasticStoreRepo.Count: %w", err)
	}
	return total, nil
}

func (r *ElasticStoreRepo) search(ctx context.Context, query elastic.Query, sorter elastic.Sorter, from, size int) ([]domain.Store, error) {
	res, err := r.client.Search().
		Index(r.index).
		Query(query).
		SortBy(sorter).
		From(from).
		Size(size).
		Do(ctx)
	if err != nil {
		return nil, err
	}

	stores := []domain.Store{}
	if res.Hits == nil {
		return stores, nil
	}
	for _, hit := range res.Hits.Hits {
		var doc storeDoc
		if err := json.Unmarshal(hit.Source, &doc); err != nil {
			return nil, fmt.Errorf("decode hit %s: %w", hit.Id, err)
		}
		stores = append(stores, doc.toStore())
	}
	return stores, nil
}

func withinRadius(point domain.Coordinates, radiusMeters float64) *elastic.GeoDistanceQuery {
	return elastic.NewGeoDistanceQuery("location").
		Lat(point.Lat).
		Lon(point.Lng).
		Distance(strconv.FormatFloat(radiusMeters, 'f', -1, 64) + "m")
}

func nearestFirst(point domain.Coordinates) *elastic.GeoDistanceSort {
	return elastic.NewGeoDistanceSort("location").
		Point(point.Lat, point.Lng).
		Asc().
		Unit("m").
		DistanceType("arc")
}

func filterQuery(filter domain.StoreFilter) elastic.Query {
	if filter.State == "" {
		return elastic.NewMatchAllQuery()
	}
	return elastic.NewBoolQuery().Filter(elastic.NewTermQuery("state", filter.State))
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
