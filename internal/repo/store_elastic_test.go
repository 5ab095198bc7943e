package repo_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/olivere/elastic/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefinder/backend/internal/domain"
	"github.com/storefinder/backend/internal/repo"
)

// fakeES is a minimal stand-in for an Elasticsearch node. Each test
// registers responses keyed by "METHOD path" ("*" matches any method) and
// inspects what was sent.
type fakeES struct {
	mu        sync.Mutex
	responses map[string]fakeResponse
	requests  []recordedRequest
}

type fakeResponse struct {
	status int
	body   string
}

type recordedRequest struct {
	method string
	path   string
	body   string
}

func newFakeES(t *testing.T) (*fakeES, *repo.ElasticStoreRepo) {
	t.Helper()
	f := &fakeES{responses: map[string]fakeResponse{}}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		key := r.Method + " " + r.URL.Path

		f.mu.Lock()
		f.requests = append(f.requests, recordedRequest{method: r.Method, path: r.URL.Path, body: string(body)})
		resp, ok := f.responses[key]
		if !ok {
			resp, ok = f.responses["* "+r.URL.Path]
		}
		f.mu.Unlock()

		if !ok {
			resp = fakeResponse{status: http.StatusInternalServerError, body: `{"error":{"type":"unexpected","reason":"` + key + `"},"status":500}`}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(resp.status)
		_, _ = io.WriteString(w, resp.body)
	}))
	t.Cleanup(srv.Close)

	client, err := elastic.NewClient(
		elastic.SetURL(srv.URL),
		elastic.SetSniff(false),
		elastic.SetHealthcheck(false),
	)
	require.NoError(t, err)

	return f, repo.NewElasticStoreRepo(client, "stores")
}

func (f *fakeES) on(method, path string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[method+" "+path] = fakeResponse{status: status, body: body}
}

func (f *fakeES) lastRequest(method, path string) (recordedRequest, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.requests) - 1; i >= 0; i-- {
		if (method == "*" || f.requests[i].method == method) && f.requests[i].path == path {
			return f.requests[i], true
		}
	}
	return recordedRequest{}, false
}

const storeSourceA = `{
	"storeID": "a", "storeName": "Loja A", "takeOutInStore": true,
	"latitude": -23.55, "longitude": -46.63,
	"location": {"type": "Point", "coordinates": [-46.63, -23.55]},
	"address1": "Rua A, 1", "city": "São Paulo", "district": "Centro",
	"state": "SP", "country": "Brasil", "postalCode": "01001000", "type": "PDV"
}`

const storeSourceB = `{
	"storeID": "b", "storeName": "Loja B", "takeOutInStore": false, "shippingTimeInDays": 4,
	"latitude": -22.90, "longitude": -47.06,
	"location": {"type": "Point", "coordinates": [-47.06, -22.90]},
	"address1": "Rua B, 2", "city": "Campinas", "district": "Cambuí",
	"state": "SP", "country": "Brasil", "postalCode": "13025000", "type": "LOJA"
}`

func searchResponse(sources ...string) string {
	hits := make([]string, len(sources))
	for i, src := range sources {
		hits[i] = `{"_index":"stores","_id":"` + string(rune('a'+i)) + `","_source":` + src + `}`
	}
	return `{"took":1,"timed_out":false,"hits":{"total":{"value":` + string(rune('0'+len(sources))) +
		`,"relation":"eq"},"hits":[` + strings.Join(hits, ",") + `]}}`
}

func TestElasticStoreRepo_EnsureIndex_createsWhenMissing(t *testing.T) {
	f, r := newFakeES(t)
	f.on(http.MethodHead, "/stores", http.StatusNotFound, "")
	f.on(http.MethodPut, "/stores", http.StatusOK, `{"acknowledged":true,"shards_acknowledged":true,"index":"stores"}`)

	created, err := r.EnsureIndex(context.Background())

	require.NoError(t, err)
	assert.True(t, created)
	req, ok := f.lastRequest(http.MethodPut, "/stores")
	require.True(t, ok)
	assert.Contains(t, req.body, `"geo_point"`)
}

func TestElasticStoreRepo_EnsureIndex_existing(t *testing.T) {
	f, r := newFakeES(t)
	f.on(http.MethodHead, "/stores", http.StatusOK, "")

	created, err := r.EnsureIndex(context.Background())

	require.NoError(t, err)
	assert.False(t, created)
	_, sent := f.lastRequest(http.MethodPut, "/stores")
	assert.False(t, sent, "existing index must not be recreated")
}

func TestElasticStoreRepo_GetByID(t *testing.T) {
	f, r := newFakeES(t)
	f.on(http.MethodGet, "/stores/_doc/a", http.StatusOK, `{"_index":"stores","_id":"a","found":true,"_source":`+storeSourceA+`}`)

	got, err := r.GetByID(context.Background(), "a")

	require.NoError(t, err)
	assert.Equal(t, "Loja A", got.StoreName)
	assert.Equal(t, domain.StoreTypePDV, got.Type)
	assert.Equal(t, [2]float64{-46.63, -23.55}, got.Location.Coordinates)
}

func TestElasticStoreRepo_GetByID_NotFound(t *testing.T) {
	f, r := newFakeES(t)
	f.on(http.MethodGet, "/stores/_doc/missing", http.StatusNotFound, `{"_index":"stores","_id":"missing","found":false}`)

	_, err := r.GetByID(context.Background(), "missing")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestElasticStoreRepo_Upsert_indexesGeoJSONPoint(t *testing.T) {
	f, r := newFakeES(t)
	f.on(http.MethodGet, "/stores/_doc/s1", http.StatusNotFound, `{"_index":"stores","_id":"s1","found":false}`)
	f.on("*", "/stores/_doc/s1", http.StatusCreated, `{"_index":"stores","_id":"s1","result":"created"}`)

	store := storeFixture("s1", domain.StoreTypeLoja, domain.Coordinates{Lat: -23.55, Lng: -46.63})
	got, err := r.Upsert(context.Background(), store)

	require.NoError(t, err)
	assert.Equal(t, [2]float64{-46.63, -23.55}, got.Location.Coordinates)
	assert.False(t, got.CreatedAt.IsZero())

	req, ok := f.lastRequest("*", "/stores/_doc/s1")
	require.True(t, ok)
	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(req.body), &doc))
	assert.Equal(t, map[string]any{"type": "Point", "coordinates": []any{-46.63, -23.55}}, doc["location"])
	assert.Equal(t, "LOJA", doc["type"])
}

func TestElasticStoreRepo_FindNear_sendsGeoDistanceFilter(t *testing.T) {
	f, r := newFakeES(t)
	f.on("*", "/stores/_count", http.StatusOK, `{"count":2}`)
	f.on("*", "/stores/_search", http.StatusOK, searchResponse(storeSourceA, storeSourceB))

	got, err := r.FindNear(context.Background(), domain.Coordinates{Lat: -23.56, Lng: -46.65}, 100_000)

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].StoreID)
	assert.Equal(t, "b", got[1].StoreID)
	require.NotNil(t, got[1].ShippingTimeInDays)
	assert.Equal(t, 4, *got[1].ShippingTimeInDays)

	req, ok := f.lastRequest("*", "/stores/_search")
	require.True(t, ok)
	assert.Contains(t, req.body, `"geo_distance"`)
	assert.Contains(t, req.body, `"100000m"`)
	assert.Contains(t, req.body, `"_geo_distance"`)
}

func TestElasticStoreRepo_FindNear_sizeFollowsCountWithinResultWindow(t *testing.T) {
	tests := []struct {
		count    string
		wantSize string
	}{
		{"2", `"size":2`},
		{"10000", `"size":10000`},
		{"25000", `"size":10000`},
	}
	for _, tc := range tests {
		t.Run(tc.count, func(t *testing.T) {
			f, r := newFakeES(t)
			f.on("*", "/stores/_count", http.StatusOK, `{"count":`+tc.count+`}`)
			f.on("*", "/stores/_search", http.StatusOK, searchResponse(storeSourceA))

			_, err := r.FindNear(context.Background(), domain.Coordinates{Lat: -23.56, Lng: -46.65}, 100_000)

			require.NoError(t, err)
			req, ok := f.lastRequest("*", "/stores/_search")
			require.True(t, ok)
			assert.Contains(t, req.body, tc.wantSize)
		})
	}
}

func TestElasticStoreRepo_FindNear_emptySkipsSearch(t *testing.T) {
	f, r := newFakeES(t)
	f.on("*", "/stores/_count", http.StatusOK, `{"count":0}`)

	got, err := r.FindNear(context.Background(), domain.Coordinates{Lat: -23.56, Lng: -46.65}, 100_000)

	require.NoError(t, err)
	assert.Empty(t, got)
	_, searched := f.lastRequest("*", "/stores/_search")
	assert.False(t, searched)
}

func TestElasticStoreRepo_FindNearestOfType(t *testing.T) {
	f, r := newFakeES(t)
	f.on("*", "/stores/_search", http.StatusOK, searchResponse(storeSourceA))

	got, err := r.FindNearestOfType(context.Background(), domain.Coordinates{Lat: -23.56, Lng: -46.65}, domain.StoreTypePDV, 50_000)

	require.NoError(t, err)
	assert.Equal(t, "a", got.StoreID)
	req, _ := f.lastRequest("*", "/stores/_search")
	assert.Contains(t, req.body, `"term":{"type":"PDV"}`)
	assert.Contains(t, req.body, `"50000m"`)
}

func TestElasticStoreRepo_FindNearestOfType_none(t *testing.T) {
	f, r := newFakeES(t)
	f.on("*", "/stores/_search", http.StatusOK, searchResponse())

	_, err := r.FindNearestOfType(context.Background(), domain.Coordinates{}, domain.StoreTypePDV, 50_000)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestElasticStoreRepo_FindNearestAny_emptyIndex(t *testing.T) {
	f, r := newFakeES(t)
	f.on("*", "/stores/_search", http.StatusOK, searchResponse())

	_, err := r.FindNearestAny(context.Background(), domain.Coordinates{})

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestElasticStoreRepo_ListAndCount_byState(t *testing.T) {
	f, r := newFakeES(t)
	f.on("*", "/stores/_search", http.StatusOK, searchResponse(storeSourceA))
	f.on("*", "/stores/_count", http.StatusOK, `{"count":11}`)
	ctx := context.Background()

	stores, err := r.List(ctx, domain.StoreFilter{State: "SP"}, domain.PageParams{Offset: 10, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, stores, 1)

	req, _ := f.lastRequest("*", "/stores/_search")
	assert.Contains(t, req.body, `"from":10`)
	assert.Contains(t, req.body, `"size":10`)
	assert.Contains(t, req.body, `"term":{"state":"SP"}`)

	total, err := r.Count(ctx, domain.StoreFilter{State: "SP"})
	require.NoError(t, err)
	assert.Equal(t, int64(11), total)
}

func TestElasticStoreRepo_searchFailureIsWrapped(t *testing.T) {
	_, r := newFakeES(t)

	_, err := r.FindNearestAny(context.Background(), domain.Coordinates{})

	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
	assert.Contains(t, err.Error(), "repo.ElasticStoreRepo.FindNearestAny")
}
