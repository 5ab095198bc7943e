package googlemaps_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefinder/backend/internal/domain"
	"github.com/storefinder/backend/internal/upstream/googlemaps"
)

const testKey = "test-key"

func newClient(t *testing.T, handler http.HandlerFunc) *googlemaps.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return googlemaps.New(srv.URL, testKey, srv.Client(), slog.New(slog.NewJSONHandler(io.Discard, nil)))
}

var paulistaAddress = domain.PostalAddress{RawCode: "01310-100", Locality: "São Paulo", State: "SP"}

// ---- Geocode ---------------------------------------------------------------

func TestGeocode_buildsQueryAndReturnsFirstResult(t *testing.T) {
	var got url.Values
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/maps/api/geocode/json", r.URL.Path)
		got = r.URL.Query()
		_, _ = io.WriteString(w, `{
			"status": "OK",
			"results": [
				{"geometry": {"location": {"lat": -23.5614, "lng": -46.6559}}},
				{"geometry": {"location": {"lat": 1, "lng": 2}}}
			]
		}`)
	})

	coords, err := c.Geocode(context.Background(), paulistaAddress)

	require.NoError(t, err)
	assert.Equal(t, domain.Coordinates{Lat: -23.5614, Lng: -46.6559}, coords)
	assert.Equal(t, "01310-100, São Paulo, SP", got.Get("address"))
	assert.Equal(t, testKey, got.Get("key"))
}

func TestGeocode_zeroResultsIsNotFound(t *testing.T) {
	for name, body := range map[string]string{
		"status":     `{"status": "ZERO_RESULTS", "results": []}`,
		"empty list": `{"status": "OK", "results": []}`,
	} {
		t.Run(name, func(t *testing.T) {
			c := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
				_, _ = io.WriteString(w, body)
			})

			_, err := c.Geocode(context.Background(), paulistaAddress)

			assert.ErrorIs(t, err, domain.ErrNotFound)
		})
	}
}

func TestGeocode_apiErrorStatusIsUpstream(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"status": "REQUEST_DENIED", "error_message": "The provided API key is invalid.", "results": []}`)
	})

	_, err := c.Geocode(context.Background(), paulistaAddress)

	assert.ErrorIs(t, err, domain.ErrUpstream)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
}

func TestGeocode_httpErrorIsUpstream(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	})

	_, err := c.Geocode(context.Background(), paulistaAddress)

	assert.ErrorIs(t, err, domain.ErrUpstream)
}

func TestGeocode_transportErrorDoesNotLogAPIKey(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	var logs bytes.Buffer
	c := googlemaps.New(base, testKey, http.DefaultClient, slog.New(slog.NewJSONHandler(&logs, nil)))

	_, err := c.Geocode(context.Background(), paulistaAddress)

	assert.ErrorIs(t, err, domain.ErrUpstream)
	assert.NotContains(t, logs.String(), testKey)
	assert.NotContains(t, err.Error(), testKey)
}

// ---- TravelMetrics ---------------------------------------------------------

func TestTravelMetrics_batchesDestinationsInOrder(t *testing.T) {
	var got url.Values
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/maps/api/distancematrix/json", r.URL.Path)
		got = r.URL.Query()
		_, _ = io.WriteString(w, `{
			"status": "OK",
			"rows": [{"elements": [
				{"status": "OK", "distance": {"text": "3,7 km", "value": 3700}, "duration": {"text": "12 minutos", "value": 720}},
				{"status": "OK", "distance": {"text": "84 km", "value": 84000}, "duration": {"text": "1 hora 10 minutos", "value": 4200}}
			]}]
		}`)
	})

	origin := domain.Coordinates{Lat: -23.5614, Lng: -46.6559}
	destinations := []domain.Coordinates{
		{Lat: -23.567, Lng: -46.692},
		{Lat: -22.9056, Lng: -47.0608},
	}

	metrics, err := c.TravelMetrics(context.Background(), origin, destinations)

	require.NoError(t, err)
	assert.Equal(t, "-23.5614,-46.6559", got.Get("origins"))
	assert.Equal(t, "-23.567,-46.692|-22.9056,-47.0608", got.Get("destinations"))
	require.Len(t, metrics, 2)
	assert.Equal(t, domain.TravelMetric{
		DistanceText: "3,7 km", DistanceMeters: 3700,
		DurationText: "12 minutos", DurationSeconds: 720,
		Status: "OK",
	}, metrics[0])
	assert.Equal(t, "84 km", metrics[1].DistanceText)
	assert.Equal(t, 4200, metrics[1].DurationSeconds)
}

func TestTravelMetrics_noElementsIsNotFound(t *testing.T) {
	for name, body := range map[string]string{
		"no rows":     `{"status": "OK", "rows": []}`,
		"no elements": `{"status": "OK", "rows": [{"elements": []}]}`,
	} {
		t.Run(name, func(t *testing.T) {
			c := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
				_, _ = io.WriteString(w, body)
			})

			_, err := c.TravelMetrics(context.Background(), domain.Coordinates{}, []domain.Coordinates{{Lat: 1, Lng: 1}})

			assert.ErrorIs(t, err, domain.ErrNotFound)
		})
	}
}

func TestTravelMetrics_noDestinationsSkipsRequest(t *testing.T) {
	called := false
	c := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
		called = true
	})

	_, err := c.TravelMetrics(context.Background(), domain.Coordinates{}, nil)

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.False(t, called)
}

func TestTravelMetrics_apiErrorStatusIsUpstream(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"status": "OVER_QUERY_LIMIT", "rows": []}`)
	})

	_, err := c.TravelMetrics(context.Background(), domain.Coordinates{}, []domain.Coordinates{{Lat: 1, Lng: 1}})

	assert.ErrorIs(t, err, domain.ErrUpstream)
}

func TestTravelMetrics_malformedBodyIsUpstream(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `[`)
	})

	_, err := c.TravelMetrics(context.Background(), domain.Coordinates{}, []domain.Coordinates{{Lat: 1, Lng: 1}})

	assert.ErrorIs(t, err, domain.ErrUpstream)
}
