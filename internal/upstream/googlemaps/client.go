// Package googlemaps wraps the Google Geocoding and Distance Matrix APIs.
package googlemaps

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/storefinder/backend/internal/domain"
)

// DefaultBaseURL is the public Google Maps Platform host.
const DefaultBaseURL = "https://maps.googleapis.com"

const maxErrorBody = 1024

// API status values that are not failures.
const (
	statusOK          = "OK"
	statusZeroResults = "ZERO_RESULTS"
)

// Client calls the geocoding and distance matrix endpoints with one API key.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	log     *slog.Logger
}

// New constructs a Client. Timeouts belong on httpClient.
func New(baseURL, apiKey string, httpClient *http.Client, log *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    httpClient,
		log:     log,
	}
}

type geocodeResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		Geometry struct {
			Location domain.Coordinates `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

type textValue struct {
	Text  string `json:"text"`
	Value int    `json:"value"`
}

type distanceMatrixResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Rows         []struct {
		Elements []struct {
			Status   string    `json:"status"`
			Distance textValue `json:"distance"`
			Duration textValue `json:"duration"`
		} `json:"elements"`
	} `json:"rows"`
}

// Geocode resolves addr to coordinates using the query
// "{RawCode}, {Locality}, {State}". The first result wins.
// ZERO_RESULTS or an empty result list is domain.ErrNotFound; any other
// failure is domain.ErrUpstream.
func (c *Client) Geocode(ctx context.Context, addr domain.PostalAddress) (domain.Coordinates, error) {
	q := url.Values{}
	q.Set("address", fmt.Sprintf("%s, %s, %s", addr.RawCode, addr.Locality, addr.State))
	q.Set("key", c.apiKey)

	var payload geocodeResponse
	if err := c.get(ctx, "/maps/api/geocode/json", q, &payload); err != nil {
		return domain.Coordinates{}, fmt.Errorf("googlemaps.Client.Geocode: %w", err)
	}

	switch payload.Status {
	case statusOK, "":
	case statusZeroResults:
		c.log.DebugContext(ctx, "geocode returned no results", "cep", addr.RawCode)
		return domain.Coordinates{}, fmt.Errorf("googlemaps.Client.Geocode: %w", domain.ErrNotFound)
	default:
		c.log.ErrorContext(ctx, "geocode api error", "api_status", payload.Status, "error_message", payload.ErrorMessage)
		return domain.Coordinates{}, fmt.Errorf("googlemaps.Client.Geocode: api status %s: %w", payload.Status, domain.ErrUpstream)
	}

	if len(payload.Results) == 0 {
		c.log.DebugContext(ctx, "geocode returned no results", "cep", addr.RawCode)
		return domain.Coordinates{}, fmt.Errorf("googlemaps.Client.Geocode: %w", domain.ErrNotFound)
	}
	return payload.Results[0].Geometry.Location, nil
}

// TravelMetrics returns road distance and duration from origin to each
// destination in one batched request. The result is positionally aligned
// with destinations. An empty element list is domain.ErrNotFound.
func (c *Client) TravelMetrics(ctx context.Context, origin domain.Coordinates, destinations []domain.Coordinates) ([]domain.TravelMetric, error) {
	if len(destinations) == 0 {
		return nil, fmt.Errorf("googlemaps.Client.TravelMetrics: no destinations: %w", domain.ErrNotFound)
	}

	dest := make([]string, len(destinations))
	for i, d := range destinations {
		dest[i] = formatLatLng(d)
	}

	q := url.Values{}
	q.Set("origins", formatLatLng(origin))
	q.Set("destinations", strings.Join(dest, "|"))
	q.Set("key", c.apiKey)

	var payload distanceMatrixResponse
	if err := c.get(ctx, "/maps/api/distancematrix/json", q, &payload); err != nil {
		return nil, fmt.Errorf("googlemaps.Client.TravelMetrics: %w", err)
	}

	if payload.Status != "" && payload.Status != statusOK {
		c.log.ErrorContext(ctx, "distance matrix api error", "api_status", payload.Status, "error_message", payload.ErrorMessage)
		return nil, fmt.Errorf("googlemaps.Client.TravelMetrics: api status %s: %w", payload.Status, domain.ErrUpstream)
	}

	if len(payload.Rows) == 0 || len(payload.Rows[0].Elements) == 0 {
		c.log.DebugContext(ctx, "distance matrix returned no elements", "destinations", len(destinations))
		return nil, fmt.Errorf("googlemaps.Client.TravelMetrics: %w", domain.ErrNotFound)
	}

	elements := payload.Rows[0].Elements
	metrics := make([]domain.TravelMetric, len(elements))
	for i, e := range elements {
		metrics[i] = domain.TravelMetric{
			DistanceText:    e.Distance.Text,
			DistanceMeters:  e.Distance.Value,
			DurationText:    e.Duration.Text,
			DurationSeconds: e.Duration.Value,
			Status:          e.Status,
		}
	}
	return metrics, nil
}

// get performs a GET against path and decodes the JSON body into out.
// Every failure is logged once and reported as domain.ErrUpstream.
func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		// The URL carries the API key; log the path only.
		c.log.ErrorContext(ctx, "google maps request failed", "path", path, "error", redact(err.Error(), c.apiKey))
		return fmt.Errorf("%w: request failed", domain.ErrUpstream)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.log.ErrorContext(ctx, "google maps upstream error", "path", path, "status", resp.StatusCode, "body", string(bytes.TrimSpace(body)))
		return fmt.Errorf("status %d: %w", resp.StatusCode, domain.ErrUpstream)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.log.ErrorContext(ctx, "failed to decode google maps payload", "path", path, "error", err)
		return fmt.Errorf("decode: %w: %v", domain.ErrUpstream, err)
	}
	return nil
}

func formatLatLng(p domain.Coordinates) string {
	return strconv.FormatFloat(p.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(p.Lng, 'f', -1, 64)
}

func redact(s, secret string) string {
	if secret == "" {
		return s
	}
	return strings.ReplaceAll(s, secret, "REDACTED")
}
