package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefinder/backend/internal/domain"
	"github.com/storefinder/backend/internal/handler"
)

// mockDeliveryServicer is a test double for handler.DeliveryServicer.
type mockDeliveryServicer struct {
	listNearby        func(ctx context.Context, postalCode string) ([]domain.NearbyStore, error)
	quoteNearestStore func(ctx context.Context, postalCode string) (domain.DeliveryQuote, error)
}

func (m *mockDeliveryServicer) ListNearby(ctx context.Context, postalCode string) ([]domain.NearbyStore, error) {
	return m.listNearby(ctx, postalCode)
}
func (m *mockDeliveryServicer) QuoteNearestStore(ctx context.Context, postalCode string) (domain.DeliveryQuote, error) {
	return m.quoteNearestStore(ctx, postalCode)
}

var _ handler.DeliveryServicer = (*mockDeliveryServicer)(nil)

func TestPostalCodeRoutes_rejectMalformedCEP(t *testing.T) {
	for _, path := range []string{"/stores/nearby/", "/stores/delivery/"} {
		for _, code := range []string{"1234", "01310-1000", "0131O100", "01310_100"} {
			t.Run(path+code, func(t *testing.T) {
				svc := &mockDeliveryServicer{} // must not be reached

				rec := get(newHTTPHandler(nil, svc), path+code)

				require.Equal(t, http.StatusBadRequest, rec.Code)
				body := decodeError(t, rec)
				assert.Equal(t, "validation_error", body.Error.Code)
				assert.Equal(t, "Formato de CEP inválido.", body.Error.Message)
			})
		}
	}
}

func TestListNearbyStores_returnsStoresWithMetrics(t *testing.T) {
	var gotCode string
	svc := &mockDeliveryServicer{
		listNearby: func(_ context.Context, code string) ([]domain.NearbyStore, error) {
			gotCode = code
			a, b := storeFixture(), storeFixture()
			b.StoreID = "16"
			return []domain.NearbyStore{
				{Store: a, Distance: "5,2 km", Duration: "11 min"},
				{Store: b, Distance: "12 km", Duration: "20 min"},
			}, nil
		},
	}

	rec := get(newHTTPHandler(nil, svc), "/stores/nearby/01310-100")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "01310-100", gotCode)

	var body struct {
		Stores []struct {
			StoreID  string `json:"storeID"`
			Distance string `json:"distance"`
			Duration string `json:"duration"`
		} `json:"stores"`
		Limit       int `json:"limit"`
		Total       int `json:"total"`
		CurrentPage int `json:"currentPage"`
		TotalPages  int `json:"totalPages"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Stores, 2)
	assert.Equal(t, "15", body.Stores[0].StoreID)
	assert.Equal(t, "5,2 km", body.Stores[0].Distance)
	assert.Equal(t, "11 min", body.Stores[0].Duration)
	assert.Equal(t, "16", body.Stores[1].StoreID)
	assert.Equal(t, 2, body.Limit)
	assert.Equal(t, 2, body.Total)
	assert.Equal(t, 1, body.CurrentPage)
	assert.Equal(t, 1, body.TotalPages)
}

func TestListNearbyStores_notFound(t *testing.T) {
	svc := &mockDeliveryServicer{
		listNearby: func(context.Context, string) ([]domain.NearbyStore, error) {
			return nil, fmt.Errorf("service.DeliveryService.ListNearby: %w",
				domain.NotFound("Não foi possível encontrar a localização para o CEP: 99999999"))
		},
	}

	rec := get(newHTTPHandler(nil, svc), "/stores/nearby/99999999")

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Não foi possível encontrar a localização para o CEP: 99999999", decodeError(t, rec).Error.Message)
}

func TestListNearbyStores_upstreamFailureIsHidden(t *testing.T) {
	svc := &mockDeliveryServicer{
		listNearby: func(context.Context, string) ([]domain.NearbyStore, error) {
			return nil, fmt.Errorf("googlemaps: status REQUEST_DENIED: The provided API key is invalid: %w", domain.ErrUpstream)
		},
	}

	rec := get(newHTTPHandler(nil, svc), "/stores/nearby/01310100")

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "API key")
	assert.Equal(t, "internal_error", decodeError(t, rec).Error.Code)
}

func TestQuoteDelivery_returnsQuoteEnvelope(t *testing.T) {
	svc := &mockDeliveryServicer{
		quoteNearestStore: func(_ context.Context, code string) (domain.DeliveryQuote, error) {
			assert.Equal(t, "01310100", code)
			return domain.DeliveryQuote{
				Store:           storeFixture(),
				Distance:        "158 km",
				DeliveryAddress: "São Paulo, SP",
				Lines: []domain.DeliveryQuoteLine{{
					LeadTimeLabel: "8 dias úteis",
					Price:         "R$ 89,90",
					Description:   "PAC a encomenda econômica dos Correios",
					ReferenceCode: "6f1c1a54-6b0e-4a77-9a38-2f3b0f0a6c1e",
				}},
				Pins: []domain.Pin{{
					Position: domain.Coordinates{Lat: -23.55, Lng: -46.63},
					Title:    "Loja 1 Centro",
				}},
				Page: domain.SinglePage(),
			}, nil
		},
	}

	rec := get(newHTTPHandler(nil, svc), "/stores/delivery/01310100")

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	for _, k := range []string{"limit", "total", "currentPage", "totalPages"} {
		assert.EqualValues(t, 1, body[k], k)
	}
	assert.EqualValues(t, 0, body["offset"])
	assert.EqualValues(t, 200, body["statusCode"])

	stores := body["stores"].([]any)
	require.Len(t, stores, 1)
	st := stores[0].(map[string]any)
	assert.Equal(t, "Loja 1 Centro", st["storeName"])
	assert.Equal(t, "158 km", st["distance"])
	assert.Equal(t, "São Paulo, SP", st["deliveryAddress"])
	assert.NotContains(t, st, "latitude")
	assert.NotContains(t, st, "longitude")

	lines := st["value"].([]any)
	require.Len(t, lines, 1)
	assert.Equal(t, map[string]any{
		"prazo":             "8 dias úteis",
		"codProdutoAgencia": "6f1c1a54-6b0e-4a77-9a38-2f3b0f0a6c1e",
		"price":             "R$ 89,90",
		"description":       "PAC a encomenda econômica dos Correios",
	}, lines[0])

	pins := body["pins"].([]any)
	require.Len(t, pins, 1)
	assert.Equal(t, map[string]any{
		"position": map[string]any{"lat": -23.55, "lng": -46.63},
		"title":    "Loja 1 Centro",
	}, pins[0])
}

func TestQuoteDelivery_localLineOmitsReferenceCode(t *testing.T) {
	svc := &mockDeliveryServicer{
		quoteNearestStore: func(context.Context, string) (domain.DeliveryQuote, error) {
			return domain.DeliveryQuote{
				Store: storeFixture(),
				Lines: []domain.DeliveryQuoteLine{{LeadTimeLabel: "30min", Price: "R$ 15,00", Description: "Motoboy"}},
				Page:  domain.SinglePage(),
			}, nil
		},
	}

	rec := get(newHTTPHandler(nil, svc), "/stores/delivery/01310-100")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "codProdutoAgencia")
	assert.Contains(t, rec.Body.String(), `"prazo":"30min"`)
}

func TestQuoteDelivery_noCarrierOption_returns404(t *testing.T) {
	svc := &mockDeliveryServicer{
		quoteNearestStore: func(context.Context, string) (domain.DeliveryQuote, error) {
			return domain.DeliveryQuote{}, domain.NotFound("Nenhuma opção de frete encontrada para o cálculo.")
		},
	}

	rec := get(newHTTPHandler(nil, svc), "/stores/delivery/01310-100")

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Nenhuma opção de frete encontrada para o cálculo.", decodeError(t, rec).Error.Message)
}

func TestQuoteDelivery_includesSecondaryAddressLines(t *testing.T) {
	st := storeFixture()
	st.Address2 = "Sala 4"
	st.Address3 = "Bloco B"
	svc := &mockDeliveryServicer{
		quoteNearestStore: func(context.Context, string) (domain.DeliveryQuote, error) {
			return domain.DeliveryQuote{Store: st, Page: domain.SinglePage()}, nil
		},
	}

	rec := get(newHTTPHandler(nil, svc), "/stores/delivery/01310-100")

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Stores []map[string]any `json:"stores"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Stores, 1)
	assert.Equal(t, "Sala 4", body.Stores[0]["address2"])
	assert.Equal(t, "Bloco B", body.Stores[0]["address3"])
}
