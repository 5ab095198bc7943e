// Package melhorenvio quotes carrier shipping through the Melhor Envio
// shipment calculator. It only quotes; nothing is booked.
package melhorenvio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/storefinder/backend/internal/domain"
)

// DefaultBaseURL is the production Melhor Envio host.
const DefaultBaseURL = "https://melhorenvio.com.br"

const (
	calculatePath = "/api/v2/me/shipment/calculate"
	maxErrorBody  = 1024

	// services requests PAC (1) and SEDEX (2).
	services  = "1,2"
	userAgent = "storefinder-backend"
)

// Client calls the calculator with a bearer token.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	log     *slog.Logger
}

// New constructs a Client. Timeouts belong on httpClient.
func New(baseURL, token string, httpClient *http.Client, log *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    httpClient,
		log:     log,
	}
}

type postalCode struct {
	PostalCode string `json:"postal_code"`
}

type product struct {
	ID             string  `json:"id"`
	Width          int     `json:"width"`
	Height         int     `json:"height"`
	Length         int     `json:"length"`
	Weight         float64 `json:"weight"`
	InsuranceValue float64 `json:"insurance_value"`
	Quantity       int     `json:"quantity"`
}

type options struct {
	Receipt        bool    `json:"receipt"`
	OwnHand        bool    `json:"own_hand"`
	Collect        bool    `json:"collect"`
	NonCommercial  bool    `json:"non_commercial"`
	Reverse        bool    `json:"reverse"`
	InsuranceValue float64 `json:"insurance_value"`
}

type calculateRequest struct {
	From     postalCode `json:"from"`
	To       postalCode `json:"to"`
	Products []product  `json:"products"`
	Options  options    `json:"options"`
	Services string     `json:"services"`
	Validate bool       `json:"validate"`
}

type calculateItem struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Price    string `json:"price"`
	Currency string `json:"currency"`
	Error    string `json:"error"`
	Company  struct {
		Name string `json:"name"`
	} `json:"company"`
	DeliveryTime int `json:"delivery_time"`
}

// referenceParcel is the fixed 15x10x20 cm, 1 kg box every quote is for.
var referenceParcel = product{
	ID:       "1",
	Width:    15,
	Height:   10,
	Length:   20,
	Weight:   1,
	Quantity: 1,
}

func newCalculateRequest(from, to string) calculateRequest {
	return calculateRequest{
		From:     postalCode{PostalCode: domain.NormalizePostalCode(from)},
		To:       postalCode{PostalCode: domain.NormalizePostalCode(to)},
		Products: []product{referenceParcel},
		Options:  options{NonCommercial: true},
		Services: services,
		Validate: true,
	}
}

// Quote returns the shipping options for the reference parcel between the
// two postal codes, in upstream order. Services the carrier reports as
// unavailable for the route are dropped; when none remain the result is
// domain.ErrNotFound. Every other failure is domain.ErrUpstream.
func (c *Client) Quote(ctx context.Context, fromPostalCode, toPostalCode string) ([]domain.CarrierOption, error) {
	body, err := json.Marshal(newCalculateRequest(fromPostalCode, toPostalCode))
	if err != nil {
		return nil, fmt.Errorf("melhorenvio.Client.Quote: encode: %w: %v", domain.ErrUpstream, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+calculatePath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("melhorenvio.Client.Quote: %w: %v", domain.ErrUpstream, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.ErrorContext(ctx, "melhor envio request failed", "error", err)
		return nil, fmt.Errorf("melhorenvio.Client.Quote: %w: %v", domain.ErrUpstream, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.log.ErrorContext(ctx, "melhor envio upstream error", "status", resp.StatusCode, "body", string(bytes.TrimSpace(b)))
		return nil, fmt.Errorf("melhorenvio.Client.Quote: status %d: %w", resp.StatusCode, domain.ErrUpstream)
	}

	var items []calculateItem
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		c.log.ErrorContext(ctx, "failed to decode melhor envio payload", "error", err)
		return nil, fmt.Errorf("melhorenvio.Client.Quote: decode: %w: %v", domain.ErrUpstream, err)
	}

	quoted := make([]domain.CarrierOption, 0, len(items))
	for _, item := range items {
		if item.Error != "" {
			c.log.DebugContext(ctx, "carrier service unavailable", "service", item.Name, "reason", item.Error)
			continue
		}
		price, err := decimal.NewFromString(item.Price)
		if err != nil {
			c.log.ErrorContext(ctx, "melhor envio returned an invalid price", "service", item.Name, "price", item.Price)
			return nil, fmt.Errorf("melhorenvio.Client.Quote: price %q: %w", item.Price, domain.ErrUpstream)
		}
		quoted = append(quoted, domain.CarrierOption{
			ID:               item.ID,
			Name:             item.Name,
			Price:            price,
			PriceText:        item.Price,
			Currency:         item.Currency,
			CompanyName:      item.Company.Name,
			DeliveryTimeDays: item.DeliveryTime,
		})
	}

	if len(quoted) == 0 {
		c.log.DebugContext(ctx, "no carrier options for route", "from", fromPostalCode, "to", toPostalCode)
		return nil, fmt.Errorf("melhorenvio.Client.Quote: %w", domain.ErrNotFound)
	}
	return quoted, nil
}
