// Package viacep resolves Brazilian postal codes (CEP) to structured
// addresses through the public ViaCEP API.
package viacep

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/storefinder/backend/internal/domain"
)

// DefaultBaseURL is the public ViaCEP endpoint.
const DefaultBaseURL = "https://viacep.com.br"

// maxErrorBody bounds how much of a failed response is read for logging.
const maxErrorBody = 1024

// Client queries ViaCEP. It holds no mutable state and is safe for
// concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	log     *slog.Logger
}

// New constructs a Client. Timeouts belong on httpClient.
func New(baseURL string, httpClient *http.Client, log *slog.Logger) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient, log: log}
}

// response mirrors the ViaCEP JSON body.
type response struct {
	CEP         string  `json:"cep"`
	Logradouro  string  `json:"logradouro"`
	Complemento string  `json:"complemento"`
	Bairro      string  `json:"bairro"`
	Localidade  string  `json:"localidade"`
	UF          string  `json:"uf"`
	Estado      string  `json:"estado"`
	Regiao      string  `json:"regiao"`
	Erro        errFlag `json:"erro"`
}

// errFlag accepts both `"erro": true` and `"erro": "true"`; ViaCEP has
// returned each form.
type errFlag bool

func (f *errFlag) UnmarshalJSON(b []byte) error {
	switch strings.Trim(string(b), `"`) {
	case "true":
		*f = true
	default:
		*f = false
	}
	return nil
}

// Resolve looks up code, which may contain punctuation.
// Returns domain.ErrNotFound when ViaCEP flags the code as unknown and
// domain.ErrUpstream for transport, status, or decoding failures.
func (c *Client) Resolve(ctx context.Context, code string) (domain.PostalAddress, error) {
	digits := domain.NormalizePostalCode(code)
	url := fmt.Sprintf("%s/ws/%s/json/", c.baseURL, digits)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return domain.PostalAddress{}, fmt.Errorf("viacep.Client.Resolve: %w: %v", domain.ErrUpstream, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.ErrorContext(ctx, "viacep request failed", "cep", digits, "error", err)
		return domain.PostalAddress{}, fmt.Errorf("viacep.Client.Resolve: %w: %v", domain.ErrUpstream, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.log.ErrorContext(ctx, "viacep upstream error", "cep", digits, "status", resp.StatusCode, "body", string(bytes.TrimSpace(body)))
		return domain.PostalAddress{}, fmt.Errorf("viacep.Client.Resolve: status %d: %w", resp.StatusCode, domain.ErrUpstream)
	}

	var payload response
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.log.ErrorContext(ctx, "failed to decode viacep payload", "cep", digits, "error", err)
		return domain.PostalAddress{}, fmt.Errorf("viacep.Client.Resolve: decode: %w: %v", domain.ErrUpstream, err)
	}

	if payload.Erro {
		c.log.DebugContext(ctx, "viacep postal code not found", "cep", digits)
		return domain.PostalAddress{}, fmt.Errorf("viacep.Client.Resolve: cep %s: %w", digits, domain.ErrNotFound)
	}

	return domain.PostalAddress{
		RawCode:      payload.CEP,
		Street:       payload.Logradouro,
		Complement:   payload.Complemento,
		Neighborhood: payload.Bairro,
		Locality:     payload.Localidade,
		State:        payload.UF,
		StateName:    payload.Estado,
		Region:       payload.Regiao,
	}, nil
}
