// Package bcv fetches the official Bs/USD exchange rate from a public
// rate-publishing API.
package bcv

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/velapos/pos_backend/internal/core/domain"
	"github.com/velapos/pos_backend/internal/core/ports/gateways"
)

// maxResponseBytes caps how much of the upstream body is read. The payload
// is a small JSON object; anything larger is garbage.
const maxResponseBytes = 1 << 20

// Client talks to the rate endpoint over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a rate source client. timeout bounds the whole request
// including body read.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

var _ gateways.RateSource = (*Client)(nil)

// ratePayload mirrors the fields of the upstream response this client cares
// about. Unknown fields are ignored.
type ratePayload struct {
	Price     *float64 `json:"price"`
	Rate      *float64 `json:"rate"`
	UpdatedAt string   `json:"last_update"`
}

// FetchOfficialRate performs one bounded request against the endpoint and
// validates the payload before handing it to the caller.
func (c *Client) FetchOfficialRate(ctx context.Context) (*domain.RateQuote, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("error building rate request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error calling rate endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rate endpoint returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("error reading rate response: %w", err)
	}

	var payload ratePayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("error decoding rate response: %w", err)
	}

	// Different deployments of the API name the field differently.
	value := payload.Price
	if value == nil {
		value = payload.Rate
	}
	if value == nil {
		return nil, fmt.Errorf("rate response has no rate field")
	}

	rate := decimal.NewFromFloat(*value)
	if !rate.IsPositive() {
		return nil, fmt.Errorf("rate response carries non-positive rate %s", rate)
	}

	updatedAt := time.Now()
	if payload.UpdatedAt != "" {
		if parsed, err := time.Parse(time.RFC3339, payload.UpdatedAt); err == nil {
			updatedAt = parsed
		}
	}

	return &domain.RateQuote{Rate: rate, UpdatedAt: updatedAt}, nil
}
