// Package chain provides the market data collaborator: an HTTP client against
// the market indexer that exposes on-chain pool and resolution state.
package chain

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/oddsline/tracker/internal/domain"
)

// Client fetches market state from the indexer. It implements
// domain.MarketSource.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a market indexer client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// marketPayload is the indexer's wire representation of a market. Share
// totals arrive as decimal strings to avoid float drift.
type marketPayload struct {
	ID             string `json:"id"`
	Question       string `json:"question"`
	SharesA        string `json:"shares_a"`
	SharesB        string `json:"shares_b"`
	Resolved       bool   `json:"resolved"`
	WinningOutcome string `json:"winning_outcome"`
	EndTime        int64  `json:"end_time"` // unix seconds
}

// GetMarket fetches a single market by ID. A 404 maps to
// domain.ErrMarketNotFound.
func (c *Client) GetMarket(ctx context.Context, id string) (*domain.Market, error) {
	url := fmt.Sprintf("%s/markets/%s", c.baseURL, id)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("chain.GetMarket: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chain.GetMarket %s: %w", id, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("chain.GetMarket %s: %w", id, domain.ErrMarketNotFound)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("chain.GetMarket %s: unexpected status %d", id, resp.StatusCode)
	}

	var payload marketPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("chain.GetMarket %s: decode: %w", id, err)
	}
	return payload.toDomain()
}

func (p *marketPayload) toDomain() (*domain.Market, error) {
	sharesA, err := decimal.NewFromString(p.SharesA)
	if err != nil {
		return nil, fmt.Errorf("chain: market %s: shares_a %q: %w", p.ID, p.SharesA, err)
	}
	sharesB, err := decimal.NewFromString(p.SharesB)
	if err != nil {
		return nil, fmt.Errorf("chain: market %s: shares_b %q: %w", p.ID, p.SharesB, err)
	}
	winner := domain.WinningOutcome(p.WinningOutcome)
	if winner == "" {
		winner = domain.WinnerNone
	}
	return &domain.Market{
		ID:             p.ID,
		Question:       p.Question,
		SharesA:        sharesA,
		SharesB:        sharesB,
		Resolved:       p.Resolved,
		WinningOutcome: winner,
		EndTime:        time.Unix(p.EndTime, 0).UTC(),
	}, nil
}
