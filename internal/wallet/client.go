// Package wallet provides the wallet collaborator: an HTTP client against the
// transfer relayer daemon that holds wallet sessions and submits stakes to the
// market contract on the user's behalf.
package wallet

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/oddsline/tracker/internal/domain"
)

// Client talks to the relayer daemon. It implements domain.WalletProvider.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a relayer client. The timeout bounds SubmitTransfer;
// placements inherit it, as the lifecycle service adds none of its own.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// IsConnected reports whether the relayer holds a live session for the
// address. An unknown address is simply not connected, not an error.
func (c *Client) IsConnected(ctx context.Context, address string) (bool, error) {
	url := fmt.Sprintf("%s/sessions/%s", c.baseURL, address)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, fmt.Errorf("wallet.IsConnected: build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("wallet.IsConnected %s: %w", address, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("wallet.IsConnected %s: unexpected status %d", address, resp.StatusCode)
	}

	var body struct {
		Connected bool `json:"connected"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false, fmt.Errorf("wallet.IsConnected %s: decode: %w", address, err)
	}
	return body.Connected, nil
}

// transferRequest is the relayer's submit payload. The amount travels as a
// decimal string; outcome_code is the contract's outcome slot index.
type transferRequest struct {
	Address     string `json:"address"`
	MarketID    string `json:"market_id"`
	OutcomeCode int    `json:"outcome_code"`
	Amount      string `json:"amount"`
}

type transferResponse struct {
	TxHash string `json:"tx_hash"`
	Status string `json:"status"` // "confirmed" | "rejected"
	Error  string `json:"error"`
}

// SubmitTransfer asks the relayer to move the stake into the market contract.
// A non-2xx response or a rejected status is a transfer failure; the relayer's
// own error message is passed through so callers can surface it verbatim.
func (c *Client) SubmitTransfer(
	ctx context.Context,
	address, marketID string,
	outcomeCode int,
	amount decimal.Decimal,
) (domain.TxHandle, error) {
	payload, err := json.Marshal(transferRequest{
		Address:     address,
		MarketID:    marketID,
		OutcomeCode: outcomeCode,
		Amount:      amount.String(),
	})
	if err != nil {
		return domain.TxHandle{}, fmt.Errorf("wallet.SubmitTransfer: marshal: %w", err)
	}

	url := c.baseURL + "/transfers"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return domain.TxHandle{}, fmt.Errorf("wallet.SubmitTransfer: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.TxHandle{}, fmt.Errorf("wallet.SubmitTransfer: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return domain.TxHandle{}, fmt.Errorf("wallet.SubmitTransfer: read body: %w", err)
	}

	var body transferResponse
	if err := json.Unmarshal(raw, &body); err != nil {
		return domain.TxHandle{}, fmt.Errorf("wallet.SubmitTransfer: decode (status %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || body.Status != "confirmed" {
		msg := body.Error
		if msg == "" {
			msg = fmt.Sprintf("relayer returned status %d", resp.StatusCode)
		}
		return domain.TxHandle{Hash: body.TxHash, Confirmed: false}, errors.New(msg)
	}

	return domain.TxHandle{Hash: body.TxHash, Confirmed: true}, nil
}
