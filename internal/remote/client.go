// Package remote pushes prediction records to the remote history API for
// cross-device history. Every push is best-effort: callers fire and forget,
// and a failure never blocks or rolls back a local transition.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/oddsline/tracker/internal/domain"
)

// Client posts prediction records to the sync endpoint. It implements
// domain.RemoteSync.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a sync client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// PushPrediction uploads one prediction record. The remote upserts by ID, so
// pushing the same record after settlement updates it in place.
func (c *Client) PushPrediction(ctx context.Context, p *domain.Prediction) error {
	payload, err := json.Marshal(p.ToResponse())
	if err != nil {
		return fmt.Errorf("remote.PushPrediction: marshal: %w", err)
	}

	url := c.baseURL + "/predictions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("remote.PushPrediction: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("remote.PushPrediction %s: %w", p.ID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("remote.PushPrediction %s: unexpected status %d", p.ID, resp.StatusCode)
	}
	return nil
}
