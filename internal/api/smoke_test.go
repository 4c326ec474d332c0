// Package api_test runs HTTP-level smoke tests using net/http/httptest.
// These tests do NOT require a PostgreSQL database — they verify:
//   - Gin router routing and middleware wiring
//   - Request validation error responses (400)
//   - Wallet middleware (401 without the X-Wallet-Address header)
//   - Response format consistency (success/error envelope)
//   - CORS preflight handling
package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/oddsline/tracker/internal/api"
	"github.com/oddsline/tracker/internal/config"
	"github.com/oddsline/tracker/internal/domain"
	"github.com/oddsline/tracker/internal/service"
)

// ── In-memory collaborators ───────────────────────────────────────────────────

type memStore struct {
	mu          sync.Mutex
	predictions map[uuid.UUID]*domain.Prediction
}

func (m *memStore) Create(_ context.Context, p *domain.Prediction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.predictions[p.ID] = p
	return nil
}

func (m *memStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Prediction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.predictions[id]; ok {
		return p, nil
	}
	return nil, domain.ErrPredictionNotFound
}

func (m *memStore) ListByAddress(_ context.Context, address string, _, _ int) ([]*domain.Prediction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Prediction
	for _, p := range m.predictions {
		if p.Address == address {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memStore) ListOpen(_ context.Context) ([]*domain.Prediction, error) { return nil, nil }
func (m *memStore) OpenMarketIDs(_ context.Context) ([]string, error)        { return nil, nil }
func (m *memStore) MarkActive(_ context.Context, _ uuid.UUID) error          { return nil }
func (m *memStore) Settle(_ context.Context, _ uuid.UUID, _ domain.PredictionStatus, _ decimal.Decimal, _ time.Time) (bool, error) {
	return false, nil
}

type memAttempts struct{}

func (memAttempts) Create(_ context.Context, _ *domain.FailedAttempt) error { return nil }
func (memAttempts) ListByAddress(_ context.Context, _ string) ([]*domain.FailedAttempt, error) {
	return nil, nil
}
func (memAttempts) ClearByAddress(_ context.Context, _ string) (int64, error) { return 0, nil }

type memMarkets struct{}

func (memMarkets) GetMarket(_ context.Context, id string) (*domain.Market, error) {
	if id == "missing" {
		return nil, domain.ErrMarketNotFound
	}
	return &domain.Market{
		ID:       id,
		Question: "Will the smoke test pass?",
		SharesA:  decimal.NewFromInt(40),
		SharesB:  decimal.NewFromInt(60),
		EndTime:  time.Now().UTC().Add(time.Hour),
	}, nil
}

type memWallet struct{}

func (memWallet) IsConnected(_ context.Context, _ string) (bool, error) { return true, nil }
func (memWallet) SubmitTransfer(_ context.Context, _, _ string, _ int, _ decimal.Decimal) (domain.TxHandle, error) {
	return domain.TxHandle{Hash: "0xsmoke", Confirmed: true}, nil
}

// ── Test helpers ──────────────────────────────────────────────────────────────

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testCfg() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Env:  "development",
			Port: "8080",
		},
		Tracker: config.TrackerConfig{MinStake: 1},
		Remote:  config.RemoteConfig{PushTimeout: time.Second},
	}
}

// buildTestRouter creates a Gin engine backed by in-memory collaborators; no
// database or external daemon is needed.
func buildTestRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := testCfg()
	markets := memMarkets{}

	lifecycleSvc := service.NewLifecycleService(
		&memStore{predictions: make(map[uuid.UUID]*domain.Prediction)},
		memAttempts{}, markets, memWallet{}, cfg, testLogger())

	return api.SetupRouter(api.RouterDeps{
		LifecycleSvc: lifecycleSvc,
		Markets:      markets,
		Hub:          nil,
		Cfg:          cfg,
	})
}

func do(t *testing.T, h http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf *bytes.Buffer
	if body != "" {
		buf = bytes.NewBufferString(body)
	} else {
		buf = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&m); err != nil {
		t.Fatalf("response is not valid JSON: %v — body: %s", err, rr.Body.String())
	}
	return m
}

func walletHeader() map[string]string {
	return map[string]string{"X-Wallet-Address": "0xsmoketest"}
}

// ── /health ───────────────────────────────────────────────────────────────────

func TestHealthEndpoint(t *testing.T) {
	h := buildTestRouter(t)
	rr := do(t, h, http.MethodGet, "/health", "", nil)
	if rr.Code != http.StatusOK {
		t.Errorf("GET /health = %d, want 200", rr.Code)
	}
}

// ── Wallet middleware (no header → 401) ───────────────────────────────────────

func TestPredictions_NoWallet_Returns401(t *testing.T) {
	h := buildTestRouter(t)
	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/predictions"},
		{http.MethodPost, "/api/predictions"},
		{http.MethodGet, "/api/predictions/stats"},
		{http.MethodGet, "/api/attempts"},
		{http.MethodDelete, "/api/attempts"},
	} {
		rr := do(t, h, tc.method, tc.path, "", nil)
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("%s %s without wallet header = %d, want 401", tc.method, tc.path, rr.Code)
		}
	}
}

// ── Placement — validation layer ──────────────────────────────────────────────

func TestPlacePrediction_MissingFields(t *testing.T) {
	h := buildTestRouter(t)
	rr := do(t, h, http.MethodPost, "/api/predictions", `{}`, walletHeader())
	if rr.Code != http.StatusBadRequest {
		t.Errorf("POST /api/predictions empty body = %d, want 400", rr.Code)
	}
	body := decodeBody(t, rr)
	if body["success"] != false {
		t.Errorf("response.success should be false on error, got %v", body["success"])
	}
	if body["code"] == nil {
		t.Errorf("error envelope missing 'code', got: %v", body)
	}
}

func TestPlacePrediction_MalformedAmount(t *testing.T) {
	h := buildTestRouter(t)
	payload := `{"market_id":"mkt-1","outcome":"YES","amount":"not-a-number"}`
	rr := do(t, h, http.MethodPost, "/api/predictions", payload, walletHeader())
	if rr.Code != http.StatusBadRequest {
		t.Errorf("malformed amount = %d, want 400", rr.Code)
	}
}

func TestPlacePrediction_InvalidOutcome(t *testing.T) {
	h := buildTestRouter(t)
	payload := `{"market_id":"mkt-1","outcome":"SIDEWAYS","amount":"10"}`
	rr := do(t, h, http.MethodPost, "/api/predictions", payload, walletHeader())
	if rr.Code != http.StatusBadRequest {
		t.Errorf("invalid outcome = %d, want 400", rr.Code)
	}
}

// ── Placement — end to end against in-memory collaborators ────────────────────

func TestPlacePrediction_Success(t *testing.T) {
	h := buildTestRouter(t)
	payload := `{"market_id":"mkt-1","outcome":"YES","amount":"10"}`
	rr := do(t, h, http.MethodPost, "/api/predictions", payload, walletHeader())
	if rr.Code != http.StatusCreated {
		t.Fatalf("POST /api/predictions = %d, want 201 — body: %s", rr.Code, rr.Body.String())
	}
	body := decodeBody(t, rr)
	data, ok := body["data"].(map[string]interface{})
	if !ok {
		t.Fatalf("success envelope missing data object: %v", body)
	}
	// SharesB holds 60% of the market, so YES enters at 60.
	if got := data["entry_price"]; got != float64(60) {
		t.Errorf("entry_price = %v, want 60", got)
	}
	if got := data["status"]; got != "confirmed" {
		t.Errorf("status = %v, want confirmed", got)
	}
	if got := data["tx_hash"]; got != "0xsmoke" {
		t.Errorf("tx_hash = %v, want 0xsmoke", got)
	}
}

func TestPredictionHistory_RoundTrip(t *testing.T) {
	h := buildTestRouter(t)
	payload := `{"market_id":"mkt-1","outcome":"NO","amount":"5"}`
	if rr := do(t, h, http.MethodPost, "/api/predictions", payload, walletHeader()); rr.Code != http.StatusCreated {
		t.Fatalf("placement failed: %d — %s", rr.Code, rr.Body.String())
	}

	rr := do(t, h, http.MethodGet, "/api/predictions", "", walletHeader())
	if rr.Code != http.StatusOK {
		t.Fatalf("GET /api/predictions = %d, want 200", rr.Code)
	}
	body := decodeBody(t, rr)
	items, ok := body["data"].([]interface{})
	if !ok || len(items) != 1 {
		t.Errorf("history should hold the placed prediction, got: %v", body["data"])
	}

	// Another wallet sees an empty history.
	rr = do(t, h, http.MethodGet, "/api/predictions", "", map[string]string{"X-Wallet-Address": "0xother"})
	body = decodeBody(t, rr)
	if items, _ := body["data"].([]interface{}); len(items) != 0 {
		t.Errorf("foreign wallet should see no history, got %d items", len(items))
	}
}

func TestGetPrediction_BadID(t *testing.T) {
	h := buildTestRouter(t)
	rr := do(t, h, http.MethodGet, "/api/predictions/not-a-uuid", "", walletHeader())
	if rr.Code != http.StatusBadRequest {
		t.Errorf("GET with invalid uuid = %d, want 400", rr.Code)
	}
}

// ── Markets public endpoint ───────────────────────────────────────────────────

func TestMarket_IsPublic(t *testing.T) {
	h := buildTestRouter(t)
	rr := do(t, h, http.MethodGet, "/api/markets/mkt-1", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("GET /api/markets/mkt-1 = %d, want 200 (public route)", rr.Code)
	}
	body := decodeBody(t, rr)
	data, ok := body["data"].(map[string]interface{})
	if !ok {
		t.Fatalf("success envelope missing data object: %v", body)
	}
	if got := data["yes_price"]; got != float64(60) {
		t.Errorf("yes_price = %v, want 60", got)
	}
	if got := data["no_price"]; got != float64(40) {
		t.Errorf("no_price = %v, want 40", got)
	}
	if got := data["volume"]; got != "100" {
		t.Errorf("volume = %v, want \"100\"", got)
	}
}

func TestMarket_NotFound(t *testing.T) {
	h := buildTestRouter(t)
	rr := do(t, h, http.MethodGet, "/api/markets/missing", "", nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("GET missing market = %d, want 404", rr.Code)
	}
}

// ── Error envelope format ─────────────────────────────────────────────────────

func TestErrorEnvelope_HasRequiredFields(t *testing.T) {
	h := buildTestRouter(t)
	rr := do(t, h, http.MethodPost, "/api/predictions", `{}`, walletHeader())
	body := decodeBody(t, rr)

	for _, field := range []string{"success", "error", "code"} {
		if _, ok := body[field]; !ok {
			t.Errorf("error envelope missing field %q, got: %v", field, body)
		}
	}
	if body["success"] != false {
		t.Errorf("error envelope.success = %v, want false", body["success"])
	}
}

// ── CORS headers ──────────────────────────────────────────────────────────────

func TestCORSOptionsRequest(t *testing.T) {
	h := buildTestRouter(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/predictions", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	// OPTIONS should return 204 (no content) in dev mode
	if rr.Code != http.StatusNoContent && rr.Code != http.StatusOK {
		t.Errorf("OPTIONS /api/predictions = %d, want 204 or 200", rr.Code)
	}
	allow := rr.Header().Get("Access-Control-Allow-Methods")
	if !strings.Contains(allow, "POST") {
		t.Errorf("Access-Control-Allow-Methods missing POST, got %q", allow)
	}
}

func TestCORSAllowOrigin_Dev(t *testing.T) {
	h := buildTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	// In dev mode, CORS origin should be wildcard
	origin := rr.Header().Get("Access-Control-Allow-Origin")
	if origin != "*" {
		t.Errorf("Dev CORS origin = %q, want *", origin)
	}
}
