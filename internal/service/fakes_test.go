package service_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/oddsline/tracker/internal/config"
	"github.com/oddsline/tracker/internal/domain"
)

// In-memory fakes for the service collaborator ports. Each fake exposes
// failure knobs so tests can force a specific error surface.

// ── PredictionStore ───────────────────────────────────────────────────────────

type fakePredictionStore struct {
	mu          sync.Mutex
	predictions map[uuid.UUID]*domain.Prediction
	createErr   error
	listErr     error
	settleErr   error
}

func newFakePredictionStore() *fakePredictionStore {
	return &fakePredictionStore{predictions: make(map[uuid.UUID]*domain.Prediction)}
}

func (f *fakePredictionStore) Create(_ context.Context, p *domain.Prediction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	cp := *p
	f.predictions[p.ID] = &cp
	return nil
}

func (f *fakePredictionStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Prediction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.predictions[id]
	if !ok {
		return nil, domain.ErrPredictionNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakePredictionStore) ListByAddress(_ context.Context, address string, _, _ int) ([]*domain.Prediction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*domain.Prediction
	for _, p := range f.predictions {
		if p.Address == address {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakePredictionStore) ListOpen(_ context.Context) ([]*domain.Prediction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*domain.Prediction
	for _, p := range f.predictions {
		if p.Status.IsOpen() {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakePredictionStore) OpenMarketIDs(_ context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := make(map[string]bool)
	var out []string
	for _, p := range f.predictions {
		if p.Status.IsOpen() && !seen[p.MarketID] {
			seen[p.MarketID] = true
			out = append(out, p.MarketID)
		}
	}
	return out, nil
}

func (f *fakePredictionStore) MarkActive(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.predictions[id]
	if !ok {
		return domain.ErrPredictionNotFound
	}
	if p.Status == domain.PredictionConfirmed {
		p.Status = domain.PredictionActive
	}
	return nil
}

// Settle replicates the repository's optimistic status guard: the terminal
// write is applied only while the record is still open.
func (f *fakePredictionStore) Settle(_ context.Context, id uuid.UUID, status domain.PredictionStatus, payout decimal.Decimal, settledAt time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.settleErr != nil {
		return false, f.settleErr
	}
	p, ok := f.predictions[id]
	if !ok {
		return false, domain.ErrPredictionNotFound
	}
	if !p.Status.IsOpen() {
		return false, nil
	}
	p.Status = status
	p.ActualPayout = &payout
	p.SettledAt = &settledAt
	return true, nil
}

func (f *fakePredictionStore) get(id uuid.UUID) *domain.Prediction {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.predictions[id]
}

func (f *fakePredictionStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.predictions)
}

// ── AttemptStore ──────────────────────────────────────────────────────────────

type fakeAttemptStore struct {
	mu       sync.Mutex
	attempts []*domain.FailedAttempt
}

func (f *fakeAttemptStore) Create(_ context.Context, a *domain.FailedAttempt) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *a
	f.attempts = append(f.attempts, &cp)
	return nil
}

func (f *fakeAttemptStore) ListByAddress(_ context.Context, address string) ([]*domain.FailedAttempt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.FailedAttempt
	for _, a := range f.attempts {
		if a.Address == address {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAttemptStore) ClearByAddress(_ context.Context, address string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var kept []*domain.FailedAttempt
	var cleared int64
	for _, a := range f.attempts {
		if a.Address == address {
			cleared++
			continue
		}
		kept = append(kept, a)
	}
	f.attempts = kept
	return cleared, nil
}

func (f *fakeAttemptStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.attempts)
}

// ── MarketSource ──────────────────────────────────────────────────────────────

type fakeMarketSource struct {
	mu      sync.Mutex
	markets map[string]*domain.Market
	err     error
	calls   int
}

func newFakeMarketSource(markets ...*domain.Market) *fakeMarketSource {
	f := &fakeMarketSource{markets: make(map[string]*domain.Market)}
	for _, m := range markets {
		f.markets[m.ID] = m
	}
	return f
}

func (f *fakeMarketSource) GetMarket(_ context.Context, id string) (*domain.Market, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	m, ok := f.markets[id]
	if !ok {
		return nil, domain.ErrMarketNotFound
	}
	cp := *m
	return &cp, nil
}

// ── WalletProvider ────────────────────────────────────────────────────────────

type fakeWallet struct {
	connected bool
	handle    domain.TxHandle
	submitErr error
	submits   atomic.Int64
}

func (f *fakeWallet) IsConnected(_ context.Context, _ string) (bool, error) {
	return f.connected, nil
}

func (f *fakeWallet) SubmitTransfer(_ context.Context, _, _ string, _ int, _ decimal.Decimal) (domain.TxHandle, error) {
	f.submits.Add(1)
	if f.submitErr != nil {
		return domain.TxHandle{}, f.submitErr
	}
	return f.handle, nil
}

// ── Notifier ──────────────────────────────────────────────────────────────────

type fakeNotifier struct {
	mu      sync.Mutex
	placed  []*domain.Prediction
	settled []settledEvent
}

type settledEvent struct {
	prediction *domain.Prediction
	won        bool
}

func (f *fakeNotifier) PredictionPlaced(p *domain.Prediction) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.placed = append(f.placed, p)
}

func (f *fakeNotifier) PredictionSettled(p *domain.Prediction, won bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.settled = append(f.settled, settledEvent{prediction: p, won: won})
}

func (f *fakeNotifier) settledCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.settled)
}

// ── Shared helpers ────────────────────────────────────────────────────────────

func testConfig() *config.Config {
	return &config.Config{
		Tracker: config.TrackerConfig{MinStake: 1},
		Remote:  config.RemoteConfig{PushTimeout: time.Second},
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
