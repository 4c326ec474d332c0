// Package service contains the prediction lifecycle store and the settlement
// sweep that together own every status transition a prediction goes through.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/oddsline/tracker/internal/config"
	"github.com/oddsline/tracker/internal/domain"
)

// ──────────────────────────────────────────────────────────────────────────────
// LifecycleService
// ──────────────────────────────────────────────────────────────────────────────

// LifecycleService owns the durable record of a user's predictions: placement,
// failed-attempt bookkeeping, history queries, and aggregate statistics. All
// collaborators are injected ports, so the service is testable with fakes.
type LifecycleService struct {
	predictions domain.PredictionStore
	attempts    domain.AttemptStore
	markets     domain.MarketSource
	wallet      domain.WalletProvider
	notifier    domain.Notifier
	syncer      domain.RemoteSync // nil when remote sync is disabled
	cfg         *config.Config
	logger      *slog.Logger

	// now is swappable for tests.
	now func() time.Time
}

// NewLifecycleService creates a LifecycleService. notifier and syncer may be
// nil; both are optional outbound collaborators.
func NewLifecycleService(
	predictions domain.PredictionStore,
	attempts domain.AttemptStore,
	markets domain.MarketSource,
	wallet domain.WalletProvider,
	cfg *config.Config,
	logger *slog.Logger,
) *LifecycleService {
	return &LifecycleService{
		predictions: predictions,
		attempts:    attempts,
		markets:     markets,
		wallet:      wallet,
		cfg:         cfg,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// SetNotifier injects the notification collaborator post-construction.
func (s *LifecycleService) SetNotifier(n domain.Notifier) { s.notifier = n }

// SetSyncer injects the remote history sync collaborator post-construction.
func (s *LifecycleService) SetSyncer(r domain.RemoteSync) { s.syncer = r }

// ──────────────────────────────────────────────────────────────────────────────
// PlacePrediction
// ──────────────────────────────────────────────────────────────────────────────

// PlacePrediction validates the request, delegates the stake transfer to the
// wallet relayer, and on success records exactly one confirmed prediction with
// the entry price taken from the pricing engine at the moment of placement.
//
// Failure surfaces are distinct: validation errors touch no collaborator and
// mutate nothing; a rejected transfer is recorded as a failed attempt (never
// a prediction); a persistence failure after a successful transfer is
// returned as ErrRecordFailed carrying the transaction hash, since that is
// the one case where money moved without a matching local record.
func (s *LifecycleService) PlacePrediction(ctx context.Context, req domain.PlacePredictionRequest) (*domain.Prediction, error) {
	// ── 1. Input validation (before any external call) ───────────────────────
	if !req.Outcome.IsValid() {
		return nil, domain.ErrInvalidOutcome
	}
	minStake := decimal.NewFromFloat(s.cfg.Tracker.MinStake)
	if !req.Amount.IsPositive() || req.Amount.LessThan(minStake) {
		return nil, domain.ErrInvalidAmount
	}

	// ── 2. Wallet session check ──────────────────────────────────────────────
	if req.Address == "" {
		return nil, domain.ErrWalletNotConnected
	}
	connected, err := s.wallet.IsConnected(ctx, req.Address)
	if err != nil {
		return nil, fmt.Errorf("lifecycle.PlacePrediction: session check: %w", err)
	}
	if !connected {
		return nil, domain.ErrWalletNotConnected
	}

	// ── 3. Load market and capture entry price before the stake lands ────────
	market, err := s.markets.GetMarket(ctx, req.MarketID)
	if err != nil {
		return nil, fmt.Errorf("lifecycle.PlacePrediction: get market: %w", err)
	}
	now := s.now()
	if market.Resolved || market.Ended(now) {
		return nil, domain.ErrMarketClosed
	}
	entryPrice := market.Prices().For(req.Outcome)

	// ── 4. External transfer ─────────────────────────────────────────────────
	handle, err := s.wallet.SubmitTransfer(ctx, req.Address, req.MarketID, req.Outcome.Code(), req.Amount)
	if err != nil || !handle.Confirmed {
		s.recordFailedAttempt(ctx, req, err)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrTransactionFailed, err)
		}
		return nil, domain.ErrTransactionFailed
	}

	// ── 5. Persist the confirmed prediction ──────────────────────────────────
	p := &domain.Prediction{
		ID:              uuid.New(),
		Address:         req.Address,
		MarketID:        req.MarketID,
		Outcome:         req.Outcome,
		Amount:          req.Amount,
		EntryPrice:      entryPrice,
		PotentialPayout: domain.PotentialPayout(req.Amount, entryPrice),
		Status:          domain.PredictionConfirmed,
		TxHash:          handle.Hash,
		PlacedAt:        now,
	}
	if err := s.predictions.Create(ctx, p); err != nil {
		// The stake already moved. Do not pretend otherwise: surface loudly
		// with the hash so the user can keep it.
		s.logger.Error("prediction not recorded after confirmed transfer",
			"tx_hash", handle.Hash, "market", req.MarketID, "err", err)
		return nil, fmt.Errorf("%w (tx %s): %v", domain.ErrRecordFailed, handle.Hash, err)
	}

	s.logger.Info("prediction placed",
		"id", p.ID, "market", p.MarketID, "outcome", p.Outcome,
		"amount", p.Amount, "entry_price", p.EntryPrice)

	// ── 6. Async: notify UI + best-effort remote sync ────────────────────────
	if s.notifier != nil {
		s.notifier.PredictionPlaced(p)
	}
	go s.pushRemote(p)

	return p, nil
}

// recordFailedAttempt logs a transfer that never reached confirmation. Attempt
// persistence is itself best-effort: a second failure here must not mask the
// original transfer error.
func (s *LifecycleService) recordFailedAttempt(ctx context.Context, req domain.PlacePredictionRequest, cause error) {
	detail := ""
	if cause != nil {
		detail = cause.Error()
	}
	attempt := &domain.FailedAttempt{
		ID:        uuid.New(),
		Address:   req.Address,
		MarketID:  req.MarketID,
		Outcome:   req.Outcome,
		Amount:    req.Amount,
		Cause:     domain.ClassifyFailure(cause),
		Detail:    detail,
		CreatedAt: s.now(),
	}
	if err := s.attempts.Create(ctx, attempt); err != nil {
		s.logger.Warn("failed attempt not recorded", "market", req.MarketID, "err", err)
	}
}

// pushRemote sends the record to the remote history API. Fire-and-forget.
func (s *LifecycleService) pushRemote(p *domain.Prediction) {
	if s.syncer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Remote.PushTimeout)
	defer cancel()
	if err := s.syncer.PushPrediction(ctx, p); err != nil {
		s.logger.Warn("remote sync failed", "prediction", p.ID, "err", err)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Query helpers
// ──────────────────────────────────────────────────────────────────────────────

// GetPredictions returns a wallet's paginated prediction history.
func (s *LifecycleService) GetPredictions(ctx context.Context, address string, limit, offset int) ([]*domain.Prediction, error) {
	predictions, err := s.predictions.ListByAddress(ctx, address, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("lifecycle.GetPredictions: %w", err)
	}
	return predictions, nil
}

// GetPrediction returns a single prediction only if it belongs to address.
func (s *LifecycleService) GetPrediction(ctx context.Context, id uuid.UUID, address string) (*domain.Prediction, error) {
	p, err := s.predictions.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("lifecycle.GetPrediction: %w", err)
	}
	if p.Address != address {
		return nil, domain.ErrPredictionNotFound
	}
	return p, nil
}

// GetStatistics aggregates a wallet's full history. Pure read; pagination is
// deliberately bypassed because every stake must be counted.
func (s *LifecycleService) GetStatistics(ctx context.Context, address string) (domain.Statistics, error) {
	predictions, err := s.predictions.ListByAddress(ctx, address, allHistoryLimit, 0)
	if err != nil {
		return domain.Statistics{}, fmt.Errorf("lifecycle.GetStatistics: %w", err)
	}
	return domain.Summarize(predictions), nil
}

// GetFailedAttempts returns a wallet's failed placement attempts.
func (s *LifecycleService) GetFailedAttempts(ctx context.Context, address string) ([]*domain.FailedAttempt, error) {
	attempts, err := s.attempts.ListByAddress(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("lifecycle.GetFailedAttempts: %w", err)
	}
	return attempts, nil
}

// ClearFailedAttempts deletes a wallet's failed attempts and returns the count.
// Confirmed predictions are never deletable through any path.
func (s *LifecycleService) ClearFailedAttempts(ctx context.Context, address string) (int64, error) {
	cleared, err := s.attempts.ClearByAddress(ctx, address)
	if err != nil {
		return 0, fmt.Errorf("lifecycle.ClearFailedAttempts: %w", err)
	}
	if cleared > 0 {
		s.logger.Info("failed attempts cleared", "address", address, "count", cleared)
	}
	return cleared, nil
}

// allHistoryLimit bounds the statistics query. Far above any realistic
// single-wallet history; exists so the SQL layer always has a LIMIT.
const allHistoryLimit = 100_000
