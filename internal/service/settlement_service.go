package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/oddsline/tracker/internal/domain"
)

// SettlementService reconciles open predictions against market resolution
// state. It is driven by the scheduler on a fixed cadence; the cadence is a
// policy choice, because SweepOnce is idempotent and safe to re-run.
type SettlementService struct {
	predictions domain.PredictionStore
	markets     domain.MarketSource
	notifier    domain.Notifier
	syncer      domain.RemoteSync
	logger      *slog.Logger

	now func() time.Time
}

// NewSettlementService builds a SettlementService. notifier and syncer may be
// nil.
func NewSettlementService(
	predictions domain.PredictionStore,
	markets domain.MarketSource,
	notifier domain.Notifier,
	syncer domain.RemoteSync,
	logger *slog.Logger,
) *SettlementService {
	return &SettlementService{
		predictions: predictions,
		markets:     markets,
		notifier:    notifier,
		syncer:      syncer,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// SweepOnce walks every open prediction and applies at most one forward
// transition per record:
//
//   - market unresolved → a confirmed prediction becomes active (an
//     observational label; pending ones stay put until the relayer confirms)
//   - market resolved with a definite winner → the prediction settles to won
//     or lost, writing actualPayout and settledAt exactly once
//
// A market lookup failure skips every prediction on that market for this
// cycle: predictions are never settled on incomplete information. One bad
// market does not abort the sweep for the others.
func (s *SettlementService) SweepOnce(ctx context.Context) error {
	open, err := s.predictions.ListOpen(ctx)
	if err != nil {
		return fmt.Errorf("settlement.SweepOnce: list open: %w", err)
	}
	if len(open) == 0 {
		return nil
	}

	// One market fetch per distinct market per sweep.
	marketCache := make(map[string]*domain.Market)
	failedMarkets := make(map[string]bool)

	settled := 0
	for _, p := range open {
		if failedMarkets[p.MarketID] {
			continue
		}
		market, ok := marketCache[p.MarketID]
		if !ok {
			market, err = s.markets.GetMarket(ctx, p.MarketID)
			if err != nil {
				s.logger.Warn("market lookup failed, retrying next cycle",
					"market", p.MarketID, "err", err)
				failedMarkets[p.MarketID] = true
				continue
			}
			marketCache[p.MarketID] = market
		}

		if !market.Resolved {
			if p.Status == domain.PredictionConfirmed {
				if err := s.predictions.MarkActive(ctx, p.ID); err != nil {
					s.logger.Warn("mark active failed", "prediction", p.ID, "err", err)
				}
			}
			continue
		}

		if !market.Settleable() {
			// Resolved but no definite winner reported yet: incomplete data.
			s.logger.Warn("market resolved without winner, retrying next cycle",
				"market", market.ID, "winner", market.WinningOutcome)
			continue
		}

		if s.settleOne(ctx, p, market) {
			settled++
		}
	}

	if settled > 0 {
		s.logger.Info("settlement sweep finished", "open", len(open), "settled", settled)
	}
	return nil
}

// settleOne applies the terminal transition for a single prediction. Returns
// true when this call performed the transition (as opposed to a concurrent or
// earlier sweep having already done it).
func (s *SettlementService) settleOne(ctx context.Context, p *domain.Prediction, market *domain.Market) bool {
	status, payout := p.SettlementFor(market.WinningOutcome)

	applied, err := s.predictions.Settle(ctx, p.ID, status, payout, s.now())
	if err != nil {
		s.logger.Error("settle failed", "prediction", p.ID, "err", err)
		return false
	}
	if !applied {
		// Already terminal; idempotent no-op.
		return false
	}

	now := s.now()
	p.Status = status
	payoutCopy := payout
	p.ActualPayout = &payoutCopy
	p.SettledAt = &now

	won := status == domain.PredictionWon
	s.logger.Info("prediction settled",
		"prediction", p.ID, "market", market.ID, "won", won, "payout", payout)

	if s.notifier != nil {
		s.notifier.PredictionSettled(p, won)
	}
	if s.syncer != nil {
		go func(p domain.Prediction) {
			pushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := s.syncer.PushPrediction(pushCtx, &p); err != nil {
				s.logger.Warn("remote sync failed after settlement", "prediction", p.ID, "err", err)
			}
		}(*p)
	}
	return true
}
