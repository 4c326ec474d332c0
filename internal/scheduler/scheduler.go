// Package scheduler manages the two background goroutines that drive the
// tracker:
//  1. sweepLoop         – runs the settlement sweep on a fixed cadence.
//  2. oddsBroadcastLoop – pushes live odds for every market with open
//     positions to WS clients.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/oddsline/tracker/internal/config"
	"github.com/oddsline/tracker/internal/domain"
	"github.com/oddsline/tracker/internal/service"
)

// OddsSink defines the broadcast operation the scheduler needs from the
// WebSocket hub. Declared here so this package does not depend on the hub
// implementation.
type OddsSink interface {
	BroadcastOddsUpdate(m *domain.Market, now time.Time)
}

// Scheduler wires the settlement service and odds broadcasting to timers.
// Call Start(ctx) once from main(); cancel the context to shut it down.
type Scheduler struct {
	settlementSvc *service.SettlementService
	predictions   domain.PredictionStore
	markets       domain.MarketSource
	sink          OddsSink
	cfg           *config.Config
	logger        *slog.Logger
}

// NewScheduler creates a Scheduler. sink may be nil (no WS broadcasting).
func NewScheduler(
	settlementSvc *service.SettlementService,
	predictions domain.PredictionStore,
	markets domain.MarketSource,
	sink OddsSink,
	cfg *config.Config,
	logger *slog.Logger,
) *Scheduler {
	return &Scheduler{
		settlementSvc: settlementSvc,
		predictions:   predictions,
		markets:       markets,
		sink:          sink,
		cfg:           cfg,
		logger:        logger,
	}
}

// Start launches the background goroutines. It returns immediately; all loops
// run until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	go s.sweepLoop(ctx)
	if s.sink != nil {
		go s.oddsBroadcastLoop(ctx)
	}
	s.logger.Info("scheduler started",
		"sweep_interval", s.cfg.Sweep.Interval,
		"broadcast_interval", s.cfg.Sweep.BroadcastInterval)
}

// ──────────────────────────────────────────────────────────────────────────────
// sweepLoop
// ──────────────────────────────────────────────────────────────────────────────

// sweepLoop runs the settlement sweep on every tick. An immediate first sweep
// catches positions left open across a restart.
func (s *Scheduler) sweepLoop(ctx context.Context) {
	defer s.recoverAndLog("sweepLoop")

	ticker := time.NewTicker(s.cfg.Sweep.Interval)
	defer ticker.Stop()

	if err := s.settlementSvc.SweepOnce(ctx); err != nil {
		s.logger.Error("sweepLoop: initial sweep", "err", err)
	}

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("sweepLoop: shutting down")
			return
		case <-ticker.C:
			if err := s.settlementSvc.SweepOnce(ctx); err != nil {
				s.logger.Error("sweepLoop: SweepOnce", "err", err)
			}
		}
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// oddsBroadcastLoop
// ──────────────────────────────────────────────────────────────────────────────

// oddsBroadcastLoop fetches every market referenced by an open prediction and
// broadcasts its current odds and countdown to all connected WS clients.
func (s *Scheduler) oddsBroadcastLoop(ctx context.Context) {
	defer s.recoverAndLog("oddsBroadcastLoop")

	ticker := time.NewTicker(s.cfg.Sweep.BroadcastInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("oddsBroadcastLoop: shutting down")
			return
		case <-ticker.C:
			s.broadcastOdds(ctx)
		}
	}
}

// broadcastOdds is the inner body of oddsBroadcastLoop, extracted so the
// defer/recover in the loop catches panics correctly.
func (s *Scheduler) broadcastOdds(ctx context.Context) {
	ids, err := s.predictions.OpenMarketIDs(ctx)
	if err != nil {
		s.logger.Warn("oddsBroadcastLoop: open market ids", "err", err)
		return
	}

	now := time.Now().UTC()
	for _, id := range ids {
		market, err := s.markets.GetMarket(ctx, id)
		if err != nil {
			s.logger.Warn("oddsBroadcastLoop: market fetch failed", "market", id, "err", err)
			continue
		}
		s.sink.BroadcastOddsUpdate(market, now)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Panic recovery
// ──────────────────────────────────────────────────────────────────────────────

// recoverAndLog is deferred inside each goroutine to catch unexpected panics,
// log them, and keep the process alive.
func (s *Scheduler) recoverAndLog(loop string) {
	if r := recover(); r != nil {
		s.logger.Error("PANIC recovered in scheduler loop", "loop", loop, "panic", r)
	}
}
