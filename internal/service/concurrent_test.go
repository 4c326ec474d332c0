package service_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/oddsline/tracker/internal/domain"
)

// TestConcurrentSettlementGuard verifies that the optimistic status guard
// admits exactly one terminal write when N sweeps race on the same prediction.
// This test exercises the guard pattern under -race; in production the DB
// row's status column provides the same guarantee via a conditional UPDATE.
func TestConcurrentSettlementGuard(t *testing.T) {
	const workers = 20

	store := newFakePredictionStore()
	p := storedPrediction(store, "mkt-1", domain.OutcomeYes, domain.PredictionActive)

	var applied int64
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := store.Settle(context.Background(), p.ID,
				domain.PredictionWon, decimal.NewFromInt(20), time.Now().UTC())
			if err != nil {
				t.Errorf("Settle() error = %v", err)
				return
			}
			if ok {
				atomic.AddInt64(&applied, 1)
			}
		}()
	}
	wg.Wait()

	if applied != 1 {
		t.Errorf("exactly 1 settle should apply, got %d", applied)
	}
	got := store.get(p.ID)
	if got.Status != domain.PredictionWon {
		t.Errorf("final status = %s, want won", got.Status)
	}
}

// TestConcurrentPlacements verifies the lifecycle service has no shared
// mutable state across placements: N goroutines placing in parallel produce
// exactly N confirmed records with distinct IDs.
func TestConcurrentPlacements(t *testing.T) {
	const workers = 25

	preds := newFakePredictionStore()
	wallet := &fakeWallet{connected: true, handle: domain.TxHandle{Hash: "0xtx", Confirmed: true}}
	svc := newLifecycle(preds, &fakeAttemptStore{}, newFakeMarketSource(openMarket("mkt-1", 0, 0)), wallet)

	ids := make(chan uuid.UUID, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := svc.PlacePrediction(context.Background(), placeReq(10))
			if err != nil {
				t.Errorf("PlacePrediction() error = %v", err)
				return
			}
			ids <- p.ID
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[uuid.UUID]bool)
	for id := range ids {
		if seen[id] {
			t.Errorf("duplicate prediction ID %s", id)
		}
		seen[id] = true
	}
	if preds.count() != workers {
		t.Errorf("stored predictions = %d, want %d", preds.count(), workers)
	}
}
