package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ──────────────────────────────────────────────────────────────────────────────
// Status state machine
// ──────────────────────────────────────────────────────────────────────────────

// PredictionStatus represents the lifecycle state of a prediction.
type PredictionStatus string

const (
	PredictionPending   PredictionStatus = "pending"   // transfer submitted, awaiting confirmation
	PredictionConfirmed PredictionStatus = "confirmed" // transfer confirmed, position open
	PredictionActive    PredictionStatus = "active"    // observed as ongoing by the settlement sweep
	PredictionResolved  PredictionStatus = "resolved"  // read-path label only; never stored
	PredictionWon       PredictionStatus = "won"       // market resolved in the user's favour
	PredictionLost      PredictionStatus = "lost"      // market resolved against the user
)

// validTransitions encodes the forward-only edges of the lifecycle.
// PredictionResolved is intentionally absent: it is a transient display label
// for an open position on a just-resolved market, collapsed into won/lost at
// settlement time.
var validTransitions = map[PredictionStatus][]PredictionStatus{
	PredictionPending:   {PredictionConfirmed},
	PredictionConfirmed: {PredictionActive, PredictionWon, PredictionLost},
	PredictionActive:    {PredictionWon, PredictionLost},
	PredictionWon:       {},
	PredictionLost:      {},
}

// CanTransitionTo reports whether moving from s to next is a legal forward
// edge. Statuses never regress.
func (s PredictionStatus) CanTransitionTo(next PredictionStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal returns true for won and lost, the two states nothing leaves.
func (s PredictionStatus) IsTerminal() bool {
	return s == PredictionWon || s == PredictionLost
}

// IsOpen returns true while the position can still be settled by the sweep.
func (s PredictionStatus) IsOpen() bool {
	return s == PredictionPending || s == PredictionConfirmed || s == PredictionActive
}

// ──────────────────────────────────────────────────────────────────────────────
// Prediction
// ──────────────────────────────────────────────────────────────────────────────

// Prediction is a single user stake in one market. Outcome, amount, entry
// price, and potential payout are fixed at placement; actual payout and
// settlement time are written exactly once, at the terminal transition.
type Prediction struct {
	ID              uuid.UUID        `json:"id"               db:"id"`
	Address         string           `json:"address"          db:"address"`
	MarketID        string           `json:"market_id"        db:"market_id"`
	Outcome         Outcome          `json:"outcome"          db:"outcome"`
	Amount          decimal.Decimal  `json:"amount"           db:"amount"`
	EntryPrice      int64            `json:"entry_price"      db:"entry_price"` // percentage 0–100 at placement
	PotentialPayout decimal.Decimal  `json:"potential_payout" db:"potential_payout"`
	Status          PredictionStatus `json:"status"           db:"status"`
	TxHash          string           `json:"tx_hash"          db:"tx_hash"`
	ActualPayout    *decimal.Decimal `json:"actual_payout"    db:"actual_payout"`
	PlacedAt        time.Time        `json:"placed_at"        db:"placed_at"`
	SettledAt       *time.Time       `json:"settled_at"       db:"settled_at"`
}

// PotentialPayout computes the payout a stake would earn if it wins:
// amount × 100 / entryPrice, floored to 4 decimal places (DB DECIMAL(18,4)).
// Returns decimal.Zero when entryPrice is zero (one-sided pool guard).
func PotentialPayout(amount decimal.Decimal, entryPrice int64) decimal.Decimal {
	if entryPrice <= 0 {
		return decimal.Zero
	}
	return amount.Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(entryPrice)).
		RoundDown(4)
}

// IsOpen returns true while the prediction can still interact with the sweep.
func (p *Prediction) IsOpen() bool {
	return p.Status.IsOpen()
}

// DisplayStatus returns the status shown to the user: an open position whose
// market has resolved but has not yet been swept reads as "resolved".
func (p *Prediction) DisplayStatus(marketResolved bool) PredictionStatus {
	if p.Status.IsOpen() && marketResolved {
		return PredictionResolved
	}
	return p.Status
}

// SettlementFor returns the terminal status and payout this prediction earns
// under the given resolution: the full potential payout when the predicted
// side matches the winner, zero otherwise (including INVALID resolutions,
// which pay out neither side).
func (p *Prediction) SettlementFor(winner WinningOutcome) (PredictionStatus, decimal.Decimal) {
	if p.Outcome.Wins(winner) {
		return PredictionWon, p.PotentialPayout
	}
	return PredictionLost, decimal.Zero
}

// ──────────────────────────────────────────────────────────────────────────────
// PlacePredictionRequest — value object used by the lifecycle service
// ──────────────────────────────────────────────────────────────────────────────

// PlacePredictionRequest carries the inputs for placing a prediction.
type PlacePredictionRequest struct {
	Address  string
	MarketID string
	Outcome  Outcome
	Amount   decimal.Decimal
}

// PredictionResponse is the API-safe view of a prediction.
type PredictionResponse struct {
	ID              uuid.UUID        `json:"id"`
	MarketID        string           `json:"market_id"`
	Outcome         Outcome          `json:"outcome"`
	Amount          decimal.Decimal  `json:"amount"`
	EntryPrice      int64            `json:"entry_price"`
	PotentialPayout decimal.Decimal  `json:"potential_payout"`
	Status          PredictionStatus `json:"status"`
	TxHash          string           `json:"tx_hash,omitempty"`
	ActualPayout    *decimal.Decimal `json:"actual_payout,omitempty"`
	PlacedAt        time.Time        `json:"placed_at"`
	SettledAt       *time.Time       `json:"settled_at,omitempty"`
}

// ToResponse converts a Prediction to its API response form.
func (p *Prediction) ToResponse() PredictionResponse {
	return PredictionResponse{
		ID:              p.ID,
		MarketID:        p.MarketID,
		Outcome:         p.Outcome,
		Amount:          p.Amount,
		EntryPrice:      p.EntryPrice,
		PotentialPayout: p.PotentialPayout,
		Status:          p.Status,
		TxHash:          p.TxHash,
		ActualPayout:    p.ActualPayout,
		PlacedAt:        p.PlacedAt,
		SettledAt:       p.SettledAt,
	}
}
