// Package domain defines the core business entities and types for the
// binary prediction-market position tracker.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ──────────────────────────────────────────────────────────────────────────────
// Types & constants
// ──────────────────────────────────────────────────────────────────────────────

// Outcome represents the side a user predicts on.
type Outcome string

const (
	OutcomeYes Outcome = "YES"
	OutcomeNo  Outcome = "NO"
)

// IsValid returns true if the outcome is a recognised side.
func (o Outcome) IsValid() bool {
	return o == OutcomeYes || o == OutcomeNo
}

// Code returns the outcome index used by the transfer relayer.
// Side NO maps to slot 0 (pool A), side YES to slot 1 (pool B).
func (o Outcome) Code() int {
	if o == OutcomeYes {
		return 1
	}
	return 0
}

// WinningOutcome is the resolution result reported by a market.
// It is meaningful only once Market.Resolved is true.
type WinningOutcome string

const (
	WinnerNone    WinningOutcome = "NONE"
	WinnerA       WinningOutcome = "A"
	WinnerB       WinningOutcome = "B"
	WinnerInvalid WinningOutcome = "INVALID"
)

// Wins reports whether a prediction on this outcome wins against the given
// resolution. The mapping follows the pool convention: YES ↔ pool B,
// NO ↔ pool A. An INVALID resolution wins for neither side.
func (o Outcome) Wins(w WinningOutcome) bool {
	switch o {
	case OutcomeYes:
		return w == WinnerB
	case OutcomeNo:
		return w == WinnerA
	}
	return false
}

// ──────────────────────────────────────────────────────────────────────────────
// Market
// ──────────────────────────────────────────────────────────────────────────────

// Market is the read-only view of a binary market as reported by the market
// data source. The tracker never owns or mutates markets; predictions hold a
// weak reference to them by ID.
type Market struct {
	ID             string          `json:"id"`
	Question       string          `json:"question"`
	SharesA        decimal.Decimal `json:"shares_a"` // cumulative stake on the NO side
	SharesB        decimal.Decimal `json:"shares_b"` // cumulative stake on the YES side
	Resolved       bool            `json:"resolved"`
	WinningOutcome WinningOutcome  `json:"winning_outcome"`
	EndTime        time.Time       `json:"end_time"`
}

// TotalShares returns the combined stake across both pools.
func (m *Market) TotalShares() decimal.Decimal {
	return m.SharesA.Add(m.SharesB)
}

// Volume is the market's traded volume, which for a pool-based market equals
// the total stake on both sides.
func (m *Market) Volume() decimal.Decimal {
	return m.TotalShares()
}

// Prices returns the current percentage prices derived from the pools.
func (m *Market) Prices() Prices {
	return CalculatePrices(m.SharesA, m.SharesB)
}

// Ended returns true once the market's trading window has passed.
func (m *Market) Ended(now time.Time) bool {
	return !m.EndTime.After(now)
}

// Settleable reports whether the market carries enough information to settle
// predictions against it: it must be resolved and carry a definite winner.
// A resolved market still reporting NONE is treated as incomplete data.
func (m *Market) Settleable() bool {
	return m.Resolved && m.WinningOutcome != WinnerNone && m.WinningOutcome != ""
}
