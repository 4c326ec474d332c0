package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ──────────────────────────────────────────────────────────────────────────────
// Pricing engine — pure pool → price conversions
// ──────────────────────────────────────────────────────────────────────────────

// Prices holds the implied percentage price of each side (0–100).
// The two sides are rounded independently, so they may not sum to exactly 100;
// that is accepted, not corrected.
type Prices struct {
	Yes int64 `json:"yes_price"`
	No  int64 `json:"no_price"`
}

// For returns the price of the given side.
func (p Prices) For(o Outcome) int64 {
	if o == OutcomeYes {
		return p.Yes
	}
	return p.No
}

// CalculatePrices converts the two outcome pools into percentage prices.
//
// A market with no liquidity has no information, so both sides price at 50.
// Otherwise the YES price is the share of the total held by pool B and the
// NO price the share held by pool A:
//
//	yes = round(sharesB / total × 100)
//	no  = round(sharesA / total × 100)
//
// The cross-mapping (pool B drives YES, pool A drives NO) is the market
// maker's convention and must not be flattened into a same-side mapping.
func CalculatePrices(sharesA, sharesB decimal.Decimal) Prices {
	total := sharesA.Add(sharesB)
	if total.IsZero() {
		return Prices{Yes: 50, No: 50}
	}
	hundred := decimal.NewFromInt(100)
	return Prices{
		Yes: sharesB.Div(total).Mul(hundred).Round(0).IntPart(),
		No:  sharesA.Div(total).Mul(hundred).Round(0).IntPart(),
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Display formatting
// ──────────────────────────────────────────────────────────────────────────────

// FormatTimeRemaining renders the time left until endTime as a coarse
// countdown string: "3d 7h", "7h", or "Ended". Granularity is deliberately
// capped at hours; finer countdowns are a concern of the consumer.
func FormatTimeRemaining(endTime, now time.Time) string {
	seconds := int64(endTime.Sub(now).Seconds())
	if seconds <= 0 {
		return "Ended"
	}
	days := seconds / 86400
	hours := (seconds % 86400) / 3600
	if days > 0 {
		return fmt.Sprintf("%dd %dh", days, hours)
	}
	return fmt.Sprintf("%dh", hours)
}

// FormatVolume renders a non-negative volume in compact display form:
// millions with one decimal ("2.5M"), thousands rounded to integers ("2K"),
// otherwise the plain integer.
func FormatVolume(volume decimal.Decimal) string {
	million := decimal.NewFromInt(1_000_000)
	thousand := decimal.NewFromInt(1_000)
	switch {
	case volume.GreaterThanOrEqual(million):
		return volume.Div(million).StringFixed(1) + "M"
	case volume.GreaterThanOrEqual(thousand):
		return volume.Div(thousand).Round(0).String() + "K"
	default:
		return volume.Round(0).String()
	}
}
