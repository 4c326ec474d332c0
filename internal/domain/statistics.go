package domain

import (
	"github.com/shopspring/decimal"
)

// Statistics is a pure aggregate over a set of predictions. All monetary
// fields use the same 4-decimal precision as the underlying records.
type Statistics struct {
	TotalInvested   decimal.Decimal `json:"total_invested"`
	TotalPayout     decimal.Decimal `json:"total_payout"`
	TotalProfit     decimal.Decimal `json:"total_profit"`
	Wins            int             `json:"wins"`
	Losses          int             `json:"losses"`
	WinRate         decimal.Decimal `json:"win_rate"` // percentage; 0 when no closed positions
	ActivePositions int             `json:"active_positions"`
	ClosedPositions int             `json:"closed_positions"`
	ActiveValue     decimal.Decimal `json:"active_value"`
}

// Summarize computes aggregate statistics over the given predictions.
//
//   - TotalInvested sums every stake regardless of status.
//   - TotalPayout and TotalProfit cover only closed (won/lost) positions.
//   - WinRate is wins/(wins+losses)×100 and defined as 0 for an empty
//     denominator.
//   - ActiveValue sums the potential payout of open positions, falling back
//     to the stake when no payout could be computed.
func Summarize(predictions []*Prediction) Statistics {
	stats := Statistics{
		TotalInvested: decimal.Zero,
		TotalPayout:   decimal.Zero,
		TotalProfit:   decimal.Zero,
		WinRate:       decimal.Zero,
		ActiveValue:   decimal.Zero,
	}

	closedStake := decimal.Zero
	for _, p := range predictions {
		stats.TotalInvested = stats.TotalInvested.Add(p.Amount)

		if p.Status.IsTerminal() {
			stats.ClosedPositions++
			closedStake = closedStake.Add(p.Amount)
			if p.ActualPayout != nil {
				stats.TotalPayout = stats.TotalPayout.Add(*p.ActualPayout)
			}
			if p.Status == PredictionWon {
				stats.Wins++
			} else {
				stats.Losses++
			}
			continue
		}

		stats.ActivePositions++
		if p.PotentialPayout.IsPositive() {
			stats.ActiveValue = stats.ActiveValue.Add(p.PotentialPayout)
		} else {
			stats.ActiveValue = stats.ActiveValue.Add(p.Amount)
		}
	}

	stats.TotalProfit = stats.TotalPayout.Sub(closedStake)

	if closed := stats.Wins + stats.Losses; closed > 0 {
		stats.WinRate = decimal.NewFromInt(int64(stats.Wins)).
			Div(decimal.NewFromInt(int64(closed))).
			Mul(decimal.NewFromInt(100)).
			Round(2)
	}
	return stats
}
