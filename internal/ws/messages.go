// Package ws holds WebSocket message types and the Hub implementation.
// messages.go defines all message structs pushed to connected clients.
package ws

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/oddsline/tracker/internal/domain"
)

// MsgType identifies the kind of WS message so clients can switch on it.
type MsgType string

const (
	MsgTypeOddsUpdate        MsgType = "odds_update"
	MsgTypePredictionPlaced  MsgType = "prediction_placed"
	MsgTypePredictionSettled MsgType = "prediction_settled"
	MsgTypeError             MsgType = "error"
)

// ──────────────────────────────────────────────────────────────────────────────
// OddsUpdateMessage — pushed on each broadcast tick for every tracked market.
// ──────────────────────────────────────────────────────────────────────────────

// OddsUpdateMessage carries current pool state, derived prices, and the
// coarse countdown string for one market.
type OddsUpdateMessage struct {
	Type          MsgType         `json:"type"`
	MarketID      string          `json:"market_id"`
	YesPrice      int64           `json:"yes_price"`
	NoPrice       int64           `json:"no_price"`
	SharesA       decimal.Decimal `json:"shares_a"`
	SharesB       decimal.Decimal `json:"shares_b"`
	Volume        string          `json:"volume"`
	TimeRemaining string          `json:"time_remaining"`
	Resolved      bool            `json:"resolved"`
	Timestamp     time.Time       `json:"timestamp"`
}

// ──────────────────────────────────────────────────────────────────────────────
// PredictionPlacedMessage — pushed after a placement is recorded.
// ──────────────────────────────────────────────────────────────────────────────

// PredictionPlacedMessage notifies clients that a new position exists.
type PredictionPlacedMessage struct {
	Type            MsgType         `json:"type"`
	PredictionID    uuid.UUID       `json:"prediction_id"`
	MarketID        string          `json:"market_id"`
	Outcome         domain.Outcome  `json:"outcome"`
	Amount          decimal.Decimal `json:"amount"`
	EntryPrice      int64           `json:"entry_price"`
	PotentialPayout decimal.Decimal `json:"potential_payout"`
	Timestamp       time.Time       `json:"timestamp"`
}

// ──────────────────────────────────────────────────────────────────────────────
// PredictionSettledMessage — pushed when the sweep closes a position.
// ──────────────────────────────────────────────────────────────────────────────

// PredictionSettledMessage tells clients whether a position won and what it
// paid out.
type PredictionSettledMessage struct {
	Type         MsgType                 `json:"type"`
	PredictionID uuid.UUID               `json:"prediction_id"`
	MarketID     string                  `json:"market_id"`
	Won          bool                    `json:"won"`
	Status       domain.PredictionStatus `json:"status"`
	ActualPayout decimal.Decimal         `json:"actual_payout"`
	Timestamp    time.Time               `json:"timestamp"`
}

// ──────────────────────────────────────────────────────────────────────────────
// ErrorMessage — sent to a single client on a non-fatal error.
// ──────────────────────────────────────────────────────────────────────────────

// ErrorMessage is sent directly to one client (not broadcast).
type ErrorMessage struct {
	Type    MsgType `json:"type"`
	Code    string  `json:"code"`
	Message string  `json:"message"`
}
