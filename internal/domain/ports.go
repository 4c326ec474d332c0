package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Collaborator ports. The lifecycle and settlement services depend only on
// these interfaces; production wiring injects the Postgres repositories and
// HTTP clients, tests inject fakes.

// PredictionStore persists predictions. It is the single owner of the durable
// prediction list; no other component mutates it directly.
type PredictionStore interface {
	Create(ctx context.Context, p *Prediction) error
	GetByID(ctx context.Context, id uuid.UUID) (*Prediction, error)
	ListByAddress(ctx context.Context, address string, limit, offset int) ([]*Prediction, error)
	// ListOpen returns every prediction the settlement sweep must inspect
	// (pending, confirmed, or active).
	ListOpen(ctx context.Context) ([]*Prediction, error)
	// OpenMarketIDs returns the distinct market IDs referenced by open
	// predictions, for odds broadcasting.
	OpenMarketIDs(ctx context.Context) ([]string, error)
	// MarkActive flips a confirmed prediction to active. A no-op when the
	// record is no longer in confirmed state.
	MarkActive(ctx context.Context, id uuid.UUID) error
	// Settle writes the terminal status, payout, and settlement time with an
	// optimistic status guard. It returns false without mutating anything
	// when the record is already terminal, which makes the sweep idempotent.
	Settle(ctx context.Context, id uuid.UUID, status PredictionStatus, payout decimal.Decimal, settledAt time.Time) (bool, error)
}

// AttemptStore persists failed placement attempts.
type AttemptStore interface {
	Create(ctx context.Context, a *FailedAttempt) error
	ListByAddress(ctx context.Context, address string) ([]*FailedAttempt, error)
	// ClearByAddress deletes all attempts for an address and returns the count.
	ClearByAddress(ctx context.Context, address string) (int64, error)
}

// MarketSource reads market state. Used at placement time for the entry price
// and by the settlement sweep for resolution state.
type MarketSource interface {
	GetMarket(ctx context.Context, id string) (*Market, error)
}

// TxHandle is the relayer's receipt for a submitted transfer.
type TxHandle struct {
	Hash      string `json:"tx_hash"`
	Confirmed bool   `json:"confirmed"`
}

// WalletProvider is the wallet/relayer collaborator. A returned error or an
// unconfirmed handle both count as transfer failure.
type WalletProvider interface {
	IsConnected(ctx context.Context, address string) (bool, error)
	SubmitTransfer(ctx context.Context, address, marketID string, outcomeCode int, amount decimal.Decimal) (TxHandle, error)
}

// Notifier receives lifecycle events for display purposes. Outbound only;
// implementations must not block the caller.
type Notifier interface {
	PredictionPlaced(p *Prediction)
	PredictionSettled(p *Prediction, won bool)
}

// RemoteSync pushes records to the remote history API. Best-effort: callers
// fire and forget, and a sync failure never rolls back a local transition.
type RemoteSync interface {
	PushPrediction(ctx context.Context, p *Prediction) error
}
