package domain

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ──────────────────────────────────────────────────────────────────────────────
// FailedAttempt
// ──────────────────────────────────────────────────────────────────────────────

// FailureCause classifies why a transfer never reached confirmation.
type FailureCause string

const (
	CauseTimeout           FailureCause = "timeout"
	CauseInsufficientFunds FailureCause = "insufficient_funds"
	CauseNetworkError      FailureCause = "network_error"
	CauseUserCancelled     FailureCause = "user_cancelled"
)

// FailedAttempt records a prediction that never became a position because the
// external transfer did not succeed. It carries no financial state and lives
// outside the prediction state machine; users may bulk-clear their attempts.
type FailedAttempt struct {
	ID        uuid.UUID       `json:"id"         db:"id"`
	Address   string          `json:"address"    db:"address"`
	MarketID  string          `json:"market_id"  db:"market_id"`
	Outcome   Outcome         `json:"outcome"    db:"outcome"`
	Amount    decimal.Decimal `json:"amount"     db:"amount"`
	Cause     FailureCause    `json:"cause"      db:"cause"`
	Detail    string          `json:"detail"     db:"detail"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}

// ClassifyFailure maps a transfer error onto a FailureCause. Relayer error
// strings are free-form, so the match is substring-based with a network-error
// fallback.
func ClassifyFailure(err error) FailureCause {
	if err == nil {
		return CauseNetworkError
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return CauseTimeout
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "timed out") || strings.Contains(msg, "deadline"):
		return CauseTimeout
	case strings.Contains(msg, "insufficient"):
		return CauseInsufficientFunds
	case strings.Contains(msg, "cancel") || strings.Contains(msg, "denied") || strings.Contains(msg, "rejected by user"):
		return CauseUserCancelled
	default:
		return CauseNetworkError
	}
}
