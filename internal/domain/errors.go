package domain

import (
	"errors"
)

// ──────────────────────────────────────────────────────────────────────────────
// Sentinel errors — compare with errors.Is()
// ──────────────────────────────────────────────────────────────────────────────

// Placement errors
var (
	// ErrWalletNotConnected is returned when a placement is attempted without
	// a connected wallet session.
	ErrWalletNotConnected = errors.New("wallet not connected")

	// ErrInvalidAmount is returned when the stake is zero, negative, or not a
	// parseable decimal.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInvalidOutcome is returned when the predicted side is not YES or NO.
	ErrInvalidOutcome = errors.New("invalid outcome: must be YES or NO")

	// ErrTransactionFailed is returned when the external transfer was rejected
	// or errored. The relayer's message is wrapped alongside where available.
	ErrTransactionFailed = errors.New("transaction failed")

	// ErrMarketClosed is returned when a placement targets a market that is
	// resolved or whose trading window has ended.
	ErrMarketClosed = errors.New("market is closed")

	// ErrRecordFailed is returned when the transfer succeeded but the
	// prediction could not be persisted. The caller must surface this loudly:
	// the stake moved but the local record does not exist.
	ErrRecordFailed = errors.New("transaction succeeded but prediction could not be recorded")
)

// Lookup errors
var (
	// ErrMarketNotFound is returned when the market data source knows no
	// market with the given ID.
	ErrMarketNotFound = errors.New("market not found")

	// ErrPredictionNotFound is returned when no prediction matches the given
	// criteria.
	ErrPredictionNotFound = errors.New("prediction not found")
)

// Settlement errors
var (
	// ErrAlreadySettled is returned when a terminal prediction is asked to
	// transition again.
	ErrAlreadySettled = errors.New("prediction is already settled")

	// ErrInvalidTransition is returned on any backward or skipping status edge.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// ──────────────────────────────────────────────────────────────────────────────
// Helper predicates
// ──────────────────────────────────────────────────────────────────────────────

// IsNotFound returns true when err (or any error in its chain) is one of the
// domain "not found" errors. Handlers use this to translate to HTTP 404.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrMarketNotFound) || errors.Is(err, ErrPredictionNotFound)
}

// IsValidation returns true for errors caused by bad caller input, detected
// before any external call and safe to retry after correction.
func IsValidation(err error) bool {
	validationErrors := []error{
		ErrWalletNotConnected,
		ErrInvalidAmount,
		ErrInvalidOutcome,
	}
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsConflict returns true for errors that represent a state conflict, such as
// double settlement or betting into a closed market.
func IsConflict(err error) bool {
	conflictErrors := []error{
		ErrMarketClosed,
		ErrAlreadySettled,
		ErrInvalidTransition,
	}
	for _, target := range conflictErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
