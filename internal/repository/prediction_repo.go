// Package repository contains the PostgreSQL implementations of the domain
// storage ports, built on sqlx.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/oddsline/tracker/internal/domain"
)

// PredictionRepository handles all database operations for predictions.
// It implements domain.PredictionStore.
type PredictionRepository struct {
	db *sqlx.DB
}

// NewPredictionRepository creates a new PredictionRepository.
func NewPredictionRepository(db *sqlx.DB) *PredictionRepository {
	return &PredictionRepository{db: db}
}

// Create inserts a new prediction record.
func (r *PredictionRepository) Create(ctx context.Context, p *domain.Prediction) error {
	query := `
		INSERT INTO predictions
			(id, address, market_id, outcome, amount, entry_price,
			 potential_payout, status, tx_hash, placed_at)
		VALUES
			(:id, :address, :market_id, :outcome, :amount, :entry_price,
			 :potential_payout, :status, :tx_hash, :placed_at)`
	if _, err := r.db.NamedExecContext(ctx, query, p); err != nil {
		return fmt.Errorf("prediction_repo.Create: %w", err)
	}
	return nil
}

// GetByID fetches a prediction by its primary key.
func (r *PredictionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Prediction, error) {
	var p domain.Prediction
	err := r.db.GetContext(ctx, &p, `SELECT * FROM predictions WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPredictionNotFound
		}
		return nil, fmt.Errorf("prediction_repo.GetByID: %w", err)
	}
	return &p, nil
}

// ListByAddress returns a wallet's prediction history, newest first, paginated.
func (r *PredictionRepository) ListByAddress(ctx context.Context, address string, limit, offset int) ([]*domain.Prediction, error) {
	var predictions []*domain.Prediction
	err := r.db.SelectContext(ctx, &predictions,
		`SELECT * FROM predictions WHERE address = $1 ORDER BY placed_at DESC LIMIT $2 OFFSET $3`,
		address, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("prediction_repo.ListByAddress: %w", err)
	}
	return predictions, nil
}

// ListOpen returns every prediction the settlement sweep must inspect.
func (r *PredictionRepository) ListOpen(ctx context.Context) ([]*domain.Prediction, error) {
	var predictions []*domain.Prediction
	err := r.db.SelectContext(ctx, &predictions,
		`SELECT * FROM predictions
		 WHERE status IN ('pending', 'confirmed', 'active')
		 ORDER BY placed_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("prediction_repo.ListOpen: %w", err)
	}
	return predictions, nil
}

// OpenMarketIDs returns the distinct markets referenced by open predictions.
func (r *PredictionRepository) OpenMarketIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.SelectContext(ctx, &ids,
		`SELECT DISTINCT market_id FROM predictions
		 WHERE status IN ('pending', 'confirmed', 'active')`)
	if err != nil {
		return nil, fmt.Errorf("prediction_repo.OpenMarketIDs: %w", err)
	}
	return ids, nil
}

// MarkActive flips a confirmed prediction to active. The status guard in the
// WHERE clause makes a repeated call (or a race with settlement) a no-op.
func (r *PredictionRepository) MarkActive(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE predictions SET status = 'active' WHERE id = $1 AND status = 'confirmed'`,
		id)
	if err != nil {
		return fmt.Errorf("prediction_repo.MarkActive: %w", err)
	}
	return nil
}

// Settle writes the terminal status, payout, and settlement time. The status
// guard is the optimistic-concurrency check: a prediction that is already
// terminal matches no row and the call reports settled=false without mutating
// anything, which is what makes repeated sweeps idempotent.
func (r *PredictionRepository) Settle(
	ctx context.Context,
	id uuid.UUID,
	status domain.PredictionStatus,
	payout decimal.Decimal,
	settledAt time.Time,
) (bool, error) {
	if !status.IsTerminal() {
		return false, fmt.Errorf("prediction_repo.Settle: %w: %s is not terminal",
			domain.ErrInvalidTransition, status)
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE predictions
		 SET status = $2, actual_payout = $3, settled_at = $4
		 WHERE id = $1 AND status IN ('pending', 'confirmed', 'active')`,
		id, status, payout, settledAt)
	if err != nil {
		return false, fmt.Errorf("prediction_repo.Settle: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("prediction_repo.Settle: rows affected: %w", err)
	}
	return affected == 1, nil
}
