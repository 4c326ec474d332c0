package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/oddsline/tracker/internal/domain"
)

// AttemptRepository handles database operations for failed placement attempts.
// It implements domain.AttemptStore.
type AttemptRepository struct {
	db *sqlx.DB
}

// NewAttemptRepository creates a new AttemptRepository.
func NewAttemptRepository(db *sqlx.DB) *AttemptRepository {
	return &AttemptRepository{db: db}
}

// Create inserts a failed attempt record.
func (r *AttemptRepository) Create(ctx context.Context, a *domain.FailedAttempt) error {
	query := `
		INSERT INTO failed_attempts
			(id, address, market_id, outcome, amount, cause, detail, created_at)
		VALUES
			(:id, :address, :market_id, :outcome, :amount, :cause, :detail, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, a); err != nil {
		return fmt.Errorf("attempt_repo.Create: %w", err)
	}
	return nil
}

// ListByAddress returns a wallet's failed attempts, newest first.
func (r *AttemptRepository) ListByAddress(ctx context.Context, address string) ([]*domain.FailedAttempt, error) {
	var attempts []*domain.FailedAttempt
	err := r.db.SelectContext(ctx, &attempts,
		`SELECT * FROM failed_attempts WHERE address = $1 ORDER BY created_at DESC`,
		address)
	if err != nil {
		return nil, fmt.Errorf("attempt_repo.ListByAddress: %w", err)
	}
	return attempts, nil
}

// ClearByAddress deletes all attempts for an address and returns the count.
func (r *AttemptRepository) ClearByAddress(ctx context.Context, address string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM failed_attempts WHERE address = $1`, address)
	if err != nil {
		return 0, fmt.Errorf("attempt_repo.ClearByAddress: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("attempt_repo.ClearByAddress: rows affected: %w", err)
	}
	return affected, nil
}
