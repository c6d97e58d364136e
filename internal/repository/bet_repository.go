package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/yourusername/edge-finder/internal/database"
	"github.com/yourusername/edge-finder/internal/models"
)

// PostgresBetRepository implements BetRepository for PostgreSQL
type PostgresBetRepository struct {
	db *database.DB
}

// NewPostgresBetRepository creates a new bet repository
func NewPostgresBetRepository(db *database.DB) BetRepository {
	return &PostgresBetRepository{db: db}
}

// EnsureSchema creates the bets table if it does not exist. Called once at
// startup so a fresh database works without a separate migration step.
func EnsureSchema(ctx context.Context, db *database.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS bets (
			id UUID PRIMARY KEY,
			event TEXT NOT NULL,
			selection TEXT NOT NULL,
			american_odds INTEGER NOT NULL,
			win_prob DOUBLE PRECISION NOT NULL,
			stake DOUBLE PRECISION NOT NULL,
			kelly_fraction DOUBLE PRECISION NOT NULL,
			ev_percent DOUBLE PRECISION NOT NULL,
			status TEXT NOT NULL,
			result_amount DOUBLE PRECISION NOT NULL DEFAULT 0,
			notes TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL,
			settled_at TIMESTAMPTZ
		)
	`
	if _, err := db.GetPool().Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to ensure bets schema: %w", err)
	}
	return nil
}

// Create inserts a new bet
func (b *PostgresBetRepository) Create(ctx context.Context, bet *models.Bet) error {
	query := `
		INSERT INTO bets (id, event, selection, american_odds, win_prob, stake,
		                  kelly_fraction, ev_percent, status, result_amount, notes,
		                  created_at, settled_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := b.db.GetPool().Exec(ctx, query,
		bet.ID, bet.Event, bet.Selection, bet.AmericanOdds, bet.WinProb, bet.Stake,
		bet.KellyFraction, bet.EVPercent, bet.Status, bet.ResultAmount, bet.Notes,
		bet.CreatedAt, bet.SettledAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create bet: %w", err)
	}

	return nil
}

// GetByID retrieves a bet by ID
func (b *PostgresBetRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Bet, error) {
	query := `
		SELECT id, event, selection, american_odds, win_prob, stake, kelly_fraction,
		       ev_percent, status, result_amount, notes, created_at, settled_at
		FROM bets WHERE id = $1
	`

	bet := &models.Bet{}
	err := b.db.GetPool().QueryRow(ctx, query, id).Scan(
		&bet.ID, &bet.Event, &bet.Selection, &bet.AmericanOdds, &bet.WinProb,
		&bet.Stake, &bet.KellyFraction, &bet.EVPercent, &bet.Status,
		&bet.ResultAmount, &bet.Notes, &bet.CreatedAt, &bet.SettledAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get bet: %w", err)
	}

	return bet, nil
}

// List retrieves the most recent bets, newest first
func (b *PostgresBetRepository) List(ctx context.Context, limit int) ([]*models.Bet, error) {
	query := `
		SELECT id, event, selection, american_odds, win_prob, stake, kelly_fraction,
		       ev_percent, status, result_amount, notes, created_at, settled_at
		FROM bets ORDER BY created_at DESC LIMIT $1
	`

	rows, err := b.db.GetPool().Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list bets: %w", err)
	}
	defer rows.Close()

	return scanBets(rows)
}

// GetPending retrieves all unsettled bets
func (b *PostgresBetRepository) GetPending(ctx context.Context) ([]*models.Bet, error) {
	query := `
		SELECT id, event, selection, american_odds, win_prob, stake, kelly_fraction,
		       ev_percent, status, result_amount, notes, created_at, settled_at
		FROM bets WHERE status = $1 ORDER BY created_at DESC
	`

	rows, err := b.db.GetPool().Query(ctx, query, models.BetStatusPending)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending bets: %w", err)
	}
	defer rows.Close()

	return scanBets(rows)
}

// GetSettled retrieves bets settled within a time range
func (b *PostgresBetRepository) GetSettled(ctx context.Context, start, end time.Time) ([]*models.Bet, error) {
	query := `
		SELECT id, event, selection, american_odds, win_prob, stake, kelly_fraction,
		       ev_percent, status, result_amount, notes, created_at, settled_at
		FROM bets
		WHERE status IN ($1, $2) AND settled_at >= $3 AND settled_at <= $4
		ORDER BY settled_at DESC
	`

	rows, err := b.db.GetPool().Query(ctx, query,
		models.BetStatusWon, models.BetStatusLost, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to get settled bets: %w", err)
	}
	defer rows.Close()

	return scanBets(rows)
}

// Update persists status, result and notes changes to an existing bet
func (b *PostgresBetRepository) Update(ctx context.Context, bet *models.Bet) error {
	query := `
		UPDATE bets
		SET status = $2, result_amount = $3, notes = $4, settled_at = $5
		WHERE id = $1
	`

	tag, err := b.db.GetPool().Exec(ctx, query,
		bet.ID, bet.Status, bet.ResultAmount, bet.Notes, bet.SettledAt)
	if err != nil {
		return fmt.Errorf("failed to update bet: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

// Delete removes a bet from the ledger
func (b *PostgresBetRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := b.db.GetPool().Exec(ctx, "DELETE FROM bets WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete bet: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

func scanBets(rows pgx.Rows) ([]*models.Bet, error) {
	var bets []*models.Bet
	for rows.Next() {
		bet := &models.Bet{}
		err := rows.Scan(
			&bet.ID, &bet.Event, &bet.Selection, &bet.AmericanOdds, &bet.WinProb,
			&bet.Stake, &bet.KellyFraction, &bet.EVPercent, &bet.Status,
			&bet.ResultAmount, &bet.Notes, &bet.CreatedAt, &bet.SettledAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bet: %w", err)
		}
		bets = append(bets, bet)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return bets, nil
}
