package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/edge-finder/internal/models"
)

// BetRepository defines the interface for ledger bet data access
type BetRepository interface {
	Create(ctx context.Context, bet *models.Bet) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Bet, error)
	List(ctx context.Context, limit int) ([]*models.Bet, error)
	GetPending(ctx context.Context) ([]*models.Bet, error)
	GetSettled(ctx context.Context, start, end time.Time) ([]*models.Bet, error)
	Update(ctx context.Context, bet *models.Bet) error
	Delete(ctx context.Context, id uuid.UUID) error
}
