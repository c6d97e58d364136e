// Package ledger tracks manually placed bets: creation with Kelly sizing,
// settlement, and bankroll performance statistics.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/edge-finder/internal/analysis"
	"github.com/yourusername/edge-finder/internal/config"
	"github.com/yourusername/edge-finder/internal/kelly"
	"github.com/yourusername/edge-finder/internal/metrics"
	"github.com/yourusername/edge-finder/internal/models"
	"github.com/yourusername/edge-finder/internal/repository"
)

// listLimit bounds how many ledger rows Stats pulls in one call.
const listLimit = 10000

var (
	ErrAlreadySettled = errors.New("bet is already settled")
	ErrInvalidSettle  = errors.New("settlement status must be won, lost, or void")
	ErrInvalidWinProb = errors.New("win probability must be between 0 and 1 exclusive")
)

// Service is the bet ledger built on a BetRepository.
type Service struct {
	repo    repository.BetRepository
	betting config.BettingConfig
	log     *logrus.Logger
}

// NewService creates a ledger service.
func NewService(repo repository.BetRepository, betting config.BettingConfig, log *logrus.Logger) *Service {
	return &Service{repo: repo, betting: betting, log: log}
}

// CreateParams describes a bet to record. Stake is optional: when zero the
// ledger sizes it with the configured fractional Kelly parameters.
type CreateParams struct {
	Event        string
	Selection    string
	AmericanOdds int
	WinProb      float64
	Stake        float64
	Notes        string
}

// CreateBet records a new pending bet. EV and the Kelly fraction are computed
// at creation time so the ledger preserves what the edge looked like when the
// bet was placed.
func (s *Service) CreateBet(ctx context.Context, p CreateParams) (*models.Bet, error) {
	if p.WinProb <= 0 || p.WinProb >= 1 {
		return nil, ErrInvalidWinProb
	}

	if p.AmericanOdds == 0 {
		return nil, models.ErrZeroAmericanOdds
	}
	dec := models.AmericanToDecimal(p.AmericanOdds)

	sizing := kelly.Criterion(p.WinProb, dec,
		s.betting.Bankroll, s.betting.KellyFraction, s.betting.MaxBetPercent)

	stake := p.Stake
	if stake == 0 {
		stake = sizing.RecommendedStake
	}

	bet := &models.Bet{
		ID:            uuid.New(),
		Event:         p.Event,
		Selection:     p.Selection,
		AmericanOdds:  p.AmericanOdds,
		WinProb:       p.WinProb,
		Stake:         stake,
		KellyFraction: sizing.RecommendedFraction,
		EVPercent:     analysis.EV(p.WinProb, dec),
		Status:        models.BetStatusPending,
		Notes:         p.Notes,
		CreatedAt:     time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, bet); err != nil {
		return nil, fmt.Errorf("failed to record bet: %w", err)
	}

	metrics.LedgerBetsCreatedTotal.Inc()
	s.log.WithFields(logrus.Fields{
		"bet_id":     bet.ID,
		"event":      bet.Event,
		"selection":  bet.Selection,
		"stake":      bet.Stake,
		"ev_percent": bet.EVPercent,
	}).Info("Bet recorded")

	return bet, nil
}

// Settle marks a pending bet won, lost, or void and computes the result
// amount: winnings at the recorded odds, the lost stake, or zero for a push.
func (s *Service) Settle(ctx context.Context, id uuid.UUID, status models.BetStatus) (*models.Bet, error) {
	bet, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if bet.Status != models.BetStatusPending {
		return nil, ErrAlreadySettled
	}

	switch status {
	case models.BetStatusWon:
		dec := models.AmericanToDecimal(bet.AmericanOdds)
		profit := decimal.NewFromFloat(bet.Stake).
			Mul(decimal.NewFromFloat(dec - 1)).
			Round(2)
		bet.ResultAmount, _ = profit.Float64()
	case models.BetStatusLost:
		bet.ResultAmount = -bet.Stake
	case models.BetStatusVoid:
		bet.ResultAmount = 0
	default:
		return nil, ErrInvalidSettle
	}

	now := time.Now().UTC()
	bet.Status = status
	bet.SettledAt = &now

	if err := s.repo.Update(ctx, bet); err != nil {
		return nil, fmt.Errorf("failed to settle bet: %w", err)
	}

	metrics.LedgerBetsSettledTotal.Inc()
	s.log.WithFields(logrus.Fields{
		"bet_id": bet.ID,
		"status": bet.Status,
		"result": bet.ResultAmount,
	}).Info("Bet settled")

	return bet, nil
}

// Get returns a single ledger bet.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Bet, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns recent ledger bets, newest first.
func (s *Service) List(ctx context.Context, limit int) ([]*models.Bet, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.repo.List(ctx, limit)
}

// Delete removes a bet from the ledger.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// Stats summarizes ledger performance. Money totals use decimal arithmetic
// so repeated settlement sums stay exact to the cent.
type Stats struct {
	TotalBets       int     `json:"total_bets"`
	Pending         int     `json:"pending"`
	Wins            int     `json:"wins"`
	Losses          int     `json:"losses"`
	Voids           int     `json:"voids"`
	WinRate         float64 `json:"win_rate"`
	TotalStaked     float64 `json:"total_staked"`
	ProfitLoss      float64 `json:"profit_loss"`
	ROIPercent      float64 `json:"roi_percent"`
	PendingExposure float64 `json:"pending_exposure"`
}

// Stats computes ledger statistics across all recorded bets.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	bets, err := s.repo.List(ctx, listLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger: %w", err)
	}

	stats := &Stats{TotalBets: len(bets)}
	staked := decimal.Zero
	settledStaked := decimal.Zero
	profit := decimal.Zero
	exposure := decimal.Zero

	for _, bet := range bets {
		stake := decimal.NewFromFloat(bet.Stake)
		staked = staked.Add(stake)

		switch bet.Status {
		case models.BetStatusPending:
			stats.Pending++
			exposure = exposure.Add(stake)
		case models.BetStatusWon:
			stats.Wins++
			settledStaked = settledStaked.Add(stake)
			profit = profit.Add(decimal.NewFromFloat(bet.ResultAmount))
		case models.BetStatusLost:
			stats.Losses++
			settledStaked = settledStaked.Add(stake)
			profit = profit.Add(decimal.NewFromFloat(bet.ResultAmount))
		case models.BetStatusVoid:
			stats.Voids++
		}
	}

	if decided := stats.Wins + stats.Losses; decided > 0 {
		stats.WinRate = float64(stats.Wins) / float64(decided)
	}
	stats.TotalStaked, _ = staked.Float64()
	stats.ProfitLoss, _ = profit.Float64()
	stats.PendingExposure, _ = exposure.Float64()
	if settledStaked.IsPositive() {
		roi := profit.Div(settledStaked).Mul(decimal.NewFromInt(100)).Round(2)
		stats.ROIPercent, _ = roi.Float64()
	}

	metrics.PendingExposure.Set(stats.PendingExposure)

	return stats, nil
}
