package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/edge-finder/internal/config"
	"github.com/yourusername/edge-finder/internal/models"
)

// MockBetRepository is a mock implementation of repository.BetRepository
type MockBetRepository struct {
	mock.Mock
}

func (m *MockBetRepository) Create(ctx context.Context, bet *models.Bet) error {
	args := m.Called(ctx, bet)
	return args.Error(0)
}

func (m *MockBetRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Bet, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Bet), args.Error(1)
}

func (m *MockBetRepository) List(ctx context.Context, limit int) ([]*models.Bet, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Bet), args.Error(1)
}

func (m *MockBetRepository) GetPending(ctx context.Context) ([]*models.Bet, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Bet), args.Error(1)
}

func (m *MockBetRepository) GetSettled(ctx context.Context, start, end time.Time) ([]*models.Bet, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Bet), args.Error(1)
}

func (m *MockBetRepository) Update(ctx context.Context, bet *models.Bet) error {
	args := m.Called(ctx, bet)
	return args.Error(0)
}

func (m *MockBetRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func testBetting() config.BettingConfig {
	return config.BettingConfig{
		Bankroll:         1000,
		KellyFraction:    0.25,
		MaxBetPercent:    0.05,
		MaxTotalExposure: 0.25,
	}
}

func newTestService(repo *MockBetRepository) *Service {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return NewService(repo, testBetting(), log)
}

func TestCreateBetSizesWithKelly(t *testing.T) {
	repo := new(MockBetRepository)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*models.Bet")).Return(nil)

	svc := newTestService(repo)
	bet, err := svc.CreateBet(context.Background(), CreateParams{
		Event:        "Chiefs vs Bills",
		Selection:    "Chiefs",
		AmericanOdds: 100, // decimal 2.0
		WinProb:      0.55,
	})
	require.NoError(t, err)

	// f* = 0.10, quarter Kelly 0.025, stake $25 on a $1000 bankroll
	assert.InDelta(t, 0.025, bet.KellyFraction, 1e-9)
	assert.InDelta(t, 25.0, bet.Stake, 1e-9)
	assert.InDelta(t, 10.0, bet.EVPercent, 1e-9)
	assert.Equal(t, models.BetStatusPending, bet.Status)
	assert.NotEqual(t, uuid.Nil, bet.ID)
	repo.AssertExpectations(t)
}

func TestCreateBetExplicitStakeOverridesSizing(t *testing.T) {
	repo := new(MockBetRepository)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	svc := newTestService(repo)
	bet, err := svc.CreateBet(context.Background(), CreateParams{
		Event:        "Chiefs vs Bills",
		Selection:    "Chiefs",
		AmericanOdds: 100,
		WinProb:      0.55,
		Stake:        10,
	})
	require.NoError(t, err)
	assert.InDelta(t, 10.0, bet.Stake, 1e-9)
}

func TestCreateBetRejectsBadInput(t *testing.T) {
	svc := newTestService(new(MockBetRepository))

	_, err := svc.CreateBet(context.Background(), CreateParams{
		Event: "x", Selection: "y", AmericanOdds: 100, WinProb: 1.2,
	})
	assert.ErrorIs(t, err, ErrInvalidWinProb)

	_, err = svc.CreateBet(context.Background(), CreateParams{
		Event: "x", Selection: "y", AmericanOdds: 0, WinProb: 0.5,
	})
	assert.ErrorIs(t, err, models.ErrZeroAmericanOdds)
}

func TestSettleWonComputesWinnings(t *testing.T) {
	id := uuid.New()
	pending := &models.Bet{
		ID:           id,
		AmericanOdds: -110, // decimal 1.909...
		Stake:        110,
		Status:       models.BetStatusPending,
	}

	repo := new(MockBetRepository)
	repo.On("GetByID", mock.Anything, id).Return(pending, nil)
	repo.On("Update", mock.Anything, mock.Anything).Return(nil)

	svc := newTestService(repo)
	bet, err := svc.Settle(context.Background(), id, models.BetStatusWon)
	require.NoError(t, err)

	assert.Equal(t, models.BetStatusWon, bet.Status)
	assert.InDelta(t, 100.0, bet.ResultAmount, 0.01)
	require.NotNil(t, bet.SettledAt)
}

func TestSettleLostAndVoid(t *testing.T) {
	for _, tc := range []struct {
		status models.BetStatus
		result float64
	}{
		{models.BetStatusLost, -50},
		{models.BetStatusVoid, 0},
	} {
		id := uuid.New()
		repo := new(MockBetRepository)
		repo.On("GetByID", mock.Anything, id).Return(&models.Bet{
			ID: id, AmericanOdds: 150, Stake: 50, Status: models.BetStatusPending,
		}, nil)
		repo.On("Update", mock.Anything, mock.Anything).Return(nil)

		svc := newTestService(repo)
		bet, err := svc.Settle(context.Background(), id, tc.status)
		require.NoError(t, err)
		assert.Equal(t, tc.status, bet.Status)
		assert.InDelta(t, tc.result, bet.ResultAmount, 1e-9)
	}
}

func TestSettleRejectsSettledBet(t *testing.T) {
	id := uuid.New()
	repo := new(MockBetRepository)
	repo.On("GetByID", mock.Anything, id).Return(&models.Bet{
		ID: id, Status: models.BetStatusWon,
	}, nil)

	svc := newTestService(repo)
	_, err := svc.Settle(context.Background(), id, models.BetStatusLost)
	assert.ErrorIs(t, err, ErrAlreadySettled)
}

func TestSettleRejectsBadStatus(t *testing.T) {
	id := uuid.New()
	repo := new(MockBetRepository)
	repo.On("GetByID", mock.Anything, id).Return(&models.Bet{
		ID: id, Status: models.BetStatusPending, AmericanOdds: 100, Stake: 10,
	}, nil)

	svc := newTestService(repo)
	_, err := svc.Settle(context.Background(), id, models.BetStatusPending)
	assert.ErrorIs(t, err, ErrInvalidSettle)
}

func TestStats(t *testing.T) {
	bets := []*models.Bet{
		{Stake: 100, Status: models.BetStatusWon, ResultAmount: 90.91},
		{Stake: 50, Status: models.BetStatusLost, ResultAmount: -50},
		{Stake: 25, Status: models.BetStatusVoid, ResultAmount: 0},
		{Stake: 25, Status: models.BetStatusPending},
		{Stake: 25, Status: models.BetStatusPending},
	}

	repo := new(MockBetRepository)
	repo.On("List", mock.Anything, listLimit).Return(bets, nil)

	svc := newTestService(repo)
	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 5, stats.TotalBets)
	assert.Equal(t, 2, stats.Pending)
	assert.Equal(t, 1, stats.Wins)
	assert.Equal(t, 1, stats.Losses)
	assert.Equal(t, 1, stats.Voids)
	assert.InDelta(t, 0.5, stats.WinRate, 1e-9)
	assert.InDelta(t, 225.0, stats.TotalStaked, 1e-9)
	assert.InDelta(t, 40.91, stats.ProfitLoss, 1e-9)
	assert.InDelta(t, 50.0, stats.PendingExposure, 1e-9)
	// 40.91 profit on 150 settled stake
	assert.InDelta(t, 27.27, stats.ROIPercent, 0.01)
}

func TestStatsEmptyLedger(t *testing.T) {
	repo := new(MockBetRepository)
	repo.On("List", mock.Anything, listLimit).Return([]*models.Bet{}, nil)

	svc := newTestService(repo)
	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.TotalBets)
	assert.Zero(t, stats.WinRate)
	assert.Zero(t, stats.ROIPercent)
}
