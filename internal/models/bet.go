package models

import (
	"time"

	"github.com/google/uuid"
)

// BetStatus represents the lifecycle state of a tracked bet.
type BetStatus string

const (
	BetStatusPending BetStatus = "pending"
	BetStatusWon     BetStatus = "won"
	BetStatusLost    BetStatus = "lost"
	BetStatusVoid    BetStatus = "void"
)

// BetRecommendation is a derived, read-only suggestion produced by a scan.
// It is computed fresh per query and never persisted.
type BetRecommendation struct {
	Market           *Market `json:"market"`
	BestOdds         Odds    `json:"best_odds"`
	FairProb         float64 `json:"fair_prob"`
	EVPercent        float64 `json:"ev_percent"`
	KellyFraction    float64 `json:"kelly_fraction"`
	RecommendedStake float64 `json:"recommended_stake"`
}

// FairDecimal returns the decimal price implied by the fair probability.
func (b *BetRecommendation) FairDecimal() float64 {
	if b.FairProb <= 0 {
		return 0
	}
	return 1.0 / b.FairProb
}

// FairAmerican returns the vig-free American price implied by the fair probability.
func (b *BetRecommendation) FairAmerican() int {
	return ProbToAmerican(b.FairProb)
}

// Bet is a manually tracked wager in the ledger. Stake and EV are filled in
// by the Kelly sizer at creation time; status and result change on settlement.
type Bet struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	Event         string     `db:"event" json:"event" validate:"required"`
	Selection     string     `db:"selection" json:"selection" validate:"required"`
	AmericanOdds  int        `db:"american_odds" json:"american_odds" validate:"required"`
	WinProb       float64    `db:"win_prob" json:"win_prob" validate:"gt=0,lt=1"`
	Stake         float64    `db:"stake" json:"stake"`
	KellyFraction float64    `db:"kelly_fraction" json:"kelly_fraction"`
	EVPercent     float64    `db:"ev_percent" json:"ev_percent"`
	Status        BetStatus  `db:"status" json:"status"`
	ResultAmount  float64    `db:"result_amount" json:"result_amount"`
	Notes         string     `db:"notes" json:"notes"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	SettledAt     *time.Time `db:"settled_at" json:"settled_at,omitempty"`
}

// IsSettled reports whether the bet has reached a terminal status.
func (b *Bet) IsSettled() bool {
	return b.Status == BetStatusWon || b.Status == BetStatusLost
}
