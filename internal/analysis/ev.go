package analysis

import (
	"sort"

	"github.com/yourusername/edge-finder/internal/devig"
	"github.com/yourusername/edge-finder/internal/kelly"
	"github.com/yourusername/edge-finder/internal/models"
)

// EV returns the expected value of a bet as a percentage:
//
//	EV% = (fairProb × decimalOdds − 1) × 100
//
// Degenerate inputs (fairProb <= 0 or decimal <= 1) yield 0: no edge is
// computable, which is a result, not an error.
func EV(fairProb, decimalOdds float64) float64 {
	if fairProb <= 0 || decimalOdds <= 1 {
		return 0
	}
	return (fairProb*decimalOdds - 1) * 100
}

// CLV returns the closing line value of a bet as a percentage: how much
// sharper the taken price was than the closing price, measured on implied
// probabilities. Positive CLV means the market moved toward the bet.
func CLV(betDecimal, closingDecimal float64) float64 {
	if betDecimal <= 1 || closingDecimal <= 1 {
		return 0
	}
	betImplied := 1 / betDecimal
	closeImplied := 1 / closingDecimal
	return (closeImplied - betImplied) / betImplied * 100
}

// FindParams bundles the knobs for an EV scan.
type FindParams struct {
	Bankroll      float64
	MinEV         float64
	KellyFraction float64
	MaxBetPercent float64
	Method        devig.Method
}

// FindEVBets evaluates every market pair, keeps those whose best price beats
// the fair probability by at least MinEV percent, sizes them with fractional
// Kelly, and returns them sorted by EV descending.
//
// Pairs with no quotes or no computable fair probability are skipped.
// The only error surfaced is an invalid de-vig method.
func (a *Analyzer) FindEVBets(pairs []models.MarketPair, params FindParams) ([]*models.BetRecommendation, error) {
	if params.Method == "" {
		params.Method = devig.DefaultMethod
	}
	if params.KellyFraction <= 0 {
		params.KellyFraction = kelly.DefaultFraction
	}
	if params.MaxBetPercent <= 0 {
		params.MaxBetPercent = kelly.DefaultMaxBetPercent
	}

	var bets []*models.BetRecommendation
	for _, pair := range pairs {
		if pair.Market == nil || len(pair.Market.Odds) == 0 {
			continue
		}

		fairProb, err := a.FairProbability(pair, params.Method)
		if err != nil {
			return nil, err
		}
		if fairProb <= 0 {
			continue
		}

		best := pair.Market.BestOdds()
		if best == nil {
			continue
		}

		evPercent := EV(fairProb, best.Decimal)
		if evPercent < params.MinEV {
			continue
		}

		sized := kelly.Criterion(fairProb, best.Decimal, params.Bankroll,
			params.KellyFraction, params.MaxBetPercent)

		bets = append(bets, &models.BetRecommendation{
			Market:           pair.Market,
			BestOdds:         *best,
			FairProb:         fairProb,
			EVPercent:        evPercent,
			KellyFraction:    sized.RecommendedFraction,
			RecommendedStake: sized.RecommendedStake,
		})
	}

	sort.SliceStable(bets, func(i, j int) bool {
		return bets[i].EVPercent > bets[j].EVPercent
	})
	return bets, nil
}
