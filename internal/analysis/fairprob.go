// Package analysis turns raw market quotes into fair probabilities, expected
// values, and ranked bet recommendations.
package analysis

import (
	"fmt"

	"github.com/yourusername/edge-finder/internal/devig"
	"github.com/yourusername/edge-finder/internal/models"
)

// DefaultSingleSideMargin is the assumed one-side margin used when a market
// has no opposing side to de-vig against. A flat 2.5% is a rough stand-in
// for real margin structure, not a calibrated model; treat single-sided
// estimates as strictly less accurate than paired ones.
const DefaultSingleSideMargin = 0.025

// Analyzer computes fair probabilities from market pairs. It holds only
// immutable configuration and is safe for concurrent use.
type Analyzer struct {
	weights          BookWeights
	singleSideMargin float64
}

// NewAnalyzer builds an Analyzer. A non-positive singleSideMargin falls back
// to the default.
func NewAnalyzer(weights BookWeights, singleSideMargin float64) *Analyzer {
	if singleSideMargin <= 0 {
		singleSideMargin = DefaultSingleSideMargin
	}
	return &Analyzer{weights: weights, singleSideMargin: singleSideMargin}
}

// FairProbability estimates the true probability of the pair's primary
// outcome. With an opposing market present, each bookmaker quoting both
// sides contributes its de-vigged probability, weighted by sharpness.
// Without one, the estimate degrades to the single-sided approximation.
// Returns 0 when no book contributes.
func (a *Analyzer) FairProbability(pair models.MarketPair, method devig.Method) (float64, error) {
	if !devig.ValidMethod(method) {
		// Same error surface as the engine; never substitute a default.
		_, err := devig.Devig(nil, method)
		return 0, err
	}
	if pair.Market == nil || len(pair.Market.Odds) == 0 {
		return 0, nil
	}

	if pair.Opposing != nil && len(pair.Opposing.Odds) > 0 {
		return a.pairedFairProbability(pair.Market, pair.Opposing, method)
	}
	return a.singleSideFairProbability(pair.Market), nil
}

func (a *Analyzer) pairedFairProbability(market, opposing *models.Market, method devig.Method) (float64, error) {
	weightedProb := 0.0
	totalWeight := 0.0

	for _, odds := range market.Odds {
		opposingOdds := opposing.OddsByBook(odds.Bookmaker)
		if opposingOdds == nil {
			// Book quotes one side only; skip it rather than fail the batch.
			continue
		}

		result, err := devig.Devig([]float64{odds.ImpliedProb, opposingOdds.ImpliedProb}, method)
		if err != nil {
			return 0, fmt.Errorf("de-vig %s at %s: %w", market.Selection, odds.Bookmaker, err)
		}

		weight := a.weights.For(odds.Bookmaker)
		weightedProb += result.FairProbs[0] * weight
		totalWeight += weight
	}

	if totalWeight == 0 {
		return 0, nil
	}
	return weightedProb / totalWeight, nil
}

// singleSideFairProbability deflates each book's implied probability by the
// assumed one-side margin and averages by sharpness.
func (a *Analyzer) singleSideFairProbability(market *models.Market) float64 {
	weightedProb := 0.0
	totalWeight := 0.0

	for _, odds := range market.Odds {
		estimated := odds.ImpliedProb / (1 + a.singleSideMargin)
		weight := a.weights.For(odds.Bookmaker)
		weightedProb += estimated * weight
		totalWeight += weight
	}

	if totalWeight == 0 {
		return 0
	}
	return weightedProb / totalWeight
}
