// Package kelly sizes stakes with the Kelly criterion: fractional, capped,
// and scaled down when a batch of bets would over-expose the bankroll.
package kelly

import "math"

// Default sizing parameters, mirrored by the betting section of the config.
const (
	DefaultFraction      = 0.25 // quarter Kelly
	DefaultMaxBetPercent = 0.05 // max 5% of bankroll per bet
	DefaultMaxExposure   = 0.25 // max 25% of bankroll at risk at once
)

// Result is the outcome of a single Kelly sizing computation.
type Result struct {
	FullKelly           float64 `json:"full_kelly"`
	RecommendedFraction float64 `json:"recommended_fraction"`
	RecommendedStake    float64 `json:"recommended_stake"`
	Edge                float64 `json:"edge"`
	DecimalOdds         float64 `json:"decimal_odds"`
}

// Criterion computes the fractional, capped Kelly stake for a single bet.
//
//	f* = (b·p − q) / b   with b = decimal − 1, q = 1 − p
//
// Degenerate win probabilities (p <= 0 or p >= 1) and non-positive net odds
// produce a zero-stake result rather than an error; a negative edge is
// reported on the result so the caller can see why no bet is recommended.
func Criterion(winProb, decimalOdds, bankroll, fraction, maxBetPercent float64) Result {
	if winProb <= 0 || winProb >= 1 {
		return Result{DecimalOdds: decimalOdds}
	}

	b := decimalOdds - 1
	p := winProb
	q := 1 - p

	if b <= 0 {
		return Result{DecimalOdds: decimalOdds}
	}

	fullKelly := (b*p - q) / b
	edge := b*p - q

	if fullKelly <= 0 {
		return Result{Edge: edge, DecimalOdds: decimalOdds}
	}

	capped := math.Min(fullKelly*fraction, maxBetPercent)
	stake := roundCents(bankroll * capped)

	return Result{
		FullKelly:           fullKelly,
		RecommendedFraction: capped,
		RecommendedStake:    stake,
		Edge:                edge,
		DecimalOdds:         decimalOdds,
	}
}

// ScaleExposure returns the stakes for a batch of sized bets, scaled down
// uniformly when the summed fractions exceed maxTotalExposure. De-risking is
// proportional across the whole batch, never a priority cut.
func ScaleExposure(results []Result, maxTotalExposure float64) []float64 {
	totalFraction := 0.0
	for _, r := range results {
		totalFraction += r.RecommendedFraction
	}

	stakes := make([]float64, len(results))
	if totalFraction <= maxTotalExposure {
		for i, r := range results {
			stakes[i] = r.RecommendedStake
		}
		return stakes
	}

	scale := maxTotalExposure / totalFraction
	for i, r := range results {
		stakes[i] = roundCents(r.RecommendedStake * scale)
	}
	return stakes
}

// WithCorrelation shrinks the Kelly fraction before sizing when the bet is
// correlated with others (same-game legs, repeated exposure to one team).
// The base fraction is divided by 1 + correlation·(n−1).
func WithCorrelation(winProb, decimalOdds, bankroll, fraction, maxBetPercent,
	correlation float64, numCorrelatedBets int) Result {
	factor := 1 / (1 + correlation*float64(numCorrelatedBets-1))
	return Criterion(winProb, decimalOdds, bankroll, fraction*factor, maxBetPercent)
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
