package models

import "math"

// Odds represents a single bookmaker's quote for one outcome.
// Decimal price and implied probability are derived from the American
// price at construction and never recomputed.
type Odds struct {
	Bookmaker   string  `json:"bookmaker"`
	American    int     `json:"american"`
	Decimal     float64 `json:"decimal"`
	ImpliedProb float64 `json:"implied_prob"`
}

// NewOdds builds an Odds value from a bookmaker name and an American price.
// An American price of zero has no meaning and is rejected.
func NewOdds(bookmaker string, american int) (Odds, error) {
	if american == 0 {
		return Odds{}, ErrZeroAmericanOdds
	}
	decimal := AmericanToDecimal(american)
	return Odds{
		Bookmaker:   bookmaker,
		American:    american,
		Decimal:     decimal,
		ImpliedProb: 1.0 / decimal,
	}, nil
}

// MustOdds is NewOdds for callers with prices known to be valid, such as
// test fixtures and literals. It panics on a zero American price.
func MustOdds(bookmaker string, american int) Odds {
	o, err := NewOdds(bookmaker, american)
	if err != nil {
		panic(err)
	}
	return o
}

// AmericanToDecimal converts an American price to a decimal price.
// +150 -> 2.50, -150 -> 1.666...
func AmericanToDecimal(american int) float64 {
	if american > 0 {
		return 1.0 + float64(american)/100.0
	}
	return 1.0 + 100.0/math.Abs(float64(american))
}

// DecimalToAmerican converts a decimal price back to the nearest American price.
// Returns 0 for decimal prices at or below 1, which have no American form.
func DecimalToAmerican(decimal float64) int {
	if decimal <= 1 {
		return 0
	}
	if decimal >= 2 {
		return int(math.Round((decimal - 1) * 100))
	}
	return int(math.Round(-100 / (decimal - 1)))
}

// ProbToAmerican renders a probability as the vig-free American price it implies.
// Degenerate probabilities (<=0 or >=1) map to 0.
func ProbToAmerican(prob float64) int {
	if prob <= 0 || prob >= 1 {
		return 0
	}
	if prob >= 0.5 {
		return int(math.Round(-100 * prob / (1 - prob)))
	}
	return int(math.Round(100 * (1 - prob) / prob))
}
