package analysis

import "strings"

// DefaultBookWeight is assumed for books missing from the sharpness table.
const DefaultBookWeight = 0.5

// BookWeights is the immutable sharpness table: how much each bookmaker's
// line is trusted when averaging fair probabilities. Built once at startup
// from config and shared read-only afterwards.
type BookWeights struct {
	byBook        map[string]float64
	defaultWeight float64
}

// NewBookWeights copies the given table. Keys are lowercased so lookups are
// case-insensitive.
func NewBookWeights(weights map[string]float64, defaultWeight float64) BookWeights {
	byBook := make(map[string]float64, len(weights))
	for book, w := range weights {
		byBook[strings.ToLower(book)] = w
	}
	return BookWeights{byBook: byBook, defaultWeight: defaultWeight}
}

// DefaultBookWeights returns the built-in sharpness table. Pinnacle sets the
// benchmark; recreational books trail it.
func DefaultBookWeights() BookWeights {
	return NewBookWeights(map[string]float64{
		"pinnacle":    1.0,
		"circa":       0.95,
		"bookmaker":   0.9,
		"betcris":     0.85,
		"superbook":   0.8,
		"bovada":      0.7,
		"betonlineag": 0.7,
		"draftkings":  0.6,
		"fanduel":     0.6,
		"betmgm":      0.55,
		"pointsbetus": 0.5,
		"caesars":     0.5,
		"betrivers":   0.5,
		"unibet":      0.5,
		"wynnbet":     0.45,
	}, DefaultBookWeight)
}

// For returns the sharpness weight for a bookmaker.
func (w BookWeights) For(bookmaker string) float64 {
	if weight, ok := w.byBook[strings.ToLower(bookmaker)]; ok {
		return weight
	}
	return w.defaultWeight
}
