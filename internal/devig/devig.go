// Package devig removes bookmaker margin from implied probabilities to
// recover fair outcome probabilities.
package devig

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Method selects a de-vig algorithm.
type Method string

const (
	// Multiplicative divides every probability by the vector sum.
	Multiplicative Method = "multiplicative"
	// Additive removes the margin as an equal absolute amount per side.
	Additive Method = "additive"
	// Power finds an exponent k with sum(p_i^k) = 1, modelling margin as a
	// power-law skew toward favorites.
	Power Method = "power"
	// Shin solves for the insider-trading proportion z; exact for two-way
	// markets and falls back to Multiplicative otherwise.
	Shin Method = "shin"
	// Weighted blends the four base methods with fixed weights. Default.
	Weighted Method = "weighted"
)

// DefaultMethod is used when a caller does not choose one.
const DefaultMethod = Weighted

// Result carries the fair probabilities along with the margin that was removed.
type Result struct {
	FairProbs       []float64 `json:"fair_probs"`
	Method          Method    `json:"method"`
	OriginalImplied []float64 `json:"original_implied"`
	VigRemoved      float64   `json:"vig_removed"`
}

type devigFunc func(impliedProbs []float64) []float64

// Closed strategy set; an unknown name is an error, never silently defaulted.
var methods = map[Method]devigFunc{
	Multiplicative: multiplicative,
	Additive:       additive,
	Power:          power,
	Shin:           shin,
	Weighted:       weighted,
}

// ValidMethod reports whether m names a supported algorithm.
func ValidMethod(m Method) bool {
	_, ok := methods[m]
	return ok
}

// Methods returns the valid method names, sorted.
func Methods() []string {
	names := make([]string, 0, len(methods))
	for m := range methods {
		names = append(names, string(m))
	}
	sort.Strings(names)
	return names
}

// Devig removes the vig from a vector of implied probabilities using the
// chosen method. The returned fair probabilities sum to one within floating
// tolerance. The vig removed is sum(implied) - 1, floored at zero.
func Devig(impliedProbs []float64, method Method) (Result, error) {
	fn, ok := methods[method]
	if !ok {
		return Result{}, fmt.Errorf("%w: %q (valid: %s)",
			ErrUnknownMethod, method, strings.Join(Methods(), ", "))
	}

	fairProbs := fn(impliedProbs)

	total := sum(impliedProbs)
	vigRemoved := 0.0
	if total > 1 {
		vigRemoved = total - 1
	}

	return Result{
		FairProbs:       fairProbs,
		Method:          method,
		OriginalImplied: impliedProbs,
		VigRemoved:      vigRemoved,
	}, nil
}

// multiplicative scales every probability by 1/sum.
func multiplicative(impliedProbs []float64) []float64 {
	total := sum(impliedProbs)
	if total == 0 {
		return append([]float64(nil), impliedProbs...)
	}
	fair := make([]float64, len(impliedProbs))
	for i, p := range impliedProbs {
		fair[i] = p / total
	}
	return fair
}

// additive subtracts an equal share of the margin from each side, flooring
// at 0.001 so a heavy longshot cannot go nonpositive, then renormalizes.
func additive(impliedProbs []float64) []float64 {
	n := len(impliedProbs)
	if n == 0 {
		return nil
	}
	vigPerSide := (sum(impliedProbs) - 1) / float64(n)
	fair := make([]float64, n)
	for i, p := range impliedProbs {
		fair[i] = math.Max(0.001, p-vigPerSide)
	}
	return normalize(fair)
}

// power binary-searches k in [0.5, 2.0] such that sum(p_i^k) = 1, applies
// the exponent, and renormalizes the residual.
func power(impliedProbs []float64) []float64 {
	if len(impliedProbs) < 2 {
		return append([]float64(nil), impliedProbs...)
	}

	low, high := 0.5, 2.0
	for i := 0; i < 50; i++ {
		mid := (low + high) / 2
		total := 0.0
		for _, p := range impliedProbs {
			total += math.Pow(p, mid)
		}
		// For p in (0,1) a larger exponent shrinks the sum.
		if total < 1 {
			high = mid
		} else {
			low = mid
		}
	}
	k := (low + high) / 2

	fair := make([]float64, len(impliedProbs))
	for i, p := range impliedProbs {
		fair[i] = math.Pow(p, k)
	}
	return normalize(fair)
}

// shin estimates the proportion z of money from informed bettors and backs
// the fair probabilities out of the quoted ones. The derivation is exact for
// two outcomes only; other lengths fall back to multiplicative.
func shin(impliedProbs []float64) []float64 {
	if len(impliedProbs) != 2 {
		return multiplicative(impliedProbs)
	}

	p1, p2 := impliedProbs[0], impliedProbs[1]
	total := p1 + p2

	// A vig-free book carries no insider signal to extract.
	if total == 1 {
		return multiplicative(impliedProbs)
	}

	discriminant := (total-1)*(total-1) + 4*(total-1)*p1*p2/total
	if discriminant < 0 {
		return multiplicative(impliedProbs)
	}

	z := (total - 1 - math.Sqrt(discriminant)) / (2 * (total - 1))
	z = math.Max(0, math.Min(z, 0.5))
	if z == 0 {
		return multiplicative(impliedProbs)
	}

	fair := make([]float64, 2)
	for i, p := range impliedProbs {
		inner := z*z + 4*(1-z)*p*p/total
		fair[i] = math.Max(0.001, (math.Sqrt(inner)-z)/(2*(1-z)))
	}
	return normalize(fair)
}

// weighted blends the four base methods. Shin is only trusted for two-way
// markets; multi-way vectors lean on the power method instead.
func weighted(impliedProbs []float64) []float64 {
	var weights [4]float64
	if len(impliedProbs) == 2 {
		weights = [4]float64{0.2, 0.1, 0.3, 0.4} // mult, add, power, shin
	} else {
		weights = [4]float64{0.3, 0.1, 0.5, 0.1}
	}

	results := [][]float64{
		multiplicative(impliedProbs),
		additive(impliedProbs),
		power(impliedProbs),
		shin(impliedProbs),
	}

	totalWeight := 0.0
	for _, w := range weights {
		totalWeight += w
	}

	fair := make([]float64, len(impliedProbs))
	for i := range impliedProbs {
		for j, r := range results {
			fair[i] += r[i] * weights[j] / totalWeight
		}
	}
	return normalize(fair)
}

func sum(probs []float64) float64 {
	total := 0.0
	for _, p := range probs {
		total += p
	}
	return total
}

func normalize(probs []float64) []float64 {
	total := sum(probs)
	if total == 0 {
		return probs
	}
	for i := range probs {
		probs[i] /= total
	}
	return probs
}
