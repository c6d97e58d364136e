package kelly

import (
	"math"
	"testing"
)

func TestCriterionQuarterKelly(t *testing.T) {
	// p=0.55 at even money: full Kelly = 0.10, quarter = 0.025, $25 on $1000.
	r := Criterion(0.55, 2.0, 1000, 0.25, DefaultMaxBetPercent)

	if math.Abs(r.FullKelly-0.10) > 1e-9 {
		t.Fatalf("full kelly = %v, want 0.10", r.FullKelly)
	}
	if math.Abs(r.RecommendedFraction-0.025) > 1e-9 {
		t.Fatalf("recommended fraction = %v, want 0.025", r.RecommendedFraction)
	}
	if r.RecommendedStake != 25.00 {
		t.Fatalf("stake = %v, want 25.00", r.RecommendedStake)
	}
}

func TestCriterionNegativeEdge(t *testing.T) {
	// p=0.4 at 1.5: full Kelly = -0.4, so no bet but the edge is reported.
	r := Criterion(0.4, 1.5, 1000, 0.25, DefaultMaxBetPercent)

	if r.RecommendedStake != 0 || r.RecommendedFraction != 0 {
		t.Fatalf("expected zero stake, got %+v", r)
	}
	if math.Abs(r.Edge-(-0.4)) > 1e-9 {
		t.Fatalf("edge = %v, want -0.4", r.Edge)
	}
}

func TestCriterionDegenerateProbability(t *testing.T) {
	for _, p := range []float64{0, -0.2, 1, 1.5} {
		r := Criterion(p, 2.0, 1000, 0.25, DefaultMaxBetPercent)
		if r.RecommendedStake != 0 || r.FullKelly != 0 {
			t.Fatalf("p=%v: expected no-bet result, got %+v", p, r)
		}
	}
}

func TestCriterionZeroNetOdds(t *testing.T) {
	r := Criterion(0.55, 1.0, 1000, 0.25, DefaultMaxBetPercent)
	if r.RecommendedStake != 0 {
		t.Fatalf("decimal 1.0 must short-circuit to no bet, got %+v", r)
	}
}

func TestCriterionCapApplies(t *testing.T) {
	// A huge edge must be clipped at the per-bet cap.
	r := Criterion(0.80, 3.0, 1000, 1.0, 0.05)
	if r.RecommendedFraction != 0.05 {
		t.Fatalf("fraction = %v, want capped 0.05", r.RecommendedFraction)
	}
	if r.RecommendedStake != 50.00 {
		t.Fatalf("stake = %v, want 50.00", r.RecommendedStake)
	}
}

func TestScaleExposureUnderCap(t *testing.T) {
	results := []Result{
		{RecommendedFraction: 0.05, RecommendedStake: 50},
		{RecommendedFraction: 0.05, RecommendedStake: 50},
	}
	stakes := ScaleExposure(results, 0.25)
	if stakes[0] != 50 || stakes[1] != 50 {
		t.Fatalf("stakes under the cap must pass through, got %v", stakes)
	}
}

func TestScaleExposureOverCap(t *testing.T) {
	results := []Result{
		{RecommendedFraction: 0.20, RecommendedStake: 200},
		{RecommendedFraction: 0.20, RecommendedStake: 200},
		{RecommendedFraction: 0.10, RecommendedStake: 100},
	}
	// Sum of fractions 0.50 vs cap 0.25: everything halves.
	stakes := ScaleExposure(results, 0.25)
	want := []float64{100, 100, 50}
	for i := range want {
		if math.Abs(stakes[i]-want[i]) > 1e-9 {
			t.Fatalf("stakes[%d] = %v, want %v", i, stakes[i], want[i])
		}
	}
}

func TestWithCorrelation(t *testing.T) {
	base := Criterion(0.55, 2.0, 1000, 0.25, 1.0)
	// Two fully correlated bets halve the base fraction.
	adjusted := WithCorrelation(0.55, 2.0, 1000, 0.25, 1.0, 1.0, 2)

	if math.Abs(adjusted.RecommendedFraction-base.RecommendedFraction/2) > 1e-9 {
		t.Fatalf("correlated fraction = %v, want %v",
			adjusted.RecommendedFraction, base.RecommendedFraction/2)
	}

	// Zero correlation leaves sizing untouched.
	same := WithCorrelation(0.55, 2.0, 1000, 0.25, 1.0, 0, 5)
	if same.RecommendedStake != base.RecommendedStake {
		t.Fatalf("uncorrelated sizing changed: %v vs %v",
			same.RecommendedStake, base.RecommendedStake)
	}
}
