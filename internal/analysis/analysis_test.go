package analysis

import (
	"errors"
	"math"
	"testing"

	"github.com/yourusername/edge-finder/internal/devig"
	"github.com/yourusername/edge-finder/internal/models"
)

func pairFixture() models.MarketPair {
	market := &models.Market{
		Sport: "nfl", Event: "Bills @ Chiefs",
		MarketType: models.MarketTypeMoneyline, Selection: "Chiefs",
		Odds: []models.Odds{
			models.MustOdds("pinnacle", -110),
			models.MustOdds("draftkings", -105),
		},
	}
	opposing := &models.Market{
		Sport: "nfl", Event: "Bills @ Chiefs",
		MarketType: models.MarketTypeMoneyline, Selection: "Bills",
		Odds: []models.Odds{
			models.MustOdds("pinnacle", -110),
			models.MustOdds("draftkings", -115),
		},
	}
	return models.MarketPair{Market: market, Opposing: opposing}
}

func TestEV(t *testing.T) {
	if ev := EV(0.55, 2.0); math.Abs(ev-10.0) > 1e-9 {
		t.Fatalf("EV = %v, want 10.0", ev)
	}
	if ev := EV(0, 2.0); ev != 0 {
		t.Fatalf("EV with zero prob = %v, want 0", ev)
	}
	if ev := EV(0.55, 1.0); ev != 0 {
		t.Fatalf("EV with unit decimal = %v, want 0", ev)
	}
}

func TestCLV(t *testing.T) {
	// Bet at 2.10, closed at 1.90: implied moved from 0.4762 to 0.5263.
	clv := CLV(2.10, 1.90)
	if clv <= 0 {
		t.Fatalf("expected positive CLV, got %v", clv)
	}
	if CLV(1.0, 1.9) != 0 || CLV(2.0, 1.0) != 0 {
		t.Fatalf("degenerate prices must give zero CLV")
	}
}

func TestPairedFairProbability(t *testing.T) {
	a := NewAnalyzer(DefaultBookWeights(), 0)
	pair := pairFixture()

	fair, err := a.FairProbability(pair, devig.Multiplicative)
	if err != nil {
		t.Fatal(err)
	}
	// Pinnacle's pair is symmetric (-110/-110 -> 0.5); DraftKings leans
	// slightly toward Bills, so the estimate lands just under one half.
	if fair <= 0.45 || fair >= 0.60 {
		t.Fatalf("fair probability %v out of expected band", fair)
	}

	// Pinnacle weight 1.0 vs DraftKings 0.6: estimate must sit closer to
	// pinnacle's 0.5 than an unweighted average would.
	dkOnly := pair.Market.OddsByBook("draftkings").ImpliedProb
	if math.Abs(fair-0.5) > math.Abs(dkOnly-0.5) {
		t.Fatalf("sharp book should dominate: fair=%v", fair)
	}
}

func TestFairProbabilityRoundTrip(t *testing.T) {
	// A vig-free pair de-vigs to itself under multiplicative scaling.
	market := &models.Market{
		Event: "A @ B", MarketType: models.MarketTypeMoneyline, Selection: "B",
		Odds: []models.Odds{models.MustOdds("pinnacle", 100)},
	}
	opposing := &models.Market{
		Event: "A @ B", MarketType: models.MarketTypeMoneyline, Selection: "A",
		Odds: []models.Odds{models.MustOdds("pinnacle", -100)},
	}

	a := NewAnalyzer(DefaultBookWeights(), 0)
	fair, err := a.FairProbability(models.MarketPair{Market: market, Opposing: opposing}, devig.Multiplicative)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(fair-0.5) > 1e-9 {
		t.Fatalf("vig-free even pair should round-trip to 0.5, got %v", fair)
	}
}

func TestSingleSideFallback(t *testing.T) {
	a := NewAnalyzer(DefaultBookWeights(), 0.025)
	market := &models.Market{
		Event: "A @ B", MarketType: models.MarketTypeMoneyline, Selection: "B",
		Odds: []models.Odds{models.MustOdds("pinnacle", -110)},
	}

	fair, err := a.FairProbability(models.MarketPair{Market: market}, devig.Weighted)
	if err != nil {
		t.Fatal(err)
	}
	implied := market.Odds[0].ImpliedProb
	want := implied / 1.025
	if math.Abs(fair-want) > 1e-9 {
		t.Fatalf("single-side estimate = %v, want %v", fair, want)
	}
	if fair >= implied {
		t.Fatalf("single-side estimate must deflate the implied probability")
	}
}

func TestFairProbabilitySkipsUnmatchedBooks(t *testing.T) {
	pair := pairFixture()
	// Opposing side loses DraftKings: only pinnacle pairs up.
	pair.Opposing.Odds = pair.Opposing.Odds[:1]

	a := NewAnalyzer(DefaultBookWeights(), 0)
	fair, err := a.FairProbability(pair, devig.Multiplicative)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(fair-0.5) > 1e-9 {
		t.Fatalf("only the symmetric pinnacle pair should contribute, got %v", fair)
	}
}

func TestFairProbabilityUnknownMethod(t *testing.T) {
	a := NewAnalyzer(DefaultBookWeights(), 0)
	_, err := a.FairProbability(pairFixture(), devig.Method("nope"))
	if !errors.Is(err, devig.ErrUnknownMethod) {
		t.Fatalf("expected ErrUnknownMethod, got %v", err)
	}
}

func TestFindEVBets(t *testing.T) {
	// Sharp consensus near 0.5 but one book hangs +120 on Chiefs: +EV.
	pair := pairFixture()
	pair.Market.Odds = append(pair.Market.Odds, models.MustOdds("sleepybook", 120))

	a := NewAnalyzer(DefaultBookWeights(), 0)
	bets, err := a.FindEVBets([]models.MarketPair{pair}, FindParams{
		Bankroll: 1000, MinEV: 1.0, KellyFraction: 0.25, Method: devig.Multiplicative,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(bets) != 1 {
		t.Fatalf("expected 1 bet, got %d", len(bets))
	}

	bet := bets[0]
	if bet.BestOdds.Bookmaker != "sleepybook" || bet.BestOdds.American != 120 {
		t.Fatalf("best odds should be the outlier +120, got %+v", bet.BestOdds)
	}
	if bet.EVPercent < 1.0 {
		t.Fatalf("EV %v below threshold yet returned", bet.EVPercent)
	}
	if bet.RecommendedStake <= 0 {
		t.Fatalf("positive-EV bet should carry a stake")
	}
	if bet.FairAmerican() == 0 {
		t.Fatalf("fair american odds should render for %v", bet.FairProb)
	}
}

func TestFindEVBetsFiltersByMinEV(t *testing.T) {
	pair := pairFixture()
	a := NewAnalyzer(DefaultBookWeights(), 0)

	// Both books charge vig against a ~0.5 fair probability: nothing clears 1%.
	bets, err := a.FindEVBets([]models.MarketPair{pair}, FindParams{
		Bankroll: 1000, MinEV: 1.0, Method: devig.Multiplicative,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(bets) != 0 {
		t.Fatalf("expected no qualifying bets, got %d", len(bets))
	}
}

func TestFindEVBetsSortedByEV(t *testing.T) {
	big := pairFixture()
	big.Market.Odds = append(big.Market.Odds, models.MustOdds("sleepybook", 140))
	small := pairFixture()
	small.Market.Odds = append(small.Market.Odds, models.MustOdds("slowbook", 115))

	a := NewAnalyzer(DefaultBookWeights(), 0)
	bets, err := a.FindEVBets([]models.MarketPair{small, big}, FindParams{
		Bankroll: 1000, MinEV: 0.5, Method: devig.Multiplicative,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(bets) != 2 {
		t.Fatalf("expected 2 bets, got %d", len(bets))
	}
	if bets[0].EVPercent < bets[1].EVPercent {
		t.Fatalf("bets not sorted by EV: %v then %v", bets[0].EVPercent, bets[1].EVPercent)
	}
}

func TestFindEVBetsUnknownMethod(t *testing.T) {
	a := NewAnalyzer(DefaultBookWeights(), 0)
	_, err := a.FindEVBets([]models.MarketPair{pairFixture()}, FindParams{
		Bankroll: 1000, Method: devig.Method("bogus"),
	})
	if !errors.Is(err, devig.ErrUnknownMethod) {
		t.Fatalf("expected ErrUnknownMethod, got %v", err)
	}
}
