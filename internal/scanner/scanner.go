// Package scanner orchestrates a full market scan: fetch odds per sport,
// surface +EV bets, arbitrage opportunities and middles, and record metrics.
package scanner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/edge-finder/internal/analysis"
	"github.com/yourusername/edge-finder/internal/arbitrage"
	"github.com/yourusername/edge-finder/internal/config"
	"github.com/yourusername/edge-finder/internal/devig"
	"github.com/yourusername/edge-finder/internal/kelly"
	"github.com/yourusername/edge-finder/internal/metrics"
	"github.com/yourusername/edge-finder/internal/models"
)

// OddsProvider supplies paired markets for a sport.
type OddsProvider interface {
	Odds(ctx context.Context, sportKey string, marketKeys []string) ([]models.MarketPair, error)
}

// Result is everything one sport scan surfaced.
type Result struct {
	Sport    string                         `json:"sport"`
	EVBets   []*models.BetRecommendation    `json:"ev_bets"`
	Arbs     []*models.ArbitrageOpportunity `json:"arbs"`
	Middles  []*models.Middle               `json:"middles"`
	Duration time.Duration                  `json:"-"`
}

// Service runs scans against a provider with the configured betting knobs.
type Service struct {
	cfg      *config.Config
	provider OddsProvider
	analyzer *analysis.Analyzer
	log      *logrus.Logger
}

// NewService builds a scanner. Book weights come from config when present,
// otherwise the built-in sharpness table applies.
func NewService(cfg *config.Config, provider OddsProvider, log *logrus.Logger) *Service {
	weights := analysis.DefaultBookWeights()
	if len(cfg.Books.Weights) > 0 {
		defaultWeight := cfg.Books.DefaultWeight
		if defaultWeight == 0 {
			defaultWeight = analysis.DefaultBookWeight
		}
		weights = analysis.NewBookWeights(cfg.Books.Weights, defaultWeight)
	}

	return &Service{
		cfg:      cfg,
		provider: provider,
		analyzer: analysis.NewAnalyzer(weights, cfg.Betting.SingleSideMargin),
		log:      log,
	}
}

// ScanSport fetches and analyzes one sport.
func (s *Service) ScanSport(ctx context.Context, sport string, marketKeys []string) (*Result, error) {
	start := time.Now()

	pairs, err := s.provider.Odds(ctx, s.cfg.SportKey(sport), marketKeys)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", sport, err)
	}

	evBets, err := s.analyzer.FindEVBets(pairs, analysis.FindParams{
		Bankroll:      s.cfg.Betting.Bankroll,
		MinEV:         s.cfg.Betting.MinEVPercent,
		KellyFraction: s.cfg.Betting.KellyFraction,
		MaxBetPercent: s.cfg.Betting.MaxBetPercent,
		Method:        devig.Method(s.cfg.Betting.DevigMethod),
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", sport, err)
	}

	applyExposureCap(evBets, s.cfg.Betting.MaxTotalExposure)

	markets := uniqueMarkets(pairs)
	arbs := arbitrage.Find(markets, s.cfg.Betting.MinArbProfit, s.cfg.Betting.Bankroll)
	middles := arbitrage.FindMiddles(spreadMarkets(markets), arbitrage.DefaultMinGap)

	result := &Result{
		Sport:    sport,
		EVBets:   evBets,
		Arbs:     arbs,
		Middles:  middles,
		Duration: time.Since(start),
	}
	s.record(result)

	s.log.WithFields(logrus.Fields{
		"sport":   sport,
		"pairs":   len(pairs),
		"ev_bets": len(evBets),
		"arbs":    len(arbs),
		"middles": len(middles),
		"took":    result.Duration.Round(time.Millisecond).String(),
	}).Info("Scan complete")

	return result, nil
}

// Scan fans sports out over a bounded worker pool and gathers results in the
// order the sports were given. The first error wins; remaining sports still
// finish so the provider cache stays warm.
func (s *Service) Scan(ctx context.Context, sports []string, marketKeys []string) ([]*Result, error) {
	workers := s.cfg.Betting.ScanWorkers
	if workers <= 0 {
		workers = 1
	}

	results := make([]*Result, len(sports))
	errs := make([]error, len(sports))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i, sport := range sports {
		wg.Add(1)
		go func(i int, sport string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i], errs[i] = s.ScanSport(ctx, sport, marketKeys)
		}(i, sport)
	}
	wg.Wait()

	var out []*Result
	for i := range results {
		if errs[i] != nil {
			return nil, errs[i]
		}
		out = append(out, results[i])
	}
	return out, nil
}

// Analyzer exposes the underlying analyzer for ad hoc fair-value queries.
func (s *Service) Analyzer() *analysis.Analyzer {
	return s.analyzer
}

func (s *Service) record(r *Result) {
	metrics.RecordScan(r.Sport, r.Duration.Seconds())
	metrics.EVBetsFoundTotal.Add(float64(len(r.EVBets)))
	metrics.ArbsFoundTotal.Add(float64(len(r.Arbs)))
	metrics.CurrentBankroll.Set(s.cfg.Betting.Bankroll)
	if len(r.EVBets) > 0 {
		metrics.BestEVPercent.Set(r.EVBets[0].EVPercent)
	}
}

// uniqueMarkets flattens pairs to distinct markets. Pairs list every market
// twice, once per direction, so dedupe by pointer identity.
func uniqueMarkets(pairs []models.MarketPair) []*models.Market {
	seen := map[*models.Market]bool{}
	var markets []*models.Market
	for _, pair := range pairs {
		for _, m := range []*models.Market{pair.Market, pair.Opposing} {
			if m != nil && !seen[m] {
				seen[m] = true
				markets = append(markets, m)
			}
		}
	}
	return markets
}

// applyExposureCap scales the batch's stakes down proportionally when their
// summed Kelly fractions would put more than the cap at risk at once.
func applyExposureCap(bets []*models.BetRecommendation, maxExposure float64) {
	if len(bets) == 0 || maxExposure <= 0 {
		return
	}
	results := make([]kelly.Result, len(bets))
	for i, bet := range bets {
		results[i] = kelly.Result{
			RecommendedFraction: bet.KellyFraction,
			RecommendedStake:    bet.RecommendedStake,
		}
	}
	for i, stake := range kelly.ScaleExposure(results, maxExposure) {
		bets[i].RecommendedStake = stake
	}
}

func spreadMarkets(markets []*models.Market) []*models.Market {
	var spreads []*models.Market
	for _, m := range markets {
		if m.MarketType == models.MarketTypeSpread {
			spreads = append(spreads, m)
		}
	}
	return spreads
}
