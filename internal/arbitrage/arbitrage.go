// Package arbitrage scans outcome groups for quote combinations that lock in
// a profit, and for spread middles.
package arbitrage

import (
	"math"
	"sort"

	"github.com/yourusername/edge-finder/internal/models"
)

// DefaultMinProfit is the minimum profit percentage worth reporting.
const DefaultMinProfit = 0.5

// Find scans a flat list of markets for arbitrage. Markets are grouped by
// (event, market type, point); a group whose best implied probabilities sum
// below one is an opportunity. Results are sorted by profit descending.
//
// Groups with fewer than two outcomes, or with a market carrying no quotes,
// are silently skipped: incomplete input means no opportunity, not an error.
func Find(markets []*models.Market, minProfit, totalStake float64) []*models.ArbitrageOpportunity {
	var opportunities []*models.ArbitrageOpportunity

	for _, group := range groupByLine(markets) {
		if arb := check(group, minProfit, totalStake); arb != nil {
			opportunities = append(opportunities, arb)
		}
	}

	sort.SliceStable(opportunities, func(i, j int) bool {
		return opportunities[i].ProfitPercent > opportunities[j].ProfitPercent
	})
	return opportunities
}

// groupByLine collects markets quoting mutually exclusive outcomes of the
// same line. Group order follows first appearance so output is deterministic.
func groupByLine(markets []*models.Market) [][]*models.Market {
	index := make(map[string]int)
	var groups [][]*models.Market

	for _, m := range markets {
		key := m.GroupKey()
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], m)
	}
	return groups
}

func check(group []*models.Market, minProfit, totalStake float64) *models.ArbitrageOpportunity {
	if len(group) < 2 {
		return nil
	}

	selections := make([]models.ArbSelection, 0, len(group))
	totalImplied := 0.0
	for _, m := range group {
		best := m.BestOdds()
		if best == nil {
			return nil
		}
		selections = append(selections, models.ArbSelection{Selection: m.Selection, Odds: *best})
		totalImplied += best.ImpliedProb
	}

	if totalImplied >= 1.0 {
		return nil
	}

	profitPercent := (1.0/totalImplied - 1) * 100
	if profitPercent < minProfit {
		return nil
	}

	return &models.ArbitrageOpportunity{
		Sport:         group[0].Sport,
		Event:         group[0].Event,
		MarketType:    group[0].MarketType,
		Selections:    selections,
		TotalImplied:  totalImplied,
		ProfitPercent: profitPercent,
		Stakes:        splitStakes(selections, totalStake),
	}
}

// splitStakes distributes the total stake so every outcome pays the same:
//
//	stake_i = total / (decimal_i · Σ 1/decimal_j)
func splitStakes(selections []models.ArbSelection, totalStake float64) []models.ArbStake {
	totalInverse := 0.0
	for _, s := range selections {
		totalInverse += 1.0 / s.Odds.Decimal
	}

	stakes := make([]models.ArbStake, len(selections))
	for i, s := range selections {
		stakes[i] = models.ArbStake{
			Selection: s.Selection,
			Bookmaker: s.Odds.Bookmaker,
			Stake:     math.Round(totalStake/(s.Odds.Decimal*totalInverse)*100) / 100,
		}
	}
	return stakes
}

// VerifyProfit computes the net profit for every possible outcome of a stake
// plan. A correct arbitrage plan yields the same positive number everywhere.
func VerifyProfit(stakes []models.ArbStake, selections []models.ArbSelection) map[string]float64 {
	stakeBySelection := make(map[string]float64, len(stakes))
	totalStaked := 0.0
	for _, s := range stakes {
		stakeBySelection[s.Selection] = s.Stake
		totalStaked += s.Stake
	}

	profits := make(map[string]float64, len(selections))
	for _, sel := range selections {
		payout := stakeBySelection[sel.Selection] * sel.Odds.Decimal
		profits[sel.Selection] = math.Round((payout-totalStaked)*100) / 100
	}
	return profits
}
