package oddsapi

import (
	"fmt"
	"math"
	"strings"

	"github.com/yourusername/edge-finder/internal/models"
)

// mapMarketKey translates a provider market key to the internal market type.
// Prop markets all arrive as player_* keys and collapse to one type.
func mapMarketKey(key string) (models.MarketType, bool) {
	switch {
	case key == "h2h":
		return models.MarketTypeMoneyline, true
	case key == "spreads":
		return models.MarketTypeSpread, true
	case key == "totals":
		return models.MarketTypeTotal, true
	case strings.HasPrefix(key, "player_"):
		return models.MarketTypePlayerProp, true
	}
	return "", false
}

// eventsToPairs flattens provider events into paired markets. Each selection
// becomes one Market aggregating quotes across books; two-way lines are then
// paired in both directions so every side can be evaluated against its
// opposite. Selections without a clean opposite (three-way moneylines,
// one-sided quotes) pair with nil and fall back to single-sided analysis.
func eventsToPairs(events []Event) []models.MarketPair {
	var pairs []models.MarketPair
	for i := range events {
		pairs = append(pairs, eventToPairs(&events[i])...)
	}
	return pairs
}

func eventToPairs(ev *Event) []models.MarketPair {
	title := fmt.Sprintf("%s @ %s", ev.AwayTeam, ev.HomeTeam)
	commence := ev.CommenceTime

	var order []string
	markets := map[string]*models.Market{}
	lines := map[string]string{}

	for _, book := range ev.Bookmakers {
		for _, wm := range book.Markets {
			marketType, ok := mapMarketKey(wm.Key)
			if !ok {
				continue
			}
			for _, outcome := range wm.Outcomes {
				quote, err := models.NewOdds(book.Key, outcome.Price)
				if err != nil {
					continue
				}

				selKey := selectionKey(wm.Key, outcome)
				market, seen := markets[selKey]
				if !seen {
					market = &models.Market{
						Sport:        ev.SportKey,
						Event:        title,
						MarketType:   marketType,
						Selection:    outcome.Name,
						Point:        outcome.Point,
						Player:       propPlayer(marketType, outcome),
						Stat:         propStat(marketType, wm.Key),
						CommenceTime: &commence,
					}
					markets[selKey] = market
					lines[selKey] = lineKey(wm.Key, outcome)
					order = append(order, selKey)
				}
				if market.OddsByBook(book.Key) == nil {
					market.Odds = append(market.Odds, quote)
				}
			}
		}
	}

	return pairMarkets(order, markets, lines)
}

// pairMarkets groups markets by line and pairs both sides of every clean
// two-way group, preserving first-appearance order.
func pairMarkets(order []string, markets map[string]*models.Market, lines map[string]string) []models.MarketPair {
	groups := map[string][]*models.Market{}
	var groupOrder []string
	for _, selKey := range order {
		gk := lines[selKey]
		if _, seen := groups[gk]; !seen {
			groupOrder = append(groupOrder, gk)
		}
		groups[gk] = append(groups[gk], markets[selKey])
	}

	var pairs []models.MarketPair
	for _, gk := range groupOrder {
		group := groups[gk]
		if len(group) == 2 {
			a, errA := models.NewMarketPair(group[0], group[1])
			b, errB := models.NewMarketPair(group[1], group[0])
			if errA == nil && errB == nil {
				pairs = append(pairs, a, b)
				continue
			}
		}
		for _, market := range group {
			pair, err := models.NewMarketPair(market, nil)
			if err == nil {
				pairs = append(pairs, pair)
			}
		}
	}
	return pairs
}

// selectionKey uniquely identifies one priced selection within an event.
func selectionKey(wireKey string, outcome Outcome) string {
	key := wireKey + "|" + outcome.Name + "|" + outcome.Description
	if outcome.Point != nil {
		key += fmt.Sprintf("|%g", *outcome.Point)
	}
	return key
}

// lineKey matches the two sides of one line. Spread points are mirrored
// (-2.5 vs +2.5), so the point folds to its magnitude; the raw wire key keeps
// different prop stats for the same player apart.
func lineKey(wireKey string, outcome Outcome) string {
	key := wireKey + "|" + outcome.Description
	if outcome.Point != nil {
		key += fmt.Sprintf("|%g", math.Abs(*outcome.Point))
	}
	return key
}

func propPlayer(marketType models.MarketType, outcome Outcome) string {
	if marketType == models.MarketTypePlayerProp {
		return outcome.Description
	}
	return ""
}

func propStat(marketType models.MarketType, wireKey string) string {
	if marketType == models.MarketTypePlayerProp {
		return wireKey
	}
	return ""
}
