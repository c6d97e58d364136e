package models

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// MarketType identifies the kind of line a market quotes.
type MarketType string

const (
	MarketTypeMoneyline  MarketType = "h2h"
	MarketTypeSpread     MarketType = "spreads"
	MarketTypeTotal      MarketType = "totals"
	MarketTypePlayerProp MarketType = "player_props"
)

// Market is one outcome of one event, quoted by a set of bookmakers.
// Every entry in Odds quotes the same outcome; bookmakers are unique
// within a single market.
type Market struct {
	Sport        string     `json:"sport"`
	Event        string     `json:"event"`
	MarketType   MarketType `json:"market_type"`
	Selection    string     `json:"selection"`
	Point        *float64   `json:"point,omitempty"`
	Player       string     `json:"player,omitempty"`
	Stat         string     `json:"stat,omitempty"`
	Odds         []Odds     `json:"odds"`
	CommenceTime *time.Time `json:"commence_time,omitempty"`
}

// BestOdds returns the quote with the highest decimal price, or nil when the
// market carries no quotes. Ties keep the first quote encountered so repeated
// scans stay deterministic.
func (m *Market) BestOdds() *Odds {
	if len(m.Odds) == 0 {
		return nil
	}
	best := &m.Odds[0]
	for i := 1; i < len(m.Odds); i++ {
		if m.Odds[i].Decimal > best.Decimal {
			best = &m.Odds[i]
		}
	}
	return best
}

// OddsByBook returns the quote from a specific bookmaker, matched
// case-insensitively, or nil when the book does not quote this market.
func (m *Market) OddsByBook(bookmaker string) *Odds {
	for i := range m.Odds {
		if strings.EqualFold(m.Odds[i].Bookmaker, bookmaker) {
			return &m.Odds[i]
		}
	}
	return nil
}

// GroupKey identifies the outcome group a market belongs to: all markets
// sharing a key quote mutually exclusive outcomes of the same line. Spread
// sides carry mirrored points, so the point folds to its magnitude.
func (m *Market) GroupKey() string {
	key := fmt.Sprintf("%s|%s", m.Event, m.MarketType)
	if m.Player != "" {
		key += "|" + m.Player + "|" + m.Stat
	}
	if m.Point != nil {
		key += fmt.Sprintf("|%g", math.Abs(*m.Point))
	}
	return key
}

// MarketPair couples a market with the market for the complementary outcome
// of the same line. Opposing may be nil, in which case fair-probability
// estimates degrade to a single-sided approximation.
type MarketPair struct {
	Market   *Market
	Opposing *Market
}

// NewMarketPair validates that both sides describe the same line before
// pairing them. A nil opposing side is always accepted. Spread sides carry
// mirrored points (-2.5 vs +2.5), so points are compared by magnitude.
func NewMarketPair(market, opposing *Market) (MarketPair, error) {
	if market == nil {
		return MarketPair{}, fmt.Errorf("market pair: %w", ErrNilMarket)
	}
	if opposing != nil && !sameLine(market, opposing) {
		return MarketPair{}, fmt.Errorf("market pair %q vs %q: %w",
			market.GroupKey(), opposing.GroupKey(), ErrMismatchedPair)
	}
	return MarketPair{Market: market, Opposing: opposing}, nil
}

func sameLine(a, b *Market) bool {
	if a.Event != b.Event || a.MarketType != b.MarketType {
		return false
	}
	if a.Player != b.Player || a.Stat != b.Stat {
		return false
	}
	if (a.Point == nil) != (b.Point == nil) {
		return false
	}
	if a.Point != nil && math.Abs(*a.Point) != math.Abs(*b.Point) {
		return false
	}
	return true
}
