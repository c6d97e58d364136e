package arbitrage

import (
	"fmt"
	"sort"

	"github.com/yourusername/edge-finder/internal/models"
)

// DefaultMinGap is the smallest line gap considered a middle worth reporting.
const DefaultMinGap = 0.5

// FindMiddles scans spread markets for pairs of opposite sides whose lines
// leave a window where both bets win. A middle is a probabilistic edge, not
// a guaranteed one, so no stake plan is attached. Sorted by gap descending.
func FindMiddles(spreadMarkets []*models.Market, minGap float64) []*models.Middle {
	var middles []*models.Middle

	byEvent := make(map[string][]*models.Market)
	var eventOrder []string
	for _, m := range spreadMarkets {
		if m.Point == nil {
			continue
		}
		if _, ok := byEvent[m.Event]; !ok {
			eventOrder = append(eventOrder, m.Event)
		}
		byEvent[m.Event] = append(byEvent[m.Event], m)
	}

	for _, event := range eventOrder {
		group := byEvent[event]
		for i, a := range group {
			for _, b := range group[i+1:] {
				if mid := checkMiddle(a, b, minGap); mid != nil {
					middles = append(middles, mid)
				}
			}
		}
	}

	sort.SliceStable(middles, func(i, j int) bool {
		return middles[i].MiddleSize > middles[j].MiddleSize
	})
	return middles
}

// checkMiddle looks for a favorite/underdog pairing whose lines do not
// overlap, e.g. -2.5 at one book against +3.5 at another.
func checkMiddle(a, b *models.Market, minGap float64) *models.Middle {
	if a.Selection == b.Selection {
		return nil
	}

	var middleSize float64
	switch {
	case *a.Point < 0 && *b.Point > 0:
		middleSize = *b.Point + *a.Point
	case *a.Point > 0 && *b.Point < 0:
		middleSize = *a.Point + *b.Point
	default:
		return nil
	}
	if middleSize < minGap {
		return nil
	}

	bestA, bestB := a.BestOdds(), b.BestOdds()
	if bestA == nil || bestB == nil {
		return nil
	}

	return &models.Middle{
		Event:      a.Event,
		SideA:      fmt.Sprintf("%s %+.1f", a.Selection, *a.Point),
		BookA:      bestA.Bookmaker,
		OddsA:      bestA.American,
		SideB:      fmt.Sprintf("%s %+.1f", b.Selection, *b.Point),
		BookB:      bestB.Bookmaker,
		OddsB:      bestB.American,
		MiddleSize: middleSize,
	}
}
