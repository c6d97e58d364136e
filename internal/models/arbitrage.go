package models

// ArbSelection is one leg of an arbitrage: the outcome name and the best
// quote found for it across all books.
type ArbSelection struct {
	Selection string `json:"selection"`
	Odds      Odds   `json:"odds"`
}

// ArbStake is the amount to place on one leg at one book.
type ArbStake struct {
	Selection string  `json:"selection"`
	Bookmaker string  `json:"bookmaker"`
	Stake     float64 `json:"stake"`
}

// ArbitrageOpportunity is a set of quotes across mutually exclusive outcomes
// whose implied probabilities sum below one. Immutable once computed.
type ArbitrageOpportunity struct {
	Sport         string         `json:"sport"`
	Event         string         `json:"event"`
	MarketType    MarketType     `json:"market_type"`
	Selections    []ArbSelection `json:"selections"`
	TotalImplied  float64        `json:"total_implied"`
	ProfitPercent float64        `json:"profit_percent"`
	Stakes        []ArbStake     `json:"stakes"`
}

// Middle is a pair of spread bets whose lines do not overlap. Unlike an
// arbitrage it only pays off in a window of outcomes, so no guaranteed-profit
// stake plan is attached.
type Middle struct {
	Event      string  `json:"event"`
	SideA      string  `json:"side_a"`
	BookA      string  `json:"book_a"`
	OddsA      int     `json:"odds_a"`
	SideB      string  `json:"side_b"`
	BookB      string  `json:"book_b"`
	OddsB      int     `json:"odds_b"`
	MiddleSize float64 `json:"middle_size"`
}
