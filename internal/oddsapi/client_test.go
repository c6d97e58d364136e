package oddsapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/edge-finder/internal/config"
	"github.com/yourusername/edge-finder/internal/models"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func testClientConfig(baseURL string) config.OddsAPIConfig {
	return config.OddsAPIConfig{
		BaseURL:           baseURL,
		APIKey:            "test-key",
		Bookmakers:        []string{"pinnacle", "draftkings"},
		CacheTTLSeconds:   300,
		TimeoutSeconds:    5,
		MaxRetries:        0,
		RateLimitPerSec:   100,
		CircuitBreakerMax: 5,
	}
}

func fixtureServer(t *testing.T, fixture string, hits *int) *httptest.Server {
	t.Helper()
	body, err := os.ReadFile(fixture)
	require.NoError(t, err)

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			*hits++
		}
		assert.Equal(t, "test-key", r.URL.Query().Get("apiKey"))
		assert.Equal(t, "american", r.URL.Query().Get("oddsFormat"))
		w.Header().Set("x-requests-remaining", "487")
		w.Header().Set("Content-Type", "application/json")
		w.Write(body)
	}))
}

func TestOddsParsesFixture(t *testing.T) {
	srv := fixtureServer(t, "testdata/nfl_odds.json", nil)
	defer srv.Close()

	client := NewClient(testClientConfig(srv.URL), testLogger())
	defer client.Close()

	pairs, err := client.Odds(context.Background(), "americanfootball_nfl", nil)
	require.NoError(t, err)

	// h2h, spreads and totals, each two-sided and paired in both directions
	require.Len(t, pairs, 6)

	h2h := pairs[0]
	require.NotNil(t, h2h.Opposing)
	assert.Equal(t, "Buffalo Bills @ Kansas City Chiefs", h2h.Market.Event)
	assert.Equal(t, models.MarketTypeMoneyline, h2h.Market.MarketType)
	assert.Equal(t, "Kansas City Chiefs", h2h.Market.Selection)
	assert.Equal(t, "Buffalo Bills", h2h.Opposing.Selection)
	require.Len(t, h2h.Market.Odds, 2)
	assert.Equal(t, -130, h2h.Market.OddsByBook("pinnacle").American)
	assert.Equal(t, -135, h2h.Market.OddsByBook("draftkings").American)

	// mirrored spread points still pair
	var spreadPair *models.MarketPair
	for i := range pairs {
		if pairs[i].Market.MarketType == models.MarketTypeSpread {
			spreadPair = &pairs[i]
			break
		}
	}
	require.NotNil(t, spreadPair)
	require.NotNil(t, spreadPair.Opposing)
	assert.InDelta(t, -2.5, *spreadPair.Market.Point, 1e-9)
	assert.InDelta(t, 2.5, *spreadPair.Opposing.Point, 1e-9)
}

func TestOddsServesFromCache(t *testing.T) {
	hits := 0
	srv := fixtureServer(t, "testdata/nfl_odds.json", &hits)
	defer srv.Close()

	client := NewClient(testClientConfig(srv.URL), testLogger())
	defer client.Close()

	_, err := client.Odds(context.Background(), "americanfootball_nfl", nil)
	require.NoError(t, err)
	_, err = client.Odds(context.Background(), "americanfootball_nfl", nil)
	require.NoError(t, err)

	assert.Equal(t, 1, hits)
}

func TestOddsProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"invalid api key"}`))
	}))
	defer srv.Close()

	client := NewClient(testClientConfig(srv.URL), testLogger())
	defer client.Close()

	_, err := client.Odds(context.Background(), "americanfootball_nfl", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestSports(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"key":"americanfootball_nfl","group":"American Football","title":"NFL","active":true}]`))
	}))
	defer srv.Close()

	client := NewClient(testClientConfig(srv.URL), testLogger())
	defer client.Close()

	sports, err := client.Sports(context.Background())
	require.NoError(t, err)
	require.Len(t, sports, 1)
	assert.Equal(t, "americanfootball_nfl", sports[0].Key)
	assert.True(t, sports[0].Active)
}

func TestEventToPairsThreeWayGetsNoOpposing(t *testing.T) {
	ev := Event{
		SportKey:     "soccer_epl",
		CommenceTime: time.Now(),
		HomeTeam:     "Arsenal",
		AwayTeam:     "Chelsea",
		Bookmakers: []Bookmaker{{
			Key: "pinnacle",
			Markets: []WireMarket{{
				Key: "h2h",
				Outcomes: []Outcome{
					{Name: "Arsenal", Price: 150},
					{Name: "Chelsea", Price: 210},
					{Name: "Draw", Price: 240},
				},
			}},
		}},
	}

	pairs := eventsToPairs([]Event{ev})
	require.Len(t, pairs, 3)
	for _, pair := range pairs {
		assert.Nil(t, pair.Opposing)
	}
}

func TestEventToPairsSeparatesPropStats(t *testing.T) {
	point := 20.5
	ev := Event{
		SportKey:     "basketball_nba",
		CommenceTime: time.Now(),
		HomeTeam:     "Lakers",
		AwayTeam:     "Celtics",
		Bookmakers: []Bookmaker{{
			Key: "draftkings",
			Markets: []WireMarket{
				{Key: "player_points", Outcomes: []Outcome{
					{Name: "Over", Description: "Jayson Tatum", Price: -110, Point: &point},
					{Name: "Under", Description: "Jayson Tatum", Price: -110, Point: &point},
				}},
				{Key: "player_rebounds", Outcomes: []Outcome{
					{Name: "Over", Description: "Jayson Tatum", Price: -115, Point: &point},
					{Name: "Under", Description: "Jayson Tatum", Price: -105, Point: &point},
				}},
			},
		}},
	}

	pairs := eventsToPairs([]Event{ev})
	// two stats, each a two-way pair in both directions
	require.Len(t, pairs, 4)
	for _, pair := range pairs {
		require.NotNil(t, pair.Opposing)
		assert.Equal(t, models.MarketTypePlayerProp, pair.Market.MarketType)
		assert.Equal(t, "Jayson Tatum", pair.Market.Player)
		assert.NotEqual(t, pair.Market.Selection, pair.Opposing.Selection)
	}
}

func TestEventToPairsSkipsZeroPriceAndDuplicateBooks(t *testing.T) {
	ev := Event{
		SportKey:     "americanfootball_nfl",
		CommenceTime: time.Now(),
		HomeTeam:     "Chiefs",
		AwayTeam:     "Bills",
		Bookmakers: []Bookmaker{
			{Key: "pinnacle", Markets: []WireMarket{{Key: "h2h", Outcomes: []Outcome{
				{Name: "Chiefs", Price: -130},
				{Name: "Bills", Price: 0},
			}}}},
			{Key: "pinnacle", Markets: []WireMarket{{Key: "h2h", Outcomes: []Outcome{
				{Name: "Chiefs", Price: -128},
			}}}},
		},
	}

	pairs := eventsToPairs([]Event{ev})
	require.Len(t, pairs, 1)
	require.Len(t, pairs[0].Market.Odds, 1)
	assert.Equal(t, -130, pairs[0].Market.Odds[0].American)
}
