// Package oddsapi is the client for The Odds API v4: rate-limited fetching,
// snapshot caching, and translation of provider events into paired markets.
package oddsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/edge-finder/internal/config"
	"github.com/yourusername/edge-finder/internal/metrics"
	"github.com/yourusername/edge-finder/internal/models"
)

// DefaultMarkets are the market keys requested when the caller does not name any.
var DefaultMarkets = []string{"h2h", "spreads", "totals"}

// Client fetches odds from The Odds API. Responses are cached for the
// configured TTL so repeated scans within a window spend no provider quota.
type Client struct {
	cfg   config.OddsAPIConfig
	http  *RateLimitedHTTPClient
	cache *gocache.Cache
	log   *logrus.Logger
}

// NewClient creates a provider client from configuration.
func NewClient(cfg config.OddsAPIConfig, log *logrus.Logger) *Client {
	httpCfg := DefaultHTTPClientConfig()
	httpCfg.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	httpCfg.MaxRetries = cfg.MaxRetries
	httpCfg.RateLimit = cfg.RateLimitPerSec
	httpCfg.CircuitBreakerMax = cfg.CircuitBreakerMax

	ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second

	return &Client{
		cfg:   cfg,
		http:  NewRateLimitedHTTPClient(httpCfg, log),
		cache: gocache.New(ttl, 2*ttl),
		log:   log,
	}
}

// Sports lists the sports the provider currently covers.
func (c *Client) Sports(ctx context.Context) ([]Sport, error) {
	const cacheKey = "sports"
	if cached, ok := c.cache.Get(cacheKey); ok {
		metrics.ProviderCacheHitsTotal.Inc()
		return cached.([]Sport), nil
	}

	endpoint := fmt.Sprintf("%s/sports?apiKey=%s", c.cfg.BaseURL, url.QueryEscape(c.cfg.APIKey))
	var sports []Sport
	if err := c.getJSON(ctx, endpoint, &sports); err != nil {
		return nil, err
	}

	c.cache.SetDefault(cacheKey, sports)
	return sports, nil
}

// Odds fetches current odds for one sport and returns them as paired markets.
// marketKeys defaults to h2h, spreads and totals when empty.
func (c *Client) Odds(ctx context.Context, sportKey string, marketKeys []string) ([]models.MarketPair, error) {
	if len(marketKeys) == 0 {
		marketKeys = DefaultMarkets
	}

	cacheKey := "odds|" + sportKey + "|" + strings.Join(marketKeys, ",")
	if cached, ok := c.cache.Get(cacheKey); ok {
		metrics.ProviderCacheHitsTotal.Inc()
		return cached.([]models.MarketPair), nil
	}

	events, err := c.fetchEvents(ctx, sportKey, marketKeys)
	if err != nil {
		return nil, err
	}

	pairs := eventsToPairs(events)
	c.cache.SetDefault(cacheKey, pairs)

	c.log.WithFields(logrus.Fields{
		"sport":  sportKey,
		"events": len(events),
		"pairs":  len(pairs),
	}).Debug("Fetched odds snapshot")

	return pairs, nil
}

func (c *Client) fetchEvents(ctx context.Context, sportKey string, marketKeys []string) ([]Event, error) {
	params := url.Values{}
	params.Set("apiKey", c.cfg.APIKey)
	params.Set("markets", strings.Join(marketKeys, ","))
	params.Set("oddsFormat", "american")
	if len(c.cfg.Bookmakers) > 0 {
		params.Set("bookmakers", strings.Join(c.cfg.Bookmakers, ","))
	} else if c.cfg.Regions != "" {
		params.Set("regions", c.cfg.Regions)
	}

	endpoint := fmt.Sprintf("%s/sports/%s/odds?%s", c.cfg.BaseURL, url.PathEscape(sportKey), params.Encode())

	var events []Event
	if err := c.getJSON(ctx, endpoint, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// getJSON performs an instrumented GET and decodes the response body. The
// provider reports remaining quota on every response; it is exported as a
// gauge so quota burn is visible before it runs out.
func (c *Client) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	start := time.Now()
	resp, err := c.http.Get(ctx, endpoint)
	if err != nil {
		metrics.RecordProviderRequest("error", time.Since(start).Seconds())
		return fmt.Errorf("provider request failed: %w", err)
	}
	defer resp.Body.Close()

	c.recordQuota(resp)

	if resp.StatusCode != http.StatusOK {
		metrics.RecordProviderRequest("error", time.Since(start).Seconds())
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("provider returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		metrics.RecordProviderRequest("error", time.Since(start).Seconds())
		return fmt.Errorf("failed to decode provider response: %w", err)
	}

	metrics.RecordProviderRequest("success", time.Since(start).Seconds())
	return nil
}

func (c *Client) recordQuota(resp *http.Response) {
	remaining := resp.Header.Get("x-requests-remaining")
	if remaining == "" {
		return
	}
	if v, err := strconv.ParseFloat(remaining, 64); err == nil {
		metrics.ProviderRequestsRemaining.Set(v)
	}
}

// Close releases the underlying HTTP client resources.
func (c *Client) Close() error {
	return c.http.Close()
}
