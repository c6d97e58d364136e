// Package config provides configuration management for the EdgeFinder application.
package config

import "fmt"

// Config represents the complete application configuration
type Config struct {
	App      AppConfig      `mapstructure:"app" validate:"required"`
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database"`
	OddsAPI  OddsAPIConfig  `mapstructure:"odds_api" validate:"required"`
	Betting  BettingConfig  `mapstructure:"betting" validate:"required"`
	Books    BooksConfig    `mapstructure:"books"`
	Sports   SportsConfig   `mapstructure:"sports"`
	Metrics  MetricsConfig  `mapstructure:"metrics" validate:"required"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// ServerConfig represents the HTTP API server configuration
type ServerConfig struct {
	Port            int      `mapstructure:"port" validate:"required,min=1,max=65535"`
	ReadTimeoutSec  int      `mapstructure:"read_timeout_seconds" validate:"required,gt=0"`
	WriteTimeoutSec int      `mapstructure:"write_timeout_seconds" validate:"required,gt=0"`
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	RefreshCron     string   `mapstructure:"refresh_cron"`
}

// DatabaseConfig represents the bet-ledger database. The ledger is optional:
// with no host configured the CLI and API run in scan-only mode.
type DatabaseConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Name           string `mapstructure:"name"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	SSLMode        string `mapstructure:"ssl_mode" validate:"omitempty,oneof=disable require verify-full"`
	MaxConnections int    `mapstructure:"max_connections" validate:"omitempty,gt=0"`
}

// OddsAPIConfig represents The Odds API client configuration
type OddsAPIConfig struct {
	BaseURL           string   `mapstructure:"base_url" validate:"required,url"`
	APIKey            string   `mapstructure:"api_key"`
	Regions           string   `mapstructure:"regions"`
	Bookmakers        []string `mapstructure:"bookmakers" validate:"required,min=1"`
	CacheTTLSeconds   int      `mapstructure:"cache_ttl_seconds" validate:"required,gt=0"`
	TimeoutSeconds    int      `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	MaxRetries        int      `mapstructure:"max_retries" validate:"gte=0"`
	RateLimitPerSec   float64  `mapstructure:"rate_limit_per_sec" validate:"required,gt=0"`
	CircuitBreakerMax int      `mapstructure:"circuit_breaker_max" validate:"required,gt=0"`
}

// BettingConfig represents bankroll and sizing configuration
type BettingConfig struct {
	Bankroll         float64 `mapstructure:"bankroll" validate:"required,gt=0"`
	KellyFraction    float64 `mapstructure:"kelly_fraction" validate:"required,gt=0,lte=1"`
	MaxBetPercent    float64 `mapstructure:"max_bet_percent" validate:"required,gt=0,lte=1"`
	MaxTotalExposure float64 `mapstructure:"max_total_exposure" validate:"required,gt=0,lte=1"`
	MinEVPercent     float64 `mapstructure:"min_ev_percent" validate:"gte=0"`
	MinArbProfit     float64 `mapstructure:"min_arb_profit" validate:"gte=0"`
	DevigMethod      string  `mapstructure:"devig_method" validate:"required,devigmethod"`
	SingleSideMargin float64 `mapstructure:"single_side_margin" validate:"gt=0,lt=1"`
	ScanWorkers      int     `mapstructure:"scan_workers" validate:"required,gt=0"`
}

// BooksConfig carries the bookmaker sharpness table. Loaded once at startup
// and treated as immutable afterwards.
type BooksConfig struct {
	Weights       map[string]float64 `mapstructure:"weights"`
	DefaultWeight float64            `mapstructure:"default_weight" validate:"omitempty,gt=0,lte=1"`
}

// SportsConfig maps friendly sport names to provider sport keys
type SportsConfig struct {
	Keys map[string]string `mapstructure:"keys"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path" validate:"required"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// LedgerEnabled reports whether a bet-ledger database is configured.
func (c *Config) LedgerEnabled() bool {
	return c.Database.Host != ""
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// SportKey resolves a friendly sport name ("nfl") to the provider key
// ("americanfootball_nfl"). Unknown names pass through unchanged so callers
// can use raw provider keys directly.
func (c *Config) SportKey(sport string) string {
	if key, ok := c.Sports.Keys[sport]; ok {
		return key
	}
	return sport
}
