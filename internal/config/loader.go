// Package config provides configuration management for the EdgeFinder application.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Load reads and parses the configuration from file and environment variables.
// It expands environment variable placeholders in the YAML file (${VAR_NAME}).
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the configuration (${VAR} syntax)
	expanded := os.ExpandEnv(string(data))

	v := newViper()
	if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// LoadWithDefaults loads configuration with default values for optional
// fields. The config file may be absent; defaults and environment variables
// are enough to run a scan against the sample fixtures or with an API key
// from the environment.
func LoadWithDefaults(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	v := newViper()
	setDefaults(v)

	if data, err := os.ReadFile(configPath); err == nil {
		expanded := os.ExpandEnv(string(data))
		if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	// If the file doesn't exist, continue with defaults and environment variables

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("EDGE_FINDER")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "edge-finder")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout_seconds", 10)
	v.SetDefault("server.write_timeout_seconds", 10)

	v.SetDefault("odds_api.base_url", "https://api.the-odds-api.com/v4")
	v.SetDefault("odds_api.api_key", os.Getenv("ODDS_API_KEY"))
	v.SetDefault("odds_api.regions", "us")
	v.SetDefault("odds_api.bookmakers", []string{
		"pinnacle", "draftkings", "fanduel", "betmgm",
		"caesars", "pointsbetus", "bovada", "betonlineag",
	})
	v.SetDefault("odds_api.cache_ttl_seconds", 300)
	v.SetDefault("odds_api.timeout_seconds", 10)
	v.SetDefault("odds_api.max_retries", 3)
	v.SetDefault("odds_api.rate_limit_per_sec", 5.0)
	v.SetDefault("odds_api.circuit_breaker_max", 5)

	v.SetDefault("betting.bankroll", 1000.0)
	v.SetDefault("betting.kelly_fraction", 0.25)
	v.SetDefault("betting.max_bet_percent", 0.05)
	v.SetDefault("betting.max_total_exposure", 0.25)
	v.SetDefault("betting.min_ev_percent", 1.0)
	v.SetDefault("betting.min_arb_profit", 0.5)
	v.SetDefault("betting.devig_method", "weighted")
	v.SetDefault("betting.single_side_margin", 0.025)
	v.SetDefault("betting.scan_workers", 4)

	v.SetDefault("books.default_weight", 0.5)

	v.SetDefault("sports.keys", map[string]string{
		"nfl":   "americanfootball_nfl",
		"ncaaf": "americanfootball_ncaaf",
		"nba":   "basketball_nba",
		"ncaab": "basketball_ncaab",
		"mlb":   "baseball_mlb",
		"nhl":   "icehockey_nhl",
		"mls":   "soccer_usa_mls",
		"epl":   "soccer_epl",
		"ufc":   "mma_mixed_martial_arts",
	})

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}
