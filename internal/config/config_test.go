// Package config provides configuration management for the EdgeFinder application.
package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validConfigPath = "testdata/valid_config.yaml"

func TestLoadConfigSuccess(t *testing.T) {
	cfg, err := Load(validConfigPath)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "edge-finder", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "weighted", cfg.Betting.DevigMethod)
	assert.InDelta(t, 0.025, cfg.Betting.SingleSideMargin, 1e-9)
	assert.Equal(t, 1.0, cfg.Books.Weights["pinnacle"])
}

func TestLoadConfigFileNotFound(t *testing.T) {
	_, err := Load("testdata/nonexistent_config.yaml")
	require.Error(t, err)
}

func TestLoadConfigExpandsEnvPlaceholders(t *testing.T) {
	os.Setenv("TEST_DB_PASSWORD", "expanded_secret_value")
	defer os.Unsetenv("TEST_DB_PASSWORD")

	cfg, err := Load(validConfigPath)
	require.NoError(t, err)
	assert.Equal(t, "expanded_secret_value", cfg.Database.Password)
}

func TestLoadWithDefaultsWithoutFile(t *testing.T) {
	cfg, err := LoadWithDefaults("testdata/nonexistent_config.yaml")
	require.NoError(t, err)

	assert.Equal(t, "edge-finder", cfg.App.Name)
	assert.Equal(t, "weighted", cfg.Betting.DevigMethod)
	assert.Equal(t, 1000.0, cfg.Betting.Bankroll)
	assert.False(t, cfg.LedgerEnabled())
	require.NoError(t, Validate(cfg))
}

func TestValidateSuccess(t *testing.T) {
	cfg, err := Load(validConfigPath)
	require.NoError(t, err)
	require.NoError(t, Validate(cfg))
}

func TestValidateInvalidEnvironment(t *testing.T) {
	cfg, err := Load(validConfigPath)
	require.NoError(t, err)

	cfg.App.Environment = "invalid"
	assert.Error(t, Validate(cfg))
}

func TestValidateInvalidDevigMethod(t *testing.T) {
	cfg, err := Load(validConfigPath)
	require.NoError(t, err)

	cfg.Betting.DevigMethod = "bogus"
	assert.Error(t, Validate(cfg))
}

func TestValidateCrossFieldExposure(t *testing.T) {
	cfg, err := Load(validConfigPath)
	require.NoError(t, err)

	cfg.Betting.MaxBetPercent = 0.5
	cfg.Betting.MaxTotalExposure = 0.25
	assert.Error(t, Validate(cfg))
}

func TestValidateBookWeightRange(t *testing.T) {
	cfg, err := Load(validConfigPath)
	require.NoError(t, err)

	cfg.Books.Weights["overfit"] = 1.5
	assert.Error(t, Validate(cfg))
}

func TestSportKeyFallsThrough(t *testing.T) {
	cfg, err := Load(validConfigPath)
	require.NoError(t, err)

	assert.Equal(t, "americanfootball_nfl", cfg.SportKey("nfl"))
	assert.Equal(t, "basketball_wnba", cfg.SportKey("basketball_wnba"))
}

func TestGetDatabaseDSN(t *testing.T) {
	cfg, err := Load(validConfigPath)
	require.NoError(t, err)

	cfg.Database.Password = "pw"
	assert.Equal(t,
		"postgres://edgefinder:pw@localhost:5432/edgefinder?sslmode=disable",
		cfg.GetDatabaseDSN())
}
