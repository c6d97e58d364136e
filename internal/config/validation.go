// Package config provides configuration management for the EdgeFinder application.
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/yourusername/edge-finder/internal/devig"
)

// CustomValidator wraps the validator with custom validation rules
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new validator with custom validation functions
func NewValidator() *CustomValidator {
	v := validator.New()

	v.RegisterValidation("environment", validateEnvironment)
	v.RegisterValidation("loglevel", validateLogLevel)
	v.RegisterValidation("devigmethod", validateDevigMethod)

	return &CustomValidator{validator: v}
}

// Validate validates the entire configuration
func Validate(cfg *Config) error {
	cv := NewValidator()
	return cv.Validate(cfg)
}

// Validate validates the configuration using registered validation rules
func (cv *CustomValidator) Validate(cfg *Config) error {
	err := cv.validator.Struct(cfg)
	if err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			return formatValidationErrors(validationErrors)
		}
		return fmt.Errorf("validation failed: %w", err)
	}

	return validateCrossField(cfg)
}

// validateEnvironment validates the environment field
func validateEnvironment(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "development", "staging", "production":
		return true
	default:
		return false
	}
}

// validateLogLevel validates the log level field
func validateLogLevel(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

// validateDevigMethod checks the configured default against the engine's
// closed method set.
func validateDevigMethod(fl validator.FieldLevel) bool {
	return devig.ValidMethod(devig.Method(fl.Field().String()))
}

func validateCrossField(cfg *Config) error {
	if cfg.Betting.MaxBetPercent > cfg.Betting.MaxTotalExposure {
		return fmt.Errorf("betting.max_bet_percent (%v) cannot exceed betting.max_total_exposure (%v)",
			cfg.Betting.MaxBetPercent, cfg.Betting.MaxTotalExposure)
	}
	for book, w := range cfg.Books.Weights {
		if w <= 0 || w > 1 {
			return fmt.Errorf("books.weights[%s] = %v, must be in (0, 1]", book, w)
		}
	}
	if cfg.LedgerEnabled() {
		if cfg.Database.Name == "" || cfg.Database.User == "" {
			return fmt.Errorf("database.name and database.user are required when database.host is set")
		}
	}
	return nil
}

func formatValidationErrors(errs validator.ValidationErrors) error {
	var messages []string
	for _, e := range errs {
		messages = append(messages, fmt.Sprintf("%s failed on %q", e.Namespace(), e.Tag()))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(messages, "; "))
}
