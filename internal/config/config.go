// Package config loads process configuration from the environment.
//
// A .env file in the working directory is loaded first (existing variables
// win), then the environment is parsed into Config. Command-line flags
// override individual fields after Load returns.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/fpang/birthday-surprise/internal/assets"
	"github.com/fpang/birthday-surprise/internal/gateway"
	"github.com/fpang/birthday-surprise/internal/retry"
)

// Backend names accepted by GATEWAY_BACKEND.
const (
	BackendGenAI = gateway.BackendGenAI
	BackendREST  = gateway.BackendREST
)

// Config is the full process configuration.
type Config struct {
	LogLevel string `env:"BIRTHDAY_LOG_LEVEL" envDefault:"info"`
	Port     int    `env:"PORT" envDefault:"8080"`

	Model       string `env:"GEMINI_IMAGE_MODEL" envDefault:"gemini-2.5-flash-image"`
	Backend     string `env:"GATEWAY_BACKEND" envDefault:"genai"`
	RESTBaseURL string `env:"GEMINI_REST_BASE_URL"`
	SSMParam    string `env:"SSM_API_KEY_PARAM"`
	ValidateKey bool   `env:"VALIDATE_API_KEY" envDefault:"true"`

	RetryAttempts     int           `env:"GATEWAY_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInitialDelay time.Duration `env:"GATEWAY_RETRY_INITIAL_DELAY" envDefault:"1s"`
	RetryMultiplier   float64       `env:"GATEWAY_RETRY_MULTIPLIER" envDefault:"2"`

	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"2h"`
	SecretCode string        `env:"SECRET_CODE" envDefault:"bubu@1819"`

	Honoree string `env:"CAST_HONOREE"`
	Partner string `env:"CAST_PARTNER"`
	Friend  string `env:"CAST_FRIEND"`
}

// Load reads .env files (the working directory's .env when none are given)
// and parses the environment.
func Load(dotenv ...string) (*Config, error) {
	// Missing .env files are normal outside development.
	_ = godotenv.Load(dotenv...)

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field ranges.
func (c *Config) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT out of range: %d", c.Port))
	}
	if c.Backend != BackendGenAI && c.Backend != BackendREST {
		errs = append(errs, fmt.Errorf("GATEWAY_BACKEND must be %q or %q, got %q", BackendGenAI, BackendREST, c.Backend))
	}
	if c.RetryAttempts <= 0 {
		errs = append(errs, fmt.Errorf("GATEWAY_RETRY_ATTEMPTS must be positive, got %d", c.RetryAttempts))
	}
	if c.RetryMultiplier < 1 {
		errs = append(errs, fmt.Errorf("GATEWAY_RETRY_MULTIPLIER must be at least 1, got %v", c.RetryMultiplier))
	}
	if c.SecretCode == "" {
		errs = append(errs, errors.New("SECRET_CODE must not be empty"))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL))
	}
	return errors.Join(errs...)
}

// RetryPolicy is the per-variant retry policy.
func (c *Config) RetryPolicy() retry.Policy {
	return retry.Policy{
		Attempts:     c.RetryAttempts,
		InitialDelay: c.RetryInitialDelay,
		Multiplier:   c.RetryMultiplier,
	}
}

// BackendConfig returns the gateway backend settings for apiKey.
func (c *Config) BackendConfig(apiKey string) gateway.BackendConfig {
	return gateway.BackendConfig{
		Kind:        c.Backend,
		APIKey:      apiKey,
		Model:       c.Model,
		RESTBaseURL: c.RESTBaseURL,
	}
}

// Cast returns the configured names; unset fields fall back to the
// directive defaults.
func (c *Config) Cast() assets.Cast {
	cast := assets.Default().Cast()
	if c.Honoree != "" {
		cast.Honoree = c.Honoree
	}
	if c.Partner != "" {
		cast.Partner = c.Partner
	}
	if c.Friend != "" {
		cast.Friend = c.Friend
	}
	return cast
}
