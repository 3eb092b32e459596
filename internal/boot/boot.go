// Package boot holds the startup sequence shared by every binary: resolve
// the Gemini API key, optionally validate it, and assemble the Gateway.
//
// A missing or rejected key is logged, never fatal. The gateway then fails
// every generation and scenes show their retryable error message.
package boot

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fpang/birthday-surprise/internal/auth"
	"github.com/fpang/birthday-surprise/internal/config"
	"github.com/fpang/birthday-surprise/internal/gateway"
	"github.com/fpang/birthday-surprise/internal/logging"
	"github.com/fpang/birthday-surprise/internal/retry"
)

// Options tune the startup sequence per binary.
type Options struct {
	// Lambda skips the local GPG credentials file.
	Lambda bool
	// Validate overrides cfg.ValidateKey when set.
	Validate *bool
}

// Result is what Gateway assembled, for startup logging.
type Result struct {
	Gateway   *gateway.Gateway
	HasKey    bool
	Validated bool
}

// Gateway resolves the API key and builds the gateway described by cfg.
// It only returns an error for configuration that can never work, such as
// an unknown backend.
func Gateway(ctx context.Context, cfg *config.Config, opts Options) (*Result, error) {
	src := auth.Sources{SSMParam: cfg.SSMParam, SkipGPG: opts.Lambda}
	if cfg.SSMParam != "" {
		client, err := auth.NewSSMClient(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("SSM unavailable, skipping Parameter Store lookup")
		} else {
			src.SSM = client
		}
	}

	apiKey, err := auth.GetAPIKey(ctx, src)
	if err != nil {
		log.Warn().Err(err).Msg("Continuing without an API key")
	}

	res := &Result{HasKey: apiKey != ""}

	validate := cfg.ValidateKey
	if opts.Validate != nil {
		validate = *opts.Validate
	}
	if res.HasKey && validate {
		res.Validated = validateKey(ctx, apiKey)
	}

	gen, err := gateway.NewBackend(ctx, cfg.BackendConfig(apiKey))
	if err != nil {
		return nil, err
	}
	res.Gateway = gateway.New(gen,
		gateway.WithRetry(retry.WithPolicy(cfg.RetryPolicy())),
		gateway.WithCast(cfg.Cast()),
	)
	return res, nil
}

func validateKey(ctx context.Context, apiKey string) bool {
	client, err := gateway.NewGeminiClient(ctx, apiKey)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to create Gemini client for validation")
		return false
	}
	if err := auth.ValidateAPIKey(ctx, client.Models); err != nil {
		log.Warn().Err(err).Msg("API key validation failed; generations will likely fail")
		return false
	}
	return true
}

// StartupLog returns a startup logger pre-filled with cfg and res.
func StartupLog(name string, initStart time.Time, cfg *config.Config, res *Result) *logging.StartupLogger {
	s := logging.NewStartupLogger(name).
		InitDuration(time.Since(initStart)).
		Config("model", cfg.Model).
		Config("backend", cfg.Backend).
		Config("sessionTTL", cfg.SessionTTL.String()).
		Feature("apiKey", res.HasKey).
		Feature("validated", res.Validated)
	if cfg.SSMParam != "" {
		s = s.SSMParam("geminiApiKey", cfg.SSMParam)
	}
	return s
}
