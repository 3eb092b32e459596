package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
)

// Backend names.
const (
	BackendGenAI = "genai"
	BackendREST  = "rest"
)

// ErrNoAPIKey is returned by every call of a backend built without a key.
var ErrNoAPIKey = errors.New("permission denied: no Gemini API key configured")

// BackendConfig selects and configures a Generator.
type BackendConfig struct {
	Kind        string
	APIKey      string
	Model       string
	RESTBaseURL string
}

// NewBackend builds the configured Generator. A missing API key is not an
// error here: the returned Generator fails every call, so scenes report the
// usual retryable failure instead of the process refusing to start.
func NewBackend(ctx context.Context, cfg BackendConfig) (Generator, error) {
	if cfg.APIKey == "" {
		log.Warn().Msg("No Gemini API key; every generation will fail")
		return GeneratorFunc(func(context.Context, Request) (*Response, error) {
			return nil, ErrNoAPIKey
		}), nil
	}

	switch cfg.Kind {
	case BackendREST:
		return NewRESTBackend(cfg.APIKey, cfg.Model, cfg.RESTBaseURL), nil
	case BackendGenAI, "":
		client, err := NewGeminiClient(ctx, cfg.APIKey)
		if err != nil {
			return nil, err
		}
		return NewGenAIBackend(client, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unknown gateway backend %q", cfg.Kind)
	}
}
