package boot

import (
	"context"
	"errors"
	"io"
	"os"
	"testing"
	"time"

	"github.com/fpang/birthday-surprise/internal/config"
	"github.com/fpang/birthday-surprise/internal/gateway"
	"github.com/fpang/birthday-surprise/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func testConfig() *config.Config {
	return &config.Config{
		Port:              8080,
		Model:             gateway.DefaultModelName,
		Backend:           config.BackendREST,
		RetryAttempts:     1,
		RetryInitialDelay: time.Millisecond,
		RetryMultiplier:   2,
		SessionTTL:        time.Hour,
		SecretCode:        "abc",
		Honoree:           "Asha",
	}
}

func TestGateway_NoKeyStillBoots(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	res, err := Gateway(context.Background(), testConfig(), Options{Lambda: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.HasKey || res.Validated {
		t.Errorf("expected no key, got %+v", res)
	}
	if res.Gateway.Cast().Honoree != "Asha" {
		t.Errorf("expected configured cast, got %+v", res.Gateway.Cast())
	}

	_, err = res.Gateway.GenerateCharacter(context.Background())
	if !errors.Is(err, gateway.ErrAllVariantsFailed) || !errors.Is(err, gateway.ErrNoAPIKey) {
		t.Errorf("expected total failure caused by the missing key, got %v", err)
	}
}

func TestGateway_KeyFromEnvironment(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	skip := false

	res, err := Gateway(context.Background(), testConfig(), Options{Lambda: true, Validate: &skip})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.HasKey || res.Validated {
		t.Errorf("expected key without validation, got %+v", res)
	}
}

func TestGateway_UnknownBackend(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	skip := false
	cfg := testConfig()
	cfg.Backend = "carrier-pigeon"

	if _, err := Gateway(context.Background(), cfg, Options{Lambda: true, Validate: &skip}); err == nil {
		t.Error("expected error for unknown backend")
	}
}
