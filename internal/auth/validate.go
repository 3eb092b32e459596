package auth

import (
	"context"
	"time"

	"github.com/fpang/birthday-surprise/internal/gateway"
	"github.com/fpang/birthday-surprise/internal/metrics"
	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

// ValidationError represents a specific type of API key validation failure.
type ValidationError struct {
	Type    ValidationErrorType
	Message string
	Err     error
}

// ValidationErrorType categorizes validation failures.
type ValidationErrorType int

const (
	// ErrTypeNoKey indicates no API key was found.
	ErrTypeNoKey ValidationErrorType = iota
	// ErrTypeInvalidKey indicates the API key is invalid or revoked.
	ErrTypeInvalidKey
	// ErrTypeNetworkError indicates a network connectivity issue.
	ErrTypeNetworkError
	// ErrTypeQuotaExceeded indicates the API quota has been exceeded.
	ErrTypeQuotaExceeded
	// ErrTypeUnknown indicates an unknown error occurred.
	ErrTypeUnknown
)

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// validationModel is a cheap text model; a one-word prompt is enough to
// prove the key works without spending image quota.
const validationModel = "gemini-2.5-flash-lite"

// ContentGenerator is the slice of the genai Models service used for
// validation. *genai.Models satisfies it.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// ValidateAPIKey makes one minimal call with the key and returns nil when it
// works, or a *ValidationError describing why it does not. Callers that can
// run without a key only log the outcome.
func ValidateAPIKey(ctx context.Context, models ContentGenerator) error {
	log.Debug().Str("model", validationModel).Msg("Validating API key")

	start := time.Now()
	resp, err := models.GenerateContent(ctx, validationModel, genai.Text("hi"), nil)
	elapsed := time.Since(start)

	var valErr *ValidationError
	switch {
	case err != nil:
		valErr = classifyError(err)
	case resp == nil || len(resp.Candidates) == 0:
		valErr = &ValidationError{Type: ErrTypeUnknown, Message: "API returned empty response"}
	}

	result := resultLabel(valErr)
	metrics.New(metrics.Namespace).
		Dimension("Result", result).
		Metric("ApiKeyValidationMs", float64(elapsed.Milliseconds()), metrics.UnitMilliseconds).
		Count("ApiKeyValidationResult").
		Flush()

	if valErr != nil {
		return valErr
	}
	log.Info().Dur("duration", elapsed).Msg("API key validated")
	return nil
}

func resultLabel(valErr *ValidationError) string {
	if valErr == nil {
		return "success"
	}
	switch valErr.Type {
	case ErrTypeInvalidKey:
		return "invalid"
	case ErrTypeNetworkError:
		return "network_error"
	case ErrTypeQuotaExceeded:
		return "quota"
	}
	if valErr.Err == nil {
		return "empty_response"
	}
	return "unknown"
}

// validationMessages is the user-facing text per failure type.
var validationMessages = map[ValidationErrorType]string{
	ErrTypeInvalidKey:    "API key is invalid, expired, or lacks permissions",
	ErrTypeQuotaExceeded: "API quota exceeded or rate limited",
	ErrTypeNetworkError:  "Gemini API unreachable or unavailable - try again later",
	ErrTypeUnknown:       "Failed to validate API key",
}

// classifyError maps a validation call failure onto a ValidationError using
// the same failure classes the gateway reports.
func classifyError(err error) *ValidationError {
	if err == nil {
		return nil
	}

	class := gateway.Classify(err)
	typ := ErrTypeUnknown
	switch class {
	case gateway.ClassCredential:
		typ = ErrTypeInvalidKey
	case gateway.ClassQuota:
		typ = ErrTypeQuotaExceeded
	case gateway.ClassTransient:
		typ = ErrTypeNetworkError
	}

	log.Error().Err(err).Str("class", string(class)).Msg("API key validation failed")
	return &ValidationError{Type: typ, Message: validationMessages[typ], Err: err}
}
