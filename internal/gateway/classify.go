package gateway

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/genai"
)

// Class buckets a generation failure for logs and metrics.
type Class string

const (
	ClassTransient  Class = "transient"
	ClassEmpty      Class = "empty"
	ClassCredential Class = "credential"
	ClassQuota      Class = "quota"
	ClassCanceled   Class = "canceled"
	ClassUnknown    Class = "unknown"
)

// Classify inspects err and returns its failure class. All classes are
// retried the same way; the class only changes how the failure is reported.
func Classify(err error) Class {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrEmptyResponse) {
		return ClassEmpty
	}
	if errors.Is(err, context.Canceled) {
		return ClassCanceled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ClassTransient
	}

	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return classifyCode(apiErrPtr.Code)
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return classifyCode(apiErr.Code)
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return classifyCode(statusErr.Code)
	}

	errLower := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errLower, "api key not valid") ||
		strings.Contains(errLower, "invalid api key") ||
		strings.Contains(errLower, "api_key_invalid") ||
		strings.Contains(errLower, "permission denied"):
		return ClassCredential

	case strings.Contains(errLower, "quota") ||
		strings.Contains(errLower, "resource exhausted") ||
		strings.Contains(errLower, "rate limit"):
		return ClassQuota

	case strings.Contains(errLower, "connection") ||
		strings.Contains(errLower, "network") ||
		strings.Contains(errLower, "timeout") ||
		strings.Contains(errLower, "dial") ||
		strings.Contains(errLower, "no such host") ||
		strings.Contains(errLower, "unreachable"):
		return ClassTransient

	default:
		return ClassUnknown
	}
}

func classifyCode(code int) Class {
	switch code {
	case 400, 401, 403:
		return ClassCredential
	case 429:
		return ClassQuota
	case 408, 500, 502, 503, 504:
		return ClassTransient
	default:
		return ClassUnknown
	}
}
