package wikidata

import (
	"errors"
	"fmt"

	"fantamorto/pkg/platform/sentinel"
)

// ErrorCategory normalizes lookup failures.
type ErrorCategory string

const (
	ErrorTimeout        ErrorCategory = "timeout"
	ErrorBadData        ErrorCategory = "bad_data"
	ErrorProviderOutage ErrorCategory = "provider_outage"
	ErrorRateLimited    ErrorCategory = "rate_limited"
	ErrorInternal       ErrorCategory = "internal"
)

// ProviderError wraps a failed call to one of the Wikidata endpoints.
type ProviderError struct {
	Category   ErrorCategory
	Endpoint   string
	Message    string
	Underlying error
	Retryable  bool
}

func (e *ProviderError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("wikidata %s [%s]: %s: %v", e.Endpoint, e.Category, e.Message, e.Underlying)
	}
	return fmt.Sprintf("wikidata %s [%s]: %s", e.Endpoint, e.Category, e.Message)
}

func (e *ProviderError) Unwrap() error { return e.Underlying }

// Is makes retryable failures match sentinel.ErrUnavailable.
func (e *ProviderError) Is(target error) bool {
	return e.Retryable && target == sentinel.ErrUnavailable
}

// NewProviderError creates a categorized error. Timeouts, outages and rate
// limits are retryable.
func NewProviderError(category ErrorCategory, endpoint, message string, underlying error) *ProviderError {
	retryable := category == ErrorTimeout ||
		category == ErrorProviderOutage ||
		category == ErrorRateLimited

	return &ProviderError{
		Category:   category,
		Endpoint:   endpoint,
		Message:    message,
		Underlying: underlying,
		Retryable:  retryable,
	}
}

// IsRetryable reports whether a later run may succeed.
func IsRetryable(err error) bool {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Retryable
	}
	return false
}

// GetCategory extracts the category, defaulting to ErrorInternal.
func GetCategory(err error) ErrorCategory {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Category
	}
	return ErrorInternal
}
