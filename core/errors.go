package core

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyCompletion is reported when a provider answers without any text.
	ErrEmptyCompletion = errors.New("empty completion")

	// ErrMissingAPIKey is reported on the first completion call when no
	// credential was configured.
	ErrMissingAPIKey = errors.New("model api key is not configured")

	// ErrEmptyInput is reported when a user submits no content.
	ErrEmptyInput = errors.New("empty input")

	// ErrPlanExceeded is reported when a run attempts more agent calls than
	// its static plan declares.
	ErrPlanExceeded = errors.New("orchestration plan exceeded")
)

// ProviderError is the single failure kind of the completion boundary: the
// provider could not produce a result for the named agent.
type ProviderError struct {
	Agent string
	Cause error
}

// Error implements error.
func (e *ProviderError) Error() string {
	return fmt.Sprintf("agent %s: completion failed: %v", e.Agent, e.Cause)
}

// Unwrap exposes the underlying cause to errors.Is / errors.As.
func (e *ProviderError) Unwrap() error { return e.Cause }

// NewProviderError wraps cause as a ProviderError unless it already is one.
func NewProviderError(agent string, cause error) error {
	var pe *ProviderError
	if errors.As(cause, &pe) {
		return cause
	}
	return &ProviderError{Agent: agent, Cause: cause}
}

// IsProviderFailure reports whether err is (or wraps) a ProviderError.
func IsProviderFailure(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe)
}
