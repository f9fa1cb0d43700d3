package domain

import (
	"context"
	"errors"
	"fmt"
)

// ErrorKind categorizes a failure for the retry layer and for failure markers.
type ErrorKind string

const (
	// KindInvalidInput is a caller contract violation. Never retried.
	KindInvalidInput ErrorKind = "invalid_input"
	// KindTransient is a timeout or transient I/O failure. Retryable.
	KindTransient ErrorKind = "transient"
	// KindConfiguration is an invalid weight set or threshold. Fails fast
	// at load time, never at per-follower granularity.
	KindConfiguration ErrorKind = "configuration"
	// KindRetryExhausted means all attempts for a sub-analysis were consumed.
	KindRetryExhausted ErrorKind = "retry_exhausted"
	// KindCancelled means the batch was cancelled before or during the
	// follower's evaluation.
	KindCancelled ErrorKind = "cancelled"
	// KindInternal is an unexpected failure with no better classification.
	KindInternal ErrorKind = "internal"
)

// InvalidInputError reports a caller contract violation. Reason defaults
// to a missing required field when empty.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	reason := e.Reason
	if reason == "" {
		reason = "is required"
	}
	return fmt.Sprintf("invalid input: %s %s", e.Field, reason)
}

// TransientAnalysisError reports a retryable analysis failure.
type TransientAnalysisError struct {
	Op    string
	Cause error
}

func (e *TransientAnalysisError) Error() string {
	return fmt.Sprintf("transient failure in %s: %v", e.Op, e.Cause)
}

func (e *TransientAnalysisError) Unwrap() error { return e.Cause }

// ConfigurationError reports an invalid weight set or threshold.
type ConfigurationError struct {
	Setting string
	Reason  string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration %s: %s", e.Setting, e.Reason)
}

// RetryExhaustedError reports that all attempts for an operation were consumed.
// Attempts counts invocations of the underlying operation, including the first.
type RetryExhaustedError struct {
	Op       string
	Attempts int
	Last     error
}

func (e *RetryExhaustedError) Error() string {
	return fmt.Sprintf("%s failed after %d attempts: %v", e.Op, e.Attempts, e.Last)
}

func (e *RetryExhaustedError) Unwrap() error { return e.Last }

// KindOf classifies an error into the audit taxonomy. Typed errors win
// over the context sentinels: RetryExhaustedError unwraps to its last
// cause, and an operation that burned its whole attempt budget on
// timeouts is exhaustion, not cancellation.
func KindOf(err error) ErrorKind {
	var invalid *InvalidInputError
	var transient *TransientAnalysisError
	var config *ConfigurationError
	var exhausted *RetryExhaustedError
	switch {
	case errors.As(err, &invalid):
		return KindInvalidInput
	case errors.As(err, &exhausted):
		return KindRetryExhausted
	case errors.As(err, &transient):
		return KindTransient
	case errors.As(err, &config):
		return KindConfiguration
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		return KindCancelled
	default:
		return KindInternal
	}
}
