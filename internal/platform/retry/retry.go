// Package retry provides a generic combinator for wrapping fallible
// operations with bounded attempts and exponential backoff.
package retry

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
)

type Action int

const (
	Stop  Action = iota // permanent error, abort immediately
	Retry               // transient error, back off and try again
)

// Policy controls attempt budget and backoff shape.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration

	// OnRetry is invoked before each backoff sleep. Best-effort: a panic in
	// the observer is logged and swallowed, never propagated. err is nil
	// when the retry was triggered by a bad result rather than an error.
	OnRetry func(attempt int, err error, backoff time.Duration)

	// Clock defaults to the real clock; tests inject a fake.
	Clock clockwork.Clock
}

func (p Policy) clock() clockwork.Clock {
	if p.Clock != nil {
		return p.Clock
	}
	return clockwork.NewRealClock()
}

type Classify func(err error) Action
type Operation[T any] func() (T, error)

// ResultCheck flags a returned value as retry-worthy (e.g. a degraded or
// placeholder result that a later attempt might improve on).
type ResultCheck[T any] func(val T) bool

// PermanentError wraps a non-retryable error surfaced on first occurrence.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

// ExhaustedError is returned when every attempt failed with a retryable error.
type ExhaustedError struct {
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error { return e.Err }

// Do executes op up to p.MaxAttempts times, retrying on errors classify
// deems transient. At most MaxAttempts invocations happen, and total sleep
// time is bounded by MaxAttempts * MaxDelay.
func Do[T any](ctx context.Context, p Policy, classify Classify, op Operation[T]) (T, error) {
	return DoCheck(ctx, p, classify, nil, op)
}

// DoCheck is Do with an optional result predicate: a value flagged by
// badResult is retried like a transient error while attempts remain. If the
// final attempt still yields a flagged value it is returned as-is; no
// synthetic error is invented.
func DoCheck[T any](ctx context.Context, p Policy, classify Classify, badResult ResultCheck[T], op Operation[T]) (T, error) {
	var zero T
	if p.MaxAttempts < 1 {
		return zero, fmt.Errorf("retry: MaxAttempts must be >= 1, got %d", p.MaxAttempts)
	}

	clock := p.clock()

	var lastVal T
	var lastErr error
	lastWasBadResult := false

	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		val, err := op()
		if err == nil {
			if badResult == nil || !badResult(val) {
				return val, nil
			}
			lastVal, lastErr, lastWasBadResult = val, nil, true
		} else {
			if classify(err) == Stop {
				return zero, &PermanentError{Err: err}
			}
			lastErr, lastWasBadResult = err, false
		}

		if attempt == p.MaxAttempts {
			break
		}

		backoff := BackoffDelay(attempt, p.BaseDelay, p.MaxDelay)
		notifyRetry(p, attempt, lastErr, backoff)

		select {
		case <-clock.After(backoff):
		case <-ctx.Done():
			return zero, fmt.Errorf("context cancelled during retry: %w", ctx.Err())
		}
	}

	if lastWasBadResult {
		return lastVal, nil
	}
	return zero, &ExhaustedError{Attempts: p.MaxAttempts, Err: lastErr}
}

// DoVoid is Do for operations without a return value.
func DoVoid(ctx context.Context, p Policy, classify Classify, op func() error) error {
	_, err := Do(ctx, p, classify, func() (struct{}, error) { return struct{}{}, op() })
	return err
}

func notifyRetry(p Policy, attempt int, err error, backoff time.Duration) {
	if p.OnRetry == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Retry observer panicked", "attempt", attempt, "panic", r)
		}
	}()
	p.OnRetry(attempt, err, backoff)
}
