package retry

import (
	"math"
	"math/rand/v2"
	"time"
)

// jitterWindow is the upper bound of the uniform jitter added to each delay.
const jitterWindow = time.Second

// BackoffDelay computes the sleep before retry number attempt (1-based):
// min(baseDelay * 2^(attempt-1) + jitter, maxDelay), where jitter is drawn
// uniformly from [0, 1s). The result is bounded by maxDelay and never
// negative. No shared state; safe from any number of goroutines.
func BackoffDelay(attempt int, baseDelay, maxDelay time.Duration) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if maxDelay < 0 {
		maxDelay = 0
	}

	exp := float64(baseDelay) * math.Pow(2, float64(attempt-1))
	jitter := rand.Float64() * float64(jitterWindow)

	delay := exp + jitter
	if delay > float64(maxDelay) {
		return maxDelay
	}
	if delay < 0 {
		return 0
	}
	return time.Duration(delay)
}
