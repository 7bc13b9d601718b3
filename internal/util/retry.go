// ABOUTME: Backoff helper for pacing repeated status checks against remote services
// ABOUTME: Used by the agent driver to space out run polling
package util

import (
	"math/rand/v2"
	"time"
)

// CalculateBackoff returns exponential backoff with jitter, capped at maxDelay.
// Base delay is doubled each attempt, with random jitter up to 25%.
// A non-positive maxDelay means no cap.
func CalculateBackoff(baseDelay, maxDelay time.Duration, attempt int) time.Duration {
	if attempt <= 0 || baseDelay <= 0 {
		return 0
	}
	// Cap attempt to avoid overflow in bit shift
	if attempt > 30 {
		attempt = 30
	}
	backoff := baseDelay * time.Duration(1<<uint(attempt-1))
	if backoff <= 0 || (maxDelay > 0 && backoff > maxDelay) {
		backoff = maxDelay
	}
	if backoff < 4 {
		return backoff
	}
	// Add jitter: -25% to +25% using auto-seeded math/rand/v2
	jitter := time.Duration(rand.Int64N(int64(backoff)/2)) - backoff/4
	return backoff + jitter
}
