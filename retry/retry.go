// Package retry provides a bounded retry executor for fallible
// operations. The default policy uses a linearly increasing delay
// (attempt number times the base delay); an exponential variant with
// cap and jitter is available for rate-limited upstreams.
package retry

import (
	"context"
	"log/slog"
	"math/rand"
	"time"
)

// DefaultBaseDelay is the reference base delay between attempts.
const DefaultBaseDelay = 500 * time.Millisecond

// Policy bounds the retry loop.
type Policy struct {
	// Attempts is the maximum number of tries. Values below 1 mean 1.
	Attempts int

	// BaseDelay is the delay unit. Defaults to DefaultBaseDelay.
	BaseDelay time.Duration

	// Exponential switches from linear growth (attempt * base) to
	// doubling (base * 2^(attempt-1)).
	Exponential bool

	// MaxDelay caps the computed delay. Zero means no cap.
	MaxDelay time.Duration

	// Jitter, when > 0, scales the delay by a random factor in
	// [1-Jitter, 1+Jitter].
	Jitter float64
}

func (p Policy) delay(attempt int) time.Duration {
	base := p.BaseDelay
	if base <= 0 {
		base = DefaultBaseDelay
	}
	var d time.Duration
	if p.Exponential {
		d = base << (attempt - 1)
	} else {
		d = time.Duration(attempt) * base
	}
	if p.MaxDelay > 0 && d > p.MaxDelay {
		d = p.MaxDelay
	}
	if p.Jitter > 0 {
		d = time.Duration(float64(d) * (1 + (rand.Float64()*2-1)*p.Jitter))
	}
	return d
}

// Do runs fn up to p.Attempts times. Every failed attempt is logged
// with the label and attempt number; after the last failure the final
// error is returned. The context cancels the inter-attempt sleep.
func Do[T any](ctx context.Context, label string, p Policy, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err
		slog.Warn("attempt failed",
			"label", label,
			"attempt", attempt,
			"of", attempts,
			"error", err,
		)
		if attempt == attempts {
			break
		}
		select {
		case <-time.After(p.delay(attempt)):
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}
	return zero, lastErr
}
