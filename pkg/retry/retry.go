// Package retry provides a bounded exponential-backoff retry policy shared
// by the embedding and generation adapters.
package retry

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"
)

const (
	// DefaultMaxAttempts is the total number of tries, including the first.
	DefaultMaxAttempts = 3

	// DefaultBaseDelay is the backoff base doubled on each attempt.
	DefaultBaseDelay = time.Second

	// DefaultMaxDelay caps a single backoff sleep.
	DefaultMaxDelay = 30 * time.Second
)

// Policy describes a bounded retry schedule. The zero value is usable and
// behaves like DefaultPolicy.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DefaultPolicy returns the policy used when callers do not configure one.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: DefaultMaxAttempts,
		BaseDelay:   DefaultBaseDelay,
		MaxDelay:    DefaultMaxDelay,
	}
}

func (p Policy) normalized() Policy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = DefaultMaxAttempts
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = DefaultBaseDelay
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = DefaultMaxDelay
	}
	return p
}

// Backoff returns the sleep before the given attempt (1-based), doubling the
// base each attempt with up to ±25% jitter. Attempt 0 sleeps nothing.
func (p Policy) Backoff(attempt int) time.Duration {
	p = p.normalized()
	if attempt <= 0 {
		return 0
	}
	// Cap the shift to avoid overflow.
	if attempt > 30 {
		attempt = 30
	}
	backoff := p.BaseDelay * time.Duration(1<<uint(attempt))
	if backoff > p.MaxDelay {
		backoff = p.MaxDelay
	}
	jitter := time.Duration(rand.Int64N(int64(backoff)/2)) - backoff/4
	return backoff + jitter
}

// Do runs fn up to MaxAttempts times, sleeping between attempts. It returns
// nil on the first success, the last error once attempts are exhausted, or
// the context error if the context ends while waiting.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	p = p.normalized()

	var lastErr error
	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(p.Backoff(attempt))
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}

		if err := fn(ctx); err != nil {
			lastErr = fmt.Errorf("attempt %d: %w", attempt+1, err)
			continue
		}
		return nil
	}

	return fmt.Errorf("failed after %d attempts: %w", p.MaxAttempts, lastErr)
}
