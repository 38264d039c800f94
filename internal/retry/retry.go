package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Policy retries an operation with exponential backoff.
type Policy struct {
	maxAttempts  int
	initialDelay time.Duration
	maxDelay     time.Duration
	factor       float64
	permanent    func(error) bool
}

// Option configures a Policy.
type Option func(*Policy)

// WithMaxDelay caps the delay between attempts.
func WithMaxDelay(d time.Duration) Option {
	return func(p *Policy) { p.maxDelay = d }
}

// WithPermanent marks errors that must not be retried.
func WithPermanent(fn func(error) bool) Option {
	return func(p *Policy) { p.permanent = fn }
}

// New creates a policy. maxAttempts below 1 is treated as 1.
func New(maxAttempts int, initialDelay time.Duration, opts ...Option) *Policy {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	p := &Policy{
		maxAttempts:  maxAttempts,
		initialDelay: initialDelay,
		maxDelay:     30 * time.Second,
		factor:       1.5,
		permanent:    func(error) bool { return false },
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Attempts is the maximum number of calls Do makes.
func (p *Policy) Attempts() int {
	return p.maxAttempts
}

// Do runs fn until it succeeds, returns a permanent error, the attempts run
// out or ctx is done. fn receives the 1-based attempt number.
func (p *Policy) Do(ctx context.Context, fn func(ctx context.Context, attempt int) error) error {
	var lastErr error
	delay := p.initialDelay

	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return fmt.Errorf("gave up after %d attempts: %w", attempt-1, errors.Join(lastErr, err))
			}
			return err
		}

		err := fn(ctx, attempt)
		if err == nil {
			return nil
		}
		lastErr = err
		if p.permanent(err) {
			return err
		}

		// no sleep after the last attempt
		if attempt < p.maxAttempts {
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return fmt.Errorf("gave up after %d attempts: %w", attempt, errors.Join(lastErr, ctx.Err()))
			case <-timer.C:
			}
			delay = time.Duration(float64(delay) * p.factor)
			if delay > p.maxDelay {
				delay = p.maxDelay
			}
		}
	}

	return fmt.Errorf("failed after %d attempts: %w", p.maxAttempts, lastErr)
}
