package common

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/kuota/internal/service"
)

var (
	// ErrRateLimit indicates the backend answered 429.
	ErrRateLimit = errors.New("rate limit exceeded")
	// ErrMaxRetries indicates a lookup failed on every attempt.
	ErrMaxRetries = errors.New("max retries exceeded")
)

// RetryableError tags a lookup failure with whether it may be repeated and
// how long the backend asked us to hold off.
type RetryableError struct {
	Err        error
	RetryAfter time.Duration
	Retryable  bool
}

func (e *RetryableError) Error() string {
	return e.Err.Error()
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	return &RetryableError{Err: err}
}

// Transient marks err as safe to retry.
func Transient(err error) error {
	return &RetryableError{Err: err, Retryable: true}
}

// RateLimited reports a 429. after is the backend's Retry-After, or zero.
func RateLimited(after time.Duration) error {
	return &RetryableError{Err: ErrRateLimit, Retryable: true, RetryAfter: after}
}

// backoff produces the waits between lookup attempts. A Retry-After from the
// backend stretches the wait, capped at the configured maximum.
type backoff struct {
	next   time.Duration
	max    time.Duration
	factor float64
}

func newBackoff(opts service.RetryOptions) *backoff {
	b := &backoff{next: opts.InitialDelay, max: opts.MaxDelay, factor: opts.Multiplier}
	if b.next <= 0 {
		b.next = 100 * time.Millisecond
	}
	if b.max <= 0 {
		b.max = 30 * time.Second
	}
	if b.factor <= 1 {
		b.factor = 2
	}
	return b
}

func (b *backoff) after(err error) time.Duration {
	wait := b.next
	var re *RetryableError
	if errors.As(err, &re) && re.RetryAfter > wait {
		wait = min(re.RetryAfter, b.max)
	}
	b.next = min(time.Duration(float64(b.next)*b.factor), b.max)
	return wait
}

// WithRetry repeats a read-only lookup until it succeeds, fails permanently,
// or runs out of attempts. Settlements never go through here: a repeated
// settlement could charge the subscriber twice.
func WithRetry(ctx context.Context, lookup func() error, opts service.RetryOptions) error {
	attempts := opts.MaxAttempts
	if attempts <= 0 {
		attempts = 3
	}
	b := newBackoff(opts)

	for attempt := 1; ; attempt++ {
		err := lookup()
		if err == nil {
			return nil
		}
		if !IsRetryable(err) {
			return err
		}
		if attempt >= attempts {
			return fmt.Errorf("%w after %d attempts: %w", ErrMaxRetries, attempts, err)
		}

		wait := b.after(err)
		slog.Warn("Lookup failed, retrying",
			"attempt", attempt,
			"max_attempts", attempts,
			"wait", wait,
			"error", err)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
