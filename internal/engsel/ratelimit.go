package engsel

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const defaultRequestsPerMinute = 30

// throttle paces calls to the backend. It starts at the configured rate and
// halves it every time the backend answers 429, never dropping below an
// eighth of the starting rate. A Retry-After hint also pauses every caller
// until it has passed.
type throttle struct {
	limiter  *rate.Limiter
	floor    rate.Limit
	now      func() time.Time
	resumeAt time.Time
	mu       sync.Mutex
}

func newThrottle(requestsPerMinute int) *throttle {
	if requestsPerMinute <= 0 {
		requestsPerMinute = defaultRequestsPerMinute
	}
	perSecond := rate.Limit(float64(requestsPerMinute) / 60)
	return &throttle{
		limiter: rate.NewLimiter(perSecond, max(1, requestsPerMinute/6)),
		floor:   perSecond / 8,
		now:     time.Now,
	}
}

// wait blocks until the backend may be called again or ctx is done.
func (t *throttle) wait(ctx context.Context) error {
	t.mu.Lock()
	pause := t.resumeAt.Sub(t.now())
	t.mu.Unlock()

	if pause > 0 {
		timer := time.NewTimer(pause)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("rate limiter canceled: %w", ctx.Err())
		case <-timer.C:
		}
	}

	if err := t.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter canceled: %w", err)
	}
	return nil
}

// slowDown records a 429 from the backend.
func (t *throttle) slowDown(retryAfter time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	next := t.limiter.Limit() / 2
	if next < t.floor {
		next = t.floor
	}
	t.limiter.SetLimit(next)

	if retryAfter > 0 {
		if at := t.now().Add(retryAfter); at.After(t.resumeAt) {
			t.resumeAt = at
		}
	}

	slog.Warn("Backend is rate limiting, slowing down",
		"requests_per_minute", float64(next)*60,
		"retry_after", retryAfter)
}

// limit returns the current pace in requests per minute.
func (t *throttle) limit() float64 {
	return float64(t.limiter.Limit()) * 60
}

// parseRetryAfter reads a Retry-After header given either in seconds or as an
// HTTP date. It returns 0 when the header is absent or unusable.
func parseRetryAfter(value string, now time.Time) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	if secs, err := strconv.Atoi(value); err == nil {
		if secs <= 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil {
		if d := at.Sub(now); d > 0 {
			return d
		}
	}
	return 0
}
