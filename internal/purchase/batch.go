package purchase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/kuota/internal/common"
	"github.com/Veraticus/kuota/internal/model"
	"github.com/google/uuid"
)

// AttemptFunc performs one complete purchase. attempt is 1-based.
type AttemptFunc func(ctx context.Context, attempt int) (model.SettlementResult, error)

// Sleeper waits d between attempts.
type Sleeper func(ctx context.Context, d time.Duration) error

// AttemptObserver is notified after every recorded attempt.
type AttemptObserver func(attempt int, result model.SettlementResult, err error)

// BatchOptions configures a batch run.
type BatchOptions struct {
	Count    int
	Delay    time.Duration
	UseDecoy bool
}

// Runner repeats a purchase a fixed number of times. Every attempt runs,
// whatever the outcome of the ones before it.
type Runner struct {
	sleep     Sleeper
	onStart   func(run *model.BatchRun)
	onAttempt AttemptObserver
	newID     func() string
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithSleeper replaces the wait used between attempts.
func WithSleeper(s Sleeper) RunnerOption {
	return func(r *Runner) { r.sleep = s }
}

// WithObserver registers a callback invoked after each attempt.
func WithObserver(o AttemptObserver) RunnerOption {
	return func(r *Runner) { r.onAttempt = o }
}

// WithStart registers a callback invoked once the options are validated and
// before the first attempt.
func WithStart(f func(run *model.BatchRun)) RunnerOption {
	return func(r *Runner) { r.onStart = f }
}

// WithIDGenerator replaces the batch ID generator.
func WithIDGenerator(f func() string) RunnerOption {
	return func(r *Runner) { r.newID = f }
}

// NewRunner creates a batch runner.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		sleep: sleepContext,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run performs attempt opts.Count times in sequence, waiting opts.Delay
// between consecutive attempts. Attempt errors are recorded as FAILED
// results. The only early exit is cancellation of ctx during a wait, which
// returns the results recorded so far together with the context error.
func (r *Runner) Run(ctx context.Context, opts BatchOptions, attempt AttemptFunc) (*model.BatchRun, error) {
	if opts.Count < 1 {
		return nil, fmt.Errorf("%w: got %d", common.ErrInvalidCount, opts.Count)
	}
	if opts.Delay < 0 {
		opts.Delay = 0
	}

	run := &model.BatchRun{
		ID:        r.newID(),
		Count:     opts.Count,
		Delay:     opts.Delay,
		UseDecoy:  opts.UseDecoy,
		StartedAt: time.Now(),
		Results:   make([]model.SettlementResult, 0, opts.Count),
	}
	if r.onStart != nil {
		r.onStart(run)
	}

	for i := 1; i <= opts.Count; i++ {
		result, err := attempt(ctx, i)
		result = recordable(result, err)
		if err != nil {
			common.LogError(err, "Purchase attempt failed", common.Fields{
				"batch_id": run.ID,
				"attempt":  i,
				"of":       opts.Count,
			})
		} else {
			slog.Info("Purchase attempt finished",
				"batch_id", run.ID,
				"attempt", i,
				"of", opts.Count,
				"status", result.Status)
		}

		run.Results = append(run.Results, result)
		if r.onAttempt != nil {
			r.onAttempt(i, result, err)
		}

		if i == opts.Count {
			break
		}
		if err := r.sleep(ctx, opts.Delay); err != nil {
			return run, fmt.Errorf("batch %s stopped after attempt %d: %w", run.ID, i, err)
		}
	}

	return run, nil
}

// recordable turns an attempt outcome into the result stored for the batch.
func recordable(result model.SettlementResult, err error) model.SettlementResult {
	if err == nil {
		if result.Status == "" {
			result.Status = model.StatusUnknown
		}
		return result
	}
	if result.Status == "" || result.Status == model.StatusSuccess {
		result.Status = model.StatusFailed
	}
	if result.Message == "" {
		result.Message = err.Error()
	}
	return result
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// ParseDelay reads a delay in whole seconds. Anything that is not a plain
// non-negative integer counts as zero.
func ParseDelay(s string) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return time.Duration(n) * time.Second
}

// ParseCount reads a repetition count and rejects anything below 1.
func ParseCount(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", common.ErrInvalidCount, s)
	}
	if n < 1 {
		return 0, fmt.Errorf("%w: got %d", common.ErrInvalidCount, n)
	}
	return n, nil
}

// IsDecoyUnavailable reports whether err came from decoy resolution.
func IsDecoyUnavailable(err error) bool {
	return errors.Is(err, common.ErrDecoyUnavailable)
}
