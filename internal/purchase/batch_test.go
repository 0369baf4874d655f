package purchase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Veraticus/kuota/internal/common"
	"github.com/Veraticus/kuota/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunner_RejectsInvalidCount(t *testing.T) {
	for _, count := range []int{0, -1, -100} {
		calls := 0
		r := NewRunner(WithSleeper((&recordingSleeper{}).sleep))

		run, err := r.Run(context.Background(), BatchOptions{Count: count}, func(context.Context, int) (model.SettlementResult, error) {
			calls++
			return model.SettlementResult{Status: model.StatusSuccess}, nil
		})

		assert.ErrorIs(t, err, common.ErrInvalidCount)
		assert.Nil(t, run)
		assert.Zero(t, calls)
	}
}

func TestRunner_StartCallback(t *testing.T) {
	var started []*model.BatchRun
	attempts := 0
	r := NewRunner(
		WithSleeper((&recordingSleeper{}).sleep),
		WithIDGenerator(func() string { return "batch-7" }),
		WithStart(func(run *model.BatchRun) {
			assert.Zero(t, attempts, "called before the first attempt")
			started = append(started, run)
		}),
	)

	_, err := r.Run(context.Background(), BatchOptions{Count: 0}, nil)
	require.ErrorIs(t, err, common.ErrInvalidCount)
	assert.Empty(t, started, "not called for a rejected count")

	run, err := r.Run(context.Background(), BatchOptions{Count: 2}, func(context.Context, int) (model.SettlementResult, error) {
		attempts++
		return model.SettlementResult{Status: model.StatusSuccess}, nil
	})
	require.NoError(t, err)
	require.Len(t, started, 1)
	assert.Same(t, run, started[0])
	assert.Equal(t, "batch-7", started[0].ID)
	assert.Equal(t, 2, started[0].Count)
}

func TestRunner_SleepsBetweenAttemptsOnly(t *testing.T) {
	for k := 1; k <= 5; k++ {
		sleeper := &recordingSleeper{}
		var seen []int
		r := NewRunner(WithSleeper(sleeper.sleep))

		run, err := r.Run(context.Background(), BatchOptions{Count: k, Delay: 2 * time.Second}, func(_ context.Context, n int) (model.SettlementResult, error) {
			seen = append(seen, n)
			return model.SettlementResult{Status: model.StatusSuccess}, nil
		})

		require.NoError(t, err)
		assert.Len(t, run.Results, k)
		assert.Len(t, sleeper.waits, k-1)
		for i, n := range seen {
			assert.Equal(t, i+1, n)
		}
	}
}

func TestRunner_ContinuesAfterFailures(t *testing.T) {
	r := NewRunner(WithSleeper((&recordingSleeper{}).sleep))
	outcomes := []error{errors.New("boom"), nil, common.ErrDecoyUnavailable, nil}

	run, err := r.Run(context.Background(), BatchOptions{Count: 4}, func(_ context.Context, n int) (model.SettlementResult, error) {
		if e := outcomes[n-1]; e != nil {
			return model.SettlementResult{}, e
		}
		return model.SettlementResult{Status: model.StatusSuccess}, nil
	})

	require.NoError(t, err)
	require.Len(t, run.Results, 4)
	assert.Equal(t, model.StatusFailed, run.Results[0].Status)
	assert.Equal(t, "boom", run.Results[0].Message)
	assert.Equal(t, model.StatusSuccess, run.Results[1].Status)
	assert.Equal(t, model.StatusFailed, run.Results[2].Status)
	assert.Equal(t, model.StatusSuccess, run.Results[3].Status)
	assert.Equal(t, 2, run.Succeeded())
}

func TestRunner_KeepsBackendMessageOnFailure(t *testing.T) {
	r := NewRunner()

	run, err := r.Run(context.Background(), BatchOptions{Count: 1}, func(context.Context, int) (model.SettlementResult, error) {
		return model.SettlementResult{Status: model.StatusUnknown, Message: "no status"}, common.ErrSettlementFailed
	})

	require.NoError(t, err)
	assert.Equal(t, model.StatusUnknown, run.Results[0].Status)
	assert.Equal(t, "no status", run.Results[0].Message)
}

func TestRunner_ObserverAndMetadata(t *testing.T) {
	var observed []int
	r := NewRunner(
		WithSleeper((&recordingSleeper{}).sleep),
		WithIDGenerator(func() string { return "batch-1" }),
		WithObserver(func(n int, _ model.SettlementResult, _ error) { observed = append(observed, n) }),
	)

	run, err := r.Run(context.Background(), BatchOptions{Count: 3, Delay: time.Second, UseDecoy: true}, func(context.Context, int) (model.SettlementResult, error) {
		return model.SettlementResult{Status: model.StatusSuccess}, nil
	})

	require.NoError(t, err)
	assert.Equal(t, "batch-1", run.ID)
	assert.Equal(t, 3, run.Count)
	assert.Equal(t, time.Second, run.Delay)
	assert.True(t, run.UseDecoy)
	assert.Equal(t, []int{1, 2, 3}, observed)
}

func TestRunner_DefaultIDIsUUID(t *testing.T) {
	run, err := NewRunner().Run(context.Background(), BatchOptions{Count: 1}, func(context.Context, int) (model.SettlementResult, error) {
		return model.SettlementResult{Status: model.StatusSuccess}, nil
	})

	require.NoError(t, err)
	assert.Len(t, run.ID, 36)
}

func TestRunner_CancelledDuringDelay(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	r := NewRunner()

	run, err := r.Run(ctx, BatchOptions{Count: 3, Delay: time.Hour}, func(context.Context, int) (model.SettlementResult, error) {
		calls++
		cancel()
		return model.SettlementResult{Status: model.StatusSuccess}, nil
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
	require.NotNil(t, run)
	assert.Len(t, run.Results, 1)
}

func TestParseDelay(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"25", 25 * time.Second},
		{" 5 ", 5 * time.Second},
		{"0", 0},
		{"", 0},
		{"abc", 0},
		{"-3", 0},
		{"1.5", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseDelay(tt.in), "input %q", tt.in)
	}
}

func TestParseCount(t *testing.T) {
	n, err := ParseCount(" 3 ")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	for _, in := range []string{"0", "-2", "x", ""} {
		_, err := ParseCount(in)
		assert.ErrorIs(t, err, common.ErrInvalidCount, "input %q", in)
	}
}
