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

func newCatalog() *catalog {
	return &catalog{details: map[string]*model.PackageDetail{
		"MAIN":  detail("Main 10K", 10000, "main-token"),
		"DECOY": detail("Decoy 1K", 1000, "decoy-token"),
	}}
}

func TestScenarioA_SingleSuccessNoDecoy(t *testing.T) {
	inv := &scriptedInvoker{results: []model.SettlementResult{{Status: model.StatusSuccess}}}
	sleeper := &recordingSleeper{}
	p := NewPurchaser(newCatalog(), inv, nil, BalanceDecoy)

	run, err := NewRunner(WithSleeper(sleeper.sleep)).Run(context.Background(), BatchOptions{Count: 1}, p.Attempt("MAIN", false))

	require.NoError(t, err)
	require.Len(t, run.Results, 1)
	assert.Equal(t, model.StatusSuccess, run.Results[0].Status)
	assert.Equal(t, int64(10000), run.Results[0].Amount)
	assert.Empty(t, sleeper.waits)
	require.Equal(t, 1, inv.calls())
	req := inv.requests[0]
	assert.Len(t, req.Items, 1)
	assert.Equal(t, int64(10000), req.Total())
	assert.Nil(t, req.TotalAmountOverride)
	assert.Equal(t, model.DefaultSignerIndex, req.TokenConfirmationIndex)
	assert.Equal(t, "main-token", req.SignerToken())
}

func TestScenarioB_DecoyWithAmountCorrection(t *testing.T) {
	cat := newCatalog()
	inv := &scriptedInvoker{results: []model.SettlementResult{
		{Status: model.StatusFailed, Message: "Bizz-err.Amount.Total mismatch = 10500"},
		{Status: model.StatusSuccess},
	}}
	p := NewPurchaser(cat, inv, NewBundler(mapResolver{ChannelBalance: "DECOY"}, cat), BalanceDecoy)

	run, err := NewRunner(WithSleeper((&recordingSleeper{}).sleep)).Run(context.Background(), BatchOptions{Count: 1, UseDecoy: true}, p.Attempt("MAIN", true))

	require.NoError(t, err)
	require.Len(t, run.Results, 1)
	assert.Equal(t, model.StatusSuccess, run.Results[0].Status)
	assert.True(t, run.Results[0].Retried)
	assert.Equal(t, int64(10500), run.Results[0].Amount)
	require.Equal(t, 2, inv.calls())
	assert.Equal(t, int64(11000), inv.requests[0].Total())
	assert.Equal(t, int64(10500), inv.requests[1].Total())
	assert.Len(t, inv.requests[1].Items, 2)
}

func TestScenarioC_RepeatedWithDelay(t *testing.T) {
	inv := &scriptedInvoker{}
	sleeper := &recordingSleeper{}
	p := NewPurchaser(newCatalog(), inv, nil, BalanceDecoy)

	run, err := NewRunner(WithSleeper(sleeper.sleep)).Run(context.Background(), BatchOptions{Count: 3, Delay: 5 * time.Second}, p.Attempt("MAIN", false))

	require.NoError(t, err)
	require.Len(t, run.Results, 3)
	for _, r := range run.Results {
		assert.Equal(t, model.StatusSuccess, r.Status)
	}
	assert.Equal(t, []time.Duration{5 * time.Second, 5 * time.Second}, sleeper.waits)
	assert.Equal(t, 3, inv.calls())
}

func TestScenarioD_UnmappedDecoyChannel(t *testing.T) {
	cat := newCatalog()
	inv := &scriptedInvoker{}
	var errs []error
	p := NewPurchaser(cat, inv, NewBundler(mapResolver{}, cat), QRISDecoyV2)
	r := NewRunner(
		WithSleeper((&recordingSleeper{}).sleep),
		WithObserver(func(_ int, _ model.SettlementResult, err error) { errs = append(errs, err) }),
	)

	run, err := r.Run(context.Background(), BatchOptions{Count: 3, UseDecoy: true}, p.Attempt("MAIN", true))

	require.NoError(t, err)
	require.Len(t, run.Results, 3)
	for i, res := range run.Results {
		assert.Equal(t, model.StatusFailed, res.Status)
		assert.ErrorIs(t, errs[i], common.ErrDecoyUnavailable)
		assert.True(t, IsDecoyUnavailable(errs[i]))
	}
	assert.Zero(t, inv.calls())
}

func TestPurchaser_RebundlesDecoyEveryAttempt(t *testing.T) {
	cat := newCatalog()
	inv := &scriptedInvoker{}
	p := NewPurchaser(cat, inv, NewBundler(mapResolver{ChannelBalance: "DECOY"}, cat), BalanceDecoyV2)

	_, err := NewRunner(WithSleeper((&recordingSleeper{}).sleep)).Run(context.Background(), BatchOptions{Count: 2, UseDecoy: true}, p.Attempt("MAIN", true))

	require.NoError(t, err)
	assert.Equal(t, 4, cat.lookups, "primary and decoy are fetched on every attempt")
	for _, req := range inv.requests {
		assert.Equal(t, "decoy-token", req.SignerToken())
		assert.Equal(t, model.PaymentForSentinel, req.PaymentFor)
	}
}

func TestPurchaser_Buy(t *testing.T) {
	tests := []struct {
		wantErr    error
		name       string
		results    []model.SettlementResult
		code       string
		wantStatus model.SettlementStatus
		wantCalls  int
	}{
		{
			name:       "success",
			code:       "MAIN",
			results:    []model.SettlementResult{{Status: model.StatusSuccess}},
			wantStatus: model.StatusSuccess,
			wantCalls:  1,
		},
		{
			name:       "plain failure",
			code:       "MAIN",
			results:    []model.SettlementResult{{Status: model.StatusFailed, Message: "Insufficient balance"}},
			wantStatus: model.StatusFailed,
			wantErr:    common.ErrSettlementFailed,
			wantCalls:  1,
		},
		{
			name:       "malformed correction",
			code:       "MAIN",
			results:    []model.SettlementResult{{Status: model.StatusFailed, Message: "Bizz-err.Amount.Total = ?"}},
			wantStatus: model.StatusFailed,
			wantErr:    common.ErrMalformedCorrectionMessage,
			wantCalls:  1,
		},
		{
			name:       "unknown status",
			code:       "MAIN",
			results:    []model.SettlementResult{{Status: model.StatusUnknown}},
			wantStatus: model.StatusUnknown,
			wantErr:    common.ErrSettlementFailed,
			wantCalls:  1,
		},
		{
			name:       "missing package",
			code:       "NOPE",
			wantStatus: model.StatusFailed,
			wantErr:    common.ErrNotFound,
			wantCalls:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := &scriptedInvoker{results: tt.results}
			p := NewPurchaser(newCatalog(), inv, nil, BalanceDecoy)

			result, err := p.Buy(context.Background(), tt.code, false)

			assert.Equal(t, tt.wantStatus, result.Status)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantCalls, inv.calls())
		})
	}
}

type brokenCatalog struct{}

func (brokenCatalog) GetPackage(context.Context, string) (*model.PackageDetail, error) {
	return nil, errors.New("connection reset")
}

func TestPurchaser_LookupErrorIsRecorded(t *testing.T) {
	inv := &scriptedInvoker{}
	p := NewPurchaser(brokenCatalog{}, inv, nil, BalanceDecoy)

	result, err := p.Buy(context.Background(), "MAIN", false)

	require.Error(t, err)
	assert.Equal(t, model.StatusFailed, result.Status)
	assert.Contains(t, result.Message, "connection reset")
	assert.Zero(t, inv.calls())
}

func TestPurchaser_DecoyWithoutBundler(t *testing.T) {
	p := NewPurchaser(newCatalog(), &scriptedInvoker{}, nil, BalanceDecoy)

	_, err := p.Buy(context.Background(), "MAIN", true)

	assert.ErrorIs(t, err, common.ErrDecoyUnavailable)
}
