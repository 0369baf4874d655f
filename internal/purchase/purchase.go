package purchase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/kuota/internal/common"
	"github.com/Veraticus/kuota/internal/model"
	"github.com/Veraticus/kuota/internal/service"
)

// Purchaser runs the single-purchase procedure: fetch the package, bundle a
// decoy when asked, settle, and apply the amount correction.
type Purchaser struct {
	packages service.PackageFetcher
	invoker  service.SettlementInvoker
	bundler  *Bundler
	retrier  *Retrier
	strategy DecoyStrategy
}

// NewPurchaser creates a purchaser that settles through invoker and bundles
// decoys according to strategy. bundler may be nil when decoys are never used.
func NewPurchaser(packages service.PackageFetcher, invoker service.SettlementInvoker, bundler *Bundler, strategy DecoyStrategy) *Purchaser {
	return &Purchaser{
		packages: packages,
		invoker:  invoker,
		bundler:  bundler,
		retrier:  NewRetrier(invoker),
		strategy: strategy,
	}
}

// Strategy returns the decoy strategy in use.
func (p *Purchaser) Strategy() DecoyStrategy {
	return p.strategy
}

// Buy purchases optionCode once. A non-nil error is returned for every
// outcome other than SUCCESS, alongside the result to record.
func (p *Purchaser) Buy(ctx context.Context, optionCode string, useDecoy bool) (model.SettlementResult, error) {
	tracker := newAttemptTracker(optionCode)

	detail, err := p.packages.GetPackage(ctx, optionCode)
	if err != nil {
		tracker.finish(model.StatusFailed)
		return model.FailedResult(err.Error()), fmt.Errorf("fetching package %s: %w", optionCode, err)
	}
	if detail == nil {
		tracker.finish(model.StatusFailed)
		return model.FailedResult("package not found"), fmt.Errorf("package %s: %w", optionCode, common.ErrNotFound)
	}

	req, err := p.request(ctx, detail, optionCode, useDecoy)
	if err != nil {
		tracker.finish(model.StatusFailed)
		return model.FailedResult(err.Error()), err
	}

	tracker.settling()
	first := p.invoker.Settle(ctx, req)
	result, err := p.retrier.Correct(ctx, req, first)
	result.Amount = req.Total()
	if result.Retried {
		result.Amount = result.CorrectedAmount
		tracker.retrying(result.CorrectedAmount)
	}
	tracker.finish(result.Status)

	if err != nil {
		return result, err
	}
	if !result.Succeeded() {
		return result, fmt.Errorf("%w: %s: %s", common.ErrSettlementFailed, result.Status, result.Message)
	}
	return result, nil
}

// Attempt adapts Buy to the batch runner.
func (p *Purchaser) Attempt(optionCode string, useDecoy bool) AttemptFunc {
	return func(ctx context.Context, _ int) (model.SettlementResult, error) {
		return p.Buy(ctx, optionCode, useDecoy)
	}
}

func (p *Purchaser) request(ctx context.Context, detail *model.PackageDetail, optionCode string, useDecoy bool) (model.SettlementRequest, error) {
	primary := detail.PaymentItem(optionCode)

	if !useDecoy {
		req := model.NewSettlementRequest(primary)
		req.PaymentFor = detail.PaymentFor()
		return req, nil
	}

	if p.bundler == nil {
		return model.SettlementRequest{}, fmt.Errorf("%w: no decoy source configured", common.ErrDecoyUnavailable)
	}
	bundle, err := p.bundler.Bundle(ctx, primary, p.strategy.Channel)
	if err != nil {
		return model.SettlementRequest{}, err
	}
	return p.strategy.Request(bundle, detail.PaymentFor()), nil
}

// attemptTracker walks one attempt through its states. An attempt settles at
// most twice: once normally and once with a corrected amount.
type attemptTracker struct {
	optionCode string
	state      model.AttemptState
	settles    int
}

func newAttemptTracker(optionCode string) *attemptTracker {
	return &attemptTracker{optionCode: optionCode, state: model.AttemptPending}
}

func (t *attemptTracker) settling() {
	t.to(model.AttemptSettling)
	t.settles++
}

func (t *attemptTracker) retrying(amount int64) {
	t.to(model.AttemptRetrySettling)
	t.settles++
	slog.Debug("Attempt settling with corrected total", "option_code", t.optionCode, "total", amount)
}

func (t *attemptTracker) finish(status model.SettlementStatus) {
	if status == model.StatusSuccess {
		t.to(model.AttemptSucceeded)
		return
	}
	t.to(model.AttemptFailed)
}

func (t *attemptTracker) to(next model.AttemptState) {
	slog.Debug("Attempt state change",
		"option_code", t.optionCode,
		"from", t.state,
		"to", next,
		"settlements", t.settles)
	t.state = next
}
