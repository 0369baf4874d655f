// Package purchase orchestrates package settlement: decoy bundling, the
// single amount-correction retry, and repeated batch purchases.
package purchase

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/Veraticus/kuota/internal/common"
	"github.com/Veraticus/kuota/internal/model"
	"github.com/Veraticus/kuota/internal/service"
)

// AmountMismatchMarker appears in settlement failures whose message ends with
// the total the backend expected, as in "Bizz-err.Amount.Total mismatch = 10500".
const AmountMismatchMarker = "Bizz-err.Amount.Total"

// ParseCorrectedAmount extracts the authoritative total from a settlement
// failure message.
//
// found is false when the message does not carry AmountMismatchMarker. When
// the marker is present, the amount is the integer after the last '=' that
// follows it; anything else yields ErrMalformedCorrectionMessage.
func ParseCorrectedAmount(message string) (amount int64, found bool, err error) {
	idx := strings.Index(message, AmountMismatchMarker)
	if idx < 0 {
		return 0, false, nil
	}

	tail := message[idx+len(AmountMismatchMarker):]
	eq := strings.LastIndex(tail, "=")
	if eq < 0 {
		return 0, true, fmt.Errorf("%w: no '=' after marker", common.ErrMalformedCorrectionMessage)
	}

	raw := strings.TrimSpace(tail[eq+1:])
	amount, err = strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, true, fmt.Errorf("%w: %q is not an amount", common.ErrMalformedCorrectionMessage, raw)
	}
	if amount < 0 {
		return 0, true, fmt.Errorf("%w: negative amount %d", common.ErrMalformedCorrectionMessage, amount)
	}

	return amount, true, nil
}

// Retrier re-submits a settlement once when the backend reports the total it
// expected.
type Retrier struct {
	invoker service.SettlementInvoker
}

// NewRetrier creates a retrier that settles through invoker.
func NewRetrier(invoker service.SettlementInvoker) *Retrier {
	return &Retrier{invoker: invoker}
}

// Correct inspects the first result of req. At most one extra settlement is
// made, and only when the failure carries a parseable corrected amount. A
// failed corrected attempt is returned as-is.
func (r *Retrier) Correct(ctx context.Context, req model.SettlementRequest, first model.SettlementResult) (model.SettlementResult, error) {
	if first.Succeeded() {
		return first, nil
	}

	amount, found, err := ParseCorrectedAmount(first.Message)
	if !found {
		return first, nil
	}
	if err != nil {
		return first, err
	}

	slog.Info("Backend reported a different total, retrying once",
		"sent_total", req.Total(),
		"corrected_total", amount)

	result := r.invoker.Settle(ctx, req.WithTotal(amount))
	result.Retried = true
	result.CorrectedAmount = amount
	return result, nil
}

// Settle performs the initial settlement of req followed by Correct.
func (r *Retrier) Settle(ctx context.Context, req model.SettlementRequest) (model.SettlementResult, error) {
	first := r.invoker.Settle(ctx, req)
	return r.Correct(ctx, req, first)
}
