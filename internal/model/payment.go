// Package model defines the core domain models used throughout the application.
package model

// Payment purposes understood by the settlement endpoint.
const (
	PaymentForBuyPackage    = "BUY_PACKAGE"
	PaymentForRedeemVoucher = "REDEEM_VOUCHER"
	// PaymentForSentinel asks the backend for its alternate validation path.
	PaymentForSentinel = "🤫"
)

// DefaultSignerIndex lets the backend sign with the primary item's token.
const DefaultSignerIndex = -1

// PaymentItem is one line item in a settlement request.
type PaymentItem struct {
	ItemCode          string
	ProductType       string
	ItemName          string
	TokenConfirmation string
	ItemPrice         int64
	Tax               int64
}

// SettlementRequest is built fresh for every settlement attempt.
type SettlementRequest struct {
	TotalAmountOverride    *int64
	PaymentFor             string
	Items                  []PaymentItem
	TokenConfirmationIndex int
}

// NewSettlementRequest creates a request for the given items with the default
// purpose and signer.
func NewSettlementRequest(items ...PaymentItem) SettlementRequest {
	return SettlementRequest{
		Items:                  append([]PaymentItem(nil), items...),
		PaymentFor:             PaymentForBuyPackage,
		TokenConfirmationIndex: DefaultSignerIndex,
	}
}

// ItemsTotal returns the plain sum of item prices.
func (r SettlementRequest) ItemsTotal() int64 {
	var total int64
	for _, item := range r.Items {
		total += item.ItemPrice
	}
	return total
}

// Total returns the amount sent to the backend.
func (r SettlementRequest) Total() int64 {
	if r.TotalAmountOverride != nil {
		return *r.TotalAmountOverride
	}
	return r.ItemsTotal()
}

// WithTotal returns a copy of the request with the total overridden.
func (r SettlementRequest) WithTotal(amount int64) SettlementRequest {
	out := r
	out.Items = append([]PaymentItem(nil), r.Items...)
	out.TotalAmountOverride = &amount
	return out
}

// SignerToken returns the confirmation token selected by TokenConfirmationIndex.
// Out-of-range indexes fall back to the primary item.
func (r SettlementRequest) SignerToken() string {
	if len(r.Items) == 0 {
		return ""
	}
	idx := r.TokenConfirmationIndex
	if idx < 0 || idx >= len(r.Items) {
		idx = 0
	}
	return r.Items[idx].TokenConfirmation
}

// SettlementStatus is the terminal status reported for an attempt.
type SettlementStatus string

// Settlement status constants.
const (
	StatusSuccess SettlementStatus = "SUCCESS"
	StatusFailed  SettlementStatus = "FAILED"
	StatusUnknown SettlementStatus = "UNKNOWN"
)

// ParseSettlementStatus maps a raw backend status onto a SettlementStatus.
func ParseSettlementStatus(raw string) SettlementStatus {
	switch raw {
	case string(StatusSuccess):
		return StatusSuccess
	case "":
		return StatusUnknown
	default:
		return StatusFailed
	}
}

// SettlementResult is the outcome of one settlement attempt.
type SettlementResult struct {
	Status          SettlementStatus
	Message         string
	TransactionID   string
	CorrectedAmount int64
	// DeepLink opens the e-wallet app to approve a pending payment.
	DeepLink string
	// Amount is the total sent by the final settlement of the attempt.
	Amount  int64
	Retried bool
}

// Succeeded reports whether the backend accepted the settlement.
func (r SettlementResult) Succeeded() bool {
	return r.Status == StatusSuccess
}

// FailedResult builds a FAILED result carrying msg.
func FailedResult(msg string) SettlementResult {
	return SettlementResult{Status: StatusFailed, Message: msg}
}
