package purchase

import (
	"context"
	"errors"
	"fmt"

	"github.com/Veraticus/kuota/internal/common"
	"github.com/Veraticus/kuota/internal/model"
	"github.com/Veraticus/kuota/internal/service"
)

// Decoy channels.
const (
	ChannelBalance  = "balance"
	ChannelQRIS     = "qris"
	ChannelQRISZero = "qris0"
)

// Method is the payment method a settlement goes through.
type Method string

// Payment methods.
const (
	MethodBalance Method = "BALANCE"
	MethodQRIS    Method = "QRIS"
	// MethodEWallet has no decoy channel; the wallet provider is chosen per purchase.
	MethodEWallet Method = "EWALLET"
)

// Bundle is a primary item paired with its decoy.
type Bundle struct {
	Items []model.PaymentItem
	Total int64
}

// Bundler pairs a primary item with the decoy configured for a channel.
type Bundler struct {
	resolver service.DecoyResolver
	packages service.PackageFetcher
}

// NewBundler creates a bundler.
func NewBundler(resolver service.DecoyResolver, packages service.PackageFetcher) *Bundler {
	return &Bundler{resolver: resolver, packages: packages}
}

// Bundle returns [primary, decoy] and their price sum. The decoy detail is
// fetched on every call so its token belongs to the current session.
func (b *Bundler) Bundle(ctx context.Context, primary model.PaymentItem, channel string) (Bundle, error) {
	code, err := b.resolver.ResolveDecoy(ctx, channel)
	if err != nil {
		if errors.Is(err, common.ErrDecoyUnavailable) {
			return Bundle{}, err
		}
		return Bundle{}, fmt.Errorf("%w: channel %s: %v", common.ErrDecoyUnavailable, channel, err)
	}
	if code == "" {
		return Bundle{}, fmt.Errorf("%w: no decoy mapped for channel %s", common.ErrDecoyUnavailable, channel)
	}

	detail, err := b.packages.GetPackage(ctx, code)
	if err != nil {
		return Bundle{}, fmt.Errorf("%w: fetching decoy %s: %v", common.ErrDecoyUnavailable, code, err)
	}
	if detail == nil {
		return Bundle{}, fmt.Errorf("%w: decoy %s returned no detail", common.ErrDecoyUnavailable, code)
	}

	decoy := detail.PaymentItem(code)
	return Bundle{
		Items: []model.PaymentItem{primary, decoy},
		Total: primary.ItemPrice + decoy.ItemPrice,
	}, nil
}

// DecoyStrategy decides which channel a decoy comes from, which item's token
// signs the request, and which payment purpose is declared. Different
// channels are validated differently by the backend, so each combination is
// kept as its own strategy.
type DecoyStrategy struct {
	Name        string
	Channel     string
	PaymentFor  string
	Method      Method
	SignerIndex int
}

// Known strategies.
var (
	// BalanceDecoy signs with the primary token and keeps the package purpose.
	BalanceDecoy = DecoyStrategy{
		Name:        "balance-decoy",
		Channel:     ChannelBalance,
		Method:      MethodBalance,
		SignerIndex: 0,
	}
	// BalanceDecoyV2 signs with the decoy token under the sentinel purpose.
	BalanceDecoyV2 = DecoyStrategy{
		Name:        "balance-decoy-v2",
		Channel:     ChannelBalance,
		Method:      MethodBalance,
		PaymentFor:  model.PaymentForSentinel,
		SignerIndex: 1,
	}
	// QRISDecoy pays by QRIS with the +1K decoy, signed by the primary.
	QRISDecoy = DecoyStrategy{
		Name:        "qris-decoy",
		Channel:     ChannelQRIS,
		Method:      MethodQRIS,
		SignerIndex: 0,
	}
	// QRISDecoyV2 pays by QRIS with the zero-price decoy, signed by the decoy.
	QRISDecoyV2 = DecoyStrategy{
		Name:        "qris-decoy-v2",
		Channel:     ChannelQRISZero,
		Method:      MethodQRIS,
		PaymentFor:  model.PaymentForSentinel,
		SignerIndex: 1,
	}
)

// Request builds the settlement request for b. fallbackPurpose is used when
// the strategy does not force one.
func (s DecoyStrategy) Request(b Bundle, fallbackPurpose string) model.SettlementRequest {
	req := model.NewSettlementRequest(b.Items...)
	req.PaymentFor = fallbackPurpose
	if s.PaymentFor != "" {
		req.PaymentFor = s.PaymentFor
	}
	if req.PaymentFor == "" {
		req.PaymentFor = model.PaymentForBuyPackage
	}
	total := b.Total
	req.TotalAmountOverride = &total
	req.TokenConfirmationIndex = s.SignerIndex
	return req
}
