package engsel

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/Veraticus/kuota/internal/common"
	"github.com/Veraticus/kuota/internal/model"
)

const (
	pathSettleBalance = "payments/api/v8/settlement-balance"
	pathSettleQRIS    = "payments/api/v8/settlement-multipayment/qris"
	pathSettleEWallet = "payments/api/v8/settlement-multipayment/ewallet"
	pathQRISCode      = "payments/api/v8/pending-detail"
)

type settlementItem struct {
	ItemCode          string `json:"item_code"`
	ProductType       string `json:"product_type"`
	ItemName          string `json:"item_name"`
	TokenConfirmation string `json:"token_confirmation"`
	ItemPrice         int64  `json:"item_price"`
	Tax               int64  `json:"tax"`
}

type settlementPayload struct {
	PaymentMethod     string           `json:"payment_method"`
	PaymentFor        string           `json:"payment_for"`
	TokenConfirmation string           `json:"token_confirmation"`
	AccessToken       string           `json:"access_token"`
	Lang              string           `json:"lang"`
	Items             []settlementItem `json:"items"`
	TotalAmount       int64            `json:"total_amount"`
	TotalDiscount     int64            `json:"total_discount"`
	TotalFee          int64            `json:"total_fee"`
	Timestamp         int64            `json:"timestamp"`
	IsEnterprise      bool             `json:"is_enterprise"`
	WalletNumber      string           `json:"wallet_number,omitempty"`
}

type settlementData struct {
	TransactionCode string `json:"transaction_code"`
	DeepLink        string `json:"deeplink"`
}

// EWallet is the wallet an e-wallet settlement is charged to.
type EWallet struct {
	Provider string
	Number   string
}

var walletNeedsNumber = map[string]bool{
	"DANA":      true,
	"OVO":       true,
	"GOPAY":     false,
	"SHOPEEPAY": false,
}

// NewEWallet validates a wallet provider and number. DANA and OVO charge a
// registered number; GoPay and ShopeePay hand back a deep link instead.
func NewEWallet(provider, number string) (EWallet, error) {
	provider = strings.ToUpper(strings.TrimSpace(provider))
	number = strings.TrimSpace(number)

	needsNumber, ok := walletNeedsNumber[provider]
	if !ok {
		return EWallet{}, fmt.Errorf("%w: unknown provider %q (use DANA, OVO, GOPAY or SHOPEEPAY)", common.ErrInvalidWallet, provider)
	}
	if needsNumber && number == "" {
		return EWallet{}, fmt.Errorf("%w: %s needs the wallet's phone number", common.ErrInvalidWallet, provider)
	}
	if !needsNumber {
		number = ""
	}
	return EWallet{Provider: provider, Number: number}, nil
}

// Settler settles requests through one payment method.
type Settler struct {
	client *Client
	method string
	path   string
	wallet string
}

// BalanceSettler returns a settler charging the subscriber's balance.
func (c *Client) BalanceSettler() *Settler {
	return &Settler{client: c, method: "BALANCE", path: pathSettleBalance}
}

// QRISSettler returns a settler creating a QRIS payment.
func (c *Client) QRISSettler() *Settler {
	return &Settler{client: c, method: "QRIS", path: pathSettleQRIS}
}

// EWalletSettler returns a settler charging wallet.
func (c *Client) EWalletSettler(wallet EWallet) *Settler {
	return &Settler{client: c, method: wallet.Provider, path: pathSettleEWallet, wallet: wallet.Number}
}

// Settle performs exactly one settlement attempt. It never retries, and every
// transport or decoding failure becomes a FAILED result.
func (s *Settler) Settle(ctx context.Context, req model.SettlementRequest) model.SettlementResult {
	return s.client.settle(ctx, s.path, s.payload(req))
}

// settle posts a settlement-style payload once and maps the reply to a result.
func (c *Client) settle(ctx context.Context, path string, payload any) model.SettlementResult {
	status, env, err := c.post(ctx, path, payload)
	if err != nil {
		return model.FailedResult(err.Error())
	}

	result := model.SettlementResult{
		Status:  model.ParseSettlementStatus(env.Status),
		Message: env.Message,
	}
	if result.Status == model.StatusUnknown && status >= http.StatusBadRequest {
		result.Status = model.StatusFailed
		if result.Message == "" {
			result.Message = fmt.Sprintf("backend rejected settlement with HTTP %d", status)
		}
	}
	if result.Status == model.StatusUnknown && result.Message == "" {
		result.Message = "backend returned no status"
	}

	if len(env.Data) > 0 {
		var data settlementData
		if err := json.Unmarshal(env.Data, &data); err == nil {
			result.TransactionID = data.TransactionCode
			result.DeepLink = data.DeepLink
		}
	}

	return result
}

func (s *Settler) payload(req model.SettlementRequest) settlementPayload {
	items := make([]settlementItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, settlementItem{
			ItemCode:          it.ItemCode,
			ProductType:       it.ProductType,
			ItemName:          it.ItemName,
			ItemPrice:         it.ItemPrice,
			Tax:               it.Tax,
			TokenConfirmation: it.TokenConfirmation,
		})
	}

	purpose := req.PaymentFor
	if purpose == "" {
		purpose = model.PaymentForBuyPackage
	}

	return settlementPayload{
		PaymentMethod:     s.method,
		PaymentFor:        purpose,
		TokenConfirmation: req.SignerToken(),
		AccessToken:       s.client.session.AccessToken,
		Lang:              "en",
		Items:             items,
		TotalAmount:       req.Total(),
		Timestamp:         s.client.now().Unix(),
		WalletNumber:      s.wallet,
	}
}

type qrisCodeRequest struct {
	TransactionID string `json:"transaction_id"`
	IsEnterprise  bool   `json:"is_enterprise"`
}

type qrisCodeData struct {
	QRCode string `json:"qr_code"`
}

// GetQRISCode returns the QR payload of a pending QRIS transaction.
func (c *Client) GetQRISCode(ctx context.Context, transactionID string) (string, error) {
	var data qrisCodeData
	if err := c.lookup(ctx, pathQRISCode, qrisCodeRequest{TransactionID: transactionID}, &data); err != nil {
		return "", fmt.Errorf("qris code for %s: %w", transactionID, err)
	}
	return data.QRCode, nil
}
