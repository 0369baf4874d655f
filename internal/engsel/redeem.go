package engsel

import (
	"context"

	"github.com/Veraticus/kuota/internal/model"
)

const (
	pathClaimBonus       = "api/v8/personalization/bounties-exchange"
	pathSendBonus        = "gamification/api/v8/loyalties/tiering/bounty-allotment"
	pathRedeemWithPoints = "gamification/api/v8/loyalties/tiering/exchange"
)

type bonusTransfer struct {
	DestinationMSISDN string `json:"destination_msisdn"`
	ItemCode          string `json:"item_code"`
	ItemName          string `json:"item_name"`
	TokenConfirmation string `json:"token_confirmation"`
	AccessToken       string `json:"access_token"`
	Lang              string `json:"lang"`
	Timestamp         int64  `json:"timestamp"`
}

type pointsExchange struct {
	ItemCode          string `json:"item_code"`
	ItemName          string `json:"item_name"`
	TokenConfirmation string `json:"token_confirmation"`
	AccessToken       string `json:"access_token"`
	Lang              string `json:"lang"`
	PaymentFor        string `json:"payment_for"`
	Points            int64  `json:"points"`
	Timestamp         int64  `json:"timestamp"`
}

// ClaimBonus redeems a voucher package onto the session's own line.
func (c *Client) ClaimBonus(ctx context.Context, item model.PaymentItem) model.SettlementResult {
	bonus := &Settler{client: c, method: "BALANCE", path: pathClaimBonus}
	req := model.NewSettlementRequest(item)
	req.PaymentFor = model.PaymentForRedeemVoucher
	return bonus.Settle(ctx, req.WithTotal(0))
}

// SendBonus redeems a voucher package onto another subscriber's line.
func (c *Client) SendBonus(ctx context.Context, item model.PaymentItem, msisdn string) model.SettlementResult {
	return c.settle(ctx, pathSendBonus, bonusTransfer{
		DestinationMSISDN: msisdn,
		ItemCode:          item.ItemCode,
		ItemName:          item.ItemName,
		TokenConfirmation: item.TokenConfirmation,
		AccessToken:       c.session.AccessToken,
		Lang:              "en",
		Timestamp:         c.now().Unix(),
	})
}

// RedeemWithPoints pays for a voucher package with loyalty points.
func (c *Client) RedeemWithPoints(ctx context.Context, item model.PaymentItem, points int64) model.SettlementResult {
	return c.settle(ctx, pathRedeemWithPoints, pointsExchange{
		ItemCode:          item.ItemCode,
		ItemName:          item.ItemName,
		TokenConfirmation: item.TokenConfirmation,
		AccessToken:       c.session.AccessToken,
		Lang:              "en",
		PaymentFor:        model.PaymentForRedeemVoucher,
		Points:            points,
		Timestamp:         c.now().Unix(),
	})
}
