package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/Veraticus/kuota/internal/cli"
	"github.com/Veraticus/kuota/internal/common"
	"github.com/Veraticus/kuota/internal/model"
	"github.com/spf13/cobra"
)

// Ways to take a voucher package.
const (
	redeemAsBonus  = "bonus"
	redeemAsSend   = "send"
	redeemAsPoints = "points"
)

type voucherClient interface {
	GetPackage(ctx context.Context, optionCode string) (*model.PackageDetail, error)
	ClaimBonus(ctx context.Context, item model.PaymentItem) model.SettlementResult
	SendBonus(ctx context.Context, item model.PaymentItem, msisdn string) model.SettlementResult
	RedeemWithPoints(ctx context.Context, item model.PaymentItem, points int64) model.SettlementResult
}

func redeemCmd() *cobra.Command {
	var as, to string

	cmd := &cobra.Command{
		Use:   "redeem <option-code>",
		Short: "Take a voucher package as a bonus, send it, or buy it with points",
		Long: `Redeem a package whose family is paid for as REDEEM_VOUCHER.

  --as bonus     add it to your own line
  --as send      give it to --to <number>
  --as points    pay its price in loyalty points`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := initClient()
			if err != nil {
				return err
			}
			defer client.Close()

			result, err := redeemVoucher(cmd.Context(), client, args[0], as, to)
			if err != nil {
				return err
			}
			return cli.RenderResult(cmd.OutOrStdout(), 0, result)
		},
	}

	cmd.Flags().StringVar(&as, "as", redeemAsBonus, "how to redeem: bonus, send or points")
	cmd.Flags().StringVar(&to, "to", "", "recipient number for --as send")

	return cmd
}

// redeemVoucher fetches the package and redeems it the requested way. A
// rejected redemption is returned as an error together with its result.
func redeemVoucher(ctx context.Context, client voucherClient, optionCode, as, to string) (model.SettlementResult, error) {
	as = strings.ToLower(strings.TrimSpace(as))
	switch as {
	case redeemAsBonus, redeemAsPoints:
	case redeemAsSend:
		if strings.TrimSpace(to) == "" {
			return model.SettlementResult{}, common.NewUserError("Sending a bonus needs the recipient's number (--to)", common.ErrInvalidConfig)
		}
	default:
		msg := fmt.Sprintf("Unknown redeem mode %q (use bonus, send or points)", as)
		return model.SettlementResult{}, common.NewUserError(msg, common.ErrInvalidConfig)
	}

	detail, err := client.GetPackage(ctx, optionCode)
	if err != nil {
		return model.SettlementResult{}, fmt.Errorf("failed to fetch package: %w", err)
	}
	if detail.PaymentFor() != model.PaymentForRedeemVoucher {
		msg := fmt.Sprintf("%s is paid for as %s, not redeemed. Use 'kuota buy' instead.", optionCode, detail.PaymentFor())
		return model.SettlementResult{}, common.NewUserError(msg, common.ErrNotRedeemable)
	}

	item := detail.PaymentItem(optionCode)
	var result model.SettlementResult
	switch as {
	case redeemAsBonus:
		result = client.ClaimBonus(ctx, item)
	case redeemAsSend:
		result = client.SendBonus(ctx, item, strings.TrimSpace(to))
	case redeemAsPoints:
		// Voucher families are priced in points.
		result = client.RedeemWithPoints(ctx, item, detail.Option.Price)
	}

	if !result.Succeeded() {
		return result, common.NewUserError("Redeem failed: "+result.Message,
			fmt.Errorf("%w: %s", common.ErrSettlementFailed, result.Message))
	}
	return result, nil
}
