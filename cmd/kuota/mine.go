package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/Veraticus/kuota/internal/cli"
	"github.com/Veraticus/kuota/internal/common"
	"github.com/Veraticus/kuota/internal/model"
	"github.com/spf13/cobra"
)

const defaultQuotaDomain = "PACKAGES"

type quotaClient interface {
	GetMyQuotas(ctx context.Context) ([]model.Quota, error)
	GetPackage(ctx context.Context, optionCode string) (*model.PackageDetail, error)
	Unsubscribe(ctx context.Context, quotaCode, subscriptionType, domain string) error
}

func mineCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "mine",
		Aliases: []string{"my-packages"},
		Short:   "List the packages active on your line",
		Long: `List the packages active on your line, numbered from 1.

Use the number with "mine show" for the full detail or with
"mine unsubscribe" to stop the package.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, _, err := initClient()
			if err != nil {
				return err
			}
			defer client.Close()

			quotas, err := client.GetMyQuotas(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to fetch active packages: %w", err)
			}
			return cli.RenderQuotas(cmd.OutOrStdout(), quotas)
		},
	}

	cmd.AddCommand(mineShowCmd())
	cmd.AddCommand(mineUnsubscribeCmd())

	return cmd
}

func mineShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <number>",
		Short: "Show the detail of an active package",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := initClient()
			if err != nil {
				return err
			}
			defer client.Close()

			return showQuota(cmd.Context(), cmd.OutOrStdout(), client, args[0], time.Now())
		},
	}
}

func mineUnsubscribeCmd() *cobra.Command {
	var assumeYes bool

	cmd := &cobra.Command{
		Use:     "unsubscribe <number>",
		Aliases: []string{"del"},
		Short:   "Stop an active package",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, session, err := initClient()
			if err != nil {
				return err
			}
			defer client.Close()

			out := cmd.OutOrStdout()
			var prompter *cli.Prompter
			if !assumeYes {
				prompter = cli.NewPrompter(cmd.InOrStdin(), out)
			}
			return unsubscribeQuota(cmd.Context(), out, client, prompter, args[0], session.SubscriptionType)
		},
	}

	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "do not ask for confirmation")

	return cmd
}

func showQuota(ctx context.Context, w io.Writer, client quotaClient, number string, now time.Time) error {
	quota, err := activeQuota(ctx, client, number)
	if err != nil {
		return err
	}
	detail, err := client.GetPackage(ctx, quota.QuotaCode)
	if err != nil {
		return fmt.Errorf("failed to fetch package %s: %w", quota.Name, err)
	}
	return cli.RenderPackageDetail(w, detail, quota.QuotaCode, now)
}

// unsubscribeQuota stops the numbered quota. A nil prompter skips the
// confirmation.
func unsubscribeQuota(ctx context.Context, w io.Writer, client quotaClient, prompter *cli.Prompter, number, fallbackType string) error {
	quota, err := activeQuota(ctx, client, number)
	if err != nil {
		return err
	}

	if prompter != nil {
		ok, err := prompter.Confirm(ctx, fmt.Sprintf("Unsubscribe from %s. %s?", number, quota.Name), false)
		if err != nil {
			return err
		}
		if !ok {
			return writeLine(w, cli.FormatWarning("Unsubscribe cancelled."))
		}
	}

	subsType := quota.SubscriptionType
	if subsType == "" {
		subsType = fallbackType
	}
	domain := quota.Domain
	if domain == "" {
		domain = defaultQuotaDomain
	}
	if err := client.Unsubscribe(ctx, quota.QuotaCode, subsType, domain); err != nil {
		return fmt.Errorf("failed to unsubscribe from %s: %w", quota.Name, err)
	}
	return writeLine(w, cli.FormatSuccess("Unsubscribed from "+quota.Name+"."))
}

func activeQuota(ctx context.Context, client quotaClient, number string) (model.Quota, error) {
	quotas, err := client.GetMyQuotas(ctx)
	if err != nil {
		return model.Quota{}, fmt.Errorf("failed to fetch active packages: %w", err)
	}
	return pickNumbered(quotas, number, "active package", "kuota mine")
}

// pickNumbered returns the item a user chose by the 1-based number a list
// command printed.
func pickNumbered[T any](items []T, number, what, listCmd string) (T, error) {
	var zero T
	n, err := strconv.Atoi(number)
	if err != nil || n < 1 || n > len(items) {
		msg := fmt.Sprintf("No %s numbered %q. Run '%s' to see the list.", what, number, listCmd)
		return zero, common.NewUserError(msg, common.ErrNotFound)
	}
	return items[n-1], nil
}
