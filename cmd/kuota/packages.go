package main

import (
	"fmt"
	"time"

	"github.com/Veraticus/kuota/internal/cli"
	"github.com/Veraticus/kuota/internal/service"
	"github.com/spf13/cobra"
)

func packageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "package <option-code>",
		Short: "Show the details and benefits of a package option",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := initClient()
			if err != nil {
				return err
			}
			defer client.Close()

			detail, err := client.GetPackage(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to fetch package: %w", err)
			}
			return cli.RenderPackageDetail(cmd.OutOrStdout(), detail, args[0], time.Now())
		},
	}
}

func familyCmd() *cobra.Command {
	var opts service.FamilyOptions

	cmd := &cobra.Command{
		Use:   "family <family-code>",
		Short: "List the options of a package family",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := initClient()
			if err != nil {
				return err
			}
			defer client.Close()

			family, err := client.GetFamily(cmd.Context(), args[0], opts)
			if err != nil {
				return fmt.Errorf("failed to fetch family: %w", err)
			}
			return cli.RenderFamily(cmd.OutOrStdout(), family)
		},
	}

	cmd.Flags().BoolVar(&opts.IsEnterprise, "enterprise", false, "look the family up as an enterprise family")
	cmd.Flags().StringVar(&opts.MigrationType, "migration-type", "", "migration type sent with the lookup (default NONE)")

	return cmd
}

func unsubscribeCmd() *cobra.Command {
	var domain string

	cmd := &cobra.Command{
		Use:   "unsubscribe <quota-code>",
		Short: "Stop an active package",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, session, err := initClient()
			if err != nil {
				return err
			}
			defer client.Close()

			if err := client.Unsubscribe(cmd.Context(), args[0], session.SubscriptionType, domain); err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Unsubscribed from "+args[0]))
			return err
		},
	}

	cmd.Flags().StringVar(&domain, "domain", "PACKAGES", "product domain of the subscription")

	return cmd
}
