package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/Veraticus/kuota/internal/cli"
	"github.com/Veraticus/kuota/internal/engsel"
	"github.com/Veraticus/kuota/internal/model"
	"github.com/Veraticus/kuota/internal/service"
	"github.com/spf13/cobra"
)

type storeClient interface {
	GetStoreFamilies(ctx context.Context, q engsel.StoreQuery) ([]model.StoreFamily, error)
	GetStorePackages(ctx context.Context, q engsel.StoreQuery) ([]model.StorePackage, error)
	GetFamily(ctx context.Context, familyCode string, opts service.FamilyOptions) (*model.Family, error)
	GetPackage(ctx context.Context, optionCode string) (*model.PackageDetail, error)
}

func storeCmd() *cobra.Command {
	var query engsel.StoreQuery

	cmd := &cobra.Command{
		Use:   "store",
		Short: "Browse the package store",
		Long: `Browse the families and packages offered by the store.

List commands number their entries; pass that number to "open" or "save".`,
	}

	cmd.PersistentFlags().StringVar(&query.SubscriptionType, "subs-type", "", "subscription type to search (default: the session's)")
	cmd.PersistentFlags().BoolVar(&query.IsEnterprise, "enterprise", false, "search the enterprise catalogue")

	cmd.AddCommand(storeFamiliesCmd(&query))
	cmd.AddCommand(storePackagesCmd(&query))

	return cmd
}

func storeFamiliesCmd(query *engsel.StoreQuery) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "families",
		Short: "List the package families in the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, _, err := initClient()
			if err != nil {
				return err
			}
			defer client.Close()

			families, err := client.GetStoreFamilies(cmd.Context(), *query)
			if err != nil {
				return fmt.Errorf("failed to fetch store families: %w", err)
			}
			return cli.RenderStoreFamilies(cmd.OutOrStdout(), families)
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "open <number>",
		Short: "List the options of a store family",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := initClient()
			if err != nil {
				return err
			}
			defer client.Close()

			return openStoreFamily(cmd.Context(), cmd.OutOrStdout(), client, *query, args[0])
		},
	})
	cmd.AddCommand(storeFamiliesSaveCmd(query))

	return cmd
}

func storeFamiliesSaveCmd(query *engsel.StoreQuery) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "save <number>",
		Short: "Bookmark a store family",
		Long: `Bookmark a store family so it shows up in "bookmarks list".

Saved families are renamed and removed with "bookmarks rename" and
"bookmarks delete".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := initClient()
			if err != nil {
				return err
			}
			defer client.Close()

			families, err := client.GetStoreFamilies(cmd.Context(), *query)
			if err != nil {
				return fmt.Errorf("failed to fetch store families: %w", err)
			}
			family, err := pickNumbered(families, args[0], "store family", "kuota store families")
			if err != nil {
				return err
			}

			store, err := initStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStorage(store)

			return addBookmark(cmd, store, familyBookmark(family, name, query.IsEnterprise))
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "name to save the family under (default: its store label)")

	return cmd
}

// familyBookmark saves a whole family: variant and option stay empty.
func familyBookmark(family model.StoreFamily, name string, enterprise bool) *model.Bookmark {
	if name == "" {
		name = family.Label
	}
	return &model.Bookmark{
		FamilyCode:   family.ID,
		FamilyName:   name,
		IsEnterprise: enterprise,
	}
}

func storePackagesCmd(query *engsel.StoreQuery) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "packages",
		Short: "List the packages in the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, _, err := initClient()
			if err != nil {
				return err
			}
			defer client.Close()

			packages, err := client.GetStorePackages(cmd.Context(), *query)
			if err != nil {
				return fmt.Errorf("failed to fetch store packages: %w", err)
			}
			return cli.RenderStorePackages(cmd.OutOrStdout(), packages)
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "open <number>",
		Short: "Show the detail of a store package",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := initClient()
			if err != nil {
				return err
			}
			defer client.Close()

			return openStorePackage(cmd.Context(), cmd.OutOrStdout(), client, *query, args[0], time.Now())
		},
	})

	return cmd
}

func openStoreFamily(ctx context.Context, w io.Writer, client storeClient, query engsel.StoreQuery, number string) error {
	families, err := client.GetStoreFamilies(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to fetch store families: %w", err)
	}
	family, err := pickNumbered(families, number, "store family", "kuota store families")
	if err != nil {
		return err
	}

	listing, err := client.GetFamily(ctx, family.ID, service.FamilyOptions{IsEnterprise: query.IsEnterprise})
	if err != nil {
		return fmt.Errorf("failed to fetch family %s: %w", family.Label, err)
	}
	return cli.RenderFamily(w, listing)
}

// openStorePackage shows the detail page behind a store entry. Only entries
// that link to a package detail page can be opened.
func openStorePackage(ctx context.Context, w io.Writer, client storeClient, query engsel.StoreQuery, number string, now time.Time) error {
	packages, err := client.GetStorePackages(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to fetch store packages: %w", err)
	}
	pkg, err := pickNumbered(packages, number, "store package", "kuota store packages")
	if err != nil {
		return err
	}

	if pkg.ActionType != model.StoreActionPDP {
		return writeLine(w, cli.FormatWarning(fmt.Sprintf("Unhandled action type %q (param %q).", pkg.ActionType, pkg.ActionParam)))
	}

	detail, err := client.GetPackage(ctx, pkg.ActionParam)
	if err != nil {
		return fmt.Errorf("failed to fetch package %s: %w", pkg.Title, err)
	}
	return cli.RenderPackageDetail(w, detail, pkg.ActionParam, now)
}
