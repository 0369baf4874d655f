package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/Veraticus/kuota/internal/cli"
	"github.com/Veraticus/kuota/internal/common"
	"github.com/Veraticus/kuota/internal/model"
	"github.com/Veraticus/kuota/internal/service"
	"github.com/spf13/cobra"
)

func bookmarksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "bookmarks",
		Aliases: []string{"bookmark", "bm"},
		Short:   "Manage bookmarked packages",
	}

	cmd.AddCommand(bookmarksListCmd())
	cmd.AddCommand(bookmarksAddCmd())
	cmd.AddCommand(bookmarksRenameCmd())
	cmd.AddCommand(bookmarksDeleteCmd())

	return cmd
}

func bookmarksListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List bookmarks",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := initStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStorage(store)

			bookmarks, err := store.GetBookmarks(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to get bookmarks: %w", err)
			}
			return cli.RenderBookmarks(cmd.OutOrStdout(), bookmarks)
		},
	}
}

func bookmarksAddCmd() *cobra.Command {
	var bookmark model.Bookmark

	cmd := &cobra.Command{
		Use:   "add <family-code> <family-name>",
		Short: "Bookmark a package option",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := initStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStorage(store)

			bookmark.FamilyCode = args[0]
			bookmark.FamilyName = args[1]
			return addBookmark(cmd, store, &bookmark)
		},
	}

	cmd.Flags().StringVar(&bookmark.VariantName, "variant", "", "variant name")
	cmd.Flags().StringVar(&bookmark.OptionName, "option", "", "option name")
	cmd.Flags().IntVar(&bookmark.Order, "order", 0, "option order within the family")
	cmd.Flags().BoolVar(&bookmark.IsEnterprise, "enterprise", false, "the family is an enterprise family")

	return cmd
}

func addBookmark(cmd *cobra.Command, store service.Storage, bookmark *model.Bookmark) error {
	out := cmd.OutOrStdout()
	err := store.AddBookmark(cmd.Context(), bookmark)
	if errors.Is(err, common.ErrDuplicateEntry) {
		return writeLine(out, cli.FormatWarning("Bookmark already exists."))
	}
	if err != nil {
		return fmt.Errorf("failed to add bookmark: %w", err)
	}
	return writeLine(out, cli.FormatSuccess("Bookmark added."))
}

func bookmarksRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <family-code|number> <new-name>",
		Short: "Rename every bookmark of a family",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := initStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStorage(store)

			code, err := resolveFamilyCode(cmd, store, args[0])
			if err != nil {
				return err
			}
			if err := store.RenameBookmarkFamily(cmd.Context(), code, args[1]); err != nil {
				return bookmarkNotFound(err, args[0])
			}
			return writeLine(cmd.OutOrStdout(), cli.FormatSuccess("Bookmark renamed."))
		},
	}
}

func bookmarksDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <family-code|number>",
		Short: "Delete every bookmark of a family",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := initStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStorage(store)

			code, err := resolveFamilyCode(cmd, store, args[0])
			if err != nil {
				return err
			}
			if err := store.DeleteBookmarkFamily(cmd.Context(), code); err != nil {
				return bookmarkNotFound(err, args[0])
			}
			return writeLine(cmd.OutOrStdout(), cli.FormatSuccess("Bookmark deleted."))
		},
	}
}

// resolveFamilyCode accepts either a family code or the number shown by
// "bookmarks list".
func resolveFamilyCode(cmd *cobra.Command, store service.Storage, arg string) (string, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return arg, nil
	}

	bookmarks, err := store.GetBookmarks(cmd.Context())
	if err != nil {
		return "", fmt.Errorf("failed to get bookmarks: %w", err)
	}
	if n < 1 || n > len(bookmarks) {
		return "", common.NewUserError(fmt.Sprintf("No bookmark number %d", n), common.ErrNotFound)
	}
	return bookmarks[n-1].FamilyCode, nil
}

func bookmarkNotFound(err error, arg string) error {
	if errors.Is(err, common.ErrNotFound) {
		return common.NewUserError("No bookmark for "+arg, err)
	}
	return err
}

func writeLine(w io.Writer, s string) error {
	_, err := fmt.Fprintln(w, s)
	return err
}
