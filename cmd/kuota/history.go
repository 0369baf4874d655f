package main

import (
	"fmt"

	"github.com/Veraticus/kuota/internal/cli"
	"github.com/Veraticus/kuota/internal/model"
	"github.com/spf13/cobra"
)

func historyCmd() *cobra.Command {
	var (
		batchID string
		limit   int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded purchase attempts",
		Long: `Show recorded purchase attempts, newest first.

Totals marked with * were corrected by the backend and settled on the retry.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := initStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStorage(store)

			var records []model.PurchaseRecord
			if batchID != "" {
				records, err = store.GetPurchaseRecordsByBatch(cmd.Context(), batchID)
			} else {
				records, err = store.GetPurchaseRecords(cmd.Context(), limit)
			}
			if err != nil {
				return fmt.Errorf("failed to get purchase history: %w", err)
			}
			return cli.RenderHistory(cmd.OutOrStdout(), records)
		},
	}

	cmd.Flags().StringVar(&batchID, "batch", "", "show only the attempts of one batch")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of attempts to show (0 for all)")

	return cmd
}
