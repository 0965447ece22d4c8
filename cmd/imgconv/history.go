// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/imgconv/internal/history"
	"github.com/pdiddy/imgconv/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past conversion batches",
	Long: `History lists batches recorded by previous convert runs, newest first,
with their per-file counts. Use --batch to print the individual file
results of one batch.`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().Int("limit", 0, "maximum number of batches to list (default 20)")
	historyCmd.Flags().String("batch", "", "show per-file results for this batch ID")
	historyCmd.Flags().String("history-dir", defaultHistoryDir, "directory for the batch history database")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	batchID, _ := cmd.Flags().GetString("batch")
	dir := stringSetting(cmd, "history-dir", "history.dir")

	store, err := history.NewStore(types.HistoryConfig{Dir: dir})
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := cmd.Context()

	if batchID != "" {
		results, err := store.Results(ctx, batchID)
		if err != nil {
			return err
		}
		if len(results) == 0 {
			fmt.Printf("no results for batch %s\n", batchID)
			return nil
		}
		for _, r := range results {
			if r.OutputPath != "" {
				fmt.Printf("%-10s %s -> %s\n", r.Status, r.SourcePath, r.OutputPath)
			} else if r.Error != "" {
				fmt.Printf("%-10s %s (%s)\n", r.Status, r.SourcePath, r.Error)
			} else {
				fmt.Printf("%-10s %s\n", r.Status, r.SourcePath)
			}
		}
		return nil
	}

	records, err := store.List(ctx, limit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(os.Stderr, "no batches recorded yet")
		return nil
	}

	for _, rec := range records {
		fmt.Printf("%s  %s  to=%s dpi=%d  %d converted, %d skipped, %d failed, %d cancelled\n",
			rec.StartedAt.Local().Format("2006-01-02 15:04:05"),
			rec.ID, rec.TargetFormat, rec.DPI,
			rec.Converted, rec.Skipped, rec.Failed, rec.Cancelled)
	}
	return nil
}
