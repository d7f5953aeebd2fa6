package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rmaran/assetflow/internal/history"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent import outcomes",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of records to show")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	store, err := history.NewStore(historyPath())
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.Recent(historyLimit)
	if err != nil {
		return err
	}

	if len(records) == 0 {
		fmt.Println("No import history")
		return nil
	}

	for _, record := range records {
		line := fmt.Sprintf("%s  %-8s  %s  [%s]",
			record.ImportedAt.Local().Format(time.DateTime),
			record.Status, record.Path, record.Category)
		if record.Reason != "" {
			line += "  " + record.Reason
		}
		fmt.Println(line)
	}
	return nil
}
