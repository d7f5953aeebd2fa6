package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rmaran/assetflow/internal/engine"
)

var (
	importDest     string
	importCategory string
	importRemote   bool
)

var importCmd = &cobra.Command{
	Use:   "import <file>...",
	Short: "Batch-import files directly to the backend",
	Long: `Import the given files sequentially, bypassing the quality gate and
pattern rules. With --remote the batch runs inside an already-running
watcher so its statistics pick up the results.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVarP(&importDest, "dest", "d", "/Game/ImportedAssets/", "Destination content path")
	importCmd.Flags().StringVar(&importCategory, "category", "batch", "Category recorded for the batch")
	importCmd.Flags().BoolVar(&importRemote, "remote", false, "Run the batch in the running watcher")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	var result *engine.BatchResult

	if importRemote {
		client, err := tryDial(cmd.Context())
		if err != nil {
			return err
		}
		defer client.Close()

		result, err = client.BatchImport(cmd.Context(), args, importDest, importCategory)
		if err != nil {
			return err
		}
	} else {
		eng, cleanup, err := newLocalEngine(true)
		if err != nil {
			return err
		}
		defer cleanup()

		result = eng.BatchImport(args, importDest, importCategory)
	}

	fmt.Printf("Imported %d/%d files (%.1f%%) in %s\n",
		result.Successful, result.TotalFiles, result.SuccessRate, result.Duration.Round(time.Millisecond))
	for _, detail := range result.Details {
		if detail.Status != "success" {
			fmt.Printf("  %s: %s (%s)\n", detail.Status, detail.File, detail.Error)
		}
	}

	if result.Failed > 0 {
		return fmt.Errorf("%d of %d files failed", result.Failed, result.TotalFiles)
	}
	return nil
}
