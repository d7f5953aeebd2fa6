package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rmaran/assetflow/internal/engine"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether a watcher is running",
	RunE:  runStatus,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show processing statistics",
	RunE:  runStats,
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset the running watcher's statistics",
	RunE:  runReset,
}

func init() {
	rootCmd.AddCommand(statusCmd, statsCmd, resetCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	client, err := tryDial(cmd.Context())
	if err != nil {
		fmt.Println("Not running")
		return nil
	}
	defer client.Close()

	status, err := client.Status(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Printf("Running: %v\n", status.Running)
	fmt.Printf("Active watches: %d\n", status.ActiveWatches)
	printSnapshot(status.Statistics)
	return nil
}

func runStats(cmd *cobra.Command, args []string) error {
	client, err := tryDial(cmd.Context())
	if err != nil {
		return fmt.Errorf("no watcher running: %w", err)
	}
	defer client.Close()

	snap, err := client.Statistics(cmd.Context())
	if err != nil {
		return err
	}

	printSnapshot(snap)
	return nil
}

func runReset(cmd *cobra.Command, args []string) error {
	client, err := tryDial(cmd.Context())
	if err != nil {
		return fmt.Errorf("no watcher running: %w", err)
	}
	defer client.Close()

	if err := client.ResetStatistics(cmd.Context()); err != nil {
		return err
	}
	fmt.Println("Statistics reset")
	return nil
}

func printSnapshot(snap engine.Snapshot) {
	fmt.Printf("Processed: %d  Successful: %d  Failed: %d  Success rate: %.1f%%\n",
		snap.TotalProcessed, snap.SuccessfulImports, snap.FailedImports, snap.SuccessRate)
	if snap.Uptime > 0 {
		fmt.Printf("Uptime: %s\n", snap.Uptime.Round(time.Second))
	}
	if len(snap.FilesPerCategory) > 0 {
		fmt.Println("By category:")
		for category, count := range snap.FilesPerCategory {
			fmt.Printf("  %s: %d\n", category, count)
		}
	}
}
