package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var reportOutput string

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate the automation report",
	Long: `Render the automation report. When a watcher is running the report
reflects its live statistics; otherwise it is rendered from the policy
document with zeroed counters.`,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVarP(&reportOutput, "output", "o", "", "Write the report to a file")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	if client, err := tryDial(cmd.Context()); err == nil {
		defer client.Close()
		report, err := client.Report(cmd.Context(), reportOutput)
		if err != nil {
			return err
		}
		fmt.Print(report)
		return nil
	}

	eng, cleanup, err := newLocalEngine(false)
	if err != nil {
		return err
	}
	defer cleanup()

	report := eng.GenerateReport()
	if reportOutput != "" {
		if err := os.WriteFile(reportOutput, []byte(report), 0644); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	}
	fmt.Print(report)
	return nil
}
