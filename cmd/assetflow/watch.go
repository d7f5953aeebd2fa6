package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rmaran/assetflow/internal/control"
	"github.com/rmaran/assetflow/internal/logger"
	"github.com/rmaran/assetflow/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Monitor the configured folders and import matching files",
	Long: `Start a filesystem watch on every enabled folder in the policy and
process new or changed files through the quality gate, category rules and
the import backend. Runs in the foreground until interrupted; while
running, a control socket serves the status, stats, report, folder and
import commands.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	instance := control.NewInstance(stateDir())
	if err := instance.Acquire(); err != nil {
		return err
	}
	defer instance.Release()

	eng, cleanup, err := newLocalEngine(true)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	ws := watcher.NewWatchSet(eng)
	if err := ws.Start(ctx); err != nil {
		return fmt.Errorf("start monitoring: %w", err)
	}
	defer ws.Stop()

	server := control.NewServer(socketPath(), eng, ws, cancel)
	if err := server.Start(ctx); err != nil {
		ws.Stop()
		return err
	}
	defer server.Stop()

	logger.Info("assetflow watching", "folders", ws.ActiveWatches(), "config", configPath)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutting down", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("shutting down", "reason", "control request")
	}

	return nil
}
