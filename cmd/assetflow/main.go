package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rmaran/assetflow/internal/backend"
	"github.com/rmaran/assetflow/internal/config"
	"github.com/rmaran/assetflow/internal/control"
	"github.com/rmaran/assetflow/internal/engine"
	"github.com/rmaran/assetflow/internal/history"
	"github.com/rmaran/assetflow/internal/logger"
)

var Version = "dev"

var (
	configPath string
	logLevel   string
	logJSON    bool
)

var rootCmd = &cobra.Command{
	Use:     "assetflow",
	Short:   "Asset ingestion automation engine",
	Version: Version,
	Long: `assetflow watches folders for new asset files, classifies them by
category rules, gates them on quality checks and dispatches them to the
import backend. Run "assetflow watch" to start monitoring; the other
commands talk to a running watcher over its control socket or operate on
the policy directly.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		format := "text"
		if logJSON {
			format = "json"
		}
		logger.Init(logger.Config{
			Level:  logger.ParseLevel(logLevel),
			Format: format,
			Output: os.Stderr,
		})
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath(), "Path to the automation policy document")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "Emit logs as JSON")
}

func stateDir() string {
	return config.StateDir()
}

func socketPath() string {
	return control.SocketPath(stateDir())
}

func historyPath() string {
	return filepath.Join(stateDir(), "history.db")
}

// tryDial connects to a running watcher's control socket, or returns an
// error when none is listening.
func tryDial(ctx context.Context) (*control.Client, error) {
	return control.Dial(ctx, socketPath())
}

// newLocalEngine builds an engine over the policy document for commands
// that run without a daemon. The returned cleanup closes the history store.
func newLocalEngine(withHistory bool) (*engine.Engine, func(), error) {
	if err := config.EnsureStateDir(); err != nil {
		return nil, nil, fmt.Errorf("prepare state dir: %w", err)
	}

	store := config.NewStore(configPath)
	policy, err := store.Load()
	if err != nil {
		return nil, nil, err
	}

	eng := engine.New(store, policy, backend.NewFooTranslator())
	cleanup := func() {}

	if withHistory {
		hist, err := history.NewStore(historyPath())
		if err != nil {
			return nil, nil, fmt.Errorf("open history store: %w", err)
		}
		eng.AttachHistory(hist)
		cleanup = func() { hist.Close() }
	}

	return eng, cleanup, nil
}
