package engine

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/rmaran/assetflow/internal/config"
)

const reportRule = "============================================================"

// RenderReport produces the automation report for a statistics snapshot and
// folder configuration. It is a pure function of its inputs: identical
// snapshots render byte-identical reports.
func RenderReport(snap Snapshot, folders []config.WatchEntry) string {
	var b strings.Builder

	line := func(format string, args ...any) {
		fmt.Fprintf(&b, format, args...)
		b.WriteByte('\n')
	}

	line(reportRule)
	line("ASSET AUTOMATION REPORT")
	line(reportRule)
	line("")

	line("SYSTEM STATUS:")
	active := "No"
	if snap.MonitoringEnabled {
		active = "Yes"
	}
	line("  Monitoring Active: %s", active)
	line("  Watched Folders: %d", snap.WatchedFolders)
	line("  Import Rules: %d", snap.ImportRules)
	if snap.Uptime > 0 {
		line("  Uptime: %s", snap.Uptime.Round(time.Millisecond).String())
	}
	line("")

	line("PROCESSING STATISTICS:")
	line("  Total Processed: %d", snap.TotalProcessed)
	line("  Successful: %d", snap.SuccessfulImports)
	line("  Failed: %d", snap.FailedImports)
	line("  Success Rate: %.1f%%", snap.SuccessRate)
	line("")

	if len(snap.ProcessingTimes) > 0 {
		line("PERFORMANCE METRICS:")
		line("  Average Processing Time: %.3fs", snap.AverageTime.Seconds())
		line("  Min Processing Time: %.3fs", snap.MinTime.Seconds())
		line("  Max Processing Time: %.3fs", snap.MaxTime.Seconds())
		line("")
	}

	if len(snap.FilesPerCategory) > 0 {
		line("FILES BY CATEGORY:")
		categories := make([]string, 0, len(snap.FilesPerCategory))
		for category := range snap.FilesPerCategory {
			categories = append(categories, category)
		}
		sort.Strings(categories)
		for _, category := range categories {
			line("  %s: %d", category, snap.FilesPerCategory[category])
		}
		line("")
	}

	line("CONFIGURATION:")
	for _, folder := range folders {
		status := "Enabled"
		if !folder.Enabled {
			status = "Disabled"
		}
		line("  %s (%s) - %s", folder.Path, folder.Category, status)
	}

	line(reportRule)

	return b.String()
}

// GenerateReport renders a report from the engine's current state.
func (e *Engine) GenerateReport() string {
	snap := e.Statistics()

	var folders []config.WatchEntry
	e.ReadPolicy(func(p *config.Policy) {
		folders = make([]config.WatchEntry, len(p.WatchFolders))
		copy(folders, p.WatchFolders)
	})

	return RenderReport(snap, folders)
}

// WriteReport renders the report and persists it as UTF-8 text.
func (e *Engine) WriteReport(path string) (string, error) {
	report := e.GenerateReport()
	if err := os.WriteFile(path, []byte(report), 0644); err != nil {
		return report, fmt.Errorf("write report: %w", err)
	}
	log.Info("report written", "path", path)
	return report, nil
}
