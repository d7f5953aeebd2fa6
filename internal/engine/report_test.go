package engine

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmaran/assetflow/internal/backend"
	"github.com/rmaran/assetflow/internal/config"
)

func fixedSnapshot() Snapshot {
	return Snapshot{
		TotalProcessed:    10,
		SuccessfulImports: 7,
		FailedImports:     3,
		FilesPerCategory:  map[string]int64{"props": 4, "characters": 6},
		ProcessingTimes:   []time.Duration{time.Second},
		AverageTime:       1200 * time.Millisecond,
		MinTime:           800 * time.Millisecond,
		MaxTime:           2 * time.Second,
		SuccessRate:       70,
		Uptime:            90 * time.Second,
		MonitoringEnabled: true,
		WatchedFolders:    2,
		ImportRules:       3,
	}
}

func TestRenderReportDeterministic(t *testing.T) {
	folders := []config.WatchEntry{
		{Path: "/drop/chars", Category: "characters", Enabled: true},
		{Path: "/drop/props", Category: "props", Enabled: false},
	}

	first := RenderReport(fixedSnapshot(), folders)
	second := RenderReport(fixedSnapshot(), folders)
	assert.Equal(t, first, second, "identical snapshots must render byte-identical reports")
}

func TestRenderReportSections(t *testing.T) {
	folders := []config.WatchEntry{
		{Path: "/drop/chars", Category: "characters", Enabled: true},
	}
	report := RenderReport(fixedSnapshot(), folders)

	assert.Contains(t, report, "SYSTEM STATUS:")
	assert.Contains(t, report, "Monitoring Active: Yes")
	assert.Contains(t, report, "PROCESSING STATISTICS:")
	assert.Contains(t, report, "Success Rate: 70.0%")
	assert.Contains(t, report, "PERFORMANCE METRICS:")
	assert.Contains(t, report, "Average Processing Time: 1.200s")
	assert.Contains(t, report, "FILES BY CATEGORY:")
	assert.Contains(t, report, "/drop/chars (characters) - Enabled")

	// Categories render sorted.
	assert.Less(t,
		strings.Index(report, "characters: 6"),
		strings.Index(report, "props: 4"))
}

func TestRenderReportOmitsEmptySections(t *testing.T) {
	report := RenderReport(Snapshot{}, nil)

	assert.Contains(t, report, "Monitoring Active: No")
	assert.NotContains(t, report, "PERFORMANCE METRICS:")
	assert.NotContains(t, report, "FILES BY CATEGORY:")
	assert.NotContains(t, report, "Uptime:")
}

func TestWriteReport(t *testing.T) {
	eng := newTestEngine(t, backend.NewNoop())
	path := filepath.Join(t.TempDir(), "report.txt")

	report, err := eng.WriteReport(path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, report, string(data))
}
