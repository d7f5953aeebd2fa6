package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmaran/assetflow/internal/backend"
	"github.com/rmaran/assetflow/internal/config"
)

func newTestEngine(t *testing.T, b backend.Backend) *Engine {
	t.Helper()
	store := config.NewStore(filepath.Join(t.TempDir(), "config.json"))
	policy, err := store.Load()
	require.NoError(t, err)
	return New(store, policy, b)
}

func writeAsset(t *testing.T, dir, name string, size int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0644))
	return path
}

func TestProcessFileSuccess(t *testing.T) {
	noop := backend.NewNoop()
	eng := newTestEngine(t, noop)
	path := writeAsset(t, t.TempDir(), "Hero_Character.foo", 2048)

	ok := eng.ProcessFile(path, "characters", "manual")
	assert.True(t, ok)

	snap := eng.Statistics()
	assert.EqualValues(t, 1, snap.TotalProcessed)
	assert.EqualValues(t, 1, snap.SuccessfulImports)
	assert.EqualValues(t, 0, snap.FailedImports)
	assert.EqualValues(t, 1, snap.FilesPerCategory["characters"])
	assert.Equal(t, []string{path}, noop.Imported)
}

func TestProcessFileAppliesRuleOptions(t *testing.T) {
	noop := backend.NewNoop()
	eng := newTestEngine(t, noop)
	path := writeAsset(t, t.TempDir(), "Hero_Character.foo", 2048)

	eng.ProcessFile(path, "characters", "manual")
	assert.Equal(t, "true", noop.Options()["EnableDetailedLogging"])
}

func TestProcessFileUnknownCategorySkips(t *testing.T) {
	eng := newTestEngine(t, backend.NewNoop())
	path := writeAsset(t, t.TempDir(), "thing.foo", 2048)

	ok := eng.ProcessFile(path, "vehicles", "manual")
	assert.False(t, ok)

	snap := eng.Statistics()
	assert.EqualValues(t, 1, snap.TotalProcessed)
	assert.EqualValues(t, 0, snap.FailedImports, "classification miss is not a failure")
	assert.EqualValues(t, 0, snap.SuccessfulImports)
}

func TestProcessFileAutoImportDisabledSkips(t *testing.T) {
	eng := newTestEngine(t, backend.NewNoop())
	require.NoError(t, eng.UpdatePolicy(func(p *config.Policy) error {
		rule := p.ImportRules["characters"]
		rule.AutoImport = false
		p.ImportRules["characters"] = rule
		return nil
	}))
	path := writeAsset(t, t.TempDir(), "Hero_Character.foo", 2048)

	ok := eng.ProcessFile(path, "characters", "manual")
	assert.False(t, ok)
	assert.EqualValues(t, 0, eng.Statistics().FailedImports)
}

func TestProcessFileQualityFailureCountsFailed(t *testing.T) {
	eng := newTestEngine(t, backend.NewNoop())
	path := writeAsset(t, t.TempDir(), "Hero_Character.foo", 0) // below min size

	ok := eng.ProcessFile(path, "characters", "created")
	assert.False(t, ok)

	snap := eng.Statistics()
	assert.EqualValues(t, 1, snap.FailedImports)
	assert.EqualValues(t, 0, snap.SuccessfulImports)
}

func TestProcessFilePatternMissSkipsNotFails(t *testing.T) {
	eng := newTestEngine(t, backend.NewNoop())
	path := writeAsset(t, t.TempDir(), "Prop_Barrel.foo", 2048)

	ok := eng.ProcessFile(path, "characters", "created")
	assert.False(t, ok)

	snap := eng.Statistics()
	assert.EqualValues(t, 1, snap.TotalProcessed)
	assert.EqualValues(t, 0, snap.FailedImports, "pattern miss must not count as failed")
}

func TestProcessFileBackendErrorCountsFailed(t *testing.T) {
	noop := backend.NewNoop()
	noop.FailAll = true
	eng := newTestEngine(t, noop)
	path := writeAsset(t, t.TempDir(), "Hero_Character.foo", 2048)

	ok := eng.ProcessFile(path, "characters", "created")
	assert.False(t, ok)
	assert.EqualValues(t, 1, eng.Statistics().FailedImports)
}

func TestProcessFileRecordsDurationOnEveryPath(t *testing.T) {
	eng := newTestEngine(t, backend.NewNoop())
	path := writeAsset(t, t.TempDir(), "Hero_Character.foo", 2048)

	eng.ProcessFile(path, "characters", "manual")
	eng.ProcessFile(path, "vehicles", "manual")
	eng.ProcessFile("/missing.foo", "characters", "manual")

	assert.Len(t, eng.Statistics().ProcessingTimes, 3)
}

func TestDurationHistoryBounded(t *testing.T) {
	eng := newTestEngine(t, backend.NewNoop())

	for i := 0; i < durationHistoryCap+20; i++ {
		eng.ProcessFile("/missing.foo", "vehicles", "manual")
	}

	assert.Len(t, eng.Statistics().ProcessingTimes, durationHistoryCap)
}

func TestBatchImportCountsAndRate(t *testing.T) {
	noop := backend.NewNoop()
	noop.FailPaths["/b.foo"] = true
	noop.FailPaths["/d.foo"] = true
	eng := newTestEngine(t, noop)

	result := eng.BatchImport([]string{"/a.foo", "/b.foo", "/c.foo", "/d.foo", "/e.foo"}, "/Game/Batch/", "batch")

	assert.Equal(t, 5, result.TotalFiles)
	assert.Equal(t, 3, result.Successful)
	assert.Equal(t, 2, result.Failed)
	assert.InDelta(t, 60.0, result.SuccessRate, 0.001)
	require.Len(t, result.Details, 5)
	assert.Equal(t, "failed", result.Details[1].Status)
	assert.Equal(t, "success", result.Details[0].Status)
	assert.False(t, result.EndTime.Before(result.StartTime))
}

func TestBatchImportEmpty(t *testing.T) {
	eng := newTestEngine(t, backend.NewNoop())
	result := eng.BatchImport(nil, "/Game/Batch/", "batch")

	assert.Equal(t, 0, result.TotalFiles)
	assert.Equal(t, 0.0, result.SuccessRate)
}

type panickyBackend struct {
	*backend.Noop
	panicOn string
}

func (p *panickyBackend) Import(path, destination string) error {
	if path == p.panicOn {
		panic("translator crashed")
	}
	return p.Noop.Import(path, destination)
}

func TestBatchImportSurvivesBackendPanic(t *testing.T) {
	b := &panickyBackend{Noop: backend.NewNoop(), panicOn: "/b.foo"}
	eng := newTestEngine(t, b)

	result := eng.BatchImport([]string{"/a.foo", "/b.foo", "/c.foo"}, "/Game/Batch/", "batch")

	assert.Equal(t, 2, result.Successful)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, "error", result.Details[1].Status)
	assert.Contains(t, result.Details[1].Error, "panic")
}

func TestResetStatistics(t *testing.T) {
	eng := newTestEngine(t, backend.NewNoop())
	path := writeAsset(t, t.TempDir(), "Hero_Character.foo", 2048)
	eng.ProcessFile(path, "characters", "manual")

	t.Run("WithoutMonitoring", func(t *testing.T) {
		eng.ResetStatistics()
		snap := eng.Statistics()
		assert.EqualValues(t, 0, snap.TotalProcessed)
		assert.EqualValues(t, 0, snap.SuccessfulImports)
		assert.Empty(t, snap.FilesPerCategory)
		assert.Zero(t, snap.Uptime, "uptime absent when monitoring never started")
	})

	t.Run("WithMonitoringReArmsStart", func(t *testing.T) {
		eng.SetMonitoring(true)
		eng.ResetStatistics()
		snap := eng.Statistics()
		assert.False(t, snap.StartTime.IsZero())
		assert.True(t, snap.MonitoringEnabled)
	})
}

func TestStatisticsSuccessRateZeroWhenIdle(t *testing.T) {
	eng := newTestEngine(t, backend.NewNoop())
	snap := eng.Statistics()
	assert.Equal(t, 0.0, snap.SuccessRate)
	assert.EqualValues(t, 3, snap.ImportRules)
}
