package engine

import (
	"time"
)

// durationHistoryCap bounds the retained per-file processing times.
const durationHistoryCap = 100

// statsState is the engine's mutable counter set. Guarded by Engine.statsMu;
// the engine is its sole owner.
type statsState struct {
	totalProcessed    int64
	successfulImports int64
	failedImports     int64
	filesPerCategory  map[string]int64
	processingTimes   []time.Duration
	lastActivity      time.Time
	startTime         time.Time
	monitoring        bool
}

func newStatsState() statsState {
	return statsState{
		filesPerCategory: make(map[string]int64),
	}
}

func (s *statsState) recordDuration(d time.Duration) {
	s.processingTimes = append(s.processingTimes, d)
	if len(s.processingTimes) > durationHistoryCap {
		s.processingTimes = s.processingTimes[len(s.processingTimes)-durationHistoryCap:]
	}
}

// Snapshot is an immutable view of the counters plus derived metrics.
type Snapshot struct {
	TotalProcessed    int64            `json:"total_processed"`
	SuccessfulImports int64            `json:"successful_imports"`
	FailedImports     int64            `json:"failed_imports"`
	FilesPerCategory  map[string]int64 `json:"files_per_category"`
	ProcessingTimes   []time.Duration  `json:"-"`
	AverageTime       time.Duration    `json:"average_processing_time"`
	MinTime           time.Duration    `json:"min_processing_time"`
	MaxTime           time.Duration    `json:"max_processing_time"`
	SuccessRate       float64          `json:"success_rate"`
	LastActivity      time.Time        `json:"last_activity"`
	StartTime         time.Time        `json:"start_time"`
	Uptime            time.Duration    `json:"uptime"`
	MonitoringEnabled bool             `json:"monitoring_enabled"`
	WatchedFolders    int              `json:"watched_folders"`
	ImportRules       int              `json:"import_rules"`
}

func (s *statsState) snapshot() Snapshot {
	snap := Snapshot{
		TotalProcessed:    s.totalProcessed,
		SuccessfulImports: s.successfulImports,
		FailedImports:     s.failedImports,
		FilesPerCategory:  make(map[string]int64, len(s.filesPerCategory)),
		ProcessingTimes:   make([]time.Duration, len(s.processingTimes)),
		LastActivity:      s.lastActivity,
		StartTime:         s.startTime,
		MonitoringEnabled: s.monitoring,
	}

	for category, count := range s.filesPerCategory {
		snap.FilesPerCategory[category] = count
	}
	copy(snap.ProcessingTimes, s.processingTimes)

	if len(s.processingTimes) > 0 {
		var total time.Duration
		snap.MinTime = s.processingTimes[0]
		snap.MaxTime = s.processingTimes[0]
		for _, d := range s.processingTimes {
			total += d
			if d < snap.MinTime {
				snap.MinTime = d
			}
			if d > snap.MaxTime {
				snap.MaxTime = d
			}
		}
		snap.AverageTime = total / time.Duration(len(s.processingTimes))
	}

	if s.totalProcessed > 0 {
		snap.SuccessRate = float64(s.successfulImports) / float64(s.totalProcessed) * 100
	}

	if !s.startTime.IsZero() {
		snap.Uptime = time.Since(s.startTime)
	}

	return snap
}

// Statistics returns the live counters with derived fields, plus
// configuration shape counts.
func (e *Engine) Statistics() Snapshot {
	e.statsMu.Lock()
	snap := e.stats.snapshot()
	e.statsMu.Unlock()

	e.policyMu.RLock()
	snap.WatchedFolders = len(e.policy.WatchFolders)
	snap.ImportRules = len(e.policy.ImportRules)
	e.policyMu.RUnlock()

	return snap
}

// ResetStatistics zeroes every counter. When monitoring is active the start
// timestamp re-arms to now; otherwise it clears.
func (e *Engine) ResetStatistics() {
	e.statsMu.Lock()
	defer e.statsMu.Unlock()

	monitoring := e.stats.monitoring
	e.stats = newStatsState()
	e.stats.monitoring = monitoring
	if monitoring {
		e.stats.startTime = time.Now()
	}

	log.Info("statistics reset")
}

// SetMonitoring marks monitoring as started or stopped for uptime tracking.
// Starting records the start timestamp; stopping keeps it so uptime remains
// meaningful until a reset.
func (e *Engine) SetMonitoring(active bool) {
	e.statsMu.Lock()
	defer e.statsMu.Unlock()

	e.stats.monitoring = active
	if active && e.stats.startTime.IsZero() {
		e.stats.startTime = time.Now()
	}
}
