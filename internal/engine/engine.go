// Package engine orchestrates the import of asset files: quality gating,
// rule classification, backend dispatch and statistics.
package engine

import (
	"fmt"
	"sync"
	"time"

	"github.com/rmaran/assetflow/internal/backend"
	"github.com/rmaran/assetflow/internal/config"
	"github.com/rmaran/assetflow/internal/history"
	"github.com/rmaran/assetflow/internal/logger"
	"github.com/rmaran/assetflow/internal/quality"
	"github.com/rmaran/assetflow/internal/rules"
)

var log = logger.ForComponent("engine")

// Engine owns the statistics counters and drives the per-file import path.
// The watcher-triggered and explicit batch paths both run through it, so all
// counter updates serialize on statsMu.
type Engine struct {
	store   *config.Store
	backend backend.Backend
	history *history.Store

	policyMu sync.RWMutex
	policy   *config.Policy

	statsMu sync.Mutex
	stats   statsState
}

func New(store *config.Store, policy *config.Policy, b backend.Backend) *Engine {
	return &Engine{
		store:   store,
		backend: b,
		policy:  policy,
		stats:   newStatsState(),
	}
}

// AttachHistory enables persistence of per-file outcomes.
func (e *Engine) AttachHistory(store *history.Store) {
	e.history = store
}

// ReadPolicy runs fn with the policy under a read lock. fn must not retain
// the pointer.
func (e *Engine) ReadPolicy(fn func(*config.Policy)) {
	e.policyMu.RLock()
	defer e.policyMu.RUnlock()
	fn(e.policy)
}

// UpdatePolicy runs fn with the policy under the write lock and persists the
// result through the config store.
func (e *Engine) UpdatePolicy(fn func(*config.Policy) error) error {
	e.policyMu.Lock()
	defer e.policyMu.Unlock()

	if err := fn(e.policy); err != nil {
		return err
	}
	return e.store.Save(e.policy)
}

// DebounceWindow returns the quiescence delay derived from the policy.
func (e *Engine) DebounceWindow() time.Duration {
	e.policyMu.RLock()
	defer e.policyMu.RUnlock()
	return e.policy.DebounceWindow()
}

// ProcessFile runs one file through the automation path: rule resolution,
// quality gate, pattern match, backend import. Returns true only on a
// successful import. A classification miss (no rule, auto-import off, or
// pattern mismatch) is a skip, not a failure; only gate rejections and
// backend errors count as failed imports.
func (e *Engine) ProcessFile(path, category, trigger string) bool {
	start := time.Now()
	defer func() {
		e.statsMu.Lock()
		e.stats.recordDuration(time.Since(start))
		e.statsMu.Unlock()
	}()

	e.statsMu.Lock()
	e.stats.totalProcessed++
	e.stats.filesPerCategory[category]++
	e.stats.lastActivity = time.Now()
	e.statsMu.Unlock()

	e.policyMu.RLock()
	rule, ok := rules.Resolve(category, e.policy)
	globalQuality := e.policy.QualityChecks
	e.policyMu.RUnlock()

	if !ok {
		log.Warn("no import rule for category", "category", category, "path", path)
		e.recordOutcome(path, category, "", history.StatusSkipped, "no import rule", trigger, start)
		return false
	}

	if !rule.AutoImport {
		log.Info("auto-import disabled for category", "category", category, "path", path)
		e.recordOutcome(path, category, rule.Destination, history.StatusSkipped, "auto-import disabled", trigger, start)
		return false
	}

	if result := quality.Check(path, rule.EffectiveQuality(globalQuality), e.backend); !result.OK {
		log.Error("quality check failed", "path", path, "reason", result.Reason)
		e.statsMu.Lock()
		e.stats.failedImports++
		e.statsMu.Unlock()
		e.recordOutcome(path, category, rule.Destination, history.StatusFailed, result.Reason, trigger, start)
		return false
	}

	if !rules.Match(path, rule.FilePatterns) {
		log.Info("file does not match category patterns", "category", category, "path", path)
		e.recordOutcome(path, category, rule.Destination, history.StatusSkipped, "pattern mismatch", trigger, start)
		return false
	}

	if len(rule.TranslatorOptions) > 0 {
		e.backend.SetOptions(rule.TranslatorOptions)
	}

	err := e.safeImport(path, rule.Destination)

	e.statsMu.Lock()
	if err != nil {
		e.stats.failedImports++
	} else {
		e.stats.successfulImports++
	}
	e.statsMu.Unlock()

	if err != nil {
		log.Error("import failed", "path", path, "error", err)
		e.recordOutcome(path, category, rule.Destination, history.StatusFailed, err.Error(), trigger, start)
		return false
	}

	log.Info("imported", "path", path, "destination", rule.Destination, "trigger", trigger)
	e.recordOutcome(path, category, rule.Destination, history.StatusImported, "", trigger, start)
	return true
}

// safeImport shields the engine from a panicking backend; a panic is
// reported as an import error.
func (e *Engine) safeImport(path, destination string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("backend panic: %v", r)
		}
	}()
	return e.backend.Import(path, destination)
}

func (e *Engine) recordOutcome(path, category, destination, status, reason, trigger string, start time.Time) {
	if e.history == nil {
		return
	}

	record := history.Record{
		Path:        path,
		Category:    category,
		Destination: destination,
		Status:      status,
		Reason:      reason,
		Trigger:     trigger,
		Duration:    time.Since(start),
	}
	if err := e.history.Append(record); err != nil {
		log.Warn("failed to record import history", "path", path, "error", err)
	}
}
