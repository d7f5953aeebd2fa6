package engine

import (
	"fmt"
	"time"
)

// FileResult is one file's outcome within a batch.
type FileResult struct {
	File        string `json:"file"`
	Status      string `json:"status"` // success | failed | error
	Destination string `json:"destination,omitempty"`
	Error       string `json:"error,omitempty"`
}

// BatchResult summarizes one batch-import invocation. Immutable once
// returned.
type BatchResult struct {
	TotalFiles  int           `json:"total_files"`
	Successful  int           `json:"successful"`
	Failed      int           `json:"failed"`
	StartTime   time.Time     `json:"start_time"`
	EndTime     time.Time     `json:"end_time"`
	Duration    time.Duration `json:"duration"`
	SuccessRate float64       `json:"success_rate"`
	Details     []FileResult  `json:"details"`
}

// BatchImport imports files sequentially, straight to the backend. Batch
// callers have already vetted their file list, so the quality gate and
// pattern classifier do not apply. A failing or panicking backend never
// aborts the rest of the batch.
func (e *Engine) BatchImport(paths []string, destination, category string) *BatchResult {
	result := &BatchResult{
		TotalFiles: len(paths),
		StartTime:  time.Now(),
		Details:    make([]FileResult, 0, len(paths)),
	}

	log.Info("starting batch import", "files", len(paths), "destination", destination, "category", category)

	for i, path := range paths {
		start := time.Now()
		panicked, err := e.batchImportOne(path, destination)

		e.statsMu.Lock()
		e.stats.totalProcessed++
		e.stats.filesPerCategory[category]++
		e.stats.lastActivity = time.Now()
		if err != nil {
			e.stats.failedImports++
		} else {
			e.stats.successfulImports++
		}
		e.stats.recordDuration(time.Since(start))
		e.statsMu.Unlock()

		switch {
		case panicked:
			result.Failed++
			result.Details = append(result.Details, FileResult{File: path, Status: "error", Error: err.Error()})
			e.recordOutcome(path, category, destination, "failed", err.Error(), "batch", start)
		case err != nil:
			result.Failed++
			result.Details = append(result.Details, FileResult{File: path, Status: "failed", Error: err.Error()})
			e.recordOutcome(path, category, destination, "failed", err.Error(), "batch", start)
		default:
			result.Successful++
			result.Details = append(result.Details, FileResult{File: path, Status: "success", Destination: destination})
			e.recordOutcome(path, category, destination, "imported", "", "batch", start)
		}

		if (i+1)%10 == 0 || i+1 == len(paths) {
			progress := float64(i+1) / float64(len(paths)) * 100
			log.Info("batch import progress",
				"percent", fmt.Sprintf("%.1f", progress),
				"done", i+1,
				"total", len(paths))
		}
	}

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(result.StartTime)
	if result.TotalFiles > 0 {
		result.SuccessRate = float64(result.Successful) / float64(result.TotalFiles) * 100
	}

	log.Info("batch import completed",
		"successful", result.Successful,
		"total", result.TotalFiles,
		"success_rate", fmt.Sprintf("%.1f", result.SuccessRate))

	return result
}

// batchImportOne dispatches one file, separating backend errors from
// backend panics so the batch detail can tag them differently.
func (e *Engine) batchImportOne(path, destination string) (panicked bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("backend panic: %v", r)
			panicked = true
		}
	}()
	return false, e.backend.Import(path, destination)
}
