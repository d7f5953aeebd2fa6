// Package backend defines the import backend contract the automation engine
// drives. Backends translate source asset files into content objects at a
// virtual destination path; the engine never looks inside that process.
package backend

import "time"

// TranslationStats are cumulative counters a backend keeps across imports.
type TranslationStats struct {
	TotalTranslations      int64         `json:"total_translations"`
	SuccessfulTranslations int64         `json:"successful_translations"`
	FailedTranslations     int64         `json:"failed_translations"`
	TotalTime              time.Duration `json:"total_time"`
}

// Info describes a backend implementation.
type Info struct {
	Name             string `json:"name"`
	Version          string `json:"version"`
	SupportedFormats string `json:"supported_formats"`
}

// Backend is the external import collaborator. All calls are synchronous;
// Import may block for the duration of the translation and is not cancelled
// by the engine.
type Backend interface {
	SupportedFormats() []string
	CanTranslate(path string) bool
	Validate(path string) (ok bool, reason string)
	SetOptions(options map[string]string)
	Options() map[string]string
	Import(path, destination string) error
	Statistics() TranslationStats
	ResetStatistics()
}
