package config

import (
	"path/filepath"
	"time"
)

// WatchEntry is one folder under automation. Path is canonical (absolute,
// symlinks resolved) so the same folder can never be registered twice.
type WatchEntry struct {
	Path     string    `json:"path"`
	Category string    `json:"category"`
	Enabled  bool      `json:"enabled"`
	AddedAt  time.Time `json:"added_time"`
}

// ImportRule describes how files of one category are imported.
type ImportRule struct {
	Destination       string            `json:"destination"`
	TranslatorOptions map[string]string `json:"translator_options,omitempty"`
	FilePatterns      []string          `json:"file_patterns,omitempty"`
	AutoImport        bool              `json:"auto_import"`
	QualityOverrides  *QualityPolicy    `json:"quality_overrides,omitempty"`
}

// QualityPolicy gates files before they reach the import backend.
type QualityPolicy struct {
	Enabled           bool     `json:"enabled"`
	MaxFileSizeMB     int64    `json:"max_file_size_mb"`
	MinFileSizeBytes  int64    `json:"min_file_size_bytes"`
	AllowedExtensions []string `json:"allowed_extensions,omitempty"`
	ScanForViruses    bool     `json:"scan_for_viruses"`
}

// PerformanceHints are advisory. The engine reads ProcessingDelaySeconds for
// the debounce window; the rest is passed through to operators and backends.
type PerformanceHints struct {
	MaxConcurrentImports   int `json:"max_concurrent_imports"`
	ProcessingDelaySeconds int `json:"processing_delay_seconds"`
	BatchSize              int `json:"batch_size"`
	TimeoutSeconds         int `json:"timeout_seconds"`
}

// Policy is the persisted automation document.
type Policy struct {
	WatchFolders  []WatchEntry          `json:"watch_folders"`
	ImportRules   map[string]ImportRule `json:"import_rules"`
	QualityChecks QualityPolicy         `json:"quality_checks"`
	Performance   PerformanceHints      `json:"performance"`
}

func DefaultPolicy() *Policy {
	return &Policy{
		WatchFolders: []WatchEntry{},
		ImportRules: map[string]ImportRule{
			"characters": {
				Destination: "/Game/Characters/",
				TranslatorOptions: map[string]string{
					"EnableDetailedLogging": "true",
					"ValidateInputFiles":    "true",
				},
				FilePatterns: []string{"*character*", "*char*"},
				AutoImport:   true,
			},
			"environments": {
				Destination: "/Game/Environments/",
				TranslatorOptions: map[string]string{
					"EnableDetailedLogging": "true",
					"ValidateInputFiles":    "true",
				},
				FilePatterns: []string{"*env*", "*environment*", "*level*"},
				AutoImport:   true,
			},
			"props": {
				Destination: "/Game/Props/",
				TranslatorOptions: map[string]string{
					"EnableDetailedLogging": "true",
				},
				FilePatterns: []string{"*prop*", "*object*"},
				AutoImport:   true,
			},
		},
		QualityChecks: QualityPolicy{
			Enabled:           true,
			MaxFileSizeMB:     100,
			MinFileSizeBytes:  1024,
			AllowedExtensions: []string{".foo", ".bar"},
			ScanForViruses:    false,
		},
		Performance: PerformanceHints{
			MaxConcurrentImports:   3,
			ProcessingDelaySeconds: 2,
			BatchSize:              10,
			TimeoutSeconds:         300,
		},
	}
}

// CanonicalPath normalizes a folder path for WatchEntry identity: absolute,
// cleaned, symlinks resolved when the path exists.
func CanonicalPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	}
	return abs, nil
}

// AddWatchFolder registers a folder. Adding an already-registered canonical
// path is a no-op and returns false.
func (p *Policy) AddWatchFolder(path, category string, enabled bool) (WatchEntry, bool, error) {
	canonical, err := CanonicalPath(path)
	if err != nil {
		return WatchEntry{}, false, err
	}

	for _, entry := range p.WatchFolders {
		if entry.Path == canonical {
			return entry, false, nil
		}
	}

	entry := WatchEntry{
		Path:     canonical,
		Category: category,
		Enabled:  enabled,
		AddedAt:  time.Now(),
	}
	p.WatchFolders = append(p.WatchFolders, entry)
	return entry, true, nil
}

// RemoveWatchFolder deletes the entry for a canonical path. Returns false
// when no entry matched.
func (p *Policy) RemoveWatchFolder(path string) (bool, error) {
	canonical, err := CanonicalPath(path)
	if err != nil {
		return false, err
	}

	for i, entry := range p.WatchFolders {
		if entry.Path == canonical {
			p.WatchFolders = append(p.WatchFolders[:i], p.WatchFolders[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// RuleFor returns the import rule for a category, if one is configured.
func (p *Policy) RuleFor(category string) (ImportRule, bool) {
	rule, ok := p.ImportRules[category]
	return rule, ok
}

// EffectiveQuality resolves the quality policy for a rule: the rule's
// override replaces the global policy entirely when present.
func (r ImportRule) EffectiveQuality(global QualityPolicy) QualityPolicy {
	if r.QualityOverrides != nil {
		return *r.QualityOverrides
	}
	return global
}

// DebounceWindow derives the event quiescence delay from the performance
// hints, falling back to 2 seconds.
func (p *Policy) DebounceWindow() time.Duration {
	if p.Performance.ProcessingDelaySeconds > 0 {
		return time.Duration(p.Performance.ProcessingDelaySeconds) * time.Second
	}
	return 2 * time.Second
}
