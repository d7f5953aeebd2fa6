// Package rules maps files to import rules by category and filename pattern.
package rules

import (
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/rmaran/assetflow/internal/config"
)

// Match reports whether the file's basename matches any of the glob
// patterns, case-insensitively. An empty pattern list matches everything.
func Match(path string, patterns []string) bool {
	if len(patterns) == 0 {
		return true
	}

	name := strings.ToLower(filepath.Base(path))
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(strings.ToLower(pattern), name); err == nil && ok {
			return true
		}
	}
	return false
}

// Resolve looks up the import rule for a category. A category without a rule
// is unclassified; automation skips it.
func Resolve(category string, policy *config.Policy) (config.ImportRule, bool) {
	return policy.RuleFor(category)
}
