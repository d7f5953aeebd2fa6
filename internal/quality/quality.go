// Package quality gates files before they reach the import backend.
package quality

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rmaran/assetflow/internal/config"
)

// Validator is the delegated integrity check, normally the import backend.
type Validator interface {
	Validate(path string) (ok bool, reason string)
}

// Result is the outcome of a gate check. Reason is set only on failure and
// names the first check that rejected the file.
type Result struct {
	OK     bool
	Reason string
}

func pass() Result { return Result{OK: true} }

func fail(format string, args ...any) Result {
	return Result{Reason: fmt.Sprintf(format, args...)}
}

// Check runs the gate checks in order, short-circuiting on the first
// failure: existence, size bounds, allowed extensions, delegated validation.
// A disabled policy passes everything.
func Check(path string, policy config.QualityPolicy, validator Validator) Result {
	if !policy.Enabled {
		return pass()
	}

	info, err := os.Stat(path)
	if err != nil {
		return fail("file does not exist: %s", path)
	}

	size := info.Size()
	maxBytes := policy.MaxFileSizeMB * 1_000_000
	if maxBytes > 0 && size > maxBytes {
		return fail("file too large: %d bytes > %d bytes", size, maxBytes)
	}
	if size < policy.MinFileSizeBytes {
		return fail("file too small: %d bytes < %d bytes", size, policy.MinFileSizeBytes)
	}

	if len(policy.AllowedExtensions) > 0 {
		ext := strings.ToLower(filepath.Ext(path))
		allowed := false
		for _, candidate := range policy.AllowedExtensions {
			if ext == strings.ToLower(candidate) {
				allowed = true
				break
			}
		}
		if !allowed {
			return fail("extension not allowed: %s", ext)
		}
	}

	if validator != nil {
		if ok, reason := validator.Validate(path); !ok {
			return Result{Reason: reason}
		}
	}

	return pass()
}
