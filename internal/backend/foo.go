package backend

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rmaran/assetflow/internal/logger"
)

var log = logger.ForComponent("backend")

// minConfidence rejects payloads whose header encoding cannot be identified
// with reasonable certainty.
const minConfidence = 0.5

// FooTranslator is the local import backend for foo-container assets. It
// stands in for an engine-side translator when running disconnected: files
// are validated and decoded, and imports are recorded, but no content
// objects are produced.
type FooTranslator struct {
	formats []string

	mu      sync.Mutex
	options map[string]string
	stats   TranslationStats
}

func NewFooTranslator() *FooTranslator {
	return &FooTranslator{
		formats: []string{".foo", ".bar"},
		options: make(map[string]string),
	}
}

func (t *FooTranslator) InfoData() Info {
	return Info{
		Name:             "Foo Translator (disconnected)",
		Version:          "1.0.0",
		SupportedFormats: strings.Join(t.formats, ","),
	}
}

func (t *FooTranslator) SupportedFormats() []string {
	formats := make([]string, len(t.formats))
	copy(formats, t.formats)
	return formats
}

func (t *FooTranslator) CanTranslate(path string) bool {
	if _, err := os.Stat(path); err != nil {
		return false
	}
	return t.supportsExtension(path)
}

func (t *FooTranslator) supportsExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, format := range t.formats {
		if ext == format {
			return true
		}
	}
	return false
}

func (t *FooTranslator) Validate(path string) (bool, string) {
	info, err := os.Stat(path)
	if err != nil {
		return false, fmt.Sprintf("file does not exist: %s", path)
	}
	if !t.supportsExtension(path) {
		return false, fmt.Sprintf("unsupported file format: %s", filepath.Ext(path))
	}
	if info.Size() == 0 {
		return false, fmt.Sprintf("empty payload: %s", path)
	}

	detected, err := ProbeFileEncoding(path)
	if err != nil {
		return false, fmt.Sprintf("unreadable payload: %v", err)
	}
	if detected.Confidence < minConfidence {
		return false, fmt.Sprintf("undecodable payload header (%s, confidence %.2f)", detected.Encoding, detected.Confidence)
	}

	return true, ""
}

func (t *FooTranslator) SetOptions(options map[string]string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for key, value := range options {
		t.options[key] = value
	}
}

func (t *FooTranslator) Options() map[string]string {
	t.mu.Lock()
	defer t.mu.Unlock()
	options := make(map[string]string, len(t.options))
	for key, value := range t.options {
		options[key] = value
	}
	return options
}

func (t *FooTranslator) ResetOptions() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.options = make(map[string]string)
}

// Import translates one file to the destination content path. The file is
// read and its payload decoded so that a disconnected run exercises the same
// I/O failure modes a real translation does.
func (t *FooTranslator) Import(path, destination string) error {
	start := time.Now()

	t.mu.Lock()
	t.stats.TotalTranslations++
	t.mu.Unlock()

	err := t.translate(path, destination)

	t.mu.Lock()
	if err != nil {
		t.stats.FailedTranslations++
	} else {
		t.stats.SuccessfulTranslations++
	}
	t.stats.TotalTime += time.Since(start)
	t.mu.Unlock()

	return err
}

func (t *FooTranslator) translate(path, destination string) error {
	if ok, reason := t.Validate(path); !ok {
		return fmt.Errorf("translate %s: %s", path, reason)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("translate %s: %w", path, err)
	}

	detected := DetectEncoding(data)
	payload := DecodeToUTF8(data, detected)

	log.Info("translated payload",
		"path", path,
		"destination", destination,
		"encoding", detected.Encoding,
		"chars", len(payload))
	return nil
}

func (t *FooTranslator) Statistics() TranslationStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stats
}

func (t *FooTranslator) ResetStatistics() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stats = TranslationStats{}
}
