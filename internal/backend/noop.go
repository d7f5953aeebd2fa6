package backend

import (
	"errors"
	"sync"
	"time"
)

// Noop is a scriptable backend for tests and dry runs. FailPaths marks
// specific files as failing; FailAll fails everything.
type Noop struct {
	FailAll   bool
	FailPaths map[string]bool
	Delay     time.Duration

	mu       sync.Mutex
	stats    TranslationStats
	options  map[string]string
	Imported []string
}

func NewNoop() *Noop {
	return &Noop{
		FailPaths: make(map[string]bool),
		options:   make(map[string]string),
	}
}

func (n *Noop) SupportedFormats() []string { return []string{".foo", ".bar"} }

func (n *Noop) CanTranslate(path string) bool { return true }

func (n *Noop) Validate(path string) (bool, string) { return true, "" }

func (n *Noop) SetOptions(options map[string]string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for key, value := range options {
		n.options[key] = value
	}
}

func (n *Noop) Options() map[string]string {
	n.mu.Lock()
	defer n.mu.Unlock()
	options := make(map[string]string, len(n.options))
	for key, value := range n.options {
		options[key] = value
	}
	return options
}

func (n *Noop) Import(path, destination string) error {
	if n.Delay > 0 {
		time.Sleep(n.Delay)
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	n.stats.TotalTranslations++
	if n.FailAll || n.FailPaths[path] {
		n.stats.FailedTranslations++
		return errors.New("import rejected")
	}

	n.stats.SuccessfulTranslations++
	n.Imported = append(n.Imported, path)
	return nil
}

// ImportedPaths returns a copy of the paths imported so far. Safe to call
// while imports are in flight.
func (n *Noop) ImportedPaths() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	paths := make([]string, len(n.Imported))
	copy(paths, n.Imported)
	return paths
}

func (n *Noop) Statistics() TranslationStats {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.stats
}

func (n *Noop) ResetStatistics() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.stats = TranslationStats{}
}
