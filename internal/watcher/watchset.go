// Package watcher attaches filesystem watches to configured folders and
// funnels debounced events into the engine.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/rmaran/assetflow/internal/config"
	"github.com/rmaran/assetflow/internal/engine"
	"github.com/rmaran/assetflow/internal/logger"
)

var log = logger.ForComponent("watcher")

// WatchSet runs one recursive filesystem watch per enabled watch folder.
// Start and Stop are idempotent; folders can be attached and detached while
// running without touching the others.
type WatchSet struct {
	engine *engine.Engine

	mu      sync.Mutex
	running bool
	window  time.Duration
	ctx     context.Context
	cancel  context.CancelFunc
	watches map[string]*folderWatch
}

type folderWatch struct {
	entry     config.WatchEntry
	fsWatcher *fsnotify.Watcher
	debouncer *Debouncer
	done      chan struct{}
}

func NewWatchSet(eng *engine.Engine) *WatchSet {
	return &WatchSet{
		engine:  eng,
		watches: make(map[string]*folderWatch),
	}
}

// SetDebounceWindow overrides the policy-derived quiescence delay. Only
// affects watches attached afterwards; primarily useful for testing.
func (ws *WatchSet) SetDebounceWindow(window time.Duration) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	ws.window = window
}

func (ws *WatchSet) debounceWindowLocked() time.Duration {
	if ws.window > 0 {
		return ws.window
	}
	return ws.engine.DebounceWindow()
}

// Start attaches a watch for every enabled folder in the policy. Calling it
// while already running is a no-op. A folder that cannot be watched is
// logged and skipped; the others still start.
func (ws *WatchSet) Start(ctx context.Context) error {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	if ws.running {
		log.Warn("monitoring already running")
		return nil
	}

	ws.ctx, ws.cancel = context.WithCancel(ctx)

	var entries []config.WatchEntry
	ws.engine.ReadPolicy(func(p *config.Policy) {
		entries = make([]config.WatchEntry, len(p.WatchFolders))
		copy(entries, p.WatchFolders)
	})

	for _, entry := range entries {
		if !entry.Enabled {
			continue
		}
		if err := ws.startFolderLocked(entry); err != nil {
			log.Error("cannot monitor folder", "path", entry.Path, "error", err)
		}
	}

	ws.running = true
	ws.engine.SetMonitoring(true)
	log.Info("monitoring started", "folders", len(ws.watches))
	return nil
}

// Stop detaches every watch and joins their event loops. In-flight debounce
// batches are drained before return. Safe to call when not running.
func (ws *WatchSet) Stop() {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	if !ws.running {
		log.Warn("monitoring not running")
		return
	}

	ws.cancel()
	for path, watch := range ws.watches {
		ws.stopFolderLocked(watch)
		delete(ws.watches, path)
	}

	ws.running = false
	ws.engine.SetMonitoring(false)
	log.Info("monitoring stopped")
}

// Running reports whether the set is started. Primarily for status output.
func (ws *WatchSet) Running() bool {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return ws.running
}

// ActiveWatches returns the number of attached folder watches.
func (ws *WatchSet) ActiveWatches() int {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return len(ws.watches)
}

// AddFolder registers a folder in the policy and, when running, attaches
// its watch immediately. Adding an already-registered folder is a no-op
// returning false.
func (ws *WatchSet) AddFolder(path, category string) (bool, error) {
	if info, err := os.Stat(path); err != nil || !info.IsDir() {
		return false, fmt.Errorf("watch folder does not exist: %s", path)
	}

	var entry config.WatchEntry
	var added bool
	err := ws.engine.UpdatePolicy(func(p *config.Policy) error {
		var err error
		entry, added, err = p.AddWatchFolder(path, category, true)
		return err
	})
	if err != nil {
		return false, err
	}
	if !added {
		log.Warn("folder already being monitored", "path", path)
		return false, nil
	}

	log.Info("added watch folder", "path", entry.Path, "category", category)

	ws.mu.Lock()
	defer ws.mu.Unlock()
	if ws.running {
		if err := ws.startFolderLocked(entry); err != nil {
			log.Error("cannot monitor folder", "path", entry.Path, "error", err)
		}
	}
	return true, nil
}

// RemoveFolder drops a folder from the policy and detaches its watch when
// running.
func (ws *WatchSet) RemoveFolder(path string) (bool, error) {
	canonical, err := config.CanonicalPath(path)
	if err != nil {
		return false, err
	}

	var removed bool
	err = ws.engine.UpdatePolicy(func(p *config.Policy) error {
		var err error
		removed, err = p.RemoveWatchFolder(canonical)
		return err
	})
	if err != nil {
		return false, err
	}

	ws.mu.Lock()
	defer ws.mu.Unlock()
	if watch, ok := ws.watches[canonical]; ok {
		ws.stopFolderLocked(watch)
		delete(ws.watches, canonical)
		log.Info("removed watch folder", "path", canonical)
	}
	return removed, nil
}

func (ws *WatchSet) startFolderLocked(entry config.WatchEntry) error {
	if info, err := os.Stat(entry.Path); err != nil || !info.IsDir() {
		return fmt.Errorf("folder does not exist: %s", entry.Path)
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	watch := &folderWatch{
		entry:     entry,
		fsWatcher: fsWatcher,
		done:      make(chan struct{}),
	}
	watch.debouncer = NewDebouncer(ws.debounceWindowLocked(), func(event PendingEvent) {
		ws.engine.ProcessFile(event.Path, event.Category, event.Kind.String())
	})

	if err := addRecursive(fsWatcher, entry.Path); err != nil {
		fsWatcher.Close()
		return err
	}

	go watch.run(ws.ctx)

	ws.watches[entry.Path] = watch
	log.Info("monitoring folder", "path", entry.Path, "category", entry.Category)
	return nil
}

func (ws *WatchSet) stopFolderLocked(watch *folderWatch) {
	watch.fsWatcher.Close()
	<-watch.done
	watch.debouncer.Stop()
}

// addRecursive attaches the watch to a directory and all of its
// subdirectories.
func addRecursive(fsWatcher *fsnotify.Watcher, root string) error {
	if err := fsWatcher.Add(root); err != nil {
		return fmt.Errorf("watch %s: %w", root, err)
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		sub := filepath.Join(root, entry.Name())
		if err := addRecursive(fsWatcher, sub); err != nil {
			log.Debug("cannot watch subdirectory", "path", sub, "error", err)
		}
	}
	return nil
}

// run is the per-folder event loop. It exits when the fsnotify watcher is
// closed or the context is cancelled.
func (w *folderWatch) run(ctx context.Context) {
	defer close(w.done)

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handle(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.Error("watch error", "path", w.entry.Path, "error", err)
		}
	}
}

func (w *folderWatch) handle(event fsnotify.Event) {
	var kind EventKind
	switch {
	case event.Has(fsnotify.Create):
		kind = EventCreated
	case event.Has(fsnotify.Write):
		kind = EventModified
	default:
		return
	}

	info, err := os.Stat(event.Name)
	if err != nil {
		return
	}

	// New subdirectories join the recursive watch; directory events never
	// reach the debouncer.
	if info.IsDir() {
		if kind == EventCreated {
			if err := addRecursive(w.fsWatcher, event.Name); err != nil {
				log.Debug("cannot watch new subdirectory", "path", event.Name, "error", err)
			}
		}
		return
	}

	log.Debug("file event", "path", event.Name, "kind", kind.String())
	w.debouncer.Enqueue(event.Name, kind, w.entry.Category)
}
