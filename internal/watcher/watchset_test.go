package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmaran/assetflow/internal/backend"
	"github.com/rmaran/assetflow/internal/config"
	"github.com/rmaran/assetflow/internal/engine"
)

func newWatchHarness(t *testing.T) (*WatchSet, *backend.Noop) {
	t.Helper()

	store := config.NewStore(filepath.Join(t.TempDir(), "config.json"))
	policy := config.DefaultPolicy()
	policy.WatchFolders = nil
	require.NoError(t, store.Save(policy))

	noop := backend.NewNoop()
	eng := engine.New(store, policy, noop)

	ws := NewWatchSet(eng)
	ws.SetDebounceWindow(30 * time.Millisecond)
	return ws, noop
}

func writeAsset(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, make([]byte, 2048), 0644))
	return path
}

func importedFile(noop *backend.Noop, name string) func() bool {
	return func() bool {
		for _, path := range noop.ImportedPaths() {
			if strings.HasSuffix(path, name) {
				return true
			}
		}
		return false
	}
}

func TestWatchSetImportsNewFile(t *testing.T) {
	ws, noop := newWatchHarness(t)
	dir := t.TempDir()

	added, err := ws.AddFolder(dir, "characters")
	require.NoError(t, err)
	require.True(t, added)

	require.NoError(t, ws.Start(context.Background()))
	defer ws.Stop()
	assert.Equal(t, 1, ws.ActiveWatches())

	writeAsset(t, dir, "hero_character.foo")

	require.Eventually(t, importedFile(noop, "hero_character.foo"),
		5*time.Second, 20*time.Millisecond)
}

func TestWatchSetWatchesNewSubdirectories(t *testing.T) {
	ws, noop := newWatchHarness(t)
	dir := t.TempDir()

	_, err := ws.AddFolder(dir, "characters")
	require.NoError(t, err)
	require.NoError(t, ws.Start(context.Background()))
	defer ws.Stop()

	sub := filepath.Join(dir, "heroes")
	require.NoError(t, os.Mkdir(sub, 0755))

	// Give the watcher a moment to attach to the new directory.
	require.Eventually(t, func() bool {
		writeAsset(t, sub, "npc_char.foo")
		return importedFile(noop, "npc_char.foo")()
	}, 5*time.Second, 100*time.Millisecond)
}

func TestWatchSetLiveAttachDetach(t *testing.T) {
	ws, noop := newWatchHarness(t)

	require.NoError(t, ws.Start(context.Background()))
	defer ws.Stop()
	assert.Equal(t, 0, ws.ActiveWatches())

	dir := t.TempDir()
	added, err := ws.AddFolder(dir, "characters")
	require.NoError(t, err)
	require.True(t, added)
	assert.Equal(t, 1, ws.ActiveWatches())

	writeAsset(t, dir, "hero_character.foo")
	require.Eventually(t, importedFile(noop, "hero_character.foo"),
		5*time.Second, 20*time.Millisecond)

	removed, err := ws.RemoveFolder(dir)
	require.NoError(t, err)
	require.True(t, removed)
	assert.Equal(t, 0, ws.ActiveWatches())

	writeAsset(t, dir, "npc_char.foo")
	time.Sleep(200 * time.Millisecond)
	assert.False(t, importedFile(noop, "npc_char.foo")())
}

func TestWatchSetSkipsDisabledFolders(t *testing.T) {
	store := config.NewStore(filepath.Join(t.TempDir(), "config.json"))
	policy := config.DefaultPolicy()
	policy.WatchFolders = nil

	dir := t.TempDir()
	_, _, err := policy.AddWatchFolder(dir, "characters", false)
	require.NoError(t, err)
	require.NoError(t, store.Save(policy))

	eng := engine.New(store, policy, backend.NewNoop())
	ws := NewWatchSet(eng)
	ws.SetDebounceWindow(30 * time.Millisecond)

	require.NoError(t, ws.Start(context.Background()))
	defer ws.Stop()
	assert.Equal(t, 0, ws.ActiveWatches())
}

func TestWatchSetStartStopIdempotent(t *testing.T) {
	ws, _ := newWatchHarness(t)
	ctx := context.Background()

	require.NoError(t, ws.Start(ctx))
	require.NoError(t, ws.Start(ctx))
	assert.True(t, ws.Running())

	ws.Stop()
	assert.False(t, ws.Running())
	ws.Stop()
}
