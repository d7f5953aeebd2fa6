package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestAppendAndRecent(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Append(Record{
		Path:     "/watch/hero.foo",
		Category: "characters",
		Status:   StatusImported,
		Trigger:  "created",
		Duration: 42 * time.Millisecond,
	}))
	require.NoError(t, store.Append(Record{
		Path:     "/watch/level.bar",
		Category: "environments",
		Status:   StatusFailed,
		Reason:   "translator rejected payload",
		Trigger:  "modified",
	}))

	records, err := store.Recent(10)
	require.NoError(t, err)
	require.Len(t, records, 2)

	// Newest first.
	assert.Equal(t, "/watch/level.bar", records[0].Path)
	assert.Equal(t, StatusFailed, records[0].Status)
	assert.Equal(t, "translator rejected payload", records[0].Reason)

	assert.Equal(t, "/watch/hero.foo", records[1].Path)
	assert.Equal(t, StatusImported, records[1].Status)
	assert.Equal(t, 42*time.Millisecond, records[1].Duration)
	assert.False(t, records[1].ImportedAt.IsZero())
}

func TestRecentLimit(t *testing.T) {
	store := newTestStore(t)

	for i := 0; i < 5; i++ {
		require.NoError(t, store.Append(Record{
			Path:     "/watch/a.foo",
			Category: "props",
			Status:   StatusSkipped,
			Trigger:  "created",
		}))
	}

	records, err := store.Recent(3)
	require.NoError(t, err)
	assert.Len(t, records, 3)

	// Non-positive limit falls back to a default instead of returning nothing.
	records, err = store.Recent(0)
	require.NoError(t, err)
	assert.Len(t, records, 5)
}

func TestCountByStatus(t *testing.T) {
	store := newTestStore(t)

	for _, status := range []string{
		StatusImported, StatusImported, StatusImported,
		StatusFailed,
		StatusSkipped, StatusSkipped,
	} {
		require.NoError(t, store.Append(Record{
			Path:     "/watch/a.foo",
			Category: "props",
			Status:   status,
			Trigger:  "created",
		}))
	}

	counts, err := store.CountByStatus()
	require.NoError(t, err)
	assert.Equal(t, int64(3), counts[StatusImported])
	assert.Equal(t, int64(1), counts[StatusFailed])
	assert.Equal(t, int64(2), counts[StatusSkipped])
}

func TestReopenPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	store, err := NewStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Append(Record{
		Path:     "/watch/hero.foo",
		Category: "characters",
		Status:   StatusImported,
		Trigger:  "manual",
	}))
	require.NoError(t, store.Close())

	reopened, err := NewStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	records, err := reopened.Recent(10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "/watch/hero.foo", records[0].Path)
}
