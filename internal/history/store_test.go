package history

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, maxEntries int) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "history", "history.db"), maxEntries)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStore_AddAndGetRecent(t *testing.T) {
	store := newTestStore(t, 0)

	executed := time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)
	require.NoError(t, store.Add(Entry{
		ConnectionName: "sa@db1",
		DatabaseName:   "master",
		Query:          "SELECT 1",
		ExecutedAt:     executed,
		Duration:       42 * time.Millisecond,
		Success:        true,
	}))
	require.NoError(t, store.Add(Entry{
		ConnectionName: "sa@db1",
		DatabaseName:   "sales",
		Query:          "DELETE FROM orders",
		Duration:       5 * time.Millisecond,
		RowsAffected:   7,
		Success:        true,
	}))
	require.NoError(t, store.Add(Entry{
		ConnectionName: "sa@db1",
		Query:          "SELEC 1",
		Success:        false,
		ErrorMessage:   errors.New("syntax error").Error(),
	}))

	entries, err := store.GetRecent(10)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "SELEC 1", entries[0].Query)
	assert.False(t, entries[0].Success)
	assert.Equal(t, "syntax error", entries[0].ErrorMessage)

	assert.Equal(t, int64(7), entries[1].RowsAffected)
	assert.Equal(t, "sales", entries[1].DatabaseName)

	assert.Equal(t, "SELECT 1", entries[2].Query)
	assert.Equal(t, 42*time.Millisecond, entries[2].Duration)
	assert.True(t, entries[2].ExecutedAt.Equal(executed))
}

func TestStore_PrunesToMaxEntries(t *testing.T) {
	store := newTestStore(t, 3)

	for i := 0; i < 5; i++ {
		require.NoError(t, store.Add(Entry{ConnectionName: "c", Query: fmt.Sprintf("SELECT %d", i), Success: true}))
	}

	entries, err := store.GetRecent(10)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "SELECT 4", entries[0].Query)
	assert.Equal(t, "SELECT 2", entries[2].Query)
}

func TestStore_Search(t *testing.T) {
	store := newTestStore(t, 0)

	for _, q := range []string{"SELECT * FROM orders", "SELECT * FROM customers", "UPDATE orders SET x = 1"} {
		require.NoError(t, store.Add(Entry{ConnectionName: "c", Query: q, Success: true}))
	}

	entries, err := store.Search("orders", 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "UPDATE orders SET x = 1", entries[0].Query)

	entries, err = store.Search("nothing", 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
