package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *CartIDStore {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "storefront.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestLoadBeforeSave(t *testing.T) {
	store := openTestStore(t)

	_, found, err := store.Load()
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSaveLoadRoundtrip(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.Save(42))

	cartID, found, err := store.Load()
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, int64(42), cartID)

	// Saving again overwrites.
	require.NoError(t, store.Save(7))
	cartID, found, err = store.Load()
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, int64(7), cartID)
}

func TestClear(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.Save(42))
	require.NoError(t, store.Clear())

	_, found, err := store.Load()
	require.NoError(t, err)
	assert.False(t, found)

	// Clearing an empty store is a no-op.
	require.NoError(t, store.Clear())
}

func TestSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storefront.db")

	store, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Save(99))
	require.NoError(t, store.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	cartID, found, err := reopened.Load()
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, int64(99), cartID)
}
