package store_test

import (
	"sync"
	"testing"

	"bookstore-front/internal/domain"
	"bookstore-front/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingLock records acquire/release pairs.
type countingLock struct {
	mu       sync.Mutex
	acquired int
	released int
}

func (l *countingLock) Acquire() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.acquired++
}

func (l *countingLock) Release() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.released++
}

func TestSelectAndClear(t *testing.T) {
	lock := &countingLock{}
	sel := store.NewSelectionStore(lock)

	_, ok := sel.Selected()
	require.False(t, ok)

	sel.Select(domain.Book{ID: 1, Title: "Dune"})

	selected, ok := sel.Selected()
	require.True(t, ok)
	assert.Equal(t, int64(1), selected.ID)
	assert.Equal(t, 1, lock.acquired)

	sel.Clear()

	_, ok = sel.Selected()
	assert.False(t, ok)
	assert.Equal(t, 1, lock.released)
}

func TestSelectReplacesWithoutDoubleAcquire(t *testing.T) {
	lock := &countingLock{}
	sel := store.NewSelectionStore(lock)

	sel.Select(domain.Book{ID: 1})
	sel.Select(domain.Book{ID: 2})

	selected, ok := sel.Selected()
	require.True(t, ok)
	assert.Equal(t, int64(2), selected.ID)
	assert.Equal(t, 1, lock.acquired, "replacing a selection must not re-acquire the scroll lock")

	sel.Clear()
	assert.Equal(t, 1, lock.released)
}

func TestClearIsIdempotent(t *testing.T) {
	lock := &countingLock{}
	sel := store.NewSelectionStore(lock)

	sel.Select(domain.Book{ID: 1})
	sel.Clear()
	sel.Clear() // escape after close, navigation after escape: still one release
	sel.Clear()

	assert.Equal(t, 1, lock.acquired)
	assert.Equal(t, 1, lock.released)
}

func TestSelectionNotifies(t *testing.T) {
	sel := store.NewSelectionStore(nil)

	notified := 0
	unsubscribe := sel.Subscribe(func() { notified++ })
	defer unsubscribe()

	sel.Select(domain.Book{ID: 1})
	assert.Equal(t, 1, notified)

	sel.Clear()
	assert.Equal(t, 2, notified)

	sel.Clear() // no state change, no notification
	assert.Equal(t, 2, notified)
}
