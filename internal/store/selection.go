package store

import (
	"sync"

	"bookstore-front/internal/domain"
)

// ScrollLock suppresses background page scroll while a detail overlay is
// open. Acquire and Release come in pairs; the selection store guarantees
// Release runs exactly once per acquisition however the overlay closes.
type ScrollLock interface {
	Acquire()
	Release()
}

// NopScrollLock is a ScrollLock that does nothing, for headless consumers.
type NopScrollLock struct{}

func (NopScrollLock) Acquire() {}
func (NopScrollLock) Release() {}

// SelectionStore tracks at most one selected book for a detail overlay,
// independent of the cart and catalog stores.
type SelectionStore struct {
	notifier

	lock ScrollLock

	mu       sync.Mutex
	selected *domain.Book
}

// NewSelectionStore creates a SelectionStore. A nil lock falls back to
// NopScrollLock.
func NewSelectionStore(lock ScrollLock) *SelectionStore {
	if lock == nil {
		lock = NopScrollLock{}
	}
	return &SelectionStore{lock: lock}
}

// Select makes book the current selection, replacing any existing one. The
// scroll lock is acquired only on the empty-to-selected transition, so
// replacing never double-acquires.
func (s *SelectionStore) Select(book domain.Book) {
	s.mu.Lock()
	acquire := s.selected == nil
	s.selected = &book
	s.mu.Unlock()

	if acquire {
		s.lock.Acquire()
	}
	s.notify()
}

// Clear empties the selection and releases the scroll lock. It is the
// single close path for explicit dismissal, escape and navigation away,
// and is idempotent.
func (s *SelectionStore) Clear() {
	s.mu.Lock()
	release := s.selected != nil
	s.selected = nil
	s.mu.Unlock()

	if release {
		s.lock.Release()
		s.notify()
	}
}

// Selected returns the current selection, if any.
func (s *SelectionStore) Selected() (domain.Book, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected == nil {
		return domain.Book{}, false
	}
	return *s.selected, true
}
