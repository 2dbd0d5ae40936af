// Package store holds the stateful client-side stores: the cart, the
// catalog query cache and the selection state. Stores outlive any single
// UI consumer and broadcast changes to whoever subscribed.
package store

import (
	"sync"
	"time"
)

// notifier fans out change notifications to registered listeners. Embedding
// it gives a store Subscribe plus an internal notify.
type notifier struct {
	mu        sync.Mutex
	nextID    int
	listeners map[int]func()
}

// Subscribe registers fn to run after every state change and returns the
// matching unsubscribe. After unsubscribe returns, fn is never called
// again, so a consumer that goes away cannot be poked about state it no
// longer cares about. Unsubscribing twice is harmless.
func (n *notifier) Subscribe(fn func()) (unsubscribe func()) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.listeners == nil {
		n.listeners = make(map[int]func())
	}
	id := n.nextID
	n.nextID++
	n.listeners[id] = fn
	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.listeners, id)
	}
}

// notify runs every registered listener. Callers must not hold their own
// store lock; listeners are expected to read back through the accessors.
func (n *notifier) notify() {
	n.mu.Lock()
	fns := make([]func(), 0, len(n.listeners))
	for _, fn := range n.listeners {
		fns = append(fns, fn)
	}
	n.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Clocker provides the current time, injectable for staleness tests.
type Clocker interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// RealClock returns a Clocker backed by the system clock.
func RealClock() Clocker { return realClock{} }
