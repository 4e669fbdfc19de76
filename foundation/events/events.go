// Package events fans ledger events out to registered listeners such as
// websocket clients.
package events

import (
	"fmt"
	"sync"
)

// messageBuffer is how many events a slow listener may fall behind before
// events are dropped for it.
const messageBuffer = 100

// Events maintains a mapping of listener id to channel.
type Events struct {
	mu        sync.RWMutex
	listeners map[string]chan string
	dropped   map[string]int
}

// New constructs an empty set of listeners.
func New() *Events {
	return &Events{
		listeners: make(map[string]chan string),
		dropped:   make(map[string]int),
	}
}

// Acquire registers the id and returns the channel its events arrive on.
// Acquiring an id twice returns the same channel.
func (evt *Events) Acquire(id string) <-chan string {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	if ch, exists := evt.listeners[id]; exists {
		return ch
	}

	ch := make(chan string, messageBuffer)
	evt.listeners[id] = ch
	return ch
}

// Release closes and removes the channel for the id.
func (evt *Events) Release(id string) error {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	ch, exists := evt.listeners[id]
	if !exists {
		return fmt.Errorf("listener %q does not exist", id)
	}

	delete(evt.listeners, id)
	delete(evt.dropped, id)
	close(ch)
	return nil
}

// Shutdown closes and removes every registered channel.
func (evt *Events) Shutdown() {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	for id, ch := range evt.listeners {
		delete(evt.listeners, id)
		close(ch)
	}
	clear(evt.dropped)
}

// Send delivers the message to every listener without blocking. A listener
// whose buffer is full misses the message.
func (evt *Events) Send(s string) {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	for id, ch := range evt.listeners {
		select {
		case ch <- s:
		default:
			evt.dropped[id]++
		}
	}
}

// Count returns the number of registered listeners.
func (evt *Events) Count() int {
	evt.mu.RLock()
	defer evt.mu.RUnlock()

	return len(evt.listeners)
}

// Dropped returns how many messages the listener has missed.
func (evt *Events) Dropped(id string) int {
	evt.mu.RLock()
	defer evt.mu.RUnlock()

	return evt.dropped[id]
}
