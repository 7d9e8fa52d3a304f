// Package bridge carries commands to the notes backend and backend events
// back to the client. It exposes the two primitives the rest of the client is
// written against: a request/response Invoker and a broadcast Listener.
package bridge

import (
	"context"
	"encoding/json"
	"sync"
)

// Event names broadcast by the backend.
const (
	EventRefetchNotes = "refetch_notes"
	EventRefetchTags  = "refetch_tags"
)

// Invoker sends one named command with its arguments and decodes the result
// into out. A nil out discards the result.
type Invoker interface {
	Invoke(ctx context.Context, command string, args any, out any) error
}

// Listener registers handlers for named backend events. The returned function
// releases the registration; it is safe to call more than once. Once it
// returns, the handler is not running and will not be called again.
type Listener interface {
	Listen(event string, h Handler) (func(), error)
}

// Event is a single broadcast received from the backend.
type Event struct {
	Name    string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Handler receives events. Handlers run on the dispatching goroutine, must
// not block and must not release their own registration.
type Handler func(Event)

type listener struct {
	mu      sync.Mutex
	h       Handler
	removed bool
}

// deliver runs the handler unless it has been released.
func (l *listener) deliver(ev Event) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.removed {
		return false
	}
	l.h(ev)
	return true
}

func (l *listener) remove() {
	l.mu.Lock()
	l.removed = true
	l.mu.Unlock()
}

// Registry fans events out to the handlers registered for their name.
type Registry struct {
	mu       sync.RWMutex
	nextID   uint64
	handlers map[string]map[uint64]*listener
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]map[uint64]*listener)}
}

// Listen implements Listener.
func (r *Registry) Listen(event string, h Handler) (func(), error) {
	if h == nil {
		return func() {}, nil
	}

	l := &listener{h: h}
	r.mu.Lock()
	r.nextID++
	id := r.nextID
	if r.handlers[event] == nil {
		r.handlers[event] = make(map[uint64]*listener)
	}
	r.handlers[event][id] = l
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			l.remove()
			r.mu.Lock()
			defer r.mu.Unlock()
			delete(r.handlers[event], id)
			if len(r.handlers[event]) == 0 {
				delete(r.handlers, event)
			}
		})
	}, nil
}

// Dispatch delivers ev to every handler currently registered for its name and
// reports how many received it. A handler released while the dispatch is in
// progress is skipped.
func (r *Registry) Dispatch(ev Event) int {
	r.mu.RLock()
	ls := make([]*listener, 0, len(r.handlers[ev.Name]))
	for _, l := range r.handlers[ev.Name] {
		ls = append(ls, l)
	}
	r.mu.RUnlock()

	n := 0
	for _, l := range ls {
		if l.deliver(ev) {
			n++
		}
	}
	return n
}

// Count returns the number of handlers registered for event.
func (r *Registry) Count(event string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handlers[event])
}
