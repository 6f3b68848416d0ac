// Package hook provides the step-signal registry a host uses to notify
// installed listeners that the user advanced (ran the presented cell).
package hook

import (
	"sync"

	"github.com/google/uuid"
)

// Handle identifies an installed listener.
type Handle string

// Listener is invoked on every step signal.
type Listener func()

// Registry manages step listeners.
type Registry struct {
	mu        sync.RWMutex
	listeners map[Handle]Listener
	order     []Handle
	fired     uint64
}

// NewRegistry creates a new, empty registry.
func NewRegistry() *Registry {
	return &Registry{
		listeners: make(map[Handle]Listener),
	}
}

// Install adds a listener and returns its handle.
func (r *Registry) Install(fn Listener) Handle {
	r.mu.Lock()
	defer r.mu.Unlock()

	h := Handle(uuid.New().String())
	r.listeners[h] = fn
	r.order = append(r.order, h)
	return h
}

// Remove uninstalls a listener. Removing an unknown handle is a no-op.
func (r *Registry) Remove(h Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.listeners[h]; !ok {
		return
	}
	delete(r.listeners, h)
	for i, o := range r.order {
		if o == h {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Fire delivers a step signal to every installed listener in install order
// and returns how many were invoked.
// Listeners run without the registry lock held, so they may remove themselves.
func (r *Registry) Fire() int {
	r.mu.Lock()
	r.fired++
	fns := make([]Listener, 0, len(r.order))
	for _, h := range r.order {
		fns = append(fns, r.listeners[h])
	}
	r.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
	return len(fns)
}

// Count returns the number of installed listeners.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.listeners)
}

// Fired returns how many step signals have been delivered.
func (r *Registry) Fired() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.fired
}

// Close removes all listeners.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = make(map[Handle]Listener)
	r.order = nil
}
