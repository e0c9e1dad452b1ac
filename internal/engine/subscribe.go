package engine

import (
	"sync"

	"github.com/shetty4l/interview-conditioning-studio-sub002/internal/ir"
)

// Listener receives every accepted event together with the state projected
// immediately after it. Listeners run synchronously inside Dispatch and Tick.
type Listener func(ev ir.Event, st State)

type subscription struct {
	id uint64
	fn Listener
}

// registry holds listeners in subscription order. Notification iterates a
// snapshot, so listeners may subscribe or unsubscribe while being notified.
type registry struct {
	mu     sync.Mutex
	nextID uint64
	subs   []subscription
}

func (r *registry) add(fn Listener) func() {
	r.mu.Lock()
	r.nextID++
	id := r.nextID
	r.subs = append(r.subs, subscription{id: id, fn: fn})
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { r.remove(id) })
	}
}

func (r *registry) remove(id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, s := range r.subs {
		if s.id == id {
			// Copy rather than splice in place: a snapshot may alias subs.
			next := make([]subscription, 0, len(r.subs)-1)
			next = append(next, r.subs[:i]...)
			r.subs = append(next, r.subs[i+1:]...)
			return
		}
	}
}

func (r *registry) snapshot() []subscription {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.subs
}

func (r *registry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs)
}

func (r *registry) notify(ev ir.Event, st State) {
	for _, s := range r.snapshot() {
		s.fn(ev.Clone(), st)
	}
}
