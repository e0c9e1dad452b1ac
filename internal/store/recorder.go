package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/shetty4l/interview-conditioning-studio-sub002/internal/engine"
	"github.com/shetty4l/interview-conditioning-studio-sub002/internal/ir"
)

// Recorder persists every event a session accepts.
//
// Listeners cannot fail a dispatch, so the first write error is kept and
// reported by Err and Close; later events are not written.
type Recorder struct {
	store       *Store
	ctx         context.Context
	sessionID   string
	unsubscribe func()

	mu  sync.Mutex
	err error
}

// Record creates the session row, stores any events the session already
// holds, and subscribes to new ones.
func Record(ctx context.Context, st *Store, sess *engine.Session, createdAt int64) (*Recorder, error) {
	if err := st.CreateSession(ctx, sess.Meta(), createdAt); err != nil {
		return nil, fmt.Errorf("record: %w", err)
	}
	if err := st.AppendEvents(ctx, sess.ID(), sess.Events()); err != nil {
		return nil, fmt.Errorf("record: %w", err)
	}

	r := &Recorder{store: st, ctx: ctx, sessionID: sess.ID()}
	r.unsubscribe = sess.Subscribe(r.handle)
	return r, nil
}

func (r *Recorder) handle(ev ir.Event, _ engine.State) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.err != nil {
		return
	}
	if err := r.store.AppendEvents(r.ctx, r.sessionID, []ir.Event{ev}); err != nil {
		r.err = fmt.Errorf("record %s: %w", r.sessionID, err)
	}
}

// Err returns the first write error, if any.
func (r *Recorder) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Close stops recording and returns the first write error, if any.
func (r *Recorder) Close() error {
	r.unsubscribe()
	return r.Err()
}
