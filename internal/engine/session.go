package engine

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/shetty4l/interview-conditioning-studio-sub002/internal/ir"
	"github.com/shetty4l/interview-conditioning-studio-sub002/internal/preset"
)

// Options configures a new Session. Only Problem is required.
type Options struct {
	// Preset names the timing preset; empty selects preset.Default.
	Preset preset.Name

	// Problem is the exercise under attempt.
	Problem ir.Problem

	// ID fixes the session identifier, e.g. when reloading a stored session.
	// When empty, IDs generates one.
	ID string

	Clock   Clock
	IDs     IDGenerator
	Catalog *preset.Catalog
	Logger  *slog.Logger
}

// Session is a single practice attempt backed by an append-only event log.
type Session struct {
	meta      Meta
	events    []ir.Event
	clock     Clock
	logger    *slog.Logger
	listeners registry
}

// New creates a session in phase START with an empty log.
func New(opts Options) (*Session, error) {
	if opts.Problem.ID == "" {
		return nil, errors.New("problem id is required")
	}

	catalog := opts.Catalog
	if catalog == nil {
		catalog = preset.Builtin()
	}
	name := opts.Preset
	if name == "" {
		name = preset.Default
	}
	cfg, err := catalog.Resolve(name)
	if err != nil {
		return nil, fmt.Errorf("resolve preset: %w", err)
	}

	id := opts.ID
	if id == "" {
		ids := opts.IDs
		if ids == nil {
			ids = UUIDv7Generator{}
		}
		id = ids.Generate()
	}

	clock := opts.Clock
	if clock == nil {
		clock = SystemClock
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Session{
		meta: Meta{
			ID:      id,
			Preset:  name,
			Config:  cfg,
			Problem: opts.Problem,
		},
		clock:  clock,
		logger: logger.With("session", id),
	}, nil
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.meta.ID
}

// Meta returns the session's identity and resolved configuration.
func (s *Session) Meta() Meta {
	return s.meta
}

// Dispatch validates and appends one event.
//
// On success it returns the appended event. On failure the returned error is
// a *DispatchError and the log is unchanged. A valid reflection.submitted
// also appends session.completed; the returned event is the reflection.
func (s *Session) Dispatch(t ir.EventType, payload ir.IRObject) (ir.Event, error) {
	now := s.now()
	st := Project(s.meta, s.events, now)

	if derr := s.check(st, t, payload); derr != nil {
		s.logger.Debug("dispatch rejected",
			"type", t,
			"phase", st.Phase,
			"code", derr.Code,
			"reason", derr.Message)
		return ir.Event{}, derr
	}

	data := normalizePayload(s.meta, t, payload)
	if t == ir.EventNudgeRequested {
		data = nudgeData(st, now)
	}

	batch := []ir.Event{s.stamp(t, data, now, 0)}
	if t == ir.EventReflectionSubmitted {
		batch = append(batch, s.stamp(ir.EventSessionCompleted, ir.IRObject{}, now, 1))
	}
	s.commit(batch)

	return batch[0].Clone(), nil
}

func (s *Session) check(st State, t ir.EventType, payload ir.IRObject) *DispatchError {
	if derr := guard(st, t, true); derr != nil {
		return derr
	}
	if derr := checkPayloadStructure(t, st.Phase, payload); derr != nil {
		return derr
	}
	if derr := checkPayloadSemantics(s.meta, t, st.Phase, payload); derr != nil {
		return derr
	}
	if t == ir.EventNudgeRequested {
		if derr := checkNudgeBudget(st); derr != nil {
			return derr
		}
	}
	return nil
}

// State projects the log at the current clock reading.
func (s *Session) State() State {
	return Project(s.meta, s.events, s.now())
}

// Events returns a copy of the log.
func (s *Session) Events() []ir.Event {
	out := make([]ir.Event, len(s.events))
	for i, ev := range s.events {
		out[i] = ev.Clone()
	}
	return out
}

// Subscribe registers fn for every accepted event and returns a function that
// removes it. Calling the returned function more than once is harmless.
func (s *Session) Subscribe(fn Listener) func() {
	return s.listeners.add(fn)
}

// now reads the clock, never going behind the last logged event.
func (s *Session) now() int64 {
	now := s.clock()
	if n := len(s.events); n > 0 {
		now = max(now, s.events[n-1].Timestamp)
	}
	return now
}

// stamp builds the event that would be appended at position len+offset.
func (s *Session) stamp(t ir.EventType, data ir.IRObject, now int64, offset int) ir.Event {
	if data == nil {
		data = ir.IRObject{}
	}
	return ir.Event{
		Seq:       int64(len(s.events) + offset + 1),
		Type:      t,
		Timestamp: now,
		Data:      data,
	}
}

// commit appends batch and notifies listeners once per event, each with the
// state projected from the log up to and including that event.
func (s *Session) commit(batch []ir.Event) {
	base := len(s.events)
	s.events = append(s.events, batch...)

	for i, ev := range batch {
		prefix := s.events[:base+i+1]
		st := Project(s.meta, prefix, ev.Timestamp)
		s.logger.Debug("event accepted",
			"seq", ev.Seq,
			"type", ev.Type,
			"phase", st.Phase,
			"status", st.Status)
		s.listeners.notify(ev, st)
	}
}
