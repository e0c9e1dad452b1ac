package engine

import "github.com/shetty4l/interview-conditioning-studio-sub002/internal/ir"

// expiryEvents maps a timed phase to the event appended when it runs out.
var expiryEvents = map[ir.Phase]ir.EventType{
	ir.PhasePrep:   ir.EventPrepTimeExpired,
	ir.PhaseCoding: ir.EventSilentStarted,
	ir.PhaseSilent: ir.EventSilentEnded,
}

// Tick checks the active timed phase against the clock and appends its expiry
// event when due. It returns the appended events, which is empty when nothing
// expired. PREP expiry only raises a flag; the phase does not change.
//
// Tick is a no-op before session.started and after expiry has been recorded.
// It fails only on a terminated session.
func (s *Session) Tick() ([]ir.Event, error) {
	now := s.now()
	st := Project(s.meta, s.events, now)

	if st.Status.Terminal() || st.Phase == ir.PhaseDone {
		return nil, newDispatchError(CodeSessionTerminated, "", st.Phase, "session is %s", st.Status)
	}
	if !st.PhaseExpired {
		return nil, nil
	}
	t, ok := expiryEvents[st.Phase]
	if !ok {
		return nil, nil
	}
	if derr := guard(st, t, false); derr != nil {
		// Only prep.time_expired can land here, once the flag is already set.
		return nil, nil
	}

	ev := s.stamp(t, ir.IRObject{}, now, 0)
	s.logger.Debug("phase expired", "phase", st.Phase, "type", t)
	s.commit([]ir.Event{ev})
	return []ir.Event{ev.Clone()}, nil
}

// Remaining returns the time left in the active timed phase, clamped at zero.
// ok is false when no timed phase is running.
func (s *Session) Remaining() (ms int64, ok bool) {
	st := s.State()
	if st.PhaseRemaining == nil {
		return 0, false
	}
	return *st.PhaseRemaining, true
}
