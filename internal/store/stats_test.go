package store

import (
	"context"
	"testing"

	"github.com/shetty4l/interview-conditioning-studio-sub002/internal/ir"
	"github.com/shetty4l/interview-conditioning-studio-sub002/internal/preset"
)

func TestStats_Empty(t *testing.T) {
	s := createTestStore(t)

	st, err := s.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats() failed: %v", err)
	}
	if st.Sessions != 0 || st.Events != 0 || st.AverageNudges != 0 {
		t.Errorf("Stats() = %+v, want zero", st)
	}
	if st.ByStatus == nil || st.ByPreset == nil {
		t.Error("Stats() maps must be non-nil")
	}
}

func TestStats_Aggregates(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	record := func(id string, name preset.Name, drive func(t *testing.T, rec *Recorder)) {
		sess, clock := createTestSession(t, id, name)
		rec, err := Record(ctx, s, sess, clock.Now())
		if err != nil {
			t.Fatalf("Record(%s) failed: %v", id, err)
		}
		switch id {
		case "done-1":
			completeSession(t, sess, clock, 3)
		case "done-2":
			completeSession(t, sess, clock, 1)
		case "quit":
			mustDispatch(t, sess, ir.EventSessionStarted, nil)
			mustDispatch(t, sess, ir.EventSessionAbandoned, nil)
		case "open":
			mustDispatch(t, sess, ir.EventSessionStarted, nil)
		}
		drive(t, rec)
	}
	closeRec := func(t *testing.T, rec *Recorder) {
		if err := rec.Close(); err != nil {
			t.Fatalf("Close() failed: %v", err)
		}
	}

	record("done-1", preset.Standard, closeRec)
	record("done-2", preset.HighPressure, closeRec)
	record("quit", preset.Standard, closeRec)
	record("open", preset.NoAssistance, closeRec)

	st, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() failed: %v", err)
	}

	if st.Sessions != 4 {
		t.Errorf("Sessions = %d, want 4", st.Sessions)
	}
	if st.Completed != 2 {
		t.Errorf("Completed = %d, want 2", st.Completed)
	}
	if st.ByStatus[ir.StatusAbandoned] != 1 || st.ByStatus[ir.StatusInProgress] != 1 {
		t.Errorf("ByStatus = %v", st.ByStatus)
	}
	if st.ByPreset[preset.Standard] != 2 {
		t.Errorf("ByPreset[standard] = %d, want 2", st.ByPreset[preset.Standard])
	}
	if st.NudgesUsed != 4 {
		t.Errorf("NudgesUsed = %d, want 4", st.NudgesUsed)
	}
	if st.AverageNudges != 2 {
		t.Errorf("AverageNudges = %v, want 2", st.AverageNudges)
	}
}
