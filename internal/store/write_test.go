package store

import (
	"context"
	"testing"

	"github.com/shetty4l/interview-conditioning-studio-sub002/internal/ir"
	"github.com/shetty4l/interview-conditioning-studio-sub002/internal/preset"
)

func TestCreateSession_Idempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	meta := testMeta("s1", preset.Standard)

	if err := s.CreateSession(ctx, meta, 100); err != nil {
		t.Fatalf("CreateSession() failed: %v", err)
	}
	if err := s.CreateSession(ctx, meta, 200); err != nil {
		t.Fatalf("second CreateSession() failed: %v", err)
	}

	rec, err := s.ReadSession(ctx, "s1")
	if err != nil {
		t.Fatalf("ReadSession() failed: %v", err)
	}
	if rec.CreatedAt != 100 {
		t.Errorf("CreatedAt = %d, want 100 (first write wins)", rec.CreatedAt)
	}
}

func TestAppendEvents_Idempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	if err := s.CreateSession(ctx, testMeta("s1", preset.Standard), 0); err != nil {
		t.Fatalf("CreateSession() failed: %v", err)
	}

	events := []ir.Event{
		{Seq: 1, Type: ir.EventSessionStarted, Timestamp: 10, Data: ir.Obj(ir.O("preset", ir.IRString("standard")))},
		{Seq: 2, Type: ir.EventCodingStarted, Timestamp: 20, Data: ir.IRObject{}},
	}
	for i := 0; i < 2; i++ {
		if err := s.AppendEvents(ctx, "s1", events); err != nil {
			t.Fatalf("AppendEvents() pass %d failed: %v", i, err)
		}
	}

	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM events WHERE session_id = 's1'").Scan(&count); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 2 {
		t.Errorf("events = %d, want 2", count)
	}
}

func TestAppendEvents_StoresCanonicalData(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	if err := s.CreateSession(ctx, testMeta("s1", preset.Standard), 0); err != nil {
		t.Fatalf("CreateSession() failed: %v", err)
	}

	ev := ir.Event{
		Seq:       1,
		Type:      ir.EventSessionStarted,
		Timestamp: 10,
		Data:      ir.Obj(ir.O("problemId", ir.IRString("two-sum")), ir.O("preset", ir.IRString("standard"))),
	}
	if err := s.AppendEvents(ctx, "s1", []ir.Event{ev}); err != nil {
		t.Fatalf("AppendEvents() failed: %v", err)
	}

	var data, hash string
	if err := s.db.QueryRow("SELECT data, hash FROM events WHERE seq = 1").Scan(&data, &hash); err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if want := `{"preset":"standard","problemId":"two-sum"}`; data != want {
		t.Errorf("data = %s, want %s", data, want)
	}
	wantHash, err := ir.EventHash("s1", ev)
	if err != nil {
		t.Fatalf("EventHash() failed: %v", err)
	}
	if hash != wantHash {
		t.Errorf("hash = %s, want %s", hash, wantHash)
	}
}

func TestAppendEvents_TerminalEventUpdatesStatus(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	if err := s.CreateSession(ctx, testMeta("s1", preset.Standard), 0); err != nil {
		t.Fatalf("CreateSession() failed: %v", err)
	}

	events := []ir.Event{
		{Seq: 1, Type: ir.EventSessionStarted, Timestamp: 10, Data: ir.IRObject{}},
		{Seq: 2, Type: ir.EventSessionAbandoned, Timestamp: 50, Data: ir.IRObject{}},
	}
	if err := s.AppendEvents(ctx, "s1", events); err != nil {
		t.Fatalf("AppendEvents() failed: %v", err)
	}

	rec, err := s.ReadSession(ctx, "s1")
	if err != nil {
		t.Fatalf("ReadSession() failed: %v", err)
	}
	if rec.Status != ir.StatusAbandoned {
		t.Errorf("Status = %s, want %s", rec.Status, ir.StatusAbandoned)
	}
	if rec.UpdatedAt != 50 {
		t.Errorf("UpdatedAt = %d, want 50", rec.UpdatedAt)
	}
}

func TestAppendEvents_UnknownSession(t *testing.T) {
	s := createTestStore(t)

	err := s.AppendEvents(context.Background(), "missing", []ir.Event{
		{Seq: 1, Type: ir.EventSessionStarted, Timestamp: 10, Data: ir.IRObject{}},
	})
	if err == nil {
		t.Error("expected foreign key error, got nil")
	}
}

func TestAppendEvents_Empty(t *testing.T) {
	s := createTestStore(t)
	if err := s.AppendEvents(context.Background(), "missing", nil); err != nil {
		t.Errorf("AppendEvents(nil) = %v, want nil", err)
	}
}
