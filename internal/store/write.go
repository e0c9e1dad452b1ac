package store

import (
	"context"
	"fmt"

	"github.com/shetty4l/interview-conditioning-studio-sub002/internal/engine"
	"github.com/shetty4l/interview-conditioning-studio-sub002/internal/ir"
)

// CreateSession inserts the session row.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - an existing session is left
// untouched.
func (s *Store) CreateSession(ctx context.Context, meta engine.Meta, createdAt int64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions
		(id, preset, problem_id, problem_title, problem_description,
		 prep_ms, coding_ms, silent_ms, nudge_budget, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		meta.ID,
		string(meta.Preset),
		meta.Problem.ID,
		meta.Problem.Title,
		meta.Problem.Description,
		meta.Config.PrepDuration,
		meta.Config.CodingDuration,
		meta.Config.SilentDuration,
		meta.Config.NudgeBudget,
		string(ir.StatusInProgress),
		createdAt,
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// AppendEvents writes events in a single transaction.
//
// Uses ON CONFLICT(session_id, seq) DO NOTHING so re-appending an event that is
// already stored is a no-op; appending a log twice leaves one copy. A terminal
// event updates the session's status.
//
// Note: The session must exist (foreign key constraint).
func (s *Store) AppendEvents(ctx context.Context, sessionID string, events []ir.Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("append events: begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO events (session_id, seq, type, timestamp, data, hash)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id, seq) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("append events: prepare: %w", err)
	}
	defer stmt.Close()

	var last int64
	status := ir.Status("")
	for _, ev := range events {
		data, err := marshalData(ev.Data)
		if err != nil {
			return fmt.Errorf("append events: seq %d: %w", ev.Seq, err)
		}
		hash, err := ir.EventHash(sessionID, ev)
		if err != nil {
			return fmt.Errorf("append events: seq %d: %w", ev.Seq, err)
		}
		if _, err := stmt.ExecContext(ctx, sessionID, ev.Seq, string(ev.Type), ev.Timestamp, data, hash); err != nil {
			return fmt.Errorf("append events: seq %d: %w", ev.Seq, err)
		}

		last = ev.Timestamp
		switch ev.Type {
		case ir.EventSessionCompleted:
			status = ir.StatusCompleted
		case ir.EventSessionAbandoned:
			status = ir.StatusAbandoned
		}
	}

	if status != "" {
		_, err = tx.ExecContext(ctx, `UPDATE sessions SET status = ?, updated_at = ? WHERE id = ?`,
			string(status), last, sessionID)
	} else {
		_, err = tx.ExecContext(ctx, `UPDATE sessions SET updated_at = MAX(updated_at, ?) WHERE id = ?`,
			last, sessionID)
	}
	if err != nil {
		return fmt.Errorf("append events: update session: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("append events: commit: %w", err)
	}
	return nil
}
