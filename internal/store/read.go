package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shetty4l/interview-conditioning-studio-sub002/internal/engine"
	"github.com/shetty4l/interview-conditioning-studio-sub002/internal/ir"
	"github.com/shetty4l/interview-conditioning-studio-sub002/internal/preset"
)

// ErrNotFound is returned when a session does not exist.
var ErrNotFound = errors.New("session not found")

// SessionRecord is a stored session row.
type SessionRecord struct {
	Meta       engine.Meta `json:"meta"`
	Status     ir.Status   `json:"status"`
	CreatedAt  int64       `json:"createdAt"`
	UpdatedAt  int64       `json:"updatedAt"`
	EventCount int         `json:"eventCount"`
}

const sessionColumns = `
	s.id, s.preset, s.problem_id, s.problem_title, s.problem_description,
	s.prep_ms, s.coding_ms, s.silent_ms, s.nudge_budget,
	s.status, s.created_at, s.updated_at,
	(SELECT COUNT(*) FROM events e WHERE e.session_id = s.id)`

// ReadSession returns one session. Returns ErrNotFound if it does not exist.
func (s *Store) ReadSession(ctx context.Context, id string) (SessionRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions s WHERE s.id = ?`, id)
	rec, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return SessionRecord{}, fmt.Errorf("read session %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return SessionRecord{}, fmt.Errorf("read session %s: %w", id, err)
	}
	return rec, nil
}

// ListSessions returns the sessions matching every filter, ordered by
// creation time, then id. With no filters it returns every session.
// Returns an empty slice (not nil) when nothing matches.
func (s *Store) ListSessions(ctx context.Context, filters ...Predicate) ([]SessionRecord, error) {
	where, params, err := compileWhere(filters)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+sessionColumns+`
		FROM sessions s
		WHERE `+where+`
		ORDER BY s.created_at ASC, s.id COLLATE BINARY ASC
	`, params...)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	records := []SessionRecord{}
	for rows.Next() {
		rec, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return records, nil
}

// ReadEvents returns a session's log ordered by seq.
// Returns an empty slice (not nil) if no events exist.
func (s *Store) ReadEvents(ctx context.Context, sessionID string) ([]ir.Event, error) {
	stored, err := s.readStoredEvents(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	events := make([]ir.Event, len(stored))
	for i, se := range stored {
		events[i] = se.Event
	}
	return events, nil
}

// storedEvent is an event together with the hash recorded at write time.
type storedEvent struct {
	Event ir.Event
	Hash  string
}

func (s *Store) readStoredEvents(ctx context.Context, sessionID string) ([]storedEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, type, timestamp, data, hash
		FROM events
		WHERE session_id = ?
		ORDER BY seq ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	events := []storedEvent{}
	for rows.Next() {
		var (
			se   storedEvent
			typ  string
			data string
		)
		if err := rows.Scan(&se.Event.Seq, &typ, &se.Event.Timestamp, &data, &se.Hash); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		se.Event.Type = ir.EventType(typ)
		se.Event.Data, err = unmarshalData(data)
		if err != nil {
			return nil, fmt.Errorf("event seq %d: %w", se.Event.Seq, err)
		}
		events = append(events, se)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

// VerifyEvents recomputes each stored event's hash and reports the first
// mismatch.
func (s *Store) VerifyEvents(ctx context.Context, sessionID string) error {
	stored, err := s.readStoredEvents(ctx, sessionID)
	if err != nil {
		return err
	}
	for _, se := range stored {
		want, err := ir.EventHash(sessionID, se.Event)
		if err != nil {
			return fmt.Errorf("verify seq %d: %w", se.Event.Seq, err)
		}
		if want != se.Hash {
			return fmt.Errorf("verify seq %d: hash mismatch: stored %s, computed %s", se.Event.Seq, se.Hash, want)
		}
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (SessionRecord, error) {
	var (
		rec    SessionRecord
		name   string
		status string
	)
	err := row.Scan(
		&rec.Meta.ID,
		&name,
		&rec.Meta.Problem.ID,
		&rec.Meta.Problem.Title,
		&rec.Meta.Problem.Description,
		&rec.Meta.Config.PrepDuration,
		&rec.Meta.Config.CodingDuration,
		&rec.Meta.Config.SilentDuration,
		&rec.Meta.Config.NudgeBudget,
		&status,
		&rec.CreatedAt,
		&rec.UpdatedAt,
		&rec.EventCount,
	)
	if err != nil {
		return SessionRecord{}, err
	}
	rec.Meta.Preset = preset.Name(name)
	rec.Status = ir.Status(status)
	return rec, nil
}
