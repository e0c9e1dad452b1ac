package store

import (
	"context"
	"fmt"

	"github.com/shetty4l/interview-conditioning-studio-sub002/internal/ir"
	"github.com/shetty4l/interview-conditioning-studio-sub002/internal/preset"
)

// Stats aggregates the stored sessions.
type Stats struct {
	Sessions  int                 `json:"sessions"`
	Events    int                 `json:"events"`
	ByStatus  map[ir.Status]int   `json:"byStatus"`
	ByPreset  map[preset.Name]int `json:"byPreset"`
	Completed int                 `json:"completed"`

	// NudgesUsed counts nudges across completed sessions only.
	NudgesUsed    int     `json:"nudgesUsed"`
	AverageNudges float64 `json:"averageNudges"`
}

// Stats computes aggregate counts over all sessions.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	st := Stats{
		ByStatus: map[ir.Status]int{},
		ByPreset: map[preset.Name]int{},
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT preset, status, COUNT(*)
		FROM sessions
		GROUP BY preset, status
	`)
	if err != nil {
		return Stats{}, fmt.Errorf("stats: query sessions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			name, status string
			n            int
		)
		if err := rows.Scan(&name, &status, &n); err != nil {
			return Stats{}, fmt.Errorf("stats: scan: %w", err)
		}
		st.Sessions += n
		st.ByStatus[ir.Status(status)] += n
		st.ByPreset[preset.Name(name)] += n
	}
	if err := rows.Err(); err != nil {
		return Stats{}, fmt.Errorf("stats: iterate: %w", err)
	}
	st.Completed = st.ByStatus[ir.StatusCompleted]

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&st.Events); err != nil {
		return Stats{}, fmt.Errorf("stats: count events: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM events e
		JOIN sessions s ON s.id = e.session_id
		WHERE s.status = ? AND e.type = ?
	`, string(ir.StatusCompleted), string(ir.EventNudgeRequested)).Scan(&st.NudgesUsed)
	if err != nil {
		return Stats{}, fmt.Errorf("stats: count nudges: %w", err)
	}

	if st.Completed > 0 {
		st.AverageNudges = float64(st.NudgesUsed) / float64(st.Completed)
	}
	return st, nil
}
