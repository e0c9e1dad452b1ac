package store

import (
	"context"
	"fmt"

	"github.com/shetty4l/interview-conditioning-studio-sub002/internal/engine"
	"github.com/shetty4l/interview-conditioning-studio-sub002/internal/preset"
)

// LoadSession rebuilds a stored session by restoring its event log.
//
// The session is created with the stored id, preset and resolved config, so
// a catalog that has since changed cannot alter the replayed projection. Only
// Clock and Logger are taken from opts.
func (s *Store) LoadSession(ctx context.Context, id string, opts engine.Options) (*engine.Session, error) {
	rec, err := s.ReadSession(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	catalog, err := preset.NewCatalog(preset.Entry{Name: rec.Meta.Preset, Config: rec.Meta.Config})
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}

	sess, err := engine.New(engine.Options{
		Preset:  rec.Meta.Preset,
		Problem: rec.Meta.Problem,
		ID:      rec.Meta.ID,
		Clock:   opts.Clock,
		Logger:  opts.Logger,
		Catalog: catalog,
	})
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}

	events, err := s.ReadEvents(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}
	if err := sess.Restore(events); err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}
	return sess, nil
}
