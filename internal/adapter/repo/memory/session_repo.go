package memory

import (
	"context"

	"tempest/internal/adapter/repo/codec"
	"tempest/internal/app/ports"
	"tempest/internal/domain/sim"
)

type SessionRepo struct {
	store *Store
}

func NewSessionRepo(store *Store) SessionRepo {
	return SessionRepo{store: store}
}

func (r SessionRepo) GetByID(ctx context.Context, sessionID string) (*sim.SessionState, error) {
	var out *sim.SessionState
	err := r.store.locked(ctx, func() error {
		row, ok := r.store.sessions[sessionID]
		if !ok {
			return ports.ErrNotFound
		}
		s, err := codec.DecodeSession(row.blob)
		if err != nil {
			return err
		}
		out = s
		return nil
	})
	return out, err
}

func (r SessionRepo) SaveWithVersion(ctx context.Context, state *sim.SessionState, expectedVersion int64) error {
	blob, err := codec.EncodeSession(state)
	if err != nil {
		return err
	}
	return r.store.locked(ctx, func() error {
		current, ok := r.store.sessions[state.ID]
		if !ok && expectedVersion != 0 {
			return ports.ErrConflict
		}
		if ok && current.version != expectedVersion {
			return ports.ErrConflict
		}
		r.store.sessions[state.ID] = storedSession{version: state.Version, blob: blob}
		return nil
	})
}
