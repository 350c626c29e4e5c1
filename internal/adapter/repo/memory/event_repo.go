package memory

import (
	"context"

	"tempest/internal/domain/sim"
)

type EventRepo struct {
	store *Store
}

func NewEventRepo(store *Store) EventRepo {
	return EventRepo{store: store}
}

func (r EventRepo) Append(ctx context.Context, sessionID string, events []sim.DomainEvent) error {
	return r.store.locked(ctx, func() error {
		r.store.events[sessionID] = append(r.store.events[sessionID], events...)
		return nil
	})
}

// ListBySessionID returns the newest events first.
func (r EventRepo) ListBySessionID(ctx context.Context, sessionID string, limit int) ([]sim.DomainEvent, error) {
	var out []sim.DomainEvent
	err := r.store.locked(ctx, func() error {
		all := r.store.events[sessionID]
		out = make([]sim.DomainEvent, 0, len(all))
		for i := len(all) - 1; i >= 0; i-- {
			if limit > 0 && len(out) == limit {
				break
			}
			out = append(out, all[i])
		}
		return nil
	})
	return out, err
}
