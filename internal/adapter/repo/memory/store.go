package memory

import (
	"context"
	"sync"

	"tempest/internal/app/ports"
	"tempest/internal/domain/sim"
)

// Store keeps sessions as encoded snapshots so callers never share state
// with the store.
type Store struct {
	mu          sync.Mutex
	sessions    map[string]storedSession
	events      map[string][]sim.DomainEvent
	credentials map[string]ports.SessionCredentialRecord
}

type storedSession struct {
	version int64
	blob    []byte
}

func NewStore() *Store {
	return &Store{
		sessions:    make(map[string]storedSession),
		events:      make(map[string][]sim.DomainEvent),
		credentials: make(map[string]ports.SessionCredentialRecord),
	}
}

type txKeyType struct{}

var txKey = txKeyType{}

// locked runs fn under the store lock unless ctx already holds it through
// TxManager.
func (s *Store) locked(ctx context.Context, fn func() error) error {
	if ctx.Value(txKey) != nil {
		return fn()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}
