package ports

import (
	"context"
	"time"

	"tempest/internal/domain/sim"
)

type SessionRepository interface {
	GetByID(ctx context.Context, sessionID string) (*sim.SessionState, error)
	// SaveWithVersion stores state if the stored version still equals
	// expectedVersion. expectedVersion 0 creates the session.
	SaveWithVersion(ctx context.Context, state *sim.SessionState, expectedVersion int64) error
}

type EventRepository interface {
	Append(ctx context.Context, sessionID string, events []sim.DomainEvent) error
	ListBySessionID(ctx context.Context, sessionID string, limit int) ([]sim.DomainEvent, error)
}

type SessionCredentialRecord struct {
	SessionID string
	KeySalt   []byte
	KeyHash   []byte
	Status    string
	CreatedAt time.Time
}

type CredentialRepository interface {
	Create(ctx context.Context, credential SessionCredentialRecord) error
	GetBySessionID(ctx context.Context, sessionID string) (SessionCredentialRecord, error)
}
