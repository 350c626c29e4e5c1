package memory

import (
	"context"

	"tempest/internal/app/ports"
)

type CredentialRepo struct {
	store *Store
}

func NewCredentialRepo(store *Store) CredentialRepo {
	return CredentialRepo{store: store}
}

func (r CredentialRepo) Create(ctx context.Context, credential ports.SessionCredentialRecord) error {
	return r.store.locked(ctx, func() error {
		if _, exists := r.store.credentials[credential.SessionID]; exists {
			return ports.ErrConflict
		}
		r.store.credentials[credential.SessionID] = credential
		return nil
	})
}

func (r CredentialRepo) GetBySessionID(ctx context.Context, sessionID string) (ports.SessionCredentialRecord, error) {
	var out ports.SessionCredentialRecord
	err := r.store.locked(ctx, func() error {
		cred, ok := r.store.credentials[sessionID]
		if !ok {
			return ports.ErrNotFound
		}
		out = cred
		return nil
	})
	return out, err
}
