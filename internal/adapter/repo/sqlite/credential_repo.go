package sqlitestore

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"tempest/internal/app/ports"
)

type credentialRow struct {
	SessionID string `db:"session_id"`
	KeySalt   []byte `db:"key_salt"`
	KeyHash   []byte `db:"key_hash"`
	Status    string `db:"status"`
	CreatedAt int64  `db:"created_at"`
}

type CredentialRepo struct {
	db *DB
}

func NewCredentialRepo(db *DB) CredentialRepo {
	return CredentialRepo{db: db}
}

func (r CredentialRepo) Create(ctx context.Context, c ports.SessionCredentialRecord) error {
	_, err := conn(ctx, r.db.conn).ExecContext(ctx,
		"INSERT INTO session_credentials (session_id, key_salt, key_hash, status, created_at) VALUES (?, ?, ?, ?, ?)",
		c.SessionID, c.KeySalt, c.KeyHash, c.Status, unixNano(c.CreatedAt))
	if isUniqueViolation(err) {
		return ports.ErrConflict
	}
	return err
}

func (r CredentialRepo) GetBySessionID(ctx context.Context, sessionID string) (ports.SessionCredentialRecord, error) {
	var row credentialRow
	err := sqlx.GetContext(ctx, conn(ctx, r.db.conn), &row,
		"SELECT session_id, key_salt, key_hash, status, created_at FROM session_credentials WHERE session_id = ?", sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ports.SessionCredentialRecord{}, ports.ErrNotFound
		}
		return ports.SessionCredentialRecord{}, err
	}
	return ports.SessionCredentialRecord{
		SessionID: row.SessionID,
		KeySalt:   row.KeySalt,
		KeyHash:   row.KeyHash,
		Status:    row.Status,
		CreatedAt: fromUnixNano(row.CreatedAt),
	}, nil
}
