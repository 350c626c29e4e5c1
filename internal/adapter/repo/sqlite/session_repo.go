package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"

	"tempest/internal/adapter/repo/codec"
	"tempest/internal/app/ports"
	"tempest/internal/domain/sim"
)

type sessionRow struct {
	SessionID string `db:"session_id"`
	Version   int64  `db:"version"`
	Snapshot  []byte `db:"snapshot"`
}

type SessionRepo struct {
	db *DB
}

func NewSessionRepo(db *DB) SessionRepo {
	return SessionRepo{db: db}
}

func (r SessionRepo) GetByID(ctx context.Context, sessionID string) (*sim.SessionState, error) {
	var row sessionRow
	err := sqlx.GetContext(ctx, conn(ctx, r.db.conn), &row,
		"SELECT session_id, version, snapshot FROM sessions WHERE session_id = ?", sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ports.ErrNotFound
		}
		return nil, fmt.Errorf("load session %s: %w", sessionID, err)
	}
	s, err := codec.DecodeSession(row.Snapshot)
	if err != nil {
		return nil, err
	}
	s.Version = row.Version
	return s, nil
}

func (r SessionRepo) SaveWithVersion(ctx context.Context, state *sim.SessionState, expectedVersion int64) error {
	blob, err := codec.EncodeSession(state)
	if err != nil {
		return err
	}
	updatedAt := state.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}
	db := conn(ctx, r.db.conn)

	if expectedVersion == 0 {
		createdAt := state.CreatedAt
		if createdAt.IsZero() {
			createdAt = updatedAt
		}
		_, err := db.ExecContext(ctx, `INSERT INTO sessions
			(session_id, version, seed, day, phase, mode, snapshot, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			state.ID, state.Version, state.Seed, state.Kingdom.Day, string(state.Phase), string(state.Mode),
			blob, unixNano(createdAt), unixNano(updatedAt))
		if err != nil {
			if isUniqueViolation(err) {
				return ports.ErrConflict
			}
			return fmt.Errorf("insert session %s: %w", state.ID, err)
		}
	} else {
		res, err := db.ExecContext(ctx, `UPDATE sessions
			SET version = ?, day = ?, phase = ?, mode = ?, snapshot = ?, updated_at = ?
			WHERE session_id = ? AND version = ?`,
			state.Version, state.Kingdom.Day, string(state.Phase), string(state.Mode), blob, unixNano(updatedAt),
			state.ID, expectedVersion)
		if err != nil {
			return fmt.Errorf("update session %s: %w", state.ID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return ports.ErrConflict
		}
	}
	return r.db.SetMeta(ctx, "last_saved_at", strconv.FormatInt(unixNano(updatedAt), 10))
}
