package sqlitestore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"

	"tempest/internal/domain/sim"
)

type eventRow struct {
	Type       string `db:"type"`
	OccurredAt int64  `db:"occurred_at"`
	Payload    string `db:"payload"`
}

type EventRepo struct {
	db *DB
}

func NewEventRepo(db *DB) EventRepo {
	return EventRepo{db: db}
}

func (r EventRepo) Append(ctx context.Context, sessionID string, events []sim.DomainEvent) error {
	db := conn(ctx, r.db.conn)
	for _, e := range events {
		payload, err := json.Marshal(e.Payload)
		if err != nil {
			return err
		}
		if _, err := db.ExecContext(ctx,
			"INSERT INTO session_events (session_id, type, occurred_at, payload) VALUES (?, ?, ?, ?)",
			sessionID, e.Type, unixNano(e.OccurredAt), string(payload)); err != nil {
			return fmt.Errorf("insert event %s: %w", e.Type, err)
		}
	}
	return nil
}

func (r EventRepo) ListBySessionID(ctx context.Context, sessionID string, limit int) ([]sim.DomainEvent, error) {
	query := "SELECT type, occurred_at, payload FROM session_events WHERE session_id = ? ORDER BY occurred_at DESC, id DESC"
	args := []any{sessionID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	var rows []eventRow
	if err := sqlx.SelectContext(ctx, conn(ctx, r.db.conn), &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list events %s: %w", sessionID, err)
	}

	out := make([]sim.DomainEvent, 0, len(rows))
	for _, row := range rows {
		var payload map[string]any
		_ = json.Unmarshal([]byte(row.Payload), &payload)
		out = append(out, sim.DomainEvent{
			Type:       row.Type,
			OccurredAt: fromUnixNano(row.OccurredAt),
			Payload:    payload,
		})
	}
	return out, nil
}
