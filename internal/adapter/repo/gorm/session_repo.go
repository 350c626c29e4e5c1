package gormrepo

import (
	"context"
	"errors"
	"time"

	"tempest/internal/adapter/repo/codec"
	"tempest/internal/adapter/repo/gorm/model"
	"tempest/internal/app/ports"
	"tempest/internal/domain/sim"

	"gorm.io/gorm"
)

type SessionRepo struct {
	db *gorm.DB
}

func NewSessionRepo(db *gorm.DB) SessionRepo {
	return SessionRepo{db: db}
}

func (r SessionRepo) GetByID(ctx context.Context, sessionID string) (*sim.SessionState, error) {
	var m model.Session
	if err := getDBFromCtx(ctx, r.db).Where("session_id = ?", sessionID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	s, err := codec.DecodeSession(m.Snapshot)
	if err != nil {
		return nil, err
	}
	s.Version = m.Version
	return s, nil
}

func (r SessionRepo) SaveWithVersion(ctx context.Context, state *sim.SessionState, expectedVersion int64) error {
	blob, err := codec.EncodeSession(state)
	if err != nil {
		return err
	}
	db := getDBFromCtx(ctx, r.db)
	updatedAt := state.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}
	if expectedVersion == 0 {
		createdAt := state.CreatedAt
		if createdAt.IsZero() {
			createdAt = updatedAt
		}
		m := model.Session{
			SessionID: state.ID,
			Version:   state.Version,
			Seed:      state.Seed,
			Day:       int32(state.Kingdom.Day),
			Phase:     string(state.Phase),
			Mode:      string(state.Mode),
			Snapshot:  blob,
			CreatedAt: createdAt,
			UpdatedAt: updatedAt,
		}
		if err := db.Create(&m).Error; err != nil {
			if isUniqueViolation(err) {
				return ports.ErrConflict
			}
			return err
		}
		return nil
	}

	updates := map[string]any{
		"version":    state.Version,
		"day":        int32(state.Kingdom.Day),
		"phase":      string(state.Phase),
		"mode":       string(state.Mode),
		"snapshot":   blob,
		"updated_at": updatedAt,
	}
	res := db.Model(&model.Session{}).
		Where("session_id = ? AND version = ?", state.ID, expectedVersion).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ports.ErrConflict
	}
	return nil
}
