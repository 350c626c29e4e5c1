package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"tempest/internal/app/ports"
	"tempest/internal/domain/sim"
)

const (
	CredentialStatusActive = "active"
)

var (
	ErrInvalidRequest     = errors.New("invalid auth request")
	ErrInvalidCredentials = errors.New("invalid session credentials")
)

// SessionSeeder builds the opening state of a new session.
type SessionSeeder interface {
	Seed(sessionID string, now time.Time) (*sim.SessionState, []sim.DomainEvent)
}

type RegisterRequest struct{}

type RegisterResponse struct {
	SessionID  string `json:"session_id"`
	SessionKey string `json:"session_key"`
	IssuedAt   string `json:"issued_at"`
	Seed       int64  `json:"seed"`
}

type VerifyRequest struct {
	SessionID  string
	SessionKey string
}

type RegisterUseCase struct {
	Credentials ports.CredentialRepository
	Sessions    ports.SessionRepository
	Events      ports.EventRepository
	Seeder      SessionSeeder
	TxManager   ports.TxManager
	Now         func() time.Time
}

type VerifyUseCase struct {
	Credentials ports.CredentialRepository
}

func (u RegisterUseCase) Execute(ctx context.Context, _ RegisterRequest) (RegisterResponse, error) {
	if u.Credentials == nil || u.Sessions == nil || u.Seeder == nil || u.TxManager == nil {
		return RegisterResponse{}, ErrInvalidRequest
	}
	nowFn := u.Now
	if nowFn == nil {
		nowFn = time.Now
	}
	now := nowFn().UTC()

	for i := 0; i < 3; i++ {
		sessionID := "ses_" + uuid.NewString()
		sessionKey, err := randomToken(32)
		if err != nil {
			return RegisterResponse{}, err
		}
		salt, err := randomBytes(16)
		if err != nil {
			return RegisterResponse{}, err
		}
		hash := credentialHash(salt, sessionKey)
		state, events := u.Seeder.Seed(sessionID, now)
		state.Version = 1

		err = u.TxManager.RunInTx(ctx, func(txCtx context.Context) error {
			if err := u.Credentials.Create(txCtx, ports.SessionCredentialRecord{
				SessionID: sessionID,
				KeySalt:   salt,
				KeyHash:   hash,
				Status:    CredentialStatusActive,
				CreatedAt: now,
			}); err != nil {
				return err
			}
			if err := u.Sessions.SaveWithVersion(txCtx, state, 0); err != nil {
				return err
			}
			if u.Events == nil {
				return nil
			}
			return u.Events.Append(txCtx, sessionID, events)
		})
		if errors.Is(err, ports.ErrConflict) {
			continue
		}
		if err != nil {
			return RegisterResponse{}, err
		}
		return RegisterResponse{
			SessionID:  sessionID,
			SessionKey: sessionKey,
			IssuedAt:   now.Format(time.RFC3339),
			Seed:       state.Seed,
		}, nil
	}

	return RegisterResponse{}, ports.ErrConflict
}

func (u VerifyUseCase) Execute(ctx context.Context, req VerifyRequest) error {
	req.SessionID = strings.TrimSpace(req.SessionID)
	req.SessionKey = strings.TrimSpace(req.SessionKey)
	if req.SessionID == "" || req.SessionKey == "" || u.Credentials == nil {
		return ErrInvalidRequest
	}

	cred, err := u.Credentials.GetBySessionID(ctx, req.SessionID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return ErrInvalidCredentials
		}
		return err
	}
	if cred.Status != CredentialStatusActive {
		return ErrInvalidCredentials
	}

	got := credentialHash(cred.KeySalt, req.SessionKey)
	if subtle.ConstantTimeCompare(got, cred.KeyHash) != 1 {
		return ErrInvalidCredentials
	}
	return nil
}

func credentialHash(salt []byte, key string) []byte {
	b := make([]byte, 0, len(salt)+len(key))
	b = append(b, salt...)
	b = append(b, key...)
	sum := sha256.Sum256(b)
	return sum[:]
}

func randomToken(n int) (string, error) {
	b, err := randomBytes(n)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func randomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	return b, nil
}
