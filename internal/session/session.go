// Package session maps opaque cookie tokens to server-side {userId, username}
// records. Records live in a pluggable Store; the cookie only carries a signed
// session id.
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"task_manager/internal/logger"
	"task_manager/internal/models"
)

// ErrNoSession means the token is missing, forged, unknown or expired.
var ErrNoSession = errors.New("no valid session")

// Store persists session records. Load returns (nil, nil) for unknown ids and
// Delete must not fail for them.
type Store interface {
	Save(ctx context.Context, s models.Session) error
	Load(ctx context.Context, id string) (*models.Session, error)
	Touch(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context, idleBefore, createdBefore time.Time) (int64, error)
}

type Options struct {
	Secret          string
	IdleTimeout     time.Duration // 0 disables
	AbsoluteTimeout time.Duration // 0 disables
}

type Manager struct {
	store    Store
	codec    *tokenCodec
	idle     time.Duration
	absolute time.Duration
	now      func() time.Time
}

const sessionIDBytes = 32

func NewManager(store Store, opts Options) *Manager {
	return &Manager{
		store:    store,
		codec:    newTokenCodec(opts.Secret),
		idle:     opts.IdleTimeout,
		absolute: opts.AbsoluteTimeout,
		now:      time.Now,
	}
}

// Create starts a session and returns the cookie value for it.
func (m *Manager) Create(ctx context.Context, userID int, username string) (string, models.Session, error) {
	id, err := newSessionID()
	if err != nil {
		return "", models.Session{}, err
	}
	now := m.now().UTC()
	s := models.Session{
		ID:         id,
		UserID:     userID,
		Username:   username,
		CreatedAt:  now,
		LastSeenAt: now,
	}

	var expires time.Time
	if m.absolute > 0 {
		expires = now.Add(m.absolute)
	}
	token, err := m.codec.encode(id, now, expires)
	if err != nil {
		return "", models.Session{}, err
	}

	if err := m.store.Save(ctx, s); err != nil {
		return "", models.Session{}, fmt.Errorf("save session: %w", err)
	}
	return token, s, nil
}

// Resolve returns the live session behind token and refreshes its idle timer.
// Store failures are returned as-is; every other miss is ErrNoSession.
func (m *Manager) Resolve(ctx context.Context, token string) (models.Session, error) {
	if token == "" {
		return models.Session{}, ErrNoSession
	}
	id, err := m.codec.decode(token, m.now())
	if err != nil {
		return models.Session{}, ErrNoSession
	}

	s, err := m.store.Load(ctx, id)
	if err != nil {
		return models.Session{}, fmt.Errorf("load session: %w", err)
	}
	if s == nil {
		return models.Session{}, ErrNoSession
	}

	now := m.now().UTC()
	if s.Expired(now, m.idle, m.absolute) {
		if err := m.store.Delete(ctx, id); err != nil {
			return models.Session{}, fmt.Errorf("delete expired session: %w", err)
		}
		return models.Session{}, ErrNoSession
	}

	if err := m.store.Touch(ctx, id, now); err != nil {
		return models.Session{}, fmt.Errorf("touch session: %w", err)
	}
	s.LastSeenAt = now
	return *s, nil
}

// Destroy removes the session behind token. Unknown or forged tokens are ignored.
func (m *Manager) Destroy(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	id, err := m.codec.decode(token, m.now())
	if err != nil {
		return nil
	}
	if err := m.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Sweep drops every expired session from the store.
func (m *Manager) Sweep(ctx context.Context) (int64, error) {
	var idleBefore, createdBefore time.Time
	now := m.now().UTC()
	if m.idle > 0 {
		idleBefore = now.Add(-m.idle)
	}
	if m.absolute > 0 {
		createdBefore = now.Add(-m.absolute)
	}
	return m.store.DeleteExpired(ctx, idleBefore, createdBefore)
}

// Run sweeps at the given interval until ctx is canceled.
func (m *Manager) Run(ctx context.Context, tick time.Duration, log *logger.Logger) {
	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := m.Sweep(ctx)
			if log == nil {
				continue
			}
			if err != nil {
				log.Errorw("session_sweep_failed", "err", err)
				continue
			}
			if n > 0 {
				log.Debugw("session_sweep", "removed", n)
			}
		}
	}
}

func newSessionID() (string, error) {
	b := make([]byte, sessionIDBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session id: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
