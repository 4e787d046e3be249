package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"task_manager/internal/models"
)

// SessionRepository is the durable session backend.
type SessionRepository struct {
	db      *sql.DB
	dialect Dialect
}

func NewSessionRepository(db *sql.DB, d Dialect) *SessionRepository {
	return &SessionRepository{db: db, dialect: d}
}

var _ SessionRepo = (*SessionRepository)(nil)

const (
	upsertSessionSQL = `
		INSERT INTO sessions (id, user_id, username, created_at, last_seen_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			user_id = excluded.user_id,
			username = excluded.username,
			created_at = excluded.created_at,
			last_seen_at = excluded.last_seen_at
	`

	selectSessionSQL = `SELECT id, user_id, username, created_at, last_seen_at FROM sessions WHERE id = ?`

	touchSessionSQL = `UPDATE sessions SET last_seen_at = ? WHERE id = ?`

	deleteSessionSQL = `DELETE FROM sessions WHERE id = ?`
)

// Save inserts or replaces the session row.
func (r *SessionRepository) Save(ctx context.Context, s models.Session) error {
	_, err := r.db.ExecContext(ctx, r.dialect.Rebind(upsertSessionSQL),
		s.ID, s.UserID, s.Username, s.CreatedAt.UTC(), s.LastSeenAt.UTC())
	if err != nil {
		return fmt.Errorf("save session for user %d: %w", s.UserID, err)
	}
	return nil
}

// Load returns (nil, nil) when the session does not exist.
func (r *SessionRepository) Load(ctx context.Context, id string) (*models.Session, error) {
	var s models.Session
	err := r.db.QueryRowContext(ctx, r.dialect.Rebind(selectSessionSQL), id).
		Scan(&s.ID, &s.UserID, &s.Username, &s.CreatedAt, &s.LastSeenAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select session: %w", err)
	}
	s.CreatedAt = s.CreatedAt.UTC()
	s.LastSeenAt = s.LastSeenAt.UTC()
	return &s, nil
}

func (r *SessionRepository) Touch(ctx context.Context, id string, at time.Time) error {
	if _, err := r.db.ExecContext(ctx, r.dialect.Rebind(touchSessionSQL), at.UTC(), id); err != nil {
		return fmt.Errorf("touch session: %w", err)
	}
	return nil
}

// Delete is idempotent: removing a missing session is not an error.
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, r.dialect.Rebind(deleteSessionSQL), id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// DeleteExpired removes sessions idle since before idleBefore or created
// before createdBefore. A zero cutoff disables that condition.
func (r *SessionRepository) DeleteExpired(ctx context.Context, idleBefore, createdBefore time.Time) (int64, error) {
	var (
		conds []string
		args  []any
	)
	if !idleBefore.IsZero() {
		conds = append(conds, "last_seen_at < ?")
		args = append(args, idleBefore.UTC())
	}
	if !createdBefore.IsZero() {
		conds = append(conds, "created_at < ?")
		args = append(args, createdBefore.UTC())
	}
	if len(conds) == 0 {
		return 0, nil
	}

	q := "DELETE FROM sessions WHERE " + strings.Join(conds, " OR ")
	res, err := r.db.ExecContext(ctx, r.dialect.Rebind(q), args...)
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count expired sessions: %w", err)
	}
	return n, nil
}
