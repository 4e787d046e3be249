package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"task_manager/internal/models"
)

var (
	// ErrUsernameTaken is returned by Create when the unique constraint on username fires.
	ErrUsernameTaken = errors.New("username already exists")
	// ErrIndexOutOfRange is returned by DeleteAt when the position has no task.
	ErrIndexOutOfRange = errors.New("task index out of range")
)

type Authorization interface {
	Create(ctx context.Context, username, hash string) (int, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// TaskRepo stores tasks. Positions are ranks in id order per user, which is insertion order.
type TaskRepo interface {
	ListByUser(ctx context.Context, userID int) ([]models.Task, error)
	Create(ctx context.Context, userID int, text string, createdAt time.Time) (int, error)
	DeleteAt(ctx context.Context, userID, index int) error
}

type SessionRepo interface {
	Save(ctx context.Context, s models.Session) error
	Load(ctx context.Context, id string) (*models.Session, error)
	Touch(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context, idleBefore, createdBefore time.Time) (int64, error)
}

type Repository struct {
	Auth     Authorization
	Tasks    TaskRepo
	Sessions SessionRepo
}

func NewRepository(db *sql.DB, d Dialect) *Repository {
	return &Repository{
		Auth:     NewUserRepository(db, d),
		Tasks:    NewTaskRepository(db, d),
		Sessions: NewSessionRepository(db, d),
	}
}
