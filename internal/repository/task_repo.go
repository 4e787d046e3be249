package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"task_manager/internal/models"
)

type TaskRepository struct {
	db      *sql.DB
	dialect Dialect
}

func NewTaskRepository(db *sql.DB, d Dialect) *TaskRepository {
	return &TaskRepository{db: db, dialect: d}
}

var _ TaskRepo = (*TaskRepository)(nil)

const (
	insertTaskSQL = `INSERT INTO tasks (user_id, task_text, created_at) VALUES (?, ?, ?) RETURNING id`

	selectTasksByUserSQL = `SELECT id, user_id, task_text, created_at FROM tasks WHERE user_id = ? ORDER BY id ASC`

	selectTaskIDAtSQL = `SELECT id FROM tasks WHERE user_id = ? ORDER BY id ASC LIMIT 1 OFFSET ?`

	deleteTaskSQL = `DELETE FROM tasks WHERE id = ? AND user_id = ?`
)

// Create inserts a task owned by userID and returns its ID.
func (r *TaskRepository) Create(ctx context.Context, userID int, text string, createdAt time.Time) (int, error) {
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	var id int
	err := r.db.QueryRowContext(ctx, r.dialect.Rebind(insertTaskSQL), userID, text, createdAt.UTC()).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert task for user %d: %w", userID, err)
	}
	return id, nil
}

// ListByUser returns the user's tasks in insertion order (ascending id), regardless of created_at.
func (r *TaskRepository) ListByUser(ctx context.Context, userID int) ([]models.Task, error) {
	rows, err := r.db.QueryContext(ctx, r.dialect.Rebind(selectTasksByUserSQL), userID)
	if err != nil {
		return nil, fmt.Errorf("select tasks for user %d: %w", userID, err)
	}
	defer rows.Close()

	out := make([]models.Task, 0, 16)
	for rows.Next() {
		var t models.Task
		if err := rows.Scan(&t.ID, &t.UserID, &t.Text, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		t.CreatedAt = t.CreatedAt.UTC()
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	return out, nil
}

// DeleteAt removes the task at position index of the user's ordered list.
// The lookup and the delete share one transaction.
func (r *TaskRepository) DeleteAt(ctx context.Context, userID, index int) error {
	if index < 0 {
		return ErrIndexOutOfRange
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete transaction: %w", err)
	}
	defer func() {
		// no-op after a successful commit
		_ = tx.Rollback()
	}()

	var id int
	err = tx.QueryRowContext(ctx, r.dialect.Rebind(selectTaskIDAtSQL), userID, index).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrIndexOutOfRange
		}
		return fmt.Errorf("select task at %d for user %d: %w", index, userID, err)
	}

	if _, err := tx.ExecContext(ctx, r.dialect.Rebind(deleteTaskSQL), id, userID); err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete transaction: %w", err)
	}
	return nil
}
