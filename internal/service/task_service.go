package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"task_manager/internal/repository"
)

type TaskService struct {
	repo repository.TaskRepo
	now  func() time.Time
}

func NewTaskService(repo repository.TaskRepo) *TaskService {
	return &TaskService{repo: repo, now: time.Now}
}

// List returns the texts of the user's tasks, oldest first. Never nil.
func (s *TaskService) List(ctx context.Context, userID int) ([]string, error) {
	tasks, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, storeErr("list tasks", err)
	}
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.Text)
	}
	return out, nil
}

func (s *TaskService) Add(ctx context.Context, userID int, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyTask
	}
	if _, err := s.repo.Create(ctx, userID, text, s.now()); err != nil {
		return storeErr("add task", err)
	}
	return nil
}

// DeleteAt removes the task at position index of the user's list.
func (s *TaskService) DeleteAt(ctx context.Context, userID, index int) error {
	if index < 0 {
		return ErrInvalidIndex
	}
	if err := s.repo.DeleteAt(ctx, userID, index); err != nil {
		if errors.Is(err, repository.ErrIndexOutOfRange) {
			return ErrInvalidIndex
		}
		return storeErr("delete task", err)
	}
	return nil
}
