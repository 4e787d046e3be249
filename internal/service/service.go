package service

import (
	"context"

	"task_manager/internal/hasher"
	"task_manager/internal/models"
	"task_manager/internal/repository"
)

type Authorization interface {
	Register(ctx context.Context, username, password string) (int, error)
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
}

// Tasks addresses a user's tasks by their position in creation order.
type Tasks interface {
	List(ctx context.Context, userID int) ([]string, error)
	Add(ctx context.Context, userID int, text string) error
	DeleteAt(ctx context.Context, userID, index int) error
}

// Service aggregates all sub-services.
type Service struct {
	Authorization
	Tasks
}

func NewService(repos *repository.Repository, h hasher.Hasher) *Service {
	return &Service{
		Authorization: NewAuthService(repos.Auth, h),
		Tasks:         NewTaskService(repos.Tasks),
	}
}
