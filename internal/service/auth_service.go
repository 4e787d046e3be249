package service

import (
	"context"
	"errors"
	"sync"

	"task_manager/internal/hasher"
	"task_manager/internal/models"
	"task_manager/internal/repository"
)

// AuthService handles registration and credential checks.
type AuthService struct {
	authRepo repository.Authorization
	hasher   hasher.Hasher

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(repo repository.Authorization, h hasher.Hasher) *AuthService {
	return &AuthService{authRepo: repo, hasher: h}
}

// Register hashes password and creates a new user.
func (s *AuthService) Register(ctx context.Context, username, password string) (int, error) {
	if username == "" || password == "" {
		return 0, ErrMissingCredentials
	}

	existing, err := s.authRepo.GetByUsername(ctx, username)
	if err != nil {
		return 0, storeErr("lookup user", err)
	}
	if existing != nil {
		return 0, ErrUsernameTaken
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return 0, storeErr("hash password", err)
	}

	id, err := s.authRepo.Create(ctx, username, hash)
	if err != nil {
		// lost a race with a concurrent registration
		if errors.Is(err, repository.ErrUsernameTaken) {
			return 0, ErrUsernameTaken
		}
		return 0, storeErr("create user", err)
	}
	return id, nil
}

// Authenticate returns the user when password matches. Unknown users and
// wrong passwords both yield ErrInvalidCredentials.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	u, err := s.authRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, storeErr("lookup user", err)
	}
	if u == nil {
		// burn a comparable amount of time so unknown users are not cheaper
		_ = s.hasher.Verify(s.fallbackHash(), password)
		return nil, ErrInvalidCredentials
	}

	if err := s.hasher.Verify(u.PasswordHash, password); err != nil {
		if errors.Is(err, hasher.ErrMismatch) {
			return nil, ErrInvalidCredentials
		}
		return nil, storeErr("verify password", err)
	}
	return u, nil
}

func (s *AuthService) fallbackHash() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash("fallback-password")
	})
	return s.dummyHash
}
