package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"karmafeed/internal/model"
	"karmafeed/internal/repository"
)

// UserService resolves request identities to stored users.
type UserService struct {
	repo repository.UserRepository
}

func NewUserService(repo repository.UserRepository) *UserService {
	return &UserService{repo: repo}
}

// Resolve returns the user named username, creating it on first sight.
func (s *UserService) Resolve(ctx context.Context, username string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || utf8.RuneCountInString(username) > model.MaxUsernameLength {
		return nil, model.ErrInvalidUsername
	}

	user, err := s.repo.GetOrCreate(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("resolve user %q: %w", username, err)
	}
	return user, nil
}

// Demo returns the shared user that anonymous requests act as.
func (s *UserService) Demo(ctx context.Context) (*model.User, error) {
	return s.Resolve(ctx, model.DemoUsername)
}

func (s *UserService) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return s.repo.GetByID(ctx, id)
}
