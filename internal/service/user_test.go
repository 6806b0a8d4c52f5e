package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"karmafeed/internal/model"
)

// =============================================================================
// MOCK REPOSITORY
// =============================================================================
//
// UserService depends on the UserRepository interface, so tests swap in a mock
// that returns controlled responses instead of opening a database.

type mockUserRepository struct {
	getByIDFn     func(ctx context.Context, id int64) (*model.User, error)
	getByIDsFn    func(ctx context.Context, ids []int64) (map[int64]*model.User, error)
	getOrCreateFn func(ctx context.Context, username string) (*model.User, error)

	// Track calls for assertions
	getOrCreateCalls []string
}

func (m *mockUserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) GetByIDs(ctx context.Context, ids []int64) (map[int64]*model.User, error) {
	if m.getByIDsFn != nil {
		return m.getByIDsFn(ctx, ids)
	}
	return map[int64]*model.User{}, nil
}

func (m *mockUserRepository) GetOrCreate(ctx context.Context, username string) (*model.User, error) {
	m.getOrCreateCalls = append(m.getOrCreateCalls, username)
	if m.getOrCreateFn != nil {
		return m.getOrCreateFn(ctx, username)
	}
	return &model.User{ID: 1, Username: username, CreatedAt: time.Now()}, nil
}

// =============================================================================
// RESOLVE TESTS
// =============================================================================

func TestUserService_Resolve_TrimsAndCreates(t *testing.T) {
	// ARRANGE
	mockRepo := &mockUserRepository{}
	svc := NewUserService(mockRepo)

	// ACT
	user, err := svc.Resolve(context.Background(), "  alice ")

	// ASSERT
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if user.Username != "alice" {
		t.Errorf("username = %q, want %q", user.Username, "alice")
	}
	if len(mockRepo.getOrCreateCalls) != 1 || mockRepo.getOrCreateCalls[0] != "alice" {
		t.Errorf("GetOrCreate calls = %v, want [alice]", mockRepo.getOrCreateCalls)
	}
}

func TestUserService_Resolve_RejectsInvalid(t *testing.T) {
	tests := []struct {
		name     string
		username string
	}{
		{"empty", ""},
		{"whitespace", "   "},
		{"too long", strings.Repeat("x", model.MaxUsernameLength+1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &mockUserRepository{}
			svc := NewUserService(mockRepo)

			_, err := svc.Resolve(context.Background(), tt.username)

			if !errors.Is(err, model.ErrInvalidUsername) {
				t.Errorf("error = %v, want %v", err, model.ErrInvalidUsername)
			}
			if len(mockRepo.getOrCreateCalls) != 0 {
				t.Error("GetOrCreate should not be called for an invalid username")
			}
		})
	}
}

func TestUserService_Resolve_WrapsRepositoryError(t *testing.T) {
	dbError := errors.New("database connection failed")
	mockRepo := &mockUserRepository{
		getOrCreateFn: func(ctx context.Context, username string) (*model.User, error) {
			return nil, dbError
		},
	}
	svc := NewUserService(mockRepo)

	_, err := svc.Resolve(context.Background(), "bob")

	if !errors.Is(err, dbError) {
		t.Errorf("error should wrap original database error, got %v", err)
	}
}

func TestUserService_Demo(t *testing.T) {
	mockRepo := &mockUserRepository{}
	svc := NewUserService(mockRepo)

	user, err := svc.Demo(context.Background())

	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if user.Username != model.DemoUsername {
		t.Errorf("username = %q, want %q", user.Username, model.DemoUsername)
	}
}
