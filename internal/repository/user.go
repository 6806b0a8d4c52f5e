package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"karmafeed/internal/model"
)

// userRepository implements UserRepository using sqlx
type userRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

// GetByID retrieves a user by their ID
func (r *userRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	query := `SELECT id, username, created_at FROM users WHERE id = $1`

	var u model.User
	err := r.db.GetContext(ctx, &u, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	utcUser(&u)
	return &u, nil
}

// GetByIDs loads several users in one query.
func (r *userRepository) GetByIDs(ctx context.Context, ids []int64) (map[int64]*model.User, error) {
	result := make(map[int64]*model.User, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var users []model.User
	err := r.db.SelectContext(ctx, &users, `SELECT id, username, created_at FROM users WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to get users by ids: %w", err)
	}

	for i := range users {
		utcUser(&users[i])
		result[users[i].ID] = &users[i]
	}
	return result, nil
}

// GetOrCreate upserts by username. The no-op DO UPDATE makes RETURNING yield the
// existing row when the username is taken.
func (r *userRepository) GetOrCreate(ctx context.Context, username string) (*model.User, error) {
	query := `
		INSERT INTO users (username)
		VALUES ($1)
		ON CONFLICT (username) DO UPDATE SET username = EXCLUDED.username
		RETURNING id, username, created_at
	`

	var u model.User
	if err := r.db.GetContext(ctx, &u, query, username); err != nil {
		return nil, fmt.Errorf("failed to get or create user: %w", err)
	}
	utcUser(&u)
	return &u, nil
}
