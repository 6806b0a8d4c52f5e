package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"karmafeed/internal/model"
)

type postRepository struct {
	db *sqlx.DB
}

func NewPostRepository(db *sqlx.DB) PostRepository {
	return &postRepository{db: db}
}

// postColumns selects a post together with its like count, derived from post_likes.
const postColumns = `
	p.id, p.user_id, p.content, p.created_at,
	(SELECT COUNT(*) FROM post_likes pl WHERE pl.post_id = p.id) AS like_count
`

// Create inserts a new post.
func (r *postRepository) Create(ctx context.Context, userID int64, content string) (*model.Post, error) {
	query := `
		INSERT INTO posts (user_id, content)
		VALUES ($1, $2)
		RETURNING id, user_id, content, created_at, 0 AS like_count
	`
	var post model.Post
	if err := r.db.GetContext(ctx, &post, query, userID, content); err != nil {
		if foreignKeyViolation(err) != "" {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("insert post: %w", err)
	}
	utcPost(&post)
	return &post, nil
}

// GetByID retrieves a single post.
func (r *postRepository) GetByID(ctx context.Context, postID int64) (*model.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts p WHERE p.id = $1`

	var post model.Post
	err := r.db.GetContext(ctx, &post, query, postID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	utcPost(&post)
	return &post, nil
}

// ListRecent returns the newest posts first.
func (r *postRepository) ListRecent(ctx context.Context, limit int) ([]model.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts p ORDER BY p.created_at DESC, p.id DESC LIMIT $1`

	posts := []model.Post{}
	if err := r.db.SelectContext(ctx, &posts, query, limit); err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	for i := range posts {
		utcPost(&posts[i])
	}
	return posts, nil
}

// GetAuthorID returns the author of a post.
func (r *postRepository) GetAuthorID(ctx context.Context, postID int64) (int64, error) {
	var authorID int64
	err := r.db.GetContext(ctx, &authorID, `SELECT user_id FROM posts WHERE id = $1`, postID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, model.ErrPostNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("get author id: %w", err)
	}
	return authorID, nil
}

// Exists checks if a post exists.
func (r *postRepository) Exists(ctx context.Context, postID int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM posts WHERE id = $1)`, postID)
	if err != nil {
		return false, fmt.Errorf("check post exists: %w", err)
	}
	return exists, nil
}
