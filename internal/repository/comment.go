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

type commentRepository struct {
	db *sqlx.DB
}

func NewCommentRepository(db *sqlx.DB) CommentRepository {
	return &commentRepository{db: db}
}

// Create inserts a new comment.
func (r *commentRepository) Create(ctx context.Context, postID, userID int64, content string, parentID *int64) (*model.Comment, error) {
	query := `
		INSERT INTO comments (post_id, user_id, content, parent_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, post_id, user_id, content, parent_id, created_at, 0 AS like_count
	`
	var comment model.Comment
	err := r.db.GetContext(ctx, &comment, query, postID, userID, content, parentID)
	if err != nil {
		switch foreignKeyViolation(err) {
		case "comments_post_id_fkey":
			return nil, model.ErrPostNotFound
		case "comments_parent_id_fkey":
			return nil, model.ErrCommentNotFound
		case "comments_user_id_fkey":
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("insert comment: %w", err)
	}
	utcComment(&comment)
	return &comment, nil
}

// GetByID retrieves a single comment.
func (r *commentRepository) GetByID(ctx context.Context, commentID int64) (*model.Comment, error) {
	query := `
		SELECT c.id, c.post_id, c.user_id, c.content, c.parent_id, c.created_at,
		       (SELECT COUNT(*) FROM comment_likes cl WHERE cl.comment_id = c.id) AS like_count
		FROM comments c
		WHERE c.id = $1
	`
	var comment model.Comment
	err := r.db.GetContext(ctx, &comment, query, commentID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrCommentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get comment: %w", err)
	}
	utcComment(&comment)
	return &comment, nil
}

// ListByPostIDs loads all comments of the given posts with one query, oldest first.
// The rows come back flat; arranging them into threads is the caller's job.
func (r *commentRepository) ListByPostIDs(ctx context.Context, postIDs []int64) ([]model.Comment, error) {
	comments := []model.Comment{}
	if len(postIDs) == 0 {
		return comments, nil
	}

	query := `
		SELECT c.id, c.post_id, c.user_id, c.content, c.parent_id, c.created_at,
		       COUNT(cl.user_id) AS like_count
		FROM comments c
		LEFT JOIN comment_likes cl ON cl.comment_id = c.id
		WHERE c.post_id = ANY($1)
		GROUP BY c.id
		ORDER BY c.created_at ASC, c.id ASC
	`
	if err := r.db.SelectContext(ctx, &comments, query, pq.Array(postIDs)); err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	for i := range comments {
		utcComment(&comments[i])
	}
	return comments, nil
}

// GetAuthorID returns the author of a comment.
func (r *commentRepository) GetAuthorID(ctx context.Context, commentID int64) (int64, error) {
	var authorID int64
	err := r.db.GetContext(ctx, &authorID, `SELECT user_id FROM comments WHERE id = $1`, commentID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, model.ErrCommentNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("get author id: %w", err)
	}
	return authorID, nil
}
