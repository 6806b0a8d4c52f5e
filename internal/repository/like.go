package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"karmafeed/internal/model"
)

type likeRepository struct {
	db *sqlx.DB
}

func NewLikeRepository(db *sqlx.DB) LikeRepository {
	return &likeRepository{db: db}
}

// likeTables maps a target kind to its like table and target column.
var likeTables = map[model.TargetKind]struct{ table, column string }{
	model.TargetPost:    {"post_likes", "post_id"},
	model.TargetComment: {"comment_likes", "comment_id"},
}

// Create records a like and its ledger entry in one transaction.
//
// The insert is conditional on the (user, target) unique constraint. A racing duplicate
// blocks on the constraint until the first transaction commits, then inserts nothing,
// so exactly one ledger entry is ever written per pair.
func (r *likeRepository) Create(ctx context.Context, like model.Like, entry model.KarmaTransaction) (bool, error) {
	t, ok := likeTables[like.Kind]
	if !ok {
		return false, like.Kind.Validate()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, %s, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, %s) DO NOTHING
		RETURNING id
	`, t.table, t.column, t.column)

	var likeID int64
	err = tx.GetContext(ctx, &likeID, query, like.ActorID, like.TargetID, like.CreatedAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// Already liked: nothing inserted, nothing to append.
		return false, nil
	case isUniqueViolation(err):
		return false, nil
	case err != nil:
		if fk := foreignKeyViolation(err); fk != "" {
			return false, likeTargetNotFound(like.Kind, fk)
		}
		return false, fmt.Errorf("insert like: %w", err)
	}

	if err := appendEntry(ctx, tx, entry); err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit transaction: %w", err)
	}
	return true, nil
}

// Count returns the number of likes on a target.
func (r *likeRepository) Count(ctx context.Context, kind model.TargetKind, targetID int64) (int, error) {
	t, ok := likeTables[kind]
	if !ok {
		return 0, kind.Validate()
	}

	var count int
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s = $1`, t.table, t.column)
	if err := r.db.GetContext(ctx, &count, query, targetID); err != nil {
		return 0, fmt.Errorf("count likes: %w", err)
	}
	return count, nil
}

func likeTargetNotFound(kind model.TargetKind, constraint string) error {
	switch {
	case constraint == "post_likes_user_id_fkey", constraint == "comment_likes_user_id_fkey":
		return model.ErrUserNotFound
	case kind == model.TargetPost:
		return model.ErrPostNotFound
	default:
		return model.ErrCommentNotFound
	}
}
