package repository

import (
	"context"

	"karmafeed/internal/model"
)

type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
	// GetByIDs returns the users that exist among ids, keyed by id.
	GetByIDs(ctx context.Context, ids []int64) (map[int64]*model.User, error)
	// GetOrCreate returns the user with the username, creating it if needed.
	GetOrCreate(ctx context.Context, username string) (*model.User, error)
}

type PostRepository interface {
	Create(ctx context.Context, userID int64, content string) (*model.Post, error)
	// GetByID returns a post with its derived like count.
	GetByID(ctx context.Context, postID int64) (*model.Post, error)
	// ListRecent returns the newest posts first, with derived like counts.
	ListRecent(ctx context.Context, limit int) ([]model.Post, error)
	GetAuthorID(ctx context.Context, postID int64) (int64, error)
	Exists(ctx context.Context, postID int64) (bool, error)
}

type CommentRepository interface {
	Create(ctx context.Context, postID, userID int64, content string, parentID *int64) (*model.Comment, error)
	GetByID(ctx context.Context, commentID int64) (*model.Comment, error)
	// ListByPostIDs returns every comment of the posts in ascending creation order,
	// with derived like counts, in a single read.
	ListByPostIDs(ctx context.Context, postIDs []int64) ([]model.Comment, error)
	GetAuthorID(ctx context.Context, commentID int64) (int64, error)
}

type LikeRepository interface {
	// Create inserts the like and, only if the insert happened, appends entry to the
	// ledger, both in one atomic unit. It reports false when the actor had already liked
	// the target; that outcome writes nothing and is not an error.
	Create(ctx context.Context, like model.Like, entry model.KarmaTransaction) (created bool, err error)
	// Count returns the number of like records for a target.
	Count(ctx context.Context, kind model.TargetKind, targetID int64) (int, error)
}

// LedgerRepository is the append-only karma ledger. Entries are never changed or
// removed once appended.
type LedgerRepository interface {
	Append(ctx context.Context, entry model.KarmaTransaction) error
	// QueryRange returns entries with q.Since <= created_at < q.Until ordered by created_at.
	QueryRange(ctx context.Context, q model.LedgerQuery) ([]model.KarmaTransaction, error)
}

// Store bundles one backend's repositories.
type Store struct {
	Users    UserRepository
	Posts    PostRepository
	Comments CommentRepository
	Likes    LikeRepository
	Ledger   LedgerRepository
}
