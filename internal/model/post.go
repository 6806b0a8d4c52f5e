package model

import (
	"errors"
	"time"
)

// Post is the root of a comment forest. LikeCount is derived from like rows on every read.
type Post struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"-"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	LikeCount int       `db:"like_count" json:"like_count"`

	// Joined fields (not in posts table)
	Author   *UserSummary   `json:"author"`
	Comments []*CommentNode `json:"comments"`
}

// CreatePostRequest is the request body for creating a post.
type CreatePostRequest struct {
	Content string `json:"content" validate:"required,max=10000"`
}

// Post listing constants
const (
	DefaultPostListLimit = 50
	MaxPostListLimit     = 100
)

// Post errors
var (
	ErrPostNotFound = errors.New("post not found")
)
