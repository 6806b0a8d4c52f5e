package model

import (
	"errors"
	"time"
)

// Comment is one flat comment row. ParentID, when set, must name a comment on the same post.
type Comment struct {
	ID        int64     `db:"id" json:"id"`
	PostID    int64     `db:"post_id" json:"post"`
	UserID    int64     `db:"user_id" json:"-"`
	Content   string    `db:"content" json:"content"`
	ParentID  *int64    `db:"parent_id" json:"parent"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	LikeCount int       `db:"like_count" json:"like_count"`

	Author *UserSummary `json:"author"` // Joined field
}

// CommentNode is a comment with its nested replies, as rendered to clients.
type CommentNode struct {
	ID        int64          `json:"id"`
	PostID    int64          `json:"post"`
	Author    *UserSummary   `json:"author"`
	ParentID  *int64         `json:"parent"`
	Content   string         `json:"content"`
	CreatedAt time.Time      `json:"created_at"`
	LikeCount int            `json:"like_count"`
	Replies   []*CommentNode `json:"replies"`
}

// NewCommentNode wraps a comment with an empty replies list.
func NewCommentNode(c *Comment) *CommentNode {
	return &CommentNode{
		ID:        c.ID,
		PostID:    c.PostID,
		Author:    c.Author,
		ParentID:  c.ParentID,
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
		LikeCount: c.LikeCount,
		Replies:   []*CommentNode{},
	}
}

// CreateCommentRequest is the request body for creating a comment.
type CreateCommentRequest struct {
	Content  string `json:"content" validate:"required,max=10000"`
	ParentID *int64 `json:"parent"`
}

// Content constraints shared by posts and comments
const (
	MaxContentLength = 10000
)

// Comment errors
var (
	ErrCommentNotFound    = errors.New("comment not found")
	ErrContentRequired    = errors.New("content is required")
	ErrContentTooLong     = errors.New("content too long")
	ErrParentPostMismatch = errors.New("parent comment does not belong to this post")
)
