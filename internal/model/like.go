package model

import (
	"errors"
	"fmt"
	"time"
)

// TargetKind names what a like points at.
type TargetKind string

const (
	TargetPost    TargetKind = "post"
	TargetComment TargetKind = "comment"
)

// Validate reports whether k is a known target kind.
func (k TargetKind) Validate() error {
	switch k {
	case TargetPost, TargetComment:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidTargetKind, string(k))
}

// Like records that an actor liked a target. At most one exists per (ActorID, Kind, TargetID).
type Like struct {
	ActorID   int64
	Kind      TargetKind
	TargetID  int64
	CreatedAt time.Time
}

// LikeResult is the outcome of a like request. Repeat likes report AlreadyLiked.
type LikeResult struct {
	AlreadyLiked bool
	LikeCount    int
}

// LikeResponse is the body returned by both like endpoints.
// It is the same whether the call was the first like or a repeat.
type LikeResponse struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"like_count"`
}

var (
	ErrInvalidTargetKind = errors.New("invalid like target kind")
)
