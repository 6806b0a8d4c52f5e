package model

import (
	"time"

	"github.com/google/uuid"
)

// KarmaReason tags why a ledger entry exists.
type KarmaReason string

const (
	ReasonPostLike    KarmaReason = "post_like"
	ReasonCommentLike KarmaReason = "comment_like"
)

// Karma awarded to the target's author per first like
const (
	PostLikeKarma    = 5
	CommentLikeKarma = 1
)

// KarmaTransaction is one immutable ledger entry. Karma only ever exists as a sum of these.
type KarmaTransaction struct {
	ID        uuid.UUID   `db:"id" json:"id"`
	UserID    int64       `db:"user_id" json:"user_id"`
	Amount    int         `db:"amount" json:"amount"`
	Reason    KarmaReason `db:"reason" json:"reason"`
	CreatedAt time.Time   `db:"created_at" json:"created_at"`

	// Optional references to the originating target, for audit
	PostID    *int64 `db:"post_id" json:"post_id,omitempty"`
	CommentID *int64 `db:"comment_id" json:"comment_id,omitempty"`
}

// NewLikeTransaction builds the ledger entry credited to recipient for a first like on target.
func NewLikeTransaction(kind TargetKind, targetID, recipient int64, at time.Time) KarmaTransaction {
	id := targetID
	t := KarmaTransaction{
		ID:        uuid.New(),
		UserID:    recipient,
		CreatedAt: at.UTC(),
	}
	switch kind {
	case TargetPost:
		t.Amount = PostLikeKarma
		t.Reason = ReasonPostLike
		t.PostID = &id
	case TargetComment:
		t.Amount = CommentLikeKarma
		t.Reason = ReasonCommentLike
		t.CommentID = &id
	}
	return t
}

// LedgerQuery selects entries with Since <= CreatedAt < Until, optionally for some recipients only.
type LedgerQuery struct {
	Recipients []int64
	Since      time.Time
	Until      time.Time
}

// Contains reports whether t falls inside the query's half-open window and recipient filter.
func (q LedgerQuery) Contains(t KarmaTransaction) bool {
	if t.CreatedAt.Before(q.Since) || !t.CreatedAt.Before(q.Until) {
		return false
	}
	if len(q.Recipients) == 0 {
		return true
	}
	for _, id := range q.Recipients {
		if id == t.UserID {
			return true
		}
	}
	return false
}
