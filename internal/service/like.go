package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"karmafeed/internal/metrics"
	"karmafeed/internal/model"
	"karmafeed/internal/repository"
)

// LikeService records likes and the karma they award.
type LikeService struct {
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	likeRepo    repository.LikeRepository
	now         func() time.Time
}

// Option configures services that read the clock.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func applyOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func NewLikeService(
	postRepo repository.PostRepository,
	commentRepo repository.CommentRepository,
	likeRepo repository.LikeRepository,
	opts ...Option,
) *LikeService {
	o := applyOptions(opts)
	return &LikeService{
		postRepo:    postRepo,
		commentRepo: commentRepo,
		likeRepo:    likeRepo,
		now:         o.now,
	}
}

func (s *LikeService) LikePost(ctx context.Context, actorID, postID int64) (model.LikeResult, error) {
	return s.Like(ctx, actorID, model.TargetPost, postID)
}

func (s *LikeService) LikeComment(ctx context.Context, actorID, commentID int64) (model.LikeResult, error) {
	return s.Like(ctx, actorID, model.TargetComment, commentID)
}

// Like records actorID's like of a target. Only the first like per (actor, target)
// writes a like row and a ledger entry for the target's author; repeats, including
// the losing side of a race, report AlreadyLiked and write nothing.
func (s *LikeService) Like(ctx context.Context, actorID int64, kind model.TargetKind, targetID int64) (model.LikeResult, error) {
	if err := kind.Validate(); err != nil {
		return model.LikeResult{}, err
	}

	recipient, err := s.authorOf(ctx, kind, targetID)
	if err != nil {
		s.observeFailure(kind, err)
		return model.LikeResult{}, err
	}

	at := s.now().UTC()
	like := model.Like{ActorID: actorID, Kind: kind, TargetID: targetID, CreatedAt: at}
	entry := model.NewLikeTransaction(kind, targetID, recipient, at)

	created, err := s.likeRepo.Create(ctx, like, entry)
	if err != nil {
		s.observeFailure(kind, err)
		return model.LikeResult{}, fmt.Errorf("record %s like: %w", kind, err)
	}

	count, err := s.likeRepo.Count(ctx, kind, targetID)
	if err != nil {
		return model.LikeResult{}, fmt.Errorf("count %s likes: %w", kind, err)
	}

	fields := log.Fields{"kind": kind, "target": targetID, "actor": actorID, "likes": count}
	if !created {
		metrics.ObserveLike(string(kind), metrics.OutcomeDuplicate)
		log.WithFields(fields).Debug("[LikeService] Already liked")
		return model.LikeResult{AlreadyLiked: true, LikeCount: count}, nil
	}

	metrics.ObserveLike(string(kind), metrics.OutcomeCreated)
	fields["recipient"] = recipient
	fields["karma"] = entry.Amount
	log.WithFields(fields).Info("[LikeService] Like recorded")
	return model.LikeResult{LikeCount: count}, nil
}

func (s *LikeService) authorOf(ctx context.Context, kind model.TargetKind, targetID int64) (int64, error) {
	switch kind {
	case model.TargetPost:
		return s.postRepo.GetAuthorID(ctx, targetID)
	case model.TargetComment:
		return s.commentRepo.GetAuthorID(ctx, targetID)
	}
	return 0, model.ErrInvalidTargetKind
}

func (s *LikeService) observeFailure(kind model.TargetKind, err error) {
	if isNotFound(err) {
		metrics.ObserveLike(string(kind), metrics.OutcomeNotFound)
		return
	}
	metrics.ObserveLike(string(kind), metrics.OutcomeError)
}

func isNotFound(err error) bool {
	return errors.Is(err, model.ErrPostNotFound) ||
		errors.Is(err, model.ErrCommentNotFound) ||
		errors.Is(err, model.ErrUserNotFound)
}
