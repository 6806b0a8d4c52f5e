package service

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"karmafeed/internal/model"
	"karmafeed/internal/repository"
)

type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	userRepo    repository.UserRepository
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		userRepo:    userRepo,
	}
}

// Create adds a comment or a reply to a post. Every check runs before the insert.
// Replies nest at any depth; the parent must be on the same post.
func (s *CommentService) Create(ctx context.Context, postID, userID int64, req model.CreateCommentRequest) (*model.CommentNode, error) {
	req.Content = normalizeContent(req.Content)
	if err := validateContent(req); err != nil {
		return nil, err
	}

	exists, err := s.postRepo.Exists(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("check post exists: %w", err)
	}
	if !exists {
		return nil, model.ErrPostNotFound
	}

	if req.ParentID != nil {
		parent, err := s.commentRepo.GetByID(ctx, *req.ParentID)
		if err != nil {
			return nil, err // ErrCommentNotFound or wrapped error
		}
		if parent.PostID != postID {
			return nil, model.ErrParentPostMismatch
		}
	}

	comment, err := s.commentRepo.Create(ctx, postID, userID, req.Content, req.ParentID)
	if err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}

	if author, err := s.userRepo.GetByID(ctx, userID); err == nil {
		comment.Author = author.Summary()
	}

	log.WithFields(log.Fields{"comment": comment.ID, "post": postID, "user": userID}).Info("[CommentService] Comment created")
	return model.NewCommentNode(comment), nil
}
