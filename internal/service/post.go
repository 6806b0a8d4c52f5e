package service

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"karmafeed/internal/metrics"
	"karmafeed/internal/model"
	"karmafeed/internal/repository"
	"karmafeed/internal/thread"
)

type PostService struct {
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	userRepo    repository.UserRepository
}

func NewPostService(
	postRepo repository.PostRepository,
	commentRepo repository.CommentRepository,
	userRepo repository.UserRepository,
) *PostService {
	return &PostService{
		postRepo:    postRepo,
		commentRepo: commentRepo,
		userRepo:    userRepo,
	}
}

// Create validates and stores a post. The result has an empty comment list.
func (s *PostService) Create(ctx context.Context, userID int64, req model.CreatePostRequest) (*model.Post, error) {
	req.Content = normalizeContent(req.Content)
	if err := validateContent(req); err != nil {
		return nil, err
	}

	post, err := s.postRepo.Create(ctx, userID, req.Content)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}

	posts := []model.Post{*post}
	if err := s.compose(ctx, posts, nil); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{"post": post.ID, "user": userID}).Info("[PostService] Post created")
	return &posts[0], nil
}

// List returns the newest posts, each with its full comment tree.
// It issues one read for the posts, one for all their comments and one for the authors.
func (s *PostService) List(ctx context.Context, limit int) ([]model.Post, error) {
	if limit <= 0 {
		limit = model.DefaultPostListLimit
	}
	if limit > model.MaxPostListLimit {
		limit = model.MaxPostListLimit
	}

	posts, err := s.postRepo.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	if len(posts) == 0 {
		return []model.Post{}, nil
	}

	postIDs := make([]int64, len(posts))
	for i := range posts {
		postIDs[i] = posts[i].ID
	}
	comments, err := s.commentRepo.ListByPostIDs(ctx, postIDs)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}

	if err := s.compose(ctx, posts, comments); err != nil {
		return nil, err
	}
	return posts, nil
}

// GetByID returns one post with its full comment tree.
func (s *PostService) GetByID(ctx context.Context, postID int64) (*model.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	comments, err := s.commentRepo.ListByPostIDs(ctx, []int64{postID})
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}

	posts := []model.Post{*post}
	if err := s.compose(ctx, posts, comments); err != nil {
		return nil, err
	}
	return &posts[0], nil
}

// compose attaches authors and comment trees to posts in place.
func (s *PostService) compose(ctx context.Context, posts []model.Post, comments []model.Comment) error {
	seen := make(map[int64]bool)
	var userIDs []int64
	addUser := func(id int64) {
		if !seen[id] {
			seen[id] = true
			userIDs = append(userIDs, id)
		}
	}
	for i := range posts {
		addUser(posts[i].UserID)
	}
	for i := range comments {
		addUser(comments[i].UserID)
	}

	users, err := s.userRepo.GetByIDs(ctx, userIDs)
	if err != nil {
		return fmt.Errorf("load authors: %w", err)
	}
	for i := range comments {
		if u, ok := users[comments[i].UserID]; ok {
			comments[i].Author = u.Summary()
		}
	}

	forest := thread.Build(comments)
	if orphans := forest.Orphans(); len(orphans) > 0 {
		metrics.AddOrphanRenders(len(orphans))
		for _, o := range orphans {
			log.WithFields(log.Fields{
				"comment": o.CommentID,
				"parent":  o.ParentID,
				"reason":  o.Reason,
			}).Warn("[PostService] Comment promoted to root")
		}
	}
	trees := forest.Nest()

	for i := range posts {
		if u, ok := users[posts[i].UserID]; ok {
			posts[i].Author = u.Summary()
		}
		posts[i].Comments = trees[posts[i].ID]
		if posts[i].Comments == nil {
			posts[i].Comments = []*model.CommentNode{}
		}
	}
	return nil
}
