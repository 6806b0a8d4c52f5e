// Package memory is an in-process backend for every repository interface.
// It backs the memory store mode and the service tests. One mutex guards all state,
// so a like and its ledger entry become visible together or not at all.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"karmafeed/internal/model"
	"karmafeed/internal/repository"
)

type likeKey struct {
	actor    int64
	kind     model.TargetKind
	targetID int64
}

// Store holds users, posts, comments, likes and the ledger.
type Store struct {
	mu  sync.RWMutex
	now func() time.Time

	users      map[int64]*model.User
	byUsername map[string]int64
	posts      map[int64]*model.Post
	postOrder  []int64
	comments   map[int64]*model.Comment
	likes      map[likeKey]model.Like
	ledger     []model.KarmaTransaction

	nextUserID    int64
	nextPostID    int64
	nextCommentID int64
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the clock used for created_at on users, posts and comments.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		now:        time.Now,
		users:      make(map[int64]*model.User),
		byUsername: make(map[string]int64),
		posts:      make(map[int64]*model.Post),
		comments:   make(map[int64]*model.Comment),
		likes:      make(map[likeKey]model.Like),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Repositories exposes the store through the repository interfaces.
func (s *Store) Repositories() repository.Store {
	return repository.Store{
		Users:    userRepo{s},
		Posts:    postRepo{s},
		Comments: commentRepo{s},
		Likes:    likeRepo{s},
		Ledger:   ledgerRepo{s},
	}
}

func (s *Store) stamp() time.Time {
	return s.now().UTC()
}

// countLikes derives a target's like count from the like records. Callers hold the lock.
func (s *Store) countLikes(kind model.TargetKind, targetID int64) int {
	n := 0
	for k := range s.likes {
		if k.kind == kind && k.targetID == targetID {
			n++
		}
	}
	return n
}

// --- users ---

type userRepo struct{ s *Store }

func (r userRepo) GetByID(_ context.Context, id int64) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r userRepo) GetByIDs(_ context.Context, ids []int64) (map[int64]*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make(map[int64]*model.User, len(ids))
	for _, id := range ids {
		if u, ok := r.s.users[id]; ok {
			cp := *u
			out[id] = &cp
		}
	}
	return out, nil
}

func (r userRepo) GetOrCreate(_ context.Context, username string) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if id, ok := r.s.byUsername[username]; ok {
		cp := *r.s.users[id]
		return &cp, nil
	}
	r.s.nextUserID++
	u := &model.User{ID: r.s.nextUserID, Username: username, CreatedAt: r.s.stamp()}
	r.s.users[u.ID] = u
	r.s.byUsername[username] = u.ID
	cp := *u
	return &cp, nil
}

// --- posts ---

type postRepo struct{ s *Store }

func (r postRepo) Create(_ context.Context, userID int64, content string) (*model.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[userID]; !ok {
		return nil, model.ErrUserNotFound
	}
	r.s.nextPostID++
	p := &model.Post{ID: r.s.nextPostID, UserID: userID, Content: content, CreatedAt: r.s.stamp()}
	r.s.posts[p.ID] = p
	r.s.postOrder = append(r.s.postOrder, p.ID)
	return r.s.postCopy(p), nil
}

func (r postRepo) GetByID(_ context.Context, postID int64) (*model.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.posts[postID]
	if !ok {
		return nil, model.ErrPostNotFound
	}
	return r.s.postCopy(p), nil
}

func (r postRepo) ListRecent(_ context.Context, limit int) ([]model.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	posts := make([]model.Post, 0, len(r.s.postOrder))
	for _, id := range r.s.postOrder {
		posts = append(posts, *r.s.postCopy(r.s.posts[id]))
	}
	sort.SliceStable(posts, func(i, j int) bool {
		if !posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].CreatedAt.After(posts[j].CreatedAt)
		}
		return posts[i].ID > posts[j].ID
	})
	if limit > 0 && len(posts) > limit {
		posts = posts[:limit]
	}
	return posts, nil
}

func (r postRepo) GetAuthorID(_ context.Context, postID int64) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.posts[postID]
	if !ok {
		return 0, model.ErrPostNotFound
	}
	return p.UserID, nil
}

func (r postRepo) Exists(_ context.Context, postID int64) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	_, ok := r.s.posts[postID]
	return ok, nil
}

// postCopy must be called with the lock held.
func (s *Store) postCopy(p *model.Post) *model.Post {
	cp := *p
	cp.LikeCount = s.countLikes(model.TargetPost, p.ID)
	return &cp
}

// --- comments ---

type commentRepo struct{ s *Store }

func (r commentRepo) Create(_ context.Context, postID, userID int64, content string, parentID *int64) (*model.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.posts[postID]; !ok {
		return nil, model.ErrPostNotFound
	}
	if _, ok := r.s.users[userID]; !ok {
		return nil, model.ErrUserNotFound
	}
	if parentID != nil {
		if _, ok := r.s.comments[*parentID]; !ok {
			return nil, model.ErrCommentNotFound
		}
	}

	r.s.nextCommentID++
	c := &model.Comment{
		ID:        r.s.nextCommentID,
		PostID:    postID,
		UserID:    userID,
		Content:   content,
		CreatedAt: r.s.stamp(),
	}
	if parentID != nil {
		p := *parentID
		c.ParentID = &p
	}
	r.s.comments[c.ID] = c
	return r.s.commentCopy(c), nil
}

func (r commentRepo) GetByID(_ context.Context, commentID int64) (*model.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.comments[commentID]
	if !ok {
		return nil, model.ErrCommentNotFound
	}
	return r.s.commentCopy(c), nil
}

func (r commentRepo) ListByPostIDs(_ context.Context, postIDs []int64) ([]model.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	wanted := make(map[int64]bool, len(postIDs))
	for _, id := range postIDs {
		wanted[id] = true
	}

	out := []model.Comment{}
	for _, c := range r.s.comments {
		if wanted[c.PostID] {
			out = append(out, *r.s.commentCopy(c))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r commentRepo) GetAuthorID(_ context.Context, commentID int64) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.comments[commentID]
	if !ok {
		return 0, model.ErrCommentNotFound
	}
	return c.UserID, nil
}

// commentCopy must be called with the lock held.
func (s *Store) commentCopy(c *model.Comment) *model.Comment {
	cp := *c
	if c.ParentID != nil {
		p := *c.ParentID
		cp.ParentID = &p
	}
	cp.LikeCount = s.countLikes(model.TargetComment, c.ID)
	return &cp
}

// --- likes ---

type likeRepo struct{ s *Store }

// Create checks and inserts under the write lock, which plays the role of the
// unique constraint: a racing duplicate always observes the first like.
func (r likeRepo) Create(_ context.Context, like model.Like, entry model.KarmaTransaction) (bool, error) {
	if err := like.Kind.Validate(); err != nil {
		return false, err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[like.ActorID]; !ok {
		return false, model.ErrUserNotFound
	}
	switch like.Kind {
	case model.TargetPost:
		if _, ok := r.s.posts[like.TargetID]; !ok {
			return false, model.ErrPostNotFound
		}
	case model.TargetComment:
		if _, ok := r.s.comments[like.TargetID]; !ok {
			return false, model.ErrCommentNotFound
		}
	}

	key := likeKey{actor: like.ActorID, kind: like.Kind, targetID: like.TargetID}
	if _, exists := r.s.likes[key]; exists {
		return false, nil
	}

	r.s.likes[key] = like
	r.s.ledger = append(r.s.ledger, cloneEntry(entry))
	return true, nil
}

func (r likeRepo) Count(_ context.Context, kind model.TargetKind, targetID int64) (int, error) {
	if err := kind.Validate(); err != nil {
		return 0, err
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return r.s.countLikes(kind, targetID), nil
}

// --- ledger ---

type ledgerRepo struct{ s *Store }

func (r ledgerRepo) Append(_ context.Context, entry model.KarmaTransaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.ledger = append(r.s.ledger, cloneEntry(entry))
	return nil
}

func (r ledgerRepo) QueryRange(_ context.Context, q model.LedgerQuery) ([]model.KarmaTransaction, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []model.KarmaTransaction{}
	for _, t := range r.s.ledger {
		if q.Contains(t) {
			out = append(out, cloneEntry(t))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// cloneEntry detaches the reference pointers so callers cannot reach stored entries.
func cloneEntry(t model.KarmaTransaction) model.KarmaTransaction {
	t.CreatedAt = t.CreatedAt.UTC()
	if t.PostID != nil {
		id := *t.PostID
		t.PostID = &id
	}
	if t.CommentID != nil {
		id := *t.CommentID
		t.CommentID = &id
	}
	return t
}
