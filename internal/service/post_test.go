package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"karmafeed/internal/model"
)

func TestPostService_Create_Validation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{"empty", "", model.ErrContentRequired},
		{"whitespace only", " \n\t ", model.ErrContentRequired},
		{"too long", strings.Repeat("a", model.MaxContentLength+1), model.ErrContentTooLong},
		{"multibyte at limit", strings.Repeat("é", model.MaxContentLength), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			author := f.user(t, "author")

			post, err := f.posts.Create(context.Background(), author.ID, model.CreatePostRequest{Content: tt.content})

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				posts, listErr := f.repos.Posts.ListRecent(context.Background(), 10)
				require.NoError(t, listErr)
				assert.Empty(t, posts, "nothing is written on validation failure")
				return
			}
			require.NoError(t, err)
			assert.NotZero(t, post.ID)
		})
	}
}

func TestPostService_Create_ReturnsAuthorAndEmptyComments(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, "author")

	post, err := f.posts.Create(context.Background(), author.ID, model.CreatePostRequest{Content: "  hi  "})
	require.NoError(t, err)

	assert.Equal(t, "hi", post.Content)
	require.NotNil(t, post.Author)
	assert.Equal(t, "author", post.Author.Username)
	assert.NotNil(t, post.Comments)
	assert.Empty(t, post.Comments)
}

func TestPostService_List_ComposesTrees(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice, bob := f.user(t, "alice"), f.user(t, "bob")

	older := f.post(t, alice, "older")
	newer := f.post(t, bob, "newer")

	root, err := f.comments.Create(ctx, older.ID, bob.ID, model.CreateCommentRequest{Content: "root"})
	require.NoError(t, err)
	reply, err := f.comments.Create(ctx, older.ID, alice.ID, model.CreateCommentRequest{Content: "reply", ParentID: &root.ID})
	require.NoError(t, err)
	_, err = f.comments.Create(ctx, older.ID, bob.ID, model.CreateCommentRequest{Content: "deep", ParentID: &reply.ID})
	require.NoError(t, err)

	_, err = f.likes.LikeComment(ctx, alice.ID, reply.ID)
	require.NoError(t, err)
	_, err = f.likes.LikePost(ctx, bob.ID, older.ID)
	require.NoError(t, err)

	posts, err := f.posts.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, posts, 2)

	assert.Equal(t, newer.ID, posts[0].ID, "newest first")
	assert.Empty(t, posts[0].Comments)

	got := posts[1]
	assert.Equal(t, 1, got.LikeCount)
	require.Len(t, got.Comments, 1)
	assert.Equal(t, "root", got.Comments[0].Content)
	assert.Equal(t, "bob", got.Comments[0].Author.Username)
	require.Len(t, got.Comments[0].Replies, 1)
	assert.Equal(t, 1, got.Comments[0].Replies[0].LikeCount)
	require.Len(t, got.Comments[0].Replies[0].Replies, 1)
	assert.Equal(t, "deep", got.Comments[0].Replies[0].Replies[0].Content)
	assert.Empty(t, got.Comments[0].Replies[0].Replies[0].Replies)
}

func TestPostService_List_LimitIsCapped(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, "author")
	for i := 0; i < model.MaxPostListLimit+5; i++ {
		f.post(t, author, "p")
	}

	posts, err := f.posts.List(context.Background(), 1000)
	require.NoError(t, err)
	assert.Len(t, posts, model.MaxPostListLimit)

	posts, err = f.posts.List(context.Background(), 3)
	require.NoError(t, err)
	assert.Len(t, posts, 3)
}

func TestPostService_List_Empty(t *testing.T) {
	f := newFixture(t)
	posts, err := f.posts.List(context.Background(), 10)
	require.NoError(t, err)
	assert.NotNil(t, posts)
	assert.Empty(t, posts)
}

func TestPostService_GetByID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.user(t, "author")
	post := f.post(t, author, "detail")
	_, err := f.comments.Create(ctx, post.ID, author.ID, model.CreateCommentRequest{Content: "c"})
	require.NoError(t, err)

	got, err := f.posts.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Len(t, got.Comments, 1)

	_, err = f.posts.GetByID(ctx, 404)
	assert.ErrorIs(t, err, model.ErrPostNotFound)
}
