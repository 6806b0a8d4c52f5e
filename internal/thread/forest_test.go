package thread

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"karmafeed/internal/model"
)

var base = time.Date(2026, 1, 2, 3, 0, 0, 0, time.UTC)

func comment(id, postID int64, parent *int64, minute int) model.Comment {
	return model.Comment{
		ID:        id,
		PostID:    postID,
		UserID:    1,
		Content:   "c",
		ParentID:  parent,
		CreatedAt: base.Add(time.Duration(minute) * time.Minute),
	}
}

func ptr(v int64) *int64 { return &v }

// countNodes walks nested nodes and records every id it sees.
func countNodes(nodes []*model.CommentNode, seen map[int64]int) {
	for _, n := range nodes {
		seen[n.ID]++
		countNodes(n.Replies, seen)
	}
}

func assertOrdered(t *testing.T, nodes []*model.CommentNode) {
	t.Helper()
	for i := 1; i < len(nodes); i++ {
		assert.False(t, nodes[i].CreatedAt.Before(nodes[i-1].CreatedAt),
			"node %d created before its previous sibling %d", nodes[i].ID, nodes[i-1].ID)
	}
	for _, n := range nodes {
		assertOrdered(t, n.Replies)
	}
}

func TestBuild_Empty(t *testing.T) {
	f := Build(nil)

	assert.Equal(t, 0, f.Len())
	assert.Empty(t, f.Nest())
	assert.Empty(t, f.PostIDs())
	assert.Empty(t, f.Orphans())
}

func TestBuild_NestsDeepThread(t *testing.T) {
	// 1 <- 2 <- 3 <- 4, plus 5 as a second reply to 1
	comments := []model.Comment{
		comment(1, 10, nil, 0),
		comment(2, 10, ptr(1), 1),
		comment(3, 10, ptr(2), 2),
		comment(4, 10, ptr(3), 3),
		comment(5, 10, ptr(1), 4),
	}

	f := Build(comments)
	forest := f.Nest()

	require.Len(t, forest[10], 1)
	root := forest[10][0]
	assert.Equal(t, int64(1), root.ID)
	require.Len(t, root.Replies, 2)
	assert.Equal(t, int64(2), root.Replies[0].ID)
	assert.Equal(t, int64(5), root.Replies[1].ID)
	assert.Equal(t, int64(4), root.Replies[0].Replies[0].Replies[0].ID)

	assert.Equal(t, []int64{1}, f.Roots(10))
	assert.Equal(t, []int64{2, 5}, f.Children(1))
	assert.Equal(t, 3, f.Depth(4))
	assert.Equal(t, 0, f.Depth(1))
	assert.Equal(t, -1, f.Depth(99))
	assert.Empty(t, f.Orphans())
}

func TestBuild_GroupsRootsByPost(t *testing.T) {
	comments := []model.Comment{
		comment(1, 10, nil, 0),
		comment(2, 20, nil, 1),
		comment(3, 10, nil, 2),
		comment(4, 20, ptr(2), 3),
	}

	f := Build(comments)
	forest := f.Nest()

	assert.Equal(t, []int64{10, 20}, f.PostIDs())
	assert.Equal(t, []int64{1, 3}, f.Roots(10))
	assert.Equal(t, []int64{2}, f.Roots(20))
	require.Len(t, forest[20][0].Replies, 1)
	assert.Equal(t, int64(4), forest[20][0].Replies[0].ID)
}

func TestBuild_PromotesOrphansToRoots(t *testing.T) {
	tests := []struct {
		name     string
		comments []model.Comment
		orphanID int64
		postID   int64
		reason   OrphanReason
	}{
		{
			name: "parent not loaded",
			comments: []model.Comment{
				comment(1, 10, nil, 0),
				comment(2, 10, ptr(42), 1),
			},
			orphanID: 2,
			postID:   10,
			reason:   ParentMissing,
		},
		{
			name: "parent on another post",
			comments: []model.Comment{
				comment(1, 10, nil, 0),
				comment(2, 20, ptr(1), 1),
			},
			orphanID: 2,
			postID:   20,
			reason:   ParentOtherPost,
		},
		{
			name: "self parent",
			comments: []model.Comment{
				comment(7, 10, ptr(7), 0),
			},
			orphanID: 7,
			postID:   10,
			reason:   ParentSelf,
		},
		{
			name: "parent appears later",
			comments: []model.Comment{
				comment(2, 10, ptr(3), 0),
				comment(3, 10, nil, 1),
			},
			orphanID: 2,
			postID:   10,
			reason:   ParentLater,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Build(tt.comments)

			assert.Contains(t, f.Roots(tt.postID), tt.orphanID)
			orphans := f.Orphans()
			require.Len(t, orphans, 1)
			assert.Equal(t, tt.orphanID, orphans[0].CommentID)
			assert.Equal(t, tt.reason, orphans[0].Reason)

			seen := map[int64]int{}
			for _, roots := range f.Nest() {
				countNodes(roots, seen)
			}
			assert.Len(t, seen, len(tt.comments))
		})
	}
}

func TestBuild_CycleDoesNotHideNodes(t *testing.T) {
	// 1 and 2 name each other; 3 replies to 2
	comments := []model.Comment{
		comment(1, 10, ptr(2), 0),
		comment(2, 10, ptr(1), 1),
		comment(3, 10, ptr(2), 2),
	}

	f := Build(comments)

	seen := map[int64]int{}
	countNodes(f.Nest()[10], seen)
	assert.Equal(t, map[int64]int{1: 1, 2: 1, 3: 1}, seen)
	assert.Equal(t, []int64{1}, f.Roots(10))
	assert.Equal(t, []int64{2}, f.Children(1))
}

func TestBuild_DoesNotAliasInput(t *testing.T) {
	comments := []model.Comment{comment(1, 10, nil, 0)}
	f := Build(comments)

	comments[0].Content = "changed"

	c, ok := f.Comment(1)
	require.True(t, ok)
	assert.Equal(t, "c", c.Content)
}

// TestBuild_RandomForestsAreComplete checks completeness and ordering over random input.
func TestBuild_RandomForestsAreComplete(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for round := 0; round < 50; round++ {
		n := rng.Intn(200)
		comments := make([]model.Comment, 0, n)
		for i := 0; i < n; i++ {
			id := int64(i + 1)
			postID := int64(rng.Intn(4) + 1)
			var parent *int64
			switch rng.Intn(4) {
			case 0:
				// root
			case 1:
				parent = ptr(int64(rng.Intn(n+5) + 1)) // may be missing, later or on another post
			default:
				if i > 0 {
					parent = ptr(int64(rng.Intn(i) + 1))
				}
			}
			comments = append(comments, comment(id, postID, parent, i))
		}

		f := Build(comments)
		forest := f.Nest()

		seen := map[int64]int{}
		for postID, roots := range forest {
			for _, r := range roots {
				assert.Equal(t, postID, r.PostID)
			}
			countNodes(roots, seen)
			assertOrdered(t, roots)
		}
		require.Len(t, seen, n, "round %d", round)
		for id, times := range seen {
			assert.Equal(t, 1, times, "comment %d rendered %d times", id, times)
		}
	}
}
