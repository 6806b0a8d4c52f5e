// Package thread assembles flat comment rows into per-post reply trees.
//
// The forest is an arena: comments live in one slice, and every node keeps the
// positions of its children instead of owning them. Building it is a single pass
// over the input and never touches a data source.
package thread

import "karmafeed/internal/model"

// OrphanReason explains why a comment with a parent id was promoted to a root.
type OrphanReason string

const (
	// ParentMissing means the parent id is not in the supplied set.
	ParentMissing OrphanReason = "parent_missing"
	// ParentOtherPost means the parent exists but belongs to a different post.
	ParentOtherPost OrphanReason = "parent_other_post"
	// ParentSelf means the comment names itself as parent.
	ParentSelf OrphanReason = "parent_self"
	// ParentLater means the parent appears after the child in creation order.
	// Refusing forward edges is what keeps a malformed parent cycle from hiding nodes.
	ParentLater OrphanReason = "parent_later"
)

// Orphan is a comment that named a parent but was rendered as a root.
type Orphan struct {
	CommentID int64
	ParentID  int64
	Reason    OrphanReason
}

// Forest holds the comments of one or more posts arranged as trees.
type Forest struct {
	items    []model.Comment
	index    map[int64]int // comment id -> position of its first occurrence
	parent   []int         // position -> parent position, -1 for roots
	children [][]int       // position -> child positions in input order
	roots    map[int64][]int
	posts    []int64 // post ids in first-seen order
	orphans  []Orphan
}

// Build arranges comments, which must be in ascending creation order, into a forest.
//
// A comment is attached under its parent only when the parent is in the input, is on
// the same post, and was seen earlier. Every other comment becomes a root of its own
// post and, if it named a parent, is reported by Orphans. No comment is ever dropped.
func Build(comments []model.Comment) *Forest {
	n := len(comments)
	f := &Forest{
		items:    append([]model.Comment(nil), comments...),
		index:    make(map[int64]int, n),
		parent:   make([]int, n),
		children: make([][]int, n),
		roots:    make(map[int64][]int),
	}

	for i := range f.items {
		if _, dup := f.index[f.items[i].ID]; !dup {
			f.index[f.items[i].ID] = i
		}
	}

	for i := range f.items {
		c := &f.items[i]
		p, reason := f.resolveParent(i)
		if p >= 0 {
			f.parent[i] = p
			f.children[p] = append(f.children[p], i)
			continue
		}

		f.parent[i] = -1
		if reason != "" {
			f.orphans = append(f.orphans, Orphan{CommentID: c.ID, ParentID: *c.ParentID, Reason: reason})
		}
		if _, ok := f.roots[c.PostID]; !ok {
			f.posts = append(f.posts, c.PostID)
		}
		f.roots[c.PostID] = append(f.roots[c.PostID], i)
	}

	return f
}

// resolveParent returns the position of the item's adopting parent, or -1 and the
// reason it has none. A nil parent id yields -1 and an empty reason.
func (f *Forest) resolveParent(i int) (int, OrphanReason) {
	c := &f.items[i]
	if c.ParentID == nil {
		return -1, ""
	}
	if *c.ParentID == c.ID {
		return -1, ParentSelf
	}
	p, ok := f.index[*c.ParentID]
	if !ok {
		return -1, ParentMissing
	}
	if f.items[p].PostID != c.PostID {
		return -1, ParentOtherPost
	}
	if p >= i {
		return -1, ParentLater
	}
	return p, ""
}

// Len returns the number of comments in the forest.
func (f *Forest) Len() int {
	return len(f.items)
}

// PostIDs returns the ids of posts that have at least one comment, in first-seen order.
func (f *Forest) PostIDs() []int64 {
	return append([]int64(nil), f.posts...)
}

// Orphans returns the comments promoted to roots despite naming a parent.
func (f *Forest) Orphans() []Orphan {
	return append([]Orphan(nil), f.orphans...)
}

// Comment returns the comment with the given id.
func (f *Forest) Comment(id int64) (*model.Comment, bool) {
	i, ok := f.index[id]
	if !ok {
		return nil, false
	}
	return &f.items[i], true
}

// Roots returns the root comment ids of a post in creation order.
func (f *Forest) Roots(postID int64) []int64 {
	return f.ids(f.roots[postID])
}

// Children returns the direct reply ids of a comment in creation order.
func (f *Forest) Children(id int64) []int64 {
	i, ok := f.index[id]
	if !ok {
		return nil
	}
	return f.ids(f.children[i])
}

// Depth returns how many ancestors a comment has in the forest; roots have depth 0.
func (f *Forest) Depth(id int64) int {
	i, ok := f.index[id]
	if !ok {
		return -1
	}
	depth := 0
	for p := f.parent[i]; p >= 0; p = f.parent[p] {
		depth++
	}
	return depth
}

// Nest renders the forest as nested nodes keyed by post id.
// Every post that has comments maps to its roots; replies are attached in creation order.
func (f *Forest) Nest() map[int64][]*model.CommentNode {
	nodes := make([]*model.CommentNode, len(f.items))
	for i := range f.items {
		nodes[i] = model.NewCommentNode(&f.items[i])
	}
	for i, kids := range f.children {
		for _, k := range kids {
			nodes[i].Replies = append(nodes[i].Replies, nodes[k])
		}
	}

	out := make(map[int64][]*model.CommentNode, len(f.roots))
	for postID, roots := range f.roots {
		list := make([]*model.CommentNode, len(roots))
		for j, r := range roots {
			list[j] = nodes[r]
		}
		out[postID] = list
	}
	return out
}

func (f *Forest) ids(positions []int) []int64 {
	out := make([]int64, len(positions))
	for j, p := range positions {
		out[j] = f.items[p].ID
	}
	return out
}
