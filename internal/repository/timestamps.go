package repository

import "karmafeed/internal/model"

// lib/pq decodes TIMESTAMPTZ in the session time zone. Everything leaving the
// repositories is pinned to UTC regardless of how the connection was opened.

func utcUser(u *model.User) {
	u.CreatedAt = u.CreatedAt.UTC()
}

func utcPost(p *model.Post) {
	p.CreatedAt = p.CreatedAt.UTC()
}

func utcComment(c *model.Comment) {
	c.CreatedAt = c.CreatedAt.UTC()
}

func utcEntry(t *model.KarmaTransaction) {
	t.CreatedAt = t.CreatedAt.UTC()
}
