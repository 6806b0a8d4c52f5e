package model

import (
	"errors"
	"time"
)

// User is an identity owned by the surrounding system. Everything else refers to it by ID.
type User struct {
	ID        int64     `db:"id" json:"id"`
	Username  string    `db:"username" json:"username"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// UserSummary is the author shape embedded in posts, comments and leaderboard rows.
type UserSummary struct {
	ID       int64  `db:"id" json:"id"`
	Username string `db:"username" json:"username"`
}

// Summary returns the public projection of the user.
func (u *User) Summary() *UserSummary {
	return &UserSummary{ID: u.ID, Username: u.Username}
}

// DemoUsername is the shared identity used when a request carries none.
const DemoUsername = "demo"

// MaxUsernameLength bounds usernames taken from request headers
const MaxUsernameLength = 150

var (
	// ErrUserNotFound is returned when a user cannot be found
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidUsername is returned for empty or oversized usernames
	ErrInvalidUsername = errors.New("invalid username")
)
