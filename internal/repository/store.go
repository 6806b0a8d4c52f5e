package repository

import "github.com/jmoiron/sqlx"

// NewPostgresStore builds every repository over one connection pool.
func NewPostgresStore(db *sqlx.DB) Store {
	return Store{
		Users:    NewUserRepository(db),
		Posts:    NewPostRepository(db),
		Comments: NewCommentRepository(db),
		Likes:    NewLikeRepository(db),
		Ledger:   NewLedgerRepository(db),
	}
}
