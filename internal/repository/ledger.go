package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"karmafeed/internal/model"
)

type ledgerRepository struct {
	db *sqlx.DB
}

func NewLedgerRepository(db *sqlx.DB) LedgerRepository {
	return &ledgerRepository{db: db}
}

// Append writes one ledger entry.
func (r *ledgerRepository) Append(ctx context.Context, entry model.KarmaTransaction) error {
	return appendEntry(ctx, r.db, entry)
}

// appendEntry inserts entry through db or a transaction, so the like path can append
// inside its own atomic unit.
func appendEntry(ctx context.Context, ext sqlx.ExtContext, entry model.KarmaTransaction) error {
	query := `
		INSERT INTO karma_transactions (id, user_id, amount, reason, created_at, post_id, comment_id)
		VALUES (:id, :user_id, :amount, :reason, :created_at, :post_id, :comment_id)
	`
	if _, err := sqlx.NamedExecContext(ctx, ext, query, entry); err != nil {
		return fmt.Errorf("append karma transaction: %w", err)
	}
	return nil
}

// QueryRange scans [Since, Until) using the created_at index.
func (r *ledgerRepository) QueryRange(ctx context.Context, q model.LedgerQuery) ([]model.KarmaTransaction, error) {
	entries := []model.KarmaTransaction{}

	var err error
	if len(q.Recipients) == 0 {
		err = r.db.SelectContext(ctx, &entries, `
			SELECT id, user_id, amount, reason, created_at, post_id, comment_id
			FROM karma_transactions
			WHERE created_at >= $1 AND created_at < $2
			ORDER BY created_at ASC, id ASC
		`, q.Since, q.Until)
	} else {
		err = r.db.SelectContext(ctx, &entries, `
			SELECT id, user_id, amount, reason, created_at, post_id, comment_id
			FROM karma_transactions
			WHERE created_at >= $1 AND created_at < $2 AND user_id = ANY($3)
			ORDER BY created_at ASC, id ASC
		`, q.Since, q.Until, pq.Array(q.Recipients))
	}
	if err != nil {
		return nil, fmt.Errorf("query karma range: %w", err)
	}

	for i := range entries {
		utcEntry(&entries[i])
	}
	return entries, nil
}
