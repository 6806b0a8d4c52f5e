// Package leaderboard ranks users by karma received inside a trailing window.
//
// Standings are always derived from the ledger at query time. No karma total is
// stored anywhere; the bucketed ranker only caches sums of ledger rows for hours
// that can no longer change.
package leaderboard

import (
	"context"
	"fmt"
	"sort"
	"time"

	"karmafeed/internal/model"
)

const (
	DefaultWindow = 24 * time.Hour
	DefaultLimit  = 5
)

// Ranker returns the top users by karma received in [now-window, now).
// Non-positive window or limit fall back to the defaults.
type Ranker interface {
	Top(ctx context.Context, now time.Time, window time.Duration, limit int) ([]model.Standing, error)
}

// LedgerReader is the read side of the ledger these rankers need.
type LedgerReader interface {
	QueryRange(ctx context.Context, q model.LedgerQuery) ([]model.KarmaTransaction, error)
}

// Aggregator recomputes the standings from every ledger entry in the window.
type Aggregator struct {
	ledger LedgerReader
}

func NewAggregator(ledger LedgerReader) *Aggregator {
	return &Aggregator{ledger: ledger}
}

func (a *Aggregator) Top(ctx context.Context, now time.Time, window time.Duration, limit int) ([]model.Standing, error) {
	window, limit = normalize(window, limit)
	now = now.UTC()

	sums := make(map[int64]int)
	if err := scan(ctx, a.ledger, now.Add(-window), now, sums); err != nil {
		return nil, err
	}
	return Rank(sums, limit), nil
}

func normalize(window time.Duration, limit int) (time.Duration, int) {
	if window <= 0 {
		window = DefaultWindow
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	return window, limit
}

// scan adds the amounts of entries in [since, until) to sums.
func scan(ctx context.Context, ledger LedgerReader, since, until time.Time, sums map[int64]int) error {
	if !since.Before(until) {
		return nil
	}
	entries, err := ledger.QueryRange(ctx, model.LedgerQuery{Since: since, Until: until})
	if err != nil {
		return fmt.Errorf("query ledger [%s, %s): %w", since.Format(time.RFC3339), until.Format(time.RFC3339), err)
	}
	for _, e := range entries {
		sums[e.UserID] += e.Amount
	}
	return nil
}

// Rank orders per-user sums by karma descending, then user id ascending, and keeps
// at most limit of them. A non-positive limit keeps everything.
func Rank(sums map[int64]int, limit int) []model.Standing {
	out := make([]model.Standing, 0, len(sums))
	for userID, karma := range sums {
		out = append(out, model.Standing{UserID: userID, Karma: karma})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Karma != out[j].Karma {
			return out[i].Karma > out[j].Karma
		}
		return out[i].UserID < out[j].UserID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
