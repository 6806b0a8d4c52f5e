package leaderboard

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"karmafeed/internal/model"
)

const (
	BucketWidth  = time.Hour
	DefaultGrace = 5 * time.Minute
)

// BucketCache stores per-user karma sums of closed buckets keyed by bucket start.
type BucketCache interface {
	Get(ctx context.Context, start time.Time) (sums map[int64]int, ok bool, err error)
	Put(ctx context.Context, start time.Time, sums map[int64]int) error
}

// Bucketed answers like Aggregator but reads hours older than the grace period
// from a cache. Only the partial hours at both ends of the window are scanned raw.
//
// A bucket is cached only once its end is at least grace in the past, so a like
// committed slightly after its created_at still lands in an uncached range.
type Bucketed struct {
	ledger LedgerReader
	cache  BucketCache
	width  time.Duration
	grace  time.Duration
}

type BucketedOption func(*Bucketed)

// WithGrace sets how long a bucket must have been closed before it is cached.
func WithGrace(grace time.Duration) BucketedOption {
	return func(b *Bucketed) {
		if grace >= 0 {
			b.grace = grace
		}
	}
}

// WithBucketWidth overrides the bucket width. Widths must divide an hour or a day evenly
// for bucket starts to line up with wall-clock boundaries.
func WithBucketWidth(width time.Duration) BucketedOption {
	return func(b *Bucketed) {
		if width > 0 {
			b.width = width
		}
	}
}

func NewBucketed(ledger LedgerReader, cache BucketCache, opts ...BucketedOption) *Bucketed {
	b := &Bucketed{
		ledger: ledger,
		cache:  cache,
		width:  BucketWidth,
		grace:  DefaultGrace,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Bucketed) Top(ctx context.Context, now time.Time, window time.Duration, limit int) ([]model.Standing, error) {
	window, limit = normalize(window, limit)
	now = now.UTC()
	since := now.Add(-window)

	sums := make(map[int64]int)
	first, end := b.closedRange(since, now)
	if !first.Before(end) {
		if err := scan(ctx, b.ledger, since, now, sums); err != nil {
			return nil, err
		}
		return Rank(sums, limit), nil
	}

	if err := scan(ctx, b.ledger, since, first, sums); err != nil {
		return nil, err
	}
	for start := first; start.Before(end); start = start.Add(b.width) {
		bucket, err := b.bucket(ctx, start)
		if err != nil {
			return nil, err
		}
		for userID, karma := range bucket {
			sums[userID] += karma
		}
	}
	if err := scan(ctx, b.ledger, end, now, sums); err != nil {
		return nil, err
	}
	return Rank(sums, limit), nil
}

// Warm makes sure every closed bucket of the window ending at now is cached and
// returns how many had to be computed.
func (b *Bucketed) Warm(ctx context.Context, now time.Time, window time.Duration) (int, error) {
	window, _ = normalize(window, 0)
	now = now.UTC()
	first, end := b.closedRange(now.Add(-window), now)

	computed := 0
	for start := first; start.Before(end); start = start.Add(b.width) {
		if err := ctx.Err(); err != nil {
			return computed, err
		}
		if _, ok, err := b.cache.Get(ctx, start); err == nil && ok {
			continue
		}
		sums, err := b.compute(ctx, start)
		if err != nil {
			return computed, err
		}
		if err := b.cache.Put(ctx, start, sums); err != nil {
			return computed, fmt.Errorf("cache bucket %s: %w", start.Format(time.RFC3339), err)
		}
		computed++
	}
	return computed, nil
}

// closedRange returns [first, end): the whole buckets inside [since, now) that are
// old enough to cache.
func (b *Bucketed) closedRange(since, now time.Time) (time.Time, time.Time) {
	first := since.Truncate(b.width)
	if first.Before(since) {
		first = first.Add(b.width)
	}
	end := now.Add(-b.grace).Truncate(b.width)
	return first, end
}

// bucket reads a closed bucket from the cache and fills it from the ledger on a miss.
// Cache failures degrade to a ledger read.
func (b *Bucketed) bucket(ctx context.Context, start time.Time) (map[int64]int, error) {
	sums, ok, err := b.cache.Get(ctx, start)
	if err != nil {
		log.WithError(err).WithField("bucket", start.Format(time.RFC3339)).Warn("[Leaderboard] Bucket cache read failed")
	}
	if err == nil && ok {
		return sums, nil
	}

	sums, err = b.compute(ctx, start)
	if err != nil {
		return nil, err
	}
	if err := b.cache.Put(ctx, start, sums); err != nil {
		log.WithError(err).WithField("bucket", start.Format(time.RFC3339)).Warn("[Leaderboard] Bucket cache write failed")
	}
	return sums, nil
}

func (b *Bucketed) compute(ctx context.Context, start time.Time) (map[int64]int, error) {
	sums := make(map[int64]int)
	if err := scan(ctx, b.ledger, start, start.Add(b.width), sums); err != nil {
		return nil, err
	}
	return sums, nil
}
