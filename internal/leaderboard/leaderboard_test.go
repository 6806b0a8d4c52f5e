package leaderboard

import (
	"context"
	"errors"
	"math/rand"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"karmafeed/internal/model"
)

// =============================================================================
// FAKES
// =============================================================================

type fakeLedger struct {
	entries []model.KarmaTransaction
	queries []model.LedgerQuery
	err     error
}

func (f *fakeLedger) add(userID int64, amount int, at time.Time) {
	f.entries = append(f.entries, model.KarmaTransaction{UserID: userID, Amount: amount, CreatedAt: at.UTC()})
}

func (f *fakeLedger) QueryRange(_ context.Context, q model.LedgerQuery) ([]model.KarmaTransaction, error) {
	f.queries = append(f.queries, q)
	if f.err != nil {
		return nil, f.err
	}
	var out []model.KarmaTransaction
	for _, e := range f.entries {
		if q.Contains(e) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

type mapCache struct {
	mu      sync.Mutex
	buckets map[time.Time]map[int64]int
	gets    int
	puts    int
	getErr  error
}

func newMapCache() *mapCache {
	return &mapCache{buckets: make(map[time.Time]map[int64]int)}
}

func (c *mapCache) Get(_ context.Context, start time.Time) (map[int64]int, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	sums, ok := c.buckets[start]
	return sums, ok, nil
}

func (c *mapCache) Put(_ context.Context, start time.Time, sums map[int64]int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.puts++
	c.buckets[start] = sums
	return nil
}

var now = time.Date(2026, 5, 10, 14, 37, 12, 0, time.UTC)

// =============================================================================
// AGGREGATOR
// =============================================================================

func TestAggregator_WindowBoundaries(t *testing.T) {
	ledger := &fakeLedger{}
	ledger.add(1, 5, now.Add(-DefaultWindow+time.Millisecond))
	ledger.add(2, 5, now.Add(-DefaultWindow-time.Millisecond))
	ledger.add(3, 1, now.Add(-DefaultWindow))
	ledger.add(4, 1, now) // the window is half-open

	got, err := NewAggregator(ledger).Top(context.Background(), now, DefaultWindow, DefaultLimit)
	require.NoError(t, err)

	assert.Equal(t, []model.Standing{{UserID: 1, Karma: 5}, {UserID: 3, Karma: 1}}, got)
}

func TestAggregator_OrderingAndLimit(t *testing.T) {
	ledger := &fakeLedger{}
	at := now.Add(-time.Hour)
	for userID, karma := range map[int64]int{7: 3, 2: 10, 9: 3, 4: 1, 5: 20, 6: 3} {
		ledger.add(userID, karma, at)
	}

	got, err := NewAggregator(ledger).Top(context.Background(), now, 0, 0)
	require.NoError(t, err)

	assert.Equal(t, []model.Standing{
		{UserID: 5, Karma: 20},
		{UserID: 2, Karma: 10},
		{UserID: 6, Karma: 3},
		{UserID: 7, Karma: 3},
		{UserID: 9, Karma: 3},
	}, got)
}

func TestAggregator_Sums(t *testing.T) {
	// Two post likes to A, one comment like to B
	ledger := &fakeLedger{}
	ledger.add(1, model.PostLikeKarma, now.Add(-2*time.Hour))
	ledger.add(1, model.PostLikeKarma, now.Add(-time.Hour))
	ledger.add(2, model.CommentLikeKarma, now.Add(-time.Minute))

	got, err := NewAggregator(ledger).Top(context.Background(), now, DefaultWindow, DefaultLimit)
	require.NoError(t, err)

	assert.Equal(t, []model.Standing{{UserID: 1, Karma: 10}, {UserID: 2, Karma: 1}}, got)
}

func TestAggregator_Empty(t *testing.T) {
	got, err := NewAggregator(&fakeLedger{}).Top(context.Background(), now, DefaultWindow, DefaultLimit)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestAggregator_LedgerError(t *testing.T) {
	boom := errors.New("connection reset")
	_, err := NewAggregator(&fakeLedger{err: boom}).Top(context.Background(), now, DefaultWindow, DefaultLimit)
	assert.ErrorIs(t, err, boom)
}

// =============================================================================
// BUCKETED
// =============================================================================

func TestBucketed_MatchesAggregatorOnRandomLedgers(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	cache := newMapCache()

	for round := 0; round < 40; round++ {
		ledger := &fakeLedger{}
		at := now.Add(time.Duration(rng.Int63n(int64(3 * time.Hour))))
		for i := 0; i < 200; i++ {
			offset := time.Duration(rng.Int63n(int64(30 * time.Hour)))
			ledger.add(int64(rng.Intn(12)+1), []int{1, 5}[rng.Intn(2)], at.Add(-offset))
		}
		// Exact boundary hits
		ledger.add(99, 5, at.Add(-DefaultWindow))
		ledger.add(98, 5, at.Add(-DefaultWindow).Truncate(time.Hour))

		cache.buckets = make(map[time.Time]map[int64]int)
		want, err := NewAggregator(ledger).Top(context.Background(), at, DefaultWindow, 20)
		require.NoError(t, err)

		bucketed := NewBucketed(ledger, cache)
		cold, err := bucketed.Top(context.Background(), at, DefaultWindow, 20)
		require.NoError(t, err)
		warm, err := bucketed.Top(context.Background(), at, DefaultWindow, 20)
		require.NoError(t, err)

		assert.Equal(t, want, cold, "round %d cold", round)
		assert.Equal(t, want, warm, "round %d warm", round)
	}
}

func TestBucketed_ReadsClosedBucketsFromCache(t *testing.T) {
	ledger := &fakeLedger{}
	ledger.add(1, 5, now.Add(-3*time.Hour))
	cache := newMapCache()
	b := NewBucketed(ledger, cache)

	_, err := b.Top(context.Background(), now, DefaultWindow, DefaultLimit)
	require.NoError(t, err)
	coldQueries := len(ledger.queries)
	assert.Equal(t, 24-1, cache.puts, "only whole hours between the partial ends are cached")

	ledger.queries = nil
	got, err := b.Top(context.Background(), now, DefaultWindow, DefaultLimit)
	require.NoError(t, err)

	assert.Equal(t, []model.Standing{{UserID: 1, Karma: 5}}, got)
	assert.Less(t, len(ledger.queries), coldQueries)
	assert.Len(t, ledger.queries, 2, "only the head and tail partials hit the ledger")
}

func TestBucketed_GraceKeepsRecentHourUncached(t *testing.T) {
	at := time.Date(2026, 5, 10, 14, 3, 0, 0, time.UTC)
	ledger := &fakeLedger{}
	cache := newMapCache()
	b := NewBucketed(ledger, cache, WithGrace(5*time.Minute))

	_, err := b.Top(context.Background(), at, DefaultWindow, DefaultLimit)
	require.NoError(t, err)

	_, cached := cache.buckets[time.Date(2026, 5, 10, 13, 0, 0, 0, time.UTC)]
	assert.False(t, cached, "13:00 closed less than grace ago")
	_, cached = cache.buckets[time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)]
	assert.True(t, cached)
}

func TestBucketed_CacheFailureFallsBackToLedger(t *testing.T) {
	ledger := &fakeLedger{}
	ledger.add(3, 1, now.Add(-5*time.Hour))
	cache := newMapCache()
	cache.getErr = errors.New("redis down")

	got, err := NewBucketed(ledger, cache).Top(context.Background(), now, DefaultWindow, DefaultLimit)
	require.NoError(t, err)
	assert.Equal(t, []model.Standing{{UserID: 3, Karma: 1}}, got)
}

func TestBucketed_ShortWindowScansRaw(t *testing.T) {
	ledger := &fakeLedger{}
	ledger.add(1, 1, now.Add(-10*time.Minute))
	cache := newMapCache()

	got, err := NewBucketed(ledger, cache).Top(context.Background(), now, 30*time.Minute, DefaultLimit)
	require.NoError(t, err)

	assert.Equal(t, []model.Standing{{UserID: 1, Karma: 1}}, got)
	assert.Zero(t, cache.puts)
	assert.Len(t, ledger.queries, 1)
}

func TestBucketed_Warm(t *testing.T) {
	ledger := &fakeLedger{}
	ledger.add(1, 5, now.Add(-2*time.Hour))
	cache := newMapCache()
	b := NewBucketed(ledger, cache)

	computed, err := b.Warm(context.Background(), now, DefaultWindow)
	require.NoError(t, err)
	assert.Equal(t, 23, computed)

	computed, err = b.Warm(context.Background(), now, DefaultWindow)
	require.NoError(t, err)
	assert.Zero(t, computed)
}
