package cache

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const (
	// BucketKeyPrefix is the key prefix for closed leaderboard buckets, suffixed by the bucket start in unix seconds
	BucketKeyPrefix = "karma:bucket:"

	// BucketTTL keeps a bucket a little longer than the leaderboard window it serves
	BucketTTL = 26 * time.Hour

	// emptyField marks a computed bucket with no karma so it is not mistaken for a miss
	emptyField = "_"
)

// RedisBuckets stores each closed bucket as a hash of user id -> karma sum.
type RedisBuckets struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisBuckets creates a bucket cache backed by Redis hashes.
func NewRedisBuckets(client *redis.Client) *RedisBuckets {
	return &RedisBuckets{client: client, ttl: BucketTTL}
}

func bucketKey(start time.Time) string {
	return BucketKeyPrefix + strconv.FormatInt(start.UTC().Unix(), 10)
}

// Get returns the sums for the bucket starting at start. ok is false on a miss.
func (c *RedisBuckets) Get(ctx context.Context, start time.Time) (map[int64]int, bool, error) {
	key := bucketKey(start)

	fields, err := c.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, false, fmt.Errorf("get bucket %s: %w", key, err)
	}
	if len(fields) == 0 {
		log.WithField("key", key).Debug("[BucketCache] Miss")
		return nil, false, nil
	}

	sums := make(map[int64]int, len(fields))
	for field, value := range fields {
		if field == emptyField {
			continue
		}
		userID, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			return nil, false, fmt.Errorf("parse bucket %s member %q: %w", key, field, err)
		}
		karma, err := strconv.Atoi(value)
		if err != nil {
			return nil, false, fmt.Errorf("parse bucket %s sum %q: %w", key, value, err)
		}
		sums[userID] = karma
	}
	return sums, true, nil
}

// Put replaces the bucket atomically and refreshes its TTL.
// Pipeline: DEL + HSET + EXPIRE inside MULTI
func (c *RedisBuckets) Put(ctx context.Context, start time.Time, sums map[int64]int) error {
	key := bucketKey(start)
	startTime := time.Now()

	values := make([]interface{}, 0, 2*len(sums)+2)
	values = append(values, emptyField, 0)
	for userID, karma := range sums {
		values = append(values, strconv.FormatInt(userID, 10), karma)
	}

	pipe := c.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, values...)
	pipe.Expire(ctx, key, c.ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("put bucket %s: %w", key, err)
	}

	log.WithFields(log.Fields{
		"key":      key,
		"users":    len(sums),
		"duration": time.Since(startTime),
	}).Debug("[BucketCache] Stored")
	return nil
}

// MemoryBuckets is a process-local bucket cache for the memory backend and tests.
type MemoryBuckets struct {
	mu      sync.RWMutex
	buckets map[int64]map[int64]int
}

func NewMemoryBuckets() *MemoryBuckets {
	return &MemoryBuckets{buckets: make(map[int64]map[int64]int)}
}

func (m *MemoryBuckets) Get(_ context.Context, start time.Time) (map[int64]int, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stored, ok := m.buckets[start.UTC().Unix()]
	if !ok {
		return nil, false, nil
	}
	return copySums(stored), true, nil
}

func (m *MemoryBuckets) Put(_ context.Context, start time.Time, sums map[int64]int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.buckets[start.UTC().Unix()] = copySums(sums)
	return nil
}

func copySums(sums map[int64]int) map[int64]int {
	out := make(map[int64]int, len(sums))
	for k, v := range sums {
		out[k] = v
	}
	return out
}
