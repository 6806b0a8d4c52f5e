// Package metrics holds the process-wide prometheus collectors.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Like outcomes
const (
	OutcomeCreated   = "created"
	OutcomeDuplicate = "duplicate"
	OutcomeNotFound  = "not_found"
	OutcomeError     = "error"
)

var (
	likesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "karmafeed_likes_total",
		Help: "Like requests by target kind and outcome",
	}, []string{"kind", "outcome"})

	leaderboardDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "karmafeed_leaderboard_duration_seconds",
		Help:    "Time to compute the leaderboard",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	})

	bucketsWarmed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "karmafeed_leaderboard_buckets_warmed_total",
		Help: "Closed leaderboard buckets computed by the warm-up job",
	})

	// Counted per render: the same orphan adds one on every list or detail read.
	orphanRenders = promauto.NewCounter(prometheus.CounterOpts{
		Name: "karmafeed_orphan_renders_total",
		Help: "Comment renders promoted to root because the parent could not adopt them",
	})
)

func ObserveLike(kind, outcome string) {
	likesTotal.WithLabelValues(kind, outcome).Inc()
}

func ObserveLeaderboard(d time.Duration) {
	leaderboardDuration.Observe(d.Seconds())
}

func AddBucketsWarmed(n int) {
	bucketsWarmed.Add(float64(n))
}

func AddOrphanRenders(n int) {
	orphanRenders.Add(float64(n))
}
