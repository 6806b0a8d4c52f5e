package service

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"karmafeed/internal/leaderboard"
	"karmafeed/internal/metrics"
	"karmafeed/internal/model"
	"karmafeed/internal/repository"
)

type LeaderboardService struct {
	ranker   leaderboard.Ranker
	userRepo repository.UserRepository
	window   time.Duration
	limit    int
	now      func() time.Time
}

func NewLeaderboardService(
	ranker leaderboard.Ranker,
	userRepo repository.UserRepository,
	window time.Duration,
	limit int,
	opts ...Option,
) *LeaderboardService {
	o := applyOptions(opts)
	return &LeaderboardService{
		ranker:   ranker,
		userRepo: userRepo,
		window:   window,
		limit:    limit,
		now:      o.now,
	}
}

// Top returns the users with the most karma received in the trailing window.
func (s *LeaderboardService) Top(ctx context.Context) ([]model.LeaderboardEntry, error) {
	start := time.Now()
	defer func() { metrics.ObserveLeaderboard(time.Since(start)) }()

	standings, err := s.ranker.Top(ctx, s.now(), s.window, s.limit)
	if err != nil {
		return nil, fmt.Errorf("rank users: %w", err)
	}

	ids := make([]int64, len(standings))
	for i, st := range standings {
		ids[i] = st.UserID
	}
	users, err := s.userRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}

	entries := make([]model.LeaderboardEntry, 0, len(standings))
	for _, st := range standings {
		summary := &model.UserSummary{ID: st.UserID}
		if u, ok := users[st.UserID]; ok {
			summary = u.Summary()
		} else {
			log.WithField("user", st.UserID).Warn("[LeaderboardService] Ranked user not found")
		}
		entries = append(entries, model.LeaderboardEntry{User: summary, Karma24h: st.Karma})
	}
	return entries, nil
}
