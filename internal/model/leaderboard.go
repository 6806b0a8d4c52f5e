package model

// Standing is one user's karma summed over a window.
type Standing struct {
	UserID int64
	Karma  int
}

// LeaderboardEntry is one row of the leaderboard response.
type LeaderboardEntry struct {
	User     *UserSummary `json:"user"`
	Karma24h int          `json:"karma_24h"`
}
