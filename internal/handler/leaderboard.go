package handler

import (
	"net/http"

	"karmafeed/internal/httputil"
	"karmafeed/internal/service"
)

type LeaderboardHandler struct {
	leaderboardService *service.LeaderboardService
}

func NewLeaderboardHandler(leaderboardService *service.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{
		leaderboardService: leaderboardService,
	}
}

// Top handles GET /leaderboard
func (h *LeaderboardHandler) Top(w http.ResponseWriter, r *http.Request) {
	entries, err := h.leaderboardService.Top(r.Context())
	if err != nil {
		writeServiceError(w, err, "Leaderboard", nil)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, entries)
}
