package handler

import (
	"net/http"

	log "github.com/sirupsen/logrus"

	"karmafeed/internal/httputil"
	"karmafeed/internal/model"
	"karmafeed/internal/service"
	"karmafeed/internal/transport/http/middleware"
)

type LikeHandler struct {
	likeService *service.LikeService
}

func NewLikeHandler(likeService *service.LikeService) *LikeHandler {
	return &LikeHandler{
		likeService: likeService,
	}
}

// LikePost handles POST /posts/{id}/like
func (h *LikeHandler) LikePost(w http.ResponseWriter, r *http.Request) {
	h.like(w, r, model.TargetPost, "Invalid post ID")
}

// LikeComment handles POST /comments/{id}/like
func (h *LikeHandler) LikeComment(w http.ResponseWriter, r *http.Request) {
	h.like(w, r, model.TargetComment, "Invalid comment ID")
}

// like answers first and repeat likes identically.
func (h *LikeHandler) like(w http.ResponseWriter, r *http.Request, kind model.TargetKind, badID string) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	targetID, ok := parseID(w, r, badID)
	if !ok {
		return
	}

	res, err := h.likeService.Like(r.Context(), userID, kind, targetID)
	if err != nil {
		writeServiceError(w, err, "Like", log.Fields{"user": userID, "kind": kind, "target": targetID})
		return
	}

	httputil.WriteJSON(w, http.StatusOK, model.LikeResponse{Liked: true, LikeCount: res.LikeCount})
}
