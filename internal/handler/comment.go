package handler

import (
	"net/http"

	log "github.com/sirupsen/logrus"

	"karmafeed/internal/httputil"
	"karmafeed/internal/model"
	"karmafeed/internal/service"
	"karmafeed/internal/transport/http/middleware"
)

type CommentHandler struct {
	commentService *service.CommentService
}

func NewCommentHandler(commentService *service.CommentService) *CommentHandler {
	return &CommentHandler{
		commentService: commentService,
	}
}

// Create handles POST /posts/{id}/comments
// Body: {"content": "...", "parent": null | <comment id>}
func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	postID, ok := parseID(w, r, "Invalid post ID")
	if !ok {
		return
	}

	var req model.CreateCommentRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	comment, err := h.commentService.Create(r.Context(), postID, userID, req)
	if err != nil {
		writeServiceError(w, err, "Create comment", log.Fields{"user": userID, "post": postID})
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, comment)
}
