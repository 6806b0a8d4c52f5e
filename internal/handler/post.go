package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"

	"karmafeed/internal/httputil"
	"karmafeed/internal/model"
	"karmafeed/internal/service"
	"karmafeed/internal/transport/http/middleware"
)

type PostHandler struct {
	postService *service.PostService
}

func NewPostHandler(postService *service.PostService) *PostHandler {
	return &PostHandler{
		postService: postService,
	}
}

// List handles GET /posts?limit=
// Returns the newest posts with their full comment trees.
func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			httputil.WriteBadRequest(w, "Invalid limit")
			return
		}
		limit = n
	}

	posts, err := h.postService.List(r.Context(), limit)
	if err != nil {
		writeServiceError(w, err, "List posts", log.Fields{"limit": limit})
		return
	}

	httputil.WriteJSON(w, http.StatusOK, posts)
}

// Create handles POST /posts
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req model.CreatePostRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	post, err := h.postService.Create(r.Context(), userID, req)
	if err != nil {
		writeServiceError(w, err, "Create post", log.Fields{"user": userID})
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, post)
}

// GetByID handles GET /posts/{id}
// Returns a single post with its comment tree.
func (h *PostHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	postID, ok := parseID(w, r, "Invalid post ID")
	if !ok {
		return
	}

	post, err := h.postService.GetByID(r.Context(), postID)
	if err != nil {
		writeServiceError(w, err, "Get post", log.Fields{"post": postID})
		return
	}

	httputil.WriteJSON(w, http.StatusOK, post)
}

// parseID reads the {id} URL parameter, writing a 400 when it is not a positive integer.
func parseID(w http.ResponseWriter, r *http.Request, message string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httputil.WriteBadRequest(w, message)
		return 0, false
	}
	return id, true
}
