package handler

import (
	"net/http"

	log "github.com/sirupsen/logrus"

	"karmafeed/internal/httputil"
	"karmafeed/internal/service"
	"karmafeed/internal/transport/http/middleware"
)

type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// Me handles GET /me
// Returns the identity the request acts as.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	user, err := h.userService.GetByID(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err, "Get current user", log.Fields{"user": userID})
		return
	}

	httputil.WriteJSON(w, http.StatusOK, user.Summary())
}
