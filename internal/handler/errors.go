package handler

import (
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"

	"karmafeed/internal/httputil"
	"karmafeed/internal/model"
)

// writeServiceError maps domain errors to the error envelope. Anything unrecognised
// is a storage failure: it is logged with fields and reported without detail.
func writeServiceError(w http.ResponseWriter, err error, op string, fields log.Fields) {
	switch {
	case errors.Is(err, model.ErrPostNotFound):
		httputil.WriteNotFound(w, "Post not found")
	case errors.Is(err, model.ErrCommentNotFound):
		httputil.WriteNotFound(w, "Comment not found")
	case errors.Is(err, model.ErrUserNotFound):
		httputil.WriteNotFound(w, "User not found")
	case errors.Is(err, model.ErrContentRequired):
		httputil.WriteValidationError(w, "Content is required")
	case errors.Is(err, model.ErrContentTooLong):
		httputil.WriteValidationError(w, "Content too long (max 10000 characters)")
	case errors.Is(err, model.ErrParentPostMismatch):
		httputil.WriteValidationError(w, "Parent comment belongs to a different post")
	case errors.Is(err, model.ErrInvalidTargetKind):
		httputil.WriteValidationError(w, "Unknown like target")
	default:
		log.WithError(err).WithFields(fields).Errorf("[Handler] %s failed", op)
		httputil.WriteInternalError(w, "Internal server error")
	}
}
