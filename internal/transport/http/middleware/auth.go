package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"

	"karmafeed/internal/httputil"
	"karmafeed/internal/model"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	// UserIDKey is the context key for the acting user's ID
	UserIDKey contextKey = "user_id"

	// UsernameHeader names the acting user when no bearer token is sent
	UsernameHeader = "X-Username"

	tokenCookie = "access_token"
)

// TokenParser validates a bearer token and returns its user id.
type TokenParser interface {
	Parse(token string) (int64, error)
}

// UserResolver maps usernames to stored users.
type UserResolver interface {
	Resolve(ctx context.Context, username string) (*model.User, error)
	Demo(ctx context.Context) (*model.User, error)
}

// Identity decides which user a request acts as, in order:
//  1. a bearer token (Authorization header, then the access_token cookie) when tokens is non-nil
//  2. the X-Username header, creating the user on first sight
//  3. the shared demo user
//
// A token that is present but invalid is rejected rather than downgraded.
func Identity(tokens TokenParser, users UserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tokens != nil {
				if tokenString := bearerToken(r); tokenString != "" {
					userID, err := tokens.Parse(tokenString)
					if err != nil {
						if errors.Is(err, model.ErrTokenExpired) {
							httputil.WriteUnauthorizedWithCode(w, model.CodeTokenExpired, "Access token has expired")
							return
						}
						httputil.WriteUnauthorizedWithCode(w, model.CodeTokenInvalid, "Invalid authentication token")
						return
					}
					next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
					return
				}
			}

			var (
				user *model.User
				err  error
			)
			if username := r.Header.Get(UsernameHeader); strings.TrimSpace(username) != "" {
				user, err = users.Resolve(r.Context(), username)
			} else {
				user, err = users.Demo(r.Context())
			}
			if err != nil {
				if errors.Is(err, model.ErrInvalidUsername) {
					httputil.WriteBadRequest(w, "Invalid username")
					return
				}
				log.WithError(err).Error("[Identity] Failed to resolve user")
				httputil.WriteInternalError(w, "Failed to resolve user")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), user.ID)))
		})
	}
}

func bearerToken(r *http.Request) string {
	// Expected format: "Bearer <token>"
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	if cookie, err := r.Cookie(tokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return ""
}

// WithUserID returns ctx carrying the acting user's id.
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

// GetUserIDFromContext extracts the user ID from the request context
// Returns the user ID and true if found, or 0 and false if not found
func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(UserIDKey).(int64)
	return userID, ok
}
