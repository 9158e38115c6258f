package middlewares

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-newsletter/internal/logger"
	"github.com/sbilibin2017/gw-newsletter/internal/services"
)

//go:generate mockgen -source=auth.go -destination=auth_mock.go -package=middlewares

// LoginPath is where anonymous users are sent.
const LoginPath = "/login"

// Tokener extracts the session token from a request
type Tokener interface {
	GetTokenFromRequest(ctx context.Context, r *http.Request) (string, error)
}

// SessionResolver maps a session token to the logged in user
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (uuid.UUID, error)
}

type userIDKey struct{}

// WithUserID stores the authenticated user id in ctx.
func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// UserIDFromContext returns the user id stored by SessionMiddleware.
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(userIDKey{}).(uuid.UUID)
	return userID, ok
}

// SessionMiddleware rejects anonymous users with a redirect to the login
// page and stores the user id of everyone else in the request context.
func SessionMiddleware(tokener Tokener, sessions SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token, err := tokener.GetTokenFromRequest(ctx, r)
			if err != nil {
				logger.Log.Infow("anonymous request to protected route", "uri", r.RequestURI)
				http.Redirect(w, r, LoginPath, http.StatusSeeOther)
				return
			}

			userID, err := sessions.Resolve(ctx, token)
			if errors.Is(err, services.ErrNoSession) {
				logger.Log.Infow("session not found", "uri", r.RequestURI)
				http.Redirect(w, r, LoginPath, http.StatusSeeOther)
				return
			}
			if err != nil {
				logger.Log.Errorw("failed to resolve session", "error", err)
				w.WriteHeader(http.StatusInternalServerError)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(ctx, userID)))
		})
	}
}
