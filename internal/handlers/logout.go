package handlers

import (
	"context"
	"net/http"

	"github.com/sbilibin2017/gw-newsletter/internal/logger"
)

//go:generate mockgen -source=logout.go -destination=logout_mock.go -package=handlers

// Tokener extracts the session token from a request.
type Tokener interface {
	GetTokenFromRequest(ctx context.Context, r *http.Request) (string, error)
}

// SessionDestroyer ends sessions.
type SessionDestroyer interface {
	Destroy(ctx context.Context, token string) error
}

// NewLogoutHandler returns an HTTP handler ending the current session.
// @Summary Log out
// @Tags auth
// @Success 303 "Redirect to /login with the session cookie cleared"
// @Failure 500 {object} handlers.ErrorResponse "Internal server error"
// @Router /admin/logout [post]
func NewLogoutHandler(tokener Tokener, sessions SessionDestroyer, cookies SessionCookies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if token, err := tokener.GetTokenFromRequest(ctx, r); err == nil {
			if err := sessions.Destroy(ctx, token); err != nil {
				logger.Log.Errorw("failed to destroy session", "error", err)
				writeError(w, http.StatusInternalServerError, msgInternalError)
				return
			}
		}

		http.SetCookie(w, cookies.ExpiredCookie())
		http.Redirect(w, r, LoginPath, http.StatusSeeOther)
	}
}
