package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-newsletter/internal/logger"
	"github.com/sbilibin2017/gw-newsletter/internal/middlewares"
)

//go:generate mockgen -source=dashboard.go -destination=dashboard_mock.go -package=handlers

// Usernamer looks up the name of a user.
type Usernamer interface {
	Username(ctx context.Context, userID uuid.UUID) (string, error)
}

// DashboardResponse represents the admin dashboard
// swagger:model DashboardResponse
type DashboardResponse struct {
	// Logged in user
	// default: admin
	Username string `json:"username"`
}

// NewDashboardHandler returns an HTTP handler for the admin dashboard.
// @Summary Admin dashboard
// @Tags admin
// @Produce json
// @Success 200 {object} handlers.DashboardResponse
// @Failure 303 "Redirect to /login for anonymous users"
// @Failure 500 {object} handlers.ErrorResponse "Internal server error"
// @Router /admin/dashboard [get]
func NewDashboardHandler(svc Usernamer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middlewares.UserIDFromContext(r.Context())
		if !ok {
			http.Redirect(w, r, LoginPath, http.StatusSeeOther)
			return
		}

		username, err := svc.Username(r.Context(), userID)
		if err != nil {
			logger.Log.Errorw("failed to load username", "user_id", userID, "error", err)
			writeError(w, http.StatusInternalServerError, msgInternalError)
			return
		}

		writeJSON(w, http.StatusOK, DashboardResponse{Username: username})
	}
}
