package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-newsletter/internal/logger"
	"github.com/sbilibin2017/gw-newsletter/internal/middlewares"
	"github.com/sbilibin2017/gw-newsletter/internal/services"
)

//go:generate mockgen -source=password.go -destination=password_mock.go -package=handlers

// PasswordChanger defines the interface that the password service must implement.
type PasswordChanger interface {
	ChangePassword(ctx context.Context, userID uuid.UUID, current, newPassword, newPasswordCheck []byte) error
}

// NewChangePasswordHandler returns an HTTP handler for changing the admin password.
// @Summary Change password
// @Tags admin
// @Accept x-www-form-urlencoded
// @Produce json
// @Param current_password formData string true "Current password"
// @Param new_password formData string true "New password"
// @Param new_password_check formData string true "New password, repeated"
// @Success 200 {object} handlers.MessageResponse "Password changed"
// @Failure 400 {object} handlers.ErrorResponse "Passwords differ, wrong current password or bad length"
// @Failure 303 "Redirect to /login for anonymous users"
// @Failure 500 {object} handlers.ErrorResponse "Internal server error"
// @Router /admin/password [post]
func NewChangePasswordHandler(svc PasswordChanger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middlewares.UserIDFromContext(r.Context())
		if !ok {
			http.Redirect(w, r, LoginPath, http.StatusSeeOther)
			return
		}

		if err := r.ParseForm(); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		err := svc.ChangePassword(r.Context(), userID,
			[]byte(r.PostForm.Get("current_password")),
			[]byte(r.PostForm.Get("new_password")),
			[]byte(r.PostForm.Get("new_password_check")),
		)
		switch {
		case err == nil:
			writeJSON(w, http.StatusOK, MessageResponse{Message: "Your password has been changed."})
		case errors.Is(err, services.ErrPasswordMismatch),
			errors.Is(err, services.ErrCurrentPasswordIncorrect),
			errors.Is(err, services.ErrPasswordLength):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			logger.Log.Errorw("failed to change password", "user_id", userID, "error", err)
			writeError(w, http.StatusInternalServerError, msgInternalError)
		}
	}
}
