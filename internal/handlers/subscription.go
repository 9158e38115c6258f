package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/sbilibin2017/gw-newsletter/internal/logger"
	"github.com/sbilibin2017/gw-newsletter/internal/models"
	"github.com/sbilibin2017/gw-newsletter/internal/services"
)

//go:generate mockgen -source=subscription.go -destination=subscription_mock.go -package=handlers

// Subscriber defines the interface that the subscription service must implement.
type Subscriber interface {
	Subscribe(ctx context.Context, name, email string) error
}

// Confirmer confirms pending subscriptions.
type Confirmer interface {
	Confirm(ctx context.Context, token string) error
}

// NewSubscribeHandler returns an HTTP handler registering a pending subscriber.
// @Summary Subscribe
// @Description Stores a pending subscriber and emails a confirmation link.
// @Tags subscriptions
// @Accept x-www-form-urlencoded
// @Produce json
// @Param name formData string true "Subscriber name"
// @Param email formData string true "Subscriber email"
// @Success 200 {object} handlers.MessageResponse "Confirmation email sent"
// @Failure 400 {object} handlers.ErrorResponse "Invalid name or email"
// @Failure 500 {object} handlers.ErrorResponse "Internal server error"
// @Router /subscriptions [post]
func NewSubscribeHandler(svc Subscriber) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		err := svc.Subscribe(r.Context(), r.PostForm.Get("name"), r.PostForm.Get("email"))
		switch {
		case err == nil:
			writeJSON(w, http.StatusOK, MessageResponse{Message: "Check your inbox to confirm the subscription"})
		case errors.Is(err, models.ErrInvalidSubscriberName):
			writeError(w, http.StatusBadRequest, "Invalid subscriber name")
		case errors.Is(err, models.ErrInvalidSubscriberEmail):
			writeError(w, http.StatusBadRequest, "Invalid subscriber email")
		default:
			logger.Log.Errorw("failed to subscribe", "error", err)
			writeError(w, http.StatusInternalServerError, msgInternalError)
		}
	}
}

// NewConfirmSubscriptionHandler returns an HTTP handler confirming a subscription.
// @Summary Confirm subscription
// @Tags subscriptions
// @Produce json
// @Param subscription_token query string true "Token from the confirmation email"
// @Success 200 {object} handlers.MessageResponse "Subscription confirmed"
// @Failure 400 {object} handlers.ErrorResponse "Missing token"
// @Failure 401 {object} handlers.ErrorResponse "Unknown token"
// @Failure 500 {object} handlers.ErrorResponse "Internal server error"
// @Router /subscriptions/confirm [get]
func NewConfirmSubscriptionHandler(svc Confirmer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("subscription_token")
		if token == "" {
			writeError(w, http.StatusBadRequest, "Missing subscription token")
			return
		}

		err := svc.Confirm(r.Context(), token)
		switch {
		case err == nil:
			writeJSON(w, http.StatusOK, MessageResponse{Message: "Subscription confirmed"})
		case errors.Is(err, services.ErrUnknownToken):
			writeError(w, http.StatusUnauthorized, "Unknown subscription token")
		default:
			logger.Log.Errorw("failed to confirm subscription", "error", err)
			writeError(w, http.StatusInternalServerError, msgInternalError)
		}
	}
}
