package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-newsletter/internal/logger"
	"github.com/sbilibin2017/gw-newsletter/internal/middlewares"
	"github.com/sbilibin2017/gw-newsletter/internal/models"
	"github.com/sbilibin2017/gw-newsletter/internal/services"
)

//go:generate mockgen -source=newsletter.go -destination=newsletter_mock.go -package=handlers

// RetryAfter is the Retry-After value, in seconds, sent while a duplicate
// request is still being processed.
const RetryAfter = 1

// Publisher defines the interface that the newsletter service must implement.
type Publisher interface {
	Publish(ctx context.Context, userID uuid.UUID, key models.IdempotencyKey, title, content string) (*models.SavedResponse, error)
}

// NewsletterFormResponse carries a fresh idempotency key for the publish form
// swagger:model NewsletterFormResponse
type NewsletterFormResponse struct {
	// Idempotency key to submit with the issue
	// default: 0b7d9c3e-4b5f-4a53-9a77-9d6a4a7b3c21
	IdempotencyKey string `json:"idempotency_key"`
}

// NewNewsletterFormHandler returns an HTTP handler issuing an idempotency key
// for the next publish attempt.
// @Summary Newsletter form
// @Tags newsletters
// @Produce json
// @Success 200 {object} handlers.NewsletterFormResponse
// @Router /admin/newsletters [get]
func NewNewsletterFormHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, NewsletterFormResponse{IdempotencyKey: uuid.NewString()})
	}
}

// NewPublishNewsletterHandler returns an HTTP handler that sends an issue to
// every confirmed subscriber. Resubmitting the same idempotency key replays
// the first response without sending again.
// @Summary Publish newsletter issue
// @Tags newsletters
// @Accept x-www-form-urlencoded
// @Param title formData string true "Issue title"
// @Param content formData string true "Issue HTML content"
// @Param idempotency_key formData string true "Idempotency key, at most 50 characters"
// @Success 303 "Redirect to /admin/newsletters"
// @Failure 400 {object} handlers.ErrorResponse "Invalid idempotency key"
// @Failure 503 {object} handlers.ErrorResponse "Same key still being processed, retry later"
// @Failure 500 {object} handlers.ErrorResponse "Internal server error"
// @Router /admin/newsletters [post]
func NewPublishNewsletterHandler(svc Publisher) http.HandlerFunc {
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

		key, err := models.NewIdempotencyKey(r.PostForm.Get("idempotency_key"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid idempotency key")
			return
		}

		resp, err := svc.Publish(r.Context(), userID, key, r.PostForm.Get("title"), r.PostForm.Get("content"))
		if err != nil {
			if errors.Is(err, services.ErrIdempotencyTimeout) {
				w.Header().Set("Retry-After", strconv.Itoa(RetryAfter))
				writeError(w, http.StatusServiceUnavailable, "Request is still being processed, retry later")
				return
			}
			logger.Log.Errorw("failed to publish newsletter issue", "user_id", userID, "error", err)
			writeError(w, http.StatusInternalServerError, msgInternalError)
			return
		}

		resp.WriteTo(w)
	}
}
