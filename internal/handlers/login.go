package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/sbilibin2017/gw-newsletter/internal/logger"
	"github.com/sbilibin2017/gw-newsletter/internal/models"
	"github.com/sbilibin2017/gw-newsletter/internal/services"
)

//go:generate mockgen -source=login.go -destination=login_mock.go -package=handlers

// Redirect targets of the login flow.
const (
	LoginPath     = "/login"
	DashboardPath = "/admin/dashboard"
)

const (
	msgAuthFailed         = "Authentication failed."
	msgSomethingWentWrong = "Something went wrong."
)

// Loginer defines the interface that the login service must implement.
type Loginer interface {
	Login(ctx context.Context, creds models.Credentials) (string, error)
}

// SessionCookies builds the cookies carrying the session token.
type SessionCookies interface {
	Cookie(token string) *http.Cookie
	ExpiredCookie() *http.Cookie
}

// MessageSigner signs messages passed to the login page through the query string.
type MessageSigner interface {
	RedirectURL(path, msg string) string
	Verify(msg, tag string) bool
}

// LoginPageResponse represents the login page state
// swagger:model LoginPageResponse
type LoginPageResponse struct {
	// Error left by the previous login attempt
	// default: Authentication failed.
	Error string `json:"error,omitempty"`
}

// NewLoginHandler returns an HTTP handler for user login.
// @Summary User login
// @Description Validates the credentials, opens a session and redirects to the dashboard.
// @Description Failures redirect back to the login page with a signed error message.
// @Tags auth
// @Accept x-www-form-urlencoded
// @Param username formData string true "Username"
// @Param password formData string true "Password"
// @Success 303 "Redirect to /admin/dashboard with the session cookie set"
// @Failure 303 "Redirect to /login?error=...&tag=..."
// @Router /login [post]
func NewLoginHandler(svc Loginer, cookies SessionCookies, signer MessageSigner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Redirect(w, r, signer.RedirectURL(LoginPath, msgAuthFailed), http.StatusSeeOther)
			return
		}

		creds := models.NewCredentials(r.PostForm.Get("username"), r.PostForm.Get("password"))

		token, err := svc.Login(r.Context(), creds)
		if err != nil {
			msg := msgAuthFailed
			if !errors.Is(err, services.ErrInvalidCredentials) {
				logger.Log.Errorw("login failed", "error", err)
				msg = msgSomethingWentWrong
			}
			http.Redirect(w, r, signer.RedirectURL(LoginPath, msg), http.StatusSeeOther)
			return
		}

		http.SetCookie(w, cookies.Cookie(token))
		http.Redirect(w, r, DashboardPath, http.StatusSeeOther)
	}
}

// NewLoginPageHandler returns an HTTP handler describing the login page.
// The error message is shown only when its tag verifies.
// @Summary Login page
// @Tags auth
// @Produce json
// @Param error query string false "Error message"
// @Param tag query string false "HMAC tag of the error message"
// @Success 200 {object} handlers.LoginPageResponse
// @Router /login [get]
func NewLoginPageHandler(signer MessageSigner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var resp LoginPageResponse

		q := r.URL.Query()
		if msg, tag := q.Get("error"), q.Get("tag"); msg != "" && tag != "" {
			if signer.Verify(msg, tag) {
				resp.Error = msg
			} else {
				logger.Log.Warnw("login page message with invalid tag")
			}
		}

		writeJSON(w, http.StatusOK, resp)
	}
}
