package handlers

import "net/http"

// NewHealthCheckHandler returns an HTTP handler reporting that the service is up.
// @Summary Health check
// @Tags health
// @Success 200 "Service is up"
// @Router /health_check [get]
func NewHealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}
}
