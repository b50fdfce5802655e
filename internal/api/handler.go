// Package api provides HTTP handlers for the Bloomify API.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/ashureev/bloomify/internal/llm"
)

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// Text writes a plain text response.
func Text(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

// statusClientClosedRequest is written when the caller went away mid-call.
const statusClientClosedRequest = 499

// writeUpstreamError maps a failed model call to a status code.
func writeUpstreamError(w http.ResponseWriter, err error) {
	var rateLimit *llm.ErrRateLimit
	var unavailable *llm.ErrProviderUnavailable
	var empty *llm.ErrEmptyResponse

	switch {
	case errors.Is(err, context.Canceled):
		slog.Debug("Client closed request during model call", "error", err)
		w.WriteHeader(statusClientClosedRequest)
	case errors.As(err, &rateLimit):
		if rateLimit.RetryAfter > 0 {
			w.Header().Set("Retry-After", strconv.Itoa(int(rateLimit.RetryAfter.Seconds())))
		}
		Error(w, http.StatusServiceUnavailable, "upstream model rate limited")
	case errors.Is(err, context.DeadlineExceeded):
		Error(w, http.StatusGatewayTimeout, "upstream model timed out")
	case errors.As(err, &unavailable), errors.As(err, &empty):
		Error(w, http.StatusBadGateway, "upstream model error")
	default:
		slog.Error("Unexpected model call failure", "error", err)
		Error(w, http.StatusInternalServerError, "internal error")
	}
}
