// Package handlers provides HTTP response utilities for JSON APIs.
package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
)

// RespondJSON writes a JSON response with the given status code and data.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// RespondError logs the error and writes a JSON error response.
// The response body contains {"error": "<error message>"}. Client errors are
// logged at warn level, server errors at error level.
func RespondError(w http.ResponseWriter, logger *slog.Logger, status int, err error) {
	level := slog.LevelError
	if status < http.StatusInternalServerError {
		level = slog.LevelWarn
	}
	logger.Log(context.Background(), level, "handler error", "error", err, "status", status)

	RespondJSON(w, status, map[string]string{"error": err.Error()})
}
