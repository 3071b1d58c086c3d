package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/anatolykoptev/go_tldr/internal/engine"
)

type errorBody struct {
	Error string `json:"error"`
}

// writeJSON writes v as a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode JSON response", slog.Any("error", err))
	}
}

// writeError maps err to a status and writes {"error": message}.
// Only the public message is sent; the cause is logged.
func writeError(w http.ResponseWriter, r *http.Request, err error, logger *slog.Logger) {
	code, msg := engine.CodeOf(err)
	status := code.HTTPStatus()

	attrs := []any{
		slog.String("path", r.URL.Path),
		slog.String("code", string(code)),
		slog.Int("status", status),
		slog.Any("error", err),
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", attrs...)
	} else {
		logger.Warn("request rejected", attrs...)
	}
	writeJSON(w, status, errorBody{Error: msg}, logger)
}
