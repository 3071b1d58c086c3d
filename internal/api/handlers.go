package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/anatolykoptev/go_tldr/internal/engine"
)

type transcriptRequest struct {
	URL string `json:"url" validate:"required,max=2048"`
}

type summarizeRequest struct {
	Transcript string `json:"transcript" validate:"required"`
	Style      string `json:"style" validate:"omitempty,oneof=detailed concise"`
}

var errBodyTooLarge = engine.NewError(engine.CodeValidation, "request body too large", nil)

// decodeBody reads a size-capped JSON body into dst and validates it.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return errBodyTooLarge
		case errors.Is(err, io.EOF):
			return engine.Validation("request body is required")
		default:
			return engine.NewError(engine.CodeValidation, "invalid JSON body", fmt.Errorf("decode: %w", err))
		}
	}
	return s.validator.Validate(dst)
}

func (s *Server) handleTranscript(w http.ResponseWriter, r *http.Request) {
	var req transcriptRequest
	if err := s.decodeBody(w, r, &req); err != nil {
		writeError(w, r, err, s.logger)
		return
	}

	resp, err := s.pipeline.Transcript(r.Context(), req.URL)
	if err != nil {
		writeError(w, r, err, s.logger)
		return
	}
	writeJSON(w, http.StatusOK, resp, s.logger)
}

func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	var req summarizeRequest
	if err := s.decodeBody(w, r, &req); err != nil {
		writeError(w, r, err, s.logger)
		return
	}

	resp, err := s.pipeline.Summarize(r.Context(), req.Transcript, req.Style)
	if err != nil {
		writeError(w, r, err, s.logger)
		return
	}
	writeJSON(w, http.StatusOK, resp, s.logger)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, s.logger)
}

func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if s.opts.Metrics != nil {
		if _, err := io.WriteString(w, s.opts.Metrics()); err != nil {
			s.logger.Warn("failed to write metrics", slog.Any("error", err))
		}
	}
}
