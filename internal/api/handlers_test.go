package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_tldr/internal/engine"
	"github.com/anatolykoptev/go_tldr/internal/engine/sources"
	"github.com/anatolykoptev/go_tldr/internal/tldr"
)

type fakeCaptions struct {
	segs  []engine.RawSegment
	err   error
	calls atomic.Int32
}

func (f *fakeCaptions) Fetch(context.Context, string) ([]engine.RawSegment, error) {
	f.calls.Add(1)
	return f.segs, f.err
}

type fakeLLM struct {
	calls atomic.Int32
}

func (f *fakeLLM) Complete(context.Context, string, string) (string, error) {
	f.calls.Add(1)
	return `{"tldr": "First sentence. Second sentence.", "bullet_points": ["one", "two"]}`, nil
}

type testServer struct {
	handler  http.Handler
	captions *fakeCaptions
	llm      *fakeLLM
}

func newTestServer(t *testing.T, captions *fakeCaptions, apiKey string) *testServer {
	t.Helper()
	llm := &fakeLLM{}
	svc, err := tldr.New(engine.Config{LLMAPIKey: apiKey}, llm, tldr.WithCaptions(captions))
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := NewServer(svc, logger, Options{MaxBodyBytes: 1024, Metrics: func() string { return "llm_calls 0\n" }})
	return &testServer{handler: srv, captions: captions, llm: llm}
}

func (ts *testServer) post(path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 1, "error body has only the error field")
	msg, ok := body["error"].(string)
	require.True(t, ok)
	return msg
}

func TestTranscriptSuccess(t *testing.T) {
	ts := newTestServer(t, &fakeCaptions{segs: []engine.RawSegment{
		{Text: "Hello", OffsetMillis: 0, DurationMillis: 1500},
		{Text: "world", OffsetMillis: 125700, DurationMillis: 2000},
	}}, "")

	rec := ts.post("/transcript", `{"url":"https://www.youtube.com/watch?v=dQw4w9WgXcQ"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	var got engine.TranscriptResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "dQw4w9WgXcQ", got.VideoID)
	assert.Equal(t, "Hello world", got.FullText)
	assert.Equal(t, 11, got.CharacterCount)
	assert.Equal(t, 3, got.TokenCount)
	require.Len(t, got.Items, 2)
	assert.Equal(t, engine.TranscriptItem{Text: "world", Start: 125.7, Duration: 2, Timestamp: "02:05"}, got.Items[1])
}

func TestTranscriptErrors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		captions   *fakeCaptions
		wantStatus int
		wantMsg    string
		wantCalls  int32
	}{
		{
			name:       "non youtube url",
			body:       `{"url":"https://vimeo.com/12345"}`,
			captions:   &fakeCaptions{},
			wantStatus: http.StatusBadRequest,
			wantMsg:    "invalid YouTube URL",
		},
		{
			name:       "missing url",
			body:       `{}`,
			captions:   &fakeCaptions{},
			wantStatus: http.StatusBadRequest,
			wantMsg:    "url is required",
		},
		{
			name:       "malformed json",
			body:       `{"url":`,
			captions:   &fakeCaptions{},
			wantStatus: http.StatusBadRequest,
			wantMsg:    "invalid JSON body",
		},
		{
			name:       "empty body",
			body:       ``,
			captions:   &fakeCaptions{},
			wantStatus: http.StatusBadRequest,
			wantMsg:    "request body is required",
		},
		{
			name:       "oversized body",
			body:       `{"url":"` + strings.Repeat("a", 2048) + `"}`,
			captions:   &fakeCaptions{},
			wantStatus: http.StatusBadRequest,
			wantMsg:    "request body too large",
		},
		{
			name:       "no captions",
			body:       `{"url":"https://youtu.be/abc123"}`,
			captions:   &fakeCaptions{err: &sources.AcquisitionError{Kind: sources.KindNotFound, Err: io.EOF}},
			wantStatus: http.StatusNotFound,
			wantMsg:    "no captions available for this video",
			wantCalls:  1,
		},
		{
			name:       "private video",
			body:       `{"url":"https://youtu.be/abc123"}`,
			captions:   &fakeCaptions{err: &sources.AcquisitionError{Kind: sources.KindVideoUnavailable, Err: io.EOF}},
			wantStatus: http.StatusForbidden,
			wantMsg:    "video is unavailable or private",
			wantCalls:  1,
		},
		{
			name:       "rate limited",
			body:       `{"url":"https://youtu.be/abc123"}`,
			captions:   &fakeCaptions{err: &sources.AcquisitionError{Kind: sources.KindRateLimited, Err: io.EOF}},
			wantStatus: http.StatusTooManyRequests,
			wantMsg:    "rate limited by YouTube, try again later",
			wantCalls:  1,
		},
		{
			name:       "unexpected failure hides cause",
			body:       `{"url":"https://youtu.be/abc123"}`,
			captions:   &fakeCaptions{err: io.ErrUnexpectedEOF},
			wantStatus: http.StatusInternalServerError,
			wantMsg:    "internal server error",
			wantCalls:  1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, tt.captions, "")
			rec := ts.post("/transcript", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantMsg, errorMessage(t, rec))
			assert.Equal(t, tt.wantCalls, tt.captions.calls.Load())
		})
	}
}

func TestSummarizeSuccess(t *testing.T) {
	ts := newTestServer(t, &fakeCaptions{}, "test-key")

	rec := ts.post("/summarize", `{"transcript":"A short talk about Go.","style":"concise"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var got engine.SummaryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "TL;DR: First sentence. Second sentence.\n\nKey Points:\n• one\n• two", got.Summary)
	assert.Equal(t, "First sentence. Second sentence.", got.TLDR)
	assert.Equal(t, []string{"one", "two"}, got.BulletPoints)
	assert.Equal(t, engine.EstimateTokens(got.Summary), got.TokenCount)
	assert.Equal(t, int32(1), ts.llm.calls.Load())
}

func TestSummarizeErrors(t *testing.T) {
	tests := []struct {
		name       string
		apiKey     string
		body       string
		wantStatus int
		wantMsg    string
	}{
		{"empty transcript", "k", `{"transcript":""}`, http.StatusBadRequest, "transcript is required"},
		{"blank transcript", "k", `{"transcript":"   "}`, http.StatusBadRequest, "transcript must not be empty"},
		{"bad style", "k", `{"transcript":"text","style":"verbose"}`, http.StatusBadRequest, "style must be one of: detailed concise"},
		{"missing credential", "", `{"transcript":"text"}`, http.StatusInternalServerError, "summarization is not configured: missing LLM API key"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, &fakeCaptions{}, tt.apiKey)
			rec := ts.post("/summarize", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantMsg, errorMessage(t, rec))
			assert.Equal(t, int32(0), ts.llm.calls.Load())
		})
	}
}

func TestHealthAndMetrics(t *testing.T) {
	ts := newTestServer(t, &fakeCaptions{}, "")

	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "llm_calls 0\n", rec.Body.String())
}

// brokenWriter fails every body write.
type brokenWriter struct {
	*httptest.ResponseRecorder
}

func (brokenWriter) Write([]byte) (int, error) { return 0, errors.New("connection reset") }

func (brokenWriter) WriteString(string) (int, error) { return 0, errors.New("connection reset") }

func TestMetricsWriteFailureIsLogged(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	s := NewServer(nil, logger, Options{Metrics: func() string { return "llm_calls 0\n" }})

	s.handleMetrics(brokenWriter{httptest.NewRecorder()}, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, logs.String(), "failed to write metrics")
	assert.Contains(t, logs.String(), "connection reset")
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t, &fakeCaptions{}, "")

	req := httptest.NewRequest(http.MethodOptions, "/summarize", nil)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestMethodNotAllowed(t *testing.T) {
	ts := newTestServer(t, &fakeCaptions{}, "")
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/transcript", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
