// Package tldr composes caption acquisition, transcript assembly and
// summarization into the operations exposed over REST and MCP.
package tldr

import (
	"context"
	"strings"

	"github.com/anatolykoptev/go_tldr/internal/engine"
	"github.com/anatolykoptev/go_tldr/internal/engine/sources"
)

// CaptionFetcher acquires raw caption segments for a video.
type CaptionFetcher interface {
	Fetch(ctx context.Context, videoID string) ([]engine.RawSegment, error)
}

// Service is the transcript + summary pipeline.
type Service struct {
	captions   CaptionFetcher
	summarizer *engine.Summarizer
}

// Option customizes Service creation.
type Option func(*Service)

// WithCaptions replaces the caption fetcher.
func WithCaptions(f CaptionFetcher) Option {
	return func(s *Service) { s.captions = f }
}

// WithSummarizer replaces the summarizer.
func WithSummarizer(sum *engine.Summarizer) Option {
	return func(s *Service) { s.summarizer = sum }
}

// New builds a Service from cfg. llm may be nil when no credential is configured.
func New(cfg engine.Config, llm engine.Completer, options ...Option) (*Service, error) {
	s := &Service{}
	for _, o := range options {
		o(s)
	}
	if s.captions == nil {
		chain, err := sources.NewChainFromConfig(cfg, nil)
		if err != nil {
			return nil, err
		}
		s.captions = chain
	}
	if s.summarizer == nil {
		s.summarizer = engine.NewSummarizer(cfg, llm)
	}
	return s, nil
}

// Transcript extracts the video ID from rawURL and returns its normalized transcript.
func (s *Service) Transcript(ctx context.Context, rawURL string) (engine.TranscriptResponse, error) {
	videoID, err := sources.ExtractVideoID(rawURL)
	if err != nil {
		return engine.TranscriptResponse{}, err
	}
	segs, err := s.captions.Fetch(ctx, videoID)
	if err != nil {
		return engine.TranscriptResponse{}, err
	}
	t, err := engine.AssembleTranscript(segs)
	if err != nil {
		return engine.TranscriptResponse{}, err
	}
	return engine.NewTranscriptResponse(videoID, t), nil
}

// Summarize summarizes transcript text in the given style.
func (s *Service) Summarize(ctx context.Context, transcript, style string) (engine.SummaryResponse, error) {
	return s.summarizer.Summarize(ctx, transcript, style)
}

// SummarizeVideo fetches a video's transcript and summarizes it.
// Style and credential are checked before any caption is fetched.
func (s *Service) SummarizeVideo(ctx context.Context, rawURL, style string) (engine.SummaryResponse, error) {
	if _, err := engine.CheckStyle(style); err != nil {
		return engine.SummaryResponse{}, err
	}
	if !s.summarizer.Configured() {
		return engine.SummaryResponse{}, engine.ErrNotConfigured
	}
	t, err := s.Transcript(ctx, rawURL)
	if err != nil {
		return engine.SummaryResponse{}, err
	}
	return s.summarizer.Summarize(ctx, t.FullText, style)
}

// SummarizeInput resolves an MCP summarize request: explicit transcript text
// wins, otherwise the URL is fetched.
func (s *Service) SummarizeInput(ctx context.Context, in engine.SummarizeInput) (engine.SummaryResponse, error) {
	if strings.TrimSpace(in.Transcript) != "" {
		return s.Summarize(ctx, in.Transcript, in.Style)
	}
	if strings.TrimSpace(in.URL) == "" {
		return engine.SummaryResponse{}, engine.Validation("url or transcript is required")
	}
	return s.SummarizeVideo(ctx, in.URL, in.Style)
}
