// Package sources acquires timed captions for YouTube videos.
//
// Acquisition is split across files by responsibility:
//
//	youtube_innertube.go  Innertube API types and low-level HTTP primitives
//	youtube_transcript.go player and engagement-panel strategies
//	youtube_scrape.go     watch-page scraping strategy
//	ytdlp.go              yt-dlp external downloader strategy
//	captions*.go          caption track selection, download and parsing
//	chain.go              ordered strategy chain and failure classification
package sources

import (
	"net/http"
	"strings"

	"github.com/anatolykoptev/go_tldr/internal/engine"
)

// YouTube holds the HTTP plumbing shared by every strategy.
type YouTube struct {
	client  *http.Client
	baseURL string
	langs   []string
	retry   engine.RetryConfig
}

// NewYouTube creates a YouTube client from cfg. Zero fields take engine defaults.
func NewYouTube(cfg engine.Config) *YouTube {
	cfg = cfg.WithDefaults()
	return &YouTube{
		client:  cfg.HTTPClient,
		baseURL: strings.TrimRight(cfg.YouTubeBaseURL, "/"),
		langs:   cfg.CaptionLangs,
		retry:   engine.DefaultRetryConfig,
	}
}
