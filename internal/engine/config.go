package engine

import (
	"net/http"
	"time"
)

// Config holds all engine configuration, injected from main.
type Config struct {
	LLMAPIKey          string
	LLMAPIKeyFallbacks []string
	LLMAPIBase         string
	LLMModel           string
	LLMTemperature     float64
	LLMMaxTokens       int
	LLMMaxParallel     int     // concurrent map-phase calls
	LLMRPS             float64 // 0 = unpaced

	ChunkMaxTokens int

	CaptionLangs      []string
	CaptionStrategies []string
	YouTubeBaseURL    string
	FetchTimeout      time.Duration
	StrategyTimeout   time.Duration
	YtDlpPath         string
	YtDlpTimeout      time.Duration

	HTTPClient *http.Client
}

// Defaults used when a Config field is left zero.
const (
	DefaultChunkMaxTokens  = 12000
	DefaultLLMMaxParallel  = 4
	DefaultYouTubeBaseURL  = "https://www.youtube.com"
	DefaultFetchTimeout    = 15 * time.Second
	DefaultStrategyTimeout = 30 * time.Second
	DefaultYtDlpTimeout    = 60 * time.Second
)

// DefaultCaptionLangs is the caption language preference order.
var DefaultCaptionLangs = []string{"en", "en-US", "en-GB"}

// DefaultCaptionStrategies is the acquisition order, cheapest first.
var DefaultCaptionStrategies = []string{"player", "panel", "scrape", "ytdlp"}

// WithDefaults returns a copy of c with zero fields filled in.
func (c Config) WithDefaults() Config {
	if c.ChunkMaxTokens <= 0 {
		c.ChunkMaxTokens = DefaultChunkMaxTokens
	}
	if c.LLMMaxParallel <= 0 {
		c.LLMMaxParallel = DefaultLLMMaxParallel
	}
	if len(c.CaptionLangs) == 0 {
		c.CaptionLangs = DefaultCaptionLangs
	}
	if len(c.CaptionStrategies) == 0 {
		c.CaptionStrategies = DefaultCaptionStrategies
	}
	if c.YouTubeBaseURL == "" {
		c.YouTubeBaseURL = DefaultYouTubeBaseURL
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = DefaultFetchTimeout
	}
	if c.StrategyTimeout <= 0 {
		c.StrategyTimeout = DefaultStrategyTimeout
	}
	if c.YtDlpPath == "" {
		c.YtDlpPath = "yt-dlp"
	}
	if c.YtDlpTimeout <= 0 {
		c.YtDlpTimeout = DefaultYtDlpTimeout
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.FetchTimeout}
	}
	return c
}
