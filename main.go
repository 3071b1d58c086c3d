// go_tldr: YouTube transcript and summary service.
//
// Serves a REST API (POST /transcript, POST /summarize) and exposes the same
// pipeline as MCP tools: youtube_transcript, youtube_summarize.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-mcpserver"
	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_tldr/internal/api"
	"github.com/anatolykoptev/go_tldr/internal/engine"
	"github.com/anatolykoptev/go_tldr/internal/tldr"
	"github.com/anatolykoptev/go_tldr/internal/tldrserver"
)

var version = "dev"

func main() {
	envErr := godotenv.Load()
	initLogger(env.Str("LOG_LEVEL", "info"))
	if envErr != nil {
		slog.Debug("no .env file loaded", slog.Any("error", envErr))
	}

	cfg := loadConfig()

	var completer engine.Completer
	if cfg.LLMAPIKey != "" {
		completer = engine.NewLLMCompleter(cfg)
	} else {
		slog.Warn("LLM_API_KEY not set, summarization disabled")
	}

	svc, err := tldr.New(cfg, completer)
	if err != nil {
		slog.Error("pipeline init failed", slog.Any("error", err))
		os.Exit(1)
	}

	httpPort := env.Str("HTTP_PORT", "8080")
	mcpPort := env.Str("MCP_PORT", "8891")

	httpSrv := &http.Server{
		Addr: ":" + httpPort,
		Handler: api.NewServer(svc, slog.Default(), api.Options{
			CORSOrigins:  env.List("CORS_ORIGINS", "*"),
			MaxBodyBytes: int64(env.Int("MAX_BODY_BYTES", api.DefaultMaxBodyBytes)),
			Metrics:      engine.FormatMetrics,
		}),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      600 * time.Second,
	}
	go func() {
		slog.Info("REST API listening", slog.String("port", httpPort))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("REST API failed", slog.Any("error", err))
		}
	}()

	slog.Info("starting go_tldr",
		slog.String("version", version),
		slog.String("mcp_port", mcpPort),
		slog.String("strategies", strings.Join(cfg.CaptionStrategies, ",")),
	)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "go_tldr",
		Version: version,
	}, nil)
	tldrserver.RegisterTools(server, svc)
	slog.Info("tools registered", slog.Int("count", 2))

	if err := mcpserver.Run(server, mcpserver.Config{
		Name:         "go_tldr",
		Version:      version,
		Port:         mcpPort,
		WriteTimeout: 600 * time.Second,
		Metrics:      engine.FormatMetrics,
	}); err != nil {
		slog.Error("server failed", slog.Any("error", err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(ctx); err != nil {
		slog.Warn("REST API shutdown", slog.Any("error", err))
	}
}

func initLogger(level string) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
}

func loadConfig() engine.Config {
	fetchTimeout := env.Duration("FETCH_TIMEOUT", engine.DefaultFetchTimeout)
	return engine.Config{
		LLMAPIKey:          env.Str("LLM_API_KEY", ""),
		LLMAPIKeyFallbacks: env.List("LLM_API_KEY_FALLBACKS", ""),
		LLMAPIBase:         env.Str("LLM_API_BASE", "https://generativelanguage.googleapis.com/v1beta/openai"),
		LLMModel:           env.Str("LLM_MODEL", "gemini-2.5-flash"),
		LLMTemperature:     env.Float("LLM_TEMPERATURE", 0.2),
		LLMMaxTokens:       env.Int("LLM_MAX_TOKENS", 4096),
		LLMMaxParallel:     env.Int("LLM_MAX_PARALLEL", engine.DefaultLLMMaxParallel),
		LLMRPS:             env.Float("LLM_RPS", 0),
		ChunkMaxTokens:     env.Int("CHUNK_MAX_TOKENS", engine.DefaultChunkMaxTokens),
		CaptionLangs:       env.List("CAPTION_LANGS", strings.Join(engine.DefaultCaptionLangs, ",")),
		CaptionStrategies:  env.List("CAPTION_STRATEGIES", strings.Join(engine.DefaultCaptionStrategies, ",")),
		YouTubeBaseURL:     env.Str("YOUTUBE_BASE_URL", engine.DefaultYouTubeBaseURL),
		FetchTimeout:       fetchTimeout,
		StrategyTimeout:    env.Duration("STRATEGY_TIMEOUT", engine.DefaultStrategyTimeout),
		YtDlpPath:          env.Str("YTDLP_PATH", "yt-dlp"),
		YtDlpTimeout:       env.Duration("YTDLP_TIMEOUT", engine.DefaultYtDlpTimeout),
		HTTPClient: &http.Client{
			Timeout: fetchTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     60 * time.Second,
			},
		},
	}.WithDefaults()
}
