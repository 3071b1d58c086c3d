package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	TranscriptRequests atomic.Int64
	StrategyAttempts   atomic.Int64
	StrategyFailures   atomic.Int64
	CaptionFetches     atomic.Int64
	CaptionFetchErrors atomic.Int64
	SummarizeRequests  atomic.Int64
	LLMCalls           atomic.Int64
	LLMErrors          atomic.Int64
	ReduceFallbacks    atomic.Int64
}

var metricKeys = []string{
	"transcript_requests",
	"strategy_attempts", "strategy_failures",
	"caption_fetches", "caption_fetch_errors",
	"summarize_requests",
	"llm_calls", "llm_errors",
	"reduce_fallbacks",
}

// GetMetrics returns a snapshot of all metrics.
func GetMetrics() map[string]int64 {
	return map[string]int64{
		"transcript_requests":  metrics.TranscriptRequests.Load(),
		"strategy_attempts":    metrics.StrategyAttempts.Load(),
		"strategy_failures":    metrics.StrategyFailures.Load(),
		"caption_fetches":      metrics.CaptionFetches.Load(),
		"caption_fetch_errors": metrics.CaptionFetchErrors.Load(),
		"summarize_requests":   metrics.SummarizeRequests.Load(),
		"llm_calls":            metrics.LLMCalls.Load(),
		"llm_errors":           metrics.LLMErrors.Load(),
		"reduce_fallbacks":     metrics.ReduceFallbacks.Load(),
	}
}

// FormatMetrics returns metrics as a simple text format for HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	for _, k := range metricKeys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

// Incrementors for sources/ sub-package.
func IncrTranscriptRequests() { metrics.TranscriptRequests.Add(1) }
func IncrStrategyAttempt()    { metrics.StrategyAttempts.Add(1) }
func IncrStrategyFailure()    { metrics.StrategyFailures.Add(1) }
func IncrCaptionFetch()       { metrics.CaptionFetches.Add(1) }
func IncrCaptionFetchError()  { metrics.CaptionFetchErrors.Add(1) }

// TrackOperation logs a warning if an operation takes longer than threshold.
func TrackOperation(ctx context.Context, name string, threshold time.Duration, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	if elapsed > threshold {
		slog.Warn("slow operation", slog.String("op", name), slog.Duration("elapsed", elapsed))
	}
	return err
}
