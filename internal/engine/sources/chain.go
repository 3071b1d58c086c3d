package sources

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/anatolykoptev/go_tldr/internal/engine"
)

// Strategy is one way of acquiring captions for a video.
type Strategy interface {
	Name() string
	Attempt(ctx context.Context, videoID string) ([]engine.RawSegment, error)
}

// budgeted is implemented by strategies that need more time than the chain default.
type budgeted interface {
	Timeout() time.Duration
}

var errNoSegments = errors.New("strategy returned no segments")

// Chain tries strategies in order and returns the first non-empty result.
type Chain struct {
	strategies []Strategy
	timeout    time.Duration
}

// NewChain creates a chain that gives each strategy up to timeout.
func NewChain(timeout time.Duration, strategies ...Strategy) *Chain {
	if timeout <= 0 {
		timeout = engine.DefaultStrategyTimeout
	}
	return &Chain{strategies: strategies, timeout: timeout}
}

// NewChainFromConfig builds the strategy chain named by cfg.CaptionStrategies.
func NewChainFromConfig(cfg engine.Config, runner CommandRunner) (*Chain, error) {
	cfg = cfg.WithDefaults()
	strategies, err := NewStrategies(cfg, runner)
	if err != nil {
		return nil, err
	}
	return NewChain(cfg.StrategyTimeout, strategies...), nil
}

// NewStrategies instantiates strategies by name, in order.
func NewStrategies(cfg engine.Config, runner CommandRunner) ([]Strategy, error) {
	cfg = cfg.WithDefaults()
	if runner == nil {
		runner = ExecRunner{}
	}
	yt := NewYouTube(cfg)

	out := make([]Strategy, 0, len(cfg.CaptionStrategies))
	for _, name := range cfg.CaptionStrategies {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "player":
			out = append(out, PlayerStrategy{yt: yt})
		case "panel":
			out = append(out, PanelStrategy{yt: yt})
		case "scrape":
			out = append(out, ScrapeStrategy{yt: yt})
		case "ytdlp":
			out = append(out, YtDlpStrategy{yt: yt, path: cfg.YtDlpPath, timeout: cfg.YtDlpTimeout, runner: runner})
		case "":
		default:
			return nil, fmt.Errorf("unknown caption strategy %q", name)
		}
	}
	if len(out) == 0 {
		return nil, errors.New("no caption strategies configured")
	}
	return out, nil
}

// Fetch returns the first non-empty segment list. Strategy failures are
// logged and skipped; when all fail, the most specific *AcquisitionError
// across attempts is returned.
func (c *Chain) Fetch(ctx context.Context, videoID string) ([]engine.RawSegment, error) {
	engine.IncrTranscriptRequests()

	var worst *AcquisitionError
	for _, s := range c.strategies {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		segs, err := c.attempt(ctx, s, videoID)
		if err == nil && len(segs) > 0 {
			slog.Debug("youtube: captions acquired",
				slog.String("id", videoID), slog.String("strategy", s.Name()), slog.Int("segments", len(segs)))
			return segs, nil
		}
		if err == nil {
			err = fail(KindNotFound, errNoSegments)
		}

		ae := asAcquisition(err, s.Name(), videoID)
		engine.IncrStrategyFailure()
		slog.Warn("youtube: strategy failed",
			slog.String("id", videoID), slog.String("strategy", s.Name()),
			slog.String("kind", ae.Kind.String()), slog.Any("err", ae.Err))
		if worst == nil || ae.Kind.rank() > worst.Kind.rank() {
			worst = ae
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if worst == nil {
		worst = &AcquisitionError{Kind: KindNotFound, VideoID: videoID, Err: errors.New("no caption strategies configured")}
	}
	return nil, worst
}

// attempt runs one strategy under its own timeout; panics become errors.
func (c *Chain) attempt(ctx context.Context, s Strategy, videoID string) (segs []engine.RawSegment, err error) {
	engine.IncrStrategyAttempt()
	timeout := c.timeoutFor(s)
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			segs = nil
			err = fail(KindUnknown, fmt.Errorf("panic: %v", r))
		}
	}()

	err = engine.TrackOperation(ctx, "captions:"+s.Name(), timeout/2, func(ctx context.Context) error {
		var aerr error
		segs, aerr = s.Attempt(ctx, videoID)
		return aerr
	})
	return segs, err
}

// timeoutFor returns the chain timeout, raised to the strategy's own budget.
func (c *Chain) timeoutFor(s Strategy) time.Duration {
	if b, ok := s.(budgeted); ok && b.Timeout() > c.timeout {
		return b.Timeout()
	}
	return c.timeout
}
