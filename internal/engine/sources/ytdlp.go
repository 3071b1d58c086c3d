package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/anatolykoptev/go_tldr/internal/engine"
)

// CommandRunner runs an external program and returns its stdout and stderr.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// ytdlpFormats is the subtitle format preference, best first.
var ytdlpFormats = []string{"srv1", "vtt"}

// YtDlpStrategy resolves subtitle URLs with yt-dlp and downloads them over HTTP.
type YtDlpStrategy struct {
	yt      *YouTube
	path    string
	timeout time.Duration
	runner  CommandRunner
}

func (YtDlpStrategy) Name() string { return "ytdlp" }

// Timeout is the yt-dlp process budget; the chain never cuts it shorter.
func (s YtDlpStrategy) Timeout() time.Duration { return s.timeout }

type ytdlpInfo struct {
	Subtitles         map[string][]ytdlpSub `json:"subtitles"`
	AutomaticCaptions map[string][]ytdlpSub `json:"automatic_captions"`
}

type ytdlpSub struct {
	Ext string `json:"ext"`
	URL string `json:"url"`
}

func (s YtDlpStrategy) Attempt(ctx context.Context, videoID string) ([]engine.RawSegment, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	args := []string{
		"--dump-single-json",
		"--skip-download",
		"--no-warnings",
		"--write-auto-subs",
		"--sub-langs", strings.Join(s.yt.langs, ","),
		"--sub-format", strings.Join(ytdlpFormats, "/"),
		s.yt.baseURL + "/watch?v=" + videoID,
	}
	stdout, stderr, err := s.runner.Run(ctx, s.path, args...)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fail(KindUnknown, fmt.Errorf("yt-dlp timed out after %s", s.timeout))
		}
		if errors.Is(err, exec.ErrNotFound) {
			return nil, fail(KindUnknown, fmt.Errorf("yt-dlp is not installed: %w", err))
		}
		msg := strings.TrimSpace(string(stderr))
		return nil, fail(classifyYtDlp(msg), fmt.Errorf("yt-dlp: %w: %s", err, engine.TruncateRunes(msg, 300, "...")))
	}

	var info ytdlpInfo
	if err := json.Unmarshal(stdout, &info); err != nil {
		return nil, fail(KindUnknown, fmt.Errorf("decode yt-dlp output: %w", err))
	}
	if len(info.Subtitles) == 0 && len(info.AutomaticCaptions) == 0 {
		return nil, fail(KindCaptionsDisabled, errors.New("yt-dlp reports no subtitles"))
	}
	sub, ok := pickYtDlpSub(info, s.yt.langs)
	if !ok {
		return nil, fail(KindNotFound, fmt.Errorf("no %s subtitles in %v", strings.Join(ytdlpFormats, "/"), s.yt.langs))
	}

	engine.IncrCaptionFetch()
	body, err := s.yt.get(ctx, sub.URL, nil, captionMaxBody)
	if err != nil {
		engine.IncrCaptionFetchError()
		return nil, httpFailure(fmt.Errorf("download subtitles: %w", err))
	}
	segs := ParseCaptions(string(body), "fmt="+sub.Ext)
	if len(segs) == 0 {
		return nil, fail(KindNotFound, errEmptyCaption)
	}
	return segs, nil
}

// pickYtDlpSub prefers uploaded subtitles over automatic captions, then
// language order, then format order.
func pickYtDlpSub(info ytdlpInfo, langs []string) (ytdlpSub, bool) {
	for _, set := range []map[string][]ytdlpSub{info.Subtitles, info.AutomaticCaptions} {
		for _, lang := range langs {
			subs := set[lang]
			for _, ext := range ytdlpFormats {
				for _, sub := range subs {
					if sub.Ext == ext && sub.URL != "" {
						return sub, true
					}
				}
			}
		}
	}
	return ytdlpSub{}, false
}

// classifyYtDlp maps yt-dlp error output to a kind.
func classifyYtDlp(stderr string) Kind {
	s := strings.ToLower(stderr)
	switch {
	case strings.Contains(s, "private video"),
		strings.Contains(s, "video unavailable"),
		strings.Contains(s, "this video is unavailable"),
		strings.Contains(s, "has been removed"):
		return KindVideoUnavailable
	case strings.Contains(s, "confirm your age"),
		strings.Contains(s, "age-restricted"),
		strings.Contains(s, "inappropriate for some users"):
		return KindAgeRestricted
	case strings.Contains(s, "http error 429"),
		strings.Contains(s, "too many requests"),
		strings.Contains(s, "not a bot"):
		return KindRateLimited
	case strings.Contains(s, "no subtitles"),
		strings.Contains(s, "no automatic captions"):
		return KindCaptionsDisabled
	default:
		return KindDownloadFailed
	}
}
