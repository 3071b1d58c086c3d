package sources

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/anatolykoptev/go_tldr/internal/engine"
)

const captionMaxBody = 4 << 20

var (
	errNoCaptions   = errors.New("no captions in player response")
	errPoTokenOnly  = errors.New("all caption tracks require a PoToken")
	errEmptyCaption = errors.New("caption tracks returned no segments")
)

// ParseCaptions parses a caption body as WebVTT or timed-text XML.
// hint is the track URL or a format hint such as "fmt=vtt".
func ParseCaptions(body, hint string) []engine.RawSegment {
	head := strings.TrimLeft(body, "\ufeff \t\r\n")
	if strings.HasPrefix(head, "WEBVTT") || strings.Contains(hint, "fmt=vtt") {
		return ParseWebVTT(body)
	}
	return ParseTimedText(body)
}

// needsPoToken reports whether a caption track URL requires a PoToken (browser-only).
// Tracks with &exp=xpe cannot be fetched server-side.
func needsPoToken(baseURL string) bool {
	return strings.Contains(baseURL, "&exp=xpe")
}

func usableTracks(tracks []captionTrack) []captionTrack {
	usable := make([]captionTrack, 0, len(tracks))
	for _, t := range tracks {
		if t.BaseURL != "" && !needsPoToken(t.BaseURL) {
			usable = append(usable, t)
		}
	}
	return usable
}

// tracksForLang returns the tracks in lang, manual before auto-generated.
func tracksForLang(tracks []captionTrack, lang string) []captionTrack {
	var manual, asr []captionTrack
	for _, t := range tracks {
		if !strings.EqualFold(t.LanguageCode, lang) {
			continue
		}
		if t.Kind == "asr" {
			asr = append(asr, t)
		} else {
			manual = append(manual, t)
		}
	}
	return append(manual, asr...)
}

// pickBestTrack selects the best usable caption track for the given language preferences.
// Skips tracks that require PoToken; those only work in a browser.
func pickBestTrack(tracks []captionTrack, langs []string) (captionTrack, bool) {
	usable := usableTracks(tracks)
	if len(usable) == 0 {
		return captionTrack{}, false
	}
	for _, lang := range langs {
		if m := tracksForLang(usable, lang); len(m) > 0 {
			return m[0], true
		}
	}
	for _, t := range usable {
		if strings.HasPrefix(t.LanguageCode, "en") {
			return t, true
		}
	}
	return usable[0], true
}

// fetchPreferred walks the language preferences and returns the first track
// that parses to a non-empty segment list. When none does, the best track
// regardless of language is tried once.
func (y *YouTube) fetchPreferred(ctx context.Context, tracks []captionTrack) ([]engine.RawSegment, error) {
	usable := usableTracks(tracks)
	if len(usable) == 0 {
		return nil, fail(KindNotFound, errPoTokenOnly)
	}

	tried := make(map[string]bool)
	var lastErr error
	for _, lang := range y.langs {
		for _, t := range tracksForLang(usable, lang) {
			tried[t.BaseURL] = true
			segs, err := y.fetchCaptions(ctx, t.BaseURL)
			if err != nil {
				lastErr = err
				continue
			}
			if len(segs) > 0 {
				return segs, nil
			}
		}
	}

	if t, ok := pickBestTrack(usable, nil); ok && !tried[t.BaseURL] {
		segs, err := y.fetchCaptions(ctx, t.BaseURL)
		if err != nil {
			return nil, err
		}
		if len(segs) > 0 {
			return segs, nil
		}
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, fail(KindNotFound, errEmptyCaption)
}

// fetchCaptions downloads and parses one caption track.
func (y *YouTube) fetchCaptions(ctx context.Context, trackURL string) ([]engine.RawSegment, error) {
	engine.IncrCaptionFetch()
	body, err := y.get(ctx, trackURL, http.Header{"User-Agent": {engine.UserAgentBot}}, captionMaxBody)
	if err != nil {
		engine.IncrCaptionFetchError()
		return nil, httpFailure(fmt.Errorf("fetch captions: %w", err))
	}
	return ParseCaptions(string(body), trackURL), nil
}

// get fetches rawURL with retry. Non-200 responses surface as *engine.StatusError.
func (y *YouTube) get(ctx context.Context, rawURL string, header http.Header, limit int64) ([]byte, error) {
	resp, err := engine.RetryHTTP(ctx, y.retry, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, err
		}
		for k, v := range header {
			req.Header[k] = v
		}
		return y.client.Do(req)
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &engine.StatusError{StatusCode: resp.StatusCode}
	}
	return io.ReadAll(io.LimitReader(resp.Body, limit))
}
