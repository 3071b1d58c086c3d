package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/anatolykoptev/go_tldr/internal/engine"
)

const watchPageMaxBody = 6 << 20

var errNoPlayerResponse = errors.New("caption manifest not found in watch page")

// ScrapeStrategy reads the caption manifest embedded in the public watch page.
type ScrapeStrategy struct{ yt *YouTube }

func (ScrapeStrategy) Name() string { return "scrape" }

func (s ScrapeStrategy) Attempt(ctx context.Context, videoID string) ([]engine.RawSegment, error) {
	header := http.Header{}
	for k, v := range engine.BrowserHeaders() {
		header.Set(k, v)
	}
	header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	watchURL := s.yt.baseURL + "/watch?v=" + url.QueryEscape(videoID) + "&hl=en"
	page, err := s.yt.get(ctx, watchURL, header, watchPageMaxBody)
	if err != nil {
		return nil, httpFailure(fmt.Errorf("watch page: %w", err))
	}

	tracks, err := captionTracksFromPage(page)
	if err != nil {
		return nil, err
	}
	track, ok := pickBestTrack(tracks, s.yt.langs)
	if !ok {
		return nil, fail(KindNotFound, errPoTokenOnly)
	}
	segs, err := s.yt.fetchCaptions(ctx, track.BaseURL)
	if err != nil {
		return nil, err
	}
	if len(segs) == 0 {
		return nil, fail(KindNotFound, errEmptyCaption)
	}
	return segs, nil
}

// captionTracksFromPage locates caption tracks in the watch page scripts:
// first a direct "captionTracks":[...] literal, then a recursive search of
// the ytInitialPlayerResponse object.
func captionTracksFromPage(page []byte) ([]captionTrack, error) {
	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return nil, fail(KindUnknown, fmt.Errorf("parse watch page: %w", err))
	}
	scripts := scriptBodies(doc)

	for _, sc := range scripts {
		if tracks := tracksFromLiteral(sc); len(tracks) > 0 {
			return tracks, nil
		}
	}

	for _, sc := range scripts {
		blob := playerResponseBlob(sc)
		if blob == nil {
			continue
		}
		if tracks := findCaptionTracks(blob); len(tracks) > 0 {
			return tracks, nil
		}
		var pr playerResp
		if err := json.Unmarshal(blob, &pr); err != nil {
			continue
		}
		return pr.captionTracks()
	}
	return nil, fail(KindUnknown, errNoPlayerResponse)
}

func scriptBodies(doc *html.Node) []string {
	var out []string
	for _, n := range findElements(doc, "script") {
		if c := n.FirstChild; c != nil && c.Type == html.TextNode {
			out = append(out, c.Data)
		}
	}
	return out
}

// findElements returns all element nodes with the given tag name.
func findElements(n *html.Node, tag string) []*html.Node {
	var results []*html.Node
	if n.Type == html.ElementNode && n.Data == tag {
		results = append(results, n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		results = append(results, findElements(c, tag)...)
	}
	return results
}

const captionTracksKey = `"captionTracks":`

func tracksFromLiteral(script string) []captionTrack {
	idx := strings.Index(script, captionTracksKey)
	if idx < 0 {
		return nil
	}
	raw := extractJSON([]byte(strings.TrimLeft(script[idx+len(captionTracksKey):], " ")))
	if raw == nil {
		return nil
	}
	var tracks []captionTrack
	if err := json.Unmarshal(raw, &tracks); err != nil {
		return nil
	}
	return tracks
}

const playerResponseMarker = "ytInitialPlayerResponse"

func playerResponseBlob(script string) []byte {
	idx := strings.Index(script, playerResponseMarker)
	if idx < 0 {
		return nil
	}
	rest := script[idx+len(playerResponseMarker):]
	brace := strings.IndexByte(rest, '{')
	if brace < 0 {
		return nil
	}
	return extractJSON([]byte(rest[brace:]))
}

// findCaptionTracks searches a JSON document for the first captionTracks key at any depth.
func findCaptionTracks(blob []byte) []captionTrack {
	var doc any
	if err := json.Unmarshal(blob, &doc); err != nil {
		return nil
	}
	found := findKey(doc, "captionTracks")
	if found == nil {
		return nil
	}
	raw, err := json.Marshal(found)
	if err != nil {
		return nil
	}
	var tracks []captionTrack
	if err := json.Unmarshal(raw, &tracks); err != nil {
		return nil
	}
	return tracks
}

func findKey(v any, key string) any {
	switch t := v.(type) {
	case map[string]any:
		if val, ok := t[key]; ok {
			return val
		}
		for _, child := range t {
			if r := findKey(child, key); r != nil {
				return r
			}
		}
	case []any:
		for _, child := range t {
			if r := findKey(child, key); r != nil {
				return r
			}
		}
	}
	return nil
}

// extractJSON extracts a complete JSON object or array starting at b[0] by tracking nesting depth.
func extractJSON(b []byte) []byte {
	if len(b) == 0 || (b[0] != '{' && b[0] != '[') {
		return nil
	}
	depth := 0
	inStr, escaped := false, false
	for i, c := range b {
		if inStr {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inStr = false
			}
			continue
		}
		switch c {
		case '"':
			inStr = true
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return b[:i+1]
			}
		}
	}
	return nil
}
