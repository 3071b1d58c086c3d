package sources

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/anatolykoptev/go_tldr/internal/engine"
)

var (
	// <text start="1.2" dur="3.4">...</text>, times in seconds.
	timedTextRe = regexp.MustCompile(`(?s)<text\b([^>]*?)(?:/>|>(.*?)</text>)`)
	// srv3: <p t="1200" d="3400">...</p>, times in milliseconds.
	srv3Re = regexp.MustCompile(`(?s)<p\b([^>]*?)(?:/>|>(.*?)</p>)`)
	attrRe = regexp.MustCompile(`([\w-]+)="([^"]*)"`)
)

// ParseTimedText parses YouTube timed-text XML (classic or srv3) into segments.
// Entities are decoded, inline tags stripped, and empty cues dropped.
func ParseTimedText(body string) []engine.RawSegment {
	if strings.Contains(body, "<text") {
		return parseTimedElements(body, timedTextRe, "start", "dur", 1000)
	}
	return parseTimedElements(body, srv3Re, "t", "d", 1)
}

// parseTimedElements extracts elements matched by re; scale converts the
// start and duration attributes to milliseconds.
func parseTimedElements(body string, re *regexp.Regexp, startAttr, durAttr string, scale float64) []engine.RawSegment {
	segs := []engine.RawSegment{}
	for _, m := range re.FindAllStringSubmatch(body, -1) {
		attrs := parseAttrs(m[1])
		start, err := strconv.ParseFloat(attrs[startAttr], 64)
		if err != nil {
			continue
		}
		dur, _ := strconv.ParseFloat(attrs[durAttr], 64)

		text := cueText(m[2])
		if text == "" {
			continue
		}
		segs = append(segs, engine.RawSegment{
			Text:           text,
			OffsetMillis:   int64(math.Round(start * scale)),
			DurationMillis: int64(math.Round(dur * scale)),
		})
	}
	return segs
}

func parseAttrs(s string) map[string]string {
	attrs := make(map[string]string)
	for _, m := range attrRe.FindAllStringSubmatch(s, -1) {
		attrs[m[1]] = m[2]
	}
	return attrs
}

// cueText strips literal tags, decodes entities (YouTube double-escapes,
// e.g. &amp;#39;), drops markup that only appears once decoded
// (&lt;font&gt;), and folds whitespace.
func cueText(s string) string {
	s = engine.StripTags(s)
	for range 2 {
		u := engine.UnescapeEntities(s)
		if u == s {
			break
		}
		s = u
	}
	return engine.CollapseSpace(engine.StripElementTags(s))
}
