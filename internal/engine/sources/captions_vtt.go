package sources

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/anatolykoptev/go_tldr/internal/engine"
)

// vttTimingRe matches cue timings like "00:00:01.234 --> 00:00:03.456"
// (hours optional) with optional cue settings after.
var vttTimingRe = regexp.MustCompile(`^((?:\d+:)?\d{2}:\d{2}\.\d{3})\s+-->\s+((?:\d+:)?\d{2}:\d{2}\.\d{3})`)

// ParseWebVTT parses a WebVTT document into timed segments.
// Cue text is tag-stripped and entity-decoded; cues without text are dropped.
func ParseWebVTT(body string) []engine.RawSegment {
	segs := []engine.RawSegment{}
	lines := strings.Split(strings.ReplaceAll(body, "\r\n", "\n"), "\n")

	var cur engine.RawSegment
	open := false
	flush := func() {
		if open && cur.Text != "" {
			segs = append(segs, cur)
		}
		open = false
	}

	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "WEBVTT") || strings.HasPrefix(line, "NOTE") {
			continue
		}
		if m := vttTimingRe.FindStringSubmatch(line); m != nil {
			flush()
			start, end := vttMillis(m[1]), vttMillis(m[2])
			cur = engine.RawSegment{OffsetMillis: start, DurationMillis: end - start}
			open = true
			continue
		}
		// Cue identifier.
		if i+1 < len(lines) && vttTimingRe.MatchString(strings.TrimSpace(lines[i+1])) {
			continue
		}
		if !open {
			continue
		}
		text := engine.CollapseSpace(engine.UnescapeEntities(engine.StripTags(line)))
		if text == "" {
			continue
		}
		if cur.Text != "" {
			cur.Text += " "
		}
		cur.Text += text
	}
	flush()
	return segs
}

// vttMillis converts "HH:MM:SS.mmm" or "MM:SS.mmm" to milliseconds.
func vttMillis(ts string) int64 {
	clock, frac, _ := strings.Cut(ts, ".")
	parts := strings.Split(clock, ":")
	var total int64
	for _, p := range parts {
		n, _ := strconv.ParseInt(p, 10, 64)
		total = total*60 + n
	}
	ms, _ := strconv.ParseInt(frac, 10, 64)
	return total*1000 + ms
}
