package engine

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"
)

// CharCount returns the length of s in code points.
func CharCount(s string) int {
	return utf8.RuneCountInString(s)
}

// EstimateTokens approximates a token count as ceil(chars/4).
func EstimateTokens(s string) int {
	n := CharCount(s)
	return (n + 3) / 4
}

// FormatTimestamp renders seconds as "MM:SS". Minutes are not wrapped into hours.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	minutes := int64(math.Floor(seconds / 60))
	secs := int64(math.Floor(math.Mod(seconds, 60)))
	return fmt.Sprintf("%02d:%02d", minutes, secs)
}

// NewTranscriptItem converts a raw segment into its canonical form.
func NewTranscriptItem(seg RawSegment) TranscriptItem {
	start := float64(seg.OffsetMillis) / 1000
	return TranscriptItem{
		Text:      strings.TrimSpace(seg.Text),
		Start:     start,
		Duration:  float64(max(seg.DurationMillis, 0)) / 1000,
		Timestamp: FormatTimestamp(start),
	}
}

// AssembleTranscript normalizes segments in the given order and computes size metrics.
// Segments whose text is blank after trimming are dropped.
func AssembleTranscript(segs []RawSegment) (Transcript, error) {
	if len(segs) == 0 {
		return Transcript{}, ErrEmptyTranscript
	}

	items := make([]TranscriptItem, 0, len(segs))
	var sb strings.Builder
	for _, seg := range segs {
		item := NewTranscriptItem(seg)
		if item.Text == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(item.Text)
		items = append(items, item)
	}
	if len(items) == 0 {
		return Transcript{}, ErrEmptyTranscript
	}

	full := sb.String()
	chars := CharCount(full)
	return Transcript{
		Items:          items,
		FullText:       full,
		CharacterCount: chars,
		TokenCount:     (chars + 3) / 4,
	}, nil
}
