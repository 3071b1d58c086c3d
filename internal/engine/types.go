package engine

// --- Caption / transcript types ---

// RawSegment is one timed caption cue as delivered by an acquisition strategy.
type RawSegment struct {
	Text           string
	OffsetMillis   int64
	DurationMillis int64
}

// TranscriptItem is the canonical, normalized caption unit.
type TranscriptItem struct {
	Text      string  `json:"text"`
	Start     float64 `json:"start"`    // seconds
	Duration  float64 `json:"duration"` // seconds
	Timestamp string  `json:"timestamp"`
}

// Transcript is built once per request and never mutated.
type Transcript struct {
	Items          []TranscriptItem `json:"items"`
	FullText       string           `json:"fullText"`
	CharacterCount int              `json:"characterCount"`
	TokenCount     int              `json:"tokenCount"`
}

// TranscriptResponse is returned by POST /transcript and the youtube_transcript tool.
type TranscriptResponse struct {
	VideoID        string           `json:"videoId"`
	Items          []TranscriptItem `json:"items"`
	FullText       string           `json:"fullText"`
	CharacterCount int              `json:"characterCount"`
	TokenCount     int              `json:"tokenCount"`
}

// NewTranscriptResponse pairs a transcript with its video ID.
func NewTranscriptResponse(videoID string, t Transcript) TranscriptResponse {
	return TranscriptResponse{
		VideoID:        videoID,
		Items:          t.Items,
		FullText:       t.FullText,
		CharacterCount: t.CharacterCount,
		TokenCount:     t.TokenCount,
	}
}

// --- Summary types ---

// Summary styles.
const (
	StyleDetailed = "detailed"
	StyleConcise  = "concise"
)

// PartialSummary is the parsed output of one LLM call.
type PartialSummary struct {
	TLDR         string   `json:"tldr"`
	BulletPoints []string `json:"bullet_points"`
}

// FinalSummary is the merged result of the map-reduce.
type FinalSummary struct {
	PartialSummary
	Chunks   int  // number of map calls
	Reduced  bool // reduce call succeeded
	FellBack bool // reduce failed, first partial used
}

// SummaryResponse is returned by POST /summarize and the youtube_summarize tool.
type SummaryResponse struct {
	Summary      string   `json:"summary"`
	TLDR         string   `json:"tldr"`
	BulletPoints []string `json:"bulletPoints"`
	TokenCount   int      `json:"tokenCount"`
}

// --- MCP tool inputs ---

type TranscriptInput struct {
	URL string `json:"url" jsonschema:"YouTube video URL (youtube.com/watch?v=... or youtu.be/...)"`
}

type SummarizeInput struct {
	URL        string `json:"url,omitempty" jsonschema:"YouTube video URL; used when transcript is empty"`
	Transcript string `json:"transcript,omitempty" jsonschema:"Transcript text to summarize"`
	Style      string `json:"style,omitempty" jsonschema:"Summary style: detailed (default) or concise"`
}
