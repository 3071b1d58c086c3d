package engine

import (
	"regexp"
	"strings"
)

// sentenceEndRe splits on runs of sentence-ending punctuation.
var sentenceEndRe = regexp.MustCompile(`[.!?]+`)

// ChunkText splits text into pieces of at most maxTokens*4 characters.
// Short text is returned unchanged as a single chunk. Longer text is cut at
// sentence boundaries only, so a single sentence longer than the budget
// becomes its own oversized chunk. The result is never empty.
func ChunkText(text string, maxTokens int) []string {
	if maxTokens <= 0 {
		maxTokens = DefaultChunkMaxTokens
	}
	maxChars := maxTokens * 4
	if CharCount(text) <= maxChars {
		return []string{text}
	}

	var chunks []string
	var buf strings.Builder
	bufChars := 0

	for _, frag := range sentenceEndRe.Split(text, -1) {
		sentence := strings.TrimSpace(frag)
		if sentence == "" {
			continue
		}
		piece := sentence + ". "
		pieceChars := CharCount(piece)

		if bufChars+pieceChars > maxChars && bufChars > 0 {
			chunks = append(chunks, strings.TrimSpace(buf.String()))
			buf.Reset()
			bufChars = 0
		}
		buf.WriteString(piece)
		bufChars += pieceChars
	}
	if rest := strings.TrimSpace(buf.String()); rest != "" {
		chunks = append(chunks, rest)
	}

	if len(chunks) == 0 {
		return []string{text}
	}
	return chunks
}
