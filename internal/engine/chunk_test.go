package engine

import (
	"fmt"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkTextShortInputUnchanged(t *testing.T) {
	text := "One sentence. Another one!  Spacing   kept?"
	assert.Equal(t, []string{text}, ChunkText(text, 100))
}

func TestChunkTextDefaultBudget(t *testing.T) {
	text := strings.Repeat("a", DefaultChunkMaxTokens*4)
	assert.Equal(t, []string{text}, ChunkText(text, 0))
}

func sentences(s string) []string {
	var out []string
	for _, f := range regexp.MustCompile(`[.!?]+`).Split(s, -1) {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func TestChunkTextSplitsOnSentences(t *testing.T) {
	var parts []string
	for i := range 40 {
		parts = append(parts, fmt.Sprintf("Sentence number %d talks about topic %d", i, i%7))
	}
	text := strings.Join(parts, ". ") + "."
	const maxTokens = 50 // 200 chars

	chunks := ChunkText(text, maxTokens)
	require.GreaterOrEqual(t, len(chunks), 2)

	for i, c := range chunks {
		assert.LessOrEqual(t, CharCount(c), maxTokens*4, "chunk %d too long", i)
		assert.NotEmpty(t, c)
	}
	assert.Equal(t, sentences(text), sentences(strings.Join(chunks, " ")))
}

func TestChunkTextMixedPunctuation(t *testing.T) {
	text := strings.Repeat("Wait what?! Really... Yes. ", 30)
	chunks := ChunkText(text, 10)
	require.GreaterOrEqual(t, len(chunks), 2)
	assert.Equal(t, sentences(text), sentences(strings.Join(chunks, " ")))
}

func TestChunkTextOversizedSentence(t *testing.T) {
	long := strings.Repeat("word ", 100) // 500 chars, no punctuation
	text := "Short intro. " + long + ". Short outro."
	chunks := ChunkText(text, 25) // 100 chars

	require.Len(t, chunks, 3)
	assert.Equal(t, "Short intro.", chunks[0])
	assert.Greater(t, CharCount(chunks[1]), 100)
	assert.Equal(t, strings.TrimSpace(long)+".", chunks[1])
	assert.Equal(t, "Short outro.", chunks[2])
}

func TestChunkTextOnlyPunctuation(t *testing.T) {
	text := strings.Repeat("!", 50)
	assert.Equal(t, []string{text}, ChunkText(text, 5))
}
