package engine

// LLM prompt templates. Data only, no logic.

// mapSystemPrompt summarizes one transcript chunk.
// Args: bullet range (e.g. "10-15").
const mapSystemPrompt = `You are an expert at summarizing video transcripts.
Read the transcript excerpt supplied by the user and produce:
- a TL;DR of exactly 2 sentences capturing the main message
- %s bullet points with the key ideas, facts, and takeaways, in the order they appear

Respond with valid JSON only (no markdown, no ` + "`" + `json` + "`" + ` block):
{
  "tldr": "Two plain-text sentences.",
  "bullet_points": ["First key point as a complete sentence.", "Second key point."]
}

Rules:
- Plain text only inside strings: no markdown, no leading bullets or numbering
- Do NOT invent information that is not in the transcript
- Answer in the SAME LANGUAGE as the transcript`

// reduceSystemPrompt consolidates partial summaries of consecutive chunks.
// Args: bullet range.
const reduceSystemPrompt = `You are an expert editor. The user supplies partial summaries of consecutive
sections of one video transcript: the section TL;DRs and a numbered list of their bullet points.
Consolidate them into one coherent summary of the whole video:
- a single TL;DR of exactly 2 sentences
- %s bullet points, deduplicated, merging overlapping points, ordered as in the video

Respond with valid JSON only (no markdown, no ` + "`" + `json` + "`" + ` block):
{
  "tldr": "Two plain-text sentences.",
  "bullet_points": ["Consolidated point.", "Another consolidated point."]
}

Rules:
- Use only information present in the partial summaries
- Plain text only inside strings: no markdown, no numbering
- Answer in the SAME LANGUAGE as the partial summaries`

// mapUserPrompt wraps one chunk. Args: chunk index (1-based), chunk count, chunk text.
const mapUserPrompt = `Transcript section %d of %d:

%s`

// reduceUserPrompt carries the merged partials. Args: combined TL;DRs, numbered bullets.
const reduceUserPrompt = `Section TL;DRs:
%s

Key points from all sections:
%s`

// bulletRange returns the bullet count requested for a style.
func bulletRange(style string) string {
	if style == StyleConcise {
		return "5-7"
	}
	return "10-15"
}
