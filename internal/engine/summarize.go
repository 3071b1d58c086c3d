package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Summarizer runs the chunked map-reduce summarization over a transcript.
type Summarizer struct {
	llm         Completer
	configured  bool
	maxTokens   int
	maxParallel int
	limiter     *rate.Limiter // nil = unpaced
}

// NewSummarizer creates a Summarizer. llm is only called when c carries an API key.
func NewSummarizer(c Config, llm Completer) *Summarizer {
	c = c.WithDefaults()
	s := &Summarizer{
		llm:         llm,
		configured:  c.LLMAPIKey != "" && llm != nil,
		maxTokens:   c.ChunkMaxTokens,
		maxParallel: c.LLMMaxParallel,
	}
	if c.LLMRPS > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(c.LLMRPS), 1)
	}
	return s
}

// Configured reports whether an LLM credential is present.
func (s *Summarizer) Configured() bool {
	return s.configured
}

// NormStyle maps an empty style to the default.
func NormStyle(style string) string {
	if style == "" {
		return StyleDetailed
	}
	return style
}

// CheckStyle normalizes style and rejects unknown values.
func CheckStyle(style string) (string, error) {
	style = NormStyle(style)
	if style != StyleDetailed && style != StyleConcise {
		return "", Validation(`style must be "detailed" or "concise"`)
	}
	return style, nil
}

// Summarize validates input, summarizes every chunk and merges the partials.
func (s *Summarizer) Summarize(ctx context.Context, transcript, style string) (SummaryResponse, error) {
	if strings.TrimSpace(transcript) == "" {
		return SummaryResponse{}, Validation("transcript must not be empty")
	}
	style, err := CheckStyle(style)
	if err != nil {
		return SummaryResponse{}, err
	}
	if !s.configured {
		return SummaryResponse{}, ErrNotConfigured
	}
	metrics.SummarizeRequests.Add(1)

	final, err := s.summarize(ctx, transcript, style)
	if err != nil {
		return SummaryResponse{}, err
	}
	return RenderSummary(final.PartialSummary), nil
}

func (s *Summarizer) summarize(ctx context.Context, transcript, style string) (FinalSummary, error) {
	chunks := ChunkText(transcript, s.maxTokens)
	partials, err := s.mapChunks(ctx, chunks, style)
	if err != nil {
		return FinalSummary{}, err
	}
	if len(partials) == 1 {
		return FinalSummary{PartialSummary: partials[0], Chunks: 1}, nil
	}

	merged, err := s.reduce(ctx, partials, style)
	if err != nil {
		// Reduce failures are not surfaced: the first section stands in for the whole.
		metrics.ReduceFallbacks.Add(1)
		slog.Warn("summarize: reduce failed, using first chunk summary",
			slog.Int("chunks", len(chunks)), slog.Any("error", err))
		return FinalSummary{PartialSummary: partials[0], Chunks: len(chunks), FellBack: true}, nil
	}
	return FinalSummary{PartialSummary: merged, Chunks: len(chunks), Reduced: true}, nil
}

// mapChunks summarizes chunks concurrently. The first failure cancels the rest.
func (s *Summarizer) mapChunks(ctx context.Context, chunks []string, style string) ([]PartialSummary, error) {
	partials := make([]PartialSummary, len(chunks))
	system := fmt.Sprintf(mapSystemPrompt, bulletRange(style))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxParallel)
	for i, chunk := range chunks {
		g.Go(func() error {
			if s.limiter != nil {
				if err := s.limiter.Wait(gctx); err != nil {
					return &SummarizationError{ChunkIndex: i, Err: err}
				}
			}
			prompt := fmt.Sprintf(mapUserPrompt, i+1, len(chunks), chunk)
			p, err := s.call(gctx, system, prompt)
			if err != nil {
				return &SummarizationError{ChunkIndex: i, Err: err}
			}
			partials[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return partials, nil
}

func (s *Summarizer) reduce(ctx context.Context, partials []PartialSummary, style string) (PartialSummary, error) {
	tldrs := make([]string, 0, len(partials))
	var bullets strings.Builder
	n := 0
	for _, p := range partials {
		tldrs = append(tldrs, p.TLDR)
		for _, b := range p.BulletPoints {
			n++
			fmt.Fprintf(&bullets, "%d. %s\n", n, b)
		}
	}
	system := fmt.Sprintf(reduceSystemPrompt, bulletRange(style))
	prompt := fmt.Sprintf(reduceUserPrompt, strings.Join(tldrs, " "), bullets.String())
	return s.call(ctx, system, prompt)
}

func (s *Summarizer) call(ctx context.Context, system, prompt string) (PartialSummary, error) {
	metrics.LLMCalls.Add(1)
	raw, err := s.llm.Complete(ctx, system, prompt)
	if err != nil {
		metrics.LLMErrors.Add(1)
		return PartialSummary{}, err
	}
	p, err := ParsePartialSummary(raw)
	if err != nil {
		metrics.LLMErrors.Add(1)
		return PartialSummary{}, err
	}
	return p, nil
}

// RenderSummary formats a summary as "TL;DR: ...\n\nKey Points:\n• ...".
func RenderSummary(p PartialSummary) SummaryResponse {
	lines := make([]string, len(p.BulletPoints))
	for i, b := range p.BulletPoints {
		lines[i] = "• " + b
	}
	text := "TL;DR: " + p.TLDR + "\n\nKey Points:\n" + strings.Join(lines, "\n")
	bullets := p.BulletPoints
	if bullets == nil {
		bullets = []string{}
	}
	return SummaryResponse{
		Summary:      text,
		TLDR:         p.TLDR,
		BulletPoints: bullets,
		TokenCount:   EstimateTokens(text),
	}
}
