package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/anatolykoptev/go-kit/llm"
)

// Completer sends one system+user prompt pair to a chat model and returns the reply text.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// CompleterFunc adapts a function to Completer.
type CompleterFunc func(ctx context.Context, system, prompt string) (string, error)

func (f CompleterFunc) Complete(ctx context.Context, system, prompt string) (string, error) {
	return f(ctx, system, prompt)
}

// NewLLMCompleter builds an OpenAI-compatible chat client from c.
func NewLLMCompleter(c Config) Completer {
	client := llm.NewClient(c.LLMAPIBase, c.LLMAPIKey, c.LLMModel,
		llm.WithFallbackKeys(c.LLMAPIKeyFallbacks),
		llm.WithMaxTokens(c.LLMMaxTokens),
		llm.WithTemperature(c.LLMTemperature),
		llm.WithHTTPClient(&http.Client{Timeout: 120 * time.Second}),
	)
	return CompleterFunc(func(ctx context.Context, system, prompt string) (string, error) {
		return client.Complete(ctx, system, prompt)
	})
}

// stripFences removes markdown code fences from LLM output.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

var errEmptyTLDR = errors.New("response has no tldr")

// ParsePartialSummary decodes a {"tldr", "bullet_points"} reply.
// Prose around the JSON object is tolerated; a missing TL;DR is not.
func ParsePartialSummary(raw string) (PartialSummary, error) {
	body := stripFences(raw)
	var out PartialSummary
	if err := json.Unmarshal([]byte(body), &out); err != nil {
		start := strings.Index(body, "{")
		end := strings.LastIndex(body, "}")
		if start < 0 || end <= start {
			return PartialSummary{}, fmt.Errorf("parse summary: %w", err)
		}
		if err2 := json.Unmarshal([]byte(body[start:end+1]), &out); err2 != nil {
			return PartialSummary{}, fmt.Errorf("parse summary: %w", err2)
		}
	}

	out.TLDR = strings.TrimSpace(out.TLDR)
	if out.TLDR == "" {
		return PartialSummary{}, errEmptyTLDR
	}
	points := out.BulletPoints[:0]
	for _, p := range out.BulletPoints {
		p = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(p), "•-* "))
		if p != "" {
			points = append(points, p)
		}
	}
	out.BulletPoints = points
	return out, nil
}
