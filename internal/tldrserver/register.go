// Package tldrserver exposes the transcript and summary pipeline as MCP tools.
package tldrserver

import (
	"context"
	"errors"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_tldr/internal/engine"
)

// Pipeline is the backend the tools call.
type Pipeline interface {
	Transcript(ctx context.Context, rawURL string) (engine.TranscriptResponse, error)
	SummarizeInput(ctx context.Context, in engine.SummarizeInput) (engine.SummaryResponse, error)
}

// RegisterTools registers youtube_transcript and youtube_summarize on the given MCP server.
func RegisterTools(server *mcp.Server, p Pipeline) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "youtube_transcript",
		Description: "Fetch the timed transcript of a YouTube video. Returns caption items with start/duration in seconds and MM:SS timestamps, the joined full text, and character and token counts.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, transcriptHandler(p))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "youtube_summarize",
		Description: "Summarize a YouTube video (by url) or supplied transcript text. Returns a two-sentence TL;DR and key bullet points. style: detailed (default, 10-15 points) or concise (5-7 points).",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, summarizeHandler(p))
}

func transcriptHandler(p Pipeline) mcp.ToolHandlerFor[engine.TranscriptInput, engine.TranscriptResponse] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input engine.TranscriptInput) (*mcp.CallToolResult, engine.TranscriptResponse, error) {
		out, err := p.Transcript(ctx, input.URL)
		if err != nil {
			return nil, engine.TranscriptResponse{}, toolError("youtube_transcript", err)
		}
		return nil, out, nil
	}
}

func summarizeHandler(p Pipeline) mcp.ToolHandlerFor[engine.SummarizeInput, engine.SummaryResponse] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input engine.SummarizeInput) (*mcp.CallToolResult, engine.SummaryResponse, error) {
		out, err := p.SummarizeInput(ctx, input)
		if err != nil {
			return nil, engine.SummaryResponse{}, toolError("youtube_summarize", err)
		}
		return nil, out, nil
	}
}

// toolError logs the full cause and returns only the public message to the client.
func toolError(tool string, err error) error {
	code, msg := engine.CodeOf(err)
	slog.Warn("tool failed", slog.String("tool", tool), slog.String("code", string(code)), slog.Any("error", err))
	return errors.New(msg)
}
