package sources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/anatolykoptev/go_tldr/internal/engine"
)

// Innertube caption strategies.
// player: ANDROID /player → captionTracks → timedtext (works from non-blocked IPs)
// panel:  WEB /next → engagement panel → /get_transcript (works from datacenter IPs)

// PlayerStrategy fetches caption tracks through the ANDROID Innertube /player endpoint.
type PlayerStrategy struct{ yt *YouTube }

func (PlayerStrategy) Name() string { return "player" }

func (s PlayerStrategy) Attempt(ctx context.Context, videoID string) ([]engine.RawSegment, error) {
	data, err := s.yt.postInnerTube(ctx, ytPlayerPath, innertubeReq{
		VideoID: videoID,
		Context: innertubeCtx{
			Client: innertubeClient{
				ClientName:        "ANDROID",
				ClientVersion:     ytAndroidVersion,
				AndroidSdkVersion: 30,
				Hl:                "en",
				Gl:                "US",
			},
		},
		RacyCheckOk:    true,
		ContentCheckOk: true,
	}, androidHeaders())
	if err != nil {
		return nil, httpFailure(err)
	}

	var pr playerResp
	if err := json.Unmarshal(data, &pr); err != nil {
		return nil, fail(KindUnknown, fmt.Errorf("decode player: %w", err))
	}
	tracks, err := pr.captionTracks()
	if err != nil {
		return nil, err
	}
	return s.yt.fetchPreferred(ctx, tracks)
}

// PanelStrategy reads the transcript engagement panel through the WEB Innertube client.
type PanelStrategy struct{ yt *YouTube }

func (PanelStrategy) Name() string { return "panel" }

// getTranscriptRE extracts the continuation token from a raw /next JSON response.
var getTranscriptRE = regexp.MustCompile(`"getTranscriptEndpoint":\{"params":"([^"]+)"`)

var errNoTranscriptPanel = errors.New("getTranscriptEndpoint not found in engagement panels")

func extractTranscriptToken(data []byte) (string, bool) {
	m := getTranscriptRE.FindSubmatch(data)
	if len(m) < 2 {
		return "", false
	}
	// /next returns the params URL-encoded; /get_transcript expects raw base64.
	decoded, err := url.QueryUnescape(string(m[1]))
	if err != nil {
		return string(m[1]), true
	}
	return decoded, true
}

// panelSegments converts /get_transcript segments to raw segments.
func panelSegments(resp getTranscriptResp) []engine.RawSegment {
	var segs []engine.RawSegment
	for _, action := range resp.Actions {
		if action.UpdateEngagementPanelAction == nil {
			continue
		}
		list := action.UpdateEngagementPanelAction.Content.
			TranscriptRenderer.Content.
			TranscriptSearchPanelRenderer.Body.
			TranscriptSegmentListRenderer.InitialSegments
		for _, seg := range list {
			r := seg.TranscriptSegmentRenderer
			if r == nil {
				continue
			}
			var sb strings.Builder
			for _, run := range r.Snippet.Runs {
				sb.WriteString(run.Text)
			}
			text := engine.CollapseSpace(sb.String())
			if text == "" {
				continue
			}
			start, _ := strconv.ParseInt(r.StartMs, 10, 64)
			end, _ := strconv.ParseInt(r.EndMs, 10, 64)
			segs = append(segs, engine.RawSegment{
				Text:           text,
				OffsetMillis:   start,
				DurationMillis: max(end-start, 0),
			})
		}
	}
	return segs
}

func (s PanelStrategy) Attempt(ctx context.Context, videoID string) ([]engine.RawSegment, error) {
	visitorData := generateVisitorData()
	headers := s.yt.webHeaders(visitorData)

	nextData, err := s.yt.postInnerTube(ctx, ytNextPath, map[string]any{
		"videoId": videoID,
		"context": ytWebContext(visitorData),
	}, headers)
	if err != nil {
		return nil, httpFailure(fmt.Errorf("/next: %w", err))
	}

	token, ok := extractTranscriptToken(nextData)
	if !ok {
		return nil, fail(KindNotFound, errNoTranscriptPanel)
	}

	data, err := s.yt.postInnerTube(ctx, ytGetTranscriptPath, map[string]any{
		"params": token,
		"context": map[string]any{
			"client": ytWebClientCtx{
				ClientName:    "WEB",
				ClientVersion: ytWebVersion,
				VisitorData:   visitorData,
				Hl:            "en",
				Gl:            "US",
			},
		},
	}, headers)
	if err != nil {
		return nil, httpFailure(fmt.Errorf("/get_transcript: %w", err))
	}

	var resp getTranscriptResp
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fail(KindUnknown, fmt.Errorf("decode transcript: %w", err))
	}
	segs := panelSegments(resp)
	if len(segs) == 0 {
		return nil, fail(KindNotFound, errors.New("empty transcript segments"))
	}
	return segs, nil
}
