package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"

	"github.com/anatolykoptev/go_tldr/internal/engine"
)

// YouTube Innertube API: low-level constants, types, and HTTP primitives.

const (
	ytPlayerPath        = "/youtubei/v1/player"
	ytNextPath          = "/youtubei/v1/next"
	ytGetTranscriptPath = "/youtubei/v1/get_transcript"
	ytWebVersion        = "2.20250222.10.00"
	ytAndroidVersion    = "20.10.38"
	ytAndroidUA         = "com.google.android.youtube/" + ytAndroidVersion + " (Linux; U; Android 11) gzip"

	innertubeMaxBody = 3 << 20
)

// --- ANDROID client types (/player endpoint) ---

type innertubeReq struct {
	VideoID        string       `json:"videoId"`
	Context        innertubeCtx `json:"context"`
	RacyCheckOk    bool         `json:"racyCheckOk"`
	ContentCheckOk bool         `json:"contentCheckOk"`
}

type innertubeCtx struct {
	Client innertubeClient `json:"client"`
}

type innertubeClient struct {
	ClientName        string `json:"clientName"`
	ClientVersion     string `json:"clientVersion"`
	AndroidSdkVersion int    `json:"androidSdkVersion,omitempty"`
	Hl                string `json:"hl,omitempty"`
	Gl                string `json:"gl,omitempty"`
}

type playerResp struct {
	Captions *struct {
		PlayerCaptionsTracklistRenderer struct {
			CaptionTracks []captionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
	PlayabilityStatus *playabilityStatus `json:"playabilityStatus"`
}

type playabilityStatus struct {
	Status                     string `json:"status"`
	Reason                     string `json:"reason"`
	DesktopLegacyAgeGateReason int    `json:"desktopLegacyAgeGateReason"`
}

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"` // "asr" = auto-generated
}

// captionTracks returns the player's caption tracks, or a classified error
// when the video is not playable or carries no captions.
func (p *playerResp) captionTracks() ([]captionTrack, error) {
	if ps := p.PlayabilityStatus; ps != nil && ps.Status != "" && ps.Status != "OK" {
		return nil, fail(classifyPlayability(ps), fmt.Errorf("playability %s: %s", ps.Status, ps.Reason))
	}
	if p.Captions == nil || len(p.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks) == 0 {
		return nil, fail(KindCaptionsDisabled, errNoCaptions)
	}
	return p.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks, nil
}

// --- WEB client types (/next and /get_transcript endpoints) ---

type ytWebClientCtx struct {
	ClientName    string `json:"clientName"`
	ClientVersion string `json:"clientVersion"`
	VisitorData   string `json:"visitorData,omitempty"`
	Hl            string `json:"hl,omitempty"`
	Gl            string `json:"gl,omitempty"`
}

type ytWebUser struct {
	EnableSafetyMode bool `json:"enableSafetyMode"`
}

type ytWebReqCtx struct {
	UseSsl bool `json:"useSsl"`
}

// --- /get_transcript response ---

type transcriptSegment struct {
	TranscriptSegmentRenderer *struct {
		StartMs string `json:"startMs"`
		EndMs   string `json:"endMs"`
		Snippet struct {
			Runs []struct {
				Text string `json:"text"`
			} `json:"runs"`
		} `json:"snippet"`
	} `json:"transcriptSegmentRenderer"`
}

type getTranscriptResp struct {
	Actions []struct {
		UpdateEngagementPanelAction *struct {
			Content struct {
				TranscriptRenderer struct {
					Content struct {
						TranscriptSearchPanelRenderer struct {
							Body struct {
								TranscriptSegmentListRenderer struct {
									InitialSegments []transcriptSegment `json:"initialSegments"`
								} `json:"transcriptSegmentListRenderer"`
							} `json:"body"`
						} `json:"transcriptSearchPanelRenderer"`
					} `json:"content"`
				} `json:"transcriptRenderer"`
			} `json:"content"`
		} `json:"updateEngagementPanelAction"`
	} `json:"actions"`
}

// generateVisitorData creates a random 11-char visitor ID for Innertube requests.
func generateVisitorData() string {
	const chars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"
	b := make([]byte, 11)
	for i := range b {
		b[i] = chars[rand.IntN(len(chars))] //nolint:gosec // non-cryptographic use
	}
	return string(b)
}

// ytWebContext builds the standard WEB client context for Innertube payloads.
func ytWebContext(visitorData string) map[string]any {
	return map[string]any{
		"client": ytWebClientCtx{
			ClientName:    "WEB",
			ClientVersion: ytWebVersion,
			VisitorData:   visitorData,
			Hl:            "en",
			Gl:            "US",
		},
		"user":    ytWebUser{EnableSafetyMode: false},
		"request": ytWebReqCtx{UseSsl: true},
	}
}

func (y *YouTube) webHeaders(visitorData string) http.Header {
	h := http.Header{}
	h.Set("Accept", "*/*")
	h.Set("User-Agent", engine.UserAgentChrome)
	h.Set("X-Youtube-Client-Name", "1")
	h.Set("X-Youtube-Client-Version", ytWebVersion)
	h.Set("X-Goog-Visitor-Id", visitorData)
	h.Set("Origin", y.baseURL)
	h.Set("Referer", y.baseURL+"/")
	return h
}

func androidHeaders() http.Header {
	h := http.Header{}
	h.Set("User-Agent", ytAndroidUA)
	h.Set("X-Youtube-Client-Name", "3")
	h.Set("X-Youtube-Client-Version", ytAndroidVersion)
	return h
}

// postInnerTube POSTs a JSON payload to an Innertube endpoint with retry.
// Non-200 responses surface as *engine.StatusError.
func (y *YouTube) postInnerTube(ctx context.Context, path string, payload any, header http.Header) ([]byte, error) {
	bodyBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	endpoint := y.baseURL + path + "?prettyPrint=false"
	resp, err := engine.RetryHTTP(ctx, y.retry, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bodyBytes))
		if err != nil {
			return nil, err
		}
		for k, v := range header {
			req.Header[k] = v
		}
		req.Header.Set("Content-Type", "application/json")
		return y.client.Do(req)
	})
	if err != nil {
		return nil, fmt.Errorf("innertube %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("innertube %s: %w", path, &engine.StatusError{StatusCode: resp.StatusCode})
	}
	return io.ReadAll(io.LimitReader(resp.Body, innertubeMaxBody))
}
