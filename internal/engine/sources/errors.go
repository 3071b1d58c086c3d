package sources

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/anatolykoptev/go_tldr/internal/engine"
)

// Kind classifies why captions could not be acquired.
type Kind int

const (
	KindUnknown Kind = iota
	KindDownloadFailed
	KindNotFound
	KindCaptionsDisabled
	KindRateLimited
	KindAgeRestricted
	KindVideoUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindDownloadFailed:
		return "DownloadFailed"
	case KindNotFound:
		return "NotFound"
	case KindCaptionsDisabled:
		return "CaptionsDisabled"
	case KindRateLimited:
		return "RateLimited"
	case KindAgeRestricted:
		return "AgeRestricted"
	case KindVideoUnavailable:
		return "VideoUnavailable"
	default:
		return "Unknown"
	}
}

// rank orders kinds by specificity when the chain picks the error to surface.
func (k Kind) rank() int {
	switch k {
	case KindVideoUnavailable, KindAgeRestricted:
		return 4
	case KindRateLimited:
		return 3
	case KindCaptionsDisabled, KindNotFound:
		return 2
	case KindDownloadFailed:
		return 1
	default:
		return 0
	}
}

// Code maps a kind to the engine error code.
func (k Kind) Code() engine.Code {
	switch k {
	case KindCaptionsDisabled, KindNotFound:
		return engine.CodeNotFound
	case KindVideoUnavailable, KindAgeRestricted:
		return engine.CodeForbidden
	case KindRateLimited:
		return engine.CodeRateLimited
	case KindDownloadFailed:
		return engine.CodeBadGateway
	default:
		return engine.CodeInternal
	}
}

// AcquisitionError reports a failed caption acquisition.
type AcquisitionError struct {
	Kind     Kind
	Strategy string
	VideoID  string
	Err      error
}

func (e *AcquisitionError) Error() string {
	return fmt.Sprintf("youtube %s [%s]: %s: %v", e.VideoID, e.Strategy, e.Kind, e.Err)
}

func (e *AcquisitionError) Unwrap() error { return e.Err }

func (e *AcquisitionError) ErrorCode() engine.Code { return e.Kind.Code() }

func (e *AcquisitionError) PublicMessage() string {
	switch e.Kind {
	case KindCaptionsDisabled:
		return "captions are disabled for this video"
	case KindNotFound:
		return "no captions available for this video"
	case KindVideoUnavailable:
		return "video is unavailable or private"
	case KindAgeRestricted:
		return "video is age-restricted"
	case KindRateLimited:
		return "rate limited by YouTube, try again later"
	case KindDownloadFailed:
		return "failed to download captions"
	default:
		return "failed to fetch transcript"
	}
}

// fail wraps err with a kind. The chain fills in strategy and video ID.
func fail(kind Kind, err error) *AcquisitionError {
	return &AcquisitionError{Kind: kind, Err: err}
}

// httpFailure classifies a transport or status error from a YouTube request.
func httpFailure(err error) *AcquisitionError {
	switch engine.StatusCodeOf(err) {
	case http.StatusTooManyRequests:
		return fail(KindRateLimited, err)
	case http.StatusNotFound, http.StatusGone:
		return fail(KindNotFound, err)
	case 0:
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return fail(KindUnknown, err)
		}
	}
	return fail(KindDownloadFailed, err)
}

// asAcquisition normalizes any strategy error into an *AcquisitionError.
func asAcquisition(err error, strategy, videoID string) *AcquisitionError {
	var ae *AcquisitionError
	if errors.As(err, &ae) {
		out := *ae
		if out.Strategy == "" {
			out.Strategy = strategy
		}
		if out.VideoID == "" {
			out.VideoID = videoID
		}
		return &out
	}
	kind := KindUnknown
	if engine.StatusCodeOf(err) == http.StatusTooManyRequests {
		kind = KindRateLimited
	}
	return &AcquisitionError{Kind: kind, Strategy: strategy, VideoID: videoID, Err: err}
}

// classifyPlayability maps a non-OK Innertube playabilityStatus to a kind.
func classifyPlayability(ps *playabilityStatus) Kind {
	switch ps.Status {
	case "OK":
		return KindCaptionsDisabled
	case "AGE_CHECK_REQUIRED", "AGE_VERIFICATION_REQUIRED", "CONTENT_CHECK_REQUIRED":
		return KindAgeRestricted
	case "LOGIN_REQUIRED":
		// Also returned for bot checks and private videos; only the age gate is structured.
		if ps.DesktopLegacyAgeGateReason > 0 {
			return KindAgeRestricted
		}
		return KindUnknown
	case "UNPLAYABLE", "ERROR":
		return KindVideoUnavailable
	default:
		return KindUnknown
	}
}
