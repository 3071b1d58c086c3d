package sources

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/anatolykoptev/go_tldr/internal/engine"
)

// videoPathPrefixes carry the ID as the next path segment on youtube.com.
var videoPathPrefixes = []string{"/shorts/", "/embed/", "/live/", "/v/"}

var videoIDRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

var errInvalidURL = engine.Validation("invalid YouTube URL")

// ExtractVideoID returns the video ID from a youtube.com or youtu.be URL.
// A missing scheme is tolerated.
func ExtractVideoID(rawURL string) (string, error) {
	s := strings.TrimSpace(rawURL)
	if s == "" {
		return "", engine.Validation("url is required")
	}
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		u, err = url.Parse("https://" + s)
		if err != nil {
			return "", errInvalidURL
		}
	}

	var id string
	host := strings.ToLower(u.Hostname())
	switch {
	case host == "youtu.be" || host == "www.youtu.be":
		id, _, _ = strings.Cut(strings.TrimPrefix(u.Path, "/"), "/")
	case host == "youtube.com" || strings.HasSuffix(host, ".youtube.com"):
		id = u.Query().Get("v")
		if id == "" {
			id = idFromPath(u.Path)
		}
	default:
		return "", errInvalidURL
	}

	if !videoIDRe.MatchString(id) {
		return "", errInvalidURL
	}
	return id, nil
}

func idFromPath(path string) string {
	for _, prefix := range videoPathPrefixes {
		if rest, ok := strings.CutPrefix(path, prefix); ok {
			id, _, _ := strings.Cut(rest, "/")
			return id
		}
	}
	return ""
}
