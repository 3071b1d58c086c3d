package engine

import (
	"context"
	"net/http"

	stealth "github.com/anatolykoptev/go-stealth"
)

// Re-export stealth retry primitives for engine consumers.
type RetryConfig = stealth.RetryConfig

var DefaultRetryConfig = stealth.DefaultRetryConfig

func IsRetryableStatus(code int) bool { return stealth.IsRetryableStatus(code) }

func RetryDo[T any](ctx context.Context, rc RetryConfig, fn func() (T, error)) (T, error) {
	return stealth.RetryDo(ctx, rc, fn)
}

// BrowserHeaders returns Chrome-like request headers with a rotating user agent,
// used when fetching public watch pages.
func BrowserHeaders() map[string]string {
	h := stealth.ChromeHeaders()
	h["user-agent"] = stealth.RandomUserAgent()
	h["accept-language"] = "en-US,en;q=0.9"
	// net/http only decodes gzip transparently when it set Accept-Encoding itself.
	delete(h, "accept-encoding")
	return h
}

// RetryHTTP executes an HTTP request function with stealth's retry policy.
// When a retryable status persists past the last attempt, the returned error
// carries it as *StatusError.
func RetryHTTP(ctx context.Context, rc RetryConfig, fn func() (*http.Response, error)) (*http.Response, error) {
	last := 0
	resp, err := stealth.RetryHTTP(ctx, rc, func() (*http.Response, error) {
		resp, err := fn()
		last = 0
		if err == nil && resp != nil {
			last = resp.StatusCode
		}
		return resp, err
	})
	if err != nil && ctx.Err() == nil && IsRetryableStatus(last) && StatusCodeOf(err) == 0 {
		return nil, &StatusError{StatusCode: last, Err: err}
	}
	return resp, err
}
