package engine

import (
	"errors"
	"net/http"
)

// StatusError reports an unsuccessful HTTP status.
type StatusError struct {
	StatusCode int
	Err        error // retry layer error, if any
}

func (e *StatusError) Error() string {
	msg := "HTTP " + http.StatusText(e.StatusCode)
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *StatusError) Unwrap() error { return e.Err }

// StatusCodeOf returns the HTTP status carried by err, or 0.
func StatusCodeOf(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}
