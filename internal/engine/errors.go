package engine

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a machine-readable failure category shared by the HTTP and MCP surfaces.
type Code string

const (
	CodeValidation    Code = "VALIDATION"
	CodeForbidden     Code = "FORBIDDEN"
	CodeNotFound      Code = "NOT_FOUND"
	CodeRateLimited   Code = "RATE_LIMITED"
	CodeUpstream      Code = "UPSTREAM"
	CodeBadGateway    Code = "BAD_GATEWAY"
	CodeConfiguration Code = "CONFIGURATION"
	CodeInternal      Code = "INTERNAL"
)

// HTTPStatus maps a code to its response status.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeValidation:
		return http.StatusBadRequest
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeRateLimited:
		return http.StatusTooManyRequests
	case CodeBadGateway:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Coder is implemented by errors that know their own Code.
type Coder interface {
	ErrorCode() Code
	PublicMessage() string
}

// Error is a coded error with a user-safe message and an optional cause.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

func (e *Error) ErrorCode() Code { return e.Code }

func (e *Error) PublicMessage() string { return e.Message }

// Is matches any *Error with the same code and message.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code && e.Message == t.Message
	}
	return false
}

// NewError creates a coded error.
func NewError(code Code, msg string, cause error) *Error {
	return &Error{Code: code, Message: msg, cause: cause}
}

// Validation creates a 400-class error.
func Validation(msg string) *Error { return NewError(CodeValidation, msg, nil) }

var (
	ErrEmptyTranscript = NewError(CodeNotFound, "no captions available for this video", nil)
	ErrNotConfigured   = NewError(CodeConfiguration, "summarization is not configured: missing LLM API key", nil)
)

// SummarizationError reports a failed map-phase call for one chunk.
type SummarizationError struct {
	ChunkIndex int
	Err        error
}

func (e *SummarizationError) Error() string {
	return fmt.Sprintf("summarize chunk %d: %v", e.ChunkIndex, e.Err)
}

func (e *SummarizationError) Unwrap() error { return e.Err }

func (e *SummarizationError) ErrorCode() Code { return CodeUpstream }

func (e *SummarizationError) PublicMessage() string {
	return fmt.Sprintf("failed to summarize transcript section %d", e.ChunkIndex+1)
}

// CodeOf resolves the code and public message carried by err.
// Errors without a code are internal.
func CodeOf(err error) (Code, string) {
	var c Coder
	if errors.As(err, &c) {
		return c.ErrorCode(), c.PublicMessage()
	}
	return CodeInternal, "internal server error"
}
