package api

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnauthorized = errors.New("api: unauthorized")
	ErrValidation   = errors.New("api: validation failed")
	ErrNotFound     = errors.New("api: not found")
	ErrConflict     = errors.New("api: conflict")
	ErrServer       = errors.New("api: server error")
	ErrNetwork      = errors.New("api: network failure")
)

// Error describes a request that failed. Match the kind with errors.Is.
type Error struct {
	Method     string
	Path       string
	StatusCode int
	// Message is the server's own explanation, when it sent one.
	Message string
	kind    error
	cause   error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.cause != nil {
		msg = e.cause.Error()
	}
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s %s: %v: %s", e.Method, e.Path, e.kind, msg)
	}
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("%s %s: %d: %s", e.Method, e.Path, e.StatusCode, msg)
}

func (e *Error) Unwrap() []error {
	if e.cause == nil {
		return []error{e.kind}
	}
	return []error{e.kind, e.cause}
}

func kindForStatus(code int) error {
	switch {
	case code == http.StatusUnauthorized:
		return ErrUnauthorized
	case code == http.StatusBadRequest, code == http.StatusUnprocessableEntity:
		return ErrValidation
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusConflict:
		return ErrConflict
	default:
		return ErrServer
	}
}

// IsUnauthorized reports whether err means the session is no longer accepted.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// Message returns the server-provided message carried by err, or "".
func Message(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}
