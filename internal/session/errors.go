package session

import (
	"fmt"

	"github.com/sandeepkv93/taskboard/internal/api"
)

const (
	loginFallback    = "Login failed"
	registerFallback = "Registration failed"
)

// ErrNoSession is returned by Token when nobody is logged in. The API
// transport then sends the request without credentials.
var ErrNoSession = fmt.Errorf("session: not logged in: %w", api.ErrNoToken)

// Error is a login or registration failure. Message is safe to show the user.
type Error struct {
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func authError(op, fallback string, err error) *Error {
	msg := api.Message(err)
	if msg == "" {
		msg = fallback
	}
	return &Error{Op: op, Message: msg, Err: err}
}
