package errors

import (
	stderrors "errors"
	"fmt"
)

var (
	ErrWorkerPanic      = fmt.Errorf("worker panic")
	ErrNotMember        = fmt.Errorf("identity is not in the allow-list")
	ErrInvalidUsername  = fmt.Errorf("invalid username")
	ErrLoginRejected    = fmt.Errorf("login rejected")
	ErrDisconnected     = fmt.Errorf("transport disconnected")
	ErrSinkFull         = fmt.Errorf("session sink is full")
	ErrUnknownEvent     = fmt.Errorf("unknown event")
	ErrMalformedPayload = fmt.Errorf("malformed event payload")
	ErrMalformedHistory = fmt.Errorf("malformed message history")
	ErrRelayStopped     = fmt.Errorf("relay is stopped")
)

// Is and As forward to the standard library so callers only import this package.
func Is(err, target error) bool { return stderrors.Is(err, target) }

func As(err error, target any) bool { return stderrors.As(err, target) }
