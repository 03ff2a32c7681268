package api

import (
	"errors"
	"fmt"

	"github.com/idilsaglam/authtodo/internal/session"
)

// Kind classifies a failed call so views can tell failures apart.
type Kind int

const (
	KindNone Kind = iota
	// KindTransport: the request never produced a response.
	KindTransport
	// KindStatus: the server answered with a non-2xx status.
	KindStatus
	// KindDecode: a 2xx body could not be parsed.
	KindDecode
	// KindUnauthenticated: no token to send, or the server answered 401/403.
	KindUnauthenticated
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindTransport:
		return "transport"
	case KindStatus:
		return "status"
	case KindDecode:
		return "decode"
	case KindUnauthenticated:
		return "unauthenticated"
	}
	return "unknown"
}

// ErrUnauthenticated matches any *Error of KindUnauthenticated under errors.Is.
var ErrUnauthenticated = errors.New("unauthenticated")

// Error is returned by every Client method on failure.
type Error struct {
	Op         string // list, create, toggle, delete
	Kind       Kind
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: server returned %d", e.Op, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	return target == ErrUnauthenticated && e.Kind == KindUnauthenticated
}

// KindOf returns the Kind of err, or KindNone for nil / foreign errors.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindNone
}

func transportKind(err error) Kind {
	if errors.Is(err, session.ErrNoToken) {
		return KindUnauthenticated
	}
	return KindTransport
}
