// Package session is the boundary to the authentication provider: the
// Provider contract, its implementations, and the in-process Holder that
// derives request tokens from the current session.
package session

import (
	"context"
	"errors"

	"github.com/idilsaglam/authtodo/internal/model"
)

var (
	// ErrNoSession is returned when an update is requested without a session.
	ErrNoSession = errors.New("no active session")

	// ErrNoToken is returned by Holder.Token when there is nothing to send.
	ErrNoToken = errors.New("no access token (run: authtodo auth login)")
)

// Status mirrors the provider's view of the session lifecycle.
type Status int

const (
	StatusLoading Status = iota
	StatusAuthenticated
	StatusUnauthenticated
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusAuthenticated:
		return "authenticated"
	case StatusUnauthenticated:
		return "unauthenticated"
	}
	return "unknown"
}

// Provider is the external auth provider contract.
type Provider interface {
	// Current returns the session, or nil with StatusUnauthenticated.
	Current(ctx context.Context) (*model.Session, Status, error)

	// Update asks the provider to replace the session and returns what
	// the provider now holds.
	Update(ctx context.Context, s model.Session) (*model.Session, error)
}
