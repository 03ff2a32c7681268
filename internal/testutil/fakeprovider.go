package testutil

import (
	"context"
	"sync"

	"github.com/idilsaglam/authtodo/internal/model"
	"github.com/idilsaglam/authtodo/internal/session"
)

// FakeProvider is an in-memory session.Provider with error injection.
type FakeProvider struct {
	mu      sync.Mutex
	sess    *model.Session
	status  session.Status
	updates []model.Session

	CurrentErr error
	UpdateErr  error

	// Rotate, when set, replaces the access token on every update.
	Rotate string
}

// NewFakeProvider returns a provider holding s (nil for signed out).
func NewFakeProvider(s *model.Session) *FakeProvider {
	f := &FakeProvider{status: session.StatusUnauthenticated}
	if s != nil {
		cp := *s
		f.sess = &cp
		f.status = session.StatusAuthenticated
	}
	return f
}

func (f *FakeProvider) Current(ctx context.Context) (*model.Session, session.Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CurrentErr != nil {
		return nil, session.StatusUnauthenticated, f.CurrentErr
	}
	if f.sess == nil {
		return nil, f.status, nil
	}
	cp := *f.sess
	return &cp, f.status, nil
}

func (f *FakeProvider) Update(ctx context.Context, s model.Session) (*model.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, s)
	if f.UpdateErr != nil {
		return nil, f.UpdateErr
	}
	if f.sess == nil {
		return nil, session.ErrNoSession
	}
	if f.Rotate != "" {
		s.AccessToken = f.Rotate
	}
	cp := s
	f.sess = &cp
	return &s, nil
}

// Updates returns every session passed to Update.
func (f *FakeProvider) Updates() []model.Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Session(nil), f.updates...)
}

var _ session.Provider = (*FakeProvider)(nil)
