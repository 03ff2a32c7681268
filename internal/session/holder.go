package session

import (
	"sync"

	"golang.org/x/oauth2"

	"github.com/idilsaglam/authtodo/internal/model"
)

// Holder keeps the current session for the whole process. It is an
// oauth2.TokenSource, so HTTP clients read the token per request instead of
// capturing it once.
type Holder struct {
	mu       sync.RWMutex
	sess     *model.Session
	override string
}

// NewHolder returns an empty holder. A non-empty override always wins over
// the session's access token.
func NewHolder(override string) *Holder {
	return &Holder{override: override}
}

// Set replaces the held session. nil clears it.
func (h *Holder) Set(s *model.Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if s == nil {
		h.sess = nil
		return
	}
	cp := *s
	h.sess = &cp
}

// Get returns a copy of the held session, or nil.
func (h *Holder) Get() *model.Session {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.sess == nil {
		return nil
	}
	cp := *h.sess
	return &cp
}

// Token implements oauth2.TokenSource.
func (h *Holder) Token() (*oauth2.Token, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.override != "" {
		return &oauth2.Token{AccessToken: h.override, TokenType: "Bearer"}, nil
	}
	if h.sess == nil || h.sess.AccessToken == "" {
		return nil, ErrNoToken
	}
	return &oauth2.Token{
		AccessToken: h.sess.AccessToken,
		TokenType:   "Bearer",
		Expiry:      h.sess.Expires,
	}, nil
}

var _ oauth2.TokenSource = (*Holder)(nil)
