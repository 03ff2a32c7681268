package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/idilsaglam/authtodo/internal/model"
)

// FileProvider keeps the session in a JSON file (mode 0600). It is the
// provider used when no hosted auth service is configured, and the token
// cache behind SupabaseProvider.
type FileProvider struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

// NewFileProvider returns a provider backed by path.
func NewFileProvider(path string) *FileProvider {
	return &FileProvider{path: path, now: time.Now}
}

// Current reads the stored session. Missing or expired sessions are
// reported as unauthenticated without error.
func (p *FileProvider) Current(ctx context.Context) (*model.Session, Status, error) {
	if err := ctx.Err(); err != nil {
		return nil, StatusLoading, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	s, err := p.load()
	if err != nil {
		return nil, StatusUnauthenticated, err
	}
	if s == nil {
		return nil, StatusUnauthenticated, nil
	}
	if !s.Expires.IsZero() && !s.Expires.After(p.now()) {
		return nil, StatusUnauthenticated, nil
	}
	return s, StatusAuthenticated, nil
}

// Update replaces the stored session. There must already be one.
func (p *FileProvider) Update(ctx context.Context, s model.Session) (*model.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	cur, err := p.load()
	if err != nil {
		return nil, err
	}
	if cur == nil {
		return nil, ErrNoSession
	}
	if err := p.save(s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Save stores s unconditionally (login).
func (p *FileProvider) Save(s model.Session) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.save(s)
}

// Clear removes the stored session (logout). Missing files are fine.
func (p *FileProvider) Clear() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := os.Remove(p.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove: %w", err)
	}
	return nil
}

// Stored returns the raw stored session, ignoring expiry.
func (p *FileProvider) Stored() (*model.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.load()
}

func (p *FileProvider) load() (*model.Session, error) {
	b, err := os.ReadFile(p.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read session: %w", err)
	}
	var s model.Session
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("parse session: %w", err)
	}
	return &s, nil
}

func (p *FileProvider) save(s model.Session) error {
	if err := os.MkdirAll(filepath.Dir(p.path), 0o700); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := os.WriteFile(p.path, b, 0o600); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}
