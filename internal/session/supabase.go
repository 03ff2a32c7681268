package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/supabase-community/gotrue-go"
	"github.com/supabase-community/gotrue-go/types"

	"github.com/idilsaglam/authtodo/internal/model"
)

// userAPI is the part of a token-scoped GoTrue client we call.
type userAPI interface {
	GetUser() (*types.UserResponse, error)
	UpdateUser(req types.UpdateUserRequest) (*types.UpdateUserResponse, error)
}

// tokenAPI is the part of the anonymous GoTrue client we call.
type tokenAPI interface {
	SignInWithEmailPassword(email, password string) (*types.TokenResponse, error)
	RefreshToken(refreshToken string) (*types.TokenResponse, error)
}

// SupabaseProvider talks to a Supabase GoTrue server. Tokens are cached in
// a FileProvider; the user name lives in user_metadata.name.
type SupabaseProvider struct {
	files  *FileProvider
	tokens tokenAPI
	forTok func(token string) userAPI
	log    logrus.FieldLogger
}

// NewSupabaseProvider builds a provider for the project at baseURL
// (e.g. https://xyz.supabase.co) using the anon key.
func NewSupabaseProvider(baseURL, apiKey string, files *FileProvider, log logrus.FieldLogger) *SupabaseProvider {
	client := gotrue.New("", apiKey).WithCustomGoTrueURL(strings.TrimRight(baseURL, "/") + "/auth/v1")
	return &SupabaseProvider{
		files:  files,
		tokens: client,
		forTok: func(token string) userAPI { return client.WithToken(token) },
		log:    log,
	}
}

// SignIn exchanges email/password for a session and stores it.
func (p *SupabaseProvider) SignIn(ctx context.Context, email, password string) (*model.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	resp, err := p.tokens.SignInWithEmailPassword(email, password)
	if err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}
	s := sessionFromToken(resp)
	if err := p.files.Save(s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Current validates the cached token against GoTrue, refreshing it once if
// the server rejects it.
func (p *SupabaseProvider) Current(ctx context.Context) (*model.Session, Status, error) {
	if err := ctx.Err(); err != nil {
		return nil, StatusLoading, err
	}
	stored, err := p.files.Stored()
	if err != nil {
		return nil, StatusUnauthenticated, err
	}
	if stored == nil {
		return nil, StatusUnauthenticated, nil
	}

	user, err := p.forTok(stored.AccessToken).GetUser()
	if err != nil {
		if stored.RefreshToken == "" {
			return nil, StatusUnauthenticated, nil
		}
		p.log.WithError(err).Debug("access token rejected, refreshing")
		resp, rerr := p.tokens.RefreshToken(stored.RefreshToken)
		if rerr != nil {
			p.log.WithError(rerr).Warn("session refresh failed")
			return nil, StatusUnauthenticated, nil
		}
		refreshed := sessionFromToken(resp)
		if err := p.files.Save(refreshed); err != nil {
			return nil, StatusUnauthenticated, err
		}
		stored = &refreshed
		if user, err = p.forTok(stored.AccessToken).GetUser(); err != nil {
			return nil, StatusUnauthenticated, fmt.Errorf("get user: %w", err)
		}
	}

	s := *stored
	s.User = userFrom(user.User)
	return &s, StatusAuthenticated, nil
}

// Update writes the user name to user_metadata and returns the session as
// the server now sees it.
func (p *SupabaseProvider) Update(ctx context.Context, s model.Session) (*model.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.AccessToken == "" {
		return nil, ErrNoSession
	}
	resp, err := p.forTok(s.AccessToken).UpdateUser(types.UpdateUserRequest{
		Data: map[string]interface{}{"name": s.User.Name},
	})
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	s.User = userFrom(resp.User)
	if err := p.files.Save(s); err != nil {
		return nil, err
	}
	return &s, nil
}

func sessionFromToken(resp *types.TokenResponse) model.Session {
	s := model.Session{
		User:         userFrom(resp.User),
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
	}
	if resp.ExpiresIn > 0 {
		s.Expires = time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second)
	}
	return s
}

func userFrom(u types.User) model.User {
	out := model.User{Email: u.Email}
	if name, ok := u.UserMetadata["name"].(string); ok {
		out.Name = name
	}
	if img, ok := u.UserMetadata["avatar_url"].(string); ok {
		out.Image = img
	}
	if out.Name == "" {
		out.Name = u.Email
	}
	return out
}
