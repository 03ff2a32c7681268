package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/idilsaglam/authtodo/internal/auth"
	"github.com/idilsaglam/authtodo/internal/model"
	"github.com/idilsaglam/authtodo/internal/session"
	"github.com/idilsaglam/authtodo/internal/store/jsonstore"
)

// TokenStorage is the client-local storage the panel writes the token to.
type TokenStorage interface {
	Set(key, value string) error
}

type sessionLoadedMsg struct {
	sess   *model.Session
	status session.Status
	err    error
}

type sessionUpdatedMsg struct {
	sess *model.Session
	err  error
}

// SessionPanel shows the current session and a form to rename the user.
type SessionPanel struct {
	provider session.Provider
	storage  TokenStorage
	holder   *session.Holder
	log      logrus.FieldLogger
	ctx      context.Context
	cancel   context.CancelFunc

	status    session.Status
	sess      *model.Session
	input     textinput.Model
	persisted string // last token written to storage
	err       error
	closed    bool
}

// NewSessionPanel wires the panel to its provider. holder receives every
// session the panel sees, so request tokens follow the session.
func NewSessionPanel(p session.Provider, storage TokenStorage, holder *session.Holder, log logrus.FieldLogger) *SessionPanel {
	ctx, cancel := context.WithCancel(context.Background())
	ti := textinput.New()
	ti.Prompt = "Name: "
	ti.Placeholder = "New name"
	ti.CharLimit = 120
	return &SessionPanel{
		provider: p,
		storage:  storage,
		holder:   holder,
		log:      log,
		ctx:      ctx,
		cancel:   cancel,
		status:   session.StatusLoading,
		input:    ti,
	}
}

// Init loads the current session.
func (p *SessionPanel) Init() tea.Cmd {
	ctx, provider := p.ctx, p.provider
	return func() tea.Msg {
		s, st, err := provider.Current(ctx)
		return sessionLoadedMsg{sess: s, status: st, err: err}
	}
}

// Session returns the session shown, or nil.
func (p *SessionPanel) Session() *model.Session { return p.sess }

// Status returns the provider status.
func (p *SessionPanel) Status() session.Status { return p.status }

// Draft returns the name being composed.
func (p *SessionPanel) Draft() string { return p.input.Value() }

// SetDraft replaces the draft name.
func (p *SessionPanel) SetDraft(s string) { p.input.SetValue(s) }

// Err returns the last load or update failure.
func (p *SessionPanel) Err() error { return p.err }

func (p *SessionPanel) Focus() tea.Cmd { return p.input.Focus() }
func (p *SessionPanel) Blur()          { p.input.Blur() }

// Close abandons an in-flight update.
func (p *SessionPanel) Close() {
	p.closed = true
	p.cancel()
}

// Submit asks the provider for the current session with the draft name.
// Without a session it does nothing.
func (p *SessionPanel) Submit() tea.Cmd {
	if p.sess == nil || p.closed {
		return nil
	}
	next := p.sess.WithName(p.input.Value())
	ctx, provider := p.ctx, p.provider
	return func() tea.Msg {
		s, err := provider.Update(ctx, next)
		return sessionUpdatedMsg{sess: s, err: err}
	}
}

func (p *SessionPanel) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case sessionLoadedMsg:
		p.status = msg.status
		p.err = msg.err
		p.adopt(msg.sess)
		if p.sess != nil {
			p.input.SetValue("New " + p.sess.User.Name)
			p.input.CursorEnd()
		}
		return nil

	case sessionUpdatedMsg:
		if p.closed {
			return nil
		}
		if msg.err != nil {
			p.err = msg.err
			p.log.WithError(msg.err).Warn("session update failed")
			return nil
		}
		p.err = nil
		p.adopt(msg.sess)
		p.log.WithField("name", msg.sess.User.Name).Debug("session updated")
		return nil

	case tea.KeyMsg:
		if msg.String() == "enter" {
			return p.Submit()
		}
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return cmd
}

// adopt makes s the current session, shares it with the holder, and writes
// its token to storage when it differs from the last one written.
func (p *SessionPanel) adopt(s *model.Session) {
	p.sess = s
	p.holder.Set(s)
	if s == nil {
		return
	}
	if s.AccessToken == "" || s.AccessToken == p.persisted {
		return
	}
	if err := p.storage.Set(jsonstore.TokenKey, s.AccessToken); err != nil {
		p.err = fmt.Errorf("persist token: %w", err)
		p.log.WithError(err).Warn("persist token failed")
		return
	}
	p.persisted = s.AccessToken
}

func (p *SessionPanel) View(focused bool) string {
	var b strings.Builder
	b.WriteString(headingStyle.Render("Session") + "\n")

	switch {
	case p.status == session.StatusLoading:
		b.WriteString(mutedStyle.Render("Loading..."))
	case p.sess == nil:
		b.WriteString(mutedStyle.Render("Not signed in. Run: authtodo auth login"))
	default:
		s := p.sess
		b.WriteString(fmt.Sprintf("%s %s\n", mutedStyle.Render("name: "), Clean(s.User.Name)))
		if s.User.Email != "" {
			b.WriteString(fmt.Sprintf("%s %s\n", mutedStyle.Render("email:"), s.User.Email))
		}
		if !s.Expires.IsZero() {
			b.WriteString(fmt.Sprintf("%s %s\n", mutedStyle.Render("until:"), s.Expires.Local().Format("2006-01-02 15:04")))
		}
		b.WriteString(fmt.Sprintf("%s %s\n", mutedStyle.Render("token:"), auth.Preview(s.AccessToken)))
		b.WriteString("\n" + titleStyle.Render("Updating the session") + "\n")
		b.WriteString(p.input.View())
	}
	if p.err != nil {
		b.WriteString("\n" + errorStyle.Render(p.err.Error()))
	}
	return box(focused).Render(b.String())
}
