package tui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/idilsaglam/authtodo/internal/logging"
	"github.com/idilsaglam/authtodo/internal/model"
	"github.com/idilsaglam/authtodo/internal/session"
	"github.com/idilsaglam/authtodo/internal/store/jsonstore"
	"github.com/idilsaglam/authtodo/internal/testutil"
)

type countingStorage struct {
	*jsonstore.Store
	writes int
}

func (c *countingStorage) Set(key, value string) error {
	c.writes++
	return c.Store.Set(key, value)
}

func newTestPanel(t *testing.T, s *model.Session) (*SessionPanel, *testutil.FakeProvider, *countingStorage, *session.Holder) {
	t.Helper()
	prov := testutil.NewFakeProvider(s)
	store := &countingStorage{Store: jsonstore.New(t.TempDir())}
	holder := session.NewHolder("")
	p := NewSessionPanel(prov, store, holder, logging.Discard())
	t.Cleanup(p.Close)
	return p, prov, store, holder
}

func run(p *SessionPanel, cmd tea.Cmd) {
	for cmd != nil {
		cmd = p.Update(cmd())
	}
}

var ann = &model.Session{User: model.User{Name: "Ann", Email: "ann@example.com"}, AccessToken: "T1"}

func TestSessionPanel_PersistsTokenOnLoad(t *testing.T) {
	p, _, store, holder := newTestPanel(t, ann)
	if p.Status() != session.StatusLoading {
		t.Errorf("expected loading before init, got %v", p.Status())
	}

	run(p, p.Init())

	v, ok, err := store.Get(jsonstore.TokenKey)
	if err != nil || !ok || v != "T1" {
		t.Fatalf("expected token T1 in storage, got %q ok=%v err=%v", v, ok, err)
	}
	if store.writes != 1 {
		t.Errorf("expected exactly one write, got %d", store.writes)
	}
	if tok, err := holder.Token(); err != nil || tok.AccessToken != "T1" {
		t.Errorf("holder not updated: %v %v", tok, err)
	}
	if p.Status() != session.StatusAuthenticated {
		t.Errorf("expected authenticated, got %v", p.Status())
	}
	if p.Draft() != "New Ann" {
		t.Errorf("expected initial draft %q, got %q", "New Ann", p.Draft())
	}
}

func TestSessionPanel_NoSessionWritesNothing(t *testing.T) {
	p, prov, store, _ := newTestPanel(t, nil)
	run(p, p.Init())

	if _, ok, _ := store.Get(jsonstore.TokenKey); ok {
		t.Error("no token should be written without a session")
	}
	if cmd := p.Submit(); cmd != nil {
		t.Error("submit without a session should do nothing")
	}
	if len(prov.Updates()) != 0 {
		t.Errorf("unexpected provider calls %+v", prov.Updates())
	}
}

func TestSessionPanel_SubmitMergesDraftName(t *testing.T) {
	p, prov, _, _ := newTestPanel(t, ann)
	run(p, p.Init())

	p.SetDraft("New Ann")
	run(p, p.Submit())

	updates := prov.Updates()
	if len(updates) != 1 {
		t.Fatalf("expected one provider call, got %d", len(updates))
	}
	want := *ann
	want.User.Name = "New Ann"
	if updates[0] != want {
		t.Errorf("expected %+v, got %+v", want, updates[0])
	}
	if p.Session().User.Name != "New Ann" {
		t.Errorf("panel did not adopt updated session: %+v", p.Session())
	}
	if ann.User.Name != "Ann" {
		t.Error("original session must not be mutated")
	}
}

func TestSessionPanel_EnterSubmits(t *testing.T) {
	p, prov, _, _ := newTestPanel(t, ann)
	run(p, p.Init())
	p.Focus()

	run(p, p.Update(tea.KeyMsg{Type: tea.KeyEnter}))

	if u := prov.Updates(); len(u) != 1 || u[0].User.Name != "New Ann" {
		t.Errorf("expected one update with default draft, got %+v", u)
	}
}

func TestSessionPanel_RotatedTokenIsRePersisted(t *testing.T) {
	p, prov, store, holder := newTestPanel(t, ann)
	run(p, p.Init())

	prov.Rotate = "T2"
	run(p, p.Submit())

	if v, _, _ := store.Get(jsonstore.TokenKey); v != "T2" {
		t.Errorf("expected rotated token T2 in storage, got %q", v)
	}
	if tok, _ := holder.Token(); tok.AccessToken != "T2" {
		t.Errorf("expected holder token T2, got %q", tok.AccessToken)
	}

	// same token again: no extra write
	writes := store.writes
	run(p, p.Submit())
	if store.writes != writes {
		t.Errorf("unchanged token should not be rewritten (%d -> %d)", writes, store.writes)
	}
}

func TestSessionPanel_UpdateFailureIsSurfaced(t *testing.T) {
	p, prov, _, _ := newTestPanel(t, ann)
	run(p, p.Init())
	prov.UpdateErr = errors.New("provider down")

	p.SetDraft("Other")
	run(p, p.Submit())

	if p.Err() == nil || p.Err().Error() != "provider down" {
		t.Errorf("expected surfaced error, got %v", p.Err())
	}
	if p.Session().User.Name != "Ann" {
		t.Errorf("session should be unchanged, got %+v", p.Session())
	}
	if p.Draft() != "Other" {
		t.Errorf("draft should be kept, got %q", p.Draft())
	}
}

func TestSessionPanel_LoadFailure(t *testing.T) {
	p, prov, _, _ := newTestPanel(t, ann)
	prov.CurrentErr = errors.New("boom")
	run(p, p.Init())

	if p.Err() == nil || p.Session() != nil {
		t.Errorf("expected load error and no session, got %v %+v", p.Err(), p.Session())
	}
}

func TestSessionPanel_ResultAfterCloseIsDropped(t *testing.T) {
	p, _, _, _ := newTestPanel(t, ann)
	run(p, p.Init())

	cmd := p.Submit()
	msg := cmd()
	p.Close()
	p.Update(msg)

	if p.Session().User.Name != "Ann" {
		t.Errorf("closed panel adopted a late result: %+v", p.Session())
	}
}
