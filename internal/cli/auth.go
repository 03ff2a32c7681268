package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/idilsaglam/authtodo/internal/auth"
	"github.com/idilsaglam/authtodo/internal/exitcode"
	"github.com/idilsaglam/authtodo/internal/model"
	"github.com/idilsaglam/authtodo/internal/session"
	"github.com/idilsaglam/authtodo/internal/store/jsonstore"
)

// prompt writes label and reads one line from stdin.
func (r *runner) prompt(label string) (string, error) {
	r.p.Printf("%s", label)
	if !r.in.Scan() {
		if err := r.in.Err(); err != nil {
			return "", err
		}
		return "", errors.New("no input")
	}
	return strings.TrimSpace(r.in.Text()), nil
}

func (r *runner) doAuthLogin(ctx context.Context, args []string) int {
	if r.supabase != nil {
		return r.loginSupabase(ctx)
	}

	var token string
	if len(args) > 0 {
		token = args[0]
	} else {
		var err error
		if token, err = r.prompt("Paste your token: "); err != nil {
			r.p.Fail("read token: " + err.Error())
			return exitcode.UserError
		}
	}
	token = auth.StripBearer(token)
	if token == "" {
		r.p.Fail("login: empty token")
		return exitcode.UserError
	}

	s := model.Session{
		User: model.User{
			Name:  auth.DisplayName(token),
			Email: auth.Email(token),
		},
		AccessToken: token,
		Expires:     auth.Expiry(token),
	}
	if err := r.files.Save(s); err != nil {
		r.p.Fail("save session: " + err.Error())
		return exitcode.UserError
	}
	r.persist(s.AccessToken)
	r.p.OK("logged in" + as(s.User.Name))
	return exitcode.Success
}

func (r *runner) loginSupabase(ctx context.Context) int {
	email, err := r.prompt("Email: ")
	if err != nil {
		r.p.Fail("read email: " + err.Error())
		return exitcode.UserError
	}
	password, err := r.prompt("Password: ")
	if err != nil {
		r.p.Fail("read password: " + err.Error())
		return exitcode.UserError
	}
	s, err := r.supabase.SignIn(ctx, email, password)
	if err != nil {
		r.p.Fail("login: " + err.Error())
		return exitcode.AuthError
	}
	r.persist(s.AccessToken)
	r.p.OK("logged in" + as(s.User.Name))
	return exitcode.Success
}

func as(name string) string {
	if name == "" {
		return ""
	}
	return " as " + name
}

func (r *runner) persist(token string) {
	if err := r.store.Set(jsonstore.TokenKey, token); err != nil {
		r.env.Log.WithError(err).Warn("persist token failed")
	}
}

func (r *runner) doAuthLogout() int {
	if err := r.files.Clear(); err != nil {
		r.p.Fail("logout: " + err.Error())
		return exitcode.UserError
	}
	if err := r.store.Delete(jsonstore.TokenKey); err != nil {
		r.p.Fail("logout: " + err.Error())
		return exitcode.UserError
	}
	r.p.OK("logged out")
	if r.env.Config.Token != "" {
		r.p.Hint("AUTHTODO_TOKEN is still set and will be used")
	}
	return exitcode.Success
}

func (r *runner) doAuthStatus(ctx context.Context) int {
	cfg := r.env.Config
	r.p.Printf("provider: %s\n", cfg.AuthProvider)
	if cfg.Token != "" {
		r.p.Printf("source:   env (AUTHTODO_TOKEN)\n")
		r.p.Printf("expires:  %s\n", formatExpiry(auth.Expiry(cfg.Token)))
		return exitcode.Success
	}

	s, st, err := r.provider.Current(ctx)
	if err != nil {
		return r.failErr("status", err)
	}
	r.p.Printf("status:   %s\n", st)
	if s == nil {
		r.p.Println(r.p.Paint(r.p.Theme().Muted, "not logged in"))
		r.p.Println("Run: authtodo auth login")
		return exitcode.Success
	}
	r.p.Printf("source:   %s\n", cfg.SessionPath())
	r.p.Printf("expires:  %s\n", formatExpiry(s.Expires))
	return exitcode.Success
}

func formatExpiry(t time.Time) string {
	if t.IsZero() {
		return "(unknown)"
	}
	return t.UTC().Format(time.RFC3339)
}

// doAuthWhoAmI decodes the token locally. The signature is not checked.
func (r *runner) doAuthWhoAmI() int {
	token := r.env.Config.Token
	if token == "" {
		s, err := r.files.Stored()
		if err != nil {
			return r.failErr("whoami", err)
		}
		if s != nil {
			token = s.AccessToken
		}
	}
	if token == "" {
		r.p.Fail("not logged in. Run: authtodo auth login")
		return exitcode.AuthError
	}

	claims, err := auth.PrettyClaims(token)
	if errors.Is(err, auth.ErrOpaqueToken) {
		r.p.Println("Opaque token (cannot introspect locally).")
		r.p.Println("token:", auth.Preview(token))
		return exitcode.Success
	}
	if err != nil {
		return r.failErr("whoami", err)
	}
	r.p.Println("JWT payload:")
	r.p.Println(claims)
	return exitcode.Success
}

func (r *runner) doSessionShow(ctx context.Context) int {
	s, err := r.load(ctx)
	if err != nil {
		return r.failErr("session", err)
	}
	if s == nil {
		r.p.Println("Using AUTHTODO_TOKEN; no session is stored.")
		return exitcode.Success
	}
	th := r.p.Theme()
	row := func(k, v string) { r.p.Printf("%s %s\n", r.p.Paint(th.Muted, fmt.Sprintf("%-6s", k+":")), v) }
	row("name", s.User.Name)
	if s.User.Email != "" {
		row("email", s.User.Email)
	}
	if !s.Expires.IsZero() {
		row("until", s.Expires.Local().Format("2006-01-02 15:04"))
	}
	row("token", auth.Preview(s.AccessToken))
	return exitcode.Success
}

func (r *runner) doSessionRename(ctx context.Context, name string) int {
	s, err := r.load(ctx)
	if err != nil {
		return r.failErr("rename", err)
	}
	if s == nil {
		return r.failErr("rename", session.ErrNoSession)
	}
	updated, err := r.provider.Update(ctx, s.WithName(name))
	if err != nil {
		return r.failErr("rename", err)
	}
	r.holder.Set(updated)
	if updated.AccessToken != s.AccessToken {
		r.persist(updated.AccessToken)
	}
	r.p.OK("renamed to " + updated.User.Name)
	return exitcode.Success
}
