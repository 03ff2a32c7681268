// Package cli dispatches authtodo subcommands. Every command works against
// the remote to-do API with the current session's token.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/idilsaglam/authtodo/internal/api"
	"github.com/idilsaglam/authtodo/internal/config"
	"github.com/idilsaglam/authtodo/internal/exitcode"
	"github.com/idilsaglam/authtodo/internal/session"
	"github.com/idilsaglam/authtodo/internal/store/jsonstore"
	"github.com/idilsaglam/authtodo/internal/tui"
	"github.com/idilsaglam/authtodo/internal/ui"
)

// Options tune output behavior from root flags.
type Options struct {
	Group bool // ls grouped by pending/done
}

// Env carries everything a command touches outside its arguments.
type Env struct {
	Config *config.Config
	Log    logrus.FieldLogger

	In       io.Reader
	Out, Err io.Writer

	// HTTPClient overrides the API transport (tests).
	HTTPClient *http.Client

	// RunUI starts the interactive client. Defaults to tui.Run.
	RunUI func(ctx context.Context, app tui.App) error
}

type runner struct {
	env Env
	opt Options
	p   *ui.Printer
	in  *bufio.Scanner

	files    *session.FileProvider
	supabase *session.SupabaseProvider
	provider session.Provider
	store    *jsonstore.Store
	holder   *session.Holder
	client   *api.Client
}

func newRunner(env Env, opt Options, th ui.Theme) *runner {
	cfg := env.Config
	if env.Log == nil {
		env.Log = logrus.StandardLogger()
	}
	if env.In == nil {
		env.In = strings.NewReader("")
	}
	r := &runner{
		env:    env,
		opt:    opt,
		p:      ui.NewPrinter(env.Out, env.Err, th),
		in:     bufio.NewScanner(env.In),
		files:  session.NewFileProvider(cfg.SessionPath()),
		store:  jsonstore.New(cfg.Dir),
		holder: session.NewHolder(cfg.Token),
	}
	r.provider = r.files
	if cfg.AuthProvider == config.ProviderSupabase {
		r.supabase = session.NewSupabaseProvider(cfg.SupabaseURL, cfg.SupabaseKey, r.files, env.Log)
		r.provider = r.supabase
	}

	opts := []api.Option{api.WithTimeout(cfg.HTTPTimeout), api.WithLogger(env.Log)}
	if env.HTTPClient != nil {
		opts = append(opts, api.WithHTTPClient(env.HTTPClient))
	}
	r.client = api.New(cfg.APIURL, r.holder, opts...)
	return r
}

// Run dispatches a subcommand and returns its exit code. No arguments
// starts the interactive client.
func Run(ctx context.Context, args []string, env Env, opt Options) int {
	th, err := ui.LookupTheme(env.Config.Theme)
	if err != nil {
		fmt.Fprintln(env.Err, "error:", err)
		return exitcode.UserError
	}
	r := newRunner(env, opt, th)

	if len(args) == 0 {
		return r.doUI(ctx)
	}
	cmd, a := args[0], args[1:]

	switch cmd {
	case "help", "-h", "--help":
		PrintHelp(env.Out)
		return exitcode.Success

	case "ui":
		return r.doUI(ctx)

	case "ls":
		return r.doList(ctx, a)

	case "add":
		title := strings.Join(a, " ")
		if strings.TrimSpace(title) == "" {
			r.p.Fail("usage: authtodo add <title...>")
			return exitcode.UserError
		}
		return r.doAdd(ctx, title)

	case "done":
		if len(a) != 1 {
			r.p.Fail("usage: authtodo done <id>")
			return exitcode.UserError
		}
		return r.doToggle(ctx, a[0])

	case "rm":
		if len(a) != 1 {
			r.p.Fail("usage: authtodo rm <id>")
			return exitcode.UserError
		}
		return r.doRemove(ctx, a[0])

	case "session":
		if len(a) == 0 {
			return r.doSessionShow(ctx)
		}
		switch a[0] {
		case "show":
			return r.doSessionShow(ctx)
		case "rename":
			name := strings.TrimSpace(strings.Join(a[1:], " "))
			if name == "" {
				r.p.Fail("usage: authtodo session rename <name...>")
				return exitcode.UserError
			}
			return r.doSessionRename(ctx, name)
		}
		r.p.Fail("usage: authtodo session <show|rename>")
		return exitcode.UserError

	case "auth":
		if len(a) == 0 {
			r.p.Fail("usage: authtodo auth <login|logout|status|whoami>")
			return exitcode.UserError
		}
		switch a[0] {
		case "login":
			return r.doAuthLogin(ctx, a[1:])
		case "logout":
			return r.doAuthLogout()
		case "status":
			return r.doAuthStatus(ctx)
		case "whoami":
			return r.doAuthWhoAmI()
		}
		r.p.Fail("usage: authtodo auth <login|logout|status|whoami>")
		return exitcode.UserError
	}

	r.p.Fail("unknown subcommand: " + cmd)
	fmt.Fprintln(env.Err)
	PrintHelp(env.Err)
	return exitcode.UserError
}

func PrintHelp(w io.Writer) {
	fmt.Fprint(w, `authtodo - a to-do client for an authenticated REST API

Usage:
  authtodo [flags] <subcommand> [args]

Subcommands:
  ui                     Interactive client (default)
  ls [--group]           List todos
  add <title...>         Create a todo (title can be multiple words)
  done <id>              Toggle completion of a todo
  rm <id>                Delete a todo
  session show           Show the current session
  session rename <name>  Change the signed-in user's name
  auth login [token]     Sign in (token paste, or email/password with Supabase)
  auth logout            Forget the stored session
  auth status            Show where the token comes from and when it expires
  auth whoami            Print the token's claims

Flags:
  --group                ls: group by pending/done
  --env <file>           load environment from file (default .env)
  --theme <name>         classic, neon or mono

Environment:
  AUTHTODO_API_URL, AUTHTODO_TOKEN, AUTHTODO_AUTH_PROVIDER,
  AUTHTODO_CONFIG_DIR, AUTHTODO_THEME, AUTHTODO_LOG_LEVEL

Examples:
  authtodo add "Buy milk"
  authtodo ls --group
  authtodo done 2
`)
}

// failErr reports err and maps it to an exit code.
func (r *runner) failErr(what string, err error) int {
	r.p.Fail(what + ": " + err.Error())
	switch {
	case errors.Is(err, session.ErrNoSession), errors.Is(err, session.ErrNoToken):
		r.p.Hint("Hint: run `authtodo auth login`")
		return exitcode.AuthError
	}
	switch api.KindOf(err) {
	case api.KindUnauthenticated:
		r.p.Hint("Hint: run `authtodo auth login`")
		return exitcode.AuthError
	case api.KindTransport, api.KindStatus, api.KindDecode:
		return exitcode.BackendError
	}
	return exitcode.UserError
}
