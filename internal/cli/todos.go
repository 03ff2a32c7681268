package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/idilsaglam/authtodo/internal/exitcode"
	"github.com/idilsaglam/authtodo/internal/model"
	"github.com/idilsaglam/authtodo/internal/session"
	"github.com/idilsaglam/authtodo/internal/store/jsonstore"
	"github.com/idilsaglam/authtodo/internal/tui"
	"github.com/idilsaglam/authtodo/internal/ui"
)

// load resolves the current session, hands it to the holder and persists
// its token when it changed. AUTHTODO_TOKEN alone is enough to proceed.
func (r *runner) load(ctx context.Context) (*model.Session, error) {
	s, _, err := r.provider.Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	r.holder.Set(s)
	if s != nil && s.AccessToken != "" {
		prev, _, err := r.store.Get(jsonstore.TokenKey)
		if err != nil {
			r.env.Log.WithError(err).Warn("read stored token failed")
		} else if prev != s.AccessToken {
			r.persist(s.AccessToken)
		}
	}
	if s == nil && r.env.Config.Token == "" {
		return nil, session.ErrNoSession
	}
	return s, nil
}

func (r *runner) doUI(ctx context.Context) int {
	run := r.env.RunUI
	if run == nil {
		run = tui.Run
	}
	panel := tui.NewSessionPanel(r.provider, r.store, r.holder, r.env.Log)
	todos := tui.NewTodoList(r.client, r.env.Log)
	if err := run(ctx, tui.NewApp(panel, todos)); err != nil {
		r.p.Fail("ui: " + err.Error())
		return exitcode.UserError
	}
	return exitcode.Success
}

func (r *runner) doList(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("ls", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	group := fs.Bool("group", r.opt.Group, "")
	if err := fs.Parse(args); err != nil || fs.NArg() > 0 {
		r.p.Fail("usage: authtodo ls [--group]")
		return exitcode.UserError
	}

	if _, err := r.load(ctx); err != nil {
		return r.failErr("ls", err)
	}
	items, err := r.client.List(ctx)
	if err != nil {
		return r.failErr("ls", err)
	}

	th := r.p.Theme()
	d, p := model.Stats(items)
	header := fmt.Sprintf("%s  %s %d  %s %d  %s %d",
		r.p.Bold("Todos"),
		r.p.Paint(th.Success, th.SymDone), d,
		r.p.Paint(th.Pending, th.SymPending), p,
		r.p.Paint(th.Accent, "Total"), len(items),
	)

	lines := []string{
		header,
		r.p.Paint(th.Muted, ui.ProgressBar(d, d+p, 28)),
		"",
	}
	if *group {
		lines = append(lines, r.groupLines(items)...)
	} else {
		lines = append(lines, r.flatLines(items)...)
	}
	lines = append(lines, "", r.p.Paint(th.Muted, "Tip: add with `authtodo add \"Buy milk\"`"))
	r.p.Panel(lines)
	return exitcode.Success
}

func (r *runner) doAdd(ctx context.Context, title string) int {
	if _, err := r.load(ctx); err != nil {
		return r.failErr("add", err)
	}
	if err := r.client.Create(ctx, title); err != nil {
		return r.failErr("add", err)
	}
	r.p.OK("added")
	return exitcode.Success
}

func (r *runner) doToggle(ctx context.Context, id string) int {
	if _, err := r.load(ctx); err != nil {
		return r.failErr("done", err)
	}
	items, err := r.client.List(ctx)
	if err != nil {
		return r.failErr("done", err)
	}
	it, ok := find(items, id)
	if !ok {
		return r.unknownID(id)
	}
	if err := r.client.SetCompleted(ctx, it.ID, !it.Completed); err != nil {
		return r.failErr("done", err)
	}
	if it.Completed {
		r.p.OK("marked pending")
	} else {
		r.p.OK("marked done")
	}
	return exitcode.Success
}

func (r *runner) doRemove(ctx context.Context, id string) int {
	if _, err := r.load(ctx); err != nil {
		return r.failErr("rm", err)
	}
	items, err := r.client.List(ctx)
	if err != nil {
		return r.failErr("rm", err)
	}
	it, ok := find(items, id)
	if !ok {
		return r.unknownID(id)
	}
	if err := r.client.Delete(ctx, it.ID); err != nil {
		return r.failErr("rm", err)
	}
	r.p.OK("removed")
	return exitcode.Success
}

func (r *runner) unknownID(id string) int {
	r.p.Fail("no todo with id " + id)
	r.p.Hint("Hint: run `authtodo ls` to see valid ids")
	return exitcode.UserError
}

func find(items []model.Item, id string) (model.Item, bool) {
	for _, it := range items {
		if it.ID.String() == id {
			return it, true
		}
	}
	return model.Item{}, false
}

func (r *runner) flatLines(items []model.Item) []string {
	th := r.p.Theme()
	if len(items) == 0 {
		return []string{r.p.Paint(th.Muted, "no items")}
	}
	width := 0
	for _, it := range items {
		width = max(width, len(it.ID.String()))
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		box, color := th.BoxUnchecked, th.Muted
		if it.Completed {
			box, color = th.BoxChecked, th.Success
		}
		out = append(out, fmt.Sprintf("%s %s %s",
			r.p.Paint(th.Muted, fmt.Sprintf("%*s.", width, it.ID)),
			r.p.Paint(color, box),
			truncate(tui.Clean(it.Title), 80)))
	}
	return out
}

func (r *runner) groupLines(items []model.Item) []string {
	var pend, done []model.Item
	for _, it := range items {
		if it.Completed {
			done = append(done, it)
		} else {
			pend = append(pend, it)
		}
	}
	th := r.p.Theme()
	section := func(title string, items []model.Item) []string {
		lines := []string{r.p.Paint(th.Accent, title)}
		if len(items) == 0 {
			return append(lines, r.p.Paint(th.Muted, "(none)"))
		}
		return append(lines, r.flatLines(items)...)
	}
	lines := section("Pending", pend)
	lines = append(lines, "")
	return append(lines, section("Done", done)...)
}

func truncate(s string, n int) string {
	rs := []rune(s)
	if len(rs) <= n {
		return s
	}
	return strings.TrimSpace(string(rs[:n-3])) + "..."
}
