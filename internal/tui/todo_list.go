package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/idilsaglam/authtodo/internal/api"
	"github.com/idilsaglam/authtodo/internal/model"
)

// TodoAPI is the remote collection as the list sees it.
type TodoAPI interface {
	List(ctx context.Context) ([]model.Item, error)
	Create(ctx context.Context, title string) error
	SetCompleted(ctx context.Context, id model.ItemID, completed bool) error
	Delete(ctx context.Context, id model.ItemID) error
}

var errEmptyTitle = errors.New("title cannot be empty")

// itemsFetchedMsg carries a fetch-all result. seq orders fetches so a late
// response never replaces a newer one.
type itemsFetchedMsg struct {
	seq   uint64
	items []model.Item
	err   error
}

// itemMutatedMsg carries the result of create, toggle or delete.
type itemMutatedMsg struct {
	op  string
	err error
}

var (
	addKey     = key.NewBinding(key.WithKeys("a", "i"), key.WithHelp("a", "add"))
	toggleKey  = key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "toggle"))
	deleteKey  = key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete"))
	refreshKey = key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh"))
)

// TodoList mirrors the remote collection. items is only ever replaced by a
// fetch-all response; mutations never touch it directly.
type TodoList struct {
	api    TodoAPI
	log    logrus.FieldLogger
	ctx    context.Context
	cancel context.CancelFunc

	items []model.Item
	list  list.Model
	input textinput.Model

	issued  uint64 // last fetch sequence handed out
	applied uint64 // sequence of the response currently shown
	loaded  bool

	err    error
	closed bool
}

// NewTodoList builds the list. Call Close when the view goes away; results
// arriving afterwards are dropped.
func NewTodoList(client TodoAPI, log logrus.FieldLogger) *TodoList {
	ctx, cancel := context.WithCancel(context.Background())

	l := list.New(nil, itemDelegate{}, 0, 0)
	l.Title = "Todo List"
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle
	l.Styles.HelpStyle = helpStyle
	l.Styles.PaginationStyle = helpStyle
	l.FilterInput.Prompt = "/ "
	l.SetStatusBarItemName("todo", "todos")
	l.SetShowTitle(false)
	extra := func() []key.Binding { return []key.Binding{addKey, toggleKey, deleteKey, refreshKey} }
	l.AdditionalShortHelpKeys = extra
	l.AdditionalFullHelpKeys = extra

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "New todo..."
	ti.CharLimit = 200

	return &TodoList{
		api:    client,
		log:    log,
		ctx:    ctx,
		cancel: cancel,
		list:   l,
		input:  ti,
	}
}

// Items returns a copy of the items currently shown.
func (t *TodoList) Items() []model.Item {
	return append([]model.Item(nil), t.items...)
}

// Draft returns the title being composed.
func (t *TodoList) Draft() string { return t.input.Value() }

// SetDraft replaces the draft title.
func (t *TodoList) SetDraft(s string) { t.input.SetValue(s) }

// Err returns the last failure, cleared by the next successful fetch.
func (t *TodoList) Err() error { return t.err }

// Editing reports whether the draft input has focus.
func (t *TodoList) Editing() bool { return t.input.Focused() }

// Close abandons in-flight work.
func (t *TodoList) Close() {
	t.closed = true
	t.cancel()
}

// FetchAll reloads the collection.
func (t *TodoList) FetchAll() tea.Cmd {
	if t.closed {
		return nil
	}
	t.issued++
	seq, ctx, client := t.issued, t.ctx, t.api
	return func() tea.Msg {
		items, err := client.List(ctx)
		return itemsFetchedMsg{seq: seq, items: items, err: err}
	}
}

// Create posts a new item. Blank titles issue nothing.
func (t *TodoList) Create(title string) tea.Cmd {
	if strings.TrimSpace(title) == "" {
		return nil
	}
	client := t.api
	return t.mutate("create", func(ctx context.Context) error {
		return client.Create(ctx, title)
	})
}

// Toggle flips the completed flag of id, given its current value.
func (t *TodoList) Toggle(id model.ItemID, completed bool) tea.Cmd {
	client := t.api
	return t.mutate("toggle", func(ctx context.Context) error {
		return client.SetCompleted(ctx, id, !completed)
	})
}

// Delete removes id.
func (t *TodoList) Delete(id model.ItemID) tea.Cmd {
	client := t.api
	return t.mutate("delete", func(ctx context.Context) error {
		return client.Delete(ctx, id)
	})
}

func (t *TodoList) mutate(op string, fn func(context.Context) error) tea.Cmd {
	if t.closed {
		return nil
	}
	ctx := t.ctx
	return func() tea.Msg {
		return itemMutatedMsg{op: op, err: fn(ctx)}
	}
}

// Update handles list messages and keys. It is only called while the list
// has focus for key input.
func (t *TodoList) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case itemsFetchedMsg:
		return t.applyFetch(msg)

	case itemMutatedMsg:
		if t.closed {
			return nil
		}
		if msg.err != nil {
			t.fail(msg.op, msg.err)
			return nil
		}
		if msg.op == "create" {
			t.input.SetValue("")
		}
		return t.FetchAll()

	case tea.WindowSizeMsg:
		t.list.SetSize(msg.Width, msg.Height)
		return nil

	case tea.KeyMsg:
		if t.input.Focused() {
			return t.updateInput(msg)
		}
		if t.list.FilterState() == list.Filtering {
			break
		}
		switch {
		case key.Matches(msg, addKey):
			t.err = nil
			return t.input.Focus()
		case key.Matches(msg, toggleKey):
			if it, ok := t.selected(); ok {
				return t.Toggle(it.ID, it.Completed)
			}
			return nil
		case key.Matches(msg, deleteKey):
			if it, ok := t.selected(); ok {
				return t.Delete(it.ID)
			}
			return nil
		case key.Matches(msg, refreshKey):
			return t.FetchAll()
		}
	}

	var cmd tea.Cmd
	t.list, cmd = t.list.Update(msg)
	return cmd
}

func (t *TodoList) updateInput(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		cmd := t.Create(t.input.Value())
		if cmd == nil {
			t.err = errEmptyTitle
		}
		return cmd
	case "esc":
		t.input.Blur()
		return nil
	}
	var cmd tea.Cmd
	t.input, cmd = t.input.Update(msg)
	return cmd
}

func (t *TodoList) applyFetch(msg itemsFetchedMsg) tea.Cmd {
	if t.closed {
		return nil
	}
	if msg.seq <= t.applied {
		t.log.WithField("seq", msg.seq).Debug("dropping stale fetch")
		return nil
	}
	if msg.err != nil {
		t.fail("list", msg.err)
		return nil
	}
	t.applied = msg.seq
	t.loaded = true
	t.err = nil
	t.items = msg.items
	return t.list.SetItems(toListItems(msg.items))
}

func (t *TodoList) fail(op string, err error) {
	t.err = err
	t.log.WithFields(logrus.Fields{"op": op, "kind": api.KindOf(err).String()}).WithError(err).Warn("todo operation failed")
}

func (t *TodoList) selected() (model.Item, bool) {
	it, ok := t.list.SelectedItem().(listItem)
	if !ok {
		return model.Item{}, false
	}
	return it.Item, true
}

// Blur drops input focus (panel switch).
func (t *TodoList) Blur() { t.input.Blur() }

func (t *TodoList) View(focused bool) string {
	done, pending := model.Stats(t.items)
	header := fmt.Sprintf("%s   %s %d  %s %d  %s %d",
		headingStyle.Render("Todo List"),
		successStyle.Render("✔"), done,
		pendingStyle.Render("•"), pending,
		accentStyle.Render("Total"), len(t.items),
	)

	var b strings.Builder
	b.WriteString(header + "\n")
	b.WriteString(t.input.View() + "\n")
	if t.err != nil {
		b.WriteString(errorStyle.Render(errorText(t.err)) + "\n")
	}
	switch {
	case !t.loaded && t.err == nil:
		b.WriteString(mutedStyle.Render("Loading todos..."))
	case len(t.items) == 0:
		b.WriteString(mutedStyle.Render("Nothing to do. Press a to add a todo."))
	default:
		b.WriteString(t.list.View())
	}
	return box(focused).Render(b.String())
}

// errorText phrases an error for the status line by kind.
func errorText(err error) string {
	if errors.Is(err, errEmptyTitle) {
		return "Title cannot be empty"
	}
	switch api.KindOf(err) {
	case api.KindUnauthenticated:
		return "Not authorized: sign in again (authtodo auth login)"
	case api.KindTransport:
		return "Network error: " + err.Error()
	case api.KindStatus:
		return "Server error: " + err.Error()
	case api.KindDecode:
		return "Unexpected response: " + err.Error()
	}
	return err.Error()
}
