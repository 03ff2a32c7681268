// Package tui is the interactive client: a session panel above a todo list,
// both driven by one Bubble Tea program.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type focus int

const (
	focusTodos focus = iota
	focusSession
)

var (
	quitKey   = key.NewBinding(key.WithKeys("ctrl+c"))
	switchKey = key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "switch panel"))
)

// App is the root model. The todo list is mounted once the session has
// finished loading.
type App struct {
	panel   *SessionPanel
	todos   *TodoList
	focus   focus
	mounted bool
	width   int
	height  int
}

func NewApp(panel *SessionPanel, todos *TodoList) App {
	return App{panel: panel, todos: todos, focus: focusTodos}
}

func (m App) Init() tea.Cmd { return m.panel.Init() }

func (m App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case sessionLoadedMsg:
		cmd := m.panel.Update(msg)
		if !m.mounted {
			m.mounted = true
			return m, tea.Batch(cmd, m.todos.FetchAll())
		}
		return m, cmd

	case sessionUpdatedMsg:
		return m, m.panel.Update(msg)

	case itemsFetchedMsg, itemMutatedMsg:
		return m, m.todos.Update(msg)

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		// session panel takes ~10 rows, borders and header the rest
		m.todos.Update(tea.WindowSizeMsg{Width: msg.Width - 4, Height: max(msg.Height-18, 3)})
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, quitKey) {
			return m.quit()
		}
		if key.Matches(msg, switchKey) {
			return m.switchFocus()
		}
		if m.focus == focusSession {
			if msg.String() == "esc" {
				return m.switchFocus()
			}
			return m, m.panel.Update(msg)
		}
		if !m.todos.Editing() && (msg.String() == "q" || msg.String() == "esc") {
			return m.quit()
		}
		return m, m.todos.Update(msg)
	}

	if m.focus == focusSession {
		return m, m.panel.Update(msg)
	}
	return m, m.todos.Update(msg)
}

func (m App) switchFocus() (tea.Model, tea.Cmd) {
	if m.focus == focusTodos {
		m.focus = focusSession
		m.todos.Blur()
		return m, m.panel.Focus()
	}
	m.focus = focusTodos
	m.panel.Blur()
	return m, nil
}

func (m App) quit() (tea.Model, tea.Cmd) {
	m.todos.Close()
	m.panel.Close()
	return m, tea.Quit
}

func (m App) View() string {
	parts := []string{
		titleStyle.Render("authtodo"),
		m.panel.View(m.focus == focusSession),
	}
	if m.mounted {
		parts = append(parts, m.todos.View(m.focus == focusTodos))
	}
	parts = append(parts, helpStyle.Render("tab switch panel • enter submit • q quit"))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// Run starts the program on the alternate screen and blocks until quit or
// ctx is cancelled.
func Run(ctx context.Context, app App) error {
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	app.todos.Close()
	app.panel.Close()
	return err
}
