package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/idilsaglam/authtodo/internal/model"
)

// listItem adapts model.Item to bubbles/list.Item.
type listItem struct {
	model.Item
}

func (i listItem) Title() string       { return Clean(i.Item.Title) }
func (i listItem) Description() string { return "" }
func (i listItem) FilterValue() string { return i.Item.Title }

func toListItems(items []model.Item) []list.Item {
	out := make([]list.Item, 0, len(items))
	for _, it := range items {
		out = append(out, listItem{Item: it})
	}
	return out
}

// itemDelegate renders one item per line: box, title, status.
type itemDelegate struct{}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(listItem)
	if !ok {
		return
	}

	boxStyled := mutedStyle.Render(boxUnchecked)
	text := it.Title()
	status := pendingStyle.Render("Pending")
	if it.Completed {
		boxStyled = successStyle.Render(boxChecked)
		text = doneStyle.Render(text)
		status = successStyle.Render("Completed")
	}

	prefix := "  "
	if index == m.Index() {
		prefix = selectedStyle.Render("> ")
	}
	fmt.Fprintf(w, "%s%s %s  %s", prefix, boxStyled, text, status)
}
