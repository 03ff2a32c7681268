package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme bundles palette, symbols and the panel border. Colors are ANSI
// color numbers as lipgloss understands them; empty means uncolored.
type Theme struct {
	Name string

	Title, Muted, Accent, Success, Error, Pending string

	BoxUnchecked, BoxChecked string
	SymDone, SymPending      string

	Border lipgloss.Border
}

var asciiBorder = lipgloss.Border{
	Top: "-", Bottom: "-", Left: "|", Right: "|",
	TopLeft: "+", TopRight: "+", BottomLeft: "+", BottomRight: "+",
}

var themes = map[string]Theme{
	"classic": {
		Name:  "classic",
		Title: "15", Muted: "8", Accent: "4",
		Success: "2", Error: "1", Pending: "3",
		BoxUnchecked: "☐", BoxChecked: "☑",
		SymDone: "✔", SymPending: "•",
		Border: lipgloss.NormalBorder(),
	},
	"neon": {
		Name:  "neon",
		Title: "13", Muted: "8", Accent: "14",
		Success: "10", Error: "9", Pending: "11",
		BoxUnchecked: "◻", BoxChecked: "◼",
		SymDone: "✔", SymPending: "•",
		Border: lipgloss.RoundedBorder(),
	},
	"mono": {
		Name:         "mono",
		BoxUnchecked: "[ ]", BoxChecked: "[x]",
		SymDone: "x", SymPending: "-",
		Border: asciiBorder,
	},
}

// ThemeNames lists the known themes, sorted.
func ThemeNames() []string {
	names := make([]string, 0, len(themes))
	for n := range themes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// LookupTheme returns the named theme. Empty selects classic.
func LookupTheme(name string) (Theme, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = "classic"
	}
	t, ok := themes[name]
	if !ok {
		return Theme{}, fmt.Errorf("unknown theme %q (want one of %s)", name, strings.Join(ThemeNames(), ", "))
	}
	return t, nil
}
