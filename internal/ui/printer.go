// Package ui renders non-interactive command output: status lines, framed
// panels and progress bars, styled by a Theme.
package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Printer writes themed output. Color support is detected per writer, so
// pipes and buffers get plain text.
type Printer struct {
	out, err io.Writer
	theme    Theme
	r        *lipgloss.Renderer
}

func NewPrinter(out, errOut io.Writer, t Theme) *Printer {
	return &Printer{out: out, err: errOut, theme: t, r: lipgloss.NewRenderer(out)}
}

// Theme returns the active theme.
func (p *Printer) Theme() Theme { return p.theme }

// Paint colors s with color, one of the theme's palette entries.
func (p *Printer) Paint(color, s string) string {
	if color == "" {
		return s
	}
	return p.r.NewStyle().Foreground(lipgloss.Color(color)).Render(s)
}

// Bold renders s in the title color, bold.
func (p *Printer) Bold(s string) string {
	st := p.r.NewStyle().Bold(true)
	if p.theme.Title != "" {
		st = st.Foreground(lipgloss.Color(p.theme.Title))
	}
	return st.Render(s)
}

func (p *Printer) Println(a ...any) { fmt.Fprintln(p.out, a...) }

func (p *Printer) Printf(format string, a ...any) { fmt.Fprintf(p.out, format, a...) }

// OK reports success on stdout.
func (p *Printer) OK(msg string) {
	fmt.Fprintln(p.out, p.Paint(p.theme.Success, p.theme.SymDone+" "+msg))
}

// Fail reports an error on stderr.
func (p *Printer) Fail(msg string) {
	fmt.Fprintln(p.err, p.Paint(p.theme.Error, "✖ "+msg))
}

// Hint prints a muted line on stderr, after a Fail.
func (p *Printer) Hint(msg string) {
	fmt.Fprintln(p.err, p.Paint(p.theme.Muted, msg))
}
