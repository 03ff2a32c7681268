package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ProgressBar renders done/total as a bar of width cells plus a percentage.
func ProgressBar(done, total, width int) string {
	if width < 5 {
		width = 5
	}
	if total <= 0 {
		return strings.Repeat("░", width) + "   0%"
	}
	done = min(max(done, 0), total)
	filled := done * width / total
	pct := done * 100 / total
	return fmt.Sprintf("%s%s %3d%%", strings.Repeat("█", filled), strings.Repeat("░", width-filled), pct)
}

// Panel frames lines with the theme border. Widths are measured on visible
// cells, so styled lines align.
func (p *Printer) Panel(lines []string) {
	st := p.r.NewStyle().Border(p.theme.Border).Padding(0, 1)
	if p.theme.Muted != "" {
		st = st.BorderForeground(lipgloss.Color(p.theme.Muted))
	}
	fmt.Fprintln(p.out, st.Render(strings.Join(lines, "\n")))
}
