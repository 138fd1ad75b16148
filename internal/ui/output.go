package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// OutputBox shows raw text, such as a response body, in a muted frame.
type OutputBox struct {
	Title    string
	Content  string
	Width    int
	MaxLines int // 0 = unlimited
}

// NewOutputBox creates a box titled title around content.
func NewOutputBox(title, content string) *OutputBox {
	return &OutputBox{Title: title, Content: content, Width: TerminalWidth()}
}

// SetWidth sets the terminal width for responsive rendering
func (o *OutputBox) SetWidth(width int) *OutputBox {
	o.Width = width
	return o
}

// SetMaxLines limits the number of lines displayed
func (o *OutputBox) SetMaxLines(n int) *OutputBox {
	o.MaxLines = n
	return o
}

// Render returns the styled box. Content beyond MaxLines is replaced by a
// count of the hidden lines.
func (o *OutputBox) Render() string {
	width := o.Width
	if width < minWidth {
		width = minWidth
	}

	lines := strings.Split(strings.TrimRight(o.Content, "\n"), "\n")
	if o.MaxLines > 0 && len(lines) > o.MaxLines {
		hidden := len(lines) - o.MaxLines
		lines = append(lines[:o.MaxLines], th.note.Render(fmt.Sprintf("... %d more lines", hidden)))
	}

	body := lipgloss.JoinVertical(lipgloss.Left,
		th.section.Render(o.Title),
		th.value.Render(strings.Join(lines, "\n")),
	)
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Muted).
		Width(width - 4).
		Padding(0, 1).
		Render(body)
}

// String implements fmt.Stringer
func (o *OutputBox) String() string {
	return o.Render()
}
