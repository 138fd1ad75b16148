package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// onceModel shows its content for a single frame and quits.
type onceModel struct {
	content string
}

func (m onceModel) Init() tea.Cmd                       { return tea.Quit }
func (m onceModel) Update(tea.Msg) (tea.Model, tea.Cmd) { return m, nil }
func (m onceModel) View() string                        { return m.content }

// RenderOnce prints content through Bubble Tea so it shares the terminal
// handling of the interactive screens. Output that is not a terminal is
// written directly.
func RenderOnce(content string) error {
	if !IsTerminal() {
		_, err := fmt.Fprintln(os.Stdout, content)
		return err
	}
	_, err := tea.NewProgram(onceModel{content: content}, tea.WithOutput(os.Stdout), tea.WithInput(nil)).Run()
	return err
}

// Printer writes rendered components to a writer at a fixed width.
type Printer struct {
	out   io.Writer
	width int
}

// NewPrinter returns a Printer for w, or for stdout when w is nil.
func NewPrinter(w io.Writer) *Printer {
	if w == nil {
		w = os.Stdout
	}
	return &Printer{out: w, width: TerminalWidth()}
}

func (p *Printer) line(s string) {
	_, _ = fmt.Fprintln(p.out, s)
}

// Newline writes an empty line.
func (p *Printer) Newline() { p.line("") }

func (p *Printer) PrintHeader(h *Header) {
	p.line(h.SetWidth(p.width).Render())
	p.Newline()
}

func (p *Printer) PrintResult(r *Result) {
	p.line(r.SetWidth(p.width).Render())
}

func (p *Printer) PrintSuccess(title string, details ...Param) {
	p.PrintResult(NewSuccessResult(title, details...))
}

// PrintTable prints rows under a bold column header. Columns are padded to
// their widest cell.
func (p *Printer) PrintTable(columns []string, rows [][]string) {
	p.line(RenderTable(columns, rows))
}

// RenderTable renders a plain aligned table.
func RenderTable(columns []string, rows [][]string) string {
	widths := make([]int, len(columns))
	for i, c := range columns {
		widths[i] = lipgloss.Width(c)
	}
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			widths[i] = max(widths[i], lipgloss.Width(row[i]))
		}
	}

	line := func(cells []string, style lipgloss.Style) string {
		parts := make([]string, len(widths))
		for i := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			parts[i] = style.Render(cell + strings.Repeat(" ", widths[i]-lipgloss.Width(cell)))
		}
		return "  " + strings.TrimRight(strings.Join(parts, "  "), " ")
	}

	out := []string{line(columns, th.section)}
	for _, row := range rows {
		out = append(out, line(row, th.value))
	}
	return strings.Join(out, "\n")
}
