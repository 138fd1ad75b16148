package ui

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

const (
	minWidth = 60
	maxWidth = 100

	fallbackHeight = 24
)

// Palette used by every webli screen. The status colors follow the HTTP
// status classes.
var (
	Accent  = lipgloss.Color("#7D56F4")
	OK      = lipgloss.Color("#43BF6D")
	Fail    = lipgloss.Color("#FF5555")
	Caution = lipgloss.Color("#FFA500")
	Info    = lipgloss.Color("#5FAFFF")
	Muted   = lipgloss.Color("#626262")
	Text    = lipgloss.Color("#FFFFFF")
)

// Markers prefix step lines and result titles.
const (
	markDone    = "✓"
	markActive  = "●"
	markPending = "·"
	markSkipped = "⊘"
	markFail    = "✗"
	markWarn    = "⚠"
)

type theme struct {
	title    lipgloss.Style
	command  lipgloss.Style
	key      lipgloss.Style // header keys, no fixed width
	label    lipgloss.Style // result keys, fixed width
	value    lipgloss.Style
	muted    lipgloss.Style
	note     lipgloss.Style
	section  lipgloss.Style
	active   lipgloss.Style
	okText   lipgloss.Style
	okTitle  lipgloss.Style
	failText lipgloss.Style
	fail     lipgloss.Style
	warn     lipgloss.Style
	method   lipgloss.Style
}

var th = newTheme()

func newTheme() theme {
	fg := func(c lipgloss.Color) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(c)
	}
	return theme{
		title:    fg(Text).Bold(true).PaddingLeft(2),
		command:  fg(Muted).PaddingLeft(2),
		key:      fg(Muted).PaddingLeft(2),
		label:    fg(Muted).Width(18),
		value:    fg(Text),
		muted:    fg(Muted),
		note:     fg(Muted).Italic(true),
		section:  fg(Muted).Bold(true),
		active:   fg(Caution),
		okText:   fg(OK),
		okTitle:  fg(OK).Bold(true),
		failText: fg(Fail),
		fail:     fg(Fail).Bold(true),
		warn:     fg(Caution).Bold(true),
		method:   fg(Accent).Bold(true).Width(8),
	}
}

// StatusStyle colors an HTTP status code by class.
func StatusStyle(code int) lipgloss.Style {
	c := Info
	switch {
	case code >= 500:
		c = Fail
	case code >= 400:
		c = Caution
	case code >= 200 && code < 300:
		c = OK
	}
	return lipgloss.NewStyle().Bold(true).Foreground(c)
}

// TerminalWidth returns the stdout width limited to the range webli lays
// out for.
func TerminalWidth() int {
	w, _ := terminalSize()
	return w
}

func terminalSize() (int, int) {
	w, h, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return minWidth, fallbackHeight
	}
	return fitWidth(w), h
}

func fitWidth(w int) int {
	return min(max(w, minWidth), maxWidth)
}

// IsTerminal reports whether stdout is attached to a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func divider(width int) string {
	return lipgloss.NewStyle().Foreground(Accent).Render(strings.Repeat("─", max(width, 1)))
}
