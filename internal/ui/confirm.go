package ui

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Confirm shows a warning box and asks the user to type answer. It returns
// true only for an exact match.
func Confirm(in io.Reader, out io.Writer, title string, warnings []string, answer string) bool {
	width := TerminalWidth()

	lines := []string{
		"",
		th.warn.Render(fmt.Sprintf("   %s  WARNING  ─  %s", markWarn, title)),
		"",
	}
	for _, w := range warnings {
		lines = append(lines, th.value.Render("   • "+w))
	}
	lines = append(lines, "")

	box := lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(Caution).
		Width(width-2).
		Padding(0, 2).
		Render(strings.Join(lines, "\n"))
	_, _ = fmt.Fprintln(out, box)
	_, _ = fmt.Fprintln(out)

	_, _ = fmt.Fprint(out, th.warn.Render(fmt.Sprintf("To proceed, type %q and press Enter: ", answer)))

	input, err := bufio.NewReader(in).ReadString('\n')
	_, _ = fmt.Fprintln(out)
	if err != nil && input == "" {
		return false
	}
	if strings.TrimSpace(input) == answer {
		return true
	}

	_, _ = fmt.Fprintln(out, th.muted.Render("  Operation cancelled."))
	return false
}

// ConfirmOverwrite asks before replacing existing files.
func ConfirmOverwrite(in io.Reader, out io.Writer, paths ...string) bool {
	warnings := make([]string, 0, len(paths)+1)
	for _, p := range paths {
		warnings = append(warnings, p+" already exists")
	}
	warnings = append(warnings, "Existing contents will be replaced")
	return Confirm(in, out, "OVERWRITE FILES", warnings, "yes")
}
