package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// StepStatus represents the current state of a step
type StepStatus int

const (
	StepPending StepStatus = iota
	StepRunning
	StepComplete
	StepFailed
	StepSkipped
)

var stepStatusNames = [...]string{"pending", "running", "complete", "failed", "skipped"}

func (s StepStatus) String() string {
	if s < 0 || int(s) >= len(stepStatusNames) {
		return stepStatusNames[StepPending]
	}
	return stepStatusNames[s]
}

// look returns the marker and style a step line uses for s.
func (s StepStatus) look() (string, lipgloss.Style) {
	switch s {
	case StepComplete:
		return markDone, th.okText
	case StepRunning:
		return markActive, th.active
	case StepFailed:
		return markFail, th.fail
	case StepSkipped:
		return markSkipped, th.muted
	}
	return markPending, th.muted
}

// Step is one line of a multi-step operation.
type Step struct {
	Number  int // 1-based
	Name    string
	Status  StepStatus
	Message string // e.g., "TLS 1.3", "1,234 bytes"
}

// Progress tracks a fixed list of steps and renders them with a bar.
type Progress struct {
	Label     string
	Steps     []Step
	Current   int
	Total     int
	Percent   float64
	Width     int
	ShowBar   bool
	ShowSteps bool
	bar       progress.Model
}

// NewProgress creates a progress display with totalSteps pending steps.
func NewProgress(label string, totalSteps int) *Progress {
	steps := make([]Step, totalSteps)
	for i := range steps {
		steps[i] = Step{Number: i + 1, Status: StepPending}
	}

	p := &Progress{
		Label:     label,
		Steps:     steps,
		Total:     totalSteps,
		ShowBar:   true,
		ShowSteps: true,
	}
	return p.SetWidth(TerminalWidth())
}

// SetWidth sets the terminal width and resizes the bar to fit.
func (p *Progress) SetWidth(width int) *Progress {
	p.Width = width
	barWidth := min(max(width-20, 20), 50)
	p.bar = progress.New(
		progress.WithDefaultGradient(),
		progress.WithWidth(barWidth),
	)
	return p
}

// SetStepNames names the steps in order. Extra names are dropped.
func (p *Progress) SetStepNames(names []string) *Progress {
	for i := range min(len(names), len(p.Steps)) {
		p.Steps[i].Name = names[i]
	}
	return p
}

// UpdateStep updates a step and recomputes the completed fraction.
// Out of range step numbers are ignored.
func (p *Progress) UpdateStep(stepNumber int, status StepStatus, message string) {
	if stepNumber < 1 || stepNumber > len(p.Steps) {
		return
	}
	step := &p.Steps[stepNumber-1]
	step.Status = status
	step.Message = message

	if status == StepRunning {
		p.Current = stepNumber
		return
	}

	if p.Total == 0 {
		return
	}
	finished := 0
	for _, st := range p.Steps {
		switch st.Status {
		case StepComplete, StepSkipped:
			finished++
		}
	}
	p.Percent = float64(finished) / float64(p.Total)
}

func (p *Progress) StartStep(n int, message string)    { p.UpdateStep(n, StepRunning, message) }
func (p *Progress) CompleteStep(n int, message string) { p.UpdateStep(n, StepComplete, message) }
func (p *Progress) FailStep(n int, message string)     { p.UpdateStep(n, StepFailed, message) }
func (p *Progress) SkipStep(n int, message string)     { p.UpdateStep(n, StepSkipped, message) }

// Render draws the label, the bar and one line per step.
func (p *Progress) Render() string {
	var b strings.Builder

	if p.Label != "" {
		b.WriteString(th.value.PaddingLeft(2).Render(p.Label))
		b.WriteString("\n\n")
	}
	if p.ShowBar {
		b.WriteString(p.renderBar())
		b.WriteString("\n\n")
	}
	if p.ShowSteps {
		lines := make([]string, 0, len(p.Steps))
		for _, step := range p.Steps {
			lines = append(lines, p.RenderStep(step))
		}
		b.WriteString(strings.Join(lines, "\n"))
	}
	return b.String()
}

func (p *Progress) renderBar() string {
	return lipgloss.NewStyle().
		PaddingLeft(2).
		Render(fmt.Sprintf("%s  %3.0f%%  [%d/%d]", p.bar.ViewAs(p.Percent), p.Percent*100, p.Current, p.Total))
}

// RenderStep renders a single step line: "[n/total] name   marker (note)".
func (p *Progress) RenderStep(step Step) string {
	marker, style := step.Status.look()

	var b strings.Builder
	fmt.Fprintf(&b, "  [%d/%d] ", step.Number, p.Total)
	b.WriteString(style.Render(step.Name))
	// Align markers on one column.
	b.WriteString(strings.Repeat(" ", max(45-lipgloss.Width(step.Name), 1)))
	b.WriteString(style.Render(marker))
	if step.Message != "" {
		b.WriteString("  ")
		b.WriteString(th.note.Render("(" + step.Message + ")"))
	}
	return b.String()
}

func (p *Progress) String() string { return p.Render() }

// StepCallback reports progress from inside an operation.
type StepCallback func(stepNumber int, status StepStatus, message string)
