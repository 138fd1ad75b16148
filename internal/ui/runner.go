package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"
)

// RunnerConfig describes a multi-step command.
type RunnerConfig struct {
	Title           string
	Command         string
	Params          []Param
	StepNames       []string
	Troubleshooting []string // shown on failure
	Verbose         bool     // show Report.Output after the result
	Output          io.Writer
}

// Report is what an operation hands back to the runner on success.
type Report struct {
	Title       string // overrides "<Title> complete"
	Details     []Param
	Output      string
	OutputTitle string
	Warning     bool
}

// Operation performs the command's work and reports step changes.
type Operation func(ctx context.Context, onStep StepCallback) (Report, error)

// Runner prints the header, streams step lines while the operation runs,
// then prints a result box.
type Runner struct {
	config   RunnerConfig
	header   *Header
	progress *Progress
	out      io.Writer
	width    int
}

// NewRunner creates a runner for config.
func NewRunner(config RunnerConfig) *Runner {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	width := TerminalWidth()

	progress := NewProgress("", len(config.StepNames))
	progress.SetWidth(width)
	progress.SetStepNames(config.StepNames)

	return &Runner{
		config:   config,
		header:   NewHeader(config.Title, config.Command, config.Params...).SetWidth(width),
		progress: progress,
		out:      config.Output,
		width:    width,
	}
}

// Progress exposes the step state, mostly for tests.
func (r *Runner) Progress() *Progress {
	return r.progress
}

// Run executes op and returns its error after the result box is printed.
func (r *Runner) Run(ctx context.Context, op Operation) error {
	start := time.Now()

	_, _ = fmt.Fprintln(r.out, r.header.Render())
	_, _ = fmt.Fprintln(r.out)

	report, err := op(ctx, r.onStep)
	elapsed := time.Since(start).Round(time.Millisecond).String()

	_, _ = fmt.Fprintln(r.out)
	if err != nil {
		res := NewFailureResult(r.config.Title+" failed", err, r.config.Troubleshooting)
		res.AddDetail("Duration", elapsed)
		_, _ = fmt.Fprintln(r.out, res.SetWidth(r.width).Render())
		return err
	}

	title := report.Title
	if title == "" {
		title = r.config.Title + " complete"
	}
	res := NewSuccessResult(title, report.Details...)
	if report.Warning {
		res.Type = ResultWarning
	}
	res.AddDetail("Duration", elapsed)
	_, _ = fmt.Fprintln(r.out, res.SetWidth(r.width).Render())

	if r.config.Verbose && report.Output != "" {
		boxTitle := report.OutputTitle
		if boxTitle == "" {
			boxTitle = "Output"
		}
		_, _ = fmt.Fprintln(r.out)
		_, _ = fmt.Fprintln(r.out, NewOutputBox(boxTitle, report.Output).SetWidth(r.width).Render())
	}
	return nil
}

func (r *Runner) onStep(stepNumber int, status StepStatus, message string) {
	r.progress.UpdateStep(stepNumber, status, message)
	if stepNumber < 1 || stepNumber > len(r.progress.Steps) {
		return
	}

	line := r.progress.RenderStep(r.progress.Steps[stepNumber-1])
	if status == StepRunning {
		// Overwritten by the final state of the step.
		_, _ = fmt.Fprint(r.out, line+"\r")
		return
	}
	_, _ = fmt.Fprintln(r.out, line)
}
