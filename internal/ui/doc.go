// Package ui renders the webli CLI output with Lip Gloss and Bubble Tea.
//
// Components follow a "run once and exit" pattern:
//
//   - Header: command banner with ordered parameters
//   - Progress: step list with a progress bar
//   - Result: success, warning, or failure box
//   - OutputBox: raw text such as a response body
//   - RenderTable: aligned columns for route and discovery listings
//
// Runner ties them together for multi-step commands such as "webli get":
//
//	runner := ui.NewRunner(ui.RunnerConfig{
//	    Title:     "HTTPS Request",
//	    Command:   "webli get https://localhost:8443/",
//	    StepNames: []string{"Parse URL", "Connect", "Send request", "Read response"},
//	})
//	err := runner.Run(ctx, func(ctx context.Context, onStep ui.StepCallback) (ui.Report, error) {
//	    onStep(1, ui.StepRunning, "")
//	    // ...
//	    onStep(1, ui.StepComplete, "")
//	    return ui.Report{}, nil
//	})
//
// Logging stays silent unless WEBLI_LOG_LEVEL is set, so the styled output
// is not interleaved with log lines.
package ui
