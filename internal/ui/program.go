package ui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// RunProgram runs model until it quits and returns the final model. Without
// an interactive terminal the renderer and input are disabled so views can
// print plain lines.
func RunProgram(model tea.Model, opts DisplayConfig, shutdownTimeout time.Duration) (tea.Model, error) {
	var programOpts []tea.ProgramOption
	if opts.SimpleOutput() {
		programOpts = append(programOpts,
			tea.WithoutRenderer(),
			tea.WithInput(nil),
		)
	}

	p := tea.NewProgram(model, programOpts...)
	doneCh := SetupSignalHandling(p, shutdownTimeout)
	defer close(doneCh)

	finalModel, err := p.Run()
	if err != nil {
		return nil, NewInternalError(fmt.Errorf("internal error: %w", err))
	}
	return finalModel, nil
}
