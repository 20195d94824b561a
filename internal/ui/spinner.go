package ui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Spinner is the activity marker shown next to in-flight steps. When not
// animated it renders a fixed marker and never schedules ticks.
type Spinner struct {
	model    spinner.Model
	animated bool
}

func NewSpinner(animated bool) *Spinner {
	return &Spinner{
		model: spinner.New(
			spinner.WithSpinner(spinner.MiniDot),
			spinner.WithStyle(SpinnerStyle),
		),
		animated: animated,
	}
}

// Tick starts the animation. A static spinner returns a command that
// produces no message.
func (s *Spinner) Tick() tea.Cmd {
	if !s.animated {
		return func() tea.Msg { return nil }
	}
	return s.model.Tick
}

// Update advances the animation on its own tick messages and ignores
// everything else.
func (s *Spinner) Update(msg tea.Msg) tea.Cmd {
	if _, ok := msg.(spinner.TickMsg); !ok || !s.animated {
		return nil
	}
	var cmd tea.Cmd
	s.model, cmd = s.model.Update(msg)
	return cmd
}

func (s *Spinner) View() string {
	if !s.animated {
		return PendingStyle.Render("…")
	}
	return s.model.View()
}
