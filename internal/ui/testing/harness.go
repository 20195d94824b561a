// Package testing drives Bubbletea models step by step in tests.
package testing

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/sebdah/goldie/v2"
)

// TestHarness feeds a fixed sequence of messages to a model and checks the
// rendered view and model state after each one.
//
//	uitesting.NewTestHarness(t, view).
//		Step(uitesting.TestStep[*UploadView]{
//			Name:       "halfway",
//			Msg:        progressMsg{...},
//			ViewGolden: "upload_halfway",
//		}).
//		Run(t)
//
// Commands returned by Init and Update are executed and their messages fed
// back, so synchronous chains complete. tea.Batch results are not expanded,
// which keeps long-running commands such as uploads out of the test, and a
// command still blocked after commandTimeout (e.g. waiting on a channel) is
// abandoned.
type TestHarness[T tea.Model] struct {
	model  T
	steps  []TestStep[T]
	goldie *goldie.Goldie
}

// TestStep is one message and the assertions that follow it.
type TestStep[T tea.Model] struct {
	Name string

	// Msg is sent to Update. nil only asserts the current state.
	Msg tea.Msg

	// ViewGolden compares View() against testdata/<ViewGolden>.golden.
	// Regenerate with: go test -update
	ViewGolden string

	ViewAssert  func(t *testing.T, view string)
	ModelAssert func(t *testing.T, m T)
}

// NewTestHarness forces the ASCII color profile so golden files do not
// depend on the terminal running the tests.
func NewTestHarness[T tea.Model](t *testing.T, model T) *TestHarness[T] {
	t.Helper()
	lipgloss.SetColorProfile(termenv.Ascii)

	return &TestHarness[T]{
		model: model,
		goldie: goldie.New(t,
			goldie.WithFixtureDir("testdata"),
			goldie.WithNameSuffix(".golden"),
		),
	}
}

// Step appends a step; steps run in order.
func (h *TestHarness[T]) Step(step TestStep[T]) *TestHarness[T] {
	h.steps = append(h.steps, step)
	return h
}

// Run calls Init, then executes every step as a subtest.
func (h *TestHarness[T]) Run(t *testing.T) {
	t.Helper()

	h.process(t, h.model.Init(), 0)

	for _, step := range h.steps {
		t.Run(step.Name, func(t *testing.T) {
			if step.Msg != nil {
				h.update(t, step.Msg)
			}

			view := normalizeView(h.model.View())
			if step.ViewGolden != "" {
				h.goldie.Assert(t, step.ViewGolden, []byte(view))
			}
			if step.ViewAssert != nil {
				step.ViewAssert(t, view)
			}
			if step.ModelAssert != nil {
				step.ModelAssert(t, h.model)
			}
		})
	}
}

// Model returns the model after the steps run so far.
func (h *TestHarness[T]) Model() T {
	return h.model
}

const (
	maxCommandDepth = 10
	commandTimeout  = 100 * time.Millisecond
)

func (h *TestHarness[T]) update(t *testing.T, msg tea.Msg) {
	t.Helper()
	updated, cmd := h.model.Update(msg)
	model, ok := updated.(T)
	if !ok {
		t.Fatalf("model %T is not %T", updated, h.model)
	}
	h.model = model
	h.process(t, cmd, 0)
}

// process runs cmd and feeds its message back to Update. Depth is bounded
// because tick commands reschedule themselves forever.
func (h *TestHarness[T]) process(t *testing.T, cmd tea.Cmd, depth int) {
	t.Helper()
	if cmd == nil || depth >= maxCommandDepth {
		return
	}

	msg := runCommand(cmd)
	switch msg.(type) {
	case nil, tea.BatchMsg, tea.QuitMsg:
		return
	}

	updated, next := h.model.Update(msg)
	model, ok := updated.(T)
	if !ok {
		t.Fatalf("model %T is not %T", updated, h.model)
	}
	h.model = model
	h.process(t, next, depth+1)
}

func runCommand(cmd tea.Cmd) tea.Msg {
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()

	select {
	case msg := <-done:
		return msg
	case <-time.After(commandTimeout):
		return nil
	}
}

func normalizeView(view string) string {
	view = strings.ReplaceAll(view, "\r\n", "\n")
	return strings.TrimSpace(view)
}
