package ui

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const defaultShutdownTimeout = 2 * time.Second

// SignalCancelMsg tells a view that the user interrupted it. Views cancel
// their context and quit once in-flight requests return.
type SignalCancelMsg struct {
	Signal os.Signal
}

// exitFunc and exitOutput are replaced in tests.
var (
	exitFunc             = os.Exit
	exitOutput io.Writer = os.Stderr
)

// SetupSignalHandling takes SIGINT and SIGTERM away from Bubbletea and
// delivers the first one to the program as a SignalCancelMsg. A second
// signal, or a view that is still running after shutdownTimeout, exits
// with status 130. Close the returned channel once the program returns.
func SetupSignalHandling(p *tea.Program, shutdownTimeout time.Duration) chan<- struct{} {
	tea.WithoutSignalHandler()(p)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		defer signal.Stop(sigCh)
		watchSignals(sigCh, done, p.Send, shutdownTimeout)
	}()
	return done
}

func watchSignals(sigCh <-chan os.Signal, done <-chan struct{}, send func(tea.Msg), shutdownTimeout time.Duration) {
	if shutdownTimeout <= 0 {
		shutdownTimeout = defaultShutdownTimeout
	}

	select {
	case sig := <-sigCh:
		send(SignalCancelMsg{Signal: sig})
	case <-done:
		return
	}

	timer := time.NewTimer(shutdownTimeout)
	defer timer.Stop()

	select {
	case <-sigCh:
		fmt.Fprintln(exitOutput, "\nInterrupted again, exiting without waiting for uploads")
	case <-timer.C:
		fmt.Fprintf(exitOutput, "\nStill running after %s, exiting\n", shutdownTimeout)
	case <-done:
		return
	}
	exitFunc(130)
}
