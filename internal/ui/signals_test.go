package ui

import (
	"bytes"
	"os"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

type exitRecorder struct {
	mu    sync.Mutex
	codes []int
	out   bytes.Buffer
}

func (r *exitRecorder) exit(code int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.codes = append(r.codes, code)
}

func (r *exitRecorder) exitCodes() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.codes...)
}

func recordExits(t *testing.T) *exitRecorder {
	t.Helper()
	rec := &exitRecorder{}
	origExit, origOut := exitFunc, exitOutput
	exitFunc, exitOutput = rec.exit, &rec.out
	t.Cleanup(func() { exitFunc, exitOutput = origExit, origOut })
	return rec
}

func TestWatchSignals(t *testing.T) {
	tcs := []struct {
		name          string
		run           func(sigCh chan os.Signal, done chan struct{})
		expectedSent  int
		expectedCodes []int
		expectedOut   string
	}{
		{
			name: "done before any signal",
			run: func(_ chan os.Signal, done chan struct{}) {
				close(done)
			},
		},
		{
			name: "view quits after the first signal",
			run: func(sigCh chan os.Signal, done chan struct{}) {
				sigCh <- os.Interrupt
				time.Sleep(10 * time.Millisecond)
				close(done)
			},
			expectedSent: 1,
		},
		{
			name: "second signal forces exit",
			run: func(sigCh chan os.Signal, _ chan struct{}) {
				sigCh <- os.Interrupt
				time.Sleep(10 * time.Millisecond)
				sigCh <- os.Interrupt
			},
			expectedSent:  1,
			expectedCodes: []int{130},
			expectedOut:   "Interrupted again",
		},
	}
	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			rec := recordExits(t)
			sigCh := make(chan os.Signal, 1)
			done := make(chan struct{})

			var mu sync.Mutex
			var sent []tea.Msg
			send := func(msg tea.Msg) {
				mu.Lock()
				defer mu.Unlock()
				sent = append(sent, msg)
			}

			finished := make(chan struct{})
			go func() {
				watchSignals(sigCh, done, send, time.Minute)
				close(finished)
			}()
			tc.run(sigCh, done)

			select {
			case <-finished:
			case <-time.After(time.Second):
				t.Fatal("watcher did not return")
			}

			mu.Lock()
			assert.Len(t, sent, tc.expectedSent)
			mu.Unlock()
			assert.Equal(t, tc.expectedCodes, rec.exitCodes())
			if tc.expectedOut != "" {
				assert.Contains(t, rec.out.String(), tc.expectedOut)
			}
		})
	}

	t.Run("timeout forces exit", func(t *testing.T) {
		rec := recordExits(t)
		sigCh := make(chan os.Signal, 1)
		sigCh <- os.Interrupt

		watchSignals(sigCh, make(chan struct{}), func(tea.Msg) {}, 5*time.Millisecond)

		assert.Equal(t, []int{130}, rec.exitCodes())
		assert.Contains(t, rec.out.String(), "Still running after 5ms")
	})
}
