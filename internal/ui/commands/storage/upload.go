// Package storage renders storage bucket uploads.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/cumulus-dev/cumulus/internal/api"
	"github.com/cumulus-dev/cumulus/internal/id"
	"github.com/cumulus-dev/cumulus/internal/payload"
	"github.com/cumulus-dev/cumulus/internal/ui"
	"github.com/cumulus-dev/cumulus/internal/upload"
	"golang.org/x/sync/errgroup"
)

type UploadState int

const (
	StatePreparing UploadState = iota
	StateUploading
	StateSuccess
	StateError
)

// DefaultConcurrency bounds how many files upload at once.
const DefaultConcurrency = 3

// UploadItem is one local file headed for the bucket.
type UploadItem struct {
	Path string
	// FileID defaults to a server-generated id.
	FileID string
	// UploadID resumes an interrupted upload.
	UploadID string
}

type UploadConfig struct {
	ui.DisplayConfig

	Client      api.Client
	BucketID    string
	Items       []UploadItem
	Permissions []string
	Concurrency int

	// Output receives plain progress lines in simple mode. Defaults to stdout.
	Output io.Writer
}

// UploadResult is the outcome for a single file.
type UploadResult struct {
	Name     string
	Size     int64
	FileID   string
	File     *api.File
	Progress upload.Progress
	Err      error
}

// UploadView uploads files concurrently and renders one progress bar each.
type UploadView struct {
	ctx    context.Context
	cancel context.CancelFunc

	state       UploadState
	results     []UploadResult
	payloads    []*payload.Payload
	totalSize   int64
	uploaded    int
	lastPrinted []int

	events      chan tea.Msg
	spinner     *ui.Spinner
	progressBar progress.Model
	err         error

	conf UploadConfig
}

type filesPreparedMsg struct {
	results  []UploadResult
	payloads []*payload.Payload
}

type uploadProgressMsg struct {
	index    int
	progress upload.Progress
}

type fileUploadedMsg struct {
	index int
	file  *api.File
	err   error
}

type allUploadsDoneMsg struct{}

func NewUploadView(ctx context.Context, conf UploadConfig) *UploadView {
	if conf.Concurrency <= 0 {
		conf.Concurrency = DefaultConcurrency
	}
	if conf.Output == nil {
		conf.Output = os.Stdout
	}
	ctx, cancel := context.WithCancel(ctx)

	return &UploadView{
		ctx:    ctx,
		cancel: cancel,
		state:  StatePreparing,
		events: make(chan tea.Msg, 64),
		progressBar: progress.New(
			progress.WithSolidFill(ui.ProgressColor),
			progress.WithWidth(30),
			progress.WithoutPercentage(),
		),
		spinner: ui.NewSpinner(!conf.SimpleOutput()),
		conf:    conf,
	}
}

// Error returns the error if any occurred during execution
func (m *UploadView) Error() error {
	return m.err
}

// Results returns one entry per requested file, in order.
func (m *UploadView) Results() []UploadResult {
	return m.results
}

func (m *UploadView) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick(), m.prepareFiles)
}

func (m *UploadView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch v := msg.(type) {
	case ui.SignalCancelMsg:
		return m.onCancel()

	case filesPreparedMsg:
		return m.onFilesPrepared(v)

	case uploadProgressMsg:
		return m.onProgress(v)

	case fileUploadedMsg:
		return m.onFileUploaded(v)

	case allUploadsDoneMsg:
		return m.onAllUploadsDone()

	case *ui.UIError:
		return m.onError(v)

	case tea.KeyMsg:
		switch v.String() {
		case "ctrl+c", "q":
			return m.onCancel()
		}
		return m, nil

	default:
		var cmd tea.Cmd
		cmd = m.spinner.Update(msg)
		return m, cmd
	}
}

func (m *UploadView) onCancel() (tea.Model, tea.Cmd) {
	m.cancel()
	if m.conf.SimpleOutput() {
		fmt.Fprintf(m.conf.Output, "\nUpload cancelled by user\n")
	}
	m.state = StateError
	m.err = ui.NewUserCancelledError()
	return m, tea.Quit
}

func (m *UploadView) onError(err *ui.UIError) (tea.Model, tea.Cmd) {
	m.cancel()
	m.state = StateError
	m.err = err
	if m.conf.SimpleOutput() {
		fmt.Fprintf(m.conf.Output, "Error: %s\n", err.Error())
		err.SilentExit = true
	}
	return m, tea.Quit
}

func (m *UploadView) onFilesPrepared(msg filesPreparedMsg) (tea.Model, tea.Cmd) {
	m.results = msg.results
	m.payloads = msg.payloads
	m.lastPrinted = make([]int, len(msg.results))
	for _, r := range m.results {
		m.totalSize += r.Size
	}
	m.state = StateUploading

	if m.conf.SimpleOutput() {
		noun := "files"
		if len(m.results) == 1 {
			noun = "file"
		}
		fmt.Fprintf(m.conf.Output, "Uploading %d %s to bucket %s (%s)\n",
			len(m.results), noun, m.conf.BucketID, ui.FormatSize(m.totalSize))
	}

	return m, tea.Batch(m.startUploads, m.waitForEvent)
}

func (m *UploadView) onProgress(msg uploadProgressMsg) (tea.Model, tea.Cmd) {
	r := &m.results[msg.index]
	r.Progress = msg.progress

	if m.conf.SimpleOutput() {
		// print each file's progress every 10%
		decile := int(msg.progress.Progress) / 10 * 10
		if decile > m.lastPrinted[msg.index] && decile < 100 {
			m.lastPrinted[msg.index] = decile
			fmt.Fprintf(m.conf.Output, "  %s %d%% (%s/%s)\n", r.Name, decile,
				ui.FormatSize(msg.progress.SizeUploaded), ui.FormatSize(r.Size))
		}
	}
	return m, m.waitForEvent
}

func (m *UploadView) onFileUploaded(msg fileUploadedMsg) (tea.Model, tea.Cmd) {
	r := &m.results[msg.index]
	r.File = msg.file
	r.Err = msg.err
	if msg.file != nil {
		r.FileID = msg.file.ID
	}
	m.uploaded++

	if m.conf.SimpleOutput() {
		if msg.err != nil {
			fmt.Fprintf(m.conf.Output, "✗ Failed %s: %s\n", r.Name, msg.err)
		} else {
			fmt.Fprintf(m.conf.Output, "✓ Uploaded %s as %s (%d/%d)\n", r.Name, r.FileID, m.uploaded, len(m.results))
		}
	}
	return m, m.waitForEvent
}

func (m *UploadView) onAllUploadsDone() (tea.Model, tea.Cmd) {
	var errs []error
	for _, r := range m.results {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.Name, r.Err))
		}
	}

	if len(errs) == 0 {
		m.state = StateSuccess
		if m.conf.SimpleOutput() {
			fmt.Fprintf(m.conf.Output, "Done: %d uploaded (%s)\n", len(m.results), ui.FormatSize(m.totalSize))
		}
		return m, tea.Quit
	}

	m.state = StateError
	if errors.Is(m.ctx.Err(), context.Canceled) {
		m.err = ui.NewUserCancelledError()
		return m, tea.Quit
	}
	joined := errors.Join(errs...)
	m.err = &ui.UIError{
		Err:           fmt.Errorf("%d of %d uploads failed: %w", len(errs), len(m.results), joined),
		Type:          ui.Classify(joined).Type,
		SuppressUsage: true,
	}
	if m.conf.SimpleOutput() {
		for _, hint := range m.ResumeHints() {
			fmt.Fprintln(m.conf.Output, hint)
		}
	}
	return m, tea.Quit
}

// ResumeHints lists the commands that continue failed uploads whose upload
// id the server already assigned.
func (m *UploadView) ResumeHints() []string {
	var hints []string
	for i, r := range m.results {
		if r.Err == nil || r.Progress.ID == "" {
			continue
		}
		hints = append(hints, fmt.Sprintf("Resume %s with: cumulus storage upload %s %s --file-id %s --upload-id %s",
			r.Name, m.conf.BucketID, m.conf.Items[i].Path, r.Progress.ID, r.Progress.ID))
	}
	return hints
}

func (m *UploadView) prepareFiles() tea.Msg {
	if len(m.conf.Items) == 0 {
		return ui.NewValidationError(fmt.Errorf("no files to upload"))
	}

	results := make([]UploadResult, len(m.conf.Items))
	payloads := make([]*payload.Payload, len(m.conf.Items))
	for i, item := range m.conf.Items {
		p, err := payload.FromFile(item.Path, "")
		if err != nil {
			return ui.Classify(err)
		}
		fileID := item.FileID
		if fileID == "" {
			fileID = id.Unique()
		}
		payloads[i] = p
		results[i] = UploadResult{Name: p.Filename(), Size: p.Size(), FileID: fileID}
	}
	return filesPreparedMsg{results: results, payloads: payloads}
}

// startUploads runs every upload in the background and reports through
// m.events. Uploads are independent: one failing does not stop the others.
func (m *UploadView) startUploads() tea.Msg {
	go func() {
		var g errgroup.Group
		g.SetLimit(m.conf.Concurrency)

		for i := range m.results {
			params := api.CreateFileParams{
				BucketID:    m.conf.BucketID,
				FileID:      m.results[i].FileID,
				File:        m.payloads[i],
				Permissions: m.conf.Permissions,
				UploadID:    m.conf.Items[i].UploadID,
				OnProgress: func(p upload.Progress) error {
					return m.emit(uploadProgressMsg{index: i, progress: p})
				},
			}
			g.Go(func() error {
				file, err := m.conf.Client.CreateFile(m.ctx, params)
				_ = m.emit(fileUploadedMsg{index: i, file: file, err: err})
				return nil
			})
		}

		_ = g.Wait()
		_ = m.emit(allUploadsDoneMsg{})
	}()
	return nil
}

func (m *UploadView) emit(msg tea.Msg) error {
	select {
	case m.events <- msg:
		return nil
	case <-m.ctx.Done():
		return m.ctx.Err()
	}
}

func (m *UploadView) waitForEvent() tea.Msg {
	select {
	case msg := <-m.events:
		return msg
	case <-m.ctx.Done():
		return nil
	}
}

func (m *UploadView) View() string {
	if m.conf.SimpleOutput() {
		return ""
	}

	var b strings.Builder
	switch m.state {
	case StatePreparing:
		b.WriteString(m.spinner.View() + " Preparing files...\n")
		return b.String()
	case StateUploading:
		b.WriteString(fmt.Sprintf("Uploading to %s (%d/%d done)\n\n",
			ui.BoldStyle.Render(m.conf.BucketID), m.uploaded, len(m.results)))
	case StateSuccess:
		b.WriteString(ui.GreenStyle.Render(fmt.Sprintf("✓ Uploaded %d files (%s)", len(m.results), ui.FormatSize(m.totalSize))) + "\n\n")
	case StateError:
		if isCancelled(m.err) {
			b.WriteString(ui.WarningStyle.Render("Upload cancelled") + "\n\n")
		} else {
			b.WriteString(ui.FormatError(m.err) + "\n")
		}
	}

	for _, r := range m.results {
		b.WriteString(m.renderFile(r) + "\n")
	}

	if m.state == StateError {
		for _, hint := range m.ResumeHints() {
			b.WriteString("\n" + ui.HelpStyle.Render(hint))
		}
	}
	if m.state == StateUploading {
		b.WriteString("\n" + ui.HelpStyle.Render("Press Ctrl+C to cancel"))
	}
	return b.String()
}

func (m *UploadView) renderFile(r UploadResult) string {
	pct := r.Progress.Progress / 100
	var marker string
	switch {
	case r.Err != nil:
		marker = ui.RedStyle.Render("✗")
	case r.File != nil:
		marker = ui.SuccessStyle.Render("✓")
		pct = 1
	default:
		marker = m.spinner.View()
	}

	line := fmt.Sprintf("%s %-24s %s %3.0f%%  %s/%s", marker, truncate(r.Name, 24),
		m.progressBar.ViewAs(pct), pct*100,
		ui.FormatSize(r.Progress.SizeUploaded), ui.FormatSize(r.Size))
	if r.File != nil {
		line = fmt.Sprintf("%s %-24s %s %3.0f%%  %s  %s", marker, truncate(r.Name, 24),
			m.progressBar.ViewAs(1), 100.0, ui.FormatSize(r.Size), ui.PendingStyle.Render(r.FileID))
	}
	return line
}

func isCancelled(err error) bool {
	var uiErr *ui.UIError
	return errors.As(err, &uiErr) && uiErr.Type == ui.ErrorTypeUserCancelled
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
