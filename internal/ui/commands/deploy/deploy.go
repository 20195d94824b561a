// Package deploy renders function and site deployments: package the code
// directory, upload it in chunks, then follow the build.
package deploy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/cumulus-dev/cumulus/internal/api"
	"github.com/cumulus-dev/cumulus/internal/apperr"
	"github.com/cumulus-dev/cumulus/internal/files"
	"github.com/cumulus-dev/cumulus/internal/payload"
	"github.com/cumulus-dev/cumulus/internal/ui"
	"github.com/cumulus-dev/cumulus/internal/upload"
	"github.com/samber/lo"
)

// DeployState represents the current state of the deployment
type DeployState int

const (
	StatePackaging DeployState = iota
	StateUploading
	StateBuilding
	StateSuccess
	StateError
)

// Kind selects the deployment endpoint.
type Kind string

const (
	KindFunction Kind = "function"
	KindSite     Kind = "site"
)

const defaultPollInterval = 2 * time.Second

// maxPollFailures is how many status checks in a row may fail with a
// retryable error before the view gives up.
const maxPollFailures = 5

// Target describes what to deploy. Function and site specific fields are
// ignored for the other kind.
type Target struct {
	Kind       Kind
	ResourceID string
	Root       string
	Ignore     []string
	Activate   bool

	Entrypoint string
	Commands   string

	InstallCommand  string
	BuildCommand    string
	OutputDirectory string
}

type DeployConfig struct {
	ui.DisplayConfig

	Client api.Client
	Target Target

	// UploadID resumes an interrupted code upload.
	UploadID string
	// Wait follows the build until it reaches a terminal status.
	Wait         bool
	PollInterval time.Duration
	// SizeLimit rejects archives above this many bytes; zero disables it.
	SizeLimit int64

	// Output receives plain progress lines in simple mode. Defaults to stdout.
	Output io.Writer
}

// DeployView drives one deployment from local directory to ready build.
type DeployView struct {
	ctx    context.Context
	cancel context.CancelFunc

	state       DeployState
	fileCount   int
	archivePath string
	archiveSize int64
	warnings    []string
	progress    upload.Progress
	lastPrinted int
	deployment  *api.Deployment
	lastStatus  api.DeploymentStatus
	pollErrors  int

	events      chan tea.Msg
	spinner     *ui.Spinner
	progressBar progress.Model
	err         error

	conf DeployConfig
}

type packagedMsg struct {
	archivePath string
	size        int64
	fileCount   int
	warnings    []string
}

type uploadProgressMsg struct {
	progress upload.Progress
}

type deploymentCreatedMsg struct {
	deployment *api.Deployment
	err        error
}

type deploymentStatusMsg struct {
	deployment *api.Deployment
	err        error
}

func NewDeployView(ctx context.Context, conf DeployConfig) *DeployView {
	if conf.PollInterval <= 0 {
		conf.PollInterval = defaultPollInterval
	}
	if conf.Output == nil {
		conf.Output = os.Stdout
	}
	ctx, cancel := context.WithCancel(ctx)

	return &DeployView{
		ctx:    ctx,
		cancel: cancel,
		state:  StatePackaging,
		events: make(chan tea.Msg, 16),
		progressBar: progress.New(
			progress.WithSolidFill(ui.ProgressColor),
			progress.WithWidth(40),
			progress.WithoutPercentage(),
		),
		spinner: ui.NewSpinner(!conf.SimpleOutput()),
		conf:    conf,
	}
}

// Error returns the error if any occurred during execution
func (m *DeployView) Error() error {
	return m.err
}

// Deployment returns the created deployment, nil until the upload finished.
func (m *DeployView) Deployment() *api.Deployment {
	return m.deployment
}

func (m *DeployView) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick(), m.packageCode)
}

func (m *DeployView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch v := msg.(type) {
	case ui.SignalCancelMsg:
		return m.onCancel()

	case packagedMsg:
		return m.onPackaged(v)

	case uploadProgressMsg:
		return m.onProgress(v)

	case deploymentCreatedMsg:
		return m.onDeploymentCreated(v)

	case deploymentStatusMsg:
		return m.onStatus(v)

	case *ui.UIError:
		return m.onError(v)

	case tea.KeyMsg:
		if v.String() == "ctrl+c" {
			return m.onCancel()
		}
		return m, nil

	default:
		var cmd tea.Cmd
		cmd = m.spinner.Update(msg)
		return m, cmd
	}
}

func (m *DeployView) onCancel() (tea.Model, tea.Cmd) {
	m.cancel()
	m.cleanup()
	if m.conf.SimpleOutput() {
		fmt.Fprintf(m.conf.Output, "\nDeployment cancelled by user\n")
	}
	m.state = StateError
	m.err = ui.NewUserCancelledError()
	return m, tea.Quit
}

func (m *DeployView) onError(err *ui.UIError) (tea.Model, tea.Cmd) {
	m.cancel()
	m.cleanup()
	m.state = StateError
	m.err = err
	if m.conf.SimpleOutput() {
		fmt.Fprintf(m.conf.Output, "Error: %s\n", err.Error())
		err.SilentExit = true
	}
	return m, tea.Quit
}

func (m *DeployView) onPackaged(msg packagedMsg) (tea.Model, tea.Cmd) {
	m.archivePath = msg.archivePath
	m.archiveSize = msg.size
	m.fileCount = msg.fileCount
	m.warnings = msg.warnings
	m.state = StateUploading

	if m.conf.SimpleOutput() {
		for _, w := range m.warnings {
			fmt.Fprintln(m.conf.Output, w)
		}
		fmt.Fprintf(m.conf.Output, "Packaged %d files (%s)\n", m.fileCount, ui.FormatSize(m.archiveSize))
		fmt.Fprintf(m.conf.Output, "Uploading code for %s %s...\n", m.conf.Target.Kind, m.conf.Target.ResourceID)
	}
	return m, tea.Batch(m.uploadCode, m.waitForEvent)
}

func (m *DeployView) onProgress(msg uploadProgressMsg) (tea.Model, tea.Cmd) {
	m.progress = msg.progress
	if m.conf.SimpleOutput() {
		decile := int(msg.progress.Progress) / 10 * 10
		if decile > m.lastPrinted {
			m.lastPrinted = decile
			fmt.Fprintf(m.conf.Output, "  %d%% (%s/%s)\n", decile,
				ui.FormatSize(msg.progress.SizeUploaded), ui.FormatSize(m.archiveSize))
		}
	}
	return m, m.waitForEvent
}

func (m *DeployView) onDeploymentCreated(msg deploymentCreatedMsg) (tea.Model, tea.Cmd) {
	m.cleanup()
	if msg.err != nil {
		if m.progress.ID != "" {
			msg.err = fmt.Errorf("%w (resume with --upload-id %s)", msg.err, m.progress.ID)
		}
		return m.onError(ui.Classify(msg.err))
	}

	m.deployment = msg.deployment
	m.lastStatus = msg.deployment.Status
	if m.conf.SimpleOutput() {
		fmt.Fprintf(m.conf.Output, "Created deployment %s (%s)\n", m.deployment.ID, m.deployment.Status)
	}

	if !m.conf.Wait || m.deployment.Status.IsTerminal() {
		return m.finish()
	}
	m.state = StateBuilding
	return m, m.pollStatus()
}

func (m *DeployView) onStatus(msg deploymentStatusMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.pollErrors++
		if !retryablePollError(msg.err) {
			return m.onError(ui.Classify(fmt.Errorf("failed to get deployment %s: %w", m.deployment.ID, msg.err)))
		}
		if m.pollErrors >= maxPollFailures {
			return m.onError(ui.Classify(fmt.Errorf("failed to get deployment %s after %d attempts: %w", m.deployment.ID, m.pollErrors, msg.err)))
		}
		slog.Warn("Failed to poll deployment status", "deploymentId", m.deployment.ID, "attempt", m.pollErrors, "error", msg.err)
		return m, m.pollStatus()
	}
	m.pollErrors = 0

	m.deployment = msg.deployment
	if m.conf.SimpleOutput() && m.deployment.Status != m.lastStatus {
		fmt.Fprintf(m.conf.Output, "Build status: %s\n", m.deployment.Status)
	}
	m.lastStatus = m.deployment.Status

	if !m.deployment.Status.IsTerminal() {
		return m, m.pollStatus()
	}
	return m.finish()
}

// retryablePollError reports whether a failed status check is worth
// repeating: network failures and server-side errors are, client errors are
// not.
func retryablePollError(err error) bool {
	var transportErr *apperr.TransportError
	if errors.As(err, &transportErr) {
		return true
	}
	var apiErr *apperr.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code >= http.StatusInternalServerError
	}
	return false
}

func (m *DeployView) finish() (tea.Model, tea.Cmd) {
	switch m.deployment.Status {
	case api.DeploymentStatusFailed, api.DeploymentStatusCanceled:
		m.state = StateError
		uiErr := ui.NewAPIError(fmt.Errorf("deployment %s %s", m.deployment.ID, m.deployment.Status))
		if m.conf.SimpleOutput() {
			fmt.Fprintf(m.conf.Output, "✗ %s\n", uiErr.Err)
			if logs := tail(m.deployment.BuildLogs, 20); logs != "" {
				fmt.Fprintln(m.conf.Output, logs)
			}
			uiErr.SilentExit = true
		}
		m.err = uiErr
	default:
		m.state = StateSuccess
		if m.conf.SimpleOutput() {
			fmt.Fprintf(m.conf.Output, "✓ Deployment %s %s\n", m.deployment.ID, m.deployment.Status)
		}
	}
	return m, tea.Quit
}

// packageCode archives the target directory into a temp file.
func (m *DeployView) packageCode() tea.Msg {
	t := m.conf.Target
	fileList, err := files.DetermineIncludes(t.Root, t.Ignore)
	if err != nil {
		return ui.NewFileSystemError(fmt.Errorf("failed to list %s: %w", t.Root, err))
	}
	if len(fileList) == 0 {
		return ui.NewValidationError(fmt.Errorf("no files to deploy in %s", t.Root))
	}

	var warnings []string
	if dev := files.DetectDevFolders(fileList); len(dev) > 0 {
		warnings = append(warnings, fmt.Sprintf("Warning: including %s. Add them to the ignore list to shrink the upload.",
			strings.Join(dev, ", ")))
	}

	tmpDir, err := os.MkdirTemp("", "cumulus-deploy-*")
	if err != nil {
		return ui.NewFileSystemError(fmt.Errorf("failed to create temp dir: %w", err))
	}
	archivePath := filepath.Join(tmpDir, "code.tar.gz")
	size, err := files.CreateArchive(t.Root, fileList, archivePath)
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return ui.NewFileSystemError(err)
	}

	warning, err := files.ValidateArchiveSize(size, m.conf.SizeLimit)
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return ui.NewValidationError(err)
	}
	if warning != "" {
		warnings = append(warnings, warning)
	}

	slog.Info("Packaged deployment", "root", t.Root, "files", len(fileList), "size", size)
	return packagedMsg{archivePath: archivePath, size: size, fileCount: len(fileList), warnings: warnings}
}

func (m *DeployView) uploadCode() tea.Msg {
	go func() {
		code, err := payload.FromFile(m.archivePath, "code.tar.gz")
		if err != nil {
			_ = m.emit(deploymentCreatedMsg{err: err})
			return
		}
		onProgress := func(p upload.Progress) error {
			return m.emit(uploadProgressMsg{progress: p})
		}

		t := m.conf.Target
		var d *api.Deployment
		switch t.Kind {
		case KindSite:
			d, err = m.conf.Client.CreateSiteDeployment(m.ctx, api.CreateSiteDeploymentParams{
				SiteID:          t.ResourceID,
				Code:            code,
				Activate:        t.Activate,
				InstallCommand:  lo.EmptyableToPtr(t.InstallCommand),
				BuildCommand:    lo.EmptyableToPtr(t.BuildCommand),
				OutputDirectory: lo.EmptyableToPtr(t.OutputDirectory),
				UploadID:        m.conf.UploadID,
				OnProgress:      onProgress,
			})
		default:
			d, err = m.conf.Client.CreateDeployment(m.ctx, api.CreateDeploymentParams{
				FunctionID: t.ResourceID,
				Code:       code,
				Activate:   t.Activate,
				Entrypoint: lo.EmptyableToPtr(t.Entrypoint),
				Commands:   lo.EmptyableToPtr(t.Commands),
				UploadID:   m.conf.UploadID,
				OnProgress: onProgress,
			})
		}
		_ = m.emit(deploymentCreatedMsg{deployment: d, err: err})
	}()
	return nil
}

func (m *DeployView) pollStatus() tea.Cmd {
	deploymentID := m.deployment.ID
	return tea.Tick(m.conf.PollInterval, func(time.Time) tea.Msg {
		var d *api.Deployment
		var err error
		if m.conf.Target.Kind == KindSite {
			d, err = m.conf.Client.GetSiteDeployment(m.ctx, m.conf.Target.ResourceID, deploymentID)
		} else {
			d, err = m.conf.Client.GetDeployment(m.ctx, m.conf.Target.ResourceID, deploymentID)
		}
		return deploymentStatusMsg{deployment: d, err: err}
	})
}

func (m *DeployView) emit(msg tea.Msg) error {
	select {
	case m.events <- msg:
		return nil
	case <-m.ctx.Done():
		return m.ctx.Err()
	}
}

func (m *DeployView) waitForEvent() tea.Msg {
	select {
	case msg := <-m.events:
		return msg
	case <-m.ctx.Done():
		return nil
	}
}

func (m *DeployView) cleanup() {
	if m.archivePath == "" {
		return
	}
	if err := os.RemoveAll(filepath.Dir(m.archivePath)); err != nil {
		slog.Debug("Failed to remove deployment archive", "path", m.archivePath, "error", err)
	}
	m.archivePath = ""
}

func (m *DeployView) View() string {
	if m.conf.SimpleOutput() {
		return ""
	}

	done := ui.SuccessStyle.Render("✓")
	pending := ui.PendingStyle.Render("-")
	line := func(icon, text string) string { return icon + " " + text + "\n" }

	var b strings.Builder
	for _, w := range m.warnings {
		b.WriteString(ui.WarningStyle.Render(w) + "\n")
	}

	switch m.state {
	case StatePackaging:
		b.WriteString(line(m.spinner.View(), "Packaging "+m.conf.Target.Root+"..."))
		b.WriteString(line(pending, "Upload code"))
		if m.conf.Wait {
			b.WriteString(line(pending, "Build"))
		}
	case StateUploading:
		b.WriteString(line(done, fmt.Sprintf("Packaged %d files (%s)", m.fileCount, ui.FormatSize(m.archiveSize))))
		b.WriteString(line(m.spinner.View(), fmt.Sprintf("Uploading %s %3.0f%%  %s/%s",
			m.progressBar.ViewAs(m.progress.Progress/100), m.progress.Progress,
			ui.FormatSize(m.progress.SizeUploaded), ui.FormatSize(m.archiveSize))))
		if m.conf.Wait {
			b.WriteString(line(pending, "Build"))
		}
	case StateBuilding:
		b.WriteString(line(done, fmt.Sprintf("Packaged %d files (%s)", m.fileCount, ui.FormatSize(m.archiveSize))))
		b.WriteString(line(done, "Uploaded deployment "+m.deployment.ID))
		b.WriteString(line(m.spinner.View(), "Build "+ui.ColorizeStatus(m.lastStatus.String())))
	case StateSuccess:
		b.WriteString(ui.GreenStyle.Render(fmt.Sprintf("✓ Deployment %s %s", m.deployment.ID, m.deployment.Status)) + "\n")
	case StateError:
		if isCancelled(m.err) {
			b.WriteString(ui.WarningStyle.Render("Deployment cancelled") + "\n")
			break
		}
		b.WriteString(ui.FormatError(m.err))
		if m.deployment != nil {
			if logs := tail(m.deployment.BuildLogs, 20); logs != "" {
				b.WriteString("\n" + logs + "\n")
			}
		}
	}
	return b.String()
}

func isCancelled(err error) bool {
	uiErr, ok := err.(*ui.UIError)
	return ok && uiErr.Type == ui.ErrorTypeUserCancelled
}

// tail returns the last n lines of s.
func tail(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
