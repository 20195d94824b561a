package deploy

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/cumulus-dev/cumulus/internal/api"
	apimock "github.com/cumulus-dev/cumulus/internal/api/mock"
	"github.com/cumulus-dev/cumulus/internal/apperr"
	"github.com/cumulus-dev/cumulus/internal/ui"
	uitesting "github.com/cumulus-dev/cumulus/internal/ui/testing"
	"github.com/cumulus-dev/cumulus/internal/upload"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

//go:generate go test -v -run TestDeployView -update

const mib = 1024 * 1024

func progressAt(sent, size int64) uploadProgressMsg {
	return uploadProgressMsg{progress: upload.Progress{
		ID:           "upl-1",
		Progress:     float64(sent) / float64(size) * 100,
		SizeUploaded: sent,
	}}
}

func functionTarget() Target {
	return Target{Kind: KindFunction, ResourceID: "fn-1", Root: ".", Activate: true}
}

func TestDeployView(t *testing.T) {
	t.Run("simple mode follows the build to ready", func(t *testing.T) {
		client := apimock.NewMockClient(t)
		client.On("GetDeployment", apimock.AnyContext, "fn-1", "d1").
			Return(&api.Deployment{ID: "d1", Status: api.DeploymentStatusReady}, nil).Once()

		var out bytes.Buffer
		model := NewDeployView(t.Context(), DeployConfig{
			DisplayConfig: ui.DisplayConfig{IsInteractive: false, DisableAnimation: true},
			Client:        client,
			Target:        functionTarget(),
			Wait:          true,
			PollInterval:  time.Millisecond,
			Output:        &out,
		})

		uitesting.NewTestHarness(t, model).
			Step(uitesting.TestStep[*DeployView]{Name: "packaged", Msg: packagedMsg{
				size:      12 * mib,
				fileCount: 3,
				warnings:  []string{"Warning: including .venv. Add them to the ignore list to shrink the upload."},
			}}).
			Step(uitesting.TestStep[*DeployView]{Name: "first chunk", Msg: progressAt(5*mib, 12*mib)}).
			Step(uitesting.TestStep[*DeployView]{Name: "second chunk", Msg: progressAt(10*mib, 12*mib)}).
			Step(uitesting.TestStep[*DeployView]{Name: "last chunk", Msg: progressAt(12*mib, 12*mib)}).
			Step(uitesting.TestStep[*DeployView]{
				Name: "created",
				Msg:  deploymentCreatedMsg{deployment: &api.Deployment{ID: "d1", Status: api.DeploymentStatusBuilding}},
				ModelAssert: func(t *testing.T, m *DeployView) {
					assert.Equal(t, StateSuccess, m.state)
					require.NoError(t, m.Error())
					assert.Equal(t, api.DeploymentStatusReady, m.Deployment().Status)
				},
			}).
			Run(t)

		g := goldie.New(t, goldie.WithFixtureDir("testdata"), goldie.WithNameSuffix(".golden"))
		g.Assert(t, "deploy_simple", out.Bytes())
	})

	t.Run("interactive checklist", func(t *testing.T) {
		model := NewDeployView(t.Context(), DeployConfig{
			DisplayConfig: ui.DisplayConfig{IsInteractive: true},
			Client:        apimock.NewMockClient(t),
			Target:        functionTarget(),
		})

		uitesting.NewTestHarness(t, model).
			Step(uitesting.TestStep[*DeployView]{
				Name: "packaging",
				ViewAssert: func(t *testing.T, view string) {
					assert.Contains(t, view, "Packaging ....")
					assert.Contains(t, view, "- Upload code")
					assert.NotContains(t, view, "Build")
				},
			}).
			Step(uitesting.TestStep[*DeployView]{Name: "packaged", Msg: packagedMsg{size: 12 * mib, fileCount: 3}}).
			Step(uitesting.TestStep[*DeployView]{
				Name: "uploading",
				Msg:  progressAt(6*mib, 12*mib),
				ViewAssert: func(t *testing.T, view string) {
					assert.Contains(t, view, "✓ Packaged 3 files (12MiB)")
					assert.Contains(t, view, " 50%  6MiB/12MiB")
				},
			}).
			Step(uitesting.TestStep[*DeployView]{
				Name: "created without waiting",
				Msg:  deploymentCreatedMsg{deployment: &api.Deployment{ID: "d1", Status: api.DeploymentStatusWaiting}},
				ViewAssert: func(t *testing.T, view string) {
					assert.Contains(t, view, "✓ Deployment d1 waiting")
				},
				ModelAssert: func(t *testing.T, m *DeployView) {
					assert.Equal(t, StateSuccess, m.state)
				},
			}).
			Run(t)
	})

	t.Run("failed build shows logs", func(t *testing.T) {
		model := NewDeployView(t.Context(), DeployConfig{
			DisplayConfig: ui.DisplayConfig{IsInteractive: true},
			Client:        apimock.NewMockClient(t),
			Target:        Target{Kind: KindSite, ResourceID: "site-1", Root: "."},
			Wait:          true,
		})

		uitesting.NewTestHarness(t, model).
			Step(uitesting.TestStep[*DeployView]{Name: "packaged", Msg: packagedMsg{size: 1024, fileCount: 1}}).
			Step(uitesting.TestStep[*DeployView]{
				Name: "created failed",
				Msg: deploymentCreatedMsg{deployment: &api.Deployment{
					ID:        "d2",
					Status:    api.DeploymentStatusFailed,
					BuildLogs: "npm ERR! missing script: build\n",
				}},
				ViewAssert: func(t *testing.T, view string) {
					assert.Contains(t, view, "deployment d2 failed")
					assert.Contains(t, view, "npm ERR! missing script: build")
				},
				ModelAssert: func(t *testing.T, m *DeployView) {
					var uiErr *ui.UIError
					require.ErrorAs(t, m.Error(), &uiErr)
					assert.Equal(t, ui.ErrorTypeAPI, uiErr.Type)
				},
			}).
			Run(t)
	})

	t.Run("upload failure suggests resuming", func(t *testing.T) {
		var out bytes.Buffer
		model := NewDeployView(t.Context(), DeployConfig{
			DisplayConfig: ui.DisplayConfig{IsInteractive: false, DisableAnimation: true},
			Client:        apimock.NewMockClient(t),
			Target:        functionTarget(),
			Output:        &out,
		})

		uitesting.NewTestHarness(t, model).
			Step(uitesting.TestStep[*DeployView]{Name: "packaged", Msg: packagedMsg{size: 12 * mib, fileCount: 3}}).
			Step(uitesting.TestStep[*DeployView]{Name: "first chunk", Msg: progressAt(5*mib, 12*mib)}).
			Step(uitesting.TestStep[*DeployView]{
				Name: "chunk failed",
				Msg:  deploymentCreatedMsg{err: &apperr.APIError{Code: 503, Message: "unavailable"}},
				ModelAssert: func(t *testing.T, m *DeployView) {
					assert.Equal(t, StateError, m.state)
					var uiErr *ui.UIError
					require.ErrorAs(t, m.Error(), &uiErr)
					assert.True(t, uiErr.SilentExit)
					assert.Contains(t, out.String(), "resume with --upload-id upl-1")
				},
			}).
			Run(t)
	})

	t.Run("cancel", func(t *testing.T) {
		model := NewDeployView(t.Context(), DeployConfig{
			DisplayConfig: ui.DisplayConfig{IsInteractive: true},
			Client:        apimock.NewMockClient(t),
			Target:        functionTarget(),
		})

		uitesting.NewTestHarness(t, model).
			Step(uitesting.TestStep[*DeployView]{
				Name: "ctrl+c",
				Msg:  tea.KeyMsg{Type: tea.KeyCtrlC},
				ViewAssert: func(t *testing.T, view string) {
					assert.Contains(t, view, "Deployment cancelled")
				},
				ModelAssert: func(t *testing.T, m *DeployView) {
					var uiErr *ui.UIError
					require.ErrorAs(t, m.Error(), &uiErr)
					assert.Equal(t, ui.ErrorTypeUserCancelled, uiErr.Type)
				},
			}).
			Run(t)
	})
}

func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func TestDeployView_PackageCode(t *testing.T) {
	tcs := []struct {
		name      string
		files     map[string]string
		ignore    []string
		sizeLimit int64
		wantFiles int
		wantWarn  string
		wantErr   string
	}{
		{
			name:      "packages sources",
			files:     map[string]string{"main.py": "print(1)", "lib/util.py": "x = 1"},
			wantFiles: 2,
		},
		{
			name:      "warns about dev folders",
			files:     map[string]string{"main.py": "print(1)", ".venv/bin/python": "#!"},
			wantFiles: 2,
			wantWarn:  "including .venv",
		},
		{
			name:    "everything ignored",
			files:   map[string]string{"main.py": "print(1)"},
			ignore:  []string{"*.py"},
			wantErr: "no files to deploy",
		},
		{
			name:      "over size limit",
			files:     map[string]string{"main.py": string(bytes.Repeat([]byte("a"), 4096))},
			sizeLimit: 10,
			wantErr:   "over the",
		},
	}
	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			root := writeProject(t, tc.files)
			target := functionTarget()
			target.Root = root
			target.Ignore = tc.ignore
			m := NewDeployView(t.Context(), DeployConfig{Target: target, SizeLimit: tc.sizeLimit})

			msg := m.packageCode()
			if tc.wantErr != "" {
				uiErr, ok := msg.(*ui.UIError)
				require.True(t, ok, "expected *ui.UIError, got %T", msg)
				assert.Contains(t, uiErr.Error(), tc.wantErr)
				return
			}

			packaged, ok := msg.(packagedMsg)
			require.True(t, ok, "expected packagedMsg, got %T", msg)
			t.Cleanup(func() { _ = os.RemoveAll(filepath.Dir(packaged.archivePath)) })
			assert.Equal(t, tc.wantFiles, packaged.fileCount)
			assert.FileExists(t, packaged.archivePath)
			assert.Positive(t, packaged.size)
			if tc.wantWarn != "" {
				require.Len(t, packaged.warnings, 1)
				assert.Contains(t, packaged.warnings[0], tc.wantWarn)
			} else {
				assert.Empty(t, packaged.warnings)
			}
		})
	}
}

func TestDeployView_EndToEnd(t *testing.T) {
	root := writeProject(t, map[string]string{"index.js": "export default () => 'ok'"})

	client := apimock.NewMockClient(t)
	client.On("CreateSiteDeployment", apimock.AnyContext, mock.MatchedBy(func(p api.CreateSiteDeploymentParams) bool {
		return p.SiteID == "site-1" && p.Code != nil && p.Activate &&
			p.BuildCommand != nil && *p.BuildCommand == "npm run build" && p.InstallCommand == nil
	})).Return(&api.Deployment{ID: "d3", Status: api.DeploymentStatusProcessing}, nil).Once()
	client.On("GetSiteDeployment", apimock.AnyContext, "site-1", "d3").
		Return(&api.Deployment{ID: "d3", Status: api.DeploymentStatusBuilding}, nil).Once()
	client.On("GetSiteDeployment", apimock.AnyContext, "site-1", "d3").
		Return(&api.Deployment{ID: "d3", Status: api.DeploymentStatusReady}, nil).Once()

	model := NewDeployView(t.Context(), DeployConfig{
		DisplayConfig: ui.DisplayConfig{IsInteractive: false, DisableAnimation: true},
		Client:        client,
		Target: Target{
			Kind:         KindSite,
			ResourceID:   "site-1",
			Root:         root,
			Activate:     true,
			BuildCommand: "npm run build",
		},
		Wait:         true,
		PollInterval: time.Millisecond,
		Output:       io.Discard,
	})

	p := tea.NewProgram(model,
		tea.WithContext(t.Context()),
		tea.WithoutRenderer(),
		tea.WithInput(nil),
		tea.WithOutput(io.Discard),
		tea.WithoutSignalHandler(),
	)
	final, err := p.Run()
	require.NoError(t, err)

	m := final.(*DeployView)
	require.NoError(t, m.Error())
	assert.Equal(t, StateSuccess, m.state)
	assert.Equal(t, "d3", m.Deployment().ID)
	assert.Empty(t, m.archivePath, "archive should be cleaned up")
}

func TestTail(t *testing.T) {
	assert.Equal(t, "b\nc", tail("a\nb\nc\n", 2))
	assert.Equal(t, "only", tail("only", 5))
	assert.Empty(t, tail("", 3))
}

func TestDeployView_StatusErrors(t *testing.T) {
	buildingView := func(t *testing.T) *DeployView {
		m := NewDeployView(t.Context(), DeployConfig{
			DisplayConfig: ui.DisplayConfig{IsInteractive: false, DisableAnimation: true},
			Client:        apimock.NewMockClient(t),
			Target:        functionTarget(),
			Wait:          true,
			PollInterval:  time.Hour,
			Output:        io.Discard,
		})
		m.state = StateBuilding
		m.deployment = &api.Deployment{ID: "d1", Status: api.DeploymentStatusBuilding}
		return m
	}

	tcs := []struct {
		name          string
		err           error
		failures      int
		expectedQuit  bool
		expectedError string
	}{
		{name: "not found stops polling", err: &apperr.APIError{Code: 404}, failures: 1, expectedQuit: true, expectedError: "failed to get deployment d1"},
		{name: "unauthorized stops polling", err: &apperr.APIError{Code: 401, Message: "jwt expired"}, failures: 1, expectedQuit: true, expectedError: "jwt expired"},
		{name: "server error is retried", err: &apperr.APIError{Code: 503}, failures: 1},
		{name: "network error is retried", err: &apperr.TransportError{Method: "GET", URL: "/deployments/d1", Err: io.ErrUnexpectedEOF}, failures: maxPollFailures - 1},
		{name: "retries are capped", err: &apperr.APIError{Code: 502}, failures: maxPollFailures, expectedQuit: true, expectedError: "after 5 attempts"},
	}
	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			m := buildingView(t)

			var cmd tea.Cmd
			for range tc.failures {
				_, cmd = m.Update(deploymentStatusMsg{err: tc.err})
				require.NotNil(t, cmd)
			}

			if !tc.expectedQuit {
				assert.NoError(t, m.Error())
				assert.Equal(t, StateBuilding, m.state)
				return
			}
			assert.IsType(t, tea.QuitMsg{}, cmd())
			assert.Equal(t, StateError, m.state)
			require.ErrorContains(t, m.Error(), tc.expectedError)
			var uiErr *ui.UIError
			require.ErrorAs(t, m.Error(), &uiErr)
			assert.Equal(t, ui.ErrorTypeAPI, uiErr.Type)
		})
	}

	t.Run("a successful check resets the failure count", func(t *testing.T) {
		m := buildingView(t)
		for range maxPollFailures - 1 {
			m.Update(deploymentStatusMsg{err: &apperr.APIError{Code: 500}})
		}
		m.Update(deploymentStatusMsg{deployment: &api.Deployment{ID: "d1", Status: api.DeploymentStatusBuilding}})
		_, cmd := m.Update(deploymentStatusMsg{err: &apperr.APIError{Code: 500}})
		require.NotNil(t, cmd)
		assert.NoError(t, m.Error())
	})
}
