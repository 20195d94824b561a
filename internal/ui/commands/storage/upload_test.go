package storage

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

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

//go:generate go test -v -run TestUploadView -update

const mib = 1024 * 1024

func twoFiles() filesPreparedMsg {
	return filesPreparedMsg{results: []UploadResult{
		{Name: "cat.png", Size: 12 * mib, FileID: "unique()"},
		{Name: "notes.txt", Size: 1024, FileID: "notes"},
	}}
}

func progressAt(id string, sent, size, chunk int64) upload.Progress {
	return upload.Progress{
		ID:             id,
		Progress:       float64(sent) / float64(size) * 100,
		SizeUploaded:   sent,
		ChunksTotal:    (size + chunk - 1) / chunk,
		ChunksUploaded: (sent + chunk - 1) / chunk,
	}
}

func TestUploadView(t *testing.T) {
	t.Run("simple mode prints progress every 10%", func(t *testing.T) {
		var out bytes.Buffer
		model := NewUploadView(t.Context(), UploadConfig{
			DisplayConfig: ui.DisplayConfig{IsInteractive: false, DisableAnimation: true},
			Client:        apimock.NewMockClient(t),
			BucketID:      "photos",
			Items:         []UploadItem{{Path: "cat.png"}, {Path: "notes.txt", FileID: "notes"}},
			Output:        &out,
		})

		uitesting.NewTestHarness(t, model).
			Step(uitesting.TestStep[*UploadView]{Name: "prepared", Msg: twoFiles()}).
			Step(uitesting.TestStep[*UploadView]{Name: "cat first chunk", Msg: uploadProgressMsg{index: 0, progress: progressAt("cat", 5*mib, 12*mib, 5*mib)}}).
			Step(uitesting.TestStep[*UploadView]{Name: "notes single request", Msg: uploadProgressMsg{index: 1, progress: progressAt("", 1024, 1024, 5*mib)}}).
			Step(uitesting.TestStep[*UploadView]{Name: "notes done", Msg: fileUploadedMsg{index: 1, file: &api.File{ID: "notes"}}}).
			Step(uitesting.TestStep[*UploadView]{Name: "cat second chunk", Msg: uploadProgressMsg{index: 0, progress: progressAt("cat", 10*mib, 12*mib, 5*mib)}}).
			Step(uitesting.TestStep[*UploadView]{Name: "cat last chunk", Msg: uploadProgressMsg{index: 0, progress: progressAt("cat", 12*mib, 12*mib, 5*mib)}}).
			Step(uitesting.TestStep[*UploadView]{Name: "cat done", Msg: fileUploadedMsg{index: 0, file: &api.File{ID: "cat"}}}).
			Step(uitesting.TestStep[*UploadView]{
				Name: "all done",
				Msg:  allUploadsDoneMsg{},
				ViewAssert: func(t *testing.T, view string) {
					assert.Empty(t, view)
				},
				ModelAssert: func(t *testing.T, m *UploadView) {
					assert.Equal(t, StateSuccess, m.state)
					require.NoError(t, m.Error())
					assert.Equal(t, "cat", m.Results()[0].FileID)
				},
			}).
			Run(t)

		g := goldie.New(t, goldie.WithFixtureDir("testdata"), goldie.WithNameSuffix(".golden"))
		g.Assert(t, "upload_simple", out.Bytes())
	})

	t.Run("interactive mode renders a bar per file", func(t *testing.T) {
		model := NewUploadView(t.Context(), UploadConfig{
			DisplayConfig: ui.DisplayConfig{IsInteractive: true},
			Client:        apimock.NewMockClient(t),
			BucketID:      "photos",
			Items:         []UploadItem{{Path: "cat.png"}, {Path: "notes.txt"}},
		})

		uitesting.NewTestHarness(t, model).
			Step(uitesting.TestStep[*UploadView]{
				Name: "preparing",
				ViewAssert: func(t *testing.T, view string) {
					assert.Contains(t, view, "Preparing files...")
				},
			}).
			Step(uitesting.TestStep[*UploadView]{Name: "prepared", Msg: twoFiles()}).
			Step(uitesting.TestStep[*UploadView]{
				Name: "first chunk",
				Msg:  uploadProgressMsg{index: 0, progress: progressAt("cat", 5*mib, 12*mib, 5*mib)},
				ViewAssert: func(t *testing.T, view string) {
					assert.Contains(t, view, "Uploading to photos (0/2 done)")
					assert.Contains(t, view, " 42%  5MiB/12MiB")
					assert.Contains(t, view, "Press Ctrl+C to cancel")
				},
			}).
			Step(uitesting.TestStep[*UploadView]{Name: "notes done", Msg: fileUploadedMsg{index: 1, file: &api.File{ID: "notes-id"}}}).
			Step(uitesting.TestStep[*UploadView]{Name: "cat done", Msg: fileUploadedMsg{index: 0, file: &api.File{ID: "cat-id"}}}).
			Step(uitesting.TestStep[*UploadView]{
				Name: "all done",
				Msg:  allUploadsDoneMsg{},
				ViewAssert: func(t *testing.T, view string) {
					assert.Contains(t, view, "✓ Uploaded 2 files (12MiB)")
					assert.Contains(t, view, "cat-id")
					assert.Contains(t, view, "notes-id")
					assert.NotContains(t, view, "Ctrl+C")
				},
			}).
			Run(t)
	})

	t.Run("failed upload reports a resume hint", func(t *testing.T) {
		var out bytes.Buffer
		model := NewUploadView(t.Context(), UploadConfig{
			DisplayConfig: ui.DisplayConfig{},
			Client:        apimock.NewMockClient(t),
			BucketID:      "photos",
			Items:         []UploadItem{{Path: "/data/big.iso"}},
			Output:        &out,
		})

		serverErr := &apperr.APIError{Code: 503, Message: "storage unavailable"}
		uitesting.NewTestHarness(t, model).
			Step(uitesting.TestStep[*UploadView]{Name: "prepared", Msg: filesPreparedMsg{results: []UploadResult{{Name: "big.iso", Size: 20 * mib, FileID: "unique()"}}}}).
			Step(uitesting.TestStep[*UploadView]{Name: "chunk", Msg: uploadProgressMsg{index: 0, progress: progressAt("up-1", 5*mib, 20*mib, 5*mib)}}).
			Step(uitesting.TestStep[*UploadView]{Name: "failed", Msg: fileUploadedMsg{index: 0, err: serverErr}}).
			Step(uitesting.TestStep[*UploadView]{
				Name: "done",
				Msg:  allUploadsDoneMsg{},
				ModelAssert: func(t *testing.T, m *UploadView) {
					assert.Equal(t, StateError, m.state)
					var uiErr *ui.UIError
					require.ErrorAs(t, m.Error(), &uiErr)
					assert.Equal(t, ui.ErrorTypeAPI, uiErr.Type)
					assert.ErrorIs(t, m.Error(), serverErr)
					assert.Contains(t, m.Error().Error(), "1 of 1 uploads failed")
				},
			}).
			Run(t)

		assert.Contains(t, out.String(), "  big.iso 20% (5MiB/20MiB)")
		assert.Contains(t, out.String(), "✗ Failed big.iso: API error (503): storage unavailable")
		assert.Contains(t, out.String(), "Resume big.iso with: cumulus storage upload photos /data/big.iso --file-id up-1 --upload-id up-1")
	})

	t.Run("cancel stops the view", func(t *testing.T) {
		model := NewUploadView(t.Context(), UploadConfig{
			DisplayConfig: ui.DisplayConfig{IsInteractive: true},
			Client:        apimock.NewMockClient(t),
			BucketID:      "photos",
			Items:         []UploadItem{{Path: "cat.png"}},
		})

		uitesting.NewTestHarness(t, model).
			Step(uitesting.TestStep[*UploadView]{Name: "prepared", Msg: twoFiles()}).
			Step(uitesting.TestStep[*UploadView]{
				Name: "signal",
				Msg:  ui.SignalCancelMsg{Signal: os.Interrupt},
				ViewAssert: func(t *testing.T, view string) {
					assert.Contains(t, view, "Upload cancelled")
				},
				ModelAssert: func(t *testing.T, m *UploadView) {
					assert.Equal(t, StateError, m.state)
					assert.Error(t, m.ctx.Err())
				},
			}).
			Run(t)
	})
}

func TestUploadView_PrepareFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.bin")
	require.NoError(t, os.WriteFile(path, make([]byte, 2048), 0o644))

	t.Run("stats every file", func(t *testing.T) {
		m := NewUploadView(t.Context(), UploadConfig{Items: []UploadItem{{Path: path}, {Path: path, FileID: "custom"}}})
		msg, ok := m.prepareFiles().(filesPreparedMsg)
		require.True(t, ok)
		require.Len(t, msg.results, 2)
		assert.Equal(t, UploadResult{Name: "a.bin", Size: 2048, FileID: "unique()"}, msg.results[0])
		assert.Equal(t, "custom", msg.results[1].FileID)
	})

	t.Run("missing file", func(t *testing.T) {
		m := NewUploadView(t.Context(), UploadConfig{Items: []UploadItem{{Path: filepath.Join(dir, "nope")}}})
		uiErr, ok := m.prepareFiles().(*ui.UIError)
		require.True(t, ok)
		assert.Equal(t, ui.ErrorTypeFileSystem, uiErr.Type)
	})

	t.Run("no files", func(t *testing.T) {
		m := NewUploadView(t.Context(), UploadConfig{})
		uiErr, ok := m.prepareFiles().(*ui.UIError)
		require.True(t, ok)
		assert.Equal(t, ui.ErrorTypeValidation, uiErr.Type)
	})
}

// syncBuffer guards output written from the program goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestUploadView_RunsUploadsConcurrently(t *testing.T) {
	dir := t.TempDir()
	var items []UploadItem
	for _, name := range []string{"a.bin", "b.bin", "c.bin"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, make([]byte, 4096), 0o644))
		items = append(items, UploadItem{Path: path})
	}

	client := apimock.NewMockClient(t)
	client.On("CreateFile", apimock.AnyContext, mock.MatchedBy(func(p api.CreateFileParams) bool {
		return p.BucketID == "b1" && p.FileID == "unique()" && p.File.Size() == 4096
	})).
		Run(func(args mock.Arguments) {
			params := args.Get(1).(api.CreateFileParams)
			_ = params.OnProgress(progressAt("id-"+params.File.Filename(), 4096, 4096, 5*mib))
		}).
		Return(&api.File{ID: "stored"}, nil).
		Times(3)

	failing := filepath.Join(dir, "d.bin")
	require.NoError(t, os.WriteFile(failing, []byte("x"), 0o644))
	items = append(items, UploadItem{Path: failing, FileID: "bad"})
	client.On("CreateFile", apimock.AnyContext, mock.MatchedBy(func(p api.CreateFileParams) bool {
		return p.FileID == "bad"
	})).Return(nil, errors.New("connection reset")).Once()

	out := &syncBuffer{}
	model := NewUploadView(t.Context(), UploadConfig{
		Client:   client,
		BucketID: "b1",
		Items:    items,
		Output:   out,
	})

	p := tea.NewProgram(model, tea.WithoutRenderer(), tea.WithInput(nil), tea.WithOutput(io.Discard), tea.WithoutSignalHandler())
	final, err := p.Run()
	require.NoError(t, err)

	m := final.(*UploadView)
	require.Error(t, m.Error())
	assert.Contains(t, m.Error().Error(), "1 of 4 uploads failed")
	for _, r := range m.Results()[:3] {
		assert.Equal(t, "stored", r.FileID)
		require.NoError(t, r.Err)
	}
	assert.EqualError(t, m.Results()[3].Err, "connection reset")
	assert.Contains(t, out.String(), "Uploading 4 files to bucket b1")
	assert.Contains(t, out.String(), "✗ Failed d.bin: connection reset")
}
