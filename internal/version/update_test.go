package version

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReleaseServer(t *testing.T, tag string, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "cumulus-cli", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"tag_name":"` + tag + `","html_url":"https://example.com"}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCheckForUpdate(t *testing.T) {
	tcs := []struct {
		name            string
		current         string
		latest          string
		expectedUpdate  bool
		expectedLatest  string
		expectedRequest bool
	}{
		{name: "newer release", current: "v1.2.0", latest: "v1.3.0", expectedUpdate: true, expectedLatest: "v1.3.0", expectedRequest: true},
		{name: "same release", current: "1.3.0", latest: "v1.3.0", expectedUpdate: false, expectedLatest: "v1.3.0", expectedRequest: true},
		{name: "dev build skips", current: "dev", latest: "v9.0.0", expectedUpdate: false, expectedLatest: "", expectedRequest: false},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			var hits atomic.Int32
			srv := newReleaseServer(t, tc.latest, &hits)

			checker := NewChecker(srv.URL, t.TempDir())
			checker.Current = tc.current

			latest, update, err := checker.CheckForUpdate(t.Context())
			require.NoError(t, err)
			assert.Equal(t, tc.expectedUpdate, update)
			assert.Equal(t, tc.expectedLatest, latest)
			assert.Equal(t, tc.expectedRequest, hits.Load() == 1)
		})
	}
}

func TestCheckForUpdate_UsesCache(t *testing.T) {
	var hits atomic.Int32
	srv := newReleaseServer(t, "v2.0.0", &hits)

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	checker := NewChecker(srv.URL, t.TempDir())
	checker.Current = "v1.0.0"
	checker.Now = func() time.Time { return now }

	for range 3 {
		_, update, err := checker.CheckForUpdate(t.Context())
		require.NoError(t, err)
		assert.True(t, update)
	}
	assert.Equal(t, int32(1), hits.Load())

	_, err := os.Stat(filepath.Join(checker.CacheDir, cacheFileName))
	require.NoError(t, err)

	now = now.Add(25 * time.Hour)
	_, _, err = checker.CheckForUpdate(t.Context())
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load())
}

func TestCheckForUpdate_ServerErrorIsSilent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	t.Cleanup(srv.Close)

	checker := NewChecker(srv.URL, t.TempDir())
	checker.Current = "v1.0.0"

	latest, update, err := checker.CheckForUpdate(t.Context())
	require.NoError(t, err)
	assert.False(t, update)
	assert.Empty(t, latest)
}

func TestPrintUpdateNotification(t *testing.T) {
	var hits atomic.Int32
	srv := newReleaseServer(t, "v1.1.0", &hits)

	checker := NewChecker(srv.URL, t.TempDir())
	checker.Current = "v1.0.0"

	var buf bytes.Buffer
	checker.PrintUpdateNotification(t.Context(), &buf)
	assert.Contains(t, buf.String(), "v1.1.0 (you have v1.0.0)")
}
