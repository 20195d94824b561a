package version

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	goversion "github.com/hashicorp/go-version"
)

const (
	// only check once per day
	cacheDuration = 24 * time.Hour

	cacheFileName = "version_cache.json"
)

// Cache stores the last version check result
type Cache struct {
	LatestVersion string    `json:"latestVersion"`
	CheckedAt     time.Time `json:"checkedAt"`
}

// release is the subset of a GitHub release response we read
type release struct {
	TagName string `json:"tag_name"`
	HTMLURL string `json:"html_url"`
}

// Checker compares the running build against the latest published release.
type Checker struct {
	ReleasesURL string
	CacheDir    string
	Current     string
	HTTPClient  *http.Client
	Now         func() time.Time
}

// NewChecker returns a Checker for the running binary.
func NewChecker(releasesURL, cacheDir string) *Checker {
	return &Checker{
		ReleasesURL: releasesURL,
		CacheDir:    cacheDir,
		Current:     Version,
		HTTPClient:  &http.Client{Timeout: 3 * time.Second},
		Now:         time.Now,
	}
}

// CheckForUpdate returns the latest release tag and whether it is newer than
// the running build. Network failures are swallowed so a version check never
// fails a command.
func (c *Checker) CheckForUpdate(ctx context.Context) (latest string, updateAvailable bool, err error) {
	if c.Current == "dev" {
		return "", false, nil
	}

	if cached, ok := c.cached(); ok {
		return compareVersions(c.Current, cached)
	}

	latest, err = c.fetchLatest(ctx)
	if err != nil {
		slog.Debug("Version check failed", "error", err)
		return "", false, nil
	}
	c.store(latest)

	return compareVersions(c.Current, latest)
}

func compareVersions(currentVersion, latestVersion string) (string, bool, error) {
	current, err := goversion.NewVersion(strings.TrimPrefix(currentVersion, "v"))
	if err != nil {
		return latestVersion, false, fmt.Errorf("invalid current version: %w", err)
	}
	latest, err := goversion.NewVersion(strings.TrimPrefix(latestVersion, "v"))
	if err != nil {
		return latestVersion, false, fmt.Errorf("invalid latest version: %w", err)
	}
	return latestVersion, latest.GreaterThan(current), nil
}

func (c *Checker) fetchLatest(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.ReleasesURL, nil)
	if err != nil {
		return "", err
	}
	// GitHub rejects requests without a User-Agent
	req.Header.Set("User-Agent", "cumulus-cli")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close() //nolint:errcheck // read-only

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("releases API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	var r release
	if err := json.Unmarshal(body, &r); err != nil {
		return "", err
	}
	if r.TagName == "" {
		return "", fmt.Errorf("release has no tag")
	}
	return r.TagName, nil
}

func (c *Checker) cachePath() string {
	return filepath.Join(c.CacheDir, cacheFileName)
}

func (c *Checker) cached() (string, bool) {
	data, err := os.ReadFile(c.cachePath()) //nolint:gosec // cache file in the config dir
	if err != nil {
		return "", false
	}
	var cache Cache
	if err := json.Unmarshal(data, &cache); err != nil {
		return "", false
	}
	if c.Now().Sub(cache.CheckedAt) > cacheDuration {
		return "", false
	}
	return cache.LatestVersion, true
}

// store is best effort; a failed write only means another check tomorrow.
func (c *Checker) store(latestVersion string) {
	data, err := json.Marshal(Cache{LatestVersion: latestVersion, CheckedAt: c.Now()})
	if err != nil {
		return
	}
	if err := os.MkdirAll(c.CacheDir, 0o755); err != nil { //nolint:gosec // config dir
		return
	}
	_ = os.WriteFile(c.cachePath(), data, 0o644) //nolint:gosec // not sensitive
}

// PrintUpdateNotification writes an update hint to w when a newer release
// exists.
func (c *Checker) PrintUpdateNotification(ctx context.Context, w io.Writer) {
	latest, updateAvailable, err := c.CheckForUpdate(ctx)
	if err != nil || !updateAvailable {
		return
	}

	fmt.Fprintf(w, "\nA new version of cumulus is available: %s (you have %s)\n", latest, c.Current)
	fmt.Fprintf(w, "Update with: go install github.com/cumulus-dev/cumulus/cmd/cumulus@latest\n")
	fmt.Fprintf(w, "To disable these notifications: cumulus config set skipversioncheck true\n\n")
}
