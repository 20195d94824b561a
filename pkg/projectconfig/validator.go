package projectconfig

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/cumulus-dev/cumulus/internal/id"
)

// Validate checks ids and local paths. Relative paths resolve against baseDir.
func Validate(config *ProjectConfig, baseDir string) error {
	seen := map[string]bool{}
	for _, fn := range config.Functions {
		if err := validateID("functions", fn.ID, seen); err != nil {
			return err
		}
		dir, err := validateDir(baseDir, fn.Path, fn.ID)
		if err != nil {
			return err
		}
		if fn.Entrypoint == "" {
			return fmt.Errorf("`entrypoint` is required for function %q", fn.ID)
		}
		if _, err := os.Stat(filepath.Join(dir, fn.Entrypoint)); errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("entrypoint %s not found in %s for function %q", fn.Entrypoint, dir, fn.ID)
		}
	}

	seen = map[string]bool{}
	for _, site := range config.Sites {
		if err := validateID("sites", site.ID, seen); err != nil {
			return err
		}
		if _, err := validateDir(baseDir, site.Path, site.ID); err != nil {
			return err
		}
	}
	return nil
}

func validateID(section, resourceID string, seen map[string]bool) error {
	if resourceID == "" {
		return fmt.Errorf("`id` is required for every [[%s]] entry", section)
	}
	if resourceID == id.Unique() || !id.IsValid(resourceID) {
		return fmt.Errorf("invalid id %q in [[%s]]: use up to 36 characters of a-z, A-Z, 0-9, '.', '-' and '_'", resourceID, section)
	}
	if seen[resourceID] {
		return fmt.Errorf("duplicate id %q in [[%s]]", resourceID, section)
	}
	seen[resourceID] = true
	return nil
}

func validateDir(baseDir, path, resourceID string) (string, error) {
	dir := path
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(baseDir, dir)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return "", fmt.Errorf("path %s for %q: %w", path, resourceID, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("path %s for %q is not a directory", path, resourceID)
	}
	return dir, nil
}
