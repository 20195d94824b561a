package files

import (
	"io/fs"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultIgnore is applied when a deployment declares no ignore patterns.
var DefaultIgnore = []string{".git/**", "node_modules/**", ".DS_Store"}

// DetermineIncludes walks root and returns the slash-separated paths, relative
// to root, of every regular file not matched by an ignore pattern. Patterns
// without a slash match the base name at any depth, like .gitignore.
func DetermineIncludes(root string, ignore []string) ([]string, error) {
	if len(ignore) == 0 {
		ignore = DefaultIgnore
	}
	patterns := normalizePatterns(ignore)

	var fileList []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if ignoresDir(rel, patterns) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || ignored(rel, patterns) {
			return nil
		}
		fileList = append(fileList, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.Sort(fileList)
	return fileList, nil
}

// normalizePatterns cleans up the patterns for consistent matching
func normalizePatterns(patterns []string) []string {
	var normalized []string
	for _, pattern := range patterns {
		p := strings.TrimSpace(filepath.ToSlash(pattern))
		if p == "" || strings.HasPrefix(p, "#") {
			continue
		}
		p = strings.TrimPrefix(p, "./")
		// "dist/" ignores everything below dist
		if strings.HasSuffix(p, "/") {
			p += "**"
		}
		normalized = append(normalized, p)
	}
	return normalized
}

func ignored(rel string, patterns []string) bool {
	for _, pattern := range patterns {
		if matchesGlob(rel, pattern) {
			return true
		}
		if !strings.Contains(pattern, "/") && matchesGlob(path.Base(rel), pattern) {
			return true
		}
	}
	return false
}

// ignoresDir reports whether a whole directory can be pruned, i.e. a pattern
// like "node_modules/**" or "build" names it.
func ignoresDir(rel string, patterns []string) bool {
	for _, pattern := range patterns {
		dirPattern, recursive := strings.CutSuffix(pattern, "/**")
		if !recursive {
			dirPattern = pattern
		}
		if matchesGlob(rel, dirPattern) {
			return true
		}
		if !strings.Contains(dirPattern, "/") && matchesGlob(path.Base(rel), dirPattern) {
			return true
		}
	}
	return false
}

// matchesGlob checks if path matches a glob-style pattern (e.g., **/*.py)
func matchesGlob(p, pattern string) bool {
	matched, err := doublestar.Match(pattern, p)
	if err != nil {
		return false
	}
	return matched
}

// DetectDevFolders returns top-level folders in fileList that usually should
// not ship with a deployment.
func DetectDevFolders(fileList []string) []string {
	devFolders := []string{"venv", "virtualenv", ".venv", "__pycache__", ".idea", ".vscode"}

	var result []string
	for _, file := range fileList {
		root, _, _ := strings.Cut(file, "/")
		if slices.Contains(devFolders, root) && !slices.Contains(result, root) {
			result = append(result, root)
		}
	}
	return result
}
