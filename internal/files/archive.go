package files

import (
	"archive/tar"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/docker/go-units"
	"github.com/klauspost/compress/gzip"
)

// CreateArchive packs fileList (paths relative to root) into a gzipped tarball
// at outputPath and returns the archive size in bytes.
func CreateArchive(root string, fileList []string, outputPath string) (int64, error) {
	out, err := os.Create(outputPath) //nolint:gosec // temp file created by the CLI
	if err != nil {
		return 0, fmt.Errorf("failed to create archive: %w", err)
	}
	defer out.Close() //nolint:errcheck // closed explicitly on the success path

	gz := gzip.NewWriter(out)
	tw := tar.NewWriter(gz)

	for _, file := range fileList {
		if err := addFileToArchive(tw, root, file); err != nil {
			return 0, fmt.Errorf("failed to add %s to archive: %w", file, err)
		}
	}

	if err := tw.Close(); err != nil {
		return 0, fmt.Errorf("failed to finalize archive: %w", err)
	}
	if err := gz.Close(); err != nil {
		return 0, fmt.Errorf("failed to finalize archive: %w", err)
	}
	info, err := out.Stat()
	if err != nil {
		return 0, fmt.Errorf("failed to stat archive: %w", err)
	}
	if err := out.Close(); err != nil {
		return 0, fmt.Errorf("failed to close archive: %w", err)
	}
	return info.Size(), nil
}

func addFileToArchive(tw *tar.Writer, root, name string) error {
	file, err := os.Open(filepath.Join(root, filepath.FromSlash(name))) //nolint:gosec // file from the user's project
	if err != nil {
		return err
	}
	defer file.Close() //nolint:errcheck // read-only

	info, err := file.Stat()
	if err != nil {
		return err
	}
	header, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return err
	}
	header.Name = name
	header.ModTime = info.ModTime().UTC()
	header.Uname, header.Gname = "", ""

	if err := tw.WriteHeader(header); err != nil {
		return err
	}
	_, err = io.Copy(tw, file)
	return err
}

// ValidateArchiveSize checks an archive against the server's upload limit.
// A limit of zero disables the check. Archives above 80% of the limit return
// a warning.
func ValidateArchiveSize(size, limit int64) (warning string, err error) {
	if limit <= 0 {
		return "", nil
	}
	if size > limit {
		return "", fmt.Errorf("deployment archive is %s, over the %s limit. Add large files to the ignore list",
			units.BytesSize(float64(size)), units.BytesSize(float64(limit)))
	}
	if size > limit/5*4 {
		return fmt.Sprintf("Warning: deployment archive is %s, close to the %s limit.",
			units.BytesSize(float64(size)), units.BytesSize(float64(limit))), nil
	}
	return "", nil
}
