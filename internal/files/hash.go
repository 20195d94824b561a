package files

import (
	"crypto/md5" //nolint:gosec // matches the server file signature, not used for security
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrSignatureMismatch is returned when a local file does not match the
// signature the server recorded for it.
var ErrSignatureMismatch = errors.New("signature mismatch")

// HashFile computes the MD5 hash of a file and returns it as a hex-encoded string
func HashFile(filepath string) (string, error) {
	file, err := os.Open(filepath) //nolint:gosec // path supplied by the user
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close() //nolint:errcheck // read-only

	return HashReader(file)
}

// HashReader computes the MD5 hash of everything read from r.
func HashReader(r io.Reader) (string, error) {
	hash := md5.New() //nolint:gosec // see import
	if _, err := io.Copy(hash, r); err != nil {
		return "", fmt.Errorf("failed to compute hash: %w", err)
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}

// VerifySignature checks a local file against a server file signature.
func VerifySignature(filepath string, signature string) error {
	actual, err := HashFile(filepath)
	if err != nil {
		return err
	}
	if actual != signature {
		return fmt.Errorf("%w: expected %s, got %s", ErrSignatureMismatch, signature, actual)
	}
	return nil
}
