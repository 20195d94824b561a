// Package payload provides uniform, size-bounded access to upload content,
// whether it lives in memory or in a file on disk.
package payload

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/cumulus-dev/cumulus/internal/apperr"
	"github.com/gabriel-vasile/mimetype"
)

// sniffLen is how many leading bytes are inspected for MIME detection
const sniffLen = 3072

// Options describes the backing store of a Payload. Exactly one of Data or Path
// must be set.
type Options struct {
	Data     []byte
	Path     string
	Filename string
}

// Payload is an immutable upload source with a known size.
// File ownership stays with the caller: a Payload never deletes its file.
type Payload struct {
	data     []byte
	path     string
	filename string
	size     int64
}

// New builds a Payload from explicit options.
func New(opts Options) (*Payload, error) {
	switch {
	case opts.Data == nil && opts.Path == "":
		return nil, apperr.InvalidArgument("payload needs either a file path or in-memory data")
	case opts.Data != nil && opts.Path != "":
		return nil, apperr.InvalidArgument("payload cannot have both a file path and in-memory data")
	case opts.Path != "":
		return FromFile(opts.Path, opts.Filename)
	default:
		return FromBinary(opts.Data, opts.Filename)
	}
}

// FromFile builds a file-backed Payload. The file is not read, only stat'ed.
// An empty filename defaults to the base name of path.
func FromFile(path, filename string) (*Payload, error) {
	if path == "" {
		return nil, apperr.InvalidArgument("payload file path is empty")
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperr.NotFound(fmt.Sprintf("payload file %s", path), err)
		}
		return nil, fmt.Errorf("failed to stat payload file: %w", err)
	}
	if info.IsDir() {
		return nil, apperr.InvalidArgument("payload path %s is a directory", path)
	}
	if filename == "" {
		filename = filepath.Base(path)
	}
	return &Payload{
		path:     path,
		filename: filename,
		size:     info.Size(),
	}, nil
}

// FromBinary builds a memory-backed Payload. The slice is retained, not copied,
// and must not be modified while the Payload is in use.
func FromBinary(data []byte, filename string) (*Payload, error) {
	if data == nil {
		return nil, apperr.InvalidArgument("payload data is nil")
	}
	return &Payload{
		data:     data,
		filename: filename,
		size:     int64(len(data)),
	}, nil
}

// FromString builds a memory-backed Payload holding the UTF-8 bytes of s.
func FromString(s string) (*Payload, error) {
	return FromBinary([]byte(s), "")
}

// FromJSON serializes v to JSON and wraps the result.
func FromJSON(v any) (*Payload, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, apperr.InvalidArgument("payload value is not JSON-serializable: %v", err)
	}
	return FromBinary(b, "")
}

// Size returns the total payload size in bytes.
func (p *Payload) Size() int64 { return p.size }

// Filename returns the filename sent with multipart requests.
func (p *Payload) Filename() string { return p.filename }

// Path returns the backing file path, or "" for memory-backed payloads.
func (p *Payload) Path() string { return p.path }

// IsFile reports whether the payload is backed by a file on disk.
func (p *Payload) IsFile() bool { return p.path != "" }

// ToBinary returns the bytes in [offset, offset+length). A negative length
// reads to the end of the payload. File-backed payloads only read the requested
// range. The returned slice is always a fresh copy.
func (p *Payload) ToBinary(offset, length int64) ([]byte, error) {
	if offset < 0 || offset > p.size {
		return nil, apperr.InvalidArgument("offset %d out of range [0, %d]", offset, p.size)
	}
	if length < 0 {
		length = p.size - offset
	}
	if offset+length > p.size {
		return nil, apperr.InvalidArgument("range [%d, %d) exceeds payload size %d", offset, offset+length, p.size)
	}

	if !p.IsFile() {
		out := make([]byte, length)
		copy(out, p.data[offset:offset+length])
		return out, nil
	}

	f, err := os.Open(p.path) //nolint:gosec // Path supplied by the caller who built the payload
	if err != nil {
		return nil, fmt.Errorf("failed to open payload file: %w", err)
	}
	//nolint:errcheck // Deferred close, error not actionable
	defer f.Close()

	out := make([]byte, length)
	if _, err := io.ReadFull(io.NewSectionReader(f, offset, length), out); err != nil {
		return nil, fmt.Errorf("failed to read payload range [%d, %d): %w", offset, offset+length, err)
	}
	return out, nil
}

// Bytes returns the whole payload.
func (p *Payload) Bytes() ([]byte, error) {
	return p.ToBinary(0, -1)
}

// ToString returns the payload as UTF-8 text.
func (p *Payload) ToString() (string, error) {
	b, err := p.Bytes()
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", apperr.InvalidArgument("payload is not valid UTF-8")
	}
	return string(b), nil
}

// ToJSON decodes the payload into out.
func (p *Payload) ToJSON(out any) error {
	b, err := p.Bytes()
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("failed to parse payload as JSON: %w", err)
	}
	return nil
}

// ToFile writes the payload to dst, creating parent directories as needed.
func (p *Payload) ToFile(dst string) error {
	if dst == "" {
		return apperr.InvalidArgument("destination path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil { //nolint:gosec // Destination chosen by the caller
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	if !p.IsFile() {
		if err := os.WriteFile(dst, p.data, 0o644); err != nil { //nolint:gosec // Destination chosen by the caller
			return fmt.Errorf("failed to write payload: %w", err)
		}
		return nil
	}

	src, err := os.Open(p.path) //nolint:gosec // Path supplied by the caller who built the payload
	if err != nil {
		return fmt.Errorf("failed to open payload file: %w", err)
	}
	//nolint:errcheck // Deferred close, error not actionable
	defer src.Close()

	out, err := os.Create(dst) //nolint:gosec // Destination chosen by the caller
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}
	if _, err := io.Copy(out, io.LimitReader(src, p.size)); err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to copy payload: %w", err)
	}
	return out.Close()
}

// ContentType sniffs the MIME type from the leading bytes of the payload.
func (p *Payload) ContentType() string {
	n := p.size
	if n > sniffLen {
		n = sniffLen
	}
	head, err := p.ToBinary(0, n)
	if err != nil {
		return "application/octet-stream"
	}
	return mimetype.Detect(head).String()
}
