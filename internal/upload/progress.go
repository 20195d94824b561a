package upload

// Progress is reported once per transmitted chunk.
type Progress struct {
	// ID is the server-assigned upload id, empty until the first response.
	ID             string
	Progress       float64
	SizeUploaded   int64
	ChunksTotal    int64
	ChunksUploaded int64
}

// Done reports whether every byte has been sent.
func (p Progress) Done() bool {
	return p.ChunksUploaded >= p.ChunksTotal
}

// ProgressFunc observes upload progress. It runs on the upload goroutine, so a
// slow observer delays the next chunk. A non-nil error aborts the upload.
type ProgressFunc func(Progress) error

// NopProgress ignores every event.
func NopProgress(Progress) error { return nil }

func newProgress(id string, offset, size, chunkSize int64) Progress {
	uploaded := min(offset, size)
	pct := 100.0
	if size > 0 {
		pct = float64(uploaded) / float64(size) * 100
	}
	return Progress{
		ID:             id,
		Progress:       pct,
		SizeUploaded:   uploaded,
		ChunksTotal:    ceilDiv(size, chunkSize),
		ChunksUploaded: ceilDiv(uploaded, chunkSize),
	}
}

func ceilDiv(n, d int64) int64 {
	if n <= 0 {
		return 0
	}
	return (n + d - 1) / d
}
