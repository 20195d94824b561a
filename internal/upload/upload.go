// Package upload sends large payloads to the API in sequential, resumable
// chunks. Every large-payload endpoint (storage files, function code, site
// code) goes through the same Engine; only the path and parameters differ.
package upload

import (
	"context"
	"fmt"
	"log/slog"
	"maps"

	"github.com/cumulus-dev/cumulus/internal/apperr"
	"github.com/cumulus-dev/cumulus/internal/payload"
	"github.com/cumulus-dev/cumulus/internal/transport"
)

// DefaultChunkSize is the size of every chunk except the last. The server
// rejects multipart chunks smaller than this, so only tests should lower it.
const DefaultChunkSize int64 = 5 * 1024 * 1024

// Caller performs one API request. *transport.Client satisfies it.
type Caller interface {
	Call(ctx context.Context, req transport.Request) (*transport.Response, error)
}

// Engine drives chunked uploads. It holds no per-upload state and is safe to
// share between concurrent uploads of different payloads.
type Engine struct {
	caller    Caller
	chunkSize int64
}

// Option configures an Engine.
type Option func(*Engine)

// WithChunkSize overrides DefaultChunkSize. Non-positive values are ignored.
func WithChunkSize(n int64) Option {
	return func(e *Engine) {
		if n > 0 {
			e.chunkSize = n
		}
	}
}

// New returns an Engine sending requests through caller.
func New(caller Caller, opts ...Option) *Engine {
	e := &Engine{caller: caller, chunkSize: DefaultChunkSize}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ChunkSize returns the configured chunk size.
func (e *Engine) ChunkSize() int64 {
	return e.chunkSize
}

// Request is one logical upload.
type Request struct {
	Method  transport.Method
	Path    string
	Headers map[string]string
	// Params are the endpoint's non-file parameters, sent with every chunk.
	Params map[string]any
	// FileParam is the form field that carries the payload bytes.
	FileParam string
	Payload   *payload.Payload
	// UploadID resumes an existing upload session. The engine still sends from
	// offset 0 and the server discards bytes it already holds.
	UploadID   string
	OnProgress ProgressFunc
}

func (r Request) validate() error {
	switch {
	case r.Path == "":
		return apperr.InvalidArgument("upload path is empty")
	case r.FileParam == "":
		return apperr.InvalidArgument("upload file parameter name is empty")
	case r.Payload == nil:
		return apperr.InvalidArgument("missing required parameter: %q", r.FileParam)
	}
	return nil
}

// Upload sends req.Payload and returns the final response, which holds the
// created resource. Any error aborts the upload and is returned unchanged;
// failed chunks are not retried here.
func (e *Engine) Upload(ctx context.Context, req Request) (*transport.Response, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	onProgress := req.OnProgress
	if onProgress == nil {
		onProgress = NopProgress
	}

	size := req.Payload.Size()
	if size <= e.chunkSize {
		return e.uploadSingle(ctx, req, onProgress)
	}

	uploadID := req.UploadID
	var offset int64
	var resp *transport.Response

	for offset < size {
		length := min(e.chunkSize, size-offset)
		chunk, err := req.Payload.ToBinary(offset, length)
		if err != nil {
			return nil, fmt.Errorf("failed to read chunk at offset %d: %w", offset, err)
		}

		headers := maps.Clone(req.Headers)
		if headers == nil {
			headers = map[string]string{}
		}
		headers[transport.HeaderContentType] = transport.ContentTypeMultipart
		headers[transport.HeaderContentRange] = ContentRange(offset, int64(len(chunk)), size)
		if uploadID != "" {
			headers[transport.HeaderUploadID] = uploadID
		}

		slog.Debug("Uploading chunk",
			"path", req.Path,
			"uploadId", uploadID,
			"offset", offset,
			"length", len(chunk),
			"size", size,
		)

		resp, err = e.caller.Call(ctx, transport.Request{
			Method:  req.Method,
			Path:    req.Path,
			Headers: headers,
			Params:  chunkParams(req, chunk),
		})
		if err != nil {
			slog.Error("Chunk upload failed", "path", req.Path, "uploadId", uploadID, "offset", offset, "error", err)
			return nil, err
		}

		if uploadID == "" {
			uploadID = responseID(resp)
		}
		offset += int64(len(chunk))

		if err := onProgress(newProgress(uploadID, offset, size, e.chunkSize)); err != nil {
			return nil, fmt.Errorf("upload aborted by progress observer: %w", err)
		}
	}

	slog.Info("Upload complete", "path", req.Path, "uploadId", uploadID, "size", size)
	return resp, nil
}

func (e *Engine) uploadSingle(ctx context.Context, req Request, onProgress ProgressFunc) (*transport.Response, error) {
	data, err := req.Payload.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to read payload: %w", err)
	}

	headers := maps.Clone(req.Headers)
	if headers == nil {
		headers = map[string]string{}
	}
	headers[transport.HeaderContentType] = transport.ContentTypeMultipart

	slog.Debug("Uploading payload in a single request", "path", req.Path, "size", len(data))

	resp, err := e.caller.Call(ctx, transport.Request{
		Method:  req.Method,
		Path:    req.Path,
		Headers: headers,
		Params:  chunkParams(req, data),
	})
	if err != nil {
		return nil, err
	}

	size := int64(len(data))
	if err := onProgress(newProgress(responseID(resp), size, size, e.chunkSize)); err != nil {
		return nil, fmt.Errorf("upload aborted by progress observer: %w", err)
	}
	return resp, nil
}

// chunkParams copies the endpoint parameters and puts the chunk bytes in the
// file field under the payload's original filename.
func chunkParams(req Request, chunk []byte) map[string]any {
	params := make(map[string]any, len(req.Params)+1)
	maps.Copy(params, req.Params)
	params[req.FileParam] = transport.FilePart{
		Filename: req.Payload.Filename(),
		Data:     chunk,
	}
	return params
}

// ContentRange formats the Content-Range header for length bytes at offset.
func ContentRange(offset, length, size int64) string {
	return fmt.Sprintf("bytes %d-%d/%d", offset, offset+length-1, size)
}

func responseID(resp *transport.Response) string {
	var body struct {
		ID string `json:"$id"`
	}
	if err := resp.Decode(&body); err != nil {
		slog.Warn("Upload response is not a JSON object", "error", err)
		return ""
	}
	return body.ID
}
