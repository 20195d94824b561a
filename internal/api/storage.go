package api

import (
	"context"
	"log/slog"

	"github.com/cumulus-dev/cumulus/internal/transport"
	"github.com/cumulus-dev/cumulus/internal/upload"
)

func (c *client) GetBucket(ctx context.Context, bucketID string) (*Bucket, error) {
	if err := requireAll(param{"bucketId", bucketID}); err != nil {
		return nil, err
	}
	var bucket Bucket
	if err := c.call(ctx, transport.MethodGet, pathf("/storage/buckets/%s", bucketID), nil, &bucket); err != nil {
		return nil, err
	}
	return &bucket, nil
}

// CreateFile uploads a new file. Files larger than the chunk size are sent in
// sequential chunks; pass the UploadID of a failed attempt to resume it.
func (c *client) CreateFile(ctx context.Context, params CreateFileParams) (*File, error) {
	if err := validateParams(params); err != nil {
		return nil, err
	}

	slog.Info("Uploading file",
		"bucketId", params.BucketID,
		"fileId", params.FileID,
		"filename", params.File.Filename(),
		"size", params.File.Size(),
	)

	var file File
	err := c.upload(ctx, upload.Request{
		Method: transport.MethodPost,
		Path:   pathf("/storage/buckets/%s/files", params.BucketID),
		Params: compact(map[string]any{
			"fileId":      params.FileID,
			"permissions": params.Permissions,
		}),
		FileParam:  "file",
		Payload:    params.File,
		UploadID:   params.UploadID,
		OnProgress: params.OnProgress,
	}, &file)
	if err != nil {
		return nil, err
	}
	return &file, nil
}

func (c *client) GetFile(ctx context.Context, bucketID, fileID string) (*File, error) {
	if err := requireAll(param{"bucketId", bucketID}, param{"fileId", fileID}); err != nil {
		return nil, err
	}
	var file File
	if err := c.call(ctx, transport.MethodGet, pathf("/storage/buckets/%s/files/%s", bucketID, fileID), nil, &file); err != nil {
		return nil, err
	}
	return &file, nil
}

func (c *client) ListFiles(ctx context.Context, bucketID string, queries []string, search string) (*FileList, error) {
	if err := requireAll(param{"bucketId", bucketID}); err != nil {
		return nil, err
	}
	var list FileList
	if err := c.call(ctx, transport.MethodGet, pathf("/storage/buckets/%s/files", bucketID), listParams(queries, search), &list); err != nil {
		return nil, err
	}
	return &list, nil
}

func (c *client) UpdateFile(ctx context.Context, params UpdateFileParams) (*File, error) {
	if err := validateParams(params); err != nil {
		return nil, err
	}
	var file File
	err := c.call(ctx, transport.MethodPut, pathf("/storage/buckets/%s/files/%s", params.BucketID, params.FileID), compact(map[string]any{
		"name":        params.Name,
		"permissions": params.Permissions,
	}), &file)
	if err != nil {
		return nil, err
	}
	return &file, nil
}

func (c *client) DeleteFile(ctx context.Context, bucketID, fileID string) error {
	if err := requireAll(param{"bucketId", bucketID}, param{"fileId", fileID}); err != nil {
		return err
	}
	return c.call(ctx, transport.MethodDelete, pathf("/storage/buckets/%s/files/%s", bucketID, fileID), nil, nil)
}

// GetFileDownload returns the raw file contents.
func (c *client) GetFileDownload(ctx context.Context, bucketID, fileID string) ([]byte, error) {
	if err := requireAll(param{"bucketId", bucketID}, param{"fileId", fileID}); err != nil {
		return nil, err
	}
	return c.raw(ctx, pathf("/storage/buckets/%s/files/%s/download", bucketID, fileID), nil)
}
