package storage

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/cumulus-dev/cumulus/internal/api"
	"github.com/cumulus-dev/cumulus/internal/commands/cmdutil"
	"github.com/cumulus-dev/cumulus/internal/ui"
	uiStorage "github.com/cumulus-dev/cumulus/internal/ui/commands/storage"
	"github.com/spf13/cobra"
)

type uploadOptions struct {
	fileID      string
	uploadID    string
	permissions []string
	concurrency int
}

func newUploadCmd() *cobra.Command {
	var opts uploadOptions

	cmd := &cobra.Command{
		Use:   "upload <bucket> <file>...",
		Short: "Upload files to a bucket",
		Long: `Upload one or more files to a storage bucket. Files are uploaded
concurrently and independently: one failure does not stop the others.

Examples:
  cumulus storage upload photos cat.png dog.png
  cumulus storage upload photos movie.mp4 --file-id movie --permission read:any
  cumulus storage upload photos movie.mp4 --file-id movie --upload-id movie  # resume`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpload(cmd, args[0], args[1:], opts)
		},
	}

	cmd.Flags().StringVar(&opts.fileID, "file-id", "", "File ID (single file only, default: server generated)")
	cmd.Flags().StringVar(&opts.uploadID, "upload-id", "", "Resume an interrupted chunked upload (single file only)")
	cmd.Flags().StringArrayVar(&opts.permissions, "permission", nil, `Permission as action:role, e.g. read:any or update:user:abc (repeatable)`)
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", uiStorage.DefaultConcurrency, "Number of files uploaded at once")

	return cmd
}

func runUpload(cmd *cobra.Command, bucketID string, paths []string, opts uploadOptions) error {
	if len(paths) > 1 && (opts.fileID != "" || opts.uploadID != "") {
		cmd.SilenceUsage = true
		return ui.NewValidationError(errors.New("--file-id and --upload-id need exactly one file"))
	}

	permissions, err := parsePermissions(opts.permissions)
	if err != nil {
		cmd.SilenceUsage = true
		return ui.NewValidationError(err)
	}

	env, err := cmdutil.Setup(cmd)
	if err != nil {
		return err
	}

	bucket, err := env.Client.GetBucket(cmd.Context(), bucketID)
	if err != nil {
		return ui.Classify(fmt.Errorf("failed to get bucket %s: %w", bucketID, err))
	}
	if err := checkFileSizes(paths, bucket.MaximumFileSize); err != nil {
		return ui.NewValidationError(err)
	}

	items := make([]uiStorage.UploadItem, len(paths))
	for i, path := range paths {
		items[i] = uiStorage.UploadItem{Path: path, FileID: opts.fileID, UploadID: opts.uploadID}
	}

	model := uiStorage.NewUploadView(cmd.Context(), uiStorage.UploadConfig{
		DisplayConfig: env.Display,
		Client:        env.Client,
		BucketID:      bucketID,
		Items:         items,
		Permissions:   permissions,
		Concurrency:   opts.concurrency,
		Output:        cmd.OutOrStdout(),
	})

	finalModel, err := ui.RunProgram(model, env.Display, 0)
	if err != nil {
		return err
	}

	m, ok := finalModel.(*uiStorage.UploadView)
	if !ok {
		return ui.NewInternalError(fmt.Errorf("unexpected model type"))
	}

	var uiErr *ui.UIError
	if errors.As(m.Error(), &uiErr) && !uiErr.SilentExit {
		return uiErr
	}
	return nil
}

// checkFileSizes rejects files the bucket would refuse, before any chunk is sent.
func checkFileSizes(paths []string, limit int64) error {
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("cannot read %s: %w", path, err)
		}
		if info.IsDir() {
			return fmt.Errorf("%s is a directory", path)
		}
		if limit > 0 && info.Size() > limit {
			return fmt.Errorf("%s is %s, over the bucket limit of %s",
				path, ui.FormatSize(info.Size()), ui.FormatSize(limit))
		}
	}
	return nil
}

// parsePermissions accepts action:role shorthands and raw permission strings
// such as read("any").
func parsePermissions(values []string) ([]string, error) {
	permissions := make([]string, 0, len(values))
	for _, v := range values {
		if strings.Contains(v, "(") {
			permissions = append(permissions, v)
			continue
		}

		action, role, ok := strings.Cut(v, ":")
		if !ok || role == "" {
			return nil, fmt.Errorf("invalid permission %q, expected action:role", v)
		}

		var p string
		switch action {
		case "read":
			p = api.PermissionRead(role)
		case "write":
			p = api.PermissionWrite(role)
		case "create":
			p = api.PermissionCreate(role)
		case "update":
			p = api.PermissionUpdate(role)
		case "delete":
			p = api.PermissionDelete(role)
		default:
			return nil, fmt.Errorf("invalid permission action %q", action)
		}
		permissions = append(permissions, p)
	}
	return permissions, nil
}
