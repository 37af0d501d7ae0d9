// Package delivery ships a finished target tree to a delivery backend.
package delivery

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"vshield-go/internal/vshield"
)

// Uploader stores files under their tree-relative paths in some backend.
type Uploader interface {
	// Put stores size bytes read from r under relPath. Storing the same
	// relPath again overwrites the previous content.
	Put(ctx context.Context, relPath string, r io.Reader, size int64) error

	// Validate verifies the backend is reachable and writable enough to
	// accept uploads.
	Validate(ctx context.Context) error
}

// Deliver walks root and uploads every regular file, preserving relative
// paths. Returns the number of files uploaded; the first upload error
// aborts the walk.
func Deliver(ctx context.Context, u Uploader, root string, logger vshield.Logger) (int, error) {
	if err := u.Validate(ctx); err != nil {
		return 0, fmt.Errorf("validating delivery backend: %w", err)
	}

	count := 0
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("relativizing %s: %w", path, err)
		}

		if err := uploadFile(ctx, u, relPath, path); err != nil {
			return fmt.Errorf("uploading %s: %w", relPath, err)
		}

		logger.Debug("file delivered", "file", relPath)
		count++
		return nil
	})
	if err != nil {
		return count, fmt.Errorf("delivering tree: %w", err)
	}

	logger.Info("delivery complete", "root", root, "count", count)
	return count, nil
}

func uploadFile(ctx context.Context, u Uploader, relPath, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat: %w", err)
	}

	return u.Put(ctx, relPath, f, info.Size())
}
