package delivery

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// FileSystemUploader mirrors delivered files into a directory tree.
type FileSystemUploader struct {
	root string
}

// NewFileSystemUploader creates an uploader rooted at the given path,
// creating it if needed.
func NewFileSystemUploader(root string) (*FileSystemUploader, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create delivery root: %w", err)
	}
	return &FileSystemUploader{root: root}, nil
}

// Put writes the content under root/relPath using an atomic write
// (temp file + rename).
func (u *FileSystemUploader) Put(ctx context.Context, relPath string, r io.Reader, size int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	destPath := filepath.Join(u.root, relPath)
	dir := filepath.Dir(destPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	written, err := io.Copy(tmpFile, r)
	if err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write data: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if written != size {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, written)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}

// Validate verifies the delivery root is an accessible directory.
func (u *FileSystemUploader) Validate(_ context.Context) error {
	info, err := os.Stat(u.root)
	if err != nil {
		return fmt.Errorf("delivery root not accessible: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("delivery root is not a directory: %s", u.root)
	}
	return nil
}

// Compile-time check that FileSystemUploader implements the Uploader interface
var _ Uploader = (*FileSystemUploader)(nil)
