package delivery

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// MemoryUploader keeps delivered files in memory. Use in tests.
type MemoryUploader struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func NewMemoryUploader() *MemoryUploader {
	return &MemoryUploader{objects: make(map[string][]byte)}
}

func (u *MemoryUploader) Put(ctx context.Context, relPath string, r io.Reader, size int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read content: %w", err)
	}
	if int64(len(data)) != size {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, len(data))
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	u.objects[relPath] = data
	return nil
}

func (u *MemoryUploader) Validate(context.Context) error { return nil }

// Object returns the stored content for relPath, if present.
func (u *MemoryUploader) Object(relPath string) ([]byte, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	data, ok := u.objects[relPath]
	return data, ok
}

// Len returns the number of stored objects.
func (u *MemoryUploader) Len() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.objects)
}

// Compile-time check that MemoryUploader implements the Uploader interface
var _ Uploader = (*MemoryUploader)(nil)
