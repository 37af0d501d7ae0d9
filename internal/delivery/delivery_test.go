package delivery

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"vshield-go/internal/testutil"
	"vshield-go/internal/vshield"
)

func TestDeliver(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{
		"rtl/cpu.vp":  "protected cpu\n",
		"rtl/alu.svp": "protected alu\n",
		"files.f":     "/out/rtl/cpu.vp\n",
	})

	u := NewMemoryUploader()
	count, err := Deliver(context.Background(), u, root, &vshield.NopLogger{})
	if err != nil {
		t.Fatalf("Deliver: %v", err)
	}
	if count != 3 || u.Len() != 3 {
		t.Errorf("delivered %d files, stored %d, want 3", count, u.Len())
	}

	data, ok := u.Object(filepath.Join("rtl", "cpu.vp"))
	if !ok {
		t.Fatal("rtl/cpu.vp not stored")
	}
	if string(data) != "protected cpu\n" {
		t.Errorf("stored content = %q", data)
	}
}

func TestDeliver_EmptyTree(t *testing.T) {
	t.Parallel()
	u := NewMemoryUploader()
	count, err := Deliver(context.Background(), u, t.TempDir(), &vshield.NopLogger{})
	if err != nil {
		t.Fatalf("Deliver: %v", err)
	}
	if count != 0 {
		t.Errorf("delivered %d files from empty tree", count)
	}
}

// failingUploader fails validation to prove Deliver checks before walking.
type failingUploader struct{}

func (failingUploader) Put(context.Context, string, io.Reader, int64) error { return nil }
func (failingUploader) Validate(context.Context) error {
	return errors.New("bucket unreachable")
}

func TestDeliver_ValidateFailureAborts(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{"a.vp": "x\n"})

	_, err := Deliver(context.Background(), failingUploader{}, root, &vshield.NopLogger{})
	if err == nil || !strings.Contains(err.Error(), "validating delivery backend") {
		t.Errorf("Deliver = %v, want validation failure", err)
	}
}

func TestDeliver_CancelledContext(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{"a.vp": "x\n"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Deliver(ctx, NewMemoryUploader(), root, &vshield.NopLogger{})
	if err == nil {
		t.Error("Deliver with cancelled context = nil error")
	}
}
