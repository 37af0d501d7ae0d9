package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// WriteTree creates files under root from relative path -> content,
// creating intermediate directories as needed.
func WriteTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("creating directory for %s: %v", rel, err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("writing %s: %v", rel, err)
		}
	}
}

// ReadFile returns the content of the file at path, failing the test on error.
func ReadFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(data)
}

// StubToolBehavior selects what the stub protection tool does.
type StubToolBehavior int

const (
	// StubToolSucceed writes the expected artifact and exits 0.
	StubToolSucceed StubToolBehavior = iota
	// StubToolFail exits 1 without writing anything.
	StubToolFail
	// StubToolNoArtifact exits 0 but writes nothing.
	StubToolNoArtifact
	// StubToolHang sleeps long enough to trip any short timeout.
	StubToolHang
)

// WriteStubTool writes an executable shell script that mimics the
// protection tool's command-line contract: it receives
// "+<method> -sverilog <path>" and, on success, writes "<path>p"
// containing a marker plus the original content. Returns the script path.
func WriteStubTool(t *testing.T, behavior StubToolBehavior) string {
	t.Helper()

	var body string
	switch behavior {
	case StubToolSucceed:
		body = "#!/bin/sh\nfile=\"$3\"\n{ printf 'protected\\n'; cat \"$file\"; } > \"${file}p\"\nexit 0\n"
	case StubToolFail:
		body = "#!/bin/sh\necho 'encryption error' >&2\nexit 1\n"
	case StubToolNoArtifact:
		body = "#!/bin/sh\nexit 0\n"
	case StubToolHang:
		body = "#!/bin/sh\nsleep 10\nexit 0\n"
	default:
		t.Fatalf("unknown stub tool behavior %d", behavior)
	}

	path := filepath.Join(t.TempDir(), fmt.Sprintf("stubtool-%d", behavior))
	if err := os.WriteFile(path, []byte(body), 0755); err != nil {
		t.Fatalf("writing stub tool: %v", err)
	}
	return path
}
