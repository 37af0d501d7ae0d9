package vshield

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"vshield-go/internal/testutil"
)

func writeSource(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing source file: %v", err)
	}
	return path
}

func TestVCSProtector_Protect(t *testing.T) {
	t.Parallel()

	t.Run("success returns the artifact path", func(t *testing.T) {
		t.Parallel()
		tool := testutil.WriteStubTool(t, testutil.StubToolSucceed)
		src := writeSource(t, "cpu.v", "module cpu; endmodule\n")

		p := NewVCSProtector(tool, "auto3protect", 0, &NopLogger{})
		artifact, err := p.Protect(context.Background(), src)
		if err != nil {
			t.Fatalf("Protect: %v", err)
		}
		if artifact != src+"p" {
			t.Errorf("artifact = %s, want %s", artifact, src+"p")
		}
		got := testutil.ReadFile(t, artifact)
		if !strings.HasPrefix(got, "protected\n") {
			t.Errorf("artifact content = %q, want protected marker prefix", got)
		}
	})

	t.Run("non-zero exit reports the status", func(t *testing.T) {
		t.Parallel()
		tool := testutil.WriteStubTool(t, testutil.StubToolFail)
		src := writeSource(t, "cpu.v", "module cpu; endmodule\n")

		p := NewVCSProtector(tool, "auto3protect", 0, &NopLogger{})
		_, err := p.Protect(context.Background(), src)
		if err == nil {
			t.Fatal("Protect succeeded, want exit-status error")
		}
		if !strings.Contains(err.Error(), "exited with status 1") {
			t.Errorf("error = %q, want exit status 1 cited", err)
		}
	})

	t.Run("zero exit without artifact is a failure", func(t *testing.T) {
		t.Parallel()
		tool := testutil.WriteStubTool(t, testutil.StubToolNoArtifact)
		src := writeSource(t, "cpu.v", "module cpu; endmodule\n")

		p := NewVCSProtector(tool, "auto3protect", 0, &NopLogger{})
		_, err := p.Protect(context.Background(), src)
		if err == nil {
			t.Fatal("Protect succeeded, want missing-artifact error")
		}
		if !strings.Contains(err.Error(), "produced no artifact") {
			t.Errorf("error = %q, want missing artifact cited", err)
		}
	})

	t.Run("timeout is reported as such", func(t *testing.T) {
		t.Parallel()
		tool := testutil.WriteStubTool(t, testutil.StubToolHang)
		src := writeSource(t, "cpu.v", "module cpu; endmodule\n")

		p := NewVCSProtector(tool, "auto3protect", 100*time.Millisecond, &NopLogger{})
		_, err := p.Protect(context.Background(), src)
		if err == nil {
			t.Fatal("Protect succeeded, want timeout error")
		}
		if !strings.Contains(err.Error(), "timed out") {
			t.Errorf("error = %q, want timeout cited", err)
		}
	})

	t.Run("missing tool binary", func(t *testing.T) {
		t.Parallel()
		src := writeSource(t, "cpu.v", "module cpu; endmodule\n")

		p := NewVCSProtector("vshield-no-such-tool", "auto3protect", 0, &NopLogger{})
		_, err := p.Protect(context.Background(), src)
		if err == nil {
			t.Fatal("Protect succeeded, want not-found error")
		}
		if !strings.Contains(err.Error(), "not found in PATH") {
			t.Errorf("error = %q, want PATH lookup failure cited", err)
		}
	})
}
