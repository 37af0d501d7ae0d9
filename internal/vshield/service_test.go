package vshield

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vshield-go/internal/testutil"
)

func alwaysYes(string) bool { return true }
func alwaysNo(string) bool  { return false }

func TestService_Run_FullScenario(t *testing.T) {
	t.Parallel()
	source := t.TempDir()
	target := filepath.Join(t.TempDir(), "out")
	testutil.WriteTree(t, source, map[string]string{
		"a/x.v":       "module x; endmodule\n",
		"a/b/y.sv":    "module y; endmodule\n",
		"a/z.vh":      "`define Z 1\n",
		"a/files.lst": "a/x.v\n",
	})

	rules := NewRuleSet(nil, []string{"b"}, []string{"*.vh"}, nil)
	protector := NewVCSProtector(testutil.WriteStubTool(t, testutil.StubToolSucceed), "auto3protect", 0, &NopLogger{})
	svc := NewService(source, target, rules, protector, alwaysYes, &NopLogger{})

	result, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := RunStatistics{TotalFound: 3, Succeeded: 1, CopiedOnly: 2, Failed: 0, Skipped: 1}
	if result.Stats != want {
		t.Errorf("Stats = %+v, want %+v", result.Stats, want)
	}

	if len(result.Skips) != 1 {
		t.Fatalf("Skips = %+v, want exactly the excluded file", result.Skips)
	}
	if got := filepath.ToSlash(result.Skips[0].RelPath); got != "a/b/y.sv" {
		t.Errorf("skipped file = %s, want a/b/y.sv", got)
	}
	if !strings.Contains(result.Skips[0].Reason, `"b"`) {
		t.Errorf("skip reason = %q, want directory pattern cited", result.Skips[0].Reason)
	}

	// Placed artifacts: x.v transformed, z.vh copied verbatim.
	if got := testutil.ReadFile(t, filepath.Join(target, "a", "x.vp")); !strings.HasPrefix(got, "protected\n") {
		t.Errorf("a/x.vp content = %q", got)
	}
	if got := testutil.ReadFile(t, filepath.Join(target, "a", "z.vh")); got != "`define Z 1\n" {
		t.Errorf("a/z.vh content = %q, want byte-identical copy", got)
	}

	// The list file is copied but appears only as a side entry.
	if got := testutil.ReadFile(t, filepath.Join(target, "a", "files.lst")); got != "a/x.v\n" {
		t.Errorf("a/files.lst content = %q", got)
	}
	if len(result.SideList) != 1 {
		t.Fatalf("SideList = %+v, want one entry", result.SideList)
	}
	for _, p := range result.Manifest {
		if strings.HasSuffix(p, ".lst") {
			t.Errorf("manifest contains list file %s", p)
		}
	}
	if len(result.Manifest) != 2 {
		t.Errorf("Manifest = %v, want the two placed non-list files", result.Manifest)
	}

	// Transient artifacts are gone from the source tree.
	if _, err := os.Stat(filepath.Join(source, "a", "x.vp")); !errors.Is(err, os.ErrNotExist) {
		t.Error("transient artifact left in source tree")
	}
}

func TestService_Run_ToolFailureContinuesBatch(t *testing.T) {
	t.Parallel()
	source := t.TempDir()
	target := filepath.Join(t.TempDir(), "out")
	testutil.WriteTree(t, source, map[string]string{
		"a.v": "module a; endmodule\n",
		"b.v": "module b; endmodule\n",
	})

	protector := NewVCSProtector(testutil.WriteStubTool(t, testutil.StubToolFail), "auto3protect", 0, &NopLogger{})
	svc := NewService(source, target, NewRuleSet(nil, nil, nil, nil), protector, alwaysYes, &NopLogger{})

	result, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned fatal error on per-file failure: %v", err)
	}
	if result.Stats.Failed != 2 || result.Stats.Succeeded != 0 {
		t.Errorf("Stats = %+v, want both files failed", result.Stats)
	}
	if len(result.Failures) != 2 {
		t.Fatalf("Failures = %+v, want 2", result.Failures)
	}
	for _, f := range result.Failures {
		if !strings.Contains(f.Reason, "exited with status 1") {
			t.Errorf("failure reason = %q, want exit status cited", f.Reason)
		}
	}
}

func TestService_Run_EmptyTree(t *testing.T) {
	t.Parallel()
	source := t.TempDir()
	target := filepath.Join(t.TempDir(), "out")

	protector := NewVCSProtector(testutil.WriteStubTool(t, testutil.StubToolSucceed), "auto3protect", 0, &NopLogger{})
	svc := NewService(source, target, NewRuleSet(nil, nil, nil, nil), protector, alwaysYes, &NopLogger{})

	result, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run on empty tree: %v", err)
	}
	if result.Stats != (RunStatistics{}) {
		t.Errorf("Stats = %+v, want all zeros", result.Stats)
	}
	if _, err := os.Stat(target); err != nil {
		t.Errorf("target directory not created: %v", err)
	}
}

func TestService_ValidatePaths(t *testing.T) {
	t.Parallel()
	protector := &fakeProtector{}
	rules := NewRuleSet(nil, nil, nil, nil)

	t.Run("missing source is fatal", func(t *testing.T) {
		t.Parallel()
		svc := NewService(filepath.Join(t.TempDir(), "nope"), filepath.Join(t.TempDir(), "out"), rules, protector, alwaysYes, &NopLogger{})
		if err := svc.ValidatePaths(); err == nil || !strings.Contains(err.Error(), "does not exist") {
			t.Errorf("ValidatePaths = %v, want missing-source error", err)
		}
	})

	t.Run("source file instead of directory is fatal", func(t *testing.T) {
		t.Parallel()
		src := filepath.Join(t.TempDir(), "file.v")
		if err := os.WriteFile(src, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
		svc := NewService(src, filepath.Join(t.TempDir(), "out"), rules, protector, alwaysYes, &NopLogger{})
		if err := svc.ValidatePaths(); err == nil || !strings.Contains(err.Error(), "not a directory") {
			t.Errorf("ValidatePaths = %v, want not-a-directory error", err)
		}
	})

	t.Run("existing target declined", func(t *testing.T) {
		t.Parallel()
		svc := NewService(t.TempDir(), t.TempDir(), rules, protector, alwaysNo, &NopLogger{})
		if err := svc.ValidatePaths(); !errors.Is(err, ErrDeclined) {
			t.Errorf("ValidatePaths = %v, want ErrDeclined", err)
		}
	})

	t.Run("existing target confirmed", func(t *testing.T) {
		t.Parallel()
		svc := NewService(t.TempDir(), t.TempDir(), rules, protector, alwaysYes, &NopLogger{})
		if err := svc.ValidatePaths(); err != nil {
			t.Errorf("ValidatePaths = %v, want nil after confirmation", err)
		}
	})

	t.Run("fresh target is created", func(t *testing.T) {
		t.Parallel()
		target := filepath.Join(t.TempDir(), "deep", "out")
		svc := NewService(t.TempDir(), target, rules, protector, alwaysNo, &NopLogger{})
		if err := svc.ValidatePaths(); err != nil {
			t.Fatalf("ValidatePaths: %v", err)
		}
		if _, err := os.Stat(target); err != nil {
			t.Errorf("target not created: %v", err)
		}
	})
}

func TestService_Run_Interrupted(t *testing.T) {
	t.Parallel()
	source := t.TempDir()
	testutil.WriteTree(t, source, map[string]string{
		"a.v": "module a; endmodule\n",
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := NewService(source, filepath.Join(t.TempDir(), "out"), NewRuleSet(nil, nil, nil, nil), &fakeProtector{}, alwaysYes, &NopLogger{})
	_, err := svc.Run(ctx)
	if err == nil || !strings.Contains(err.Error(), "interrupted") {
		t.Errorf("Run with cancelled context = %v, want interrupt error", err)
	}
}
