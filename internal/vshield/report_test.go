package vshield

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"vshield-go/internal/testutil"
)

var testRunInfo = RunInfo{
	RunID:       "3e7c9a12-0000-0000-0000-000000000000",
	GeneratedAt: time.Date(2026, 3, 14, 9, 26, 53, 0, time.Local),
	Method:      "auto3protect",
	SourceRoot:  "/proj/rtl",
	TargetRoot:  "/proj/out",
}

func TestWriteManifest(t *testing.T) {
	t.Parallel()
	var b strings.Builder
	paths := []string{"/proj/out/rtl/alu.svp", "/proj/out/rtl/cpu.vp"}
	side := []SideEntry{{Source: "files.lst", Target: "/proj/out/files.lst"}}

	if err := WriteManifest(&b, testRunInfo, paths, side); err != nil {
		t.Fatalf("WriteManifest: %v", err)
	}
	out := b.String()

	for _, want := range []string{
		"//  FILELIST - Batch Protection Tool Generated File",
		"// Generation time: 2026-03-14 09:26:53",
		"// Protection method: +auto3protect",
		"// Source directory: /proj/rtl",
		"// Target directory: /proj/out",
		"// Total files in list: 2",
		"// .LST FILES (excluded from this list, copied without protection):",
		"//   Original: files.lst",
		"//   Copied:   /proj/out/files.lst",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("manifest missing %q", want)
		}
	}

	// Every body line is a comment or a path; the .lst target never
	// appears as a body line.
	for _, line := range strings.Split(strings.TrimRight(out, "\n"), "\n") {
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		if strings.HasSuffix(line, ".lst") {
			t.Errorf("manifest body contains a list file: %q", line)
		}
	}
	if !strings.Contains(out, "\n/proj/out/rtl/alu.svp\n") || !strings.Contains(out, "\n/proj/out/rtl/cpu.vp\n") {
		t.Error("manifest body missing placed artifact paths")
	}
}

func TestWriteManifest_NoSideEntries(t *testing.T) {
	t.Parallel()
	var b strings.Builder
	if err := WriteManifest(&b, testRunInfo, []string{"/proj/out/cpu.vp"}, nil); err != nil {
		t.Fatalf("WriteManifest: %v", err)
	}
	if strings.Contains(b.String(), ".LST FILES") {
		t.Error("manifest has a .LST FILES section with no side entries")
	}
}

func TestWriteReport(t *testing.T) {
	t.Parallel()
	var b strings.Builder
	stats := RunStatistics{TotalFound: 5, Succeeded: 2, CopiedOnly: 1, Failed: 1, Skipped: 1}
	skips := []SkipRecord{{RelPath: "tb/cpu_tb.v", Reason: `matched file exclusion pattern "*_tb.v"`}}
	failures := []FailureRecord{{RelPath: "rtl/bad.v", Reason: "protection tool exited with status 1"}}

	if err := WriteReport(&b, testRunInfo, stats, skips, failures); err != nil {
		t.Fatalf("WriteReport: %v", err)
	}
	out := b.String()

	for _, want := range []string{
		"Batch Protection Processing Report",
		"Run ID: 3e7c9a12",
		"  Total files discovered: 5",
		"  Successfully protected: 2",
		"  Copied without protection: 1",
		"  Failed: 1",
		"  Skipped: 1",
		"Skipped/Excluded files:",
		`  - tb/cpu_tb.v: matched file exclusion pattern "*_tb.v"`,
		"Failed files:",
		"  - rtl/bad.v: protection tool exited with status 1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q", want)
		}
	}
}

func TestWriteReport_CleanRunOmitsListings(t *testing.T) {
	t.Parallel()
	var b strings.Builder
	if err := WriteReport(&b, testRunInfo, RunStatistics{TotalFound: 1, Succeeded: 1}, nil, nil); err != nil {
		t.Fatalf("WriteReport: %v", err)
	}
	out := b.String()
	if strings.Contains(out, "Skipped/Excluded files:") || strings.Contains(out, "Failed files:") {
		t.Error("clean run report contains empty listing sections")
	}
}

func TestWriteManifestFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "out", "files.f")
	if err := WriteManifestFile(path, testRunInfo, []string{"/proj/out/cpu.vp"}, nil); err != nil {
		t.Fatalf("WriteManifestFile: %v", err)
	}
	if got := testutil.ReadFile(t, path); !strings.Contains(got, "/proj/out/cpu.vp") {
		t.Errorf("manifest file missing path, got:\n%s", got)
	}
}

func TestWriteReportFile(t *testing.T) {
	t.Parallel()
	logDir := filepath.Join(t.TempDir(), "logs")
	path, err := WriteReportFile(logDir, testRunInfo, RunStatistics{}, nil, nil)
	if err != nil {
		t.Fatalf("WriteReportFile: %v", err)
	}
	wantName := "protect_report_20260314_092653.log"
	if filepath.Base(path) != wantName {
		t.Errorf("report file name = %s, want %s", filepath.Base(path), wantName)
	}
	if got := testutil.ReadFile(t, path); !strings.Contains(got, "Batch Protection Processing Report") {
		t.Errorf("report file missing header, got:\n%s", got)
	}
}
