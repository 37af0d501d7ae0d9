package vshield

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// RunInfo carries the identifying fields written into manifest and report
// headers.
type RunInfo struct {
	RunID       string
	GeneratedAt time.Time
	Method      string
	SourceRoot  string
	TargetRoot  string
}

const manifestRule = "// ###############################################################################"
const reportRule = "================================================================================"

// WriteManifest writes the filelist: a fixed comment-block header followed
// by one absolute target path per line. Side-list entries appear only as
// header annotations, never in the body.
func WriteManifest(w io.Writer, info RunInfo, paths []string, side []SideEntry) error {
	var err error
	p := func(format string, args ...any) {
		if err == nil {
			_, err = fmt.Fprintf(w, format+"\n", args...)
		}
	}

	p(manifestRule)
	p("//  FILELIST - Batch Protection Tool Generated File")
	p(manifestRule)
	p("// Generation time: %s", info.GeneratedAt.Format("2006-01-02 15:04:05"))
	p("// Protection method: +%s", info.Method)
	p("// Source directory: %s", info.SourceRoot)
	p("// Target directory: %s", info.TargetRoot)
	p("// Total files in list: %d", len(paths))
	p("//")

	if len(side) > 0 {
		p("// .LST FILES (excluded from this list, copied without protection):")
		for _, e := range side {
			p("//   Original: %s", e.Source)
			p("//   Copied:   %s", e.Target)
		}
		p("//")
	}

	p("// NOTE:")
	p("//   - All paths are absolute paths")
	p("//   - Protected files have .vp/.svp/.vhp/.svhp extensions")
	p("//   - Copy-only files retain their original extensions")
	p("//   - .lst files are not included in this list (see above)")
	p(manifestRule)
	p("")

	for _, path := range paths {
		p("%s", path)
	}
	return err
}

// WriteReport writes the run summary: the five counters plus the full
// skip and failure listings with reasons.
func WriteReport(w io.Writer, info RunInfo, stats RunStatistics, skips []SkipRecord, failures []FailureRecord) error {
	var err error
	p := func(format string, args ...any) {
		if err == nil {
			_, err = fmt.Fprintf(w, format+"\n", args...)
		}
	}

	p(reportRule)
	p("Batch Protection Processing Report")
	p(reportRule)
	p("Generation time: %s", info.GeneratedAt.Format("2006-01-02 15:04:05"))
	p("Run ID: %s", info.RunID)
	p("Protection method: +%s", info.Method)
	p("Source directory: %s", info.SourceRoot)
	p("Target directory: %s", info.TargetRoot)
	p("")
	p("Statistics:")
	p("  Total files discovered: %d", stats.TotalFound)
	p("  Successfully protected: %d", stats.Succeeded)
	p("  Copied without protection: %d", stats.CopiedOnly)
	p("  Failed: %d", stats.Failed)
	p("  Skipped: %d", stats.Skipped)
	p("")

	if len(skips) > 0 {
		p("Skipped/Excluded files:")
		for _, s := range skips {
			p("  - %s: %s", s.RelPath, s.Reason)
		}
		p("")
	}

	if len(failures) > 0 {
		p("Failed files:")
		for _, f := range failures {
			p("  - %s: %s", f.RelPath, f.Reason)
		}
	}
	return err
}

// WriteManifestFile writes the manifest to path, creating parent
// directories as needed.
func WriteManifestFile(path string, info RunInfo, paths []string, side []SideEntry) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating manifest directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating manifest: %w", err)
	}
	if err := WriteManifest(f, info, paths, side); err != nil {
		f.Close()
		return fmt.Errorf("writing manifest: %w", err)
	}
	return f.Close()
}

// WriteReportFile writes a timestamped report into logDir and returns the
// report's path.
func WriteReportFile(logDir string, info RunInfo, stats RunStatistics, skips []SkipRecord, failures []FailureRecord) (string, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return "", fmt.Errorf("creating log directory: %w", err)
	}
	path := filepath.Join(logDir, fmt.Sprintf("protect_report_%s.log", info.GeneratedAt.Format("20060102_150405")))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating report: %w", err)
	}
	if err := WriteReport(f, info, stats, skips, failures); err != nil {
		f.Close()
		return "", fmt.Errorf("writing report: %w", err)
	}
	return path, f.Close()
}
