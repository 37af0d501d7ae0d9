package vshield

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// SkipRecord captures a file rejected during discovery and why.
type SkipRecord struct {
	RelPath string
	Reason  string
}

// ancestorDir identifies one directory strictly between a file and the
// source root.
type ancestorDir struct {
	name    string
	relPath string
}

// DiscoveredFile is a file under the source root whose extension is
// recognized and which survived the exclusion rules.
//
// The ancestor chain is computed once at discovery time, innermost first,
// and reused for both exclusion and copy-only checks.
type DiscoveredFile struct {
	AbsPath string
	RelPath string
	Ext     string

	ancestors []ancestorDir
}

// ancestorChain builds the chain of directories strictly between relPath
// and the source root, ordered from the file's immediate parent outward.
func ancestorChain(relPath string) []ancestorDir {
	dir := filepath.Dir(relPath)
	if dir == "." {
		return nil
	}
	parts := strings.Split(filepath.ToSlash(dir), "/")
	chain := make([]ancestorDir, 0, len(parts))
	for i := len(parts); i > 0; i-- {
		chain = append(chain, ancestorDir{
			name:    parts[i-1],
			relPath: filepath.Join(parts[:i]...),
		})
	}
	return chain
}

// Walker enumerates the files a run will process.
type Walker struct {
	rules  *RuleSet
	logger Logger
}

func NewWalker(rules *RuleSet, logger Logger) *Walker {
	return &Walker{rules: rules, logger: logger}
}

// Discover walks sourceRoot and returns every file with a recognized
// extension that is not excluded, sorted lexicographically by absolute
// path and deduplicated. Rejected files come back as SkipRecords with a
// reason naming the pattern that fired.
//
// Exclusion checks the ancestor chain first, immediate parent outward,
// short-circuiting on the first match; the file's own name is checked
// last. The source root itself is never matched against directory rules.
func (w *Walker) Discover(sourceRoot string) ([]DiscoveredFile, []SkipRecord, error) {
	var files []DiscoveredFile
	var skips []SkipRecord
	seen := make(map[string]bool)

	err := filepath.WalkDir(sourceRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		ext := filepath.Ext(path)
		if !w.rules.Recognizes(ext) {
			return nil
		}
		if seen[path] {
			return nil
		}
		seen[path] = true

		relPath, err := filepath.Rel(sourceRoot, path)
		if err != nil {
			return fmt.Errorf("relativizing %s: %w", path, err)
		}

		f := DiscoveredFile{
			AbsPath:   path,
			RelPath:   relPath,
			Ext:       ext,
			ancestors: ancestorChain(relPath),
		}

		if reason, excluded := w.exclusionReason(f); excluded {
			w.logger.Debug("excluding file", "file", relPath, "reason", reason)
			skips = append(skips, SkipRecord{RelPath: relPath, Reason: reason})
			return nil
		}

		files = append(files, f)
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("walking source tree: %w", err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].AbsPath < files[j].AbsPath })

	w.logger.Info("discovery complete", "found", len(files), "skipped", len(skips))
	return files, skips, nil
}

// exclusionReason applies the exclusion tier to a single file.
func (w *Walker) exclusionReason(f DiscoveredFile) (string, bool) {
	for _, dir := range f.ancestors {
		if pattern, ok := w.rules.ExcludeDir(dir.name, dir.relPath); ok {
			return fmt.Sprintf("matched directory exclusion pattern %q", pattern), true
		}
	}
	if pattern, ok := w.rules.ExcludeFile(filepath.Base(f.RelPath)); ok {
		return fmt.Sprintf("matched file exclusion pattern %q", pattern), true
	}
	return "", false
}
