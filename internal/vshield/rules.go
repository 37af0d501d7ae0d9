package vshield

import (
	"fmt"
	"slices"
)

// Disposition is the single classification assigned to a discovered file.
type Disposition int

const (
	// Excluded files are dropped during discovery and never processed.
	Excluded Disposition = iota
	// CopyOnly files are mirrored into the target tree unchanged.
	CopyOnly
	// Transform files are run through the protection tool.
	Transform
)

func (d Disposition) String() string {
	switch d {
	case Excluded:
		return "excluded"
	case CopyOnly:
		return "copy-only"
	case Transform:
		return "transform"
	default:
		return fmt.Sprintf("disposition(%d)", int(d))
	}
}

// ListExtension is the distinguished filelist extension. Files with this
// extension are copy-only by default and are annotated in the manifest
// header instead of being listed in its body.
const ListExtension = ".lst"

// recognizedExtensions are the file types the walker picks up.
var recognizedExtensions = []string{".v", ".vh", ".sv", ".svh", ".lst"}

// defaultCopyOnlyExtensions are always copied without protection.
// Must be a subset of recognizedExtensions.
var defaultCopyOnlyExtensions = []string{ListExtension}

// Methods accepted by the protection tool, invoked as "+<method>".
var ValidMethods = []string{"autoprotect", "auto1protect", "auto2protect", "auto3protect"}

// DefaultMethod is the strongest protection level.
const DefaultMethod = "auto3protect"

// ValidateMethod returns an error if method is not a recognized
// protection method.
func ValidateMethod(method string) error {
	if slices.Contains(ValidMethods, method) {
		return nil
	}
	return fmt.Errorf("invalid protection method %q, must be one of %v", method, ValidMethods)
}

// RuleSet holds the four pattern collections that drive classification,
// plus the fixed extension sets. Immutable after construction.
//
// Resolution order is strict: exclusion first, then copy-only, then
// transform by default. An exclude rule always overrides a copy-only rule
// for the same path, and a directory rule on any ancestor governs every
// file beneath it.
type RuleSet struct {
	excludeFiles  []string
	excludeDirs   []string
	copyOnlyFiles []string
	copyOnlyDirs  []string

	extensions   []string
	copyOnlyExts map[string]bool
}

// NewRuleSet builds a RuleSet from the four glob pattern lists.
// Nil lists are fine and match nothing.
func NewRuleSet(excludeFiles, excludeDirs, copyOnlyFiles, copyOnlyDirs []string) *RuleSet {
	exts := make(map[string]bool, len(defaultCopyOnlyExtensions))
	for _, ext := range defaultCopyOnlyExtensions {
		exts[ext] = true
	}
	return &RuleSet{
		excludeFiles:  slices.Clone(excludeFiles),
		excludeDirs:   slices.Clone(excludeDirs),
		copyOnlyFiles: slices.Clone(copyOnlyFiles),
		copyOnlyDirs:  slices.Clone(copyOnlyDirs),
		extensions:    slices.Clone(recognizedExtensions),
		copyOnlyExts:  exts,
	}
}

// Extensions returns the recognized file extensions, dot included.
func (r *RuleSet) Extensions() []string {
	return slices.Clone(r.extensions)
}

// Recognizes reports whether ext is a recognized file extension.
func (r *RuleSet) Recognizes(ext string) bool {
	return slices.Contains(r.extensions, ext)
}

// ExcludeFile returns the first file exclusion pattern matching the bare
// file name, if any.
func (r *RuleSet) ExcludeFile(name string) (pattern string, ok bool) {
	for _, p := range r.excludeFiles {
		if matchName(p, name) {
			return p, true
		}
	}
	return "", false
}

// ExcludeDir returns the first directory exclusion pattern matching the
// directory's name or source-relative path, if any.
func (r *RuleSet) ExcludeDir(name, relPath string) (pattern string, ok bool) {
	for _, p := range r.excludeDirs {
		if matchDir(p, name, relPath) {
			return p, true
		}
	}
	return "", false
}

// CopyOnlyExtension reports whether files with this extension are copied
// without protection by default.
func (r *RuleSet) CopyOnlyExtension(ext string) bool {
	return r.copyOnlyExts[ext]
}

// CopyOnlyFile reports whether the bare file name matches a copy-only
// file pattern.
func (r *RuleSet) CopyOnlyFile(name string) bool {
	for _, p := range r.copyOnlyFiles {
		if matchName(p, name) {
			return true
		}
	}
	return false
}

// CopyOnlyDir reports whether the directory's name or source-relative path
// matches a copy-only directory pattern.
func (r *RuleSet) CopyOnlyDir(name, relPath string) bool {
	for _, p := range r.copyOnlyDirs {
		if matchDir(p, name, relPath) {
			return true
		}
	}
	return false
}
