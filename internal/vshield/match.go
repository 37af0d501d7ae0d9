package vshield

import "path/filepath"

// matchName reports whether name matches pattern using shell-glob semantics
// (`*`, `?`, character classes). Matching is case-sensitive. A malformed
// pattern never matches.
func matchName(pattern, name string) bool {
	ok, err := filepath.Match(pattern, name)
	return err == nil && ok
}

// matchDir reports whether a directory matches pattern. Directories are
// checked against both their bare name and their path relative to the
// source root; a match on either is sufficient.
func matchDir(pattern, name, relPath string) bool {
	if matchName(pattern, name) {
		return true
	}
	return matchName(pattern, filepath.ToSlash(relPath))
}
