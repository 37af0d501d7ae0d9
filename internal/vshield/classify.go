package vshield

import "path/filepath"

// ClassifiedFile pairs a discovered file with its computed disposition.
// The disposition is computed exactly once and never revisited.
type ClassifiedFile struct {
	DiscoveredFile
	Disposition Disposition
}

// Classify applies the copy-only tier to a file that survived discovery.
// A file is copy-only when its extension is copy-only by default, when
// any ancestor directory matches a copy-only pattern, or when the file
// itself matches a copy-only pattern. Everything else transforms.
//
// Pure function of (file, rules): classifying the same file twice yields
// the same disposition.
func Classify(f DiscoveredFile, rules *RuleSet) ClassifiedFile {
	return ClassifiedFile{DiscoveredFile: f, Disposition: disposition(f, rules)}
}

func disposition(f DiscoveredFile, rules *RuleSet) Disposition {
	if rules.CopyOnlyExtension(f.Ext) {
		return CopyOnly
	}
	for _, dir := range f.ancestors {
		if rules.CopyOnlyDir(dir.name, dir.relPath) {
			return CopyOnly
		}
	}
	if rules.CopyOnlyFile(filepath.Base(f.RelPath)) {
		return CopyOnly
	}
	return Transform
}
