package vshield

import (
	"slices"
	"sort"
)

// RunStatistics are the run-long counters, monotonically updated, one set
// per run.
type RunStatistics struct {
	TotalFound int
	Succeeded  int
	CopiedOnly int
	Failed     int
	Skipped    int
}

// FailureRecord captures one per-file failure and its reason.
type FailureRecord struct {
	RelPath string
	Reason  string
}

// SideEntry pairs the source and target paths of a placed list file.
// Side entries appear only in the manifest header annotations.
type SideEntry struct {
	Source string
	Target string
}

// Aggregator owns the run statistics and record lists. It is the only
// mutable state shared across the batch; all mutation goes through
// exclusive appends, so parallelizing the pipeline only requires
// synchronizing these two methods.
type Aggregator struct {
	stats    RunStatistics
	skips    []SkipRecord
	failures []FailureRecord
	manifest []string
	side     []SideEntry
}

func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// RecordDiscovery seeds the counters from the discovery pass.
func (a *Aggregator) RecordDiscovery(found int, skips []SkipRecord) {
	a.stats.TotalFound = found
	a.stats.Skipped = len(skips)
	a.skips = append(a.skips, skips...)
}

// RecordOutcome folds one terminal outcome into the counters and lists.
func (a *Aggregator) RecordOutcome(o Outcome) {
	if !o.Succeeded() {
		a.stats.Failed++
		a.failures = append(a.failures, FailureRecord{RelPath: o.RelPath, Reason: o.Err.Error()})
		return
	}

	switch o.Disposition {
	case CopyOnly:
		a.stats.CopiedOnly++
	default:
		a.stats.Succeeded++
	}

	if o.SideList {
		a.side = append(a.side, SideEntry{Source: o.RelPath, Target: o.TargetPath})
		return
	}
	a.manifest = append(a.manifest, o.TargetPath)
}

// Stats returns the current counters.
func (a *Aggregator) Stats() RunStatistics { return a.stats }

// Skips returns the discovery-time skip records in discovery order.
func (a *Aggregator) Skips() []SkipRecord { return slices.Clone(a.skips) }

// Failures returns the per-file failures in processing order.
func (a *Aggregator) Failures() []FailureRecord { return slices.Clone(a.failures) }

// ManifestPaths returns the sorted, deduplicated absolute target paths of
// all successfully placed artifacts, side-list entries excluded.
func (a *Aggregator) ManifestPaths() []string {
	paths := slices.Clone(a.manifest)
	sort.Strings(paths)
	return slices.Compact(paths)
}

// SideList returns the placed list files sorted by source path.
func (a *Aggregator) SideList() []SideEntry {
	side := slices.Clone(a.side)
	sort.Slice(side, func(i, j int) bool { return side[i].Source < side[j].Source })
	return side
}
