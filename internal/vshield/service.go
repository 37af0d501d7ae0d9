package vshield

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// ErrDeclined is returned when the target root already exists and the
// user declines to proceed. It is a fatal condition for the run.
var ErrDeclined = errors.New("operation cancelled: target directory already exists")

// ConfirmFunc asks whether to proceed past a warning. It returns true to
// continue.
type ConfirmFunc func(prompt string) bool

// RunResult summarizes a completed batch.
type RunResult struct {
	Stats    RunStatistics
	Skips    []SkipRecord
	Failures []FailureRecord
	// Manifest holds the sorted absolute target paths of all placed
	// artifacts, side-list entries excluded.
	Manifest []string
	SideList []SideEntry
}

// Service drives one full run: path validation, discovery,
// classification, per-file processing, and aggregation. Files are
// processed one at a time in sorted order; a per-file failure never stops
// the batch.
type Service struct {
	sourceRoot string
	targetRoot string
	rules      *RuleSet
	walker     *Walker
	pipeline   *Pipeline
	confirm    ConfirmFunc
	logger     Logger
}

// NewService wires a Service from its collaborators. sourceRoot and
// targetRoot must be absolute.
func NewService(sourceRoot, targetRoot string, rules *RuleSet, protector Protector, confirm ConfirmFunc, logger Logger) *Service {
	return &Service{
		sourceRoot: sourceRoot,
		targetRoot: targetRoot,
		rules:      rules,
		walker:     NewWalker(rules, logger),
		pipeline:   NewPipeline(sourceRoot, targetRoot, protector, logger),
		confirm:    confirm,
		logger:     logger,
	}
}

// ValidatePaths checks the source root, confirms overwriting an existing
// target root, and creates the target root if needed. Any error here is
// fatal to the run.
func (s *Service) ValidatePaths() error {
	info, err := os.Stat(s.sourceRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("source directory does not exist: %s", s.sourceRoot)
		}
		return fmt.Errorf("stat source directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("source path is not a directory: %s", s.sourceRoot)
	}

	if _, err := os.Stat(s.targetRoot); err == nil {
		s.logger.Warn("target directory already exists", "target", s.targetRoot)
		if !s.confirm(fmt.Sprintf("Target directory %s already exists. Continue?", s.targetRoot)) {
			return ErrDeclined
		}
	}

	if err := os.MkdirAll(s.targetRoot, 0755); err != nil {
		return fmt.Errorf("creating target directory: %w", err)
	}

	s.logger.Info("path validation passed", "source", s.sourceRoot, "target", s.targetRoot)
	return nil
}

// Run executes the full workflow. The returned error is non-nil only for
// fatal conditions (invalid roots, declined overwrite, interrupt);
// per-file failures are reported through the result.
func (s *Service) Run(ctx context.Context) (*RunResult, error) {
	if err := s.ValidatePaths(); err != nil {
		return nil, err
	}

	files, skips, err := s.walker.Discover(s.sourceRoot)
	if err != nil {
		return nil, err
	}

	agg := NewAggregator()
	agg.RecordDiscovery(len(files), skips)

	if len(files) == 0 {
		s.logger.Warn("no recognized files found", "source", s.sourceRoot)
	}

	for i, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("run interrupted: %w", err)
		}

		cf := Classify(f, s.rules)
		s.logger.Info("processing file",
			"n", i+1,
			"total", len(files),
			"file", f.RelPath,
			"disposition", cf.Disposition.String())

		outcome := s.pipeline.Process(ctx, cf)
		if !outcome.Succeeded() {
			s.logger.Error("file failed", "file", f.RelPath, "reason", outcome.Err.Error())
		}
		agg.RecordOutcome(outcome)
	}

	stats := agg.Stats()
	s.logger.Info("batch complete",
		"total_found", stats.TotalFound,
		"succeeded", stats.Succeeded,
		"copied_only", stats.CopiedOnly,
		"failed", stats.Failed,
		"skipped", stats.Skipped)

	return &RunResult{
		Stats:    stats,
		Skips:    agg.Skips(),
		Failures: agg.Failures(),
		Manifest: agg.ManifestPaths(),
		SideList: agg.SideList(),
	}, nil
}
