// Package database persists run history.
package database

import "time"

// Run is one recorded pipeline run with its final statistics.
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Method     string
	SourceRoot string
	TargetRoot string
	Status     string // "completed" or "failed"
	TotalFound int
	Succeeded  int
	CopiedOnly int
	Failed     int
	Skipped    int
}

// Store persists and queries run history.
type Store interface {
	// RecordRun inserts a finished run.
	RecordRun(run *Run) error

	// RecentRuns returns up to limit runs, most recent first.
	RecentRuns(limit int) ([]*Run, error)

	// Close releases the underlying resources.
	Close() error
}

// NopStore discards run history. Used when recording is disabled.
type NopStore struct{}

func (NopStore) RecordRun(*Run) error           { return nil }
func (NopStore) RecentRuns(int) ([]*Run, error) { return nil, nil }
func (NopStore) Close() error                   { return nil }
