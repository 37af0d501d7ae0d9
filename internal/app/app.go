package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"vshield-go/internal/config"
	"vshield-go/internal/database"
	"vshield-go/internal/delivery"
	"vshield-go/internal/vshield"
)

// App is the application layer between the CLI and the pipeline service.
// It constructs all dependencies from config, exposes high-level
// operations that accept raw string paths, and manages the run-history
// store lifecycle on Close.
type App struct {
	cfg     *config.Config
	store   database.Store
	logger  vshield.Logger
	logFile *os.File
	runID   string
	clock   vshield.Clock
}

// NewApp creates a fully wired App from the given config.
// The caller must call Close when done.
func NewApp(cfg *config.Config) (*App, error) {
	runID := vshield.UUIDGenerator{}.New()

	logger, logFile, err := newLogger(cfg.LogDir, runID)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	store, err := database.NewStoreFromConfig(cfg.Database)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating run history store: %w", err)
	}

	return &App{
		cfg:     cfg,
		store:   store,
		logger:  &slogAdapter{l: logger},
		logFile: logFile,
		runID:   runID,
		clock:   vshield.RealClock{},
	}, nil
}

// LoadConfig reads the config file from the default location, falling
// back to built-in defaults when no file exists.
func LoadConfig() (*config.Config, error) {
	defaults, err := GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return config.NewConfig(defaults["base_dir"]), nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if cfg.BaseDir == "" {
		cfg.BaseDir = defaults["base_dir"]
	}
	if cfg.LogDir == "" {
		cfg.LogDir = filepath.Join(cfg.BaseDir, "log")
	}
	return cfg, nil
}

// RunOptions carry everything a single batch run needs beyond the config.
type RunOptions struct {
	SourceDir    string
	TargetDir    string
	FilelistName string
	Method       string // overrides config when non-empty

	// Patterns appended to the config's baseline rules.
	ExcludeFiles  []string
	ExcludeDirs   []string
	CopyOnlyFiles []string
	CopyOnlyDirs  []string

	Confirm vshield.ConfirmFunc
}

// Run executes one full batch. The returned error is non-nil only for
// fatal conditions; per-file failures are inside the result.
func (a *App) Run(ctx context.Context, opts RunOptions) (*vshield.RunResult, error) {
	method := opts.Method
	if method == "" {
		method = a.cfg.Tool.Method
	}
	if method == "" {
		method = vshield.DefaultMethod
	}
	if err := vshield.ValidateMethod(method); err != nil {
		return nil, err
	}

	sourceRoot, err := filepath.Abs(opts.SourceDir)
	if err != nil {
		return nil, fmt.Errorf("resolving source directory: %w", err)
	}
	targetRoot, err := filepath.Abs(opts.TargetDir)
	if err != nil {
		return nil, fmt.Errorf("resolving target directory: %w", err)
	}

	rules := vshield.NewRuleSet(
		append(append([]string{}, a.cfg.Rules.ExcludeFiles...), opts.ExcludeFiles...),
		append(append([]string{}, a.cfg.Rules.ExcludeDirs...), opts.ExcludeDirs...),
		append(append([]string{}, a.cfg.Rules.CopyOnlyFiles...), opts.CopyOnlyFiles...),
		append(append([]string{}, a.cfg.Rules.CopyOnlyDirs...), opts.CopyOnlyDirs...),
	)

	binary := a.cfg.Tool.Binary
	if binary == "" {
		binary = "vcs"
	}
	timeout := time.Duration(a.cfg.Tool.TimeoutSeconds) * time.Second
	protector := vshield.NewVCSProtector(binary, method, timeout, a.logger)

	confirm := opts.Confirm
	if confirm == nil {
		confirm = func(string) bool { return false }
	}

	svc := vshield.NewService(sourceRoot, targetRoot, rules, protector, confirm, a.logger)

	a.logger.Info("batch protection started",
		"method", "+"+method,
		"source", sourceRoot,
		"target", targetRoot)

	startedAt := a.clock.Now()
	result, runErr := svc.Run(ctx)
	finishedAt := a.clock.Now()

	if result != nil {
		info := vshield.RunInfo{
			RunID:       a.runID,
			GeneratedAt: finishedAt,
			Method:      method,
			SourceRoot:  sourceRoot,
			TargetRoot:  targetRoot,
		}
		a.writeArtifacts(info, result, opts.FilelistName)
	}

	a.recordRun(startedAt, finishedAt, method, sourceRoot, targetRoot, result, runErr)

	return result, runErr
}

// writeArtifacts writes the manifest and report. Both are best-effort: a
// write failure is logged and does not change the run's outcome.
func (a *App) writeArtifacts(info vshield.RunInfo, result *vshield.RunResult, filelistName string) {
	if filelistName != "" {
		manifestPath := filepath.Join(info.TargetRoot, filelistName)
		if err := vshield.WriteManifestFile(manifestPath, info, result.Manifest, result.SideList); err != nil {
			a.logger.Error("failed to write filelist", "path", manifestPath, "error", err)
		} else {
			a.logger.Info("filelist generated", "path", manifestPath, "count", len(result.Manifest))
		}
	}

	reportPath, err := vshield.WriteReportFile(a.cfg.LogDir, info, result.Stats, result.Skips, result.Failures)
	if err != nil {
		a.logger.Error("failed to write report", "error", err)
		return
	}
	a.logger.Info("report generated", "path", reportPath)
}

// recordRun stores the run in the history database, best-effort.
func (a *App) recordRun(startedAt, finishedAt time.Time, method, sourceRoot, targetRoot string, result *vshield.RunResult, runErr error) {
	run := &database.Run{
		ID:         a.runID,
		StartedAt:  startedAt,
		FinishedAt: finishedAt,
		Method:     method,
		SourceRoot: sourceRoot,
		TargetRoot: targetRoot,
		Status:     "completed",
	}
	if runErr != nil {
		run.Status = "failed"
	}
	if result != nil {
		run.TotalFound = result.Stats.TotalFound
		run.Succeeded = result.Stats.Succeeded
		run.CopiedOnly = result.Stats.CopiedOnly
		run.Failed = result.Stats.Failed
		run.Skipped = result.Stats.Skipped
	}

	if err := a.store.RecordRun(run); err != nil {
		a.logger.Error("failed to record run history", "error", err)
	}
}

// History returns up to limit recorded runs, most recent first.
func (a *App) History(limit int) ([]*database.Run, error) {
	return a.store.RecentRuns(limit)
}

// Deliver uploads every file of a finished target tree to the configured
// delivery backend. Returns the number of files uploaded.
func (a *App) Deliver(ctx context.Context, tree string) (int, error) {
	root, err := filepath.Abs(tree)
	if err != nil {
		return 0, fmt.Errorf("resolving tree path: %w", err)
	}

	uploader, err := delivery.NewUploaderFromConfig(ctx, a.cfg.Delivery)
	if err != nil {
		return 0, fmt.Errorf("creating delivery backend: %w", err)
	}

	return delivery.Deliver(ctx, uploader, root, a.logger)
}

// Close releases the run-history store and the log file.
func (a *App) Close() error {
	var firstErr error
	if err := a.store.Close(); err != nil {
		firstErr = fmt.Errorf("closing run history store: %w", err)
	}
	if a.logFile != nil {
		a.logFile.Close()
	}
	return firstErr
}
