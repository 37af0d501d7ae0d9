package vshield

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// DefaultToolTimeout bounds a single protection tool invocation.
const DefaultToolTimeout = 5 * time.Minute

// Protector runs the external protection tool on one source file and
// returns the absolute path of the artifact it produced in the source
// tree. The error, when non-nil, is the per-file failure reason and must
// distinguish timeout, missing tool, bad exit status, and missing artifact.
type Protector interface {
	Protect(ctx context.Context, absPath string) (artifact string, err error)
}

// VCSProtector invokes the VCS encryption command:
//
//	<binary> +<method> -sverilog <absolute file path>
//
// run in the file's own directory. The tool's internals are opaque; the
// contract is a zero exit status plus an artifact named like the input
// with a "p" appended to its extension (.v -> .vp, .sv -> .svp).
type VCSProtector struct {
	binary  string
	method  string
	timeout time.Duration
	logger  Logger
}

// NewVCSProtector creates a protector for the given tool binary and
// method. A zero timeout falls back to DefaultToolTimeout.
func NewVCSProtector(binary, method string, timeout time.Duration, logger Logger) *VCSProtector {
	if timeout <= 0 {
		timeout = DefaultToolTimeout
	}
	return &VCSProtector{binary: binary, method: method, timeout: timeout, logger: logger}
}

// Protect runs the tool on absPath and verifies the artifact exists.
func (p *VCSProtector) Protect(ctx context.Context, absPath string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, p.binary, "+"+p.method, "-sverilog", absPath)
	cmd.Dir = filepath.Dir(absPath)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	p.logger.Debug("invoking protection tool", "binary", p.binary, "method", p.method, "file", absPath)
	runErr := cmd.Run()

	if runErr != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("protection timed out after %s", p.timeout)
		}
		if errors.Is(runErr, exec.ErrNotFound) {
			return "", fmt.Errorf("protection tool %q not found in PATH", p.binary)
		}
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			p.logger.Error("protection tool failed",
				"file", absPath,
				"exit_status", exitErr.ExitCode(),
				"stdout", stdout.String(),
				"stderr", stderr.String())
			return "", fmt.Errorf("protection tool exited with status %d", exitErr.ExitCode())
		}
		return "", fmt.Errorf("running protection tool: %w", runErr)
	}

	// Zero exit alone is not success: the artifact must exist on disk.
	artifact := absPath + "p"
	if _, err := os.Stat(artifact); err != nil {
		p.logger.Error("protection tool produced no artifact",
			"file", absPath,
			"stdout", stdout.String(),
			"stderr", stderr.String())
		return "", fmt.Errorf("protection tool produced no artifact %s", filepath.Base(artifact))
	}

	p.logger.Debug("protection successful", "artifact", artifact)
	return artifact, nil
}

var _ Protector = (*VCSProtector)(nil)
