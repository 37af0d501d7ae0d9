package vshield

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Outcome is the terminal result of processing one classified file.
type Outcome struct {
	RelPath     string
	Disposition Disposition
	// TargetPath is the absolute path of the placed artifact; set on success.
	TargetPath string
	// SideList marks a placed file that belongs in the manifest header
	// annotations rather than the manifest body (.lst files).
	SideList bool
	// Err is the failure reason; nil on success.
	Err error
}

// Succeeded reports whether the file was placed in the target tree.
func (o Outcome) Succeeded() bool { return o.Err == nil }

// Pipeline places classified files under the target root, mirroring each
// file's source-relative path. Transformed files change only their
// extension, per the tool's output-suffix convention.
type Pipeline struct {
	sourceRoot string
	targetRoot string
	protector  Protector
	logger     Logger
}

func NewPipeline(sourceRoot, targetRoot string, protector Protector, logger Logger) *Pipeline {
	return &Pipeline{
		sourceRoot: sourceRoot,
		targetRoot: targetRoot,
		protector:  protector,
		logger:     logger,
	}
}

// Process executes the file's disposition. Failures are returned inside
// the Outcome; they never abort the batch.
func (p *Pipeline) Process(ctx context.Context, f ClassifiedFile) Outcome {
	switch f.Disposition {
	case CopyOnly:
		return p.copyOriginal(f)
	case Transform:
		return p.transform(ctx, f)
	default:
		return Outcome{
			RelPath:     f.RelPath,
			Disposition: f.Disposition,
			Err:         fmt.Errorf("file reached pipeline with disposition %s", f.Disposition),
		}
	}
}

// copyOriginal mirrors the file into the target tree unchanged.
func (p *Pipeline) copyOriginal(f ClassifiedFile) Outcome {
	o := Outcome{RelPath: f.RelPath, Disposition: CopyOnly, SideList: f.Ext == ListExtension}

	target := filepath.Join(p.targetRoot, f.RelPath)
	if err := copyFile(f.AbsPath, target); err != nil {
		o.Err = fmt.Errorf("copying file: %w", err)
		return o
	}

	p.logger.Debug("copy-only successful", "source", f.AbsPath, "target", target)
	o.TargetPath = target
	return o
}

// transform runs the protection tool, relocates its artifact into the
// target tree with the mapped extension, and removes the transient
// artifact from the source tree. The transient artifact is removed even
// when the relocation fails, so a failed run never leaves the source
// tree dirty.
func (p *Pipeline) transform(ctx context.Context, f ClassifiedFile) Outcome {
	o := Outcome{RelPath: f.RelPath, Disposition: Transform}

	artifact, err := p.protector.Protect(ctx, f.AbsPath)
	if err != nil {
		o.Err = err
		return o
	}

	targetRel := strings.TrimSuffix(f.RelPath, f.Ext) + filepath.Ext(artifact)
	target := filepath.Join(p.targetRoot, targetRel)

	copyErr := copyFile(artifact, target)
	if rmErr := os.Remove(artifact); rmErr != nil {
		p.logger.Warn("could not remove transient artifact", "artifact", artifact, "error", rmErr)
	}
	if copyErr != nil {
		o.Err = fmt.Errorf("copying artifact: %w", copyErr)
		return o
	}

	p.logger.Debug("protected file placed", "source", f.AbsPath, "target", target)
	o.TargetPath = target
	return o
}

// copyFile copies src to dst byte-for-byte, creating parent directories
// as needed and preserving the file mode and modification time.
func copyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	if err := os.Chmod(dst, info.Mode().Perm()); err != nil {
		return err
	}
	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}
