package fix

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/scottrw93/maven-plugins/internal/pom"
)

// CheckpointSuffix is appended to the document path when the optional
// between-phases snapshot is enabled.
const CheckpointSuffix = ".step1"

// Options configures a fix run. The zero value is the default behavior.
type Options struct {
	// FailOnWarning promotes recoverable warnings to a fatal error. The
	// document is left untouched in that case.
	FailOnWarning bool
	// VerboseOutput logs every generated declaration block.
	VerboseOutput bool
	// Skip turns the run into a no-op.
	Skip bool
	// Checkpoint writes the document state after the removal phase to
	// path+CheckpointSuffix as a diagnostic snapshot. The file is never
	// cleaned up here.
	Checkpoint bool
	// DryRun renders a diff instead of rewriting the document.
	DryRun bool
}

// Result reports what a fix run did.
type Result struct {
	Changed  bool
	Removed  int
	Added    int
	Warnings []Warning
	// Diff is only populated on dry runs.
	Diff string
}

// Fixer sequences the two edit phases against one document. All state is
// explicit: the loader capability, the logger, and the options are the whole
// of it, and Fix returns everything it learns instead of stashing it.
type Fixer struct {
	loader pom.Loader
	log    *slog.Logger
	opts   Options
}

// New creates a Fixer. A nil logger defaults to slog.Default().
func New(loader pom.Loader, logger *slog.Logger, opts Options) *Fixer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fixer{loader: loader, log: logger, opts: opts}
}

// Fix removes every declaration matching a key in remove and inserts every
// addition, rewriting the document at path with a minimal line diff.
//
// The document is read once into a line buffer. Removals are planned against
// a fresh structural parse and applied bottom-up; the buffer is then
// re-parsed so that insertion planning sees positions consistent with the
// committed deletions. Warnings never abort the run unless FailOnWarning is
// set, in which case nothing is written. With both sets empty the document is
// not touched at all.
func (f *Fixer) Fix(path string, adds []Addition, remove map[string]struct{}) (*Result, error) {
	if f.opts.Skip {
		f.log.Info("skipping fix", "pom", path)
		return &Result{}, nil
	}
	if len(adds) == 0 && len(remove) == 0 {
		f.log.Info("nothing to fix", "pom", path)
		return &Result{}, nil
	}

	model, err := f.loader.Load(path)
	if err != nil {
		return nil, err
	}
	buf, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	original := buf.Bytes()

	deletions, warnings := PlanRemovals(model, remove)
	for _, w := range warnings {
		f.log.Warn(w.String(), "pom", path)
	}
	if f.opts.FailOnWarning && len(warnings) > 0 {
		return nil, fmt.Errorf("%d dependencies could not be fixed", len(warnings))
	}
	if err := buf.Apply(deletions); err != nil {
		return nil, fmt.Errorf("applying removals: %w", err)
	}

	if f.opts.Checkpoint && len(deletions) > 0 && !f.opts.DryRun {
		checkpoint := path + CheckpointSuffix
		if err := buf.WriteCheckpoint(checkpoint); err != nil {
			return nil, err
		}
		f.log.Debug("wrote removal-phase checkpoint", "path", checkpoint)
	}

	// Refresh: every span in the pre-removal model is stale now. Re-derive
	// positions from the buffer's current content before planning insertions.
	// Parent-inherited managed versions survive from the initial load.
	refreshed, err := pom.Parse(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("re-parsing after removals: %w", err)
	}
	refreshed.Managed.Merge(model.Managed)

	insertions, err := PlanInsertions(refreshed, adds, refreshed.Managed)
	if err != nil {
		if errors.Is(err, pom.ErrNoDependencySection) {
			return nil, err
		}
		return nil, fmt.Errorf("planning insertions: %w", err)
	}
	if f.opts.VerboseOutput {
		for _, e := range insertions {
			f.log.Info("generated declaration", "pom", path, "block", strings.Join(e.Lines, "\n"))
		}
	}
	if err := buf.Apply(insertions); err != nil {
		return nil, fmt.Errorf("applying insertions: %w", err)
	}

	result := &Result{
		Removed:  len(deletions),
		Added:    len(insertions),
		Warnings: warnings,
		Changed:  !bytes.Equal(original, buf.Bytes()),
	}

	if f.opts.DryRun {
		if result.Changed {
			result.Diff = RenderDiff(original, buf.Bytes())
		}
		return result, nil
	}
	if !result.Changed {
		return result, nil
	}

	f.log.Info("writing updated POM", "pom", path,
		"removed", result.Removed, "added", result.Added)
	if err := buf.WriteFile(path); err != nil {
		return nil, err
	}
	return result, nil
}
