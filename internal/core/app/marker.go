package app

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"logicdoc/internal/core/errors"
	"logicdoc/internal/shared/observability"
	"logicdoc/internal/ui/report"

	"github.com/pmezard/go-difflib/difflib"
)

// markerWriter prepends a one-line "documented by" comment to source files.
type markerWriter struct {
	template string
	dryRun   bool
	// afterWrite runs for every file actually rewritten.
	afterWrite func(path string)
}

type markerOutcome struct {
	Added bool
	Diff  string
}

func markerText(template string, phase int) string {
	return fmt.Sprintf(template, phase)
}

// markerLine returns the comment line for ext, or false when the file type
// cannot carry a comment.
func markerLine(ext, marker string) (string, bool) {
	switch strings.ToLower(ext) {
	case ".json":
		return "", false
	case ".ts", ".tsx", ".js", ".jsx", ".mjs", ".cjs", ".mts", ".cts":
		return "// " + marker + "\n", true
	default:
		return "# " + marker + "\n", true
	}
}

// Apply adds the phase marker to the file at src.Abs unless it is already
// present. In dry-run mode the file is left alone and a unified diff of the
// pending change is returned instead. The marker is prepended to the bytes
// as read, so content that is not valid UTF-8 survives unchanged.
func (m *markerWriter) Apply(src source, phase int) (markerOutcome, error) {
	marker := markerText(m.template, phase)
	if strings.Contains(src.Text, marker) {
		return markerOutcome{}, nil
	}
	line, ok := markerLine(filepath.Ext(src.Abs), marker)
	if !ok {
		return markerOutcome{}, nil
	}
	raw := src.Raw
	if raw == nil {
		raw = []byte(src.Text)
	}
	next := make([]byte, 0, len(line)+len(raw))
	next = append(next, line...)
	next = append(next, raw...)

	if m.dryRun {
		diff, err := markerDiff(src.Rel, src.Text, line+src.Text)
		if err != nil {
			return markerOutcome{}, err
		}
		return markerOutcome{Diff: diff}, nil
	}

	if err := report.WriteFileAtomic(src.Abs, next); err != nil {
		if stderrors.Is(err, fs.ErrPermission) {
			derr := errors.Wrap(err, errors.CodePermissionDenied, "source file is not writable")
			return markerOutcome{}, errors.AddContext(derr, errors.CtxPath, src.Rel)
		}
		return markerOutcome{}, fmt.Errorf("add documentation marker to %s: %w", src.Rel, err)
	}
	observability.MarkersAddedTotal.Inc()
	slog.Info("added documentation marker", "path", src.Rel, "phase", phase)
	if m.afterWrite != nil {
		m.afterWrite(src.Abs)
	}
	return markerOutcome{Added: true}, nil
}

func markerDiff(name, before, after string) (string, error) {
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: "a/" + filepath.ToSlash(name),
		ToFile:   "b/" + filepath.ToSlash(name),
		Context:  2,
	})
}
