// Package discovery finds run descriptors and report files in an artifact store.
package discovery

import (
	"context"
	"fmt"
	"path"
	"slices"
	"strings"

	"github.com/newthinker/splitgate/internal/core"
	"github.com/newthinker/splitgate/internal/storage/archive"
)

// MetadataFile is the name of the per-run descriptor written by the runner.
const MetadataFile = "run_metadata.json"

// ReportPattern matches the reports a run directory may contain when its
// descriptor names none.
const ReportPattern = "mt5_report*.xml"

// FindMetadata returns the sorted paths of every run descriptor under dir.
func FindMetadata(ctx context.Context, store archive.Storage, dir string) ([]string, error) {
	paths, err := store.List(ctx, dir)
	if err != nil {
		return nil, core.WrapError(core.ErrArchiveFailed, fmt.Errorf("listing %s: %w", dir, err))
	}

	var found []string
	for _, p := range paths {
		if path.Base(p) == MetadataFile && within(p, dir) {
			found = append(found, p)
		}
	}
	if len(found) == 0 {
		return nil, core.WrapError(core.ErrNoRuns, fmt.Errorf("no %s under %s", MetadataFile, dir))
	}
	SortPaths(found)
	return found, nil
}

// SortPaths orders slash-separated paths component by component, so
// "runs/a/x" sorts before "runs/a-b/x".
func SortPaths(paths []string) {
	slices.SortStableFunc(paths, func(a, b string) int {
		return slices.Compare(strings.Split(a, "/"), strings.Split(b, "/"))
	})
}

// ListReports returns the sorted files directly inside dir whose base name
// matches the glob pattern.
func ListReports(ctx context.Context, store archive.Storage, dir, pattern string) ([]string, error) {
	if _, err := path.Match(pattern, ""); err != nil {
		return nil, core.WrapError(core.ErrInputInvalid, fmt.Errorf("glob %q: %w", pattern, err))
	}

	files, err := listDir(ctx, store, dir, pattern)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, core.WrapError(core.ErrNoReports, fmt.Errorf("no %s in %s", pattern, dir))
	}
	return files, nil
}

// listDir lists the files directly inside dir matching pattern. Store
// listings are recursive and sorted, so nested entries are filtered out.
func listDir(ctx context.Context, store archive.Storage, dir, pattern string) ([]string, error) {
	paths, err := store.List(ctx, dir)
	if err != nil {
		return nil, core.WrapError(core.ErrArchiveFailed, fmt.Errorf("listing %s: %w", dir, err))
	}

	var out []string
	for _, p := range paths {
		if !directlyIn(p, dir) {
			continue
		}
		if ok, _ := path.Match(pattern, path.Base(p)); ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// within reports whether p lies under dir. S3 prefixes also match sibling
// keys such as runs2/ for runs, so the check is on whole segments.
func within(p, dir string) bool {
	d := normalize(dir)
	if d == "" {
		return true
	}
	return strings.HasPrefix(normalize(p), d+"/")
}

func directlyIn(p, dir string) bool {
	return normalize(path.Dir(p)) == normalize(dir)
}

// normalize cleans a slash path and drops the leading slash, since object
// stores return keys without one.
func normalize(p string) string {
	p = strings.TrimLeft(path.Clean(p), "/")
	if p == "." {
		return ""
	}
	return p
}
