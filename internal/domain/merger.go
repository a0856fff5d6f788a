package domain

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/johnconna/pyforce-evaluation-v2/internal/adapter"
	m "github.com/johnconna/pyforce-evaluation-v2/internal/model"
)

// Merger moves suffix-matched files from a scratch tree into the shared
// harvest tree, resolving destination collisions with numeric suffixes.
//
// One Merger instance must be shared by every job of a batch: the
// existence-check-and-move sequence for each file runs under a single
// mutex, so concurrent jobs can never race each other for a destination
// path. Which of two equally-named source files ends up unsuffixed is not
// guaranteed; both surviving under distinct names is.
type Merger struct {
	fs adapter.HarvestFSAdapter
	mu sync.Mutex
}

// NewMerger constructs a Merger backed by the provided filesystem adapter.
func NewMerger(fs adapter.HarvestFSAdapter) *Merger {
	return &Merger{fs: fs}
}

// Merge walks scratchRoot, moves every regular file whose name ends in
// suffix to the matching relative path under destRoot, and returns one
// record per moved file. A missing scratch tree yields zero records, not
// an error; directories and non-matching files are left where they are.
func (g *Merger) Merge(scratchRoot, destRoot m.Path, suffix string) ([]m.MergedFile, error) {
	pkg := filepath.Base(string(scratchRoot))

	if exists, err := g.fs.Exists(scratchRoot); err != nil {
		return nil, fmt.Errorf("merge %s: %w", scratchRoot, err)
	} else if !exists {
		return nil, nil
	}

	var merged []m.MergedFile

	err := g.fs.Walk(scratchRoot, true, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() || !info.Mode().IsRegular() || !strings.HasSuffix(info.Name(), suffix) {
			return nil
		}

		rel, err := g.fs.RelPath(scratchRoot, m.Path(path))
		if err != nil {
			return err
		}

		dest, err := g.claimAndMove(m.Path(path), destRoot, rel)
		if err != nil {
			return err
		}

		slog.Debug("harvested file", "source", rel, "dest", dest)
		merged = append(merged, m.MergedFile{Package: pkg, Source: rel, Dest: dest})

		return nil
	})
	if err != nil {
		return merged, fmt.Errorf("merge %s: %w", scratchRoot, err)
	}

	return merged, nil
}

// claimAndMove atomically claims a free destination path for rel under
// destRoot and moves src there. The returned path is relative to destRoot.
func (g *Merger) claimAndMove(src, destRoot, rel m.Path) (m.Path, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	candidate := g.fs.JoinPath(string(destRoot), string(rel))

	// Directory collisions are resolved by idempotent creation, never by
	// suffixing: only individual files are mergeable units.
	if err := g.fs.MkdirAll(m.Path(filepath.Dir(string(candidate))), 0o750); err != nil {
		return "", err
	}

	final := candidate

	for n := 1; ; n++ {
		exists, err := g.fs.Exists(final)
		if err != nil {
			return "", err
		}

		if !exists {
			break
		}

		final = m.Path(numberedPath(string(candidate), n))
	}

	if err := g.fs.Rename(src, final); err != nil {
		return "", err
	}

	return g.fs.RelPath(destRoot, final)
}

// numberedPath inserts a numeric suffix before the final extension:
// name.ext becomes name_1.ext, name_2.ext and so on.
func numberedPath(path string, n int) string {
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)

	return fmt.Sprintf("%s_%d%s", stem, n, ext)
}
