// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package locate

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/lo"

	"github.com/pdiddy/imagecrypt/internal/logger"
	"github.com/pdiddy/imagecrypt/internal/similarity"
)

// walkStats counts what one walker did.
type walkStats struct {
	Dirs     int
	Files    int
	Admitted int
	Skipped  int
	Cutoff   bool
}

// walker traverses one root breadth-first and submits matches to a shared
// ResultSet. It stops before starting a directory once the set holds limit
// matches or ctx is done; a listing already started always finishes.
type walker struct {
	root       string
	query      string
	threshold  float64
	extensions []string
	limit      int
	results    *ResultSet
	log        *logger.Entry
}

func (w *walker) walk(ctx context.Context) walkStats {
	var stats walkStats
	queue := []string{w.root}

	for len(queue) > 0 {
		if w.results.Size() >= w.limit {
			stats.Cutoff = true
			break
		}
		if ctx.Err() != nil {
			break
		}

		dir := queue[0]
		queue = queue[1:]

		// On error ReadDir still returns the entries read before it failed.
		entries, err := os.ReadDir(dir)
		if err != nil {
			w.skip(dir, err)
			stats.Skipped++
		} else {
			stats.Dirs++
		}

		for _, entry := range entries {
			path := filepath.Join(dir, entry.Name())

			isFile, isDir, err := classify(path, entry)
			if err != nil {
				w.skip(path, err)
				stats.Skipped++
				continue
			}
			switch {
			case isDir:
				queue = append(queue, path)
			case isFile:
				stats.Files++
				if m, ok := w.score(path, entry.Name()); ok {
					w.results.Submit(m)
					stats.Admitted++
				}
			}
		}
	}
	return stats
}

// score returns the match for an admissible file scoring above the threshold.
func (w *walker) score(path, name string) (Match, bool) {
	lower := strings.ToLower(name)
	ext := filepath.Ext(lower)
	stem := strings.TrimSuffix(lower, ext)
	if stem == "" || !lo.Contains(w.extensions, ext) {
		return Match{}, false
	}
	s := similarity.Ratio(stem, w.query)
	if s <= w.threshold {
		return Match{}, false
	}
	return Match{Path: path, Score: s}, true
}

// classify reports whether entry is a regular file or a directory to descend.
// Symlinks to regular files count as files; symlinked directories are not
// descended.
func classify(path string, entry fs.DirEntry) (isFile, isDir bool, err error) {
	mode := entry.Type()
	switch {
	case mode.IsRegular():
		return true, false, nil
	case mode.IsDir():
		return false, true, nil
	case mode&fs.ModeSymlink != 0:
		info, err := os.Stat(path)
		if err != nil {
			return false, false, err
		}
		return info.Mode().IsRegular(), false, nil
	}
	return false, false, nil
}

func (w *walker) skip(path string, err error) {
	if errors.Is(err, fs.ErrPermission) || errors.Is(err, fs.ErrNotExist) {
		w.log.WithField("path", path).Debugf("skipped: %v", err)
		return
	}
	w.log.WithField("path", path).Warnf("skipped: %v", err)
}
