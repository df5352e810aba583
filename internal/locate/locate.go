// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package locate finds image files on the local filesystem whose name
// approximately matches a query.
//
// One walker runs per search root, all concurrently, each traversing its
// root breadth-first and submitting matches above the admission threshold to
// a shared ResultSet. Walkers check the set size before every directory and
// stop once it reaches the cap, so the result is a bounded sample rather than
// an exhaustive list. Which matches make the sample depends on root sizes and
// traversal order when more than the cap exist.
package locate

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/imagecrypt/internal/logger"
	"github.com/pdiddy/imagecrypt/pkg/types"
)

var log = logger.Named("locate")

// Stats summarizes one search.
type Stats struct {
	Roots    int           `json:"roots" yaml:"roots"`
	Dirs     int           `json:"dirs" yaml:"dirs"`
	Files    int           `json:"files" yaml:"files"`
	Admitted int           `json:"admitted" yaml:"admitted"`
	Skipped  int           `json:"skipped" yaml:"skipped"`
	Cutoff   bool          `json:"cutoff" yaml:"cutoff"`
	TimedOut bool          `json:"timed_out" yaml:"timed_out"`
	Elapsed  time.Duration `json:"elapsed" yaml:"elapsed"`
}

// Output is the ranked result of a search.
type Output struct {
	Query   string  `json:"query" yaml:"query"`
	Matches []Match `json:"matches" yaml:"matches"`
	Stats   Stats   `json:"stats" yaml:"stats"`
}

// Paths returns the matched paths in rank order.
func (o Output) Paths() []string {
	return lo.Map(o.Matches, func(m Match, _ int) string { return m.Path })
}

// Locate returns up to cfg.MaxResults image paths ranked by similarity to
// query. An empty slice means nothing matched; an error is returned only when
// ctx is cancelled by the caller. The query must be non-empty.
func Locate(ctx context.Context, query string, cfg types.LocateConfig) ([]string, error) {
	out, err := Search(ctx, query, cfg)
	if err != nil {
		return nil, err
	}
	return out.Paths(), nil
}

// Search runs one walker per root and ranks what they found. When
// cfg.Timeout expires the walkers stop at their next directory boundary and
// the partial result is returned with Stats.TimedOut set.
func Search(ctx context.Context, query string, cfg types.LocateConfig) (Output, error) {
	cfg = cfg.WithDefaults()
	exts := normalizeExtensions(cfg.Extensions)
	query = NormalizeQuery(query, exts)
	roots := resolveRoots(cfg.Roots)

	searchCtx := ctx
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		searchCtx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	results := &ResultSet{}
	perRoot := make([]walkStats, len(roots))

	var g errgroup.Group
	if cfg.Sequential {
		g.SetLimit(1)
	}
	for i, root := range roots {
		i := i
		w := &walker{
			root:       root,
			query:      query,
			threshold:  cfg.Threshold,
			extensions: exts,
			limit:      cfg.MaxResults,
			results:    results,
			log:        log.WithField("root", root),
		}
		g.Go(func() error {
			perRoot[i] = w.walk(searchCtx)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return Output{}, err
	}

	stats := Stats{Roots: len(roots), Elapsed: time.Since(start)}
	for _, s := range perRoot {
		stats.Dirs += s.Dirs
		stats.Files += s.Files
		stats.Admitted += s.Admitted
		stats.Skipped += s.Skipped
		stats.Cutoff = stats.Cutoff || s.Cutoff
	}
	stats.TimedOut = searchCtx.Err() != nil

	out := Output{
		Query:   query,
		Matches: results.Ranked(cfg.MaxResults),
		Stats:   stats,
	}

	log.WithFields(logger.Fields{
		"query":     query,
		"roots":     stats.Roots,
		"dirs":      stats.Dirs,
		"files":     stats.Files,
		"admitted":  stats.Admitted,
		"skipped":   stats.Skipped,
		"cutoff":    stats.Cutoff,
		"timed_out": stats.TimedOut,
		"elapsed":   stats.Elapsed,
	}).Debug("search complete")

	return out, nil
}

// NormalizeQuery lower-cases and trims the query and strips a trailing
// admissible extension, so "Beach.PNG" and "beach" search alike.
func NormalizeQuery(query string, extensions []string) string {
	q := strings.ToLower(strings.TrimSpace(query))
	ext := filepath.Ext(q)
	if ext != "" && ext != q && lo.Contains(extensions, ext) {
		q = strings.TrimSuffix(q, ext)
	}
	return q
}

// normalizeExtensions lower-cases extensions and adds a missing leading dot.
func normalizeExtensions(exts []string) []string {
	return lo.Map(exts, func(e string, _ int) string {
		e = strings.ToLower(strings.TrimSpace(e))
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		return e
	})
}

// DefaultRoots returns the per-user desktop, pictures, documents, photos and
// downloads directories. Missing directories are kept; they yield nothing.
func DefaultRoots() []string {
	home, err := os.UserHomeDir()
	if err != nil {
		log.Warnf("no home directory: %v", err)
		return nil
	}
	return lo.Map([]string{"Desktop", "Pictures", "Documents", "Photos", "Downloads"},
		func(name string, _ int) string { return filepath.Join(home, name) })
}

// resolveRoots expands "~" and makes each root absolute. Empty roots fall
// back to DefaultRoots.
func resolveRoots(roots []string) []string {
	if len(roots) == 0 {
		return DefaultRoots()
	}
	home, _ := os.UserHomeDir()
	resolved := make([]string, 0, len(roots))
	for _, r := range roots {
		if home != "" && (r == "~" || strings.HasPrefix(r, "~/")) {
			r = filepath.Join(home, strings.TrimPrefix(r, "~"))
		}
		if abs, err := filepath.Abs(r); err == nil {
			r = abs
		}
		resolved = append(resolved, r)
	}
	return resolved
}
