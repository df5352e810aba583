// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package locate

import (
	"sort"
	"sync"
)

// Match is a candidate image path paired with its similarity to the query.
type Match struct {
	Path  string  `json:"path" yaml:"path"`
	Score float64 `json:"score" yaml:"score"`
}

// ResultSet accumulates admitted matches from concurrently running walkers.
// Submit never drops or de-duplicates; the cap is applied by Ranked.
type ResultSet struct {
	mu      sync.Mutex
	matches []Match
}

// Submit appends m in discovery order.
func (r *ResultSet) Submit(m Match) {
	r.mu.Lock()
	r.matches = append(r.matches, m)
	r.mu.Unlock()
}

// Size returns the number of matches submitted so far.
func (r *ResultSet) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.matches)
}

// Ranked returns at most limit matches sorted by descending score. Equal
// scores keep discovery order. A limit <= 0 returns every match.
func (r *ResultSet) Ranked(limit int) []Match {
	r.mu.Lock()
	ranked := make([]Match, len(r.matches))
	copy(ranked, r.matches)
	r.mu.Unlock()

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
