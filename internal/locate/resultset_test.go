// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package locate

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultSetConcurrentSubmit(t *testing.T) {
	var rs ResultSet
	var wg sync.WaitGroup
	const walkers, each = 8, 250

	for w := 0; w < walkers; w++ {
		w := w
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < each; i++ {
				rs.Submit(Match{Path: fmt.Sprintf("/w%d/%d.png", w, i), Score: 0.6})
				_ = rs.Size()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, walkers*each, rs.Size())
	assert.Len(t, rs.Ranked(0), walkers*each)
}

func TestResultSetKeepsDuplicates(t *testing.T) {
	var rs ResultSet
	rs.Submit(Match{Path: "/a.png", Score: 0.7})
	rs.Submit(Match{Path: "/a.png", Score: 0.7})
	assert.Equal(t, 2, rs.Size())
}

func TestResultSetRanked(t *testing.T) {
	var rs ResultSet
	for _, m := range []Match{
		{"/first-tie.png", 0.8},
		{"/low.png", 0.55},
		{"/top.png", 0.95},
		{"/second-tie.png", 0.8},
		{"/mid.png", 0.6},
	} {
		rs.Submit(m)
	}

	tests := []struct {
		name  string
		limit int
		want  []string
	}{
		{"all", 0, []string{"/top.png", "/first-tie.png", "/second-tie.png", "/mid.png", "/low.png"}},
		{"truncated", 3, []string{"/top.png", "/first-tie.png", "/second-tie.png"}},
		{"limit above size", 10, []string{"/top.png", "/first-tie.png", "/second-tie.png", "/mid.png", "/low.png"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Output{Matches: rs.Ranked(tt.limit)}.Paths()
			assert.Equal(t, tt.want, got)
		})
	}

	// Ranking does not consume or reorder the accumulated set.
	require.Equal(t, 5, rs.Size())
	assert.Equal(t, "/top.png", rs.Ranked(1)[0].Path)
}
