// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package similarity scores how closely a candidate file name matches a query.
//
// The score is a block-matching ratio: the longest common contiguous run of
// the two strings is found, the same search is repeated on the unmatched
// left and right remainders, and the matched lengths M are summed. The ratio
// is 2*M / (len(a) + len(b)). Identical strings score 1.0 and strings with no
// common character score 0.0.
package similarity

// Ratio returns the block-matching similarity of a and b in [0, 1].
// Both inputs are expected to be normalized (lower case) by the caller.
// Lengths are counted in runes. Two empty strings are identical and score 1.0.
//
// Greedy block matching depends on argument order ("tide" against "diet"
// matches one block, the reverse matches two), so Ratio takes the larger of
// both orders. The result is symmetric and never lower than either order.
func Ratio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1.0
	}
	m := max(Matched(ra, rb), Matched(rb, ra))
	return 2.0 * float64(m) / float64(total)
}

// Matched returns the total length of all matching blocks between a and b.
func Matched(a, b []rune) int {
	type span struct{ alo, ahi, blo, bhi int }

	matched := 0
	pending := []span{{0, len(a), 0, len(b)}}
	for len(pending) > 0 {
		s := pending[len(pending)-1]
		pending = pending[:len(pending)-1]

		i, j, k := longestMatch(a, b, s.alo, s.ahi, s.blo, s.bhi)
		if k == 0 {
			continue
		}
		matched += k
		if s.alo < i && s.blo < j {
			pending = append(pending, span{s.alo, i, s.blo, j})
		}
		if i+k < s.ahi && j+k < s.bhi {
			pending = append(pending, span{i + k, s.ahi, j + k, s.bhi})
		}
	}
	return matched
}

// longestMatch finds the longest common run of a[alo:ahi] and b[blo:bhi].
// Among equally long runs it returns the one starting earliest in a, then
// earliest in b. It returns (alo, blo, 0) when nothing matches.
func longestMatch(a, b []rune, alo, ahi, blo, bhi int) (besti, bestj, bestk int) {
	besti, bestj = alo, blo

	// prev[j+1] holds the length of the run ending at a[i-1], b[j].
	width := bhi - blo + 1
	prev := make([]int, width)
	cur := make([]int, width)
	for i := alo; i < ahi; i++ {
		for j := blo; j < bhi; j++ {
			if a[i] != b[j] {
				cur[j-blo+1] = 0
				continue
			}
			k := prev[j-blo] + 1
			cur[j-blo+1] = k
			if k > bestk {
				besti, bestj, bestk = i-k+1, j-k+1, k
			}
		}
		prev, cur = cur, prev
	}
	return besti, bestj, bestk
}
