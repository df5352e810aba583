// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRatio(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "vacation", "vacation", 1.0},
		{"missing numeric suffix", "vacation2020", "vacation", 0.8},
		{"extra word", "vacationphoto", "vacation", 16.0 / 21.0},
		{"shifted window", "abcd", "bcde", 0.75},
		{"nothing shared", "abc", "xyz", 0.0},
		{"below threshold", "beach", "vacation", 4.0 / 13.0},
		{"both empty", "", "", 1.0},
		{"one empty", "photo", "", 0.0},
		{"order dependent greedy match", "tide", "diet", 0.5},
		{"runes not bytes", "café", "cafe", 0.75},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Ratio(tt.a, tt.b), 1e-9)
		})
	}
}

func TestRatioSymmetric(t *testing.T) {
	pairs := [][2]string{
		{"tide", "diet"},
		{"vacation2020", "vacation"},
		{"img_0042", "img0042"},
		{"screenshot 2024-01-01", "screenshot"},
		{"abab", "baba"},
		{"passport scan", "scan passport"},
	}
	for _, p := range pairs {
		assert.Equal(t, Ratio(p[0], p[1]), Ratio(p[1], p[0]), "%q vs %q", p[0], p[1])
	}
}

func TestRatioIdentity(t *testing.T) {
	for _, s := range []string{"a", "holiday", "img_0001", "日本の写真", "aaaa"} {
		assert.Equal(t, 1.0, Ratio(s, s), s)
	}
}

func TestRatioBounds(t *testing.T) {
	inputs := []string{"", "a", "ab", "ba", "report-final", "final report", "zzz"}
	for _, a := range inputs {
		for _, b := range inputs {
			r := Ratio(a, b)
			assert.GreaterOrEqual(t, r, 0.0, "%q vs %q", a, b)
			assert.LessOrEqual(t, r, 1.0, "%q vs %q", a, b)
		}
	}
}

func TestMatchedRecursesIntoRemainders(t *testing.T) {
	// "ab" is found first; "cd" comes from the right remainder.
	assert.Equal(t, 4, Matched([]rune("abxxcd"), []rune("abcd")))
	assert.Equal(t, 0, Matched([]rune("abc"), nil))
}
