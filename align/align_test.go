// Copyright 2024 Daniel Erat.
// All rights reserved.

package align

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestTokens(t *testing.T) {
	for _, tc := range []struct {
		ref, hyp string
		want     []Op
	}{
		{"", "", nil},
		{"a", "a", []Op{{Match, 0, 1, 0, 1}}},
		{"a b c", "a b c", []Op{{Match, 0, 3, 0, 3}}},
		{"", "a b", []Op{{Insert, 0, 0, 0, 2}}},
		{"a b", "", []Op{{Delete, 0, 2, 0, 0}}},
		{"a", "b", []Op{{Replace, 0, 1, 0, 1}}},
		{"The Cat", "the cat", []Op{{Replace, 0, 1, 0, 1}, {Replace, 1, 2, 1, 2}}},
		{"a x c", "a y c", []Op{{Match, 0, 1, 0, 1}, {Replace, 1, 2, 1, 2}, {Match, 2, 3, 2, 3}}},
		{"a b c", "a b c d", []Op{{Match, 0, 3, 0, 3}, {Insert, 3, 3, 3, 4}}},
		{"a b c d", "a b c", []Op{{Match, 0, 3, 0, 3}, {Delete, 3, 4, 3, 3}}},
		{"a x y b", "a b", []Op{{Match, 0, 1, 0, 1}, {Delete, 1, 3, 1, 1}, {Match, 3, 4, 1, 2}}},
		{"a b", "a x y b", []Op{{Match, 0, 1, 0, 1}, {Insert, 1, 1, 1, 3}, {Match, 1, 2, 3, 4}}},
	} {
		ref, hyp := strings.Fields(tc.ref), strings.Fields(tc.hyp)
		if got := Tokens(ref, hyp); !cmp.Equal(got, tc.want) {
			t.Errorf("Tokens(%q, %q) = %v; want %v", tc.ref, tc.hyp, got, tc.want)
		}
	}
}

// TestTokens_Invariants checks structural properties that must hold for
// arbitrary inputs: ops partition both sequences in order with no gaps or
// overlaps, span shapes match op kinds, adjacent non-replace ops never share
// a kind, and the total cost equals an independently computed edit distance.
func TestTokens_Invariants(t *testing.T) {
	for _, tc := range []struct {
		ref, hyp string
	}{
		{"", ""},
		{"a", ""},
		{"", "a"},
		{"a b c", "c d e"}, // minimal alignment differs from longest-common-subsequence diff
		{"the quick brown fox", "the quack brown wolf jumped"},
		{"a a a", "a a"},
		{"x", "x x x"},
		{"to be or not to be", "be or not to not be"},
		{"one two three four five", "six seven eight"},
		{"hola qué tal", "hola que tal"},
	} {
		ref, hyp := strings.Fields(tc.ref), strings.Fields(tc.hyp)
		ops := Tokens(ref, hyp)
		checkOps(t, tc.ref, tc.hyp, ref, hyp, ops)

		if got, want := Cost(ops), levDist(ref, hyp); got != want {
			t.Errorf("Cost(Tokens(%q, %q)) = %v; want %v", tc.ref, tc.hyp, got, want)
		}
		// Merging must preserve coverage and cost.
		merged := Merge(ops)
		if got, want := Cost(merged), Cost(ops); got != want {
			t.Errorf("Cost(Merge(Tokens(%q, %q))) = %v; want %v", tc.ref, tc.hyp, got, want)
		}
	}
}

func TestMerge(t *testing.T) {
	for _, tc := range []struct {
		desc string
		ops  []Op
		want []Op
	}{
		{"empty", nil, nil},
		{
			"adjacent replaces",
			[]Op{{Replace, 0, 1, 0, 1}, {Replace, 1, 2, 1, 2}},
			[]Op{{Replace, 0, 2, 0, 2}},
		},
		{
			"mixed runs",
			[]Op{
				{Match, 0, 1, 0, 1},
				{Replace, 1, 2, 1, 2},
				{Replace, 2, 3, 2, 3},
				{Insert, 3, 3, 3, 4},
				{Insert, 3, 3, 4, 5},
				{Delete, 3, 4, 5, 5},
			},
			[]Op{
				{Match, 0, 1, 0, 1},
				{Replace, 1, 3, 1, 3},
				{Insert, 3, 3, 3, 5},
				{Delete, 3, 4, 5, 5},
			},
		},
		{
			"nothing to merge",
			[]Op{{Match, 0, 2, 0, 2}, {Delete, 2, 3, 2, 2}, {Match, 3, 4, 2, 3}},
			[]Op{{Match, 0, 2, 0, 2}, {Delete, 2, 3, 2, 2}, {Match, 3, 4, 2, 3}},
		},
	} {
		if got := Merge(tc.ops); !cmp.Equal(got, tc.want) {
			t.Errorf("%v: Merge(%v) = %v; want %v", tc.desc, tc.ops, got, tc.want)
		}
	}
}

func TestCost(t *testing.T) {
	for _, tc := range []struct {
		ops  []Op
		want int
	}{
		{nil, 0},
		{[]Op{{Match, 0, 4, 0, 4}}, 0},
		{[]Op{{Insert, 0, 0, 0, 3}}, 3},
		{[]Op{{Delete, 0, 2, 0, 0}}, 2},
		{[]Op{{Replace, 0, 1, 0, 1}}, 1},
		{[]Op{{Replace, 0, 2, 0, 3}}, 3}, // 2 substitutions plus 1 insertion
		{[]Op{{Match, 0, 1, 0, 1}, {Replace, 1, 4, 1, 2}}, 3},
	} {
		if got := Cost(tc.ops); got != tc.want {
			t.Errorf("Cost(%v) = %v; want %v", tc.ops, got, tc.want)
		}
	}
}

// checkOps reports errors for any structural invariant of ops that doesn't
// hold for the supplied token sequences.
func checkOps(t *testing.T, refLine, hypLine string, ref, hyp []string, ops []Op) {
	t.Helper()
	ri, hi := 0, 0
	for i, op := range ops {
		if op.RefStart != ri || op.HypStart != hi {
			t.Errorf("Tokens(%q, %q) op %d starts at %d,%d; want %d,%d",
				refLine, hypLine, i, op.RefStart, op.HypStart, ri, hi)
			return
		}
		rlen, hlen := op.RefEnd-op.RefStart, op.HypEnd-op.HypStart
		switch op.Kind {
		case Match:
			if rlen != hlen || rlen == 0 {
				t.Errorf("Tokens(%q, %q) op %d is a %d:%d match", refLine, hypLine, i, rlen, hlen)
			}
			for k := 0; k < rlen && k < hlen; k++ {
				if ref[op.RefStart+k] != hyp[op.HypStart+k] {
					t.Errorf("Tokens(%q, %q) op %d matches %q against %q",
						refLine, hypLine, i, ref[op.RefStart+k], hyp[op.HypStart+k])
				}
			}
		case Insert:
			if rlen != 0 || hlen == 0 {
				t.Errorf("Tokens(%q, %q) op %d is a %d:%d insert", refLine, hypLine, i, rlen, hlen)
			}
		case Delete:
			if rlen == 0 || hlen != 0 {
				t.Errorf("Tokens(%q, %q) op %d is a %d:%d delete", refLine, hypLine, i, rlen, hlen)
			}
		case Replace:
			if rlen != 1 || hlen != 1 {
				t.Errorf("Tokens(%q, %q) op %d is a %d:%d replace", refLine, hypLine, i, rlen, hlen)
			} else if ref[op.RefStart] == hyp[op.HypStart] {
				t.Errorf("Tokens(%q, %q) op %d replaces %q with itself",
					refLine, hypLine, i, ref[op.RefStart])
			}
		}
		if i > 0 && ops[i-1].Kind == op.Kind && op.Kind != Replace {
			t.Errorf("Tokens(%q, %q) has unmerged %v ops at %d", refLine, hypLine, op.Kind, i)
		}
		ri, hi = op.RefEnd, op.HypEnd
	}
	if ri != len(ref) || hi != len(hyp) {
		t.Errorf("Tokens(%q, %q) ops end at %d,%d; want %d,%d",
			refLine, hypLine, ri, hi, len(ref), len(hyp))
	}
}

// levDist computes the Levenshtein distance between ref and hyp without
// recovering ops, so that Tokens can be checked against it.
func levDist(ref, hyp []string) int {
	prev := make([]int, len(hyp)+1)
	cur := make([]int, len(hyp)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ref); i++ {
		cur[0] = i
		for j := 1; j <= len(hyp); j++ {
			min := prev[j-1]
			if ref[i-1] != hyp[j-1] {
				min++
			}
			if d := prev[j] + 1; d < min {
				min = d
			}
			if d := cur[j-1] + 1; d < min {
				min = d
			}
			cur[j] = min
		}
		prev, cur = cur, prev
	}
	return prev[len(hyp)]
}
