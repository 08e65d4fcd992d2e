// Copyright 2024 Daniel Erat.
// All rights reserved.

package eval

import (
	"testing"

	"github.com/derat/asreval/confusion"
	"github.com/google/go-cmp/cmp"
)

func TestEvaluate(t *testing.T) {
	for _, tc := range []struct {
		desc     string
		ref, hyp string
		opts     []Option
		skipped  bool
		want     *confusion.Report
	}{
		{
			desc: "case differences fold away when requested",
			ref:  "The Cat",
			hyp:  "the cat",
			opts: []Option{CaseInsensitive()},
			want: report(nil, nil, nil),
		},
		{
			desc: "case differences count by default",
			ref:  "The Cat",
			hyp:  "the cat",
			want: report(nil, nil, []confusion.PairCount{
				{Ref: "The", Hyp: "the", Count: 1},
				{Ref: "Cat", Hyp: "cat", Count: 1},
			}),
		},
		{
			desc:    "empty reference skipped when dropping",
			ref:     "",
			hyp:     "hello world",
			opts:    []Option{DropEmptyRefs()},
			skipped: true,
		},
		{
			desc:    "whitespace-only reference also skipped",
			ref:     "   \t ",
			hyp:     "hello",
			opts:    []Option{DropEmptyRefs()},
			skipped: true,
		},
		{
			desc: "empty reference evaluates to insertions by default",
			ref:  "",
			hyp:  "hello world",
			want: report([]confusion.WordCount{
				{Word: "hello", Count: 1},
				{Word: "world", Count: 1},
			}, nil, nil),
		},
		{
			desc: "both empty evaluates to an empty report",
			ref:  "",
			hyp:  "",
			want: report(nil, nil, nil),
		},
		{
			desc: "empty hypothesis evaluates to deletions",
			ref:  "hello world",
			hyp:  "",
			want: report(nil, []confusion.WordCount{
				{Word: "hello", Count: 1},
				{Word: "world", Count: 1},
			}, nil),
		},
		{
			desc: "pure insertion",
			ref:  "a b c",
			hyp:  "a b c d",
			want: report([]confusion.WordCount{{Word: "d", Count: 1}}, nil, nil),
		},
		{
			desc: "pure deletion",
			ref:  "a b c d",
			hyp:  "a b c",
			want: report(nil, []confusion.WordCount{{Word: "d", Count: 1}}, nil),
		},
		{
			desc: "accents fold away under normalization",
			ref:  "café olé",
			hyp:  "cafe ole",
			opts: []Option{Normalize()},
			want: report(nil, nil, nil),
		},
		{
			desc: "punctuation trimmed from token edges",
			ref:  "hello, world!",
			hyp:  "hello world",
			opts: []Option{StripPunct()},
			want: report(nil, nil, nil),
		},
		{
			desc: "threshold filters rare confusions",
			ref:  "a a a b",
			hyp:  "",
			opts: []Option{MinCount(2)},
			want: report(nil, []confusion.WordCount{{Word: "a", Count: 3}}, nil),
		},
	} {
		rep, skipped := Evaluate(tc.ref, tc.hyp, tc.opts...)
		if skipped != tc.skipped {
			t.Errorf("%v: Evaluate(%q, %q) skipped = %v; want %v",
				tc.desc, tc.ref, tc.hyp, skipped, tc.skipped)
			continue
		}
		if tc.skipped {
			if rep != nil {
				t.Errorf("%v: Evaluate(%q, %q) returned report %+v for skipped pair",
					tc.desc, tc.ref, tc.hyp, rep)
			}
			continue
		}
		if diff := cmp.Diff(tc.want, rep); diff != "" {
			t.Errorf("%v: Evaluate(%q, %q) report mismatch (-want +got):\n%s",
				tc.desc, tc.ref, tc.hyp, diff)
		}
	}
}

func TestEvaluate_Idempotent(t *testing.T) {
	const ref = "the quick brown fox jumps over the lazy dog"
	const hyp = "the quick brown box jumps over a lazy dog again"
	opts := []Option{CaseInsensitive(), MinCount(1)}

	first, _ := Evaluate(ref, hyp, opts...)
	second, _ := Evaluate(ref, hyp, opts...)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("repeated Evaluate differs (-first +second):\n%s", diff)
	}
}

func TestEvaluate_ThresholdMonotonic(t *testing.T) {
	const ref = "a a a b b c"
	const hyp = "x x x y y z"

	var prev *confusion.Report
	for minCount := 0; minCount <= 4; minCount++ {
		rep, _ := Evaluate(ref, hyp, MinCount(minCount))
		if prev != nil {
			if got, want := len(rep.Substitutions), len(prev.Substitutions); got > want {
				t.Errorf("MinCount(%d) produced %d substitutions; MinCount(%d) produced %d",
					minCount, got, minCount-1, want)
			}
			for _, pc := range rep.Substitutions {
				if !containsPair(prev.Substitutions, pc) {
					t.Errorf("MinCount(%d) entry %+v missing at MinCount(%d)",
						minCount, pc, minCount-1)
				}
			}
		}
		prev = rep
	}
}

func containsPair(pcs []confusion.PairCount, want confusion.PairCount) bool {
	for _, pc := range pcs {
		if pc == want {
			return true
		}
	}
	return false
}

// report builds a Report with empty (rather than nil) lists, matching what
// Tables.Report produces.
func report(ins, dels []confusion.WordCount, subs []confusion.PairCount) *confusion.Report {
	if ins == nil {
		ins = []confusion.WordCount{}
	}
	if dels == nil {
		dels = []confusion.WordCount{}
	}
	if subs == nil {
		subs = []confusion.PairCount{}
	}
	return &confusion.Report{Insertions: ins, Deletions: dels, Substitutions: subs}
}
