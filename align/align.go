// Copyright 2024 Daniel Erat.
// All rights reserved.

// Package align computes minimal edit alignments between token sequences.
package align

import "fmt"

// Kind describes how an Op relates a reference span to a hypothesis span.
type Kind int

const (
	// Match aligns equal-length spans of pairwise-identical tokens.
	Match Kind = iota
	// Insert covers hypothesis tokens with no reference counterpart.
	Insert
	// Delete covers reference tokens with no hypothesis counterpart.
	Delete
	// Replace aligns a reference span against a differing hypothesis span.
	Replace
)

// String returns a lowercase name for k, e.g. "match".
func (k Kind) String() string {
	switch k {
	case Match:
		return "match"
	case Insert:
		return "insert"
	case Delete:
		return "delete"
	case Replace:
		return "replace"
	default:
		return fmt.Sprintf("unknown (%d)", int(k))
	}
}

// Op relates a span of a reference token sequence to a span of a hypothesis
// token sequence. Spans are half-open: [RefStart,RefEnd) indexes into the
// reference and [HypStart,HypEnd) into the hypothesis. Insert ops have an
// empty reference span and Delete ops an empty hypothesis span.
type Op struct {
	Kind             Kind
	RefStart, RefEnd int
	HypStart, HypEnd int
}

func (op Op) String() string {
	return fmt.Sprintf("%s[%d:%d,%d:%d]", op.Kind, op.RefStart, op.RefEnd, op.HypStart, op.HypEnd)
}

// Tokens aligns ref against hyp and returns ops that exactly cover both
// sequences in order, with the minimum possible number of edits (unit cost
// per inserted, deleted, or substituted token). Runs of consecutive matches,
// insertions, and deletions are merged into single ops; each Replace op spans
// exactly one token on each side. Use Merge to also merge adjacent replaces.
//
// The distance table is filled using the Wagner-Fischer algorithm
// (https://en.wikipedia.org/wiki/Wagner%E2%80%93Fischer_algorithm)
// and then walked backward to recover the ops.
func Tokens(ref, hyp []string) []Op {
	d := table(ref, hyp)

	// Walk back from the final cell, collecting one op per edit step.
	// Match and Replace are preferred over Delete and Insert when costs tie
	// so that output is deterministic.
	var rev []Op
	i, j := len(ref), len(hyp)
	for i > 0 || j > 0 {
		switch {
		case i > 0 && j > 0 && ref[i-1] == hyp[j-1] && d[i][j] == d[i-1][j-1]:
			rev = append(rev, Op{Match, i - 1, i, j - 1, j})
			i, j = i-1, j-1
		case i > 0 && j > 0 && d[i][j] == d[i-1][j-1]+1:
			rev = append(rev, Op{Replace, i - 1, i, j - 1, j})
			i, j = i-1, j-1
		case i > 0 && d[i][j] == d[i-1][j]+1:
			rev = append(rev, Op{Delete, i - 1, i, j, j})
			i--
		default:
			rev = append(rev, Op{Insert, i, i, j - 1, j})
			j--
		}
	}

	ops := make([]Op, 0, len(rev))
	for k := len(rev) - 1; k >= 0; k-- {
		ops = append(ops, rev[k])
	}
	return coalesce(ops, false)
}

// Merge collapses every run of adjacent same-kind ops in ops (including
// replaces) into a single op spanning the union of the run's ranges.
// The unmerged slice is not modified. Merging never changes the ranges
// covered by ops or the result of Cost.
func Merge(ops []Op) []Op { return coalesce(ops, true) }

// coalesce merges runs of adjacent same-kind ops into single ops.
// Replace runs are only merged if all is true.
func coalesce(ops []Op, all bool) []Op {
	var out []Op
	for _, op := range ops {
		if n := len(out); n > 0 {
			last := &out[n-1]
			if last.Kind == op.Kind && (op.Kind != Replace || all) {
				last.RefEnd = op.RefEnd
				last.HypEnd = op.HypEnd
				continue
			}
		}
		out = append(out, op)
	}
	return out
}

// Cost returns the total edit cost of ops: matches are free, insertions and
// deletions cost one per token, and a replace costs the length of its longer
// span (the minimal decomposition into substitutions plus leftover insertions
// or deletions). For ops produced by Tokens, the cost equals the Levenshtein
// distance between the two token sequences.
func Cost(ops []Op) int {
	var n int
	for _, op := range ops {
		switch op.Kind {
		case Insert:
			n += op.HypEnd - op.HypStart
		case Delete:
			n += op.RefEnd - op.RefStart
		case Replace:
			if r, h := op.RefEnd-op.RefStart, op.HypEnd-op.HypStart; r > h {
				n += r
			} else {
				n += h
			}
		}
	}
	return n
}

// table returns a (len(ref)+1) by (len(hyp)+1) table in which cell [i][j]
// holds the edit distance between the first i tokens of ref and the first
// j tokens of hyp.
func table(ref, hyp []string) [][]int {
	d := make([][]int, len(ref)+1)
	for i := range d {
		d[i] = make([]int, len(hyp)+1)
		// Reference prefixes are transformed into the empty sequence by
		// deleting every token.
		d[i][0] = i
	}
	// Hypothesis prefixes are reached from the empty sequence by inserting
	// every token.
	for j := 1; j <= len(hyp); j++ {
		d[0][j] = j
	}

	for i := 1; i <= len(ref); i++ {
		for j := 1; j <= len(hyp); j++ {
			del := d[i-1][j] + 1
			ins := d[i][j-1] + 1
			sub := d[i-1][j-1]
			if ref[i-1] != hyp[j-1] {
				sub++
			}

			min := sub
			if del < min {
				min = del
			}
			if ins < min {
				min = ins
			}
			d[i][j] = min
		}
	}
	return d
}
