// Copyright 2024 Daniel Erat.
// All rights reserved.

// Package score computes aggregate recognition metrics from alignments.
package score

import "github.com/derat/asreval/align"

// Counts tallies aligned tokens by outcome.
type Counts struct {
	Matches int `json:"matches"`
	Subs    int `json:"substitutions"`
	Ins     int `json:"insertions"`
	Dels    int `json:"deletions"`
}

// FromOps tallies the tokens covered by ops. A replace op spanning unequal
// ranges counts the shorter span's length as substitutions and the length
// difference as insertions or deletions, matching the op's minimal edit cost.
func FromOps(ops []align.Op) Counts {
	var c Counts
	for _, op := range ops {
		r := op.RefEnd - op.RefStart
		h := op.HypEnd - op.HypStart
		switch op.Kind {
		case align.Match:
			c.Matches += r
		case align.Insert:
			c.Ins += h
		case align.Delete:
			c.Dels += r
		case align.Replace:
			if r <= h {
				c.Subs += r
				c.Ins += h - r
			} else {
				c.Subs += h
				c.Dels += r - h
			}
		}
	}
	return c
}

// Add accumulates o into c.
func (c *Counts) Add(o Counts) {
	c.Matches += o.Matches
	c.Subs += o.Subs
	c.Ins += o.Ins
	c.Dels += o.Dels
}

// RefLen returns the number of reference tokens covered by the counts.
func (c Counts) RefLen() int { return c.Matches + c.Subs + c.Dels }

// HypLen returns the number of hypothesis tokens covered by the counts.
func (c Counts) HypLen() int { return c.Matches + c.Subs + c.Ins }

// Errors returns the total number of edits.
func (c Counts) Errors() int { return c.Subs + c.Ins + c.Dels }

// WER returns the word error rate: edits divided by reference length.
// It can exceed 1 when the hypothesis is much longer than the reference.
// 0 is returned for an empty reference.
func (c Counts) WER() float64 {
	if n := c.RefLen(); n > 0 {
		return float64(c.Errors()) / float64(n)
	}
	return 0
}

// WRR returns the word recognition rate: matches divided by reference length.
// 0 is returned for an empty reference.
func (c Counts) WRR() float64 {
	if n := c.RefLen(); n > 0 {
		return float64(c.Matches) / float64(n)
	}
	return 0
}
