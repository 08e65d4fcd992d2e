// Copyright 2024 Daniel Erat.
// All rights reserved.

// Package confusion counts which words were inserted, deleted, or substituted
// when a hypothesis transcript is aligned against a reference transcript.
package confusion

import (
	"sort"

	"github.com/derat/asreval/align"
)

// Pair identifies a substitution: a reference word recognized as a different
// hypothesis word.
type Pair struct{ Ref, Hyp string }

// Tables accumulates insertion, deletion, and substitution counts.
// Each evaluation should own its own instance; a Tables value must not be
// used concurrently. The zero value is not usable; call NewTables.
type Tables struct {
	ins  map[string]int // hypothesis-only word to count
	dels map[string]int // reference-only word to count
	subs map[Pair]int

	// Keys in first-seen order, used to break ranking ties deterministically.
	insOrder []string
	delOrder []string
	subOrder []Pair
}

// NewTables returns a set of empty tables.
func NewTables() *Tables {
	return &Tables{
		ins:  make(map[string]int),
		dels: make(map[string]int),
		subs: make(map[Pair]int),
	}
}

// Reset empties all three tables.
func (t *Tables) Reset() {
	t.ins = make(map[string]int)
	t.dels = make(map[string]int)
	t.subs = make(map[Pair]int)
	t.insOrder = nil
	t.delOrder = nil
	t.subOrder = nil
}

// Track walks ops in order and attributes each non-match op to the words it
// covers: hypothesis words under an insert, reference words under a delete,
// and the full cross product of reference and hypothesis words under a
// replace, so a replace spanning two words on each side yields four pairs.
// ref and hyp must be the token sequences that ops was computed from.
func (t *Tables) Track(ops []align.Op, ref, hyp []string) {
	for _, op := range ops {
		switch op.Kind {
		case align.Insert:
			for _, w := range hyp[op.HypStart:op.HypEnd] {
				t.addIns(w, 1)
			}
		case align.Delete:
			for _, w := range ref[op.RefStart:op.RefEnd] {
				t.addDel(w, 1)
			}
		case align.Replace:
			for _, rw := range ref[op.RefStart:op.RefEnd] {
				for _, hw := range hyp[op.HypStart:op.HypEnd] {
					t.addSub(Pair{rw, hw}, 1)
				}
			}
		}
	}
}

// Add accumulates other's counts into t. Aggregation across multiple line
// pairs is the caller's concern (see eval.Session); Track itself never
// carries state between evaluations.
func (t *Tables) Add(other *Tables) {
	for _, w := range other.insOrder {
		t.addIns(w, other.ins[w])
	}
	for _, w := range other.delOrder {
		t.addDel(w, other.dels[w])
	}
	for _, p := range other.subOrder {
		t.addSub(p, other.subs[p])
	}
}

func (t *Tables) addIns(w string, n int) {
	if _, ok := t.ins[w]; !ok {
		t.insOrder = append(t.insOrder, w)
	}
	t.ins[w] += n
}

func (t *Tables) addDel(w string, n int) {
	if _, ok := t.dels[w]; !ok {
		t.delOrder = append(t.delOrder, w)
	}
	t.dels[w] += n
}

func (t *Tables) addSub(p Pair, n int) {
	if _, ok := t.subs[p]; !ok {
		t.subOrder = append(t.subOrder, p)
	}
	t.subs[p] += n
}

// WordCount is one insertion or deletion report entry.
type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// PairCount is one substitution report entry.
type PairCount struct {
	Ref   string `json:"referenceWord"`
	Hyp   string `json:"hypothesisWord"`
	Count int    `json:"count"`
}

// Report holds ranked confusion counts. Each list is sorted by count,
// descending, with ties in the order the words were first seen.
type Report struct {
	Insertions    []WordCount `json:"insertions"`
	Deletions     []WordCount `json:"deletions"`
	Substitutions []PairCount `json:"substitutions"`
}

// Empty returns true if the report contains no entries.
func (r *Report) Empty() bool {
	return len(r.Insertions) == 0 && len(r.Deletions) == 0 && len(r.Substitutions) == 0
}

// Report ranks each table's entries and drops those with counts below
// minCount. Values of minCount less than 1 include everything. The returned
// lists are empty rather than nil when nothing qualifies, so encoding the
// report always produces the same shape.
func (t *Tables) Report(minCount int) *Report {
	rep := Report{
		Insertions:    make([]WordCount, 0, len(t.ins)),
		Deletions:     make([]WordCount, 0, len(t.dels)),
		Substitutions: make([]PairCount, 0, len(t.subs)),
	}
	for _, w := range t.insOrder {
		if n := t.ins[w]; n >= minCount {
			rep.Insertions = append(rep.Insertions, WordCount{w, n})
		}
	}
	for _, w := range t.delOrder {
		if n := t.dels[w]; n >= minCount {
			rep.Deletions = append(rep.Deletions, WordCount{w, n})
		}
	}
	for _, p := range t.subOrder {
		if n := t.subs[p]; n >= minCount {
			rep.Substitutions = append(rep.Substitutions, PairCount{p.Ref, p.Hyp, n})
		}
	}
	sort.SliceStable(rep.Insertions, func(i, j int) bool {
		return rep.Insertions[i].Count > rep.Insertions[j].Count
	})
	sort.SliceStable(rep.Deletions, func(i, j int) bool {
		return rep.Deletions[i].Count > rep.Deletions[j].Count
	})
	sort.SliceStable(rep.Substitutions, func(i, j int) bool {
		return rep.Substitutions[i].Count > rep.Substitutions[j].Count
	})
	return &rep
}
