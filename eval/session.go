// Copyright 2024 Daniel Erat.
// All rights reserved.

package eval

import (
	"strings"

	"github.com/derat/asreval/align"
	"github.com/derat/asreval/confusion"
	"github.com/derat/asreval/score"
	"github.com/derat/asreval/strutil"
)

// Result describes the evaluation of a single line pair.
type Result struct {
	ID       string   // optional utterance ID
	Ref, Hyp []string // tokenized lines
	Ops      []align.Op
	Counts   score.Counts
	Skipped  bool
}

// Session evaluates a sequence of line pairs with fixed options and
// accumulates confusion counts and score totals across them. Evaluate handles
// the single-pair case; a Session is what batch drivers use. It is not safe
// for concurrent use; give each goroutine its own.
type Session struct {
	cfg        config
	tables     *confusion.Tables
	counts     score.Counts
	charCounts score.Counts
	lines      int // pairs seen, including skipped ones
	skipped    int
	errSents   int // evaluated pairs with at least one error
}

// NewSession returns a Session that applies opts to every pair.
func NewSession(opts ...Option) *Session {
	return &Session{cfg: getConfig(opts...), tables: confusion.NewTables()}
}

// Eval evaluates one line pair and folds it into the session totals.
func (s *Session) Eval(refLine, hypLine string) Result {
	s.lines++
	ref := s.cfg.tokenize(refLine)
	if s.cfg.dropEmptyRefs && len(ref) == 0 {
		s.skipped++
		return Result{Skipped: true}
	}
	hyp := s.cfg.tokenize(hypLine)
	ops := align.Tokens(ref, hyp)
	s.tables.Track(ops, ref, hyp)

	counts := score.FromOps(ops)
	s.counts.Add(counts)
	if counts.Errors() > 0 {
		s.errSents++
	}
	if s.cfg.charStats {
		s.charCounts.Add(charCounts(ref, hyp))
	}
	return Result{Ref: ref, Hyp: hyp, Ops: ops, Counts: counts}
}

// EvalID is Eval with an utterance ID attached to the result.
func (s *Session) EvalID(id, refLine, hypLine string) Result {
	res := s.Eval(refLine, hypLine)
	res.ID = id
	return res
}

// Report returns the accumulated confusion report,
// thresholded by the session's MinCount option.
func (s *Session) Report() *confusion.Report { return s.tables.Report(s.cfg.minCount) }

// Counts returns the accumulated word-level counts.
func (s *Session) Counts() score.Counts { return s.counts }

// CharCounts returns the accumulated character-level counts.
// It's only meaningful if the session was created with CharStats.
func (s *Session) CharCounts() score.Counts { return s.charCounts }

// Lines returns how many pairs the session has seen (including skipped
// ones), how many were skipped, and how many evaluated pairs contained at
// least one error.
func (s *Session) Lines() (total, skipped, errSents int) {
	return s.lines, s.skipped, s.errSents
}

// SER returns the sentence error rate: the fraction of evaluated pairs that
// contained at least one error. 0 is returned before anything is evaluated.
func (s *Session) SER() float64 {
	if n := s.lines - s.skipped; n > 0 {
		return float64(s.errSents) / float64(n)
	}
	return 0
}

// charCounts aligns the two token sequences at the character level.
// Tokens are rejoined with single spaces and split into grapheme clusters so
// a character error rate can be computed; word boundaries count as characters
// the way they do in the transcripts themselves.
func charCounts(ref, hyp []string) score.Counts {
	rg := strutil.Graphemes(strings.Join(ref, " "))
	hg := strutil.Graphemes(strings.Join(hyp, " "))
	return score.FromOps(align.Tokens(rg, hg))
}
