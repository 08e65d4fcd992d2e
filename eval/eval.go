// Copyright 2024 Daniel Erat.
// All rights reserved.

// Package eval compares hypothesis transcripts against reference transcripts.
package eval

import (
	"strings"

	"github.com/derat/asreval/align"
	"github.com/derat/asreval/confusion"
	"github.com/derat/asreval/strutil"
)

// config is filled in by Options to control evaluation.
type config struct {
	caseInsensitive bool
	dropEmptyRefs   bool
	normalize       bool
	stripPunct      bool
	charStats       bool
	minCount        int
}

// Option can be passed to Evaluate or NewSession to configure evaluation.
type Option func(*config)

// CaseInsensitive lowercases every token before alignment so capitalization
// differences don't count as substitutions.
func CaseInsensitive() Option { return func(cfg *config) { cfg.caseInsensitive = true } }

// DropEmptyRefs skips line pairs whose reference contains no tokens instead
// of counting every hypothesis word as an insertion.
func DropEmptyRefs() Option { return func(cfg *config) { cfg.dropEmptyRefs = true } }

// MinCount drops confusion report entries with counts below n.
func MinCount(n int) Option { return func(cfg *config) { cfg.minCount = n } }

// Normalize applies Unicode compatibility normalization with accents stripped
// (see strutil.Normalize) to each line before tokenizing.
func Normalize() Option { return func(cfg *config) { cfg.normalize = true } }

// StripPunct trims leading and trailing punctuation from every token.
// Tokens left empty by the trim are dropped.
func StripPunct() Option { return func(cfg *config) { cfg.stripPunct = true } }

// CharStats additionally aligns each pair at the character level so sessions
// can report a character error rate alongside the word error rate.
func CharStats() Option { return func(cfg *config) { cfg.charStats = true } }

func getConfig(opts ...Option) config {
	var cfg config
	for _, o := range opts {
		o(&cfg)
	}
	return cfg
}

// tokenize splits line into tokens per cfg.
func (cfg *config) tokenize(line string) []string {
	if cfg.normalize {
		line = strutil.Normalize(line)
	}
	toks := strutil.Words(line)
	if cfg.stripPunct {
		kept := toks[:0]
		for _, tok := range toks {
			if tok = strutil.StripPunct(tok); tok != "" {
				kept = append(kept, tok)
			}
		}
		toks = kept
	}
	if cfg.caseInsensitive {
		for i, tok := range toks {
			toks[i] = strings.ToLower(tok)
		}
	}
	return toks
}

// Evaluate compares a single reference line against a single hypothesis line
// and reports which words were confused. If the reference tokenizes to
// nothing and the DropEmptyRefs option is set, the pair is skipped and
// (nil, true) is returned without any alignment work. An empty hypothesis or
// two empty lines still evaluate normally; only an empty reference combined
// with DropEmptyRefs skips.
//
// Each call owns its own counting state, so identical calls return identical
// reports and concurrent calls don't interfere.
func Evaluate(refLine, hypLine string, opts ...Option) (rep *confusion.Report, skipped bool) {
	cfg := getConfig(opts...)
	ref := cfg.tokenize(refLine)
	if cfg.dropEmptyRefs && len(ref) == 0 {
		return nil, true
	}
	hyp := cfg.tokenize(hypLine)
	ops := align.Tokens(ref, hyp)
	tables := confusion.NewTables()
	tables.Track(ops, ref, hyp)
	return tables.Report(cfg.minCount), false
}
