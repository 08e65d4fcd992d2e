// Copyright 2024 Daniel Erat.
// All rights reserved.

// Package strutil prepares transcript text for alignment.
package strutil

import (
	"bytes"
	"strings"
	"unicode"

	"github.com/rivo/uniseg"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// https://go.dev/blog/normalization#performing-magic
var normalizer = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))

// Normalize normalizes characters using NFKD form.
// Runes are decomposed and replaced for compatibility equivalence (characters
// that represent the same thing but have different visual representations,
// e.g. '9' and '⁹', compare equal) and accents are dropped. Transcripts from
// different recognizers often disagree only in diacritics or ligatures, which
// would otherwise show up as substitutions.
func Normalize(orig string) string {
	b := make([]byte, len(orig))
	if _, _, err := normalizer.Transform(b, []byte(orig), true); err != nil {
		return orig
	}
	return string(bytes.TrimRight(b, "\x00"))
}

// Words splits line into whitespace-separated tokens.
// An empty or all-whitespace line yields a nil slice.
func Words(line string) []string { return strings.Fields(line) }

// Graphemes splits s into user-perceived characters (Unicode grapheme
// clusters), so that character-level alignment treats "é" or an emoji
// sequence as a single unit rather than several runes.
func Graphemes(s string) []string {
	var gs []string
	state := -1
	for len(s) > 0 {
		var g string
		g, s, _, state = uniseg.FirstGraphemeClusterInString(s, state)
		gs = append(gs, g)
	}
	return gs
}

// StripPunct trims leading and trailing punctuation from tok.
// Interior punctuation (hyphens, apostrophes) is left alone so contractions
// survive.
func StripPunct(tok string) string {
	return strings.TrimFunc(tok, unicode.IsPunct)
}
