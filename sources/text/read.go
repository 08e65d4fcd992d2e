// Copyright 2024 Daniel Erat.
// All rights reserved.

// Package text reads paired transcript files.
package text

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
)

// Format describes how transcript lines are labeled.
type Format string

const (
	// Plain pairs the nth reference line with the nth hypothesis line.
	Plain Format = "plain"
	// LeadID expects each line to begin with a whitespace-terminated
	// utterance ID, e.g. "utt-001 the quick brown fox".
	LeadID Format = "leadid"
	// TrailID expects each line to end with a parenthesized utterance ID,
	// e.g. "the quick brown fox (utt-001)", the convention used by
	// transcription ("trn") files.
	TrailID Format = "trailid"
)

// LinePair holds a reference line and the hypothesis line it's evaluated
// against. ID is empty for Plain input.
type LinePair struct {
	ID  string
	Ref string
	Hyp string
}

// ReadPairs reads transcript lines from ref and hyp and pairs them up
// positionally. For ID-bearing formats the IDs on each pair must also agree,
// and the ID is stripped from the returned text. If one Plain input is longer
// than the other, the extra lines are dropped with a logged warning; for the
// other formats a length mismatch is an error, since it means the files got
// out of sync.
func ReadPairs(ref, hyp io.Reader, format Format) ([]LinePair, error) {
	refLines, err := readLines(ref)
	if err != nil {
		return nil, fmt.Errorf("reference: %v", err)
	}
	hypLines, err := readLines(hyp)
	if err != nil {
		return nil, fmt.Errorf("hypothesis: %v", err)
	}

	n := len(refLines)
	if len(hypLines) != n {
		if format != Plain {
			return nil, fmt.Errorf("got %v reference line(s) but %v hypothesis line(s)",
				len(refLines), len(hypLines))
		}
		if len(hypLines) < n {
			n = len(hypLines)
		}
		log.Printf("Line counts differ (%v vs %v); evaluating first %v pair(s)",
			len(refLines), len(hypLines), n)
	}

	pairs := make([]LinePair, n)
	for i := 0; i < n; i++ {
		p := LinePair{Ref: refLines[i], Hyp: hypLines[i]}
		if format != Plain {
			var refID, hypID string
			if refID, p.Ref, err = splitID(refLines[i], format); err != nil {
				return nil, fmt.Errorf("reference line %d: %v", i+1, err)
			}
			if hypID, p.Hyp, err = splitID(hypLines[i], format); err != nil {
				return nil, fmt.Errorf("hypothesis line %d: %v", i+1, err)
			}
			if refID != hypID {
				return nil, fmt.Errorf("line %d: reference ID %q doesn't match hypothesis ID %q",
					i+1, refID, hypID)
			}
			p.ID = refID
		}
		pairs[i] = p
	}
	return pairs, nil
}

// readLines returns all of the lines from r.
func readLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines, sc.Err()
}

// splitID extracts an utterance ID from line per format.
func splitID(line string, format Format) (id, rest string, err error) {
	switch format {
	case LeadID:
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			return "", "", errors.New("missing utterance ID")
		}
		if i := strings.IndexAny(trimmed, " \t"); i >= 0 {
			return trimmed[:i], strings.TrimSpace(trimmed[i+1:]), nil
		}
		// An ID with no transcript text is valid: it's an empty utterance.
		return trimmed, "", nil
	case TrailID:
		trimmed := strings.TrimSpace(line)
		i := strings.LastIndex(trimmed, "(")
		if i < 0 || !strings.HasSuffix(trimmed, ")") {
			return "", "", fmt.Errorf(`line %q doesn't end with "(id)"`, line)
		}
		if id = trimmed[i+1 : len(trimmed)-1]; id == "" {
			return "", "", fmt.Errorf("line %q has an empty utterance ID", line)
		}
		return id, strings.TrimSpace(trimmed[:i]), nil
	default:
		return "", "", fmt.Errorf("unknown format %q", format)
	}
}
