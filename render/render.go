// Copyright 2024 Daniel Erat.
// All rights reserved.

// Package render formats evaluation results for people and machines.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/derat/asreval/align"
	"github.com/derat/asreval/confusion"
	"github.com/derat/asreval/eval"
	"github.com/rivo/uniseg"
)

// Text writes rep as the classic confusion listing: one section per error
// type, entries in the report's order. Empty sections are omitted.
func Text(w io.Writer, rep *confusion.Report) error {
	var sb strings.Builder
	if len(rep.Insertions) > 0 {
		sb.WriteString("INSERTIONS:\n")
		for _, wc := range rep.Insertions {
			fmt.Fprintf(&sb, "%-20s %10d\n", wc.Word, wc.Count)
		}
	}
	if len(rep.Deletions) > 0 {
		sb.WriteString("DELETIONS:\n")
		for _, wc := range rep.Deletions {
			fmt.Fprintf(&sb, "%-20s %10d\n", wc.Word, wc.Count)
		}
	}
	if len(rep.Substitutions) > 0 {
		sb.WriteString("SUBSTITUTIONS:\n")
		for _, pc := range rep.Substitutions {
			fmt.Fprintf(&sb, "%-20s -> %-20s   %10d\n", pc.Ref, pc.Hyp, pc.Count)
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// JSON writes rep as indented JSON.
func JSON(w io.Writer, rep *confusion.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

// Diff writes an aligned two-line comparison of an evaluated pair. Matched
// words are printed as-is, errors are uppercased, and positions that exist on
// only one side are filled with asterisks:
//
//	REF: the CAT sat ****
//	HYP: the HAT sat DOWN
func Diff(w io.Writer, res eval.Result) error {
	var sb strings.Builder
	if res.ID != "" {
		fmt.Fprintf(&sb, "id: (%s)\n", res.ID)
	}
	if res.Skipped {
		sb.WriteString("skipped\n")
		_, err := io.WriteString(w, sb.String())
		return err
	}

	var refCells, hypCells []string
	for _, op := range res.Ops {
		switch op.Kind {
		case align.Match:
			for k := 0; k < op.RefEnd-op.RefStart; k++ {
				refCells = append(refCells, res.Ref[op.RefStart+k])
				hypCells = append(hypCells, res.Hyp[op.HypStart+k])
			}
		case align.Insert:
			for j := op.HypStart; j < op.HypEnd; j++ {
				refCells = append(refCells, "")
				hypCells = append(hypCells, strings.ToUpper(res.Hyp[j]))
			}
		case align.Delete:
			for i := op.RefStart; i < op.RefEnd; i++ {
				refCells = append(refCells, strings.ToUpper(res.Ref[i]))
				hypCells = append(hypCells, "")
			}
		case align.Replace:
			// Replace spans can cover different numbers of words;
			// zip them up and leave holes on the shorter side.
			rlen, hlen := op.RefEnd-op.RefStart, op.HypEnd-op.HypStart
			n := rlen
			if hlen > n {
				n = hlen
			}
			for k := 0; k < n; k++ {
				var rc, hc string
				if k < rlen {
					rc = strings.ToUpper(res.Ref[op.RefStart+k])
				}
				if k < hlen {
					hc = strings.ToUpper(res.Hyp[op.HypStart+k])
				}
				refCells = append(refCells, rc)
				hypCells = append(hypCells, hc)
			}
		}
	}

	ref, hyp := "REF:", "HYP:"
	for i := range refCells {
		rc, hc := refCells[i], hypCells[i]
		width := uniseg.StringWidth(rc)
		if hw := uniseg.StringWidth(hc); hw > width {
			width = hw
		}
		if rc == "" {
			rc = strings.Repeat("*", width)
		}
		if hc == "" {
			hc = strings.Repeat("*", width)
		}
		ref += " " + pad(rc, width)
		hyp += " " + pad(hc, width)
	}
	sb.WriteString(strings.TrimRight(ref, " "))
	sb.WriteByte('\n')
	sb.WriteString(strings.TrimRight(hyp, " "))
	sb.WriteByte('\n')
	_, err := io.WriteString(w, sb.String())
	return err
}

// Summary writes aggregate metrics for a finished session.
func Summary(w io.Writer, s *eval.Session) error {
	var sb strings.Builder
	lines, skipped, errSents := s.Lines()
	fmt.Fprintf(&sb, "Sentence count: %d", lines)
	if skipped > 0 {
		fmt.Fprintf(&sb, " (%d skipped)", skipped)
	}
	sb.WriteByte('\n')
	wc := s.Counts()
	fmt.Fprintf(&sb, "WER: %s (%d / %d)\n", pct(wc.WER()), wc.Errors(), wc.RefLen())
	fmt.Fprintf(&sb, "WRR: %s (%d / %d)\n", pct(wc.WRR()), wc.Matches, wc.RefLen())
	fmt.Fprintf(&sb, "SER: %s (%d / %d)\n", pct(s.SER()), errSents, lines-skipped)
	if cc := s.CharCounts(); cc.RefLen() > 0 {
		fmt.Fprintf(&sb, "CER: %s (%d / %d)\n", pct(cc.WER()), cc.Errors(), cc.RefLen())
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// pct formats a rate in [0, 1] as a percentage.
func pct(v float64) string { return fmt.Sprintf("%.3f%%", 100*v) }

// pad appends spaces to s until it occupies width terminal columns.
func pad(s string, width int) string {
	if n := width - uniseg.StringWidth(s); n > 0 {
		return s + strings.Repeat(" ", n)
	}
	return s
}
