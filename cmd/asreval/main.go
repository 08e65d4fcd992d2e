// Copyright 2024 Daniel Erat.
// All rights reserved.

// Package main implements a command-line tool that scores hypothesis
// transcripts (ASR or OCR output) against reference transcripts.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/derat/asreval/eval"
	"github.com/derat/asreval/render"
	"github.com/derat/asreval/sources/text"
	"github.com/derat/asreval/sources/web"
)

const (
	formatJSON = "json"
	formatPage = "page"
	formatText = "text"

	idsLead  = "lead"
	idsNone  = "none"
	idsTrail = "trail"
)

// version is set via -ldflags at build time.
var version string

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage %v: [flag]... <REF> <HYP>\n"+
			"Scores a hypothesis transcript against a reference transcript.\n"+
			"REF and HYP are file paths, \"-\" for stdin (at most one), or http(s) URLs.\n\n",
			os.Args[0])
		flag.PrintDefaults()
	}

	format := enumFlag{val: formatText, allowed: []string{formatJSON, formatPage, formatText}}
	ids := enumFlag{val: idsNone, allowed: []string{idsLead, idsNone, idsTrail}}

	caseIns := flag.Bool("case-insensitive", false, "Lowercase words before comparing them")
	cer := flag.Bool("cer", false, "Also compute a character error rate")
	diffs := flag.Bool("diff", false, "Print an aligned diff for each pair with errors")
	dropEmpty := flag.Bool("drop-empty-refs", false, "Skip pairs whose reference line is empty")
	flag.Var(&format, "format", fmt.Sprintf("Confusion report format (%v)", format.allowedList()))
	flag.Var(&ids, "ids", fmt.Sprintf("Utterance ID format (%v)", ids.allowedList()))
	minCount := flag.Int("min-count", 0, "Omit confusions seen fewer than this many times")
	normalize := flag.Bool("normalize", false, "Strip diacritics before comparing words")
	selector := flag.String("selector", ".ocr_line", "CSS selector for lines when REF or HYP is a URL")
	stripPunct := flag.Bool("strip-punct", false, "Trim punctuation from the ends of words")
	verbose := flag.Bool("verbose", false, "Log progress to stderr")
	flag.Parse()

	os.Exit(func() int {
		if !*verbose {
			log.SetOutput(io.Discard)
		}
		if flag.NArg() != 2 {
			flag.Usage()
			return 2
		}
		if flag.Arg(0) == "-" && flag.Arg(1) == "-" {
			fmt.Fprintln(os.Stderr, `Only one of REF and HYP can be "-"`)
			return 2
		}

		ctx := context.Background()
		fetcher := web.NewFetcher(web.Version(version))
		refR, err := openInput(ctx, fetcher, flag.Arg(0), *selector)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Failed opening reference:", err)
			return 1
		}
		defer refR.Close()
		hypR, err := openInput(ctx, fetcher, flag.Arg(1), *selector)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Failed opening hypothesis:", err)
			return 1
		}
		defer hypR.Close()

		var tf text.Format
		switch ids.val {
		case idsLead:
			tf = text.LeadID
		case idsTrail:
			tf = text.TrailID
		default:
			tf = text.Plain
		}
		pairs, err := text.ReadPairs(refR, hypR, tf)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Failed reading transcripts:", err)
			return 1
		}

		var opts []eval.Option
		if *caseIns {
			opts = append(opts, eval.CaseInsensitive())
		}
		if *cer {
			opts = append(opts, eval.CharStats())
		}
		if *dropEmpty {
			opts = append(opts, eval.DropEmptyRefs())
		}
		if *minCount > 0 {
			opts = append(opts, eval.MinCount(*minCount))
		}
		if *normalize {
			opts = append(opts, eval.Normalize())
		}
		if *stripPunct {
			opts = append(opts, eval.StripPunct())
		}

		session := eval.NewSession(opts...)
		for _, p := range pairs {
			res := session.EvalID(p.ID, p.Ref, p.Hyp)
			if *diffs && !res.Skipped && res.Counts.Errors() > 0 {
				if err := render.Diff(os.Stdout, res); err != nil {
					fmt.Fprintln(os.Stderr, "Failed printing diff:", err)
					return 1
				}
			}
		}

		switch format.val {
		case formatJSON:
			// Keep stdout machine-readable: the report is the only output.
			if err := render.JSON(os.Stdout, session.Report()); err != nil {
				fmt.Fprintln(os.Stderr, "Failed printing report:", err)
				return 1
			}
			return 0
		case formatPage:
			if err := render.OpenFile(render.NewPageData(session),
				render.Version(version), render.MinCount(*minCount)); err != nil {
				fmt.Fprintln(os.Stderr, "Failed opening page:", err)
				return 1
			}
		case formatText:
			if err := render.Text(os.Stdout, session.Report()); err != nil {
				fmt.Fprintln(os.Stderr, "Failed printing report:", err)
				return 1
			}
		}
		if err := render.Summary(os.Stdout, session); err != nil {
			fmt.Fprintln(os.Stderr, "Failed printing summary:", err)
			return 1
		}
		return 0
	}())
}

// openInput returns a reader for arg, which names a local file, "-" for
// stdin, or an http(s) URL whose transcript lines are extracted with the
// CSS selector sel.
func openInput(ctx context.Context, fetcher *web.Fetcher, arg, sel string) (io.ReadCloser, error) {
	switch {
	case arg == "-":
		return io.NopCloser(os.Stdin), nil
	case web.IsURL(arg):
		lines, err := fetcher.Lines(ctx, arg, sel)
		if err != nil {
			return nil, err
		}
		return io.NopCloser(strings.NewReader(strings.Join(lines, "\n"))), nil
	default:
		return os.Open(arg)
	}
}
