// Copyright 2024 Daniel Erat.
// All rights reserved.

package render

import (
	_ "embed"
	"fmt"
	"html/template"
	"io"
	"log"
	"os"
	"time"

	"github.com/derat/asreval/confusion"
	"github.com/derat/asreval/eval"
	"github.com/derat/asreval/score"
	"github.com/pkg/browser"
)

// PageData contains the values shown on an HTML report page.
type PageData struct {
	Report  *confusion.Report
	Counts  score.Counts
	Lines   int // pairs seen, including skipped ones
	Skipped int
	SER     float64
	Chars   score.Counts // zero unless character stats were collected
}

// NewPageData assembles a PageData from a finished session.
func NewPageData(s *eval.Session) *PageData {
	lines, skipped, _ := s.Lines()
	return &PageData{
		Report:  s.Report(),
		Counts:  s.Counts(),
		Lines:   lines,
		Skipped: skipped,
		SER:     s.SER(),
		Chars:   s.CharCounts(),
	}
}

// OpenFile writes an HTML report page to a temporary file
// and opens it in a browser.
func OpenFile(data *PageData, opts ...Option) error {
	tf, err := os.CreateTemp("",
		fmt.Sprintf("asreval-%s-*.html", time.Now().Format("20060102-150405")))
	if err != nil {
		return err
	}
	log.Print("Writing page to ", tf.Name())
	if err := Write(tf, data, opts...); err != nil {
		return err
	}
	return browser.OpenFile(tf.Name())
}

// Write writes an HTML report page for data to w.
func Write(w io.Writer, data *PageData, opts ...Option) error {
	cfg := getConfig(opts...)
	tmpl, err := template.New("").Parse(pageTmpl)
	if err != nil {
		return err
	}
	var cer string
	if data.Chars.RefLen() > 0 {
		cer = pct(data.Chars.WER())
	}
	return tmpl.Execute(w, struct {
		Version       string
		MinCount      int
		Data          *PageData
		WER, WRR, SER string
		CER           string // empty if character stats weren't collected
	}{
		Version:  cfg.version,
		MinCount: cfg.minCount,
		Data:     data,
		WER:      pct(data.Counts.WER()),
		WRR:      pct(data.Counts.WRR()),
		SER:      pct(data.SER),
		CER:      cer,
	})
}

// Option can be passed to configure the page.
type Option func(*config)

// Version sets an optional asreval version to include in the page.
func Version(v string) Option { return func(cfg *config) { cfg.version = v } }

// MinCount notes the threshold that was used to filter the report.
func MinCount(n int) Option { return func(cfg *config) { cfg.minCount = n } }

type config struct {
	version  string // asreval version
	minCount int    // report threshold
}

func getConfig(opts ...Option) config {
	var cfg config
	for _, o := range opts {
		o(&cfg)
	}
	return cfg
}

//go:embed page.tmpl
var pageTmpl string
