// Copyright 2025 Daniel Erat.
// All rights reserved.

// Package web extracts transcript lines from web pages.
package web

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/derat/asreval/cache"
	"golang.org/x/net/html"
	"golang.org/x/time/rate"
)

const (
	// Be polite to OCR and transcription archives.
	maxQPS         = 2
	rateBucketSize = 1
	userAgentFmt   = "asreval/%s ( https://github.com/derat/asreval )"

	cacheSize = 16 // pages are large; cache just a few

	// maxPageBytes limits how much of a response body will be parsed.
	maxPageBytes = 8 << 20
)

// Fetcher downloads HTML pages and extracts transcript lines from them.
type Fetcher struct {
	lines    *cache.LRU[[]string] // URL+selector to extracted lines
	limiter  *rate.Limiter        // rate-limits network requests
	client   *http.Client
	version  string // included in User-Agent header
	maxBytes int64  // response size limit
}

// NewFetcher returns a new Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := Fetcher{
		lines:    cache.NewLRU[[]string](cacheSize),
		limiter:  rate.NewLimiter(maxQPS, rateBucketSize),
		client:   http.DefaultClient,
		maxBytes: maxPageBytes,
	}
	for _, o := range opts {
		o(&f)
	}
	return &f
}

// Option can be passed to NewFetcher to configure the fetcher.
type Option func(f *Fetcher)

// Version returns an Option that sets the application version for the User-Agent header.
func Version(v string) Option { return func(f *Fetcher) { f.version = v } }

// MaxQPS overrides the default QPS limit for testing.
func MaxQPS(qps int) Option { return func(f *Fetcher) { f.limiter.SetLimit(rate.Limit(qps)) } }

// MaxBytes overrides the default response size limit.
func MaxBytes(n int64) Option { return func(f *Fetcher) { f.maxBytes = n } }

// Client returns an Option that sets the *http.Client used for requests.
func Client(cl *http.Client) Option { return func(f *Fetcher) { f.client = cl } }

// IsURL returns true if s looks like a URL that Lines can fetch
// rather than a local file path.
func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// Lines fetches the page at url and returns one line of whitespace-normalized
// text per element matched by the CSS selector sel, in document order.
// Elements without any text are skipped. Results are cached.
func (f *Fetcher) Lines(ctx context.Context, url, sel string) ([]string, error) {
	key := url + "\n" + sel
	if lines, ok := f.lines.Get(key); ok {
		return lines, nil
	}

	selector, err := cascadia.Parse(sel)
	if err != nil {
		return nil, fmt.Errorf("selector %q: %v", sel, err)
	}

	// Wait until we can perform a query.
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	log.Print("Fetching ", url)
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", fmt.Sprintf(userAgentFmt, f.version))
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("status %v: %v", resp.StatusCode, resp.Status)
	}

	root, err := html.Parse(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return nil, err
	}

	var lines []string
	for _, n := range cascadia.QueryAll(root, selector) {
		if s := nodeText(n); s != "" {
			lines = append(lines, s)
		}
	}
	log.Printf("Extracted %d line(s) from %v", len(lines), url)
	f.lines.Set(key, lines)
	return lines, nil
}

// nodeText concatenates all text content in and under n,
// collapsing runs of whitespace into single spaces.
func nodeText(n *html.Node) string {
	var text string
	if n.Type == html.TextNode {
		text = strings.Join(strings.Fields(n.Data), " ")
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if s := nodeText(c); s != "" {
			if text != "" {
				text += " "
			}
			text += s
		}
	}
	return text
}
