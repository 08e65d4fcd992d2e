// Copyright 2025 Daniel Erat.
// All rights reserved.

// Package main implements a web server for evaluating transcripts.
package main

import (
	"bytes"
	"crypto/sha256"
	_ "embed"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"html/template"
	"io"
	"log"
	"net"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/derat/asreval/cache"
	"github.com/derat/asreval/confusion"
	"github.com/derat/asreval/eval"
	"github.com/derat/asreval/render"
	"github.com/derat/asreval/score"
	"github.com/derat/asreval/sources/text"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	maxReqBytes = 128 * 1024
	maxLines    = 1000 // line pairs per request
	maxDiffs    = 200  // diffs included in a response

	evalDelay     = 3 * time.Second // min time between evaluations per client
	rateMapSize   = 256
	respCacheSize = 16

	maxLiveConns = 32              // simultaneous /live connections
	liveTimeout  = 5 * time.Minute // max idle time between /live messages
	maxLiveMsg   = 16 * 1024       // per-message size limit on /live
)

var version string

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage %v: [flag]...\n"+
			"Runs a web server for evaluating transcripts.\n\n", os.Args[0])
		flag.PrintDefaults()
	}
	addr := flag.String("addr", "localhost:8999", `Address to listen on for HTTP requests`)
	flag.Parse()

	// A local .env file can supply the environment variables read below.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Print("Failed loading .env file: ", err)
	}
	if v := os.Getenv("APP_VERSION"); v != "" {
		version = v
	}

	// Just generate the page once.
	var b bytes.Buffer
	if err := writeFormPage(&b, version); err != nil {
		log.Fatal("Failed generating page: ", err)
	}
	form := b.Bytes()

	rm := newRateMap(evalDelay, rateMapSize)
	rcache := cache.NewLRU[[]byte](respCacheSize)

	http.HandleFunc("/", func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path != "/" {
			http.NotFound(w, req)
			return
		}
		if req.Method != http.MethodGet {
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		requestCount.WithLabelValues("form").Inc()
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if _, err := w.Write(form); err != nil {
			log.Print("Failed writing page: ", err)
		}
	})

	// Evaluate transcripts submitted via the form.
	http.HandleFunc("/evaluate", func(w http.ResponseWriter, req *http.Request) {
		requestCount.WithLabelValues("evaluate").Inc()
		caddr := req.RemoteAddr
		body, err := getReportForRequest(w, req, rm, rcache)
		if err != nil {
			var msg string
			code := http.StatusInternalServerError
			if herr, ok := err.(*httpError); ok {
				code = herr.code
				msg = herr.msg
			}
			if msg == "" {
				msg = http.StatusText(code)
			}
			log.Printf("Sending %d to %s: %v", code, caddr, err)
			http.Error(w, msg, code)
			return
		}
		log.Printf("Returning %d-byte report to %s", len(body), caddr)
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write(body); err != nil {
			log.Printf("Failed sending report to %s: %v", caddr, err)
		}
	})

	http.HandleFunc("/live", handleLive)
	http.Handle("/metrics", promhttp.Handler())
	http.HandleFunc("/healthz", func(w http.ResponseWriter, req *http.Request) {
		io.WriteString(w, "ok")
	})
	http.HandleFunc("/robots.txt", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		io.WriteString(w, "User-agent: *\nAllow: /\n")
	})

	// Handle hosting platforms that specify the port to listen on.
	if port := os.Getenv("PORT"); port != "" {
		*addr = ":" + port
	}
	log.Print("Listening on ", *addr)
	if err := http.ListenAndServe(*addr, nil); err != nil {
		log.Fatal("Failed listening: ", err)
	}
}

// httpError implements the error interface but also wraps an HTTP status code
// and message that should be returned to the user.
type httpError struct {
	code int    // HTTP status code
	msg  string // message to display to user; if empty, generated from code
	err  error  // actual underlying error to log
}

func (e *httpError) Error() string { return e.err.Error() }

// httpErrorf returns an *httpError with the supplied status code and an err
// field constructed from format and args. The user-visible message will just
// be generated from code.
func httpErrorf(code int, format string, args ...any) *httpError {
	return &httpError{code: code, err: fmt.Errorf(format, args...)}
}

// evalResponse is the JSON body returned for an /evaluate request.
type evalResponse struct {
	Report  *confusion.Report `json:"report"`
	Counts  score.Counts      `json:"counts"`
	WER     float64           `json:"wer"`
	WRR     float64           `json:"wrr"`
	SER     float64           `json:"ser"`
	Lines   int               `json:"lines"`
	Skipped int               `json:"skipped"`
	Diffs   []string          `json:"diffs,omitempty"` // aligned diffs for pairs with errors
}

// getReportForRequest evaluates the line pairs in an /evaluate request
// and returns the JSON-encoded response body.
func getReportForRequest(w http.ResponseWriter, req *http.Request,
	rm *rateMap, rcache *cache.LRU[[]byte]) ([]byte, error) {
	if req.Method != http.MethodPost {
		return nil, httpErrorf(http.StatusMethodNotAllowed, "bad method %q", req.Method)
	}

	if !rm.attempt(clientIP(req), time.Now()) {
		return nil, &httpError{
			code: http.StatusTooManyRequests,
			msg:  "Please wait a few seconds and try again",
			err:  errors.New("too many requests"),
		}
	}

	req.Body = http.MaxBytesReader(w, req.Body, maxReqBytes)
	if err := req.ParseForm(); err != nil {
		return nil, &httpError{http.StatusBadRequest, "", err}
	}

	opts, err := evalOptions(req)
	if err != nil {
		return nil, err
	}
	format, err := idFormat(req.FormValue("ids"))
	if err != nil {
		return nil, err
	}

	// Repeated submissions of the same form are answered from the cache.
	key := cacheKey(req.Form)
	if body, ok := rcache.Get(key); ok {
		log.Print("Serving cached response to ", req.RemoteAddr)
		return body, nil
	}

	log.Printf("Handling %v-byte request from %s", req.ContentLength, req.RemoteAddr)
	start := time.Now()
	pairs, err := text.ReadPairs(strings.NewReader(req.FormValue("ref")),
		strings.NewReader(req.FormValue("hyp")), format)
	if err != nil {
		return nil, &httpError{
			code: http.StatusBadRequest,
			msg:  fmt.Sprint("Failed reading transcripts: ", err),
			err:  err,
		}
	}
	if len(pairs) > maxLines {
		return nil, &httpError{
			code: http.StatusBadRequest,
			msg:  fmt.Sprintf("Too many lines (max %v)", maxLines),
			err:  fmt.Errorf("%v line pair(s)", len(pairs)),
		}
	}

	session := eval.NewSession(opts...)
	var diffs []string
	for _, p := range pairs {
		res := session.EvalID(p.ID, p.Ref, p.Hyp)
		if !res.Skipped && res.Counts.Errors() > 0 && len(diffs) < maxDiffs {
			var b bytes.Buffer
			if err := render.Diff(&b, res); err != nil {
				return nil, err
			}
			diffs = append(diffs, b.String())
		}
	}
	lineCount.Add(float64(len(pairs)))
	evalDuration.Observe(time.Since(start).Seconds())

	lines, skipped, _ := session.Lines()
	wc := session.Counts()
	lastWER.Set(wc.WER())
	body, err := json.Marshal(evalResponse{
		Report:  session.Report(),
		Counts:  wc,
		WER:     wc.WER(),
		WRR:     wc.WRR(),
		SER:     session.SER(),
		Lines:   lines,
		Skipped: skipped,
		Diffs:   diffs,
	})
	if err != nil {
		return nil, err
	}
	rcache.Set(key, body)
	return body, nil
}

// evalOptions builds evaluation options from a request's form or query values.
func evalOptions(req *http.Request) ([]eval.Option, error) {
	var opts []eval.Option
	if req.FormValue("case_insensitive") != "" {
		opts = append(opts, eval.CaseInsensitive())
	}
	if req.FormValue("drop_empty_refs") != "" {
		opts = append(opts, eval.DropEmptyRefs())
	}
	if req.FormValue("normalize") != "" {
		opts = append(opts, eval.Normalize())
	}
	if req.FormValue("strip_punct") != "" {
		opts = append(opts, eval.StripPunct())
	}
	if v := req.FormValue("min_count"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, httpErrorf(http.StatusBadRequest, "bad min_count %q", v)
		}
		opts = append(opts, eval.MinCount(n))
	}
	return opts, nil
}

// idFormat maps a form's ids value to a text.Format.
func idFormat(v string) (text.Format, error) {
	switch v {
	case "", "none":
		return text.Plain, nil
	case "lead":
		return text.LeadID, nil
	case "trail":
		return text.TrailID, nil
	}
	return "", httpErrorf(http.StatusBadRequest, "bad ids %q", v)
}

// cacheKey hashes the evaluation-relevant values of a submitted form.
func cacheKey(form url.Values) string {
	h := sha256.New()
	for _, k := range []string{
		"ref", "hyp", "ids", "case_insensitive", "drop_empty_refs",
		"normalize", "strip_punct", "min_count",
	} {
		io.WriteString(h, k)
		h.Write([]byte{0})
		io.WriteString(h, form.Get(k))
		h.Write([]byte{0})
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}

// clientIP returns the client's IP address without the port.
func clientIP(req *http.Request) string {
	if ip, _, err := net.SplitHostPort(req.RemoteAddr); err == nil {
		return ip
	}
	return req.RemoteAddr
}

// writeFormPage writes the HTML form page to w.
func writeFormPage(w io.Writer, version string) error {
	tmpl, err := template.New("").Parse(formTmpl)
	if err != nil {
		return err
	}
	return tmpl.Execute(w, struct{ Version string }{version})
}

//go:embed form.tmpl
var formTmpl string
