// Copyright 2025 Daniel Erat.
// All rights reserved.

package main

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/derat/asreval/eval"
	"github.com/derat/asreval/render"
	"github.com/derat/asreval/score"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
}

// liveSem restricts the number of simultaneous /live connections.
var liveSem = make(chan struct{}, maxLiveConns)

// liveRequest is a single line pair submitted over a /live connection.
type liveRequest struct {
	ID  string `json:"id,omitempty"`
	Ref string `json:"ref"`
	Hyp string `json:"hyp"`
}

// liveResponse reports the result of evaluating a liveRequest along with
// running totals for the connection.
type liveResponse struct {
	ID      string       `json:"id,omitempty"`
	Skipped bool         `json:"skipped"`
	Counts  score.Counts `json:"counts"` // this line's counts
	Totals  score.Counts `json:"totals"` // connection-wide counts
	WER     float64      `json:"wer"`    // connection-wide
	SER     float64      `json:"ser"`    // connection-wide
	Diff    string       `json:"diff,omitempty"`
}

// handleLive evaluates a stream of line pairs over a WebSocket connection.
// Each JSON-encoded liveRequest is answered with a liveResponse. Evaluation
// options are read from the query string using the same parameters that
// /evaluate accepts.
func handleLive(w http.ResponseWriter, req *http.Request) {
	requestCount.WithLabelValues("live").Inc()

	select {
	case liveSem <- struct{}{}:
		defer func() { <-liveSem }()
	default:
		http.Error(w, "at capacity", http.StatusServiceUnavailable)
		return
	}

	opts, err := evalOptions(req)
	if err != nil {
		code := http.StatusInternalServerError
		if herr, ok := err.(*httpError); ok {
			code = herr.code
		}
		log.Printf("Sending %d to %s: %v", code, req.RemoteAddr, err)
		http.Error(w, http.StatusText(code), code)
		return
	}

	conn, err := upgrader.Upgrade(w, req, nil)
	if err != nil {
		log.Printf("Failed upgrading connection from %s: %v", req.RemoteAddr, err)
		return
	}
	defer conn.Close()

	liveConns.Inc()
	defer liveConns.Dec()
	log.Print("Starting live session with ", req.RemoteAddr)

	conn.SetReadLimit(maxLiveMsg)
	session := eval.NewSession(opts...)
	for {
		conn.SetReadDeadline(time.Now().Add(liveTimeout))
		var lreq liveRequest
		if err := conn.ReadJSON(&lreq); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("Live session with %s ended: %v", req.RemoteAddr, err)
			}
			break
		}
		res := session.EvalID(lreq.ID, lreq.Ref, lreq.Hyp)
		lineCount.Inc()

		var diff strings.Builder
		if !res.Skipped && res.Counts.Errors() > 0 {
			if err := render.Diff(&diff, res); err != nil {
				log.Print("Failed rendering diff: ", err)
			}
		}
		wc := session.Counts()
		lastWER.Set(wc.WER())
		if err := conn.WriteJSON(liveResponse{
			ID:      res.ID,
			Skipped: res.Skipped,
			Counts:  res.Counts,
			Totals:  wc,
			WER:     wc.WER(),
			SER:     session.SER(),
			Diff:    diff.String(),
		}); err != nil {
			log.Printf("Failed writing to %s: %v", req.RemoteAddr, err)
			break
		}
	}
	log.Print("Ending live session with ", req.RemoteAddr)
}
