// Copyright 2025 Daniel Erat.
// All rights reserved.

package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "asrevald_requests_total",
		Help: "HTTP requests received, partitioned by handler",
	}, []string{"handler"})

	lineCount = promauto.NewCounter(prometheus.CounterOpts{
		Name: "asrevald_evaluated_lines_total",
		Help: "Line pairs evaluated across all requests",
	})

	evalDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "asrevald_evaluation_duration_seconds",
		Help:    "Time spent evaluating a request's transcripts",
		Buckets: prometheus.DefBuckets,
	})

	lastWER = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "asrevald_last_wer",
		Help: "Word error rate from the most recent evaluation",
	})

	liveConns = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "asrevald_live_connections",
		Help: "Currently-open live evaluation connections",
	})
)
