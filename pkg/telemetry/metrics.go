// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "inkwell"

// Outcome labels.
const (
	OutcomeOK           = "ok"
	OutcomeError        = "error"
	OutcomeUnsuccessful = "unsuccessful"

	ReactionApplied    = "applied"
	ReactionRolledBack = "rolled_back"
	ReactionStale      = "stale"
)

// ClientMetrics are the Prometheus metrics recorded by the API client and
// the reaction reconciler.
//
// A nil *ClientMetrics is valid and records nothing.
//
// # Thread Safety
//
// All methods are safe for concurrent use.
type ClientMetrics struct {
	// RequestsTotal counts API calls. Labels: op, outcome.
	RequestsTotal *prometheus.CounterVec

	// RequestDurationSeconds measures API call latency. Labels: op.
	RequestDurationSeconds *prometheus.HistogramVec

	// ReactionsTotal counts reconciled reactions.
	// Labels: type (like, dislike, block), outcome (applied, rolled_back, stale).
	ReactionsTotal *prometheus.CounterVec

	// RateLimitWaitSeconds measures time spent waiting on the client limiter.
	RateLimitWaitSeconds prometheus.Histogram
}

// NewClientMetrics registers the client metrics on reg. Registering twice on
// the same registry panics, so use a fresh prometheus.NewRegistry in tests.
func NewClientMetrics(reg prometheus.Registerer) *ClientMetrics {
	f := promauto.With(reg)
	return &ClientMetrics{
		RequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "api",
				Name:      "requests_total",
				Help:      "API requests by operation and outcome",
			},
			[]string{"op", "outcome"},
		),
		RequestDurationSeconds: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: "api",
				Name:      "request_duration_seconds",
				Help:      "API request latency in seconds",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 15},
			},
			[]string{"op"},
		),
		ReactionsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "reaction",
				Name:      "total",
				Help:      "Reactions by type and how they were reconciled",
			},
			[]string{"type", "outcome"},
		),
		RateLimitWaitSeconds: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: "api",
				Name:      "rate_limit_wait_seconds",
				Help:      "Time spent waiting for the client rate limiter",
				Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1},
			},
		),
	}
}

// RecordRequest records one completed API call.
func (m *ClientMetrics) RecordRequest(op, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(op, outcome).Inc()
	m.RequestDurationSeconds.WithLabelValues(op).Observe(elapsed.Seconds())
}

// RecordReaction records how a reaction response was reconciled.
func (m *ClientMetrics) RecordReaction(kind, outcome string) {
	if m == nil {
		return
	}
	m.ReactionsTotal.WithLabelValues(kind, outcome).Inc()
}

// RecordRateLimitWait records limiter wait time.
func (m *ClientMetrics) RecordRateLimitWait(d time.Duration) {
	if m == nil {
		return
	}
	m.RateLimitWaitSeconds.Observe(d.Seconds())
}

// ServerMetrics are recorded by the development API.
type ServerMetrics struct {
	ArticlesTotal  prometheus.Gauge
	UsersTotal     prometheus.Gauge
	ReactionsTotal *prometheus.CounterVec
}

func NewServerMetrics(reg prometheus.Registerer) *ServerMetrics {
	f := promauto.With(reg)
	return &ServerMetrics{
		ArticlesTotal: f.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "devapi",
			Name:      "articles",
			Help:      "Articles currently stored",
		}),
		UsersTotal: f.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "devapi",
			Name:      "users",
			Help:      "Registered users",
		}),
		ReactionsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "devapi",
			Name:      "reactions_total",
			Help:      "Reactions handled by type",
		}, []string{"type"}),
	}
}

func (m *ServerMetrics) SetCounts(users, articles int) {
	if m == nil {
		return
	}
	m.UsersTotal.Set(float64(users))
	m.ArticlesTotal.Set(float64(articles))
}

func (m *ServerMetrics) RecordReaction(kind string) {
	if m == nil {
		return
	}
	m.ReactionsTotal.WithLabelValues(kind).Inc()
}
