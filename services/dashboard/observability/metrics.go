// Copyright (C) 2026 GrowthDesk (eng@growthdesk.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package observability provides Prometheus metrics for the dashboard.
//
// # Description
//
// Metrics cover the write path (creates, updates, write-gate rejections,
// validation failures) and the sync path (attempts per target and
// result). They are exposed on /metrics and are safe for concurrent use
// via Prometheus's internal locking.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "growthdesk"

// Metrics holds all Prometheus metrics for the dashboard service.
// Initialize once at startup via InitMetrics.
type Metrics struct {
	// WritesTotal counts accepted experiment writes.
	// Labels: operation (create, update)
	WritesTotal *prometheus.CounterVec

	// WritesRejectedTotal counts writes turned away before reaching
	// the store. Labels: operation, reason (writes_disabled, validation)
	WritesRejectedTotal *prometheus.CounterVec

	// SyncAttemptsTotal counts mirror sync attempts.
	// Labels: target (notion, drive), result (success, failure, skipped)
	SyncAttemptsTotal *prometheus.CounterVec
}

// DefaultMetrics is the singleton instance, set by InitMetrics.
var DefaultMetrics *Metrics

// InitMetrics creates and registers all metrics against the default
// registry. Call once at startup; a second call panics on duplicate
// registration.
func InitMetrics() *Metrics {
	DefaultMetrics = &Metrics{
		WritesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "experiment_writes_total",
				Help:      "Accepted experiment writes by operation",
			},
			[]string{"operation"},
		),
		WritesRejectedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "experiment_writes_rejected_total",
				Help:      "Experiment writes rejected before storage by operation and reason",
			},
			[]string{"operation", "reason"},
		),
		SyncAttemptsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "sync_attempts_total",
				Help:      "Mirror sync attempts by target and result",
			},
			[]string{"target", "result"},
		),
	}
	return DefaultMetrics
}

// RecordWrite increments the accepted-write counter.
func (m *Metrics) RecordWrite(operation string) {
	if m == nil {
		return
	}
	m.WritesTotal.WithLabelValues(operation).Inc()
}

// RecordRejectedWrite increments the rejected-write counter.
func (m *Metrics) RecordRejectedWrite(operation, reason string) {
	if m == nil {
		return
	}
	m.WritesRejectedTotal.WithLabelValues(operation, reason).Inc()
}

// RecordSyncAttempt increments the sync-attempt counter.
func (m *Metrics) RecordSyncAttempt(target, result string) {
	if m == nil {
		return
	}
	m.SyncAttemptsTotal.WithLabelValues(target, result).Inc()
}
