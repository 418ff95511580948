// Copyright 2024 The Accumulo Connector Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package observability carries the connector's own operational counters
// and histograms — distinct from the domain statistics cells the Indexer
// writes into T_idx_metrics. These are process-local Prometheus metrics for
// whoever scrapes this binary, not anything stored in the backend.
package observability

import "github.com/prometheus/client_golang/prometheus"

// Metrics bundles the counters/histograms the Indexer and planner report
// to. A nil *Metrics is safe to use (every method is a no-op), so callers
// that don't want Prometheus wiring can pass nil without a branch at every
// call site.
type Metrics struct {
	FlushesTotal      *prometheus.CounterVec
	RowsIndexedTotal  prometheus.Counter
	FlushDuration     prometheus.Histogram
	PlansTotal        *prometheus.CounterVec
	PlanDuration      prometheus.Histogram
	IndexProbesTotal  prometheus.Counter
	SplitsEmittedTotal prometheus.Counter
}

// New registers a fresh set of metrics on reg. Pass prometheus.NewRegistry()
// in tests to avoid colliding with the default global registry.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		FlushesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "accconn_indexer_flushes_total",
			Help: "Indexer flush() calls, by outcome (ok/error).",
		}, []string{"outcome"}),
		RowsIndexedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "accconn_indexer_rows_indexed_total",
			Help: "Rows passed to Indexer.Index across all flushes.",
		}),
		FlushDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "accconn_indexer_flush_duration_seconds",
			Help:    "Wall-clock duration of Indexer.Flush calls.",
			Buckets: prometheus.DefBuckets,
		}),
		PlansTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "accconn_planner_plans_total",
			Help: "GetTabletSplits calls, by mode chosen (full-scan/intersection/single-probe).",
		}, []string{"mode"}),
		PlanDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "accconn_planner_plan_duration_seconds",
			Help:    "Wall-clock duration of GetTabletSplits calls.",
			Buckets: prometheus.DefBuckets,
		}),
		IndexProbesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "accconn_planner_index_probes_total",
			Help: "Per-column T_idx scans issued across all plans.",
		}),
		SplitsEmittedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "accconn_planner_splits_emitted_total",
			Help: "TabletSplitMetadata values returned across all plans.",
		}),
	}
	reg.MustRegister(m.FlushesTotal, m.RowsIndexedTotal, m.FlushDuration, m.PlansTotal, m.PlanDuration, m.IndexProbesTotal, m.SplitsEmittedTotal)
	return m
}

func (m *Metrics) ObserveFlush(outcome string, rows int64, seconds float64) {
	if m == nil {
		return
	}
	m.FlushesTotal.WithLabelValues(outcome).Inc()
	m.RowsIndexedTotal.Add(float64(rows))
	m.FlushDuration.Observe(seconds)
}

func (m *Metrics) ObservePlan(mode string, splitCount int, seconds float64) {
	if m == nil {
		return
	}
	m.PlansTotal.WithLabelValues(mode).Inc()
	m.SplitsEmittedTotal.Add(float64(splitCount))
	m.PlanDuration.Observe(seconds)
}

func (m *Metrics) ObserveIndexProbe() {
	if m == nil {
		return
	}
	m.IndexProbesTotal.Inc()
}
