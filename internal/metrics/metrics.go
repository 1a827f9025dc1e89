/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package metrics records run outcomes as Prometheus metrics. Runs are short
// lived, so metrics are written to a node-exporter textfile instead of being
// served.
package metrics

import (
	"fmt"
	"time"

	"chainguard.dev/downstreamsync/reconcilers/syncreconciler/orchestrator"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder holds the metrics of one run in a private registry.
type Recorder struct {
	registry *prometheus.Registry

	targets   *prometheus.CounterVec
	files     *prometheus.CounterVec
	commits   prometheus.Counter
	success   prometheus.Gauge
	timestamp prometheus.Gauge
}

// New creates a Recorder with all metrics registered.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		targets: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "downstreamsync_targets_total",
				Help: "Targets processed, by pull request action and result",
			},
			[]string{"action", "result"},
		),
		files: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "downstreamsync_files_total",
				Help: "Destination files changed, by operation",
			},
			[]string{"operation"},
		),
		commits: factory.NewCounter(prometheus.CounterOpts{
			Name: "downstreamsync_commits_total",
			Help: "Commits pushed to target repositories",
		}),
		success: factory.NewGauge(prometheus.GaugeOpts{
			Name: "downstreamsync_last_run_success",
			Help: "1 if the last run succeeded, 0 otherwise",
		}),
		timestamp: factory.NewGauge(prometheus.GaugeOpts{
			Name: "downstreamsync_last_run_timestamp_seconds",
			Help: "Unix time the last run finished",
		}),
	}
}

// Observe records the results and terminal status of a run finished at now.
// A run aborted before processing targets has no results.
func (r *Recorder) Observe(results []orchestrator.Result, status orchestrator.Status, now time.Time) {
	for _, res := range results {
		result := "success"
		if res.Failed() {
			result = "failure"
		}
		action := string(res.Action)
		if action == "" {
			action = "none"
		}
		r.targets.WithLabelValues(action, result).Inc()
		r.files.WithLabelValues("upsert").Add(float64(len(res.Upserted)))
		r.files.WithLabelValues("delete").Add(float64(len(res.Deleted)))
		r.commits.Add(float64(res.Commits))
	}

	if status == orchestrator.StatusSuccess {
		r.success.Set(1)
	} else {
		r.success.Set(0)
	}
	r.timestamp.Set(float64(now.Unix()))
}

// Gatherer exposes the registry.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

// WriteTextfile writes the metrics to path in the text exposition format.
// An empty path is a no-op.
func (r *Recorder) WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}
