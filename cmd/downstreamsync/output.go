/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"chainguard.dev/downstreamsync/internal/metrics"
	"chainguard.dev/downstreamsync/internal/report"
	"chainguard.dev/downstreamsync/reconcilers/syncreconciler/orchestrator"
	"github.com/chainguard-dev/clog"
)

// setOutput appends name=value to the GITHUB_OUTPUT file. An empty path is a
// no-op.
func setOutput(path, name, value string) error {
	if path == "" {
		return nil
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening output file: %w", err)
	}
	if _, err := fmt.Fprintf(f, "%s=%s\n", name, value); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing output %s: %w", name, err)
	}
	return f.Close()
}

// publish reports the terminal status of a run exactly once, along with the
// summary and metrics of its results. Failures to publish are logged and do
// not change the status.
func publish(ctx context.Context, in inputs, out io.Writer, results []orchestrator.Result, status orchestrator.Status) {
	log := clog.FromContext(ctx)

	if results != nil {
		summary := report.Summary(results)
		fmt.Fprint(out, summary)
		if err := report.AppendToFile(in.SummaryFile, results); err != nil {
			log.Warnf("Failed to write step summary: %v", err)
		}
	}

	rec := metrics.New()
	rec.Observe(results, status, time.Now())
	if err := rec.WriteTextfile(in.MetricsFile); err != nil {
		log.Warnf("Failed to write metrics: %v", err)
	}

	if err := setOutput(in.OutputFile, "status", string(status)); err != nil {
		log.Warnf("Failed to set status output: %v", err)
	}
	log.With("status", string(status)).Infof("Run finished: %s", status)
}
