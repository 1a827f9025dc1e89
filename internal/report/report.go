/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package report renders the outcome of a sync run as a markdown summary.
package report

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"

	"chainguard.dev/downstreamsync/reconcilers/syncreconciler/changemanager"
	"chainguard.dev/downstreamsync/reconcilers/syncreconciler/orchestrator"
)

// Summary returns a markdown summary with one row per target.
func Summary(results []orchestrator.Result) string {
	status := orchestrator.StatusOf(results)

	var sb strings.Builder
	fmt.Fprintf(&sb, "## Downstream sync: %s\n\n", status)
	if len(results) == 0 {
		sb.WriteString("No targets configured.\n")
		return sb.String()
	}

	var buf bytes.Buffer
	table := newSummaryTable(&buf)
	for _, r := range results {
		_ = table.Append([]string{
			r.Target.String(),
			outcome(r),
			strconv.Itoa(len(r.Upserted)),
			strconv.Itoa(len(r.Deleted)),
			strconv.Itoa(r.Commits),
			pullRequest(r),
		})
	}
	_ = table.Render()
	sb.WriteString(buf.String())

	var failed []orchestrator.Result
	for _, r := range results {
		if r.Failed() {
			failed = append(failed, r)
		}
	}
	if len(failed) > 0 {
		sb.WriteString("\n### Errors\n\n")
		for _, r := range failed {
			fmt.Fprintf(&sb, "- `%s`: %s\n", r.Target, cell(r.Err.Error()))
		}
	}

	return sb.String()
}

// AppendToFile appends the summary of results to path, typically the file
// named by GITHUB_STEP_SUMMARY. An empty path is a no-op.
func AppendToFile(path string, results []orchestrator.Result) error {
	if path == "" {
		return nil
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening summary file: %w", err)
	}
	if _, err := f.WriteString(Summary(results)); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing summary: %w", err)
	}
	return f.Close()
}

func outcome(r orchestrator.Result) string {
	switch {
	case r.Failed():
		return "❌ failed"
	case r.Action == changemanager.ActionNone, r.Action == "":
		return "up to date"
	default:
		return string(r.Action)
	}
}

func pullRequest(r orchestrator.Result) string {
	if r.PullRequest == nil {
		return "-"
	}
	if r.PullRequest.URL == "" {
		return fmt.Sprintf("#%d", r.PullRequest.Number)
	}
	return fmt.Sprintf("[#%d](%s)", r.PullRequest.Number, r.PullRequest.URL)
}

// cell flattens s so it stays inside a single markdown line.
func cell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", `\|`)
}
