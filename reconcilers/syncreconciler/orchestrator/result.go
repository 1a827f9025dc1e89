/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package orchestrator

import (
	"chainguard.dev/downstreamsync/reconcilers/syncreconciler"
	"chainguard.dev/downstreamsync/reconcilers/syncreconciler/changemanager"
)

// Status is the terminal outcome of a run.
type Status string

const (
	// StatusSuccess means every target was reconciled without error.
	StatusSuccess Status = "success"
	// StatusFailure means at least one target failed or the run was aborted
	// before any target was processed.
	StatusFailure Status = "failure"
)

// Result is the outcome of reconciling one target.
type Result struct {
	Target syncreconciler.Target

	// Upserted and Deleted are the destination paths of the ChangeSet.
	Upserted []string
	Deleted  []string

	// Commits is the number of commits pushed to the branch.
	Commits int

	// Action is what happened to the target's pull request, and PullRequest
	// the pull request it happened to.
	Action      changemanager.Action
	PullRequest *syncreconciler.PullRequest

	// Err is set when the target failed. Effects that happened before the
	// failure are not rolled back.
	Err error
}

// Failed reports whether the target failed.
func (r Result) Failed() bool {
	return r.Err != nil
}

// StatusOf collapses per-target results into the status of the run.
func StatusOf(results []Result) Status {
	for _, r := range results {
		if r.Failed() {
			return StatusFailure
		}
	}
	return StatusSuccess
}
