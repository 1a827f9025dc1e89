/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package changemanager keeps at most one open pull request per target for
// the branch the sync reconcilers push to.
//
// A CM is configured once per run with the head branch, the base branch and
// the title and body templates. For each target, NewSession discovers the
// open pull request (if any) and the Session then either:
//   - Upsert: pushes the changes through a callback and reuses the open pull
//     request, or opens one when none exists. A branch that is not ahead of
//     the base gets no pull request.
//   - CloseAnyOutstanding: closes the open pull request once the target has
//     nothing left to change.
//
// Repeated runs converge: an unchanged target with an open pull request keeps
// it, and a target whose changes disappeared has its pull request closed once.
package changemanager
