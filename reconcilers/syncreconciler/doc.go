/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package syncreconciler holds the domain types shared by the downstream
// file synchronization reconcilers.
//
// A run walks a list of Targets (remote repositories), each with an ordered
// list of Mappings from a local source path to a destination path in the
// target. For every target the file reconciler computes a ChangeSet of
// upserts and deletions, the change manager pushes it to a dedicated branch
// and makes sure exactly one pull request tracks that branch, closing it again
// once the ChangeSet becomes empty.
//
// The subpackages are:
//   - changescope: decides which source paths are eligible in a run.
//   - filereconciler: classifies each mapping into skip, upsert or delete.
//   - changemanager: drives the pull request lifecycle for a target branch.
//   - githubhost: implements the remote operations against the GitHub API.
//   - orchestrator: sequences the above per target and aggregates a status.
package syncreconciler
