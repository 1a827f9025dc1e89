/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package githubhost talks to GitHub on behalf of the sync reconcilers.
//
// A Client reads file contents, lists the files of a pull request, finds,
// opens and closes pull requests, and pushes multi-file changes through the
// git data API (blobs, trees, commits and refs) so that each change lands as
// a single commit without a local clone.
//
// Missing objects are reported by wrapping syncreconciler.ErrNotFound.
// Transient failures (server errors, rate limits, timeouts) are retried with
// exponential backoff before being returned.
package githubhost
