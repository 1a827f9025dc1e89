/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package syncreconciler

// PullRequest identifies a pull request in a target repository.
type PullRequest struct {
	Number int
	URL    string
}

// NewPullRequest describes a pull request to open.
type NewPullRequest struct {
	Title string
	Body  string
	Head  string
	Base  string
}

// Change is one commit worth of file changes.
type Change struct {
	Message string
	Files   *ChangeSet
}

// PushRequest asks for Changes to be committed, in order, to Branch of the
// target repository. Branch is created from Base when it does not exist yet.
type PushRequest struct {
	Owner   string
	Repo    string
	Branch  string
	Base    string
	Changes []Change
}

// PushResult reports what a push did.
type PushResult struct {
	// BranchCreated is set when the branch did not exist before the push.
	BranchCreated bool
	// HeadSHA is the commit the branch points to after the push.
	HeadSHA string
	// Commits is the number of commits created. It is zero when every change
	// was already present on the branch.
	Commits int
	// Ahead is set when the branch holds commits that the base branch lacks.
	// A pull request can only be opened for a branch that is ahead.
	Ahead bool
}
