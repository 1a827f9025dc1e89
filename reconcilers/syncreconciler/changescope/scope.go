/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package changescope resolves the set of source paths that are eligible for
// synchronization in a run.
package changescope

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"

	"chainguard.dev/downstreamsync/reconcilers/syncreconciler"
	"github.com/chainguard-dev/clog"
)

// FileLister lists the paths changed by a pull request.
type FileLister interface {
	ListPullRequestFiles(ctx context.Context, owner, repo string, number int) ([]string, error)
}

// Scope is the set of eligible source paths. The zero value is unrestricted.
// A Scope is read-only once resolved and safe for concurrent use.
type Scope struct {
	restricted bool
	paths      map[string]struct{}
}

// Unrestricted returns a Scope in which every source path is eligible.
func Unrestricted() *Scope {
	return &Scope{}
}

// Restricted returns a Scope in which only the given paths are eligible.
func Restricted(paths []string) *Scope {
	s := &Scope{
		restricted: true,
		paths:      make(map[string]struct{}, len(paths)),
	}
	for _, p := range paths {
		s.paths[CleanPath(p)] = struct{}{}
	}
	return s
}

// Restricted reports whether membership is limited to a set of paths.
func (s *Scope) Restricted() bool {
	return s != nil && s.restricted
}

// Contains reports whether src is eligible. Membership is an exact match on
// the cleaned path.
func (s *Scope) Contains(src string) bool {
	if !s.Restricted() {
		return true
	}
	_, ok := s.paths[CleanPath(src)]
	return ok
}

// Len returns the number of paths in a restricted scope, or -1 when unrestricted.
func (s *Scope) Len() int {
	if !s.Restricted() {
		return -1
	}
	return len(s.paths)
}

// CleanPath normalizes a slash separated path: "./specs//a.yaml" becomes
// "specs/a.yaml". Absolute paths and paths that climb out with ".." keep
// their meaning and never match a repository relative path.
func CleanPath(p string) string {
	return path.Clean(strings.TrimSpace(p))
}

// RunContext identifies the repository and pull request a run belongs to.
type RunContext struct {
	Owner  string
	Repo   string
	Number int
}

// LoadRunContext builds a RunContext from an "owner/repo" identifier and the
// path of a webhook event payload. A missing event file leaves Number unset.
func LoadRunContext(repository, eventPath string) (RunContext, error) {
	var rc RunContext
	if repository != "" {
		owner, repo, ok := strings.Cut(repository, "/")
		if !ok {
			return rc, fmt.Errorf("repository %q must have the form owner/repo", repository)
		}
		rc.Owner, rc.Repo = owner, repo
	}
	if eventPath == "" {
		return rc, nil
	}

	data, err := os.ReadFile(eventPath)
	if errors.Is(err, fs.ErrNotExist) {
		return rc, nil
	}
	if err != nil {
		return rc, fmt.Errorf("reading event payload: %w", err)
	}

	var event struct {
		Number      int `json:"number"`
		PullRequest *struct {
			Number int `json:"number"`
		} `json:"pull_request"`
		Issue *struct {
			Number int `json:"number"`
		} `json:"issue"`
	}
	if err := json.Unmarshal(data, &event); err != nil {
		return rc, fmt.Errorf("parsing event payload: %w", err)
	}

	switch {
	case event.PullRequest != nil && event.PullRequest.Number != 0:
		rc.Number = event.PullRequest.Number
	case event.Issue != nil && event.Issue.Number != 0:
		rc.Number = event.Issue.Number
	default:
		rc.Number = event.Number
	}
	return rc, nil
}

// Resolve returns the Scope for mode. For ModePRChanges it fetches the full
// list of files changed by the run's pull request; callers invoke it once per
// run and share the result across targets.
func Resolve(ctx context.Context, mode syncreconciler.Mode, rc RunContext, lister FileLister) (*Scope, error) {
	switch mode {
	case syncreconciler.ModeCheckUpstream:
		return Unrestricted(), nil
	case syncreconciler.ModePRChanges:
	default:
		return nil, fmt.Errorf("%w provided: %s", syncreconciler.ErrInvalidMode, mode)
	}

	if rc.Owner == "" || rc.Repo == "" || rc.Number == 0 {
		return nil, fmt.Errorf("mode %s requires a pull request context, got %s/%s#%d", mode, rc.Owner, rc.Repo, rc.Number)
	}

	files, err := lister.ListPullRequestFiles(ctx, rc.Owner, rc.Repo, rc.Number)
	if err != nil {
		return nil, fmt.Errorf("listing files of %s/%s#%d: %w", rc.Owner, rc.Repo, rc.Number, err)
	}

	clog.FromContext(ctx).With("pull_request", rc.Number).
		With("files", len(files)).
		Info("Restricting scope to pull request changes")

	return Restricted(files), nil
}
