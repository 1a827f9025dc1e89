/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package changemanager

import (
	"context"
	"fmt"

	"chainguard.dev/downstreamsync/reconcilers/syncreconciler"
	"github.com/chainguard-dev/clog"
)

// Action is what a session did to the pull request of its target.
type Action string

const (
	// ActionNone means no pull request exists and none was needed.
	ActionNone Action = "none"
	// ActionCreated means a new pull request was opened.
	ActionCreated Action = "created"
	// ActionReused means changes were pushed to the branch of an open pull request.
	ActionReused Action = "reused"
	// ActionClosed means a stale pull request was closed.
	ActionClosed Action = "closed"
)

// Session represents the pull request state of one target for one run.
type Session struct {
	manager *CM
	target  syncreconciler.Target

	// pr is the open pull request found by NewSession, nil when absent.
	pr *syncreconciler.PullRequest
}

// PullRequest returns the open pull request, or nil when there is none.
func (s *Session) PullRequest() *syncreconciler.PullRequest {
	return s.pr
}

// CloseAnyOutstanding closes the open pull request, if any. It returns
// ActionClosed when a pull request was closed and ActionNone otherwise.
func (s *Session) CloseAnyOutstanding(ctx context.Context) (Action, error) {
	if s.pr == nil {
		return ActionNone, nil
	}

	clog.FromContext(ctx).Infof("Closing existing PR #%d that has no changed files", s.pr.Number)
	if err := s.manager.client.ClosePullRequest(ctx, s.target.Owner, s.target.Repo, s.pr.Number); err != nil {
		return ActionNone, fmt.Errorf("closing pull request: %w", err)
	}
	s.pr = nil
	return ActionClosed, nil
}

// Upsert calls makeChanges to push the changes to the session's branch and
// then makes sure a pull request tracks it: an open one is reused, otherwise
// a new one is created. makeChanges reports whether the branch ended up ahead
// of the base branch. When it did not, no pull request is opened, any open one
// is closed and the action is ActionNone or ActionClosed.
func (s *Session) Upsert(
	ctx context.Context,
	data PRData,
	makeChanges func(ctx context.Context, branch string) (bool, error),
) (*syncreconciler.PullRequest, Action, error) {
	log := clog.FromContext(ctx)

	ahead, err := makeChanges(ctx, s.manager.branch)
	if err != nil {
		return nil, ActionNone, fmt.Errorf("making changes: %w", err)
	}
	if !ahead {
		log.Infof("Branch %s has no changes against %s, not opening a PR", s.manager.branch, s.manager.base)
		action, err := s.CloseAnyOutstanding(ctx)
		return nil, action, err
	}

	if s.pr != nil {
		log.Infof("PR #%d already exists, not creating another", s.pr.Number)
		return s.pr, ActionReused, nil
	}

	data.Owner = s.target.Owner
	data.Repo = s.target.Repo
	data.Branch = s.manager.branch
	data.Base = s.manager.base

	title, err := s.manager.render(s.manager.titleTemplate, data)
	if err != nil {
		return nil, ActionNone, fmt.Errorf("executing title template: %w", err)
	}
	body, err := s.manager.render(s.manager.bodyTemplate, data)
	if err != nil {
		return nil, ActionNone, fmt.Errorf("executing body template: %w", err)
	}

	log.Infof("Creating PR with head %s and base %s", s.manager.branch, s.manager.base)
	pr, err := s.manager.client.CreatePullRequest(ctx, s.target.Owner, s.target.Repo, syncreconciler.NewPullRequest{
		Title: title,
		Body:  body,
		Head:  s.manager.branch,
		Base:  s.manager.base,
	})
	if err != nil {
		return nil, ActionNone, fmt.Errorf("creating pull request: %w", err)
	}

	log.Infof("Created PR #%d: %s", pr.Number, pr.URL)
	s.pr = pr
	return pr, ActionCreated, nil
}
