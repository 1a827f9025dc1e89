/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package orchestrator runs the sync reconcilers over every configured target
// and collapses the outcome into a single run status.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"chainguard.dev/downstreamsync/reconcilers/syncreconciler"
	"chainguard.dev/downstreamsync/reconcilers/syncreconciler/changemanager"
	"chainguard.dev/downstreamsync/reconcilers/syncreconciler/changescope"
	"chainguard.dev/downstreamsync/reconcilers/syncreconciler/filereconciler"
	"github.com/chainguard-dev/clog"
	"golang.org/x/sync/errgroup"
)

// Remote is everything a run needs from the repository host.
type Remote interface {
	filereconciler.Remote
	changescope.FileLister
	changemanager.PullRequests

	PushChanges(ctx context.Context, req syncreconciler.PushRequest) (*syncreconciler.PushResult, error)
}

// Options configures an Orchestrator.
type Options struct {
	// Mode is the operating mode; empty selects check-upstream.
	Mode string
	// Branch is the head branch changes are pushed to.
	Branch string
	// Base is the branch pull requests target and content is compared with.
	Base string
	// Title and Body of created pull requests, as Go templates.
	Title string
	Body  string
	// CommitMessage overrides the synthesized commit message when set.
	CommitMessage string
	// CommitSubject names the synchronized content in synthesized messages.
	CommitSubject string
	// RunContext identifies the pull request that scopes a pr-changes run.
	RunContext changescope.RunContext
	// Local is the filesystem source paths are resolved against.
	Local fs.FS
	// Verbose logs a diff for every changed file.
	Verbose bool
	// Concurrency bounds how many targets are processed at once (default 1).
	Concurrency int
}

// Orchestrator sequences scope resolution, file reconciliation, pushing and
// the pull request lifecycle for every target.
type Orchestrator struct {
	remote  Remote
	mode    syncreconciler.Mode
	runCtx  changescope.RunContext
	files   *filereconciler.Reconciler
	changes *changemanager.CM

	commitMessage string
	commitSubject string
	concurrency   int
}

// New validates opts and builds an Orchestrator. Every error returned here is
// a configuration error that must abort the run.
func New(remote Remote, opts Options) (*Orchestrator, error) {
	if remote == nil {
		return nil, errors.New("remote cannot be nil")
	}

	mode, err := syncreconciler.ParseMode(opts.Mode)
	if err != nil {
		return nil, err
	}

	if opts.Base == "" {
		opts.Base = "main"
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}

	files, err := filereconciler.New(opts.Local, remote, mode,
		filereconciler.WithRef(opts.Base),
		filereconciler.WithVerbose(opts.Verbose),
	)
	if err != nil {
		return nil, fmt.Errorf("creating file reconciler: %w", err)
	}

	changes, err := changemanager.New(remote, opts.Branch, opts.Base, opts.Title, opts.Body)
	if err != nil {
		return nil, fmt.Errorf("creating change manager: %w", err)
	}

	return &Orchestrator{
		remote:        remote,
		mode:          mode,
		runCtx:        opts.RunContext,
		files:         files,
		changes:       changes,
		commitMessage: opts.CommitMessage,
		commitSubject: opts.CommitSubject,
		concurrency:   opts.Concurrency,
	}, nil
}

// Run reconciles every target in order and returns one Result per target.
// Failures of individual targets are reported in their Result; the returned
// error is reserved for failures that prevent processing any target.
func (o *Orchestrator) Run(ctx context.Context, targets []syncreconciler.Target) ([]Result, error) {
	scope, err := changescope.Resolve(ctx, o.mode, o.runCtx, o.remote)
	if err != nil {
		return nil, fmt.Errorf("resolving change scope: %w", err)
	}

	if scope.Restricted() {
		clog.FromContext(ctx).Infof("Only the %d path(s) changed by pull request #%d are eligible", scope.Len(), o.runCtx.Number)
	}

	results := make([]Result, len(targets))

	var g errgroup.Group
	g.SetLimit(o.concurrency)
	for i, target := range targets {
		g.Go(func() error {
			results[i] = o.reconcileTarget(ctx, target, scope)
			return nil
		})
	}
	_ = g.Wait()

	return results, nil
}

func (o *Orchestrator) reconcileTarget(ctx context.Context, target syncreconciler.Target, scope *changescope.Scope) Result {
	ctx = clog.WithLogger(ctx, clog.FromContext(ctx).With("target", target.String()))
	log := clog.FromContext(ctx)
	log.Infof("Processing %s", target)

	res := Result{Target: target, Action: changemanager.ActionNone}
	fail := func(err error) Result {
		log.Errorf("Failed to reconcile %s: %v", target, err)
		res.Err = err
		return res
	}

	cs, err := o.files.Reconcile(ctx, target, scope)
	if err != nil {
		return fail(err)
	}

	session, err := o.changes.NewSession(ctx, target)
	if err != nil {
		return fail(err)
	}
	if pr := session.PullRequest(); pr != nil {
		res.PullRequest = pr
	}

	if cs.Empty() {
		log.Infof("No files changed for '%s'", target)
		res.Action, err = session.CloseAnyOutstanding(ctx)
		if err != nil {
			return fail(err)
		}
		if res.Action == changemanager.ActionClosed {
			log.Infof("Closed PR #%d", res.PullRequest.Number)
		}
		return res
	}

	res.Upserted = cs.Upserts()
	res.Deleted = cs.Deletions()
	log.Infof("%d file(s) changed and %d file(s) removed in %s", len(res.Upserted), len(res.Deleted), target)

	message := syncreconciler.CommitMessage(o.commitMessage, o.commitSubject, cs)
	pr, action, err := session.Upsert(ctx, changemanager.PRData{
		Upserts:   res.Upserted,
		Deletions: res.Deleted,
	}, func(ctx context.Context, branch string) (bool, error) {
		pushed, err := o.remote.PushChanges(ctx, syncreconciler.PushRequest{
			Owner:   target.Owner,
			Repo:    target.Repo,
			Branch:  branch,
			Base:    o.changes.Base(),
			Changes: []syncreconciler.Change{{Message: message, Files: cs}},
		})
		if err != nil {
			return false, err
		}
		res.Commits = pushed.Commits
		return pushed.Ahead, nil
	})
	if err != nil {
		return fail(err)
	}

	res.Action = action
	switch {
	case pr != nil:
		res.PullRequest = pr
	case action == changemanager.ActionClosed:
		log.Infof("Closed PR #%d", res.PullRequest.Number)
	}
	return res
}
