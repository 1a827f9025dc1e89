/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package filereconciler decides, for one target, which destination files
// must be created, updated or deleted. It reads local files and remote
// content but never writes either.
package filereconciler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"

	"chainguard.dev/downstreamsync/reconcilers/syncreconciler"
	"chainguard.dev/downstreamsync/reconcilers/syncreconciler/changescope"
	"github.com/chainguard-dev/clog"
	"github.com/pmezard/go-difflib/difflib"
)

// ErrInvalidSource is returned for a source path that cannot be resolved
// against the local filesystem. Such a source never yields a deletion.
var ErrInvalidSource = errors.New("invalid source path")

// Remote reads destination files from a target repository. Both methods
// report a missing path through syncreconciler.ErrNotFound.
type Remote interface {
	GetContent(ctx context.Context, owner, repo, ref, path string) ([]byte, error)
	Exists(ctx context.Context, owner, repo, ref, path string) (bool, error)
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithRef selects the branch remote content is read from. The repository's
// default branch is used when ref is empty.
func WithRef(ref string) Option {
	return func(r *Reconciler) {
		r.ref = ref
	}
}

// WithVerbose enables unified diffs of changed files in the debug log.
func WithVerbose(verbose bool) Option {
	return func(r *Reconciler) {
		r.verbose = verbose
	}
}

// Reconciler classifies mappings into a ChangeSet.
type Reconciler struct {
	local   fs.FS
	remote  Remote
	mode    syncreconciler.Mode
	ref     string
	verbose bool
}

// New creates a Reconciler that resolves source paths against local.
func New(local fs.FS, remote Remote, mode syncreconciler.Mode, opts ...Option) (*Reconciler, error) {
	if local == nil {
		return nil, errors.New("local filesystem cannot be nil")
	}
	if remote == nil {
		return nil, errors.New("remote cannot be nil")
	}
	mode, err := syncreconciler.ParseMode(string(mode))
	if err != nil {
		return nil, err
	}

	r := &Reconciler{
		local:  local,
		remote: remote,
		mode:   mode,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Reconcile computes the ChangeSet of target. Mappings outside scope are
// skipped. Any remote error other than ErrNotFound aborts the target.
func (r *Reconciler) Reconcile(ctx context.Context, target syncreconciler.Target, scope *changescope.Scope) (*syncreconciler.ChangeSet, error) {
	log := clog.FromContext(ctx)
	cs := syncreconciler.NewChangeSet()

	for _, m := range target.Mappings {
		if !scope.Contains(m.Src) {
			log.Debugf("Skipping %s: not changed in this pull request", m.Src)
			continue
		}

		src := changescope.CleanPath(m.Src)
		if !fs.ValidPath(src) {
			return nil, fmt.Errorf("%w: %s is not relative to the local filesystem", ErrInvalidSource, m.Src)
		}

		content, err := fs.ReadFile(r.local, src)
		if errors.Is(err, fs.ErrNotExist) {
			if err := r.reconcileMissing(ctx, target, m, cs); err != nil {
				return nil, err
			}
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", m.Src, err)
		}

		if r.mode == syncreconciler.ModePRChanges {
			cs.Upsert(m.Dest, content)
			continue
		}

		upstream, err := r.remote.GetContent(ctx, target.Owner, target.Repo, r.ref, m.Dest)
		switch {
		case errors.Is(err, syncreconciler.ErrNotFound):
			log.Infof("%s does not exist in %s, creating it", m.Dest, target)
			cs.Upsert(m.Dest, content)
		case err != nil:
			return nil, fmt.Errorf("fetching %s from %s: %w", m.Dest, target, err)
		case bytes.Equal(upstream, content):
			log.Debugf("%s is up to date", m.Dest)
		default:
			if r.verbose {
				r.logDiff(ctx, m, upstream, content)
			}
			cs.Upsert(m.Dest, content)
		}
	}

	return cs, nil
}

// reconcileMissing records a deletion for a mapping whose source is gone.
func (r *Reconciler) reconcileMissing(ctx context.Context, target syncreconciler.Target, m syncreconciler.Mapping, cs *syncreconciler.ChangeSet) error {
	log := clog.FromContext(ctx)

	if r.mode == syncreconciler.ModePRChanges {
		log.Infof("%s was removed, deleting %s", m.Src, m.Dest)
		cs.Delete(m.Dest)
		return nil
	}

	exists, err := r.remote.Exists(ctx, target.Owner, target.Repo, r.ref, m.Dest)
	if err != nil && !errors.Is(err, syncreconciler.ErrNotFound) {
		return fmt.Errorf("checking %s in %s: %w", m.Dest, target, err)
	}
	if err != nil || !exists {
		log.Debugf("%s is missing locally and upstream, nothing to delete", m.Src)
		return nil
	}

	log.Infof("%s is missing locally, deleting %s", m.Src, m.Dest)
	cs.Delete(m.Dest)
	return nil
}

func (r *Reconciler) logDiff(ctx context.Context, m syncreconciler.Mapping, upstream, local []byte) {
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(upstream)),
		B:        difflib.SplitLines(string(local)),
		FromFile: "upstream/" + m.Dest,
		ToFile:   "local/" + changescope.CleanPath(m.Src),
		Context:  3,
	})
	if err != nil {
		clog.WarnContextf(ctx, "computing diff for %s: %v", m.Dest, err)
		return
	}
	clog.FromContext(ctx).Debugf("%s differs from upstream:\n%s", m.Dest, diff)
}
