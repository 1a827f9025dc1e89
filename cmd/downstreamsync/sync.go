/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"chainguard.dev/downstreamsync/config"
	"chainguard.dev/downstreamsync/reconcilers/syncreconciler"
	"chainguard.dev/downstreamsync/reconcilers/syncreconciler/changescope"
	"chainguard.dev/downstreamsync/reconcilers/syncreconciler/githubhost"
	"chainguard.dev/downstreamsync/reconcilers/syncreconciler/orchestrator"
	"github.com/chainguard-dev/clog"
	"github.com/sethvargo/go-envconfig"
	"github.com/spf13/cobra"
)

func runSync(cmd *cobra.Command, o overrides) error {
	ctx := withLogger(cmd.Context(), cmd.ErrOrStderr(), o.verbose)

	in, err := loadInputs(ctx, envconfig.OsLookuper(), o)
	if err != nil {
		return abort(ctx, inputs{OutputFile: os.Getenv("GITHUB_OUTPUT")}, cmd.OutOrStdout(), err)
	}
	ctx = withLogger(cmd.Context(), cmd.ErrOrStderr(), in.Verbose)

	results, err := reconcileAll(ctx, in, newGitHubRemote)
	if err != nil {
		return abort(ctx, in, cmd.OutOrStdout(), err)
	}

	status := orchestrator.StatusOf(results)
	publish(ctx, in, cmd.OutOrStdout(), results, status)
	if status != orchestrator.StatusSuccess {
		return errRunFailed
	}
	return nil
}

// abort reports a run-level failure before any target was processed.
func abort(ctx context.Context, in inputs, out io.Writer, err error) error {
	clog.ErrorContextf(ctx, "Aborting: %v", err)
	publish(ctx, in, out, nil, orchestrator.StatusFailure)
	return errRunFailed
}

// remoteFactory builds the repository host client once inputs are known.
type remoteFactory func(ctx context.Context, in inputs) (orchestrator.Remote, error)

var _ orchestrator.Remote = (*githubhost.Client)(nil)

func newGitHubRemote(ctx context.Context, in inputs) (orchestrator.Remote, error) {
	httpClient, err := in.credentials().HTTPClient(ctx, in.APIURL)
	if err != nil {
		return nil, err
	}
	client, err := githubhost.New(httpClient, githubhost.WithAPIURL(in.APIURL, in.GraphQLURL))
	if err != nil {
		return nil, err
	}
	return client, nil
}

// reconcileAll validates everything that can abort the run, then reconciles every
// target. Per-target failures are reported in the results.
func reconcileAll(ctx context.Context, in inputs, newRemote remoteFactory) ([]orchestrator.Result, error) {
	mode, err := syncreconciler.ParseMode(in.Mode)
	if err != nil {
		return nil, err
	}

	targets, err := config.Load(in.ConfigFile)
	if err != nil {
		return nil, err
	}
	targets, err = config.ResolveSources(targets, in.Workspace)
	if err != nil {
		return nil, err
	}

	runCtx, err := changescope.LoadRunContext(in.Repository, in.EventPath)
	if err != nil {
		return nil, err
	}

	remote, err := newRemote(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("creating GitHub client: %w", err)
	}

	orch, err := orchestrator.New(remote, orchestrator.Options{
		Mode:          string(mode),
		Branch:        in.Branch,
		Base:          in.Base,
		Title:         in.Title,
		Body:          in.Body,
		CommitMessage: in.CommitMessage,
		CommitSubject: in.CommitSubject,
		RunContext:    runCtx,
		Local:         os.DirFS(in.Workspace),
		Verbose:       in.Verbose,
		Concurrency:   in.Concurrency,
	})
	if err != nil {
		return nil, err
	}

	clog.FromContext(ctx).With("mode", string(mode)).Infof("Synchronizing %d target(s) from %s", len(targets), in.ConfigFile)
	return orch.Run(ctx, targets)
}
