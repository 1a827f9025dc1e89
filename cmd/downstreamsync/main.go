/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Command downstreamsync synchronizes local files into downstream GitHub
// repositories. Each target repository receives the changed files as a single
// commit on a dedicated branch, tracked by one pull request that is opened
// when changes appear, reused while they persist and closed once the target
// has caught up.
//
// It is meant to run as a GitHub Action step, taking its inputs from
// INPUT_* environment variables and reporting status=success|failure through
// GITHUB_OUTPUT.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

// errRunFailed is returned once the failure has already been reported.
var errRunFailed = errors.New("run failed")

func newRootCmd() *cobra.Command {
	var o overrides

	root := &cobra.Command{
		Use:   "downstreamsync",
		Short: "Synchronize files into downstream repositories through pull requests",
		Long: "downstreamsync compares the files named by a mapping document with their\n" +
			"destinations in each target repository and opens, reuses or closes a\n" +
			"pull request so that the target converges on the local content.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSync(cmd, o)
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&o.configFile, "config-file", "", "Path to the mapping document (overrides INPUT_CONFIGFILE)")
	f.StringVar(&o.mode, "mode", "", "Operating mode: check-upstream or pr-changes (overrides INPUT_MODE)")
	f.BoolVarP(&o.verbose, "verbose", "v", false, "Log a diff of every changed file")

	root.AddCommand(newValidateCmd(&o))
	return root
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errRunFailed) {
			fmt.Fprintln(os.Stderr, err)
		}
		cancel()
		os.Exit(1)
	}
}
