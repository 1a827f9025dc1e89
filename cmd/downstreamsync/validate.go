/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"errors"
	"fmt"

	"chainguard.dev/downstreamsync/config"
	"chainguard.dev/downstreamsync/reconcilers/syncreconciler"
	"github.com/sethvargo/go-envconfig"
	"github.com/spf13/cobra"
)

func newValidateCmd(o *overrides) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the mapping document and mode without contacting GitHub",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var in struct {
				ConfigFile string `env:"INPUT_CONFIGFILE"`
				Mode       string `env:"INPUT_MODE,default=check-upstream"`
			}
			if err := envconfig.Process(cmd.Context(), &in); err != nil {
				return fmt.Errorf("processing inputs: %w", err)
			}
			if o.configFile != "" {
				in.ConfigFile = o.configFile
			}
			if o.mode != "" {
				in.Mode = o.mode
			}
			if in.ConfigFile == "" {
				return errors.New("a configuration file is required (INPUT_CONFIGFILE or --config-file)")
			}

			mode, err := syncreconciler.ParseMode(in.Mode)
			if err != nil {
				return err
			}
			targets, err := config.Load(in.ConfigFile)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Mode: %s\n", mode)
			fmt.Fprintf(out, "Targets: %d\n", len(targets))
			for _, t := range targets {
				fmt.Fprintf(out, "%s\n", t)
				for _, m := range t.Mappings {
					fmt.Fprintf(out, "  %s -> %s\n", m.Src, m.Dest)
				}
			}
			return nil
		},
	}
}
