/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"context"
	"errors"
	"fmt"

	"chainguard.dev/downstreamsync/reconcilers/syncreconciler/githubhost"
	"github.com/sethvargo/go-envconfig"
)

// inputs are read from the environment the way a GitHub Action receives
// them: INPUT_<NAME> for action inputs and GITHUB_* for the runner context.
type inputs struct {
	ConfigFile    string `env:"INPUT_CONFIGFILE"`
	Mode          string `env:"INPUT_MODE,default=check-upstream"`
	Branch        string `env:"INPUT_PRBRANCH,required"`
	Base          string `env:"INPUT_TARGETBRANCH,default=main"`
	Title         string `env:"INPUT_PRTITLE,required"`
	Body          string `env:"INPUT_PRBODY,required"`
	CommitMessage string `env:"INPUT_COMMITMESSAGE"`
	CommitSubject string `env:"INPUT_COMMITSUBJECT,default=OAS"`
	Verbose       bool   `env:"INPUT_VERBOSE,default=false"`
	Concurrency   int    `env:"INPUT_CONCURRENCY,default=1"`
	MetricsFile   string `env:"INPUT_METRICSFILE"`
	Workspace     string `env:"INPUT_WORKSPACE,default=."`

	// Either a token or a GitHub App installation.
	Token          string `env:"INPUT_TOKEN"`
	AppID          int64  `env:"INPUT_APPID"`
	InstallationID int64  `env:"INPUT_INSTALLATIONID"`
	PrivateKeyFile string `env:"INPUT_PRIVATEKEYFILE"`

	Repository  string `env:"GITHUB_REPOSITORY"`
	EventPath   string `env:"GITHUB_EVENT_PATH"`
	APIURL      string `env:"GITHUB_API_URL"`
	GraphQLURL  string `env:"GITHUB_GRAPHQL_URL"`
	OutputFile  string `env:"GITHUB_OUTPUT"`
	SummaryFile string `env:"GITHUB_STEP_SUMMARY"`
}

// loadInputs processes inputs from l and applies the non-empty overrides
// given on the command line.
func loadInputs(ctx context.Context, l envconfig.Lookuper, o overrides) (inputs, error) {
	var in inputs
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &in,
		Lookuper: l,
	}); err != nil {
		return inputs{}, fmt.Errorf("processing inputs: %w", err)
	}

	if o.configFile != "" {
		in.ConfigFile = o.configFile
	}
	if o.mode != "" {
		in.Mode = o.mode
	}
	if o.verbose {
		in.Verbose = true
	}

	if in.ConfigFile == "" {
		return inputs{}, errors.New("a configuration file is required (INPUT_CONFIGFILE or --config-file)")
	}
	return in, nil
}

func (in inputs) credentials() githubhost.Credentials {
	return githubhost.Credentials{
		Token:          in.Token,
		AppID:          in.AppID,
		InstallationID: in.InstallationID,
		PrivateKeyFile: in.PrivateKeyFile,
	}
}

// overrides are the command line flags that take precedence over inputs.
type overrides struct {
	configFile string
	mode       string
	verbose    bool
}
