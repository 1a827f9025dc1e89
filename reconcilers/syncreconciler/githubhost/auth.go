/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package githubhost

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"golang.org/x/oauth2"
)

// Credentials selects how requests to GitHub are authenticated: a token, or
// a GitHub App installation.
type Credentials struct {
	Token string

	AppID          int64
	InstallationID int64
	PrivateKeyFile string
}

// HTTPClient returns an http.Client that authenticates every request.
// apiURL is only used to mint installation tokens and may be empty for
// github.com.
func (c Credentials) HTTPClient(ctx context.Context, apiURL string) (*http.Client, error) {
	switch {
	case c.Token != "":
		return oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: c.Token})), nil

	case c.AppID != 0 || c.InstallationID != 0 || c.PrivateKeyFile != "":
		if c.AppID == 0 || c.InstallationID == 0 || c.PrivateKeyFile == "" {
			return nil, errors.New("app authentication requires an app ID, an installation ID and a private key file")
		}
		tr, err := ghinstallation.NewKeyFromFile(http.DefaultTransport, c.AppID, c.InstallationID, c.PrivateKeyFile)
		if err != nil {
			return nil, fmt.Errorf("loading app private key: %w", err)
		}
		if apiURL != "" {
			tr.BaseURL = strings.TrimSuffix(apiURL, "/")
		}
		return &http.Client{Transport: tr}, nil

	default:
		return nil, errors.New("no GitHub credentials configured")
	}
}
