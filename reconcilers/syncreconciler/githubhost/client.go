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
	"net/url"
	"strings"

	"chainguard.dev/downstreamsync/internal/retry"
	"github.com/google/go-github/v84/github"
	"github.com/shurcooL/githubv4"
)

// Client implements the remote operations of the sync reconcilers on top of
// the GitHub REST and GraphQL APIs. Every call is retried on transient errors.
type Client struct {
	gh    *github.Client
	gql   *githubv4.Client
	retry retry.Config
}

type options struct {
	apiURL     string
	graphqlURL string
	retry      retry.Config
}

// Option configures a Client.
type Option func(*options)

// WithAPIURL points the client at a GitHub Enterprise Server or a test
// server. apiURL is the REST root (for example https://ghe.example.com/api/v3)
// and graphqlURL the GraphQL endpoint.
func WithAPIURL(apiURL, graphqlURL string) Option {
	return func(o *options) {
		o.apiURL = apiURL
		o.graphqlURL = graphqlURL
	}
}

// WithRetryConfig overrides the retry policy.
func WithRetryConfig(cfg retry.Config) Option {
	return func(o *options) {
		o.retry = cfg
	}
}

// New creates a Client. The http.Client carries the authentication.
func New(httpClient *http.Client, opts ...Option) (*Client, error) {
	if httpClient == nil {
		return nil, errors.New("http client cannot be nil")
	}

	o := options{retry: retry.DefaultConfig()}
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.retry.Validate(); err != nil {
		return nil, fmt.Errorf("invalid retry config: %w", err)
	}

	gh := github.NewClient(httpClient)
	gql := githubv4.NewClient(httpClient)

	if o.apiURL != "" {
		u, err := url.Parse(strings.TrimSuffix(o.apiURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("parsing API URL: %w", err)
		}
		gh.BaseURL = u
	}
	if o.graphqlURL != "" {
		gql = githubv4.NewEnterpriseClient(o.graphqlURL, httpClient)
	}

	return &Client{
		gh:    gh,
		gql:   gql,
		retry: o.retry,
	}, nil
}

// call runs fn under the client's retry policy.
func call[T any](ctx context.Context, c *Client, operation string, fn func() (T, error)) (T, error) {
	return retry.Do(ctx, c.retry, operation, classifyTransient, fn)
}
