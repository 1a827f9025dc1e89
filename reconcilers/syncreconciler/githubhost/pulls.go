/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package githubhost

import (
	"context"
	"fmt"

	"chainguard.dev/downstreamsync/internal/retry"
	"chainguard.dev/downstreamsync/reconcilers/syncreconciler"
	"github.com/google/go-github/v84/github"
	"github.com/shurcooL/githubv4"
)

// ListPullRequestFiles returns the paths of every file changed by a pull
// request, following pagination to the end.
func (c *Client) ListPullRequestFiles(ctx context.Context, owner, repo string, number int) ([]string, error) {
	var paths []string
	opts := &github.ListOptions{PerPage: 100}
	for {
		type page struct {
			files []*github.CommitFile
			next  int
		}
		p, err := call(ctx, c, "list_pull_request_files", func() (page, error) {
			files, resp, err := c.gh.PullRequests.ListFiles(ctx, owner, repo, number, opts)
			if err != nil {
				return page{}, err
			}
			return page{files: files, next: resp.NextPage}, nil
		})
		if err != nil {
			return nil, fmt.Errorf("listing files of %s/%s#%d: %w", owner, repo, number, notFound(err))
		}

		for _, f := range p.files {
			paths = append(paths, f.GetFilename())
		}
		if p.next == 0 {
			return paths, nil
		}
		opts.Page = p.next
	}
}

// FindOpenPullRequest returns the first open pull request whose head is
// owner:branch, or nil when there is none.
func (c *Client) FindOpenPullRequest(ctx context.Context, owner, repo, branch string) (*syncreconciler.PullRequest, error) {
	var query struct {
		Repository struct {
			PullRequests struct {
				Nodes []struct {
					Number              int
					Url                 string
					HeadRepositoryOwner struct {
						Login string
					}
				}
			} `graphql:"pullRequests(headRefName: $headRef, states: [OPEN], first: 20)"`
		} `graphql:"repository(owner: $owner, name: $repo)"`
	}

	variables := map[string]any{
		"owner":   githubv4.String(owner),
		"repo":    githubv4.String(repo),
		"headRef": githubv4.String(branch),
	}

	if _, err := call(ctx, c, "find_pull_request", func() (struct{}, error) {
		return struct{}{}, c.gql.Query(ctx, &query, variables)
	}); err != nil {
		return nil, fmt.Errorf("querying pull requests of %s/%s: %w", owner, repo, err)
	}

	// Pull requests from forks can share the branch name.
	for _, pr := range query.Repository.PullRequests.Nodes {
		if pr.HeadRepositoryOwner.Login == owner {
			return &syncreconciler.PullRequest{
				Number: pr.Number,
				URL:    pr.Url,
			}, nil
		}
	}
	return nil, nil
}

// CreatePullRequest opens a pull request. Only rate limits are retried since
// a failed create may still have opened the pull request.
func (c *Client) CreatePullRequest(ctx context.Context, owner, repo string, npr syncreconciler.NewPullRequest) (*syncreconciler.PullRequest, error) {
	pr, err := retry.Do(ctx, c.retry, "create_pull_request", classifyRateLimited, func() (*github.PullRequest, error) {
		pr, _, err := c.gh.PullRequests.Create(ctx, owner, repo, &github.NewPullRequest{
			Title: github.Ptr(npr.Title),
			Body:  github.Ptr(npr.Body),
			Head:  github.Ptr(npr.Head),
			Base:  github.Ptr(npr.Base),
		})
		return pr, err
	})
	if err != nil {
		return nil, fmt.Errorf("creating pull request in %s/%s: %w", owner, repo, err)
	}
	return &syncreconciler.PullRequest{
		Number: pr.GetNumber(),
		URL:    pr.GetHTMLURL(),
	}, nil
}

// ClosePullRequest closes a pull request without merging it.
func (c *Client) ClosePullRequest(ctx context.Context, owner, repo string, number int) error {
	_, err := call(ctx, c, "close_pull_request", func() (*github.PullRequest, error) {
		pr, _, err := c.gh.PullRequests.Edit(ctx, owner, repo, number, &github.PullRequest{
			State: github.Ptr("closed"),
		})
		return pr, err
	})
	if err != nil {
		return fmt.Errorf("closing %s/%s#%d: %w", owner, repo, number, err)
	}
	return nil
}
