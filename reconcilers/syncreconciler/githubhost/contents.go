/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package githubhost

import (
	"context"
	"errors"
	"fmt"

	"chainguard.dev/downstreamsync/reconcilers/syncreconciler"
	"github.com/google/go-github/v84/github"
)

// GetContent returns the raw bytes of the file at path on ref, or an error
// wrapping syncreconciler.ErrNotFound when it does not exist. An empty ref
// reads from the default branch.
func (c *Client) GetContent(ctx context.Context, owner, repo, ref, path string) ([]byte, error) {
	fc, err := c.getFile(ctx, owner, repo, ref, path)
	if err != nil {
		return nil, err
	}

	// The contents API omits the payload of files over 1MB.
	if fc.GetEncoding() == "none" {
		return call(ctx, c, "get_blob", func() ([]byte, error) {
			b, _, err := c.gh.Git.GetBlobRaw(ctx, owner, repo, fc.GetSHA())
			return b, err
		})
	}

	content, err := fc.GetContent()
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return []byte(content), nil
}

// Exists reports whether a file exists at path on ref.
func (c *Client) Exists(ctx context.Context, owner, repo, ref, path string) (bool, error) {
	_, err := c.getFile(ctx, owner, repo, ref, path)
	if errors.Is(err, syncreconciler.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (c *Client) getFile(ctx context.Context, owner, repo, ref, path string) (*github.RepositoryContent, error) {
	fc, err := call(ctx, c, "get_contents", func() (*github.RepositoryContent, error) {
		fc, _, _, err := c.gh.Repositories.GetContents(ctx, owner, repo, path, &github.RepositoryContentGetOptions{Ref: ref})
		return fc, err
	})
	if err != nil {
		return nil, fmt.Errorf("getting %s/%s:%s: %w", owner, repo, path, notFound(err))
	}
	if fc == nil {
		return nil, fmt.Errorf("%s/%s:%s is a directory", owner, repo, path)
	}
	return fc, nil
}
