/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package githubhost

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"chainguard.dev/downstreamsync/reconcilers/syncreconciler"
	"github.com/chainguard-dev/clog"
	"github.com/google/go-github/v84/github"
)

const fileMode = "100644"

// PushChanges commits each change of req as one commit on req.Branch and
// force-advances the branch. A missing branch is created from req.Base, but
// only once there is a commit to put on it. Deleting a path that does not
// exist is a no-op, and a change that leaves the tree untouched produces no
// commit.
func (c *Client) PushChanges(ctx context.Context, req syncreconciler.PushRequest) (*syncreconciler.PushResult, error) {
	log := clog.FromContext(ctx)
	res := &syncreconciler.PushResult{}

	head, err := c.getRef(ctx, req.Owner, req.Repo, req.Branch)
	exists := true
	if errors.Is(err, syncreconciler.ErrNotFound) {
		head, err = c.getRef(ctx, req.Owner, req.Repo, req.Base)
		if err != nil {
			return nil, fmt.Errorf("resolving base branch %s: %w", req.Base, err)
		}
		exists = false
	} else if err != nil {
		return nil, fmt.Errorf("resolving branch %s: %w", req.Branch, err)
	}
	start := head

	for _, change := range req.Changes {
		sha, err := c.commitChange(ctx, req.Owner, req.Repo, head, change)
		if err != nil {
			return nil, err
		}
		if sha == "" {
			log.Infof("Branch %s already contains %q", req.Branch, firstLine(change.Message))
			continue
		}
		head = sha
		res.Commits++
	}
	res.HeadSHA = head

	switch {
	case !exists && res.Commits == 0:
		log.Infof("Nothing to commit, not creating branch %s", req.Branch)
	case !exists:
		log.Infof("Creating branch %s from %s at %s", req.Branch, req.Base, start)
		if err := c.createRef(ctx, req.Owner, req.Repo, req.Branch, head); err != nil {
			return nil, err
		}
		res.BranchCreated = true
		res.Ahead = true
	case res.Commits > 0:
		if err := c.updateRef(ctx, req.Owner, req.Repo, req.Branch, head); err != nil {
			return nil, err
		}
		res.Ahead = true
	default:
		ahead, err := c.aheadBy(ctx, req.Owner, req.Repo, req.Base, req.Branch)
		if err != nil {
			return nil, err
		}
		res.Ahead = ahead > 0
	}
	return res, nil
}

// commitChange creates a commit for change on top of parent and returns its
// SHA, or "" when the change would not alter the parent tree.
func (c *Client) commitChange(ctx context.Context, owner, repo, parent string, change syncreconciler.Change) (string, error) {
	parentCommit, err := call(ctx, c, "get_commit", func() (*github.Commit, error) {
		commit, _, err := c.gh.Git.GetCommit(ctx, owner, repo, parent)
		return commit, err
	})
	if err != nil {
		return "", fmt.Errorf("getting commit %s: %w", parent, err)
	}
	baseTree := parentCommit.GetTree().GetSHA()

	var entries []*github.TreeEntry
	for _, path := range change.Files.Upserts() {
		content, _ := change.Files.Content(path)
		sha, err := c.createBlob(ctx, owner, repo, content)
		if err != nil {
			return "", fmt.Errorf("uploading %s: %w", path, err)
		}
		entries = append(entries, &github.TreeEntry{
			Path: github.Ptr(path),
			Mode: github.Ptr(fileMode),
			Type: github.Ptr("blob"),
			SHA:  github.Ptr(sha),
		})
	}
	for _, path := range change.Files.Deletions() {
		exists, err := c.Exists(ctx, owner, repo, parent, path)
		if err != nil {
			return "", fmt.Errorf("checking %s before deletion: %w", path, err)
		}
		if !exists {
			clog.FromContext(ctx).Debugf("%s is already absent, skipping deletion", path)
			continue
		}
		// No SHA and no content removes the path from the base tree.
		entries = append(entries, &github.TreeEntry{
			Path: github.Ptr(path),
			Mode: github.Ptr(fileMode),
			Type: github.Ptr("blob"),
		})
	}
	if len(entries) == 0 {
		return "", nil
	}

	tree, err := call(ctx, c, "create_tree", func() (*github.Tree, error) {
		tree, _, err := c.gh.Git.CreateTree(ctx, owner, repo, baseTree, entries)
		return tree, err
	})
	if err != nil {
		return "", fmt.Errorf("creating tree: %w", err)
	}
	if tree.GetSHA() == baseTree {
		return "", nil
	}

	commit, err := call(ctx, c, "create_commit", func() (*github.Commit, error) {
		commit, _, err := c.gh.Git.CreateCommit(ctx, owner, repo, github.Commit{
			Message: github.Ptr(change.Message),
			Tree:    &github.Tree{SHA: tree.SHA},
			Parents: []*github.Commit{{SHA: github.Ptr(parent)}},
		}, nil)
		return commit, err
	})
	if err != nil {
		return "", fmt.Errorf("creating commit: %w", err)
	}
	return commit.GetSHA(), nil
}

func (c *Client) createBlob(ctx context.Context, owner, repo string, content []byte) (string, error) {
	blob, err := call(ctx, c, "create_blob", func() (*github.Blob, error) {
		blob, _, err := c.gh.Git.CreateBlob(ctx, owner, repo, github.Blob{
			Content:  github.Ptr(base64.StdEncoding.EncodeToString(content)),
			Encoding: github.Ptr("base64"),
		})
		return blob, err
	})
	if err != nil {
		return "", err
	}
	return blob.GetSHA(), nil
}

// getRef returns the commit SHA a branch points to.
func (c *Client) getRef(ctx context.Context, owner, repo, branch string) (string, error) {
	ref, err := call(ctx, c, "get_ref", func() (*github.Reference, error) {
		ref, _, err := c.gh.Git.GetRef(ctx, owner, repo, "heads/"+branch)
		return ref, err
	})
	if err != nil {
		return "", notFound(err)
	}
	return ref.GetObject().GetSHA(), nil
}

func (c *Client) createRef(ctx context.Context, owner, repo, branch, sha string) error {
	if _, err := call(ctx, c, "create_ref", func() (*github.Reference, error) {
		ref, _, err := c.gh.Git.CreateRef(ctx, owner, repo, github.CreateRef{
			Ref: "refs/heads/" + branch,
			SHA: sha,
		})
		return ref, err
	}); err != nil {
		return fmt.Errorf("creating branch %s: %w", branch, err)
	}
	return nil
}

func (c *Client) updateRef(ctx context.Context, owner, repo, branch, sha string) error {
	if _, err := call(ctx, c, "update_ref", func() (*github.Reference, error) {
		ref, _, err := c.gh.Git.UpdateRef(ctx, owner, repo, "heads/"+branch, github.UpdateRef{
			SHA:   sha,
			Force: github.Ptr(true),
		})
		return ref, err
	}); err != nil {
		return fmt.Errorf("updating branch %s to %s: %w", branch, sha, err)
	}
	return nil
}

// aheadBy returns how many commits head has that base lacks.
func (c *Client) aheadBy(ctx context.Context, owner, repo, base, head string) (int, error) {
	cmp, err := call(ctx, c, "compare_commits", func() (*github.CommitsComparison, error) {
		cmp, _, err := c.gh.Repositories.CompareCommits(ctx, owner, repo, base, head, &github.ListOptions{PerPage: 1})
		return cmp, err
	})
	if err != nil {
		return 0, fmt.Errorf("comparing %s with %s: %w", head, base, err)
	}
	return cmp.GetAheadBy(), nil
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
