/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package changemanager

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"chainguard.dev/downstreamsync/reconcilers/syncreconciler"
	"github.com/chainguard-dev/clog"
)

// PullRequests is the remote pull request API used by the change manager.
type PullRequests interface {
	// FindOpenPullRequest returns the first open pull request whose head is
	// owner:branch, or nil.
	FindOpenPullRequest(ctx context.Context, owner, repo, branch string) (*syncreconciler.PullRequest, error)
	CreatePullRequest(ctx context.Context, owner, repo string, pr syncreconciler.NewPullRequest) (*syncreconciler.PullRequest, error)
	ClosePullRequest(ctx context.Context, owner, repo string, number int) error
}

// PRData is the data the title and body templates are executed with.
type PRData struct {
	Owner     string
	Repo      string
	Branch    string
	Base      string
	Upserts   []string
	Deletions []string
}

// CM manages the lifecycle of the pull request that tracks a branch in each
// target. Titles and bodies are Go templates over PRData; plain strings are
// rendered verbatim.
type CM struct {
	client        PullRequests
	branch        string
	base          string
	titleTemplate *template.Template
	bodyTemplate  *template.Template
}

// New creates a CM for branch, opening pull requests against base.
func New(client PullRequests, branch, base, title, body string) (*CM, error) {
	if client == nil {
		return nil, errors.New("client cannot be nil")
	}
	if strings.TrimSpace(branch) == "" {
		return nil, errors.New("branch cannot be empty")
	}
	if strings.TrimSpace(base) == "" {
		return nil, errors.New("base cannot be empty")
	}
	if strings.TrimSpace(title) == "" {
		return nil, errors.New("title cannot be empty")
	}
	if strings.TrimSpace(body) == "" {
		return nil, errors.New("body cannot be empty")
	}

	titleTemplate, err := template.New("title").Option("missingkey=error").Parse(title)
	if err != nil {
		return nil, fmt.Errorf("parsing title template: %w", err)
	}
	bodyTemplate, err := template.New("body").Option("missingkey=error").Parse(body)
	if err != nil {
		return nil, fmt.Errorf("parsing body template: %w", err)
	}

	return &CM{
		client:        client,
		branch:        branch,
		base:          base,
		titleTemplate: titleTemplate,
		bodyTemplate:  bodyTemplate,
	}, nil
}

// Base returns the branch pull requests are opened against.
func (cm *CM) Base() string {
	return cm.base
}

// NewSession looks up the open pull request for the CM's branch in target.
// The state is fetched fresh for every session.
func (cm *CM) NewSession(ctx context.Context, target syncreconciler.Target) (*Session, error) {
	pr, err := cm.client.FindOpenPullRequest(ctx, target.Owner, target.Repo, cm.branch)
	if err != nil {
		return nil, fmt.Errorf("finding pull request for %s:%s: %w", target.Owner, cm.branch, err)
	}

	if pr != nil {
		clog.FromContext(ctx).Debugf("Found open PR #%d for branch %s", pr.Number, cm.branch)
	}

	return &Session{
		manager: cm,
		target:  target,
		pr:      pr,
	}, nil
}

func (cm *CM) render(t *template.Template, data PRData) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
