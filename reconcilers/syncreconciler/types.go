/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package syncreconciler

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned (wrapped) by remote operations when the
	// requested object does not exist. It is an expected outcome that drives
	// create and no-op-delete decisions, never a failure by itself.
	ErrNotFound = errors.New("not found")

	// ErrInvalidMode is returned by ParseMode for unknown operating modes.
	ErrInvalidMode = errors.New("invalid mode")
)

// Mode selects how the eligible files and their changes are determined.
type Mode string

const (
	// ModeCheckUpstream compares every mapping with the content currently in
	// the target repository.
	ModeCheckUpstream Mode = "check-upstream"

	// ModePRChanges only considers the files changed by the pull request that
	// triggered the run, without comparing them with the target repository.
	ModePRChanges Mode = "pr-changes"
)

// ParseMode validates a mode string. The empty string selects ModeCheckUpstream.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.TrimSpace(s)); m {
	case "":
		return ModeCheckUpstream, nil
	case ModeCheckUpstream, ModePRChanges:
		return m, nil
	default:
		return "", fmt.Errorf("%w provided: %s", ErrInvalidMode, s)
	}
}

// Mapping pairs a local source path with a destination path in the target.
type Mapping struct {
	Src  string `json:"src" yaml:"src"`
	Dest string `json:"dest" yaml:"dest"`
}

// Target is a remote repository and the files synchronized into it.
type Target struct {
	Owner    string
	Repo     string
	Mappings []Mapping
}

// String returns the owner/repo identifier of the target.
func (t Target) String() string {
	return t.Owner + "/" + t.Repo
}

// ParseTarget splits an "owner/repo" identifier at the first separator.
func ParseTarget(id string, mappings []Mapping) (Target, error) {
	owner, repo, ok := strings.Cut(id, "/")
	if !ok || owner == "" || repo == "" {
		return Target{}, fmt.Errorf("target %q must have the form owner/repo", id)
	}
	return Target{
		Owner:    owner,
		Repo:     repo,
		Mappings: mappings,
	}, nil
}
