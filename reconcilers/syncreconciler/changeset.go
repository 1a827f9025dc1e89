/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package syncreconciler

import (
	"slices"
	"strings"
)

// DefaultCommitSubject is used to synthesize commit messages when no
// override or subject is configured.
const DefaultCommitSubject = "OAS"

// ChangeSet is the set of destination paths that must be written or removed
// in one target. A path is never both an upsert and a deletion: recording one
// discards the other.
type ChangeSet struct {
	upserts   map[string][]byte
	order     []string
	deletions []string
}

// NewChangeSet returns an empty ChangeSet.
func NewChangeSet() *ChangeSet {
	return &ChangeSet{upserts: make(map[string][]byte)}
}

// Upsert records content to be written at path.
func (cs *ChangeSet) Upsert(path string, content []byte) {
	if cs.upserts == nil {
		cs.upserts = make(map[string][]byte)
	}
	cs.deletions = slices.DeleteFunc(cs.deletions, func(p string) bool { return p == path })
	if _, ok := cs.upserts[path]; !ok {
		cs.order = append(cs.order, path)
	}
	cs.upserts[path] = content
}

// Delete records path for removal.
func (cs *ChangeSet) Delete(path string) {
	if _, ok := cs.upserts[path]; ok {
		delete(cs.upserts, path)
		cs.order = slices.DeleteFunc(cs.order, func(p string) bool { return p == path })
	}
	if !slices.Contains(cs.deletions, path) {
		cs.deletions = append(cs.deletions, path)
	}
}

// Upserts returns the upserted paths in the order they were first recorded.
func (cs *ChangeSet) Upserts() []string {
	return slices.Clone(cs.order)
}

// Content returns the content recorded for an upserted path.
func (cs *ChangeSet) Content(path string) ([]byte, bool) {
	c, ok := cs.upserts[path]
	return c, ok
}

// Deletions returns the paths to remove in the order they were recorded.
func (cs *ChangeSet) Deletions() []string {
	return slices.Clone(cs.deletions)
}

// Paths returns upserted paths followed by deleted paths.
func (cs *ChangeSet) Paths() []string {
	return append(cs.Upserts(), cs.deletions...)
}

// Len returns the number of paths touched by the ChangeSet.
func (cs *ChangeSet) Len() int {
	return len(cs.order) + len(cs.deletions)
}

// Empty reports whether the ChangeSet is a no-op.
func (cs *ChangeSet) Empty() bool {
	return cs == nil || cs.Len() == 0
}

// CommitMessage returns override verbatim when set. Otherwise it lists every
// path of the ChangeSet after an "Automated <subject> update" prefix.
func CommitMessage(override, subject string, cs *ChangeSet) string {
	if override != "" {
		return override
	}
	if subject == "" {
		subject = DefaultCommitSubject
	}
	return "Automated " + subject + " update: " + strings.Join(cs.Paths(), ", ")
}
