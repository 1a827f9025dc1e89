/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package config loads the target mapping document: an object whose keys are
// "owner/repo" identifiers and whose values are lists of {src, dest} pairs.
// The document may be JSON or YAML. Targets keep their document order.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"chainguard.dev/downstreamsync/reconcilers/syncreconciler"
	"gopkg.in/yaml.v3"
)

// Load reads and parses the mapping document at path.
func Load(path string) ([]syncreconciler.Target, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	targets, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return targets, nil
}

// Parse parses a mapping document.
func Parse(data []byte) ([]syncreconciler.Target, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, errors.New("document is empty")
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: expected an object of targets", root.Line)
	}

	seen := make(map[string]struct{}, len(root.Content)/2)
	targets := make([]syncreconciler.Target, 0, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i], root.Content[i+1]

		id := strings.TrimSpace(key.Value)
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("line %d: duplicate target %q", key.Line, id)
		}
		seen[id] = struct{}{}

		if value.Kind != yaml.SequenceNode {
			return nil, fmt.Errorf("line %d: target %q must be a list of mappings", value.Line, id)
		}
		var mappings []syncreconciler.Mapping
		if err := value.Decode(&mappings); err != nil {
			return nil, fmt.Errorf("target %q: %w", id, err)
		}
		for j, m := range mappings {
			if m.Src == "" || m.Dest == "" {
				return nil, fmt.Errorf("target %q: mapping %d requires both src and dest", id, j)
			}
		}

		target, err := syncreconciler.ParseTarget(id, mappings)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", key.Line, err)
		}
		targets = append(targets, target)
	}

	return targets, nil
}

// ResolveSources rewrites every src of targets relative to workspace, the
// directory the local filesystem of a run is rooted at. Absolute sources and
// sources that climb out with ".." are resolved against the real filesystem
// first. A source that resolves outside workspace is a configuration error.
func ResolveSources(targets []syncreconciler.Target, workspace string) ([]syncreconciler.Target, error) {
	root, err := filepath.Abs(workspace)
	if err != nil {
		return nil, fmt.Errorf("resolving workspace %s: %w", workspace, err)
	}

	out := make([]syncreconciler.Target, len(targets))
	for i, t := range targets {
		mappings := make([]syncreconciler.Mapping, len(t.Mappings))
		for j, m := range t.Mappings {
			src := filepath.FromSlash(strings.TrimSpace(m.Src))
			if !filepath.IsAbs(src) {
				src = filepath.Join(root, src)
			}
			rel, err := filepath.Rel(root, src)
			if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
				return nil, fmt.Errorf("%s: src %q is outside the workspace %s", t, m.Src, root)
			}
			mappings[j] = syncreconciler.Mapping{Src: filepath.ToSlash(rel), Dest: m.Dest}
		}
		t.Mappings = mappings
		out[i] = t
	}
	return out, nil
}
