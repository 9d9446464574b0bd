// Copyright 2025 KrakLabs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package ground implements the Artifact Grounder (C8): bottom-up LCA
// path propagation over high-level nodes, attaching metadata.path (and
// metadata.extra.paths for multi-LCA nodes) from the directories of
// their descendant low-level files (§4.8).
package ground

import (
	"sort"
	"strings"

	"github.com/kraklabs/rpgraph/pkg/rpg"
)

// trieNode is one directory-path-component node in the LCA trie.
type trieNode struct {
	children map[string]*trieNode
	terminal bool // a file's directory ends exactly here
}

func newTrieNode() *trieNode { return &trieNode{children: make(map[string]*trieNode)} }

// ComputeLCA inserts every directory in dirs into a trie and returns the
// lexicographically-sorted set of LCA boundaries: nodes that are
// branching (>=2 children) or terminal, with consolidated subtrees
// pruned so each boundary path appears once (§4.8, §8 Property 7).
func ComputeLCA(dirs []string) []string {
	root := newTrieNode()
	seen := make(map[string]bool)
	for _, d := range dirs {
		if seen[d] {
			continue
		}
		seen[d] = true
		insert(root, splitDir(d))
	}

	var boundaries []string
	var walk func(n *trieNode, prefix []string)
	walk = func(n *trieNode, prefix []string) {
		if n.terminal && len(prefix) > 0 {
			boundaries = append(boundaries, strings.Join(prefix, "/"))
			return // prune: a file sits exactly here, consolidating any deeper structure
		}
		// Only consolidate a branching node into one boundary once its
		// children are themselves leaves (plain files, no further
		// structure). If a child still fans out below, recurse into it
		// instead so the boundary lands at the finest divergence point
		// (post-order; §8 S3's {a/b/c, a/b/d, a/e} -> {a/b, a/e}).
		if len(n.children) >= 2 && allLeaves(n.children) && len(prefix) > 0 {
			boundaries = append(boundaries, strings.Join(prefix, "/"))
			return
		}
		for name, child := range n.children {
			walk(child, append(append([]string{}, prefix...), name))
		}
	}
	// Root itself may be a boundary only if it's terminal (a file at repo root).
	if root.terminal && len(root.children) == 0 {
		boundaries = append(boundaries, "")
	}
	for name, child := range root.children {
		walk(child, []string{name})
	}

	sort.Strings(boundaries)
	return dedupePrefixes(boundaries)
}

// dedupePrefixes drops any boundary that is itself a prefix of another
// (keeping both would violate Property 7's "no pair is a prefix of
// another" — this only triggers if the trie walk above raced a
// terminal ancestor against a branching descendant, which pruning
// already prevents, but the check is kept as a correctness backstop).
func dedupePrefixes(paths []string) []string {
	var out []string
	for i, p := range paths {
		isPrefixOfAnother := false
		for j, q := range paths {
			if i != j && q != p && strings.HasPrefix(q+"/", p+"/") {
				isPrefixOfAnother = true
				break
			}
		}
		if !isPrefixOfAnother {
			out = append(out, p)
		}
	}
	return out
}

// allLeaves reports whether every child is a plain file (terminal, no
// children of its own) — the shape that lets a branching node collapse
// into a single boundary rather than pushing resolution into children.
func allLeaves(children map[string]*trieNode) bool {
	for _, c := range children {
		if !c.terminal || len(c.children) > 0 {
			return false
		}
	}
	return true
}

func insert(root *trieNode, parts []string) {
	n := root
	if len(parts) == 0 {
		n.terminal = true
		return
	}
	for _, p := range parts {
		child, ok := n.children[p]
		if !ok {
			child = newTrieNode()
			n.children[p] = child
		}
		n = child
	}
	n.terminal = true
}

func splitDir(dir string) []string {
	dir = strings.Trim(dir, "/")
	if dir == "" || dir == "." {
		return nil
	}
	return strings.Split(dir, "/")
}

// Ground walks every functional-parentless high-level node in graph and
// attaches grounding metadata (§4.8). Roots are visited in a
// deterministic (sorted-ID) order.
func Ground(graph *rpg.Graph) {
	for _, node := range graph.GetHighLevelNodes() {
		if _, hasParent := graph.GetParent(node.ID); hasParent {
			continue
		}
		groundNode(graph, node.ID)
	}
}

// groundNode post-order collects descendant file directories and applies
// computeLCA, recursing into high-level children first so nested areas
// are grounded bottom-up.
func groundNode(graph *rpg.Graph, id string) []string {
	var dirs []string
	for _, child := range graph.GetChildren(id) {
		node, ok := graph.GetNode(child)
		if !ok {
			continue
		}
		if node.IsHighLevel() {
			dirs = append(dirs, groundNode(graph, child)...)
			continue
		}
		if node.LowLevel != nil {
			dirs = append(dirs, dirOf(node.LowLevel.Path))
		}
	}

	lcas := ComputeLCA(dirs)
	if len(lcas) > 0 {
		meta := &rpg.HighLevelMetadata{Path: lcas[0]}
		if len(lcas) > 1 {
			meta.Extra = map[string]any{"paths": lcas}
		}
		node, _ := graph.GetNode(id)
		feature := node.Feature
		graph.UpdateNode(id, feature, nil, meta)
		if len(lcas) > 1 {
			promoteToModule(graph, id)
		}
	}
	return dirs
}

// promoteToModule is a best-effort tag: multi-LCA high-level nodes are
// recorded as modules via HighLevelMetadata.Extra (the canonical
// `entityType="module"` tag belongs to low-level metadata per §3; here
// it is surfaced through Extra for callers inspecting grounded nodes).
func promoteToModule(graph *rpg.Graph, id string) {
	node, ok := graph.GetNode(id)
	if !ok || node.HighLevel == nil {
		return
	}
	if node.HighLevel.Extra == nil {
		node.HighLevel.Extra = map[string]any{}
	}
	node.HighLevel.Extra["entityType"] = "module"
	graph.UpdateNode(id, node.Feature, nil, node.HighLevel)
}

func dirOf(path string) string {
	idx := strings.LastIndex(path, "/")
	if idx < 0 {
		return ""
	}
	return path[:idx]
}
