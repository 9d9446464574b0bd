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

package hierarchy

import (
	"context"
	"fmt"
	"strings"

	"github.com/kraklabs/rpgraph/pkg/llm"
)

// MaxAssignmentRounds bounds the iterative assignment loop (§4.7).
const MaxAssignmentRounds = 10

// UncategorizedPath is where groups that never get assigned land (§4.7).
const UncategorizedPath = "Uncategorized/general purpose/miscellaneous"

const assignSystemPrompt = `You are a code architecture classifier. Given discovered functional areas and a list of unassigned file groups, assign each group to a three-level path "Area/category/subcategory" using only the given areas. Respond as {"assignments": {"<groupLabel>": "Area/category/subcategory", ...}}.`

// Assignment maps a group label to its accepted three-segment path.
type Assignment struct {
	GroupLabel string
	Area       string
	Category   string
	Subcategory string
}

// AssignGroups runs the iterative assignment loop of §4.7: up to
// MaxAssignmentRounds rounds, each prompting the LLM with the remaining
// unassigned groups, parsing a label->path mapping, and accepting paths
// whose area fuzzy-matches one of areas. Terminates early when all
// groups are assigned or a round assigns nothing.
func AssignGroups(ctx context.Context, client llm.Client, areas []string, groups []FileFeatureGroup) []Assignment {
	remaining := make(map[string]FileFeatureGroup, len(groups))
	for _, g := range groups {
		remaining[g.Label] = g
	}
	var assigned []Assignment

	schema := map[string]any{
		"type":       "object",
		"properties": map[string]any{"assignments": map[string]any{"type": "object"}},
	}

	for round := 0; round < MaxAssignmentRounds && len(remaining) > 0; round++ {
		pending := pendingGroups(remaining)
		result, _, err := client.CompleteJSON(ctx, assignPrompt(areas, pending), assignSystemPrompt, schema)
		if err != nil || result == nil {
			break
		}
		mapping := extractMapping(result)
		if len(mapping) == 0 {
			break
		}

		progress := false
		for label, rawPath := range mapping {
			g, ok := remaining[label]
			if !ok {
				continue
			}
			area, cat, sub, ok := parsePath(rawPath, areas)
			if !ok {
				continue
			}
			assigned = append(assigned, Assignment{GroupLabel: g.Label, Area: area, Category: cat, Subcategory: sub})
			delete(remaining, label)
			progress = true
		}
		if !progress {
			break // stuck
		}
	}

	for label, g := range remaining {
		_ = label
		area, cat, sub, _ := parsePath(UncategorizedPath, append(areas, "Uncategorized"))
		assigned = append(assigned, Assignment{GroupLabel: g.Label, Area: area, Category: cat, Subcategory: sub})
	}
	return assigned
}

func pendingGroups(remaining map[string]FileFeatureGroup) []FileFeatureGroup {
	out := make([]FileFeatureGroup, 0, len(remaining))
	for _, g := range remaining {
		out = append(out, g)
	}
	return out
}

func assignPrompt(areas []string, groups []FileFeatureGroup) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Areas: %s\n\nUnassigned groups:\n", strings.Join(areas, ", "))
	for _, g := range groups {
		fmt.Fprintf(&b, "- %s: %s\n", g.Label, strings.Join(g.Descriptions, "; "))
	}
	return b.String()
}

// extractMapping accepts a <solution> block (already resolved by the
// Client's JSON recovery), an {assignments: {...}} object, or a bare
// top-level object (§4.7).
func extractMapping(result map[string]any) map[string]string {
	raw, ok := result["assignments"].(map[string]any)
	if !ok {
		raw = result
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	return out
}

// parsePath accepts a path iff it has exactly three non-empty
// "/"-separated segments, fuzzy-matching the area name to the
// discovered set: exact -> case-insensitive -> prefix -> substring.
func parsePath(path string, areas []string) (area, category, subcategory string, ok bool) {
	parts := strings.Split(path, "/")
	if len(parts) != 3 {
		return "", "", "", false
	}
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			return "", "", "", false
		}
	}
	matched, found := fuzzyMatchArea(parts[0], areas)
	if !found {
		return "", "", "", false
	}
	return matched, strings.ToLower(strings.TrimSpace(parts[1])), strings.ToLower(strings.TrimSpace(parts[2])), true
}

func fuzzyMatchArea(candidate string, areas []string) (string, bool) {
	for _, a := range areas {
		if a == candidate {
			return a, true
		}
	}
	lower := strings.ToLower(candidate)
	for _, a := range areas {
		if strings.ToLower(a) == lower {
			return a, true
		}
	}
	for _, a := range areas {
		if strings.HasPrefix(strings.ToLower(a), lower) || strings.HasPrefix(lower, strings.ToLower(a)) {
			return a, true
		}
	}
	for _, a := range areas {
		if strings.Contains(strings.ToLower(a), lower) || strings.Contains(lower, strings.ToLower(a)) {
			return a, true
		}
	}
	return "", false
}
