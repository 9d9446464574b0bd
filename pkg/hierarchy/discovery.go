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
	"sort"
	"strings"
	"unicode"

	"github.com/kraklabs/rpgraph/pkg/llm"
)

// DefaultDiscoveryRuns is the number of LLM ballots domain discovery
// runs by default (§4.7, "k default 3").
const DefaultDiscoveryRuns = 3

// MaxAreas is the maximum number of discovered areas retained (§4.7).
const MaxAreas = 8

const discoverySystemPrompt = `You are a code architecture classifier. Given a summary of a repository's top-level file groups, propose the functional areas (domains) this codebase is organized around. Respond as {"areas": ["AreaOne", "AreaTwo", ...]} using PascalCase area names.`

// DiscoverDomains runs the LLM k times and aggregates candidate areas by
// frequency, breaking ties alphabetically and truncating to MaxAreas
// (§4.7). Fails only if every iteration returns no valid areas.
func DiscoverDomains(ctx context.Context, client llm.Client, groups []FileFeatureGroup, runs int) ([]string, error) {
	if runs <= 0 {
		runs = DefaultDiscoveryRuns
	}
	prompt := discoveryPrompt(groups)
	schema := map[string]any{
		"type":       "object",
		"properties": map[string]any{"areas": map[string]any{"type": "array", "items": map[string]any{"type": "string"}}},
		"required":   []string{"areas"},
	}

	counts := make(map[string]int)
	var firstSeen []string
	anyValid := false

	for i := 0; i < runs; i++ {
		result, _, err := client.CompleteJSON(ctx, prompt, discoverySystemPrompt, schema)
		if err != nil || result == nil {
			continue
		}
		raw := stringSliceOf(result["areas"])
		for _, r := range raw {
			area := toPascalCase(r)
			if area == "" {
				continue
			}
			anyValid = true
			if counts[area] == 0 {
				firstSeen = append(firstSeen, area)
			}
			counts[area]++
		}
	}
	if !anyValid {
		return nil, fmt.Errorf("hierarchy: domain discovery produced no valid areas after %d iterations", runs)
	}

	sort.SliceStable(firstSeen, func(i, j int) bool {
		if counts[firstSeen[i]] != counts[firstSeen[j]] {
			return counts[firstSeen[i]] > counts[firstSeen[j]]
		}
		return firstSeen[i] < firstSeen[j]
	})
	if len(firstSeen) > MaxAreas {
		firstSeen = firstSeen[:MaxAreas]
	}
	return firstSeen, nil
}

func discoveryPrompt(groups []FileFeatureGroup) string {
	var b strings.Builder
	b.WriteString("File groups:\n")
	for _, g := range groups {
		fmt.Fprintf(&b, "- %s: %s\n", g.Label, strings.Join(g.Descriptions, "; "))
	}
	return b.String()
}

func stringSliceOf(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s, ok := it.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// toPascalCase normalizes a candidate area name: splits on
// non-alphanumeric boundaries as well as internal lowercase-to-uppercase
// case transitions, and title-cases each token. Already-PascalCase input
// (e.g. "AreaOne", the shape the discovery prompt asks the LLM to
// return) passes through unchanged because each existing word boundary
// is detected and re-capitalized identically.
func toPascalCase(s string) string {
	var tokens []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			tokens = append(tokens, string(cur))
			cur = nil
		}
	}
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if len(cur) > 0 && unicode.IsUpper(r) && !unicode.IsUpper(cur[len(cur)-1]) {
				flush()
			}
			cur = append(cur, r)
		} else {
			flush()
		}
	}
	flush()

	var out strings.Builder
	for _, t := range tokens {
		if t == "" {
			continue
		}
		r := []rune(t)
		out.WriteRune(unicode.ToUpper(r[0]))
		for _, c := range r[1:] {
			out.WriteRune(unicode.ToLower(c))
		}
	}
	return out.String()
}
