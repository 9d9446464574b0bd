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

// Package semantic implements the Semantic Extractor (C5): per-entity
// LLM-assisted feature extraction with a deterministic heuristic
// fallback, token-aware batching, naming validation, and file-level
// aggregation (§4.5).
package semantic

import (
	"strings"

	"github.com/kraklabs/rpgraph/pkg/rpg"
)

// implementationDetailTokens are stripped from any description (§4.5
// naming rule 2): implementation vocabulary, not domain semantics.
var implementationDetailTokens = map[string]bool{
	"loop": true, "iterate": true, "if": true, "else": true, "array": true,
	"dict": true, "hash": true, "stack": true, "queue": true, "for": true,
	"while": true, "switch": true, "case": true, "try": true, "catch": true,
	"throw": true, "return": true, "break": true, "continue": true,
}

// nonActionPrefixes identifies words that cannot start an "action"
// conjunct when splitting a conjunction description (§4.5 naming rule 3).
var nonActionPrefixes = map[string]bool{
	"a": true, "an": true, "the": true, "their": true, "its": true,
	"his": true, "her": true, "our": true, "your": true, "this": true, "that": true,
}

// vagueVerbReplacements replaces a leading vague verb with a more
// specific one (§4.5 naming rule 4).
var vagueVerbReplacements = map[string]string{
	"handle":    "dispatch",
	"process":   "transform",
	"deal":      "resolve", // "deal with X" -> handled specially below
	"do":        "execute",
	"manage":    "coordinate",
	"run":       "execute",
	"perform":   "execute",
}

// ValidateFeatureName applies the §4.5 naming rules to a raw description,
// returning the validated description and any subFeatures split out of a
// conjunction. Idempotent: calling it again on its own output is a no-op.
func ValidateFeatureName(raw string) (description string, subFeatures []string) {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.TrimRight(s, ".,;:!? ")

	s = stripImplementationTokens(s)

	description, subFeatures = splitConjunction(s)
	description = replaceVagueVerb(description)
	description = truncateWords(description, 8)

	for i, sf := range subFeatures {
		subFeatures[i] = truncateWords(replaceVagueVerb(stripImplementationTokens(sf)), 8)
	}
	return description, subFeatures
}

func stripImplementationTokens(s string) string {
	words := strings.Fields(s)
	out := words[:0:0]
	for _, w := range words {
		if !implementationDetailTokens[w] {
			out = append(out, w)
		}
	}
	return strings.Join(out, " ")
}

// splitConjunction implements naming rule 3: if the phrase contains
// " and " and the first conjunct has >=2 words and a later conjunct
// looks like an action (its first word isn't a non-action prefix),
// split the first conjunct out as description and the rest as
// subFeatures.
func splitConjunction(s string) (string, []string) {
	if !strings.Contains(s, " and ") {
		return s, nil
	}
	parts := strings.Split(s, " and ")
	first := strings.TrimSpace(parts[0])
	if len(strings.Fields(first)) < 2 {
		return s, nil
	}
	var rest []string
	anyAction := false
	for _, p := range parts[1:] {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		words := strings.Fields(p)
		if len(words) > 0 && !nonActionPrefixes[words[0]] {
			anyAction = true
		}
		rest = append(rest, p)
	}
	if !anyAction {
		return s, nil
	}
	return first, rest
}

func replaceVagueVerb(s string) string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return s
	}
	if words[0] == "deal" && len(words) > 1 && words[1] == "with" {
		return strings.Join(append([]string{"resolve"}, words[2:]...), " ")
	}
	if repl, ok := vagueVerbReplacements[words[0]]; ok {
		words[0] = repl
	}
	return strings.Join(words, " ")
}

func truncateWords(s string, max int) string {
	words := strings.Fields(s)
	if len(words) <= max {
		return s
	}
	return strings.Join(words[:max], " ")
}

// ValidateFeature applies naming validation to an already-constructed
// SemanticFeature's description, merging any split subFeatures ahead of
// the ones already present.
func ValidateFeature(f rpg.SemanticFeature) rpg.SemanticFeature {
	desc, split := ValidateFeatureName(f.Description)
	f.Description = desc
	if len(split) > 0 {
		f.SubFeatures = append(split, f.SubFeatures...)
	}
	return f
}
