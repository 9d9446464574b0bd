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

package semantic

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/kraklabs/rpgraph/pkg/rpg"
)

// prefixVerbs maps common name prefixes to domain verbs (§4.5).
var prefixVerbs = []struct {
	prefix string
	verb   string
}{
	{"get", "retrieve"},
	{"fetch", "retrieve"},
	{"is", "check if"},
	{"has", "check if"},
	{"can", "check if"},
	{"parse", "parse"},
	{"handle", "dispatch"},
	{"set", "assign"},
	{"new", "construct"},
	{"create", "construct"},
	{"build", "construct"},
	{"delete", "remove"},
	{"remove", "remove"},
	{"validate", "validate"},
	{"update", "update"},
	{"load", "load"},
	{"save", "persist"},
	{"write", "write"},
	{"read", "read"},
	{"init", "initialize"},
	{"find", "locate"},
	{"compute", "compute"},
	{"calc", "compute"},
}

var wordBoundary = regexp.MustCompile(`[A-Z]+[a-z]*|[a-z0-9]+`)

// Humanize converts a camelCase/PascalCase/snake_case identifier into a
// lowercase, space-separated phrase.
func Humanize(name string) string {
	name = strings.ReplaceAll(name, "_", " ")
	name = strings.ReplaceAll(name, "-", " ")
	tokens := wordBoundary.FindAllString(name, -1)
	for i, t := range tokens {
		tokens[i] = strings.ToLower(t)
	}
	return strings.Join(tokens, " ")
}

// EntityInput is the normalized unit fed to extraction (§4.5).
type EntityInput struct {
	Type          string
	Name          string
	FilePath      string
	Parent        string
	SourceCode    string
	Documentation string
}

// Heuristic deterministically derives a SemanticFeature without an LLM
// (§4.5): humanize the name, map a known prefix to a verb, default to
// "provide {name} operation", then keyword the name/type/parent/path.
func Heuristic(in EntityInput) rpg.SemanticFeature {
	humanized := Humanize(in.Name)
	lowerName := strings.ToLower(in.Name)

	description := ""
	for _, pv := range prefixVerbs {
		if strings.HasPrefix(lowerName, pv.prefix) {
			rest := strings.TrimSpace(Humanize(strings.TrimPrefix(in.Name, pv.prefix)))
			if rest == "" {
				rest = humanized
			}
			description = strings.TrimSpace(pv.verb + " " + rest)
			break
		}
	}
	if description == "" {
		description = "provide " + humanized + " operation"
	}

	desc, subFeatures := ValidateFeatureName(description)
	return rpg.SemanticFeature{
		Description: desc,
		SubFeatures: subFeatures,
		Keywords:    heuristicKeywords(in),
	}
}

func heuristicKeywords(in EntityInput) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(tok string) {
		tok = strings.ToLower(strings.TrimSpace(tok))
		if tok == "" || seen[tok] {
			return
		}
		seen[tok] = true
		out = append(out, tok)
	}
	for _, tok := range strings.Fields(Humanize(in.Name)) {
		add(tok)
	}
	add(in.Type)
	if in.Parent != "" {
		add(in.Parent)
	}
	for _, seg := range strings.Split(filepath.ToSlash(in.FilePath), "/") {
		seg = strings.TrimSuffix(seg, filepath.Ext(seg))
		if len(seg) > 2 {
			add(seg)
		}
	}
	return out
}
