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
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/kraklabs/rpgraph/pkg/rpg"
)

// aggregateSystemPrompt asks the LLM for a single cohesive file-level
// description from its children's descriptions (§4.5).
const aggregateSystemPrompt = `You are a senior software analyst. Given a list of feature descriptions for the entities defined in one file, produce a single cohesive description of the file's overall purpose. Respond as {description, subFeatures[], keywords[]}.`

// AggregateFileFeatures rolls up a file's child-entity features into a
// single file-level SemanticFeature (§4.5).
//
//   - No children: "define {humanized fileName} module".
//   - LLM configured: prompt with the child descriptions; on failure,
//     fall through to the heuristic below.
//   - Heuristic: most frequent leading verb (ties by first-seen order),
//     suffixed with the humanized file name and "functionality";
//     subFeatures = all child descriptions (if more than one); keywords
//     = union of child keywords plus the file name.
func (x *Extractor) AggregateFileFeatures(ctx context.Context, children []rpg.SemanticFeature, fileName, filePath string) rpg.SemanticFeature {
	base := strings.TrimSuffix(fileName, filepath.Ext(fileName))
	humanized := Humanize(base)

	if len(children) == 0 {
		return rpg.SemanticFeature{
			Description: "define " + humanized + " module",
			Keywords:    []string{strings.ToLower(base)},
		}
	}

	if x.client != nil {
		if feature, ok := x.tryAggregateLLM(ctx, children); ok {
			return feature
		}
		if x.warn != nil {
			x.warn("file aggregation: LLM produced no valid JSON, using heuristic", filePath)
		}
	}
	return heuristicAggregate(children, humanized, base)
}

func (x *Extractor) tryAggregateLLM(ctx context.Context, children []rpg.SemanticFeature) (rpg.SemanticFeature, bool) {
	var b strings.Builder
	for _, c := range children {
		fmt.Fprintf(&b, "- %s\n", c.Description)
	}
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"description": map[string]any{"type": "string"},
			"subFeatures": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"keywords":    map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		},
		"required": []string{"description"},
	}
	result, _, err := x.client.CompleteJSON(ctx, b.String(), aggregateSystemPrompt, schema)
	if err != nil || result == nil {
		return rpg.SemanticFeature{}, false
	}
	desc, ok := result["description"].(string)
	if !ok || desc == "" {
		return rpg.SemanticFeature{}, false
	}
	feature := rpg.SemanticFeature{
		Description: desc,
		SubFeatures: stringSlice(result["subFeatures"]),
		Keywords:    stringSlice(result["keywords"]),
	}
	return ValidateFeature(feature), true
}

func heuristicAggregate(children []rpg.SemanticFeature, humanized, baseName string) rpg.SemanticFeature {
	verbCounts := make(map[string]int)
	var firstSeen []string
	for _, c := range children {
		words := strings.Fields(c.Description)
		if len(words) == 0 {
			continue
		}
		verb := words[0]
		if verbCounts[verb] == 0 {
			firstSeen = append(firstSeen, verb)
		}
		verbCounts[verb]++
	}
	bestVerb := ""
	bestCount := 0
	for _, v := range firstSeen {
		if verbCounts[v] > bestCount {
			bestVerb, bestCount = v, verbCounts[v]
		}
	}
	if bestVerb == "" {
		bestVerb = "provide"
	}

	description := strings.TrimSpace(fmt.Sprintf("%s %s functionality", bestVerb, humanized))
	desc, _ := ValidateFeatureName(description)

	var subFeatures []string
	if len(children) > 1 {
		for _, c := range children {
			subFeatures = append(subFeatures, c.Description)
		}
	}

	seen := map[string]bool{strings.ToLower(baseName): true}
	keywords := []string{strings.ToLower(baseName)}
	for _, c := range children {
		for _, kw := range c.Keywords {
			kw = strings.ToLower(kw)
			if !seen[kw] {
				seen[kw] = true
				keywords = append(keywords, kw)
			}
		}
	}

	return rpg.SemanticFeature{Description: desc, SubFeatures: subFeatures, Keywords: keywords}
}
