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

	"github.com/kraklabs/rpgraph/pkg/llm"
	"github.com/kraklabs/rpgraph/pkg/rpg"
)

// SystemPrompt is the contract-level extraction prompt of §6: verb+object,
// lowercase, one responsibility, 3-8 words, no vague verbs, no
// implementation vocabulary, no chained actions.
const SystemPrompt = `You are a senior software analyst. Extract semantic features — purpose, not implementation. Rules: verb+object; lowercase; one responsibility per feature; 3-8 words; avoid vague verbs (handle/process/deal with); avoid libraries/control flow terms; prefer domain semantics; no chained actions. Respond as {description, subFeatures[], keywords[]}.`

// maxParseIterations bounds per-entity LLM retries on invalid JSON
// (§4.5, default 2).
const maxParseIterations = 2

// Extractor converts EntityInput to a validated SemanticFeature, via an
// LLM when configured and falling back to the deterministic heuristic
// otherwise or on repeated failure (§4.5).
type Extractor struct {
	client   llm.Client // nil disables the LLM path entirely
	warn     func(message, entity string)
}

// NewExtractor returns an Extractor. client may be nil (heuristic-only).
// warn, if non-nil, is called once per LLM fallback with a human-readable
// message and the entity's identity, matching §7's "warning appended,
// fall through to heuristic" recovery for ExtractionFailed.
func NewExtractor(client llm.Client, warn func(message, entity string)) *Extractor {
	return &Extractor{client: client, warn: warn}
}

// Extract produces a SemanticFeature for a single entity (§4.5 "per-entity
// extraction"). If no LLM is configured, or source is empty, or the LLM
// path fails after retrying, it falls back to the heuristic.
func (x *Extractor) Extract(ctx context.Context, in EntityInput) rpg.SemanticFeature {
	if x.client == nil || in.SourceCode == "" {
		return Heuristic(in)
	}

	for attempt := 0; attempt <= maxParseIterations; attempt++ {
		feature, ok := x.tryLLM(ctx, in)
		if ok {
			return feature
		}
	}
	if x.warn != nil {
		x.warn("semantic extraction: LLM produced no valid JSON after retries, using heuristic", entityKey(in))
	}
	return Heuristic(in)
}

func (x *Extractor) tryLLM(ctx context.Context, in EntityInput) (rpg.SemanticFeature, bool) {
	user := entityPrompt(in)
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"description": map[string]any{"type": "string"},
			"subFeatures": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"keywords":    map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		},
		"required": []string{"description"},
	}
	result, _, err := x.client.CompleteJSON(ctx, user, SystemPrompt, schema)
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

func stringSlice(v any) []string {
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

func entityPrompt(in EntityInput) string {
	parent := ""
	if in.Parent != "" {
		parent = fmt.Sprintf("\nEnclosing class: %s", in.Parent)
	}
	doc := ""
	if in.Documentation != "" {
		doc = fmt.Sprintf("\nDocumentation:\n%s", in.Documentation)
	}
	return fmt.Sprintf("Entity: %s %q in %s%s%s\n\nSource:\n%s",
		in.Type, in.Name, in.FilePath, parent, doc, in.SourceCode)
}

func entityKey(in EntityInput) string {
	return fmt.Sprintf("%s:%s:%s", in.FilePath, in.Type, in.Name)
}
