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

package evolve

import (
	"context"
	"log/slog"
	"sort"

	"github.com/kraklabs/rpgraph/pkg/embedding"
	"github.com/kraklabs/rpgraph/pkg/llm"
	"github.com/kraklabs/rpgraph/pkg/rpg"
)

const routingSystemPrompt = `You are a code architecture classifier. Respond with {selectedId: <id|null>, confidence: 0-1}. Select the most semantically compatible category; null if none fit.`

// Router implements FindBestParent (§4.10.1): given a new entity's
// feature, descends the functional-parentless high-level roots picking
// the best child at each level until a childless node is reached.
type Router struct {
	graph     *rpg.Graph
	llmClient llm.Client
	embedder  embedding.Provider

	// LLMAttempts counts every LLM call the router makes, including
	// failed ones, for cost accounting (§4.10.1 "counts all LLM
	// attempts...for cost accounting").
	LLMAttempts int

	warnedNoStrategy bool
}

// NewRouter builds a Router over graph. llmClient and embedder may both
// be nil, in which case selectBestChild falls back to the first
// candidate deterministically.
func NewRouter(graph *rpg.Graph, llmClient llm.Client, embedder embedding.Provider) *Router {
	return &Router{graph: graph, llmClient: llmClient, embedder: embedder}
}

// FindBestParent returns the high-level node ID the entity should be
// filed under.
func (r *Router) FindBestParent(ctx context.Context, entityFeature rpg.SemanticFeature) (string, bool) {
	roots := r.roots()
	if len(roots) == 0 {
		return "", false
	}
	start := r.selectBestChild(ctx, entityFeature, roots)
	return r.descend(ctx, entityFeature, start), true
}

func (r *Router) roots() []string {
	var roots []string
	for _, n := range r.graph.GetHighLevelNodes() {
		if _, hasParent := r.graph.GetParent(n.ID); !hasParent {
			roots = append(roots, n.ID)
		}
	}
	sort.Strings(roots)
	return roots
}

// descend recurses: collect node's high-level children; if none, node
// is the destination; else select the best child and recurse.
func (r *Router) descend(ctx context.Context, feature rpg.SemanticFeature, node string) string {
	children := r.highLevelChildren(node)
	if len(children) == 0 {
		return node
	}
	best := r.selectBestChild(ctx, feature, children)
	return r.descend(ctx, feature, best)
}

func (r *Router) highLevelChildren(node string) []string {
	var out []string
	for _, c := range r.graph.GetChildren(node) {
		n, ok := r.graph.GetNode(c)
		if ok && n.IsHighLevel() {
			out = append(out, c)
		}
	}
	sort.Strings(out)
	return out
}

// selectBestChild implements §4.10.1's three-tier strategy: LLM first
// (validated, falls through on failure), then embedding cosine
// similarity, then a deterministic first-candidate pick with a
// once-only warning.
func (r *Router) selectBestChild(ctx context.Context, feature rpg.SemanticFeature, candidates []string) string {
	if r.llmClient != nil {
		r.LLMAttempts++
		if selected, ok := r.tryLLMSelect(ctx, feature, candidates); ok {
			return selected
		}
	}
	if r.embedder != nil {
		if selected, ok := r.tryEmbeddingSelect(ctx, feature, candidates); ok {
			return selected
		}
	}
	if !r.warnedNoStrategy {
		slog.Warn("evolve: routing fell back to the first candidate", "candidate", candidates[0])
		r.warnedNoStrategy = true
	}
	return candidates[0]
}

func (r *Router) tryLLMSelect(ctx context.Context, feature rpg.SemanticFeature, candidates []string) (string, bool) {
	prompt := routingPrompt(feature, candidates, r.graph)
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"selectedId": map[string]any{"type": []string{"string", "null"}},
			"confidence": map[string]any{"type": "number"},
		},
	}
	result, _, err := r.llmClient.CompleteJSON(ctx, prompt, routingSystemPrompt, schema)
	if err != nil || result == nil {
		return "", false
	}
	selected, ok := result["selectedId"].(string)
	if !ok || selected == "" {
		return "", false
	}
	for _, c := range candidates {
		if c == selected {
			return selected, true
		}
	}
	return "", false
}

func (r *Router) tryEmbeddingSelect(ctx context.Context, feature rpg.SemanticFeature, candidates []string) (string, bool) {
	target, err := r.embedder.Embed(ctx, feature.Description)
	if err != nil {
		return "", false
	}
	best := ""
	bestScore := -2.0
	for _, c := range candidates {
		node, ok := r.graph.GetNode(c)
		if !ok {
			continue
		}
		vec, err := r.embedder.Embed(ctx, node.Feature.Description)
		if err != nil {
			continue
		}
		score := embedding.CosineSimilarity(target, vec)
		if score > bestScore {
			bestScore, best = score, c
		}
	}
	return best, best != ""
}

func routingPrompt(feature rpg.SemanticFeature, candidates []string, graph *rpg.Graph) string {
	out := "New entity: " + feature.Description + "\n\nCandidates:\n"
	for _, c := range candidates {
		if node, ok := graph.GetNode(c); ok {
			out += "- " + c + ": " + node.Feature.Description + "\n"
		}
	}
	return out
}
