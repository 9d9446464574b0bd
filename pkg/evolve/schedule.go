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
	"strings"

	"github.com/kraklabs/rpgraph/pkg/embedding"
	"github.com/kraklabs/rpgraph/pkg/llm"
	"github.com/kraklabs/rpgraph/pkg/rpg"
	"github.com/kraklabs/rpgraph/pkg/semantic"
)

// Default thresholds (§4.10).
const (
	DefaultDriftThreshold          = 0.3
	DefaultForceRegenerateThreshold = 0.5
)

// Options configures one Evolve run.
type Options struct {
	CommitRange               string
	DriftThreshold            float64
	ForceRegenerateThreshold  float64
	LLMClient                 llm.Client
	Embedder                  embedding.Provider
	IncludeSource             bool
}

func (o Options) normalized() Options {
	if o.DriftThreshold <= 0 {
		o.DriftThreshold = DefaultDriftThreshold
	}
	if o.ForceRegenerateThreshold <= 0 {
		o.ForceRegenerateThreshold = DefaultForceRegenerateThreshold
	}
	return o
}

// EntityError records a per-entity failure during Evolve (§7 EvolveFailed).
type EntityError struct {
	Entity string
	Phase  string // "deletion", "modification", "insertion"
	Error  string
}

// Result reports Evolve's outcome (§4.10, §8 Property 8 idempotence).
type Result struct {
	RequiresFullEncode bool
	Inserted           int
	Deleted            int
	Modified           int
	Rerouted           int
	PrunedNodes        int
	Errors             []EntityError
}

// Extract abstracts semantic re-extraction so the scheduler doesn't
// depend on a concrete pkg/ast + pkg/semantic wiring; callers inject a
// closure backed by semantic.Extractor.Extract.
type Extract func(ctx context.Context, filePath, entityType, name string) rpg.SemanticFeature

// Evolve applies diff to graph under the Delete->Modify->Insert
// scheduling contract of §4.10: the change-ratio gate runs first; then
// deletions (with orphan pruning), then modifications (drift-gated
// re-routing), then insertions (semantic routing via Router). A single
// entity's failure is recorded in Result.Errors, never aborts the batch
// (§7 EvolveFailed).
func Evolve(ctx context.Context, graph *rpg.Graph, diff DiffResult, extract Extract, opts Options) Result {
	opts = opts.normalized()

	currentCount := len(graph.GetLowLevelNodes())
	if currentCount > 0 {
		ratio := float64(diff.Total()) / float64(currentCount)
		if ratio > opts.ForceRegenerateThreshold {
			return Result{RequiresFullEncode: true}
		}
	}

	var result Result
	router := NewRouter(graph, opts.LLMClient, opts.Embedder)

	// Delete.
	for _, d := range diff.Deletions {
		parents := graph.GetInEdges(d.ID, rpg.EdgeKindFunctional)
		if !graph.RemoveNode(d.ID) {
			continue
		}
		result.Deleted++
		for _, parent := range parents {
			result.PrunedNodes += pruneOrphans(graph, parent)
		}
	}

	// Modify.
	for _, m := range diff.Modifications {
		if err := applyModification(ctx, graph, m, extract, router, opts, &result); err != nil {
			result.Errors = append(result.Errors, EntityError{Entity: m.New.ID, Phase: "modification", Error: err.Error()})
		}
	}

	// Insert.
	for _, ins := range diff.Insertions {
		if err := applyInsertion(ctx, graph, ins, extract, router, &result, true); err != nil {
			result.Errors = append(result.Errors, EntityError{Entity: ins.ID, Phase: "insertion", Error: err.Error()})
		}
	}

	return result
}

// pruneOrphans removes parent if it now has zero children, recursing
// upward (§4.10 "Delete"). Returns the count of pruned ancestors.
func pruneOrphans(graph *rpg.Graph, parent string) int {
	count := 0
	for parent != "" {
		if len(graph.GetChildren(parent)) > 0 {
			break
		}
		grandparent, hasParent := graph.GetParent(parent)
		if !graph.RemoveNode(parent) {
			break
		}
		count++
		if !hasParent {
			break
		}
		parent = grandparent
	}
	return count
}

func applyModification(ctx context.Context, graph *rpg.Graph, m Modification, extract Extract, router *Router, opts Options, result *Result) error {
	existingID, ok := resolveExisting(graph, m.Old)
	if !ok {
		return nil // nothing to modify; treat as a silent miss per §4.10's best-effort resolution
	}
	node, _ := graph.GetNode(existingID)

	newFeature := extract(ctx, m.New.FilePath, string(m.New.EntityType), m.New.QualifiedName)
	drift := computeDrift(node.Feature, newFeature, opts.Embedder, ctx)

	if drift > opts.DriftThreshold {
		parents := graph.GetInEdges(existingID, rpg.EdgeKindFunctional)
		graph.RemoveNode(existingID)
		for _, parent := range parents {
			result.PrunedNodes += pruneOrphans(graph, parent)
		}
		if err := applyInsertion(ctx, graph, m.New, extract, router, result, false); err != nil {
			return err
		}
		result.Rerouted++
		return nil
	}

	lowLevel := node.LowLevel
	if lowLevel != nil {
		lowLevel.QualifiedName = m.New.QualifiedName
	}
	if err := graph.UpdateNode(existingID, newFeature, lowLevel, nil); err != nil {
		return err
	}
	result.Modified++
	return nil
}

// resolveExisting finds an entity by exact ID or, failing that, by the
// longest-prefix match on "{filePath}:{entityType}:{entityName}" (§4.10).
func resolveExisting(graph *rpg.Graph, old EntityDelta) (string, bool) {
	if graph.HasNode(old.ID) {
		return old.ID, true
	}
	prefix := old.FilePath + ":" + string(old.EntityType) + ":" + old.QualifiedName
	best := ""
	for _, n := range graph.GetLowLevelNodes() {
		if strings.HasPrefix(n.ID, prefix) && len(n.ID) > len(best) {
			best = n.ID
		}
	}
	return best, best != ""
}

// applyInsertion materializes ins as a new low-level node routed under
// its best parent. countInsert is false when called from the reroute
// path of applyModification, so a drifted modification's reinsertion is
// tallied only as Rerouted, never double-counted into Inserted too.
func applyInsertion(ctx context.Context, graph *rpg.Graph, ins EntityDelta, extract Extract, router *Router, result *Result, countInsert bool) error {
	feature := extract(ctx, ins.FilePath, string(ins.EntityType), ins.QualifiedName)
	parent, ok := router.FindBestParent(ctx, feature)

	if err := graph.AddLowLevelNode(rpg.Node{
		ID:      ins.ID,
		Feature: feature,
		LowLevel: &rpg.LowLevelMetadata{
			EntityType:    rpg.EntityType(ins.EntityType),
			Path:          ins.FilePath,
			QualifiedName: ins.QualifiedName,
		},
	}); err != nil {
		return err
	}
	if ok {
		if err := graph.AddFunctionalEdge(parent, ins.ID); err != nil {
			return err
		}
	}
	if countInsert {
		result.Inserted++
	}
	return nil
}

// computeDrift implements §4.10's Modify drift formula: cosine distance
// over embeddings when an embedder is configured, else Jaccard distance
// over keywords, else Jaccard distance over lowercased description
// tokens.
func computeDrift(old, new rpg.SemanticFeature, embedder embedding.Provider, ctx context.Context) float64 {
	if embedder != nil {
		oldVec, oerr := embedder.Embed(ctx, old.Description)
		newVec, nerr := embedder.Embed(ctx, new.Description)
		if oerr == nil && nerr == nil {
			return embedding.CosineDistance(oldVec, newVec)
		}
	}
	if len(old.Keywords) > 0 || len(new.Keywords) > 0 {
		return jaccardDistance(old.Keywords, new.Keywords)
	}
	return jaccardDistance(strings.Fields(old.Description), strings.Fields(new.Description))
}

func jaccardDistance(a, b []string) float64 {
	setA := toSet(a)
	setB := toSet(b)
	if len(setA) == 0 && len(setB) == 0 {
		return 0
	}
	intersect, union := 0, len(setA)
	for k := range setB {
		if setA[k] {
			intersect++
		} else {
			union++
		}
	}
	if union == 0 {
		return 0
	}
	return 1 - float64(intersect)/float64(union)
}

func toSet(items []string) map[string]bool {
	m := make(map[string]bool, len(items))
	for _, i := range items {
		m[strings.ToLower(i)] = true
	}
	return m
}

var _ = semantic.Humanize // keep pkg/semantic import live for callers wiring Extract from it
