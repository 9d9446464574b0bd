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

// Package orchestrator implements the Encoder Orchestrator (C11): the
// three-phase pipeline (Semantic Lifting, Reorganization, Grounding &
// Wiring) that drives every other package into one RPG build (§4.11).
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kraklabs/rpgraph/internal/errors"
	"github.com/kraklabs/rpgraph/internal/metrics"
	"github.com/kraklabs/rpgraph/internal/obslog"
	"github.com/kraklabs/rpgraph/internal/warnings"
	"github.com/kraklabs/rpgraph/pkg/ast"
	"github.com/kraklabs/rpgraph/pkg/callgraph"
	"github.com/kraklabs/rpgraph/pkg/discover"
	"github.com/kraklabs/rpgraph/pkg/embedding"
	"github.com/kraklabs/rpgraph/pkg/ground"
	"github.com/kraklabs/rpgraph/pkg/hierarchy"
	"github.com/kraklabs/rpgraph/pkg/inject"
	"github.com/kraklabs/rpgraph/pkg/llm"
	"github.com/kraklabs/rpgraph/pkg/rpg"
	"github.com/kraklabs/rpgraph/pkg/semantic"
	"github.com/kraklabs/rpgraph/pkg/symbols"
)

// Options configures one encoder Run (§4.11).
type Options struct {
	RepoPath string
	Config   rpg.Config

	Discover discover.Options

	LLMClient llm.Client
	Embedder  embedding.Provider

	// RequireLLM mirrors §9 OQ3: when true, a nil LLMClient is Fatal
	// instead of silently skipping reorganization/cross-area flow.
	RequireLLM bool

	IncludeSource  bool
	DiscoveryRuns  int
	CrossAreaFlow  bool

	Logger *slog.Logger
}

// Result is the outcome of one encoder Run (§4.11).
type Result struct {
	Graph             *rpg.Graph
	FilesProcessed    int
	EntitiesExtracted int
	Duration          time.Duration
	Warnings          []warnings.Warning
}

type fileRecord struct {
	path     string
	relPath  string
	source   []byte
	lang     ast.Language
	parsed   ast.ParseResult
	fileID   string
}

// Run drives the full pipeline: Phase 1 Semantic Lifting, Phase 2
// Reorganization, Phase 3 Grounding & Wiring (§4.11). A phase-internal
// recoverable failure is converted into a warning and the phase
// continues with its partial result; only a misconfiguration named by
// §9 OQ3 (LLM required but absent) is fatal.
func Run(ctx context.Context, opts Options) (*Result, error) {
	start := time.Now()
	logger := obslog.Or(opts.Logger)
	collector := warnings.NewCollector()

	if opts.RequireLLM && opts.LLMClient == nil {
		return nil, errors.New(errors.KindFatal, "LLM required but no client configured", "RequireLLM set with a nil LLMClient", "configure Options.LLMClient or unset RequireLLM", nil)
	}

	graph := rpg.New(opts.Config)
	extractor := semantic.NewExtractor(opts.LLMClient, func(message, entity string) {
		collector.Add("semantic_lifting", errors.KindExtractionFailed, message, entity)
	})

	// --- Phase 1: Semantic Lifting ---
	phase1Start := time.Now()
	records, entitiesExtracted := liftSemantics(ctx, graph, opts, extractor, collector, logger)
	metrics.Registry().PhaseDuration.WithLabelValues("semantic_lifting").Observe(time.Since(phase1Start).Seconds())

	// --- Phase 2: Reorganization ---
	phase2Start := time.Now()
	if opts.LLMClient != nil {
		reorganize(ctx, graph, records, opts, collector, logger)
	} else {
		logger.Info("orchestrator.phase2.skip", "reason", "no LLM client configured")
	}
	metrics.Registry().PhaseDuration.WithLabelValues("reorganization").Observe(time.Since(phase2Start).Seconds())

	// --- Phase 3: Grounding & Wiring ---
	phase3Start := time.Now()
	groundAndWire(ctx, graph, records, opts, collector, logger)
	metrics.Registry().PhaseDuration.WithLabelValues("grounding_wiring").Observe(time.Since(phase3Start).Seconds())

	result := &Result{
		Graph:             graph,
		FilesProcessed:    len(records),
		EntitiesExtracted: entitiesExtracted,
		Duration:          time.Since(start),
		Warnings:          collector.Drain(),
	}

	logger.Info("orchestrator.complete",
		"files", result.FilesProcessed,
		"entities", result.EntitiesExtracted,
		"warnings", len(result.Warnings),
		"duration_ms", result.Duration.Milliseconds(),
	)
	return result, nil
}

// liftSemantics implements Phase 1 (§4.11): discover files, parse each
// with the AST Extractor, extract per-entity semantic features, roll
// them up into file-level features, and add file + entity low-level
// nodes with functional containment edges.
func liftSemantics(ctx context.Context, graph *rpg.Graph, opts Options, extractor *semantic.Extractor, collector *warnings.Collector, logger *slog.Logger) ([]fileRecord, int) {
	discovered := discover.Discover(ctx, opts.RepoPath, opts.Discover)
	for _, w := range discovered.Warnings {
		collector.Add("semantic_lifting", errors.KindDiscoveryFailed, w, "")
	}
	metrics.Registry().FilesDiscovered.Add(float64(len(discovered.Files)))

	var records []fileRecord
	entitiesExtracted := 0

	for _, path := range discovered.Files {
		rel, err := filepath.Rel(opts.RepoPath, path)
		if err != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)

		lang, ok := ast.DetectLanguage(path)
		if !ok {
			continue
		}
		parsed, err := ast.ParseFile(path)
		if err != nil {
			collector.Add("semantic_lifting", errors.KindExtractionFailed, "parse failed: "+err.Error(), rel)
			continue
		}
		for _, perr := range parsed.Errors {
			collector.Add("semantic_lifting", errors.KindExtractionFailed, perr.Error(), rel)
		}

		fileID := rpg.LowLevelNodeID(rel, rpg.EntityFile, "", 0)
		var childFeatures []rpg.SemanticFeature

		for _, entity := range parsed.Entities {
			entityType := rpg.EntityType(entity.Type)
			name := entity.Name
			if entity.Parent != "" {
				name = entity.Parent + "." + entity.Name
			}
			nodeID := rpg.LowLevelNodeID(rel, entityType, name, entity.StartLine)

			feature := extractor.Extract(ctx, semantic.EntityInput{
				Type: string(entity.Type), Name: entity.Name, FilePath: rel,
				Parent: entity.Parent, SourceCode: entity.SourceCode, Documentation: entity.Documentation,
			})
			meta := &rpg.LowLevelMetadata{
				EntityType: entityType, Path: rel, StartLine: entity.StartLine,
				EndLine: entity.EndLine, QualifiedName: name,
			}
			node := rpg.Node{ID: nodeID, Feature: feature, LowLevel: meta}
			if opts.IncludeSource {
				node.SourceCode = entity.SourceCode
			}
			if err := graph.AddLowLevelNode(node); err != nil {
				collector.Add("semantic_lifting", errors.KindExtractionFailed, err.Error(), nodeID)
				continue
			}
			childFeatures = append(childFeatures, feature)
			entitiesExtracted++
		}

		fileFeature := extractor.AggregateFileFeatures(ctx, childFeatures, filepath.Base(rel), rel)
		if err := graph.AddLowLevelNode(rpg.Node{
			ID: fileID, Feature: fileFeature,
			LowLevel: &rpg.LowLevelMetadata{EntityType: rpg.EntityFile, Path: rel},
		}); err != nil {
			collector.Add("semantic_lifting", errors.KindExtractionFailed, err.Error(), fileID)
			continue
		}
		for _, entity := range parsed.Entities {
			name := entity.Name
			if entity.Parent != "" {
				name = entity.Parent + "." + entity.Name
			}
			nodeID := rpg.LowLevelNodeID(rel, rpg.EntityType(entity.Type), name, entity.StartLine)
			if graph.HasNode(nodeID) {
				_ = graph.AddFunctionalEdge(fileID, nodeID)
			}
		}

		src, _ := os.ReadFile(path)
		records = append(records, fileRecord{path: path, relPath: rel, source: src, lang: lang, parsed: parsed, fileID: fileID})
	}

	dedupeFileDescriptions(graph, records)

	metrics.Registry().EntitiesExtracted.Add(float64(entitiesExtracted))
	logger.Info("orchestrator.phase1.complete", "files", len(records), "entities", entitiesExtracted)
	return records, entitiesExtracted
}

// dedupeFileDescriptions enforces §8's "no two LowLevelNode files share
// feature.description" once every file has been aggregated: a
// description seen before gets "_k" appended, k counting from 2 in
// discovery order.
func dedupeFileDescriptions(graph *rpg.Graph, records []fileRecord) {
	counts := make(map[string]int, len(records))
	for _, r := range records {
		node, ok := graph.GetNode(r.fileID)
		if !ok {
			continue
		}
		desc := node.Feature.Description
		counts[desc]++
		if counts[desc] == 1 {
			continue
		}
		feature := node.Feature
		feature.Description = fmt.Sprintf("%s_%d", desc, counts[desc])
		_ = graph.UpdateNode(r.fileID, feature, nil, nil)
	}
}

// reorganize implements Phase 2 (§4.11, §4.7): group files by top-level
// directory, run multi-ballot domain discovery, iteratively assign
// groups to Area/category/subcategory paths, and materialize the
// resulting hierarchy. Silently skipped when no LLM is configured,
// per §9 OQ3.
func reorganize(ctx context.Context, graph *rpg.Graph, records []fileRecord, opts Options, collector *warnings.Collector, logger *slog.Logger) {
	var groupFiles []hierarchy.GroupFile
	for _, r := range records {
		node, ok := graph.GetNode(r.fileID)
		if !ok {
			continue
		}
		groupFiles = append(groupFiles, hierarchy.GroupFile{
			ID: r.fileID, Path: r.relPath, Description: node.Feature.Description, Keywords: node.Feature.Keywords,
		})
	}
	if len(groupFiles) == 0 {
		return
	}

	groups := hierarchy.BuildGroups(groupFiles)
	areas, err := hierarchy.DiscoverDomains(ctx, opts.LLMClient, groups, opts.DiscoveryRuns)
	if err != nil {
		collector.Add("reorganization", errors.KindDiscoveryFailed, err.Error(), "")
		return
	}
	if len(areas) == 0 {
		collector.Add("reorganization", errors.KindDiscoveryFailed, "domain discovery returned no areas", "")
		return
	}

	assignments := hierarchy.AssignGroups(ctx, opts.LLMClient, areas, groups)

	groupFileIDs := make(map[string][]string, len(groups))
	for _, g := range groups {
		groupFileIDs[g.Label] = g.FileIDs
	}
	if err := hierarchy.BuildGraph(graph, assignments, groupFileIDs); err != nil {
		collector.Add("reorganization", errors.KindDiscoveryFailed, err.Error(), "")
		return
	}
	logger.Info("orchestrator.phase2.complete", "areas", len(areas), "groups", len(groups), "assignments", len(assignments))
}

// groundAndWire implements Phase 3 (§4.11, §4.8, §4.9): LCA-ground the
// reorganization hierarchy, then build the symbol index and inject
// dependency and data-flow edges for every call/inherit/import relation.
func groundAndWire(ctx context.Context, graph *rpg.Graph, records []fileRecord, opts Options, collector *warnings.Collector, logger *slog.Logger) {
	ground.Ground(graph)

	resolver := symbols.New()
	files := make(inject.FileNodes, len(records))
	var inputs []symbols.FileInput
	var allCalls []callgraph.CallSite
	var allInherits []callgraph.InheritanceRelation
	var flowEntities []inject.IntraModuleEntity

	for _, r := range records {
		files[r.relPath] = r.fileID
		inputs = append(inputs, symbols.FileInput{Path: r.relPath, Entities: r.parsed.Entities, Imports: r.parsed.Imports})

		calls, err := callgraph.Extract(r.source, r.lang, r.relPath)
		if err != nil {
			collector.Add("grounding_wiring", errors.KindInjectionFailed, err.Error(), r.relPath)
		} else {
			allCalls = append(allCalls, calls...)
		}

		inherits, err := callgraph.ExtractInheritance(r.source, r.lang, r.relPath)
		if err != nil {
			collector.Add("grounding_wiring", errors.KindInjectionFailed, err.Error(), r.relPath)
		} else {
			allInherits = append(allInherits, inherits...)
		}

		for _, e := range r.parsed.Entities {
			name := e.Name
			if e.Parent != "" {
				name = e.Parent + "." + e.Name
			}
			nodeID := rpg.LowLevelNodeID(r.relPath, rpg.EntityType(e.Type), name, e.StartLine)
			flowEntities = append(flowEntities, inject.IntraModuleEntity{
				NodeID: nodeID, Parameters: paramNames(e.Parameters), Body: e.SourceCode,
			})
		}
	}

	resolver.BuildIndex(inputs)
	inject.InjectImports(graph, resolver, files)
	inject.InjectCalls(graph, resolver, files, allCalls)
	inject.InjectInheritance(graph, resolver, files, allInherits)
	inject.InjectIntraModuleFlow(graph, flowEntities)
	inject.InjectInterModuleFlow(graph, resolver, files)

	if opts.CrossAreaFlow && opts.LLMClient != nil {
		var areas []string
		for _, n := range graph.GetHighLevelNodes() {
			if _, hasParent := graph.GetParent(n.ID); !hasParent {
				areas = append(areas, strings.TrimPrefix(n.ID, "domain:"))
			}
		}
		if err := inject.InjectCrossAreaFlow(ctx, opts.LLMClient, graph, areas); err != nil {
			collector.Add("grounding_wiring", errors.KindDataFlowFailed, err.Error(), "")
		}
	}

	stats := graph.GetStats()
	logger.Info("orchestrator.phase3.complete",
		"highLevelNodes", stats.HighLevelNodes, "lowLevelNodes", stats.LowLevelNodes,
		"functionalEdges", stats.FunctionalEdges, "dependencyEdges", stats.DependencyEdges,
		"dataFlowEdges", stats.DataFlowEdges,
	)
}

// paramNames splits a raw parameter-list string into bare identifier
// names on a best-effort basis: strip type annotations after the first
// whitespace/colon in each comma-separated segment.
func paramNames(params string) []string {
	if params == "" {
		return nil
	}
	var names []string
	depth := 0
	var current strings.Builder
	flush := func() {
		seg := strings.TrimSpace(current.String())
		current.Reset()
		if seg == "" {
			return
		}
		if name := firstToken(seg); name != "" {
			names = append(names, name)
		}
	}
	for _, r := range params {
		switch r {
		case '(', '[', '<', '{':
			depth++
		case ')', ']', '>', '}':
			depth--
		case ',':
			if depth == 0 {
				flush()
				continue
			}
		}
		current.WriteRune(r)
	}
	flush()
	return names
}

// firstToken returns the leading identifier of a parameter segment,
// stripping a leading "*"/"&" and any following type annotation split
// by whitespace or ":".
func firstToken(seg string) string {
	seg = strings.TrimSpace(seg)
	seg = strings.TrimLeft(seg, "*&")
	end := strings.IndexAny(seg, " \t:")
	if end < 0 {
		return seg
	}
	return seg[:end]
}
