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

// Package inject implements the Dependency/DataFlow Injector (C9):
// file-to-file edges from resolved calls/inherits/imports, plus
// intra-module and inter-module data flow (§4.9).
package inject

import (
	"github.com/kraklabs/rpgraph/pkg/callgraph"
	"github.com/kraklabs/rpgraph/pkg/rpg"
	"github.com/kraklabs/rpgraph/pkg/symbols"
)

// FileNodes maps a repo-relative file path to its file-node ID, needed
// to turn a resolved file path into a graph node ID.
type FileNodes map[string]string

// InjectImports adds file->importedFile import edges for every file's
// resolved imports (§4.9). Self-loops are skipped.
func InjectImports(graph *rpg.Graph, resolver *symbols.Resolver, files FileNodes) {
	for path, nodeID := range files {
		for name, target := range resolver.FileImports(path) {
			if target == "" || target == path {
				continue
			}
			targetID, ok := files[target]
			if !ok {
				continue
			}
			graph.AddDependencyEdge(rpg.DependencyEdge{
				Source: nodeID, Target: targetID, Kind: rpg.DependencyImport, Symbol: name,
			})
		}
	}
}

// InjectCalls resolves every call site to a defining file and adds a
// call dependency edge, deduplicated against import edges by the
// graph's own (source,target) dedup rule (§4.9, §9 OQ1).
func InjectCalls(graph *rpg.Graph, resolver *symbols.Resolver, files FileNodes, calls []callgraph.CallSite) {
	for _, call := range calls {
		resolved, ok := resolver.ResolveCall(call)
		if !ok {
			continue // unresolved calls are silently dropped (§4.3)
		}
		sourceID, sOK := files[call.CallerFile]
		targetID, tOK := files[resolved.File]
		if !sOK || !tOK || sourceID == targetID {
			continue
		}
		graph.AddDependencyEdge(rpg.DependencyEdge{
			Source: sourceID, Target: targetID, Kind: rpg.DependencyCall,
			TargetSymbol: call.CalleeSymbol, Line: call.Line,
		})
	}
}

// InjectInheritance resolves every inheritance/implementation relation
// to a defining file and adds the corresponding dependency edge (§4.9).
func InjectInheritance(graph *rpg.Graph, resolver *symbols.Resolver, files FileNodes, rels []callgraph.InheritanceRelation) {
	for _, rel := range rels {
		target, ok := resolver.ResolveInheritance(rel)
		if !ok {
			continue
		}
		sourceID, sOK := files[rel.ChildFile]
		targetID, tOK := files[target]
		if !sOK || !tOK || sourceID == targetID {
			continue
		}
		kind := rpg.DependencyInherit
		if rel.Kind == callgraph.KindImplement {
			kind = rpg.DependencyImplement
		}
		graph.AddDependencyEdge(rpg.DependencyEdge{
			Source: sourceID, Target: targetID, Kind: kind, TargetSymbol: rel.ParentClass,
		})
	}
}
