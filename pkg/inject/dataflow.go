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

package inject

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/kraklabs/rpgraph/pkg/llm"
	"github.com/kraklabs/rpgraph/pkg/rpg"
	"github.com/kraklabs/rpgraph/pkg/symbols"
)

var identifierRe = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)

// IntraModuleEntity is one function/method body fed into intra-module
// flow detection.
type IntraModuleEntity struct {
	NodeID     string
	Parameters []string // declared parameter names
	Locals     []string // declared local variable names
	Body       string    // raw source text of the entity
}

// InjectIntraModuleFlow emits self-loop data-flow edges: "parameter"
// when a parameter name reappears as an argument token elsewhere in the
// body, "variable_chain" when a local variable name is referenced more
// than once (§4.9).
func InjectIntraModuleFlow(graph *rpg.Graph, entities []IntraModuleEntity) {
	for _, e := range entities {
		occurrences := tokenOccurrences(e.Body)
		for _, p := range e.Parameters {
			if occurrences[p] > 1 {
				graph.AddDataFlowEdge(rpg.DataFlowEdge{From: e.NodeID, To: e.NodeID, DataID: p, DataType: rpg.DataFlowParameter})
			}
		}
		for _, v := range e.Locals {
			if occurrences[v] > 1 {
				graph.AddDataFlowEdge(rpg.DataFlowEdge{From: e.NodeID, To: e.NodeID, DataID: v, DataType: rpg.DataFlowVariableChain})
			}
		}
	}
}

func tokenOccurrences(body string) map[string]int {
	counts := make(map[string]int)
	for _, tok := range identifierRe.FindAllString(body, -1) {
		counts[tok]++
	}
	return counts
}

// InjectInterModuleFlow emits an "import" data-flow edge from the
// imported file's node to the importer's node for every resolved
// relative import (§4.9).
func InjectInterModuleFlow(graph *rpg.Graph, resolver *symbols.Resolver, files FileNodes) {
	for path, nodeID := range files {
		for name, target := range resolver.FileImports(path) {
			if target == "" || target == path {
				continue
			}
			targetID, ok := files[target]
			if !ok {
				continue
			}
			graph.AddDataFlowEdge(rpg.DataFlowEdge{From: targetID, To: nodeID, DataID: name, DataType: rpg.DataFlowImport})
		}
	}
}

const crossAreaSystemPrompt = `You are a code architecture analyst. Given functional areas and their existing dependency edges, infer cross-area data flows. Respond as {"flows": [{"source": "Area", "target": "Area", "data_id": "...", "data_type": "..."}]}.`

// CrossAreaFlow is one inferred flow between two discovered area names.
type CrossAreaFlow struct {
	Source   string
	Target   string
	DataID   string
	DataType string
}

// InjectCrossAreaFlow summarizes each functional area (after
// reorganization) plus the existing dependency edges, asks the LLM for
// cross-area flows, and adds them as DataFlow edges between domain
// nodes. Pairs whose endpoints aren't discovered areas, or where
// source==target, are rejected (§4.9, optional LLM-mediated step).
func InjectCrossAreaFlow(ctx context.Context, client llm.Client, graph *rpg.Graph, areas []string) error {
	if client == nil {
		return nil
	}
	areaSet := make(map[string]bool, len(areas))
	for _, a := range areas {
		areaSet[a] = true
	}

	prompt := crossAreaPrompt(areas, graph)
	schema := map[string]any{
		"type":       "object",
		"properties": map[string]any{"flows": map[string]any{"type": "array"}},
	}
	result, _, err := client.CompleteJSON(ctx, prompt, crossAreaSystemPrompt, schema)
	if err != nil || result == nil {
		return err
	}
	flows, _ := result["flows"].([]any)
	for _, raw := range flows {
		m, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		source, _ := m["source"].(string)
		target, _ := m["target"].(string)
		dataID, _ := m["data_id"].(string)
		dataType, _ := m["data_type"].(string)
		if source == "" || target == "" || source == target {
			continue
		}
		if !areaSet[source] || !areaSet[target] {
			continue
		}
		graph.AddDataFlowEdge(rpg.DataFlowEdge{
			From: rpg.HighLevelNodeID(source, "", ""), To: rpg.HighLevelNodeID(target, "", ""),
			DataID: dataID, DataType: rpg.DataFlowKind(dataType),
		})
	}
	return nil
}

func crossAreaPrompt(areas []string, graph *rpg.Graph) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Areas: %s\n\nDependency edges:\n", strings.Join(areas, ", "))
	for _, e := range graph.GetDependencyEdges() {
		fmt.Fprintf(&b, "- %s -> %s (%s)\n", e.Source, e.Target, e.Kind)
	}
	return b.String()
}
