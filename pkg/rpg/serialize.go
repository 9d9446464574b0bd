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

package rpg

import "encoding/json"

// DocumentVersion is the schema version stamped into every persisted
// document (§6 "Persisted RPG").
const DocumentVersion = 1

// Document is the stable, self-describing persisted form of a Graph.
type Document struct {
	Version         int              `json:"version"`
	Config          Config           `json:"config"`
	Nodes           []Node           `json:"nodes"`
	FunctionalEdges []FunctionalEdge `json:"functionalEdges"`
	DependencyEdges []DependencyEdge `json:"dependencyEdges"`
	DataFlowEdges   []DataFlowEdge   `json:"dataFlowEdges"`
}

// ToJSON renders a stable document: config, all nodes, and all edges,
// sorted so that repeated calls against an unchanged graph are
// byte-identical.
func (g *Graph) ToJSON() ([]byte, error) {
	doc := Document{
		Version:         DocumentVersion,
		Config:          g.Config(),
		Nodes:           append(g.GetLowLevelNodes(), g.GetHighLevelNodes()...),
		FunctionalEdges: g.GetFunctionalEdges(),
		DependencyEdges: g.GetDependencyEdges(),
		DataFlowEdges:   g.GetDataFlowEdges(),
	}
	return json.MarshalIndent(doc, "", "  ")
}

// FromJSON reconstructs a Graph from a document produced by ToJSON.
// fromJSON(toJSON(g)) is structurally equivalent to g (§8 round-trip).
func FromJSON(data []byte) (*Graph, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	g := New(doc.Config)
	for _, n := range doc.Nodes {
		switch n.Kind {
		case NodeHighLevel:
			if err := g.AddHighLevelNode(n); err != nil {
				return nil, err
			}
		default:
			if err := g.AddLowLevelNode(n); err != nil {
				return nil, err
			}
		}
	}
	for _, e := range doc.FunctionalEdges {
		if err := g.AddFunctionalEdge(e.Source, e.Target); err != nil {
			return nil, err
		}
	}
	for _, e := range doc.DependencyEdges {
		if err := g.AddDependencyEdge(e); err != nil {
			return nil, err
		}
	}
	for _, e := range doc.DataFlowEdges {
		if err := g.AddDataFlowEdge(e); err != nil {
			return nil, err
		}
	}
	return g, nil
}
