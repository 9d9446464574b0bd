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

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func newTestGraph(t *testing.T) *Graph {
	t.Helper()
	return New(Config{Name: "demo", RootPath: "/repo"})
}

func TestAddLowLevelNode_IDGrammar(t *testing.T) {
	g := newTestGraph(t)
	id := LowLevelNodeID("pkg/foo.go", EntityFunction, "DoThing", 12)
	require.Equal(t, "pkg/foo.go:function:DoThing:12", id)

	require.NoError(t, g.AddLowLevelNode(Node{
		ID:       id,
		LowLevel: &LowLevelMetadata{EntityType: EntityFunction, Path: "pkg/foo.go", StartLine: 12},
		Feature:  SemanticFeature{Description: "transform request payload"},
	}))
	n, ok := g.GetNode(id)
	require.True(t, ok)
	require.Equal(t, "transform request payload", n.Feature.Description)
}

func TestCascadeRemove(t *testing.T) {
	g := newTestGraph(t)
	fileID := LowLevelNodeID("a.go", EntityFile, "", 0)
	fnID := LowLevelNodeID("a.go", EntityFunction, "F", 1)
	require.NoError(t, g.AddLowLevelNode(Node{ID: fileID, LowLevel: &LowLevelMetadata{EntityType: EntityFile, Path: "a.go"}, Feature: SemanticFeature{Description: "define a module"}}))
	require.NoError(t, g.AddLowLevelNode(Node{ID: fnID, LowLevel: &LowLevelMetadata{EntityType: EntityFunction, Path: "a.go"}, Feature: SemanticFeature{Description: "transform input"}}))
	require.NoError(t, g.AddFunctionalEdge(fileID, fnID))
	require.NoError(t, g.AddDependencyEdge(DependencyEdge{Source: fileID, Target: fnID, Kind: DependencyCall}))
	require.NoError(t, g.AddDataFlowEdge(DataFlowEdge{From: fnID, To: fnID, DataID: "x", DataType: DataFlowVariableChain}))

	require.True(t, g.RemoveNode(fnID))

	require.Empty(t, g.GetFunctionalEdges())
	require.Empty(t, g.GetDependencyEdges())
	require.Empty(t, g.GetDataFlowEdges())
	require.False(t, g.HasNode(fnID))
}

func TestDependencyDedup_ImportWins(t *testing.T) {
	g := newTestGraph(t)
	a := LowLevelNodeID("a.go", EntityFile, "", 0)
	b := LowLevelNodeID("b.go", EntityFile, "", 0)
	require.NoError(t, g.AddLowLevelNode(Node{ID: a, LowLevel: &LowLevelMetadata{EntityType: EntityFile, Path: "a.go"}}))
	require.NoError(t, g.AddLowLevelNode(Node{ID: b, LowLevel: &LowLevelMetadata{EntityType: EntityFile, Path: "b.go"}}))

	require.NoError(t, g.AddDependencyEdge(DependencyEdge{Source: a, Target: b, Kind: DependencyCall}))
	require.NoError(t, g.AddDependencyEdge(DependencyEdge{Source: a, Target: b, Kind: DependencyImport}))

	edges := g.GetDependencyEdges()
	require.Len(t, edges, 1)
	require.Equal(t, DependencyImport, edges[0].Kind)
}

func TestDuplicateEdgeInsertionIsIdempotent(t *testing.T) {
	g := newTestGraph(t)
	a := LowLevelNodeID("a.go", EntityFile, "", 0)
	b := LowLevelNodeID("b.go", EntityFile, "", 0)
	require.NoError(t, g.AddLowLevelNode(Node{ID: a, LowLevel: &LowLevelMetadata{EntityType: EntityFile, Path: "a.go"}}))
	require.NoError(t, g.AddLowLevelNode(Node{ID: b, LowLevel: &LowLevelMetadata{EntityType: EntityFile, Path: "b.go"}}))

	require.NoError(t, g.AddFunctionalEdge(a, b))
	require.NoError(t, g.AddFunctionalEdge(a, b))
	require.Len(t, g.GetFunctionalEdges(), 1)
}

func TestHighLevelForest_SingleParent(t *testing.T) {
	g := newTestGraph(t)
	area := HighLevelNodeID("Auth", "", "")
	cat := HighLevelNodeID("Auth", "verify credentials", "")
	other := HighLevelNodeID("Billing", "", "")
	require.NoError(t, g.AddHighLevelNode(Node{ID: area, Feature: SemanticFeature{Description: "auth"}}))
	require.NoError(t, g.AddHighLevelNode(Node{ID: cat, Feature: SemanticFeature{Description: "verify credentials"}}))
	require.NoError(t, g.AddHighLevelNode(Node{ID: other, Feature: SemanticFeature{Description: "billing"}}))

	require.NoError(t, g.AddFunctionalEdge(area, cat))
	err := g.AddFunctionalEdge(other, cat)
	require.Error(t, err, "a high-level node must not gain a second functional parent")
}

func TestToJSONFromJSONRoundTrip(t *testing.T) {
	g := newTestGraph(t)
	file := LowLevelNodeID("a.go", EntityFile, "", 0)
	require.NoError(t, g.AddLowLevelNode(Node{ID: file, LowLevel: &LowLevelMetadata{EntityType: EntityFile, Path: "a.go"}, Feature: SemanticFeature{Description: "define a module"}}))
	area := HighLevelNodeID("Core", "wire requests", "route http")
	require.NoError(t, g.AddHighLevelNode(Node{ID: area, Feature: SemanticFeature{Description: "route http"}}))
	require.NoError(t, g.AddFunctionalEdge(area, file))

	data, err := g.ToJSON()
	require.NoError(t, err)

	restored, err := FromJSON(data)
	require.NoError(t, err)

	if diff := cmp.Diff(g.GetLowLevelNodes(), restored.GetLowLevelNodes()); diff != "" {
		t.Errorf("low-level nodes differ after round-trip (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(g.GetFunctionalEdges(), restored.GetFunctionalEdges()); diff != "" {
		t.Errorf("functional edges differ after round-trip (-want +got):\n%s", diff)
	}
	require.Equal(t, g.Config(), restored.Config())
}

func TestGetStats(t *testing.T) {
	g := newTestGraph(t)
	file := LowLevelNodeID("a.go", EntityFile, "", 0)
	require.NoError(t, g.AddLowLevelNode(Node{ID: file, LowLevel: &LowLevelMetadata{EntityType: EntityFile, Path: "a.go"}}))
	area := HighLevelNodeID("Core", "", "")
	require.NoError(t, g.AddHighLevelNode(Node{ID: area}))
	require.NoError(t, g.AddFunctionalEdge(area, file))

	stats := g.GetStats()
	require.Equal(t, 1, stats.LowLevelNodes)
	require.Equal(t, 1, stats.HighLevelNodes)
	require.Equal(t, 1, stats.FunctionalEdges)
}
