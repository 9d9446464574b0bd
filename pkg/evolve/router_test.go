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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kraklabs/rpgraph/pkg/llm"
	"github.com/kraklabs/rpgraph/pkg/rpg"
)

func newRouterGraph(t *testing.T) *rpg.Graph {
	t.Helper()
	return rpg.New(rpg.Config{Name: "test", RootPath: "/repo"})
}

func TestFindBestParent_NoRootsReturnsFalse(t *testing.T) {
	g := newRouterGraph(t)
	r := NewRouter(g, nil, nil)

	_, ok := r.FindBestParent(context.Background(), rpg.SemanticFeature{Description: "anything"})
	require.False(t, ok)
}

func TestFindBestParent_DeterministicFirstCandidateWithNoStrategies(t *testing.T) {
	g := newRouterGraph(t)
	areaA := rpg.HighLevelNodeID("Alpha", "", "")
	areaB := rpg.HighLevelNodeID("Beta", "", "")
	require.NoError(t, g.AddHighLevelNode(rpg.Node{ID: areaA, Feature: rpg.SemanticFeature{Description: "alpha"}}))
	require.NoError(t, g.AddHighLevelNode(rpg.Node{ID: areaB, Feature: rpg.SemanticFeature{Description: "beta"}}))

	r := NewRouter(g, nil, nil)
	parent, ok := r.FindBestParent(context.Background(), rpg.SemanticFeature{Description: "something"})
	require.True(t, ok)
	require.Equal(t, areaA, parent, "sorted roots pick the lexicographically-first candidate with no LLM/embedder configured")
}

func TestFindBestParent_DescendsToLeafHighLevelNode(t *testing.T) {
	g := newRouterGraph(t)
	areaID := rpg.HighLevelNodeID("Billing", "", "")
	catID := rpg.HighLevelNodeID("Billing", "invoices", "")
	require.NoError(t, g.AddHighLevelNode(rpg.Node{ID: areaID, Feature: rpg.SemanticFeature{Description: "billing"}}))
	require.NoError(t, g.AddHighLevelNode(rpg.Node{ID: catID, Feature: rpg.SemanticFeature{Description: "invoices"}}))
	require.NoError(t, g.AddFunctionalEdge(areaID, catID))

	r := NewRouter(g, nil, nil)
	parent, ok := r.FindBestParent(context.Background(), rpg.SemanticFeature{Description: "generate invoice"})
	require.True(t, ok)
	require.Equal(t, catID, parent, "descend stops at the childless leaf")
}

func TestFindBestParent_LLMSelectionWins(t *testing.T) {
	g := newRouterGraph(t)
	areaA := rpg.HighLevelNodeID("Alpha", "", "")
	areaB := rpg.HighLevelNodeID("Beta", "", "")
	require.NoError(t, g.AddHighLevelNode(rpg.Node{ID: areaA, Feature: rpg.SemanticFeature{Description: "alpha"}}))
	require.NoError(t, g.AddHighLevelNode(rpg.Node{ID: areaB, Feature: rpg.SemanticFeature{Description: "beta"}}))

	client := llm.NewMockClient()
	client.Respond = func(string, string) string {
		return `{"selectedId": "` + areaB + `", "confidence": 0.9}`
	}
	r := NewRouter(g, client, nil)

	parent, ok := r.FindBestParent(context.Background(), rpg.SemanticFeature{Description: "something"})
	require.True(t, ok)
	require.Equal(t, areaB, parent)
	require.Equal(t, 1, r.LLMAttempts)
}

func TestFindBestParent_LLMInvalidSelectionFallsThrough(t *testing.T) {
	g := newRouterGraph(t)
	areaA := rpg.HighLevelNodeID("Alpha", "", "")
	require.NoError(t, g.AddHighLevelNode(rpg.Node{ID: areaA, Feature: rpg.SemanticFeature{Description: "alpha"}}))

	client := llm.NewMockClient()
	client.Respond = func(string, string) string {
		return `{"selectedId": "not-a-real-node"}`
	}
	r := NewRouter(g, client, nil)

	parent, ok := r.FindBestParent(context.Background(), rpg.SemanticFeature{Description: "something"})
	require.True(t, ok)
	require.Equal(t, areaA, parent, "invalid LLM pick falls through to the deterministic default")
}
