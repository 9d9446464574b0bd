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

package hierarchy

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kraklabs/rpgraph/pkg/rpg"
)

func newTestGraph(t *testing.T) *rpg.Graph {
	t.Helper()
	return rpg.New(rpg.Config{Name: "test", RootPath: "/repo"})
}

func TestBuildGraph_MaterializesHierarchyAndWiresFiles(t *testing.T) {
	g := newTestGraph(t)
	fileID := rpg.LowLevelNodeID("pkg/invoices/gen.go", rpg.EntityFile, "", 0)
	require.NoError(t, g.AddLowLevelNode(rpg.Node{ID: fileID, Feature: rpg.SemanticFeature{Description: "generate invoices"}, LowLevel: &rpg.LowLevelMetadata{EntityType: rpg.EntityFile, Path: "pkg/invoices/gen.go"}}))

	assignments := []Assignment{
		{GroupLabel: "pkg", Area: "Billing", Category: "invoices", Subcategory: "generation"},
	}
	groups := map[string][]string{"pkg": {fileID}}

	require.NoError(t, BuildGraph(g, assignments, groups))

	areaID := rpg.HighLevelNodeID("Billing", "", "")
	catID := rpg.HighLevelNodeID("Billing", "invoices", "")
	subID := rpg.HighLevelNodeID("Billing", "invoices", "generation")

	require.True(t, g.HasNode(areaID))
	require.True(t, g.HasNode(catID))
	require.True(t, g.HasNode(subID))
	require.Contains(t, g.GetChildren(areaID), catID)
	require.Contains(t, g.GetChildren(catID), subID)
	require.Contains(t, g.GetChildren(subID), fileID)
}

func TestBuildGraph_SharedCategoryNotDuplicated(t *testing.T) {
	g := newTestGraph(t)
	assignments := []Assignment{
		{GroupLabel: "a", Area: "Billing", Category: "invoices", Subcategory: "generation"},
		{GroupLabel: "b", Area: "Billing", Category: "invoices", Subcategory: "validation"},
	}

	require.NoError(t, BuildGraph(g, assignments, map[string][]string{}))

	catID := rpg.HighLevelNodeID("Billing", "invoices", "")
	require.Len(t, g.GetChildren(catID), 2)
}
