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

package ground

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kraklabs/rpgraph/pkg/rpg"
)

func TestComputeLCA_SingleDirIsItsOwnBoundary(t *testing.T) {
	require.Equal(t, []string{"pkg/billing"}, ComputeLCA([]string{"pkg/billing", "pkg/billing"}))
}

func TestComputeLCA_BranchingParentIsBoundary(t *testing.T) {
	lcas := ComputeLCA([]string{"pkg/billing/invoices", "pkg/billing/payments"})
	require.Equal(t, []string{"pkg/billing"}, lcas)
}

func TestComputeLCA_DisjointDirsAreSeparateBoundaries(t *testing.T) {
	lcas := ComputeLCA([]string{"pkg/billing", "cmd/server"})
	require.Equal(t, []string{"cmd/server", "pkg/billing"}, lcas)
}

func TestComputeLCA_NestedBranchPushesPastSharedRoot(t *testing.T) {
	lcas := ComputeLCA([]string{"a/b/c", "a/b/d", "a/e"})
	require.Equal(t, []string{"a/b", "a/e"}, lcas)
}

func TestComputeLCA_RootFile(t *testing.T) {
	require.Equal(t, []string{""}, ComputeLCA([]string{""}))
}

func newGroundGraph(t *testing.T) *rpg.Graph {
	t.Helper()
	return rpg.New(rpg.Config{Name: "test", RootPath: "/repo"})
}

func TestGround_AttachesSingleLCAPath(t *testing.T) {
	g := newGroundGraph(t)
	areaID := rpg.HighLevelNodeID("Billing", "", "")
	require.NoError(t, g.AddHighLevelNode(rpg.Node{ID: areaID, Feature: rpg.SemanticFeature{Description: "billing"}}))

	fileA := rpg.LowLevelNodeID("pkg/billing/invoice.go", rpg.EntityFile, "", 0)
	fileB := rpg.LowLevelNodeID("pkg/billing/payment.go", rpg.EntityFile, "", 0)
	require.NoError(t, g.AddLowLevelNode(rpg.Node{ID: fileA, Feature: rpg.SemanticFeature{}, LowLevel: &rpg.LowLevelMetadata{EntityType: rpg.EntityFile, Path: "pkg/billing/invoice.go"}}))
	require.NoError(t, g.AddLowLevelNode(rpg.Node{ID: fileB, Feature: rpg.SemanticFeature{}, LowLevel: &rpg.LowLevelMetadata{EntityType: rpg.EntityFile, Path: "pkg/billing/payment.go"}}))
	require.NoError(t, g.AddFunctionalEdge(areaID, fileA))
	require.NoError(t, g.AddFunctionalEdge(areaID, fileB))

	Ground(g)

	node, ok := g.GetNode(areaID)
	require.True(t, ok)
	require.NotNil(t, node.HighLevel)
	require.Equal(t, "pkg/billing", node.HighLevel.Path)
	require.Nil(t, node.HighLevel.Extra)
}

func TestGround_MultiLCAPromotesToModule(t *testing.T) {
	g := newGroundGraph(t)
	areaID := rpg.HighLevelNodeID("Platform", "", "")
	require.NoError(t, g.AddHighLevelNode(rpg.Node{ID: areaID, Feature: rpg.SemanticFeature{Description: "platform"}}))

	fileA := rpg.LowLevelNodeID("pkg/billing/invoice.go", rpg.EntityFile, "", 0)
	fileB := rpg.LowLevelNodeID("cmd/server/main.go", rpg.EntityFile, "", 0)
	require.NoError(t, g.AddLowLevelNode(rpg.Node{ID: fileA, Feature: rpg.SemanticFeature{}, LowLevel: &rpg.LowLevelMetadata{EntityType: rpg.EntityFile, Path: "pkg/billing/invoice.go"}}))
	require.NoError(t, g.AddLowLevelNode(rpg.Node{ID: fileB, Feature: rpg.SemanticFeature{}, LowLevel: &rpg.LowLevelMetadata{EntityType: rpg.EntityFile, Path: "cmd/server/main.go"}}))
	require.NoError(t, g.AddFunctionalEdge(areaID, fileA))
	require.NoError(t, g.AddFunctionalEdge(areaID, fileB))

	Ground(g)

	node, ok := g.GetNode(areaID)
	require.True(t, ok)
	require.Equal(t, "module", node.HighLevel.Extra["entityType"])
	require.Contains(t, node.HighLevel.Extra["paths"], "pkg/billing")
	require.Contains(t, node.HighLevel.Extra["paths"], "cmd/server")
}
