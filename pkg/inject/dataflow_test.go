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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kraklabs/rpgraph/pkg/ast"
	"github.com/kraklabs/rpgraph/pkg/llm"
	"github.com/kraklabs/rpgraph/pkg/rpg"
	"github.com/kraklabs/rpgraph/pkg/symbols"
)

func TestInjectIntraModuleFlow_ParameterReuse(t *testing.T) {
	g := newTestGraph(t)
	fnID := "a.go:function:Foo:1"
	addFileNode(t, g, fnID)

	InjectIntraModuleFlow(g, []IntraModuleEntity{
		{NodeID: fnID, Parameters: []string{"name"}, Body: "func Foo(name string) string { return name + name }"},
	})

	edges := g.GetDataFlowEdges()
	require.Len(t, edges, 1)
	require.Equal(t, rpg.DataFlowParameter, edges[0].DataType)
	require.Equal(t, "name", edges[0].DataID)
}

func TestInjectIntraModuleFlow_LocalVariableChain(t *testing.T) {
	g := newTestGraph(t)
	fnID := "a.go:function:Foo:1"
	addFileNode(t, g, fnID)

	InjectIntraModuleFlow(g, []IntraModuleEntity{
		{NodeID: fnID, Locals: []string{"result"}, Body: "result := compute(); return result"},
	})

	edges := g.GetDataFlowEdges()
	require.Len(t, edges, 1)
	require.Equal(t, rpg.DataFlowVariableChain, edges[0].DataType)
}

func TestInjectIntraModuleFlow_SingleOccurrenceIsNotFlow(t *testing.T) {
	g := newTestGraph(t)
	fnID := "a.go:function:Foo:1"
	addFileNode(t, g, fnID)

	InjectIntraModuleFlow(g, []IntraModuleEntity{
		{NodeID: fnID, Parameters: []string{"unused"}, Body: "func Foo(unused string) {}"},
	})

	require.Empty(t, g.GetDataFlowEdges())
}

func TestInjectInterModuleFlow_ImportDirectionIsTargetToImporter(t *testing.T) {
	g := newTestGraph(t)
	aID, bID := "a.ts:file", "b.ts:file"
	addFileNode(t, g, aID)
	addFileNode(t, g, bID)

	resolver := symbols.New()
	resolver.BuildIndex([]symbols.FileInput{
		{Path: "a.ts", Imports: []ast.Import{{Module: "./b", Names: []string{"helper"}}}},
		{Path: "b.ts", Entities: []ast.CodeEntity{{Name: "helper", Type: "function"}}},
	})

	InjectInterModuleFlow(g, resolver, FileNodes{"a.ts": aID, "b.ts": bID})

	edges := g.GetDataFlowEdges()
	require.Len(t, edges, 1)
	require.Equal(t, bID, edges[0].From)
	require.Equal(t, aID, edges[0].To)
	require.Equal(t, rpg.DataFlowImport, edges[0].DataType)
}

func TestInjectCrossAreaFlow_RejectsUndeclaredAreas(t *testing.T) {
	g := newTestGraph(t)
	billingID := rpg.HighLevelNodeID("Billing", "", "")
	require.NoError(t, g.AddHighLevelNode(rpg.Node{ID: billingID, Feature: rpg.SemanticFeature{}}))

	client := llm.NewMockClient()
	client.Respond = func(string, string) string {
		return `{"flows": [{"source": "Billing", "target": "Ghost", "data_id": "x", "data_type": "call"}]}`
	}

	err := InjectCrossAreaFlow(context.Background(), client, g, []string{"Billing"})
	require.NoError(t, err)
	require.Empty(t, g.GetDataFlowEdges())
}

func TestInjectCrossAreaFlow_AddsValidFlow(t *testing.T) {
	g := newTestGraph(t)
	billingID := rpg.HighLevelNodeID("Billing", "", "")
	authID := rpg.HighLevelNodeID("Auth", "", "")
	require.NoError(t, g.AddHighLevelNode(rpg.Node{ID: billingID, Feature: rpg.SemanticFeature{}}))
	require.NoError(t, g.AddHighLevelNode(rpg.Node{ID: authID, Feature: rpg.SemanticFeature{}}))

	client := llm.NewMockClient()
	client.Respond = func(string, string) string {
		return `{"flows": [{"source": "Auth", "target": "Billing", "data_id": "token", "data_type": "call"}]}`
	}

	err := InjectCrossAreaFlow(context.Background(), client, g, []string{"Billing", "Auth"})
	require.NoError(t, err)

	edges := g.GetDataFlowEdges()
	require.Len(t, edges, 1)
	require.Equal(t, authID, edges[0].From)
	require.Equal(t, billingID, edges[0].To)
}

func TestInjectCrossAreaFlow_NilClientIsNoop(t *testing.T) {
	g := newTestGraph(t)
	require.NoError(t, InjectCrossAreaFlow(context.Background(), nil, g, []string{"Billing"}))
	require.Empty(t, g.GetDataFlowEdges())
}
