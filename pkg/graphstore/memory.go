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

package graphstore

import (
	"context"

	"github.com/kraklabs/rpgraph/pkg/rpg"
)

// MemoryStore is the default, in-process GraphStore: a thin
// context-aware delegate over pkg/rpg.Graph. Flush and Close are no-ops
// since there is nothing external to persist.
type MemoryStore struct {
	graph *rpg.Graph
}

// NewMemoryStore creates a MemoryStore around a fresh, empty graph
// built from config.
func NewMemoryStore(config rpg.Config) *MemoryStore {
	return &MemoryStore{graph: rpg.New(config)}
}

// Graph exposes the underlying aggregate for callers (e.g. pkg/inject,
// pkg/ground) that need direct, lock-free-in-spirit access within a
// single-writer phase rather than going through every interface method.
func (m *MemoryStore) Graph() *rpg.Graph { return m.graph }

func checkCtx(ctx context.Context) error { return ctx.Err() }

func (m *MemoryStore) AddLowLevelNode(ctx context.Context, node rpg.Node) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	return m.graph.AddLowLevelNode(node)
}

func (m *MemoryStore) AddHighLevelNode(ctx context.Context, node rpg.Node) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	return m.graph.AddHighLevelNode(node)
}

func (m *MemoryStore) UpdateNode(ctx context.Context, id string, feature rpg.SemanticFeature, lowLevel *rpg.LowLevelMetadata, highLevel *rpg.HighLevelMetadata) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	return m.graph.UpdateNode(id, feature, lowLevel, highLevel)
}

func (m *MemoryStore) RemoveNode(ctx context.Context, id string) (bool, error) {
	if err := checkCtx(ctx); err != nil {
		return false, err
	}
	return m.graph.RemoveNode(id), nil
}

func (m *MemoryStore) HasNode(ctx context.Context, id string) (bool, error) {
	if err := checkCtx(ctx); err != nil {
		return false, err
	}
	return m.graph.HasNode(id), nil
}

func (m *MemoryStore) GetNode(ctx context.Context, id string) (rpg.Node, bool, error) {
	if err := checkCtx(ctx); err != nil {
		return rpg.Node{}, false, err
	}
	n, ok := m.graph.GetNode(id)
	return n, ok, nil
}

func (m *MemoryStore) GetChildren(ctx context.Context, id string) ([]string, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	return m.graph.GetChildren(id), nil
}

func (m *MemoryStore) GetParent(ctx context.Context, id string) (string, bool, error) {
	if err := checkCtx(ctx); err != nil {
		return "", false, err
	}
	p, ok := m.graph.GetParent(id)
	return p, ok, nil
}

func (m *MemoryStore) AddFunctionalEdge(ctx context.Context, source, target string) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	return m.graph.AddFunctionalEdge(source, target)
}

func (m *MemoryStore) AddDependencyEdge(ctx context.Context, edge rpg.DependencyEdge) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	return m.graph.AddDependencyEdge(edge)
}

func (m *MemoryStore) AddDataFlowEdge(ctx context.Context, edge rpg.DataFlowEdge) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	return m.graph.AddDataFlowEdge(edge)
}

func (m *MemoryStore) GetHighLevelNodes(ctx context.Context) ([]rpg.Node, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	return m.graph.GetHighLevelNodes(), nil
}

func (m *MemoryStore) GetLowLevelNodes(ctx context.Context) ([]rpg.Node, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	return m.graph.GetLowLevelNodes(), nil
}

func (m *MemoryStore) GetFunctionalEdges(ctx context.Context) ([]rpg.FunctionalEdge, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	return m.graph.GetFunctionalEdges(), nil
}

func (m *MemoryStore) GetDependencyEdges(ctx context.Context) ([]rpg.DependencyEdge, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	return m.graph.GetDependencyEdges(), nil
}

func (m *MemoryStore) GetOutEdges(ctx context.Context, id string, kind rpg.EdgeKind) ([]string, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	return m.graph.GetOutEdges(id, kind), nil
}

func (m *MemoryStore) GetInEdges(ctx context.Context, id string, kind rpg.EdgeKind) ([]string, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	return m.graph.GetInEdges(id, kind), nil
}

func (m *MemoryStore) GetStats(ctx context.Context) (rpg.Stats, error) {
	if err := checkCtx(ctx); err != nil {
		return rpg.Stats{}, err
	}
	return m.graph.GetStats(), nil
}

func (m *MemoryStore) ToJSON(ctx context.Context) ([]byte, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	return m.graph.ToJSON()
}

func (m *MemoryStore) FromJSON(ctx context.Context, data []byte) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	g, err := rpg.FromJSON(data)
	if err != nil {
		return err
	}
	m.graph = g
	return nil
}

func (m *MemoryStore) UpdateConfig(ctx context.Context, config rpg.Config) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	m.graph.UpdateConfig(config)
	return nil
}

func (m *MemoryStore) GetConfig(ctx context.Context) (rpg.Config, error) {
	if err := checkCtx(ctx); err != nil {
		return rpg.Config{}, err
	}
	return m.graph.Config(), nil
}

func (m *MemoryStore) Flush(context.Context) error { return nil }
func (m *MemoryStore) Close() error                { return nil }
