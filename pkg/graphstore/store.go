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

// Package graphstore provides persistence backend abstractions for the
// Repository Planning Graph. It defines the GraphStore interface that
// lets the encoder pipeline work with different persistence
// implementations:
//   - MemoryStore: an in-process store wrapping pkg/rpg.Graph directly.
//   - FileStore: a JSON-file-backed store for standalone use.
//
// The orchestrator and the evolver operate on a *rpg.Graph directly; a
// GraphStore wraps such a graph for persistence (§6 "GraphStore
// contract").
package graphstore

import (
	"context"

	"github.com/kraklabs/rpgraph/pkg/rpg"
)

// GraphStore is the persistence contract every pipeline phase depends
// on. Every method mirrors a pkg/rpg.Graph operation so a MemoryStore
// can simply delegate; a durable backend additionally flushes to disk.
type GraphStore interface {
	AddLowLevelNode(ctx context.Context, node rpg.Node) error
	AddHighLevelNode(ctx context.Context, node rpg.Node) error
	UpdateNode(ctx context.Context, id string, feature rpg.SemanticFeature, lowLevel *rpg.LowLevelMetadata, highLevel *rpg.HighLevelMetadata) error
	RemoveNode(ctx context.Context, id string) (bool, error)
	HasNode(ctx context.Context, id string) (bool, error)
	GetNode(ctx context.Context, id string) (rpg.Node, bool, error)
	GetChildren(ctx context.Context, id string) ([]string, error)
	GetParent(ctx context.Context, id string) (string, bool, error)

	AddFunctionalEdge(ctx context.Context, source, target string) error
	AddDependencyEdge(ctx context.Context, edge rpg.DependencyEdge) error
	AddDataFlowEdge(ctx context.Context, edge rpg.DataFlowEdge) error

	GetHighLevelNodes(ctx context.Context) ([]rpg.Node, error)
	GetLowLevelNodes(ctx context.Context) ([]rpg.Node, error)
	GetFunctionalEdges(ctx context.Context) ([]rpg.FunctionalEdge, error)
	GetDependencyEdges(ctx context.Context) ([]rpg.DependencyEdge, error)
	GetOutEdges(ctx context.Context, id string, kind rpg.EdgeKind) ([]string, error)
	GetInEdges(ctx context.Context, id string, kind rpg.EdgeKind) ([]string, error)

	GetStats(ctx context.Context) (rpg.Stats, error)

	ToJSON(ctx context.Context) ([]byte, error)
	FromJSON(ctx context.Context, data []byte) error

	UpdateConfig(ctx context.Context, config rpg.Config) error
	GetConfig(ctx context.Context) (rpg.Config, error)

	// Flush persists any buffered state; a no-op for pure in-memory
	// stores.
	Flush(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}
