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
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/kraklabs/rpgraph/pkg/rpg"
)

// FileConfig configures the file-backed store.
type FileConfig struct {
	// DataDir is the directory the graph document is persisted under.
	// Defaults to ~/.rpgraph/data/<project name>.
	DataDir string

	// ProjectName namespaces DataDir when DataDir is left empty.
	ProjectName string
}

// FileStore is a durable GraphStore that keeps the live graph in memory
// and flushes the full JSON document to a single file on Flush/Close,
// mirroring the teacher's embedded-backend data-directory convention
// while trading CozoDB's Datalog engine for the RPG's own serializer.
type FileStore struct {
	mu     sync.RWMutex
	mem    *MemoryStore
	path   string
	closed bool
}

// NewFileStore opens (or initializes) a file-backed store rooted at
// cfg.DataDir, loading any existing document found there.
func NewFileStore(cfg FileConfig, config rpg.Config) (*FileStore, error) {
	dataDir := cfg.DataDir
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("graphstore: resolve home dir: %w", err)
		}
		dataDir = filepath.Join(home, ".rpgraph", "data")
		if cfg.ProjectName != "" {
			dataDir = filepath.Join(dataDir, cfg.ProjectName)
		}
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("graphstore: create data dir: %w", err)
	}

	path := filepath.Join(dataDir, "rpg.json")
	fs := &FileStore{mem: NewMemoryStore(config), path: path}

	if data, err := os.ReadFile(path); err == nil {
		if err := fs.mem.FromJSON(context.Background(), data); err != nil {
			return nil, fmt.Errorf("graphstore: load existing document at %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("graphstore: read %s: %w", path, err)
	}

	return fs, nil
}

func (f *FileStore) guard() error {
	if f.closed {
		return fmt.Errorf("graphstore: store is closed")
	}
	return nil
}

func (f *FileStore) AddLowLevelNode(ctx context.Context, node rpg.Node) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.guard(); err != nil {
		return err
	}
	return f.mem.AddLowLevelNode(ctx, node)
}

func (f *FileStore) AddHighLevelNode(ctx context.Context, node rpg.Node) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.guard(); err != nil {
		return err
	}
	return f.mem.AddHighLevelNode(ctx, node)
}

func (f *FileStore) UpdateNode(ctx context.Context, id string, feature rpg.SemanticFeature, lowLevel *rpg.LowLevelMetadata, highLevel *rpg.HighLevelMetadata) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.guard(); err != nil {
		return err
	}
	return f.mem.UpdateNode(ctx, id, feature, lowLevel, highLevel)
}

func (f *FileStore) RemoveNode(ctx context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.guard(); err != nil {
		return false, err
	}
	return f.mem.RemoveNode(ctx, id)
}

func (f *FileStore) HasNode(ctx context.Context, id string) (bool, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if err := f.guard(); err != nil {
		return false, err
	}
	return f.mem.HasNode(ctx, id)
}

func (f *FileStore) GetNode(ctx context.Context, id string) (rpg.Node, bool, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if err := f.guard(); err != nil {
		return rpg.Node{}, false, err
	}
	return f.mem.GetNode(ctx, id)
}

func (f *FileStore) GetChildren(ctx context.Context, id string) ([]string, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if err := f.guard(); err != nil {
		return nil, err
	}
	return f.mem.GetChildren(ctx, id)
}

func (f *FileStore) GetParent(ctx context.Context, id string) (string, bool, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if err := f.guard(); err != nil {
		return "", false, err
	}
	return f.mem.GetParent(ctx, id)
}

func (f *FileStore) AddFunctionalEdge(ctx context.Context, source, target string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.guard(); err != nil {
		return err
	}
	return f.mem.AddFunctionalEdge(ctx, source, target)
}

func (f *FileStore) AddDependencyEdge(ctx context.Context, edge rpg.DependencyEdge) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.guard(); err != nil {
		return err
	}
	return f.mem.AddDependencyEdge(ctx, edge)
}

func (f *FileStore) AddDataFlowEdge(ctx context.Context, edge rpg.DataFlowEdge) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.guard(); err != nil {
		return err
	}
	return f.mem.AddDataFlowEdge(ctx, edge)
}

func (f *FileStore) GetHighLevelNodes(ctx context.Context) ([]rpg.Node, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if err := f.guard(); err != nil {
		return nil, err
	}
	return f.mem.GetHighLevelNodes(ctx)
}

func (f *FileStore) GetLowLevelNodes(ctx context.Context) ([]rpg.Node, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if err := f.guard(); err != nil {
		return nil, err
	}
	return f.mem.GetLowLevelNodes(ctx)
}

func (f *FileStore) GetFunctionalEdges(ctx context.Context) ([]rpg.FunctionalEdge, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if err := f.guard(); err != nil {
		return nil, err
	}
	return f.mem.GetFunctionalEdges(ctx)
}

func (f *FileStore) GetDependencyEdges(ctx context.Context) ([]rpg.DependencyEdge, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if err := f.guard(); err != nil {
		return nil, err
	}
	return f.mem.GetDependencyEdges(ctx)
}

func (f *FileStore) GetOutEdges(ctx context.Context, id string, kind rpg.EdgeKind) ([]string, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if err := f.guard(); err != nil {
		return nil, err
	}
	return f.mem.GetOutEdges(ctx, id, kind)
}

func (f *FileStore) GetInEdges(ctx context.Context, id string, kind rpg.EdgeKind) ([]string, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if err := f.guard(); err != nil {
		return nil, err
	}
	return f.mem.GetInEdges(ctx, id, kind)
}

func (f *FileStore) GetStats(ctx context.Context) (rpg.Stats, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if err := f.guard(); err != nil {
		return rpg.Stats{}, err
	}
	return f.mem.GetStats(ctx)
}

func (f *FileStore) ToJSON(ctx context.Context) ([]byte, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if err := f.guard(); err != nil {
		return nil, err
	}
	return f.mem.ToJSON(ctx)
}

func (f *FileStore) FromJSON(ctx context.Context, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.guard(); err != nil {
		return err
	}
	return f.mem.FromJSON(ctx, data)
}

func (f *FileStore) UpdateConfig(ctx context.Context, config rpg.Config) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.guard(); err != nil {
		return err
	}
	return f.mem.UpdateConfig(ctx, config)
}

func (f *FileStore) GetConfig(ctx context.Context) (rpg.Config, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if err := f.guard(); err != nil {
		return rpg.Config{}, err
	}
	return f.mem.GetConfig(ctx)
}

// Flush writes the current document to disk atomically (write to a
// temp file, then rename) so a crash mid-write never leaves a
// corrupted document behind.
func (f *FileStore) Flush(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.guard(); err != nil {
		return err
	}
	data, err := f.mem.ToJSON(ctx)
	if err != nil {
		return err
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("graphstore: write temp document: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("graphstore: rename document into place: %w", err)
	}
	return nil
}

func (f *FileStore) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil
	}
	data, err := f.mem.ToJSON(context.Background())
	if err != nil {
		f.closed = true
		return err
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		f.closed = true
		return fmt.Errorf("graphstore: write temp document on close: %w", err)
	}
	err = os.Rename(tmp, f.path)
	f.closed = true
	return err
}
