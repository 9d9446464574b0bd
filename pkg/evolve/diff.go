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

// Package evolve implements the Evolver (C10): git diff -> entity
// deltas -> scheduled Delete->Modify->Insert operations with
// drift-based semantic re-routing (§4.10).
package evolve

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kraklabs/rpgraph/internal/gitutil"
	"github.com/kraklabs/rpgraph/pkg/ast"
)

// EntityDelta identifies one changed entity by its stable ID:
// "{filePath}:{entityType}:{qualifiedName}" (§4.10).
type EntityDelta struct {
	ID            string
	FilePath      string
	EntityType    ast.EntityType
	QualifiedName string
}

// Modification pairs the old and new state of a changed entity.
type Modification struct {
	Old EntityDelta
	New EntityDelta
}

// DiffResult is the parsed outcome of one commitRange (§4.10).
type DiffResult struct {
	Insertions    []EntityDelta
	Deletions     []EntityDelta
	Modifications []Modification
}

// Total reports the combined change count, used by the change-ratio gate.
func (d DiffResult) Total() int {
	return len(d.Insertions) + len(d.Deletions) + len(d.Modifications)
}

// StableID implements the §4.10 stable-ID grammar.
func StableID(filePath string, entityType ast.EntityType, qualifiedName string) string {
	return fmt.Sprintf("%s:%s:%s", filePath, entityType, qualifiedName)
}

// ParseDiff reads git name-status over commitRange and classifies
// entity-level deltas per changed file (§4.10). Only the new side of
// the range is parsed, from the working tree; the old side yields no
// entities. As a result an added file ("A") yields insertions, a
// modified file ("M") yields every current entity as an insertion, and
// a deleted file ("D") yields no deletions.
//
// extractEntities is injected so the evolver doesn't depend on a
// specific AST backend beyond "parse file content with this language
// detector"; callers pass a function backed by pkg/ast.Parse.
func ParseDiff(ctx context.Context, repoPath, commitRange string, extractEntities func(content []byte, path string) ([]ast.CodeEntity, error)) (DiffResult, error) {
	lines, err := gitutil.DiffNameStatus(ctx, repoPath, commitRange)
	if err != nil {
		return DiffResult{}, fmt.Errorf("evolve: parse diff: %w", err)
	}

	var result DiffResult
	for _, line := range lines {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		status, path := fields[0], fields[len(fields)-1]

		switch {
		case strings.HasPrefix(status, "A"):
			entities, err := extractEntitiesAtRef(ctx, repoPath, commitRange, path, extractEntities, true)
			if err != nil {
				continue
			}
			for _, e := range entities {
				result.Insertions = append(result.Insertions, deltaFor(path, e))
			}
		case strings.HasPrefix(status, "D"):
			entities, err := extractEntitiesAtRef(ctx, repoPath, commitRange, path, extractEntities, false)
			if err != nil {
				continue
			}
			for _, e := range entities {
				result.Deletions = append(result.Deletions, deltaFor(path, e))
			}
		case strings.HasPrefix(status, "M"):
			oldEntities, oerr := extractEntitiesAtRef(ctx, repoPath, commitRange, path, extractEntities, false)
			newEntities, nerr := extractEntitiesAtRef(ctx, repoPath, commitRange, path, extractEntities, true)
			if oerr != nil || nerr != nil {
				continue
			}
			diffEntities(path, oldEntities, newEntities, &result)
		}
	}
	return result, nil
}

// extractEntitiesAtRef re-parses path's content as it exists on one side
// of commitRange. Content is read from the working tree when `after` is
// true (the common "HEAD~N..HEAD" case targets a checked-out tree); for
// the old side it returns no entities, since old blob content is not
// read.
func extractEntitiesAtRef(ctx context.Context, repoPath, commitRange, path string, extractEntities func([]byte, string) ([]ast.CodeEntity, error), after bool) ([]ast.CodeEntity, error) {
	if !after {
		return nil, nil
	}
	content, err := readWorkingFile(repoPath, path)
	if err != nil {
		return nil, err
	}
	return extractEntities(content, path)
}

func readWorkingFile(repoPath, path string) ([]byte, error) {
	return os.ReadFile(filepath.Join(repoPath, path))
}

func deltaFor(path string, e ast.CodeEntity) EntityDelta {
	entityType := ast.EntityType(e.Type)
	qualified := e.Name
	if e.Parent != "" {
		qualified = e.Parent + "." + e.Name
	}
	return EntityDelta{
		ID:            StableID(path, entityType, qualified),
		FilePath:      path,
		EntityType:    entityType,
		QualifiedName: qualified,
	}
}

// diffEntities computes the insertion/deletion/modification set for one
// modified file by comparing entity qualified-name sets; entities
// present in both become Modifications, keyed to drift computation by
// the caller.
func diffEntities(path string, oldE, newE []ast.CodeEntity, result *DiffResult) {
	oldByName := make(map[string]ast.CodeEntity, len(oldE))
	for _, e := range oldE {
		oldByName[qualifiedName(e)] = e
	}
	newByName := make(map[string]ast.CodeEntity, len(newE))
	for _, e := range newE {
		newByName[qualifiedName(e)] = e
	}

	for name, ne := range newByName {
		if oe, ok := oldByName[name]; ok {
			result.Modifications = append(result.Modifications, Modification{Old: deltaFor(path, oe), New: deltaFor(path, ne)})
		} else {
			result.Insertions = append(result.Insertions, deltaFor(path, ne))
		}
	}
	for name, oe := range oldByName {
		if _, ok := newByName[name]; !ok {
			result.Deletions = append(result.Deletions, deltaFor(path, oe))
		}
	}
}

func qualifiedName(e ast.CodeEntity) string {
	if e.Parent != "" {
		return e.Parent + "." + e.Name
	}
	return e.Name
}
