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
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"
)

// NodeKind distinguishes low-level (where) from high-level (what) nodes.
type NodeKind string

const (
	NodeLowLevel  NodeKind = "low"
	NodeHighLevel NodeKind = "high"
)

// Node is the sum type stored in the RPG's id->Node map. Exactly one of
// LowLevel or HighLevel is set, matching Kind.
type Node struct {
	ID        string             `json:"id"`
	Kind      NodeKind           `json:"kind"`
	Feature   SemanticFeature    `json:"feature"`
	LowLevel  *LowLevelMetadata  `json:"lowLevel,omitempty"`
	HighLevel *HighLevelMetadata `json:"highLevel,omitempty"`
	// SourceCode is only populated for low-level nodes when the caller
	// opted in (IncludeSource); never persisted by default.
	SourceCode string `json:"sourceCode,omitempty"`
}

// IsHighLevel reports whether n describes a functional-area node.
func (n Node) IsHighLevel() bool { return n.Kind == NodeHighLevel }

// NormalizePath normalizes a repo-relative path for use in ID generation:
// forward slashes, no leading "./" or "/", cleaned of redundant separators.
func NormalizePath(path string) string {
	p := strings.TrimPrefix(path, "./")
	p = filepath.ToSlash(filepath.Clean(p))
	p = strings.TrimPrefix(p, "/")
	return p
}

// LowLevelNodeID implements the §3/§6 grammar:
//
//	{relPath}:{entityType}[:{name}[:{startLine}]]
//	{relPath}:file
func LowLevelNodeID(relPath string, entityType EntityType, name string, startLine int) string {
	rel := NormalizePath(relPath)
	if entityType == EntityFile {
		return fmt.Sprintf("%s:file", rel)
	}
	id := fmt.Sprintf("%s:%s", rel, entityType)
	if name != "" {
		id += ":" + name
		if startLine > 0 {
			id += fmt.Sprintf(":%d", startLine)
		}
	}
	return id
}

// HighLevelNodeID implements the §3/§6 grammar:
//
//	domain:{Area}[/{category}[/{subcategory}]]
func HighLevelNodeID(area, category, subcategory string) string {
	id := "domain:" + area
	if category != "" {
		id += "/" + category
		if subcategory != "" {
			id += "/" + subcategory
		}
	}
	return id
}

// ShortHash returns a 16-hex-digit digest, used wherever an ID component
// risks growing unbounded (long paths, long qualified names).
func ShortHash(parts ...string) string {
	h := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(h[:8])
}
