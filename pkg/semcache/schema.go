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

// Package semcache implements the Semantic Cache (C4): a persistent,
// content-hashed, TTL'd store of extracted SemanticFeatures, keyed by
// "{filePath}:{type}:{name}" (§4.4).
package semcache

const schemaDDL = `
CREATE TABLE IF NOT EXISTS semantic_cache (
	key        TEXT PRIMARY KEY,
	feature    TEXT NOT NULL,
	hash       TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_semantic_cache_created_at ON semantic_cache(created_at);
`
