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

package semcache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/kraklabs/rpgraph/pkg/rpg"
)

// DefaultTTL is the cache entry lifetime before a hit is treated as a
// miss and the row is purged (§4.4).
const DefaultTTL = 7 * 24 * time.Hour

// Entry is the input to a cache write: the identity fields that compose
// both the key and the content hash.
type Entry struct {
	FilePath      string
	Type          string
	Name          string
	Parent        string
	SourceCode    string
	Documentation string
}

// Key implements §4.4's key grammar: "{filePath}:{type}:{name}".
func (e Entry) Key() string {
	return fmt.Sprintf("%s:%s:%s", e.FilePath, e.Type, e.Name)
}

// Hash returns the 16-hex-digit content digest over
// (filePath | type | name | parent | sourceCode | documentation).
func (e Entry) Hash() string {
	h := sha256.Sum256([]byte(strings.Join([]string{
		e.FilePath, e.Type, e.Name, e.Parent, e.SourceCode, e.Documentation,
	}, "|")))
	return hex.EncodeToString(h[:8])
}

// Cache is a persistent, concurrency-safe key/feature/hash/created_at
// store (§4.4). Reads that miss on hash or exceed TTL delete the row
// and report a miss; writes are upsert.
type Cache struct {
	db  *sql.DB
	mu  sync.Mutex
	ttl time.Duration
}

// Open creates (if absent) and opens the SQLite-backed cache at path.
// An empty path opens an in-memory cache (useful for tests).
func Open(path string) (*Cache, error) {
	if path == "" {
		path = ":memory:"
	} else if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("semcache: mkdir %q: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("semcache: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // modernc.org/sqlite is not safe for concurrent writers
	if _, err := db.Exec(schemaDDL); err != nil {
		db.Close()
		return nil, fmt.Errorf("semcache: migrate schema: %w", err)
	}
	return &Cache{db: db, ttl: DefaultTTL}, nil
}

// WithTTL overrides the default 7-day TTL; returns c for chaining.
func (c *Cache) WithTTL(ttl time.Duration) *Cache {
	c.ttl = ttl
	return c
}

// Get returns the cached feature for entry iff present, hash-matching,
// and within TTL. A stale or hash-mismatched row is purged and Get
// reports a miss (§4.4).
func (c *Cache) Get(entry Entry) (rpg.SemanticFeature, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var featureJSON, hash string
	var createdAt int64
	row := c.db.QueryRow(`SELECT feature, hash, created_at FROM semantic_cache WHERE key = ?`, entry.Key())
	if err := row.Scan(&featureJSON, &hash, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return rpg.SemanticFeature{}, false, nil
		}
		return rpg.SemanticFeature{}, false, fmt.Errorf("semcache: get %q: %w", entry.Key(), err)
	}

	expired := c.ttl > 0 && time.Since(time.Unix(createdAt, 0)) > c.ttl
	if hash != entry.Hash() || expired {
		if _, err := c.db.Exec(`DELETE FROM semantic_cache WHERE key = ?`, entry.Key()); err != nil {
			return rpg.SemanticFeature{}, false, fmt.Errorf("semcache: evict %q: %w", entry.Key(), err)
		}
		return rpg.SemanticFeature{}, false, nil
	}

	var feature rpg.SemanticFeature
	if err := json.Unmarshal([]byte(featureJSON), &feature); err != nil {
		return rpg.SemanticFeature{}, false, fmt.Errorf("semcache: decode %q: %w", entry.Key(), err)
	}
	return feature, true, nil
}

// Set upserts entry's feature into the cache with the current time and
// entry's content hash.
func (c *Cache) Set(entry Entry, feature rpg.SemanticFeature) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	buf, err := json.Marshal(feature)
	if err != nil {
		return fmt.Errorf("semcache: encode %q: %w", entry.Key(), err)
	}
	_, err = c.db.Exec(`
		INSERT INTO semantic_cache (key, feature, hash, created_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET feature = excluded.feature, hash = excluded.hash, created_at = excluded.created_at
	`, entry.Key(), string(buf), entry.Hash(), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("semcache: set %q: %w", entry.Key(), err)
	}
	return nil
}

// Has reports whether key is present and fresh, without returning it.
func (c *Cache) Has(entry Entry) (bool, error) {
	_, ok, err := c.Get(entry)
	return ok, err
}

// Clear removes every row.
func (c *Cache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := c.db.Exec(`DELETE FROM semantic_cache`)
	return err
}

// Purge removes every row older than TTL, regardless of hash match.
func (c *Cache) Purge() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	cutoff := time.Now().Add(-c.ttl).Unix()
	_, err := c.db.Exec(`DELETE FROM semantic_cache WHERE created_at < ?`, cutoff)
	return err
}

// Close releases the underlying database handle. Writes are already
// durable at the point of Set, so Save is a documented no-op (§4.4).
func (c *Cache) Close() error { return c.db.Close() }

// Save is a no-op: every write is already durable (§4.4).
func (c *Cache) Save() error { return nil }
