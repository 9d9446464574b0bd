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
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kraklabs/rpgraph/pkg/rpg"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := Open("")
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestCache_SetThenGet(t *testing.T) {
	c := newTestCache(t)
	entry := Entry{FilePath: "a.go", Type: "function", Name: "Foo", SourceCode: "func Foo() {}"}
	feature := rpg.SemanticFeature{Description: "does foo things", Keywords: []string{"foo"}}

	require.NoError(t, c.Set(entry, feature))

	got, ok, err := c.Get(entry)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, feature, got)
}

func TestCache_Miss(t *testing.T) {
	c := newTestCache(t)
	_, ok, err := c.Get(Entry{FilePath: "missing.go", Type: "function", Name: "Bar"})
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCache_HashMismatchEvictsRow(t *testing.T) {
	c := newTestCache(t)
	entry := Entry{FilePath: "a.go", Type: "function", Name: "Foo", SourceCode: "func Foo() {}"}
	require.NoError(t, c.Set(entry, rpg.SemanticFeature{Description: "v1"}))

	changed := entry
	changed.SourceCode = "func Foo() { return }"

	_, ok, err := c.Get(changed)
	require.NoError(t, err)
	require.False(t, ok, "content change must invalidate the cached row")

	// The original key is now evicted too, since Key() doesn't include SourceCode.
	_, ok, err = c.Get(entry)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCache_ExpiredEntryIsMiss(t *testing.T) {
	c := newTestCache(t).WithTTL(time.Millisecond)
	entry := Entry{FilePath: "a.go", Type: "function", Name: "Foo"}
	require.NoError(t, c.Set(entry, rpg.SemanticFeature{Description: "v1"}))

	time.Sleep(5 * time.Millisecond)

	_, ok, err := c.Get(entry)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCache_Has(t *testing.T) {
	c := newTestCache(t)
	entry := Entry{FilePath: "a.go", Type: "function", Name: "Foo"}

	has, err := c.Has(entry)
	require.NoError(t, err)
	require.False(t, has)

	require.NoError(t, c.Set(entry, rpg.SemanticFeature{Description: "v1"}))

	has, err = c.Has(entry)
	require.NoError(t, err)
	require.True(t, has)
}

func TestCache_Clear(t *testing.T) {
	c := newTestCache(t)
	entry := Entry{FilePath: "a.go", Type: "function", Name: "Foo"}
	require.NoError(t, c.Set(entry, rpg.SemanticFeature{Description: "v1"}))

	require.NoError(t, c.Clear())

	_, ok, err := c.Get(entry)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCache_PurgeOnlyRemovesExpired(t *testing.T) {
	c := newTestCache(t)
	fresh := Entry{FilePath: "fresh.go", Type: "function", Name: "Fresh"}
	stale := Entry{FilePath: "stale.go", Type: "function", Name: "Stale"}
	require.NoError(t, c.Set(fresh, rpg.SemanticFeature{Description: "fresh"}))
	require.NoError(t, c.Set(stale, rpg.SemanticFeature{Description: "stale"}))

	// Backdate stale's created_at well past the TTL window directly.
	_, err := c.db.Exec(`UPDATE semantic_cache SET created_at = ? WHERE key = ?`,
		time.Now().Add(-2*DefaultTTL).Unix(), stale.Key())
	require.NoError(t, err)

	require.NoError(t, c.Purge())

	_, ok, err := c.Get(fresh)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = c.Get(stale)
	require.NoError(t, err)
	require.False(t, ok)
}
