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

package semantic

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHumanize_CamelCase(t *testing.T) {
	require.Equal(t, "get user profile", Humanize("GetUserProfile"))
}

func TestHumanize_SnakeCase(t *testing.T) {
	require.Equal(t, "parse config file", Humanize("parse_config_file"))
}

func TestHeuristic_KnownPrefixMapsToVerb(t *testing.T) {
	f := Heuristic(EntityInput{Type: "function", Name: "GetUserProfile", FilePath: "pkg/user/service.go"})
	require.Equal(t, "retrieve user profile", f.Description)
}

func TestHeuristic_UnknownPrefixDefaultsToProvideOperation(t *testing.T) {
	f := Heuristic(EntityInput{Type: "function", Name: "Transmogrify", FilePath: "pkg/x/x.go"})
	require.Equal(t, "provide transmogrify operation", f.Description)
}

func TestHeuristic_KeywordsIncludeTypeAndParent(t *testing.T) {
	f := Heuristic(EntityInput{
		Type:     "method",
		Name:     "Save",
		Parent:   "UserRepository",
		FilePath: "pkg/storage/repo.go",
	})
	require.Contains(t, f.Keywords, "method")
	require.Contains(t, f.Keywords, "userrepository")
	require.Contains(t, f.Keywords, "storage")
}

func TestHeuristic_KeywordsAreDeduplicated(t *testing.T) {
	f := Heuristic(EntityInput{Type: "function", Name: "Save", FilePath: "save/save.go"})
	seen := make(map[string]int)
	for _, k := range f.Keywords {
		seen[k]++
	}
	for k, n := range seen {
		require.Equal(t, 1, n, "keyword %q appeared more than once", k)
	}
}
