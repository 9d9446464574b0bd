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

package symbols

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kraklabs/rpgraph/pkg/ast"
	"github.com/kraklabs/rpgraph/pkg/callgraph"
)

func TestResolveCall_DirectImport(t *testing.T) {
	r := New()
	r.BuildIndex([]FileInput{
		{Path: "a.ts", Imports: []ast.Import{{Module: "./b", Names: []string{"helper"}}}},
		{Path: "b.ts", Entities: []ast.CodeEntity{{Name: "helper", Type: "function"}}},
	})

	resolved, ok := r.ResolveCall(callgraph.CallSite{CallerFile: "a.ts", CalleeSymbol: "helper"})
	require.True(t, ok)
	require.Equal(t, "b.ts", resolved.File)
}

func TestResolveCall_SameFileFallback(t *testing.T) {
	r := New()
	r.BuildIndex([]FileInput{
		{Path: "a.ts", Entities: []ast.CodeEntity{{Name: "local", Type: "function"}}},
	})

	resolved, ok := r.ResolveCall(callgraph.CallSite{CallerFile: "a.ts", CalleeSymbol: "local"})
	require.True(t, ok)
	require.Equal(t, "a.ts", resolved.File)
}

func TestResolveCall_FirstExporterDeterministic(t *testing.T) {
	r := New()
	r.BuildIndex([]FileInput{
		{Path: "z.ts", Entities: []ast.CodeEntity{{Name: "shared", Type: "function"}}},
		{Path: "a.ts", Entities: []ast.CodeEntity{{Name: "shared", Type: "function"}}},
	})

	resolved, ok := r.ResolveCall(callgraph.CallSite{CallerFile: "caller.ts", CalleeSymbol: "shared"})
	require.True(t, ok)
	require.Equal(t, "a.ts", resolved.File) // lexicographically first
}

func TestResolveCall_FuzzyCaseInsensitive(t *testing.T) {
	r := New()
	r.BuildIndex([]FileInput{
		{Path: "a.ts", Entities: []ast.CodeEntity{{Name: "Helper", Type: "function"}}},
	})

	resolved, ok := r.ResolveCall(callgraph.CallSite{CallerFile: "caller.ts", CalleeSymbol: "helper"})
	require.True(t, ok)
	require.Equal(t, "a.ts", resolved.File)
}

func TestResolveCall_Unresolved(t *testing.T) {
	r := New()
	r.BuildIndex([]FileInput{{Path: "a.ts"}})

	_, ok := r.ResolveCall(callgraph.CallSite{CallerFile: "a.ts", CalleeSymbol: "nowhere"})
	require.False(t, ok)
}

func TestResolveInheritance_DirectImport(t *testing.T) {
	r := New()
	r.BuildIndex([]FileInput{
		{Path: "dog.py", Imports: []ast.Import{{Module: "./animal", Names: []string{"Animal"}}}},
		{Path: "animal.py", Entities: []ast.CodeEntity{{Name: "Animal", Type: "class"}}},
	})

	file, ok := r.ResolveInheritance(callgraph.InheritanceRelation{ChildFile: "dog.py", ParentClass: "Animal"})
	require.True(t, ok)
	require.Equal(t, "animal.py", file)
}

func TestResolveSpecifier_ExternalPackageIsUnresolved(t *testing.T) {
	r := New()
	r.BuildIndex([]FileInput{
		{Path: "a.ts", Imports: []ast.Import{{Module: "lodash", Names: []string{"map"}}}},
	})

	file, ok := r.ImportedFile("a.ts", "map")
	require.False(t, ok)
	require.Empty(t, file)
}

func TestResolveSpecifier_IndexFile(t *testing.T) {
	r := New()
	r.BuildIndex([]FileInput{
		{Path: "src/main.ts", Imports: []ast.Import{{Module: "./utils", Names: []string{"fn"}}}},
		{Path: "src/utils/index.ts", Entities: []ast.CodeEntity{{Name: "fn", Type: "function"}}},
	})

	file, ok := r.ImportedFile("src/main.ts", "fn")
	require.True(t, ok)
	require.Equal(t, "src/utils/index.ts", file)
}
