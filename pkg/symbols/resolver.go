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

// Package symbols implements the Symbol Resolver (C3): an exports/
// imports table built over all parsed files, used to resolve calls and
// inheritance relations to a defining file (§4.3).
package symbols

import (
	"path/filepath"
	"strings"

	"github.com/kraklabs/rpgraph/pkg/ast"
	"github.com/kraklabs/rpgraph/pkg/callgraph"
)

// candidateExtensions are tried, in order, against the known-files set
// when resolving a relative import specifier (§4.3).
var candidateExtensions = []string{".ts", ".tsx", ".js", ".jsx", ".py", ""}

// Resolver builds exports/imports tables over a repository's parsed
// files and resolves calls/inheritance to a defining file.
type Resolver struct {
	// exports: symbol -> set of files that define it.
	exports map[string]map[string]bool
	// imports: file -> importedName -> resolved file ("" if external).
	imports map[string]map[string]string
	// known is the full set of file paths in the repository, used for
	// extension-guessing during import resolution.
	known map[string]bool
}

// New returns an empty Resolver.
func New() *Resolver {
	return &Resolver{
		exports: make(map[string]map[string]bool),
		imports: make(map[string]map[string]string),
		known:   make(map[string]bool),
	}
}

// FileInput bundles one file's parsed entities/imports for indexing.
type FileInput struct {
	Path     string
	Entities []ast.CodeEntity
	Imports  []ast.Import
}

// BuildIndex constructs the exports and imports tables from every
// parsed file in the repository (§4.3, two passes).
func (r *Resolver) BuildIndex(files []FileInput) {
	for _, f := range files {
		r.known[f.Path] = true
	}
	// Pass 1: exports.
	for _, f := range files {
		for _, e := range f.Entities {
			if e.Parent != "" {
				continue // methods are addressed via their class, not as bare exports
			}
			if r.exports[e.Name] == nil {
				r.exports[e.Name] = make(map[string]bool)
			}
			r.exports[e.Name][f.Path] = true
		}
	}
	// Pass 2: imports, resolved against the known-files set.
	for _, f := range files {
		resolved := make(map[string]string)
		for _, imp := range f.Imports {
			target := r.resolveSpecifier(f.Path, imp.Module)
			if len(imp.Names) == 0 {
				resolved[imp.Module] = target
				continue
			}
			for _, name := range imp.Names {
				resolved[name] = target
			}
		}
		r.imports[f.Path] = resolved
	}
}

// resolveSpecifier implements §4.3's relative-import resolution: a
// specifier starting with "." or "/" joins to the importer's directory;
// candidate extensions and index.* are tried against the known-files
// set; non-relative specifiers are external (returns "").
func (r *Resolver) resolveSpecifier(importerFile, specifier string) string {
	if specifier == "" {
		return ""
	}
	if !strings.HasPrefix(specifier, ".") && !strings.HasPrefix(specifier, "/") {
		return "" // external package
	}
	dir := filepath.Dir(importerFile)
	joined := filepath.ToSlash(filepath.Clean(filepath.Join(dir, specifier)))

	for _, ext := range candidateExtensions {
		candidate := joined + ext
		if r.known[candidate] {
			return candidate
		}
	}
	for _, ext := range candidateExtensions {
		candidate := filepath.ToSlash(filepath.Join(joined, "index"+ext))
		if r.known[candidate] {
			return candidate
		}
	}
	return ""
}

// ResolvedCall is the outcome of resolving a CallSite to a file.
type ResolvedCall struct {
	Call callgraph.CallSite
	File string
}

// ResolveCall locates the file defining call.CalleeSymbol, trying in
// order: (a) a direct import in the caller file, (b) a symbol defined
// in the caller file itself, (c) any exporting file (deterministic
// first), (d) a case-insensitive fuzzy retry. Returns false if none
// match — unresolved calls are silently dropped (§4.3).
func (r *Resolver) ResolveCall(call callgraph.CallSite) (ResolvedCall, bool) {
	symbol := call.CalleeSymbol
	if file, ok := r.imports[call.CallerFile][symbol]; ok && file != "" {
		return ResolvedCall{Call: call, File: file}, true
	}
	if r.exports[symbol][call.CallerFile] {
		return ResolvedCall{Call: call, File: call.CallerFile}, true
	}
	if file, ok := r.firstExporter(symbol); ok {
		return ResolvedCall{Call: call, File: file}, true
	}
	if file, ok := r.fuzzyExporter(symbol); ok {
		return ResolvedCall{Call: call, File: file}, true
	}
	return ResolvedCall{}, false
}

// ResolveInheritance resolves an InheritanceRelation's parent class to
// a defining file using the same order as ResolveCall.
func (r *Resolver) ResolveInheritance(rel callgraph.InheritanceRelation) (string, bool) {
	if file, ok := r.imports[rel.ChildFile][rel.ParentClass]; ok && file != "" {
		return file, true
	}
	if r.exports[rel.ParentClass][rel.ChildFile] {
		return rel.ChildFile, true
	}
	if file, ok := r.firstExporter(rel.ParentClass); ok {
		return file, true
	}
	return r.fuzzyExporter(rel.ParentClass)
}

func (r *Resolver) firstExporter(symbol string) (string, bool) {
	files := r.exports[symbol]
	if len(files) == 0 {
		return "", false
	}
	best := ""
	for f := range files {
		if best == "" || f < best {
			best = f
		}
	}
	return best, true
}

func (r *Resolver) fuzzyExporter(symbol string) (string, bool) {
	lower := strings.ToLower(symbol)
	best := ""
	for name, files := range r.exports {
		if strings.ToLower(name) != lower {
			continue
		}
		for f := range files {
			if best == "" || f < best {
				best = f
			}
		}
	}
	return best, best != ""
}

// ImportedFile returns the resolved file for name imported by file, and
// whether the import resolved to a known in-repo file.
func (r *Resolver) ImportedFile(file, name string) (string, bool) {
	target, ok := r.imports[file][name]
	return target, ok && target != ""
}

// FileImports returns the full resolved import map for file.
func (r *Resolver) FileImports(file string) map[string]string {
	return r.imports[file]
}
