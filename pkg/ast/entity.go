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

// Package ast implements the AST Extractor (C1): parsing source files
// into language-neutral CodeEntity/Import records via Tree-sitter.
// Language detection is by extension; Parse and ParseFile return an
// error for a language or extension that has no grammar.
package ast

// EntityType classifies an extracted code unit.
type EntityType string

const (
	EntityFunction EntityType = "function"
	EntityClass    EntityType = "class"
	EntityMethod   EntityType = "method"
)

// CodeEntity is the AST-level record produced for each parsed unit
// (§3). Lines are 1-indexed and end-inclusive; columns are 1-indexed
// and EndColumn is one past the last character.
type CodeEntity struct {
	Type          EntityType
	Name          string
	StartLine     int
	EndLine       int
	StartColumn   int
	EndColumn     int
	Parameters    string
	Parent        string // enclosing class/struct name, empty if none
	Documentation string
	SourceCode    string
}

// Import is the normalized form of a source import/use/require
// statement (§4.1): "module" plus the symbols imported from it, when
// the language's grammar exposes them syntactically.
type Import struct {
	Module string
	Names  []string
	Line   int
}

// ParseResult is the output of Parse/ParseFile (§4.1).
type ParseResult struct {
	Entities []CodeEntity
	Imports  []Import
	// Errors records non-fatal syntax issues Tree-sitter tolerated;
	// parsing always returns a best-effort partial result alongside them.
	Errors []error
}
