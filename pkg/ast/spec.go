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

package ast

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
	"github.com/smacker/go-tree-sitter/csharp"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/kotlin"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/ruby"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// langSpec is the node-type table a single grammar is classified
// through. Node types vary across grammars (there is no shared
// Tree-sitter vocabulary), so every language gets its own set built
// from that grammar's published node kinds.
type langSpec struct {
	grammar func() *sitter.Language

	functionTypes map[string]bool // free function declarations
	methodTypes   map[string]bool // declarations that are always methods (have their own node type)
	classTypes    map[string]bool // class/struct/interface/trait-like scopes
	anonTypes     map[string]bool // arrow/lambda/closure literals
	importTypes   map[string]bool // import/use/require statements

	// nameField is the field holding the declaration's identifier, for
	// grammars that expose one uniformly.
	nameField string
}

var specs = map[Language]langSpec{
	LangGo: {
		grammar:       golang.GetLanguage,
		functionTypes: set("function_declaration"),
		methodTypes:   set("method_declaration"),
		classTypes:    set("type_spec"),
		anonTypes:     set("func_literal"),
		importTypes:   set("import_spec"),
		nameField:     "name",
	},
	LangTypeScript: {
		grammar:       typescript.GetLanguage,
		functionTypes: set("function_declaration"),
		methodTypes:   set("method_definition"),
		classTypes:    set("class_declaration", "interface_declaration"),
		anonTypes:     set("arrow_function", "function_expression"),
		importTypes:   set("import_statement"),
		nameField:     "name",
	},
	LangJavaScript: {
		grammar:       javascript.GetLanguage,
		functionTypes: set("function_declaration"),
		methodTypes:   set("method_definition"),
		classTypes:    set("class_declaration"),
		anonTypes:     set("arrow_function", "function_expression"),
		importTypes:   set("import_statement"),
		nameField:     "name",
	},
	LangPython: {
		grammar:       python.GetLanguage,
		functionTypes: set("function_definition"),
		classTypes:    set("class_definition"),
		anonTypes:     set("lambda"),
		importTypes:   set("import_statement", "import_from_statement"),
		nameField:     "name",
	},
	LangRust: {
		grammar:       rust.GetLanguage,
		functionTypes: set("function_item"),
		classTypes:    set("impl_item", "struct_item", "trait_item"),
		anonTypes:     set("closure_expression"),
		importTypes:   set("use_declaration"),
		nameField:     "name",
	},
	LangJava: {
		grammar:       java.GetLanguage,
		methodTypes:   set("method_declaration"),
		classTypes:    set("class_declaration", "interface_declaration", "enum_declaration"),
		anonTypes:     set("lambda_expression"),
		importTypes:   set("import_declaration"),
		nameField:     "name",
	},
	LangC: {
		grammar:       c.GetLanguage,
		functionTypes: set("function_definition"),
		classTypes:    set("struct_specifier"),
		importTypes:   set("preproc_include"),
	},
	LangCPP: {
		grammar:       cpp.GetLanguage,
		functionTypes: set("function_definition"),
		classTypes:    set("class_specifier", "struct_specifier"),
		importTypes:   set("preproc_include"),
	},
	LangCSharp: {
		grammar:       csharp.GetLanguage,
		methodTypes:   set("method_declaration"),
		classTypes:    set("class_declaration", "interface_declaration", "struct_declaration"),
		anonTypes:     set("lambda_expression", "anonymous_method_expression"),
		importTypes:   set("using_directive"),
		nameField:     "name",
	},
	LangRuby: {
		grammar:       ruby.GetLanguage,
		methodTypes:   set("method"),
		classTypes:    set("class", "module"),
		anonTypes:     set("lambda"),
		nameField:     "name",
	},
	LangKotlin: {
		grammar:       kotlin.GetLanguage,
		functionTypes: set("function_declaration"),
		classTypes:    set("class_declaration", "object_declaration"),
		anonTypes:     set("lambda_literal", "anonymous_function"),
		importTypes:   set("import_header"),
		nameField:     "simple_identifier",
	},
}

// Grammar exposes the Tree-sitter grammar for language, for callers
// outside this package (C2's call/inheritance walkers) that need to
// parse the same source a second time for a different traversal.
func Grammar(language Language) (*sitter.Language, bool) {
	spec, ok := specs[language]
	if !ok {
		return nil, false
	}
	return spec.grammar(), true
}

func set(items ...string) map[string]bool {
	out := make(map[string]bool, len(items))
	for _, i := range items {
		out[i] = true
	}
	return out
}
