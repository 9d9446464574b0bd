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

package callgraph

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/kraklabs/rpgraph/pkg/ast"
)

// InheritKind distinguishes an "is-a" relation from an interface/trait
// implementation (§4.2).
type InheritKind string

const (
	KindInherit   InheritKind = "inherit"
	KindImplement InheritKind = "implement"
)

// InheritanceRelation is a single class/parent (or type/trait) edge.
type InheritanceRelation struct {
	ChildFile   string
	ChildClass  string
	ParentClass string
	Kind        InheritKind
}

// ExtractInheritance walks source and returns every inheritance/
// implementation relation, per the language-specific conventions in
// §4.2 (C# first base is inherit, rest are implement; Go embedded
// structs are inherit; Rust `impl Trait for Type` is implement; Java
// extends/implements; Kotlin delegation specifiers).
func ExtractInheritance(source []byte, language ast.Language, filePath string) ([]InheritanceRelation, error) {
	root, cleanup, err := parseTree(source, language)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	var out []InheritanceRelation
	var visit func(n *sitter.Node)
	visit = func(n *sitter.Node) {
		if n == nil {
			return
		}
		out = append(out, relationsFor(n, source, language, filePath)...)
		for i := 0; i < int(n.ChildCount()); i++ {
			visit(n.Child(i))
		}
	}
	visit(root)
	return out, nil
}

func relationsFor(n *sitter.Node, content []byte, language ast.Language, filePath string) []InheritanceRelation {
	text := func(nd *sitter.Node) string { return string(content[nd.StartByte():nd.EndByte()]) }

	switch language {
	case ast.LangTypeScript, ast.LangJavaScript:
		if n.Type() != "class_declaration" && n.Type() != "class" {
			return nil
		}
		child := nameOf(n, content)
		var rels []InheritanceRelation
		if heritage := findChildByType(n, "class_heritage"); heritage != nil {
			for i := 0; i < int(heritage.ChildCount()); i++ {
				c := heritage.Child(i)
				switch c.Type() {
				case "extends_clause":
					if t := typeArg(c, content); t != "" {
						rels = append(rels, InheritanceRelation{filePath, child, t, KindInherit})
					}
				case "implements_clause":
					for _, t := range typeArgs(c, content) {
						rels = append(rels, InheritanceRelation{filePath, child, t, KindImplement})
					}
				}
			}
		}
		return rels

	case ast.LangPython:
		if n.Type() != "class_definition" {
			return nil
		}
		child := nameOf(n, content)
		var rels []InheritanceRelation
		if args := n.ChildByFieldName("superclasses"); args != nil {
			for i := 0; i < int(args.ChildCount()); i++ {
				c := args.Child(i)
				if c.Type() == "identifier" || c.Type() == "attribute" {
					rels = append(rels, InheritanceRelation{filePath, child, text(c), KindInherit})
				}
			}
		}
		return rels

	case ast.LangJava:
		if n.Type() != "class_declaration" {
			return nil
		}
		child := nameOf(n, content)
		var rels []InheritanceRelation
		if sc := n.ChildByFieldName("superclass"); sc != nil {
			rels = append(rels, InheritanceRelation{filePath, child, lastIdent(sc, content), KindInherit})
		}
		if ifaces := n.ChildByFieldName("interfaces"); ifaces != nil {
			for _, t := range typeArgs(ifaces, content) {
				rels = append(rels, InheritanceRelation{filePath, child, t, KindImplement})
			}
		}
		return rels

	case ast.LangCSharp:
		if n.Type() != "class_declaration" {
			return nil
		}
		child := nameOf(n, content)
		bases := baseList(n, content)
		var rels []InheritanceRelation
		for i, b := range bases {
			if i == 0 {
				rels = append(rels, InheritanceRelation{filePath, child, b, KindInherit})
			} else {
				rels = append(rels, InheritanceRelation{filePath, child, b, KindImplement})
			}
		}
		return rels

	case ast.LangGo:
		if n.Type() != "type_spec" {
			return nil
		}
		child := nameOf(n, content)
		structT := n.ChildByFieldName("type")
		if structT == nil || structT.Type() != "struct_type" {
			return nil
		}
		var rels []InheritanceRelation
		fields := findChildByType(structT, "field_declaration_list")
		if fields == nil {
			return nil
		}
		for i := 0; i < int(fields.ChildCount()); i++ {
			f := fields.Child(i)
			if f.Type() != "field_declaration" {
				continue
			}
			if f.ChildByFieldName("name") == nil {
				// embedded field: type with no explicit field name
				if t := f.ChildByFieldName("type"); t != nil {
					embedded := strings.TrimPrefix(text(t), "*")
					rels = append(rels, InheritanceRelation{filePath, child, embedded, KindInherit})
				}
			}
		}
		return rels

	case ast.LangRust:
		if n.Type() != "impl_item" {
			return nil
		}
		traitN := n.ChildByFieldName("trait")
		typeN := n.ChildByFieldName("type")
		if traitN == nil || typeN == nil {
			return nil
		}
		return []InheritanceRelation{{filePath, text(typeN), text(traitN), KindImplement}}

	case ast.LangKotlin:
		if n.Type() != "class_declaration" {
			return nil
		}
		child := nameOf(n, content)
		var rels []InheritanceRelation
		if delegations := findChildByType(n, "delegation_specifiers"); delegations != nil {
			for i := 0; i < int(delegations.ChildCount()); i++ {
				c := delegations.Child(i)
				if c.Type() == "constructor_invocation" {
					rels = append(rels, InheritanceRelation{filePath, child, firstTypeName(c, content), KindInherit})
				} else if c.Type() == "user_type" || c.Type() == "delegation_specifier" {
					rels = append(rels, InheritanceRelation{filePath, child, firstTypeName(c, content), KindImplement})
				}
			}
		}
		return rels
	}
	return nil
}

func findChildByType(n *sitter.Node, typ string) *sitter.Node {
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c.Type() == typ {
			return c
		}
	}
	return nil
}

func nameOf(n *sitter.Node, content []byte) string {
	if nn := n.ChildByFieldName("name"); nn != nil {
		return string(content[nn.StartByte():nn.EndByte()])
	}
	return ""
}

func typeArg(n *sitter.Node, content []byte) string {
	args := typeArgs(n, content)
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func typeArgs(n *sitter.Node, content []byte) []string {
	var out []string
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		switch c.Type() {
		case "identifier", "type_identifier", "generic_type", "scoped_type_identifier":
			out = append(out, string(content[c.StartByte():c.EndByte()]))
		}
	}
	return out
}

func lastIdent(n *sitter.Node, content []byte) string {
	txt := string(content[n.StartByte():n.EndByte()])
	parts := strings.Split(txt, ".")
	return parts[len(parts)-1]
}

func baseList(n *sitter.Node, content []byte) []string {
	base := n.ChildByFieldName("bases")
	if base == nil {
		return nil
	}
	return typeArgs(base, content)
}

func firstTypeName(n *sitter.Node, content []byte) string {
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c.Type() == "user_type" || c.Type() == "type_identifier" || c.Type() == "identifier" {
			return string(content[c.StartByte():c.EndByte()])
		}
	}
	return string(content[n.StartByte():n.EndByte()])
}
