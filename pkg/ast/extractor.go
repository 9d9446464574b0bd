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
	"context"
	"fmt"
	"os"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// walkContext carries the mutable state threaded through one file's walk.
type walkContext struct {
	spec        langSpec
	content     []byte
	filePath    string
	anonCounter int
	entities    []CodeEntity
	imports     []Import
	errs        []error
}

// Parse parses source under language into a language-neutral ParseResult
// (§4.1). It tolerates syntax errors: a best-effort partial result is
// always returned alongside any non-fatal Errors.
func Parse(source []byte, language Language) (ParseResult, error) {
	spec, ok := specs[language]
	if !ok {
		return ParseResult{}, fmt.Errorf("ast: unsupported language %q", language)
	}

	parser := sitter.NewParser()
	parser.SetLanguage(spec.grammar())
	tree, err := parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return ParseResult{}, fmt.Errorf("ast: tree-sitter parse: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	wc := &walkContext{spec: spec, content: source}
	if root.HasError() {
		wc.errs = append(wc.errs, fmt.Errorf("ast: syntax error(s) in source, best-effort result returned"))
	}

	wc.walk(root, nil)
	wc.collectImports(root)

	return ParseResult{Entities: wc.entities, Imports: wc.imports, Errors: wc.errs}, nil
}

// ParseFile reads path, detects its language by extension, and parses it.
// Unsupported extensions return an error; callers (file discovery) are
// expected to filter these out before calling ParseFile.
func ParseFile(path string) (ParseResult, error) {
	lang, ok := DetectLanguage(path)
	if !ok {
		return ParseResult{}, fmt.Errorf("ast: no grammar for %q", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ParseResult{}, fmt.Errorf("ast: read %q: %w", path, err)
	}
	return Parse(data, lang)
}

// walk recurses the parse tree, classifying nodes per the spec's type
// tables and threading `parent` (the enclosing class/struct name, if
// any) down to methods.
func (wc *walkContext) walk(node *sitter.Node, parent *string) {
	if node == nil {
		return
	}
	nodeType := node.Type()

	switch {
	case wc.spec.classTypes[nodeType]:
		name := wc.classNameOf(node)
		if name != "" {
			wc.entities = append(wc.entities, wc.entityFor(node, EntityClass, name, nil, ""))
			parent = &name
		}
	case wc.spec.methodTypes[nodeType]:
		name, params := wc.funcNameAndParams(node)
		if name != "" {
			recv := wc.receiverType(node, parent)
			wc.entities = append(wc.entities, wc.entityFor(node, EntityMethod, name, recv, params))
		}
	case wc.spec.functionTypes[nodeType]:
		name, params := wc.funcNameAndParams(node)
		if name == "" {
			// Arrow/closure bound to a variable adopts the variable's name.
			if v := wc.boundVariableName(node); v != "" {
				wc.entities = append(wc.entities, wc.entityFor(node, EntityFunction, v, parent, params))
			}
			break
		}
		if parent != nil {
			wc.entities = append(wc.entities, wc.entityFor(node, EntityMethod, name, parent, params))
		} else {
			wc.entities = append(wc.entities, wc.entityFor(node, EntityFunction, name, nil, params))
		}
	case wc.spec.anonTypes[nodeType]:
		if v := wc.boundVariableName(node); v != "" {
			wc.entities = append(wc.entities, wc.entityFor(node, EntityFunction, v, parent, ""))
		}
		// Unnamed inline anonymous functions are skipped (§4.1).
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		wc.walk(node.Child(i), parent)
	}
}

// classNameOf extracts a class/struct/impl name. Constructs without a
// `name` field (e.g. Rust `impl`) fall back to the node's type text.
func (wc *walkContext) classNameOf(node *sitter.Node) string {
	if n := node.ChildByFieldName("name"); n != nil {
		return wc.text(n)
	}
	if n := node.ChildByFieldName("type"); n != nil {
		return wc.text(n)
	}
	return node.Type()
}

// funcNameAndParams returns the declared name and raw parameter-list text.
func (wc *walkContext) funcNameAndParams(node *sitter.Node) (string, string) {
	field := wc.spec.nameField
	if field == "" {
		field = "name"
	}
	nameNode := node.ChildByFieldName(field)
	if nameNode == nil {
		nameNode = findChildByType(node, field)
	}
	var name string
	if nameNode != nil {
		name = wc.text(nameNode)
	}
	var params string
	if p := node.ChildByFieldName("parameters"); p != nil {
		params = wc.text(p)
	}
	return name, params
}

// boundVariableName finds the identifier a function-literal expression is
// assigned to, e.g. `const f = () => {}` or `f := func() {}`.
func (wc *walkContext) boundVariableName(node *sitter.Node) string {
	parent := node.Parent()
	if parent == nil {
		return ""
	}
	switch parent.Type() {
	case "variable_declarator", "assignment_expression", "short_var_declaration", "assignment":
		if n := parent.ChildByFieldName("name"); n != nil {
			return wc.text(n)
		}
		if n := parent.ChildByFieldName("left"); n != nil {
			return wc.text(n)
		}
		if parent.ChildCount() > 0 {
			first := parent.Child(0)
			if first.Type() == "identifier" {
				return wc.text(first)
			}
		}
	}
	return ""
}

// receiverType records a method's enclosing class. Go methods carry an
// explicit receiver clause instead of lexical nesting, so it is derived
// from the receiver parameter with any pointer prefix stripped.
func (wc *walkContext) receiverType(node *sitter.Node, lexicalParent *string) *string {
	if recv := node.ChildByFieldName("receiver"); recv != nil {
		txt := wc.text(recv)
		txt = strings.Trim(txt, "()")
		fields := strings.Fields(txt)
		if len(fields) > 0 {
			t := strings.TrimPrefix(fields[len(fields)-1], "*")
			return &t
		}
	}
	return lexicalParent
}

func (wc *walkContext) entityFor(node *sitter.Node, kind EntityType, name string, parent *string, params string) CodeEntity {
	if name == "" {
		name = fmt.Sprintf("$anon_%d", wc.anonCounter)
		wc.anonCounter++
	}
	var parentStr string
	if parent != nil {
		parentStr = *parent
	}
	doc := wc.leadingComment(node)
	start := node.StartPoint()
	end := node.EndPoint()
	return CodeEntity{
		Type:          kind,
		Name:          name,
		StartLine:     int(start.Row) + 1,
		EndLine:       int(end.Row) + 1,
		StartColumn:   int(start.Column) + 1,
		EndColumn:     int(end.Column) + 1,
		Parameters:    params,
		Parent:        parentStr,
		Documentation: doc,
		SourceCode:    wc.text(node),
	}
}

// leadingComment collects a contiguous run of comment siblings
// immediately preceding node, in source order.
func (wc *walkContext) leadingComment(node *sitter.Node) string {
	prev := node.PrevSibling()
	var lines []string
	for prev != nil && prev.Type() == "comment" {
		lines = append([]string{wc.text(prev)}, lines...)
		prev = prev.PrevSibling()
	}
	return strings.Join(lines, "\n")
}

func (wc *walkContext) collectImports(root *sitter.Node) {
	var visit func(n *sitter.Node)
	visit = func(n *sitter.Node) {
		if n == nil {
			return
		}
		if wc.spec.importTypes[n.Type()] {
			wc.imports = append(wc.imports, wc.importFrom(n))
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			visit(n.Child(i))
		}
	}
	visit(root)
}

// importFrom normalizes a single import/use/require statement. Grammars
// that expose only the module path syntactically (Rust `use`, Go
// `import_spec`, Java `import`) leave Names empty, per §4.1.
func (wc *walkContext) importFrom(n *sitter.Node) Import {
	line := int(n.StartPoint().Row) + 1
	if path := n.ChildByFieldName("path"); path != nil {
		return Import{Module: unquote(wc.text(path)), Line: line}
	}
	// Fall back to the full statement text with punctuation stripped,
	// e.g. Python `import os, sys` or JS `import { a, b } from "mod"`.
	txt := wc.text(n)
	if from := strings.LastIndex(txt, "from"); from >= 0 && (strings.Contains(txt[from:], "\"") || strings.Contains(txt[from:], "'")) {
		mod := unquote(strings.TrimSpace(txt[from+4:]))
		names := parseImportNames(txt[:from])
		return Import{Module: mod, Names: names, Line: line}
	}
	return Import{Module: unquote(strings.TrimSuffix(strings.TrimPrefix(txt, "import"), ";")), Line: line}
}

func parseImportNames(clause string) []string {
	clause = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(clause), "import"))
	clause = strings.Trim(clause, "{} ")
	var names []string
	for _, part := range strings.Split(clause, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		names = append(names, part)
	}
	return names
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, ";")
	s = strings.Trim(s, "\"'`")
	return s
}

func (wc *walkContext) text(n *sitter.Node) string {
	return string(wc.content[n.StartByte():n.EndByte()])
}

func findChildByType(node *sitter.Node, typ string) *sitter.Node {
	for i := 0; i < int(node.ChildCount()); i++ {
		c := node.Child(i)
		if c.Type() == typ {
			return c
		}
	}
	return nil
}
