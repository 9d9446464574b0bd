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

// Package callgraph implements the Call/Inheritance Extractors (C2): a
// tree walk that tracks the dot-joined caller context and emits
// CallSite/InheritanceRelation records, plus a TypeInferrer that
// resolves variable receivers to a qualified ClassName.method.
package callgraph

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/kraklabs/rpgraph/pkg/ast"
)

// ReceiverKind classifies the receiver expression of a call (§4.2).
type ReceiverKind string

const (
	ReceiverSelf     ReceiverKind = "self"
	ReceiverSuper    ReceiverKind = "super"
	ReceiverVariable ReceiverKind = "variable"
	ReceiverNone     ReceiverKind = "none"
)

// CallSite is a single call/invocation/new-expression observed while
// walking a function body.
type CallSite struct {
	CallerFile   string
	CallerEntity string // dot-joined caller context, empty at module scope
	CalleeSymbol string
	Line         int
	Receiver     string
	ReceiverKind ReceiverKind
}

// callWalker tracks the caller-context stack while recursing the tree.
type callWalker struct {
	language ast.Language
	content  []byte
	filePath string
	stack    []string
	sites    []CallSite
}

// callNodeTypes identifies, per grammar family, which node types
// represent a call/invocation/new-expression.
var callNodeTypes = map[ast.Language]map[string]bool{
	ast.LangGo:         set("call_expression"),
	ast.LangTypeScript: set("call_expression", "new_expression"),
	ast.LangJavaScript: set("call_expression", "new_expression"),
	ast.LangPython:     set("call"),
	ast.LangRust:       set("call_expression"),
	ast.LangJava:       set("method_invocation", "object_creation_expression"),
	ast.LangC:          set("call_expression"),
	ast.LangCPP:        set("call_expression"),
	ast.LangCSharp:     set("invocation_expression", "object_creation_expression"),
	ast.LangRuby:       set("call", "method_call"),
	ast.LangKotlin:     set("call_expression"),
}

// scopeNodeTypes push a new caller-context segment (class/function/module).
var scopeNodeTypes = map[ast.Language]map[string]bool{
	ast.LangGo:         set("function_declaration", "method_declaration", "type_declaration"),
	ast.LangTypeScript: set("function_declaration", "method_definition", "class_declaration"),
	ast.LangJavaScript: set("function_declaration", "method_definition", "class_declaration"),
	ast.LangPython:     set("function_definition", "class_definition"),
	ast.LangRust:       set("function_item", "impl_item", "trait_item"),
	ast.LangJava:       set("method_declaration", "class_declaration", "interface_declaration"),
	ast.LangC:          set("function_definition"),
	ast.LangCPP:        set("function_definition", "class_specifier"),
	ast.LangCSharp:     set("method_declaration", "class_declaration"),
	ast.LangRuby:       set("method", "class", "module"),
	ast.LangKotlin:     set("function_declaration", "class_declaration"),
}

func set(items ...string) map[string]bool {
	m := make(map[string]bool, len(items))
	for _, i := range items {
		m[i] = true
	}
	return m
}

// Extract walks source and returns every call site, with the enclosing
// caller context tracked as a dot-joined path (§4.2).
func Extract(source []byte, language ast.Language, filePath string) ([]CallSite, error) {
	root, cleanup, err := parseTree(source, language)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	w := &callWalker{language: language, content: source, filePath: filePath}
	w.walk(root)
	return w.sites, nil
}

func (w *callWalker) walk(node *sitter.Node) {
	if node == nil {
		return
	}
	typ := node.Type()

	pushed := false
	if scopeNodeTypes[w.language][typ] {
		if name := scopeName(node, w.content); name != "" {
			w.stack = append(w.stack, name)
			pushed = true
		}
	}

	if callNodeTypes[w.language][typ] {
		w.sites = append(w.sites, w.siteFor(node))
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		w.walk(node.Child(i))
	}

	if pushed {
		w.stack = w.stack[:len(w.stack)-1]
	}
}

func scopeName(node *sitter.Node, content []byte) string {
	n := node.ChildByFieldName("name")
	if n == nil {
		return ""
	}
	return string(content[n.StartByte():n.EndByte()])
}

func (w *callWalker) siteFor(node *sitter.Node) CallSite {
	fn := node.ChildByFieldName("function")
	if fn == nil {
		fn = firstChild(node)
	}
	symbol, receiver, kind := classifyCallee(fn, w.content, w.language)
	return CallSite{
		CallerFile:   w.filePath,
		CallerEntity: strings.Join(w.stack, "."),
		CalleeSymbol: symbol,
		Line:         int(node.StartPoint().Row) + 1,
		Receiver:     receiver,
		ReceiverKind: kind,
	}
}

// classifyCallee splits a callee expression node into (symbol, receiver
// text, receiverKind) per §4.2's classification rules.
func classifyCallee(fn *sitter.Node, content []byte, language ast.Language) (symbol, receiver string, kind ReceiverKind) {
	if fn == nil {
		return "", "", ReceiverNone
	}
	text := func(n *sitter.Node) string { return string(content[n.StartByte():n.EndByte()]) }

	switch fn.Type() {
	case "selector_expression", "member_expression", "field_expression", "attribute":
		obj := fn.ChildByFieldName("operand")
		if obj == nil {
			obj = fn.ChildByFieldName("object")
		}
		if obj == nil {
			obj = fn.ChildByFieldName("value")
		}
		meth := fn.ChildByFieldName("field")
		if meth == nil {
			meth = fn.ChildByFieldName("property")
		}
		if meth == nil {
			meth = fn.ChildByFieldName("attribute")
		}
		if meth != nil {
			symbol = text(meth)
		}
		if obj != nil {
			receiver = text(obj)
			switch receiver {
			case "self", "this":
				return symbol, receiver, ReceiverSelf
			case "super":
				return symbol, receiver, ReceiverSuper
			default:
				return symbol, receiver, ReceiverVariable
			}
		}
		return symbol, "", ReceiverNone
	case "identifier", "field_identifier":
		return text(fn), "", ReceiverNone
	default:
		return text(fn), "", ReceiverNone
	}
}

func firstChild(n *sitter.Node) *sitter.Node {
	if n.ChildCount() == 0 {
		return nil
	}
	return n.Child(0)
}

func parseTree(source []byte, language ast.Language) (*sitter.Node, func(), error) {
	lang, ok := ast.Grammar(language)
	if !ok {
		return nil, func() {}, fmt.Errorf("callgraph: unsupported language %q", language)
	}
	parser := sitter.NewParser()
	parser.SetLanguage(lang)
	tree, err := parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, func() {}, err
	}
	root := tree.RootNode()
	return root, func() { tree.Close() }, nil
}
