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

import "strings"

// Language identifies one of the eleven supported grammars, covering
// nine language families (§4.1).
type Language string

const (
	LangGo         Language = "go"
	LangTypeScript Language = "typescript"
	LangJavaScript Language = "javascript"
	LangPython     Language = "python"
	LangRust       Language = "rust"
	LangJava       Language = "java"
	LangC          Language = "c"
	LangCPP        Language = "cpp"
	LangCSharp     Language = "csharp"
	LangRuby       Language = "ruby"
	LangKotlin     Language = "kotlin"
)

var extensionLanguage = map[string]Language{
	".go":    LangGo,
	".ts":    LangTypeScript,
	".tsx":   LangTypeScript,
	".js":    LangJavaScript,
	".jsx":   LangJavaScript,
	".mjs":   LangJavaScript,
	".cjs":   LangJavaScript,
	".py":    LangPython,
	".pyi":   LangPython,
	".rs":    LangRust,
	".java":  LangJava,
	".c":     LangC,
	".h":     LangC,
	".cc":    LangCPP,
	".cpp":   LangCPP,
	".cxx":   LangCPP,
	".hpp":   LangCPP,
	".hh":    LangCPP,
	".cs":    LangCSharp,
	".rb":    LangRuby,
	".kt":    LangKotlin,
	".kts":   LangKotlin,
}

// DetectLanguage maps a file path's extension to a Language. The
// second return value is false for extensions with no known grammar.
func DetectLanguage(path string) (Language, bool) {
	idx := strings.LastIndexByte(path, '.')
	if idx < 0 {
		return "", false
	}
	ext := strings.ToLower(path[idx:])
	lang, ok := extensionLanguage[ext]
	return lang, ok
}
