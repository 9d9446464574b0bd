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

package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

const solutionOpenTag = "<solution>"
const solutionCloseTag = "</solution>"

// ExtractJSON parses raw model output into a JSON object, trying three
// strategies in order (§6 completeJSON contract):
//  1. the whole string is valid JSON;
//  2. a <solution>...</solution> block contains JSON;
//  3. the first top-level {...} substring is JSON.
func ExtractJSON(raw string) (map[string]any, error) {
	trimmed := strings.TrimSpace(raw)

	if obj, err := decodeObject(trimmed); err == nil {
		return obj, nil
	}

	if start := strings.Index(trimmed, solutionOpenTag); start >= 0 {
		end := strings.Index(trimmed, solutionCloseTag)
		if end > start {
			inner := strings.TrimSpace(trimmed[start+len(solutionOpenTag) : end])
			if obj, err := decodeObject(inner); err == nil {
				return obj, nil
			}
			if sub, err := firstBraceObject(inner); err == nil {
				return sub, nil
			}
		}
	}

	if obj, err := firstBraceObject(trimmed); err == nil {
		return obj, nil
	}

	return nil, fmt.Errorf("llm: could not extract JSON object from model output")
}

func decodeObject(s string) (map[string]any, error) {
	var obj map[string]any
	dec := json.NewDecoder(strings.NewReader(s))
	if err := dec.Decode(&obj); err != nil {
		return nil, err
	}
	return obj, nil
}

// firstBraceObject scans for the first balanced {...} substring and
// decodes it, tolerating braces inside string literals.
func firstBraceObject(s string) (map[string]any, error) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return nil, fmt.Errorf("llm: no '{' found")
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
			// no-op: ignore braces inside strings
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return decodeObject(s[start : i+1])
			}
		}
	}
	return nil, fmt.Errorf("llm: unbalanced braces")
}
