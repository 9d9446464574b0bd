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

// Package discover implements File Discovery (C6): a git-aware file
// enumeration with glob include/exclude and a depth cap (§4.6).
package discover

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kraklabs/rpgraph/internal/gitutil"
)

// DefaultInclude is the fixed list of source-file globs discovery
// matches by default (§4.6).
var DefaultInclude = []string{
	"**/*.go", "**/*.ts", "**/*.tsx", "**/*.js", "**/*.jsx", "**/*.mjs", "**/*.cjs",
	"**/*.py", "**/*.pyi", "**/*.rs", "**/*.java", "**/*.c", "**/*.h",
	"**/*.cc", "**/*.cpp", "**/*.cxx", "**/*.hpp", "**/*.hh",
	"**/*.cs", "**/*.rb", "**/*.kt", "**/*.kts",
}

// DefaultExclude is the fixed list of default exclusion globs (§4.6).
var DefaultExclude = []string{"**/node_modules/**", "**/dist/**", "**/.git/**"}

// DefaultMaxDepth is the default recursion depth cap (§4.6).
const DefaultMaxDepth = 10

// Options configures Discover.
type Options struct {
	Include          []string
	Exclude          []string
	MaxDepth         int
	RespectGitignore bool
}

func (o Options) normalized() Options {
	if len(o.Include) == 0 {
		o.Include = DefaultInclude
	}
	if len(o.Exclude) == 0 {
		o.Exclude = DefaultExclude
	}
	if o.MaxDepth <= 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	return o
}

// Result is the outcome of Discover: the sorted absolute-path list plus
// any non-fatal warnings (§7 DiscoveryFailed: "continues with empty file
// set" on failure, never aborts the caller).
type Result struct {
	Files    []string
	Warnings []string
}

// Discover enumerates source files under repoPath per opts (§4.6). When
// RespectGitignore is set, it prefers `git ls-files`; if repoPath is not
// a git repo, or git is missing, it warns and falls back to a bounded
// recursive walk applying the same filters.
func Discover(ctx context.Context, repoPath string, opts Options) Result {
	opts = opts.normalized()

	if opts.RespectGitignore {
		if gitutil.IsRepo(ctx, repoPath) {
			if files, err := gitutil.LsFiles(ctx, repoPath); err == nil {
				return Result{Files: filterAndSort(files, repoPath, opts)}
			} else {
				return Result{
					Files:    walkFallback(repoPath, opts),
					Warnings: []string{"discover: git ls-files failed, falling back to directory walk: " + err.Error()},
				}
			}
		}
		return Result{
			Files:    walkFallback(repoPath, opts),
			Warnings: []string{"discover: " + repoPath + " is not a git repository, falling back to directory walk"},
		}
	}
	return Result{Files: walkFallback(repoPath, opts)}
}

func filterAndSort(relFiles []string, repoPath string, opts Options) []string {
	var out []string
	for _, rel := range relFiles {
		if !matchesInclude(rel, opts.Include) || matchesAny(rel, opts.Exclude) {
			continue
		}
		if depthOf(rel) > opts.MaxDepth {
			continue
		}
		out = append(out, filepath.Join(repoPath, rel))
	}
	sort.Strings(out)
	return out
}

func walkFallback(repoPath string, opts Options) []string {
	var out []string
	filepath.WalkDir(repoPath, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		rel, relErr := filepath.Rel(repoPath, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}
		if d.IsDir() {
			if matchesAny(rel+"/", opts.Exclude) || depthOf(rel) > opts.MaxDepth {
				return filepath.SkipDir
			}
			return nil
		}
		if depthOf(rel) > opts.MaxDepth {
			return nil
		}
		if !matchesInclude(rel, opts.Include) || matchesAny(rel, opts.Exclude) {
			return nil
		}
		out = append(out, path)
		return nil
	})
	sort.Strings(out)
	return out
}

func depthOf(relPath string) int {
	return strings.Count(relPath, "/")
}

func matchesInclude(relPath string, globs []string) bool {
	return matchesAny(relPath, globs)
}

func matchesAny(relPath string, globs []string) bool {
	for _, g := range globs {
		if globMatch(g, relPath) {
			return true
		}
	}
	return false
}

// globMatch implements a minimal "**"-aware glob: "**/" matches any
// number of leading path segments (including none), and the remaining
// pattern is matched with filepath.Match segment-by-segment.
func globMatch(pattern, path string) bool {
	pattern = strings.TrimSuffix(pattern, "/")
	path = strings.TrimSuffix(path, "/")

	pParts := strings.Split(pattern, "/")
	sParts := strings.Split(path, "/")
	return matchParts(pParts, sParts)
}

func matchParts(pattern, path []string) bool {
	if len(pattern) == 0 {
		return len(path) == 0
	}
	if pattern[0] == "**" {
		if len(pattern) == 1 {
			return true
		}
		for i := 0; i <= len(path); i++ {
			if matchParts(pattern[1:], path[i:]) {
				return true
			}
		}
		return false
	}
	if len(path) == 0 {
		return false
	}
	ok, err := filepath.Match(pattern[0], path[0])
	if err != nil || !ok {
		return false
	}
	return matchParts(pattern[1:], path[1:])
}
