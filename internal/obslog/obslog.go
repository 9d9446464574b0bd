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

// Package obslog holds the one piece of process-wide logging state the
// design permits (§5 "Global state... a process-wide log level"): a
// lazily-initialized slog.LevelVar shared by every package that logs,
// plus a helper to fall back to slog.Default() the way the teacher's
// constructors accept an optional *slog.Logger.
package obslog

import (
	"log/slog"
	"sync"
)

var (
	once    sync.Once
	levelVar *slog.LevelVar
)

func level() *slog.LevelVar {
	once.Do(func() { levelVar = new(slog.LevelVar) })
	return levelVar
}

// SetLevel updates the process-wide log level.
func SetLevel(l slog.Level) { level().Set(l) }

// Level returns the current process-wide log level.
func Level() slog.Level { return level().Level() }

// Reset restores the default (Info) level; exposed for tests that need a
// clean process-wide state between runs.
func Reset() { level().Set(slog.LevelInfo) }

// Or returns logger if non-nil, otherwise slog.Default(). Every
// constructor in this module that accepts a *slog.Logger calls this
// instead of special-casing nil at each call site.
func Or(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}
