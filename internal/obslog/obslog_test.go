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

package obslog

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetLevel_PersistsProcessWide(t *testing.T) {
	t.Cleanup(Reset)

	require.Equal(t, slog.LevelInfo, Level())
	SetLevel(slog.LevelDebug)
	require.Equal(t, slog.LevelDebug, Level())
}

func TestReset_RestoresInfo(t *testing.T) {
	t.Cleanup(Reset)

	SetLevel(slog.LevelError)
	Reset()
	require.Equal(t, slog.LevelInfo, Level())
}

func TestOr_ReturnsGivenLoggerWhenNonNil(t *testing.T) {
	logger := slog.Default()
	require.Same(t, logger, Or(logger))
}

func TestOr_FallsBackToDefaultWhenNil(t *testing.T) {
	require.Same(t, slog.Default(), Or(nil))
}
