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

package warnings

import (
	"testing"

	"github.com/stretchr/testify/require"

	rpgerrors "github.com/kraklabs/rpgraph/internal/errors"
)

func TestCollector_AddAccumulatesAndDrainResets(t *testing.T) {
	c := NewCollector()
	c.Add("semantic_lifting", rpgerrors.KindExtractionFailed, "boom", "a.go:function:Foo")
	c.Add("grounding_wiring", rpgerrors.KindInjectionFailed, "nope", "b.go")

	require.Equal(t, 2, c.Len())

	drained := c.Drain()
	require.Len(t, drained, 2)
	require.Equal(t, "semantic_lifting", drained[0].Phase)
	require.Equal(t, rpgerrors.KindExtractionFailed, drained[0].Kind)
	require.NotEmpty(t, drained[0].ID)

	require.Zero(t, c.Len(), "Drain resets the collector")
}

func TestCollector_AddErr_RecoverableKindRecorded(t *testing.T) {
	c := NewCollector()
	err := rpgerrors.New(rpgerrors.KindDiscoveryFailed, "discovery failed", "cause", "fix", nil)

	require.NotPanics(t, func() {
		c.AddErr("reorganization", err, "")
	})
	require.Equal(t, 1, c.Len())
}

func TestCollector_AddErr_NonRecoverableKindPanics(t *testing.T) {
	c := NewCollector()
	err := rpgerrors.New(rpgerrors.KindFatal, "boom", "", "", nil)

	require.Panics(t, func() {
		c.AddErr("reorganization", err, "")
	})
}

func TestCollector_Drain_EmptyReturnsNil(t *testing.T) {
	c := NewCollector()
	require.Empty(t, c.Drain())
}
