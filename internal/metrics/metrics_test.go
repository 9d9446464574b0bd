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

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRegistry_ReturnsSameSingleton(t *testing.T) {
	require.Same(t, Registry(), Registry())
}

func TestRegistry_CountersAreUsable(t *testing.T) {
	before := testutil.ToFloat64(Registry().FilesDiscovered)
	Registry().FilesDiscovered.Add(3)
	require.Equal(t, before+3, testutil.ToFloat64(Registry().FilesDiscovered))
}

func TestRegistry_WarningsByKindIsVectored(t *testing.T) {
	Registry().WarningsByKind.WithLabelValues("extraction_failed").Inc()
	require.Equal(t, float64(1), testutil.ToFloat64(Registry().WarningsByKind.WithLabelValues("extraction_failed")))
}
