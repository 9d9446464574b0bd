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

package hierarchy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kraklabs/rpgraph/pkg/llm"
)

func TestToPascalCase(t *testing.T) {
	require.Equal(t, "UserAuth", toPascalCase("user_auth"))
	require.Equal(t, "Billing", toPascalCase("BILLING"))
	require.Equal(t, "DataPipeline", toPascalCase("data-pipeline"))
	require.Equal(t, "AreaOne", toPascalCase("AreaOne"))
	require.Equal(t, "UserAuth", toPascalCase("UserAuth"))
}

func TestDiscoverDomains_AggregatesByFrequencyThenAlpha(t *testing.T) {
	responses := []string{
		`{"areas": ["Billing", "Auth"]}`,
		`{"areas": ["Auth", "Search"]}`,
		`{"areas": ["Auth", "Billing"]}`,
	}
	call := 0
	client := llm.NewMockClient()
	client.Respond = func(string, string) string {
		r := responses[call%len(responses)]
		call++
		return r
	}

	areas, err := DiscoverDomains(context.Background(), client, []FileFeatureGroup{{Label: "pkg"}}, 3)
	require.NoError(t, err)
	require.Equal(t, []string{"Auth", "Billing", "Search"}, areas)
}

func TestDiscoverDomains_AllIterationsInvalidIsError(t *testing.T) {
	client := llm.NewMockClient()
	client.Respond = func(string, string) string { return `not json` }

	_, err := DiscoverDomains(context.Background(), client, []FileFeatureGroup{{Label: "pkg"}}, 2)
	require.Error(t, err)
}

func TestDiscoverDomains_TruncatesToMaxAreas(t *testing.T) {
	client := llm.NewMockClient()
	client.Respond = func(string, string) string {
		return `{"areas": ["A1","A2","A3","A4","A5","A6","A7","A8","A9","A10"]}`
	}

	areas, err := DiscoverDomains(context.Background(), client, []FileFeatureGroup{{Label: "pkg"}}, 1)
	require.NoError(t, err)
	require.Len(t, areas, MaxAreas)
}
