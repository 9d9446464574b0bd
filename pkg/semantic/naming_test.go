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

package semantic

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateFeatureName_StripsImplementationTokens(t *testing.T) {
	desc, sub := ValidateFeatureName("loop while iterate validate the input array")
	require.Equal(t, "validate the input", desc)
	require.Empty(t, sub)
}

func TestValidateFeatureName_SplitsConjunctionWithAction(t *testing.T) {
	desc, sub := ValidateFeatureName("validate the input and persist the record")
	require.Equal(t, "validate the input", desc)
	require.Equal(t, []string{"persist the record"}, sub)
}

func TestValidateFeatureName_NoSplitWhenRestIsNotAction(t *testing.T) {
	desc, sub := ValidateFeatureName("validate the input and its metadata")
	require.Equal(t, "validate the input and its metadata", desc)
	require.Empty(t, sub)
}

func TestValidateFeatureName_ReplacesVagueVerb(t *testing.T) {
	desc, _ := ValidateFeatureName("handle the incoming request")
	require.Equal(t, "dispatch the incoming request", desc)
}

func TestValidateFeatureName_DealWithIsResolve(t *testing.T) {
	desc, _ := ValidateFeatureName("deal with the error")
	require.Equal(t, "resolve the error", desc)
}

func TestValidateFeatureName_TruncatesToEightWords(t *testing.T) {
	desc, _ := ValidateFeatureName("one two three four five six seven eight nine ten")
	require.Equal(t, "one two three four five six seven eight", desc)
}

func TestValidateFeatureName_Idempotent(t *testing.T) {
	desc1, sub1 := ValidateFeatureName("handle the incoming request and persist the record")
	desc2, sub2 := ValidateFeatureName(desc1)
	require.Equal(t, desc1, desc2)
	require.Empty(t, sub2, "already-validated description has no further conjunction to split")
	_ = sub1
}
