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

package embedding

import (
	"context"
)

// MockProvider produces deterministic, content-hashed embeddings. It is
// not semantically meaningful, only stable: the same text always
// yields the same vector, which is what drift computation and the
// encoder's tests need.
type MockProvider struct {
	dimension int
}

// NewMockProvider constructs a MockProvider with the given fixed
// dimension (defaults to 32 if dimension <= 0).
func NewMockProvider(dimension int) *MockProvider {
	if dimension <= 0 {
		dimension = 32
	}
	return &MockProvider{dimension: dimension}
}

func (m *MockProvider) Name() string   { return "mock" }
func (m *MockProvider) Dimension() int { return m.dimension }

func (m *MockProvider) Embed(_ context.Context, text string) (Vector, error) {
	text = Truncate(text, MaxTokens)
	hash := fnv1aString(text)
	v := make(Vector, m.dimension)
	for i := range v {
		val := float32((hash+uint64(i)*2654435761)%10000) / 10000.0
		v[i] = val*2.0 - 1.0
	}
	return normalize(v), nil
}

func (m *MockProvider) EmbedBatch(ctx context.Context, texts []string) ([]Vector, error) {
	return embedBatchSequentialFallback(ctx, m, texts)
}

// fnv1aString implements the FNV-1a 64-bit hash, used only to seed
// deterministic mock vectors.
func fnv1aString(s string) uint64 {
	const offset64 = 14695981039346656037
	const prime64 = 1099511628211
	h := uint64(offset64)
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= prime64
	}
	return h
}
