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
	"context"
	"sync"
)

// MockClient is a deterministic, offline Client used by tests and by
// callers who have not configured a real provider but still want the
// LLM-shaped code paths exercised.
type MockClient struct {
	// Respond, if set, computes the raw text response for a given user
	// prompt. Defaults to echoing an empty JSON object.
	Respond func(user, system string) string

	mu    sync.Mutex
	stats UsageStats
}

// NewMockClient constructs a MockClient with the default echo responder.
func NewMockClient() *MockClient {
	return &MockClient{Respond: func(string, string) string { return `{}` }}
}

func (m *MockClient) Name() string { return "mock" }

func (m *MockClient) record(prompt, completion string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats.Requests++
	m.stats.PromptTokens += estimateTokens(prompt)
	m.stats.CompletionTokens += estimateTokens(completion)
}

func (m *MockClient) Complete(_ context.Context, user, system string) (CompletionResult, error) {
	out := m.Respond(user, system)
	m.record(user+system, out)
	return CompletionResult{Content: out, Model: "mock"}, nil
}

func (m *MockClient) CompleteJSON(_ context.Context, user, system string, _ any) (map[string]any, Usage, error) {
	out := m.Respond(user, system)
	m.record(user+system, out)
	obj, err := ExtractJSON(out)
	if err != nil {
		return nil, Usage{}, nil //nolint:nilerr // §6: malformed JSON is not itself an error, caller retries/falls back
	}
	return obj, Usage{PromptTokens: estimateTokens(user + system), CompletionTokens: estimateTokens(out)}, nil
}

func (m *MockClient) UsageStats() UsageStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats
}

func (m *MockClient) EstimateCost(stats UsageStats) float64 {
	return 0 // mock provider is always free
}

func estimateTokens(s string) int {
	if len(s) == 0 {
		return 0
	}
	return len(s)/4 + 1
}
