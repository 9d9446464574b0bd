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

// Package llm defines the LLMClient external-collaborator contract
// (spec §1, §6): the encoder pipeline only ever talks to this interface,
// never to a specific vendor SDK directly, keeping LLM providers
// pluggable.
package llm

import (
	"context"
	"time"
)

// Usage reports token accounting for a single request, matching the
// teacher's GenerateResponse token fields.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
}

// CompletionResult is the return value of Complete.
type CompletionResult struct {
	Content string
	Usage   Usage
	Model   string
}

// Client is the pluggable LLM contract every phase that needs an LLM
// depends on (§6 "LLMClient contract").
type Client interface {
	// Complete produces a free-text completion for user content under
	// the given system prompt.
	Complete(ctx context.Context, user, system string) (CompletionResult, error)

	// CompleteJSON requests a completion and parses it as JSON, robustly:
	// plain JSON, a <solution>...</solution> block, or the first {...}
	// substring. schema is an opaque JSON-schema-shaped value used by
	// callers that want to validate structurally; CompleteJSON itself
	// only guarantees syntactic JSON, callers validate semantically.
	// Returns (nil, nil) when the model could not produce valid JSON
	// after the caller's own retry budget — it is not an error by
	// itself, callers decide whether to retry or fall back.
	CompleteJSON(ctx context.Context, user, system string, schema any) (map[string]any, Usage, error)

	// UsageStats reports cumulative prompt/completion tokens and request
	// count since the client was constructed.
	UsageStats() UsageStats

	// EstimateCost returns the provider-specific cost in USD for the
	// given cumulative usage.
	EstimateCost(stats UsageStats) float64

	// Name identifies the provider ("ollama", "openai", "anthropic",
	// "mock", ...).
	Name() string
}

// UsageStats accumulates token usage and request counts across the
// lifetime of a Client.
type UsageStats struct {
	PromptTokens     int
	CompletionTokens int
	Requests         int
}

// RequestTimeout bounds a single outbound LLM call; every provider
// implementation is expected to respect ctx deadlines in addition to
// this default when the caller supplies no deadline.
const RequestTimeout = 60 * time.Second
