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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// OllamaConfig configures an Ollama-compatible embeddings HTTP provider.
type OllamaConfig struct {
	BaseURL   string
	Model     string
	Dimension int
	Timeout   time.Duration
	// MaxConcurrency bounds EmbedBatch's per-text fallback fan-out
	// (§5 "bounded worker pools", mirrored from the teacher's worker
	// count parameter). Defaults to 4.
	MaxConcurrency int
}

type ollamaProvider struct {
	baseURL   string
	model     string
	dimension int
	client    *http.Client
	fanout    int
}

// NewOllamaProvider constructs a Provider backed by an Ollama-compatible
// /api/embeddings endpoint.
func NewOllamaProvider(cfg OllamaConfig) Provider {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 120 * time.Second // local models can be slow
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	fanout := cfg.MaxConcurrency
	if fanout <= 0 {
		fanout = 4
	}
	return &ollamaProvider{
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		model:     cfg.Model,
		dimension: cfg.Dimension,
		client:    &http.Client{Timeout: timeout},
		fanout:    fanout,
	}
}

func (o *ollamaProvider) Name() string   { return "ollama" }
func (o *ollamaProvider) Dimension() int { return o.dimension }

type ollamaEmbedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaEmbedResponse struct {
	Embedding []float64 `json:"embedding"`
}

// isNomicModel mirrors the teacher's asymmetric-embedding prefix rule:
// nomic-embed-text-family models want a "search_document:" prefix on
// indexed text to match "search_query:" prefixed queries.
func isNomicModel(model string) bool {
	return strings.Contains(strings.ToLower(model), "nomic")
}

func (o *ollamaProvider) Embed(ctx context.Context, text string) (Vector, error) {
	text = Truncate(text, MaxTokens)
	prompt := text
	if isNomicModel(o.model) {
		prompt = "search_document: " + text
	}

	body, err := json.Marshal(ollamaEmbedRequest{Model: o.model, Prompt: prompt})
	if err != nil {
		return nil, fmt.Errorf("embedding: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("embedding: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding: request to %s: %w", o.baseURL, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("embedding: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embedding: ollama status %d: %s", resp.StatusCode, string(raw))
	}

	var out ollamaEmbedResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("embedding: decode response: %w", err)
	}
	if len(out.Embedding) == 0 {
		return nil, fmt.Errorf("embedding: ollama returned an empty vector")
	}

	v := make(Vector, len(out.Embedding))
	for i, x := range out.Embedding {
		v[i] = float32(x)
	}
	return normalize(v), nil
}

// EmbedBatch has no native batch endpoint on Ollama, so it fans the
// batch out across a bounded worker pool instead of serializing it
// (§6 "batch failure falls back to per-text parallel calls").
func (o *ollamaProvider) EmbedBatch(ctx context.Context, texts []string) ([]Vector, error) {
	out := make([]Vector, len(texts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.fanout)
	for i, t := range texts {
		i, t := i, t
		g.Go(func() error {
			v, err := o.Embed(gctx, t)
			if err != nil {
				return fmt.Errorf("embedding: batch item %d: %w", i, err)
			}
			out[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
