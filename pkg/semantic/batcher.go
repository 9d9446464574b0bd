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
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/kraklabs/rpgraph/pkg/rpg"
)

// Default batching thresholds (§4.5).
const (
	DefaultMaxBatchTokens = 50_000
	DefaultMinBatchTokens = 10_000
)

// BatchOptions configures token-aware batching.
type BatchOptions struct {
	MaxBatchTokens int
	MinBatchTokens int
}

func (o BatchOptions) normalized() BatchOptions {
	if o.MaxBatchTokens <= 0 {
		o.MaxBatchTokens = DefaultMaxBatchTokens
	}
	if o.MinBatchTokens <= 0 {
		o.MinBatchTokens = DefaultMinBatchTokens
	}
	return o
}

// EstimateEntityTokens estimates an entity's token cost as the summed
// length of its name/path/source/documentation divided by 4 (§4.5).
func EstimateEntityTokens(in EntityInput) int {
	total := len(in.Name) + len(in.FilePath) + len(in.SourceCode) + len(in.Documentation)
	return total / 4
}

// Batch groups a slice of EntityInput by index, preserving input order.
type Batch struct {
	Indices []int
	Tokens  int
}

// BuildBatches implements §4.5's greedy token-aware batching:
//   - an entity larger than maxBatchTokens gets its own batch;
//   - each batch accumulates until adding the next would exceed max;
//   - if the final batch is below min and merging with the previous
//     keeps the previous <= max, merge.
//
// The union of returned batches covers every input index, in order
// (Testable Property 10).
func BuildBatches(inputs []EntityInput, opts BatchOptions) []Batch {
	opts = opts.normalized()
	var batches []Batch
	var current Batch

	flush := func() {
		if len(current.Indices) > 0 {
			batches = append(batches, current)
			current = Batch{}
		}
	}

	for i, in := range inputs {
		tokens := EstimateEntityTokens(in)
		if tokens > opts.MaxBatchTokens {
			flush()
			batches = append(batches, Batch{Indices: []int{i}, Tokens: tokens})
			continue
		}
		if len(current.Indices) > 0 && current.Tokens+tokens > opts.MaxBatchTokens {
			flush()
		}
		current.Indices = append(current.Indices, i)
		current.Tokens += tokens
	}
	flush()

	if len(batches) >= 2 {
		last := batches[len(batches)-1]
		prev := batches[len(batches)-2]
		if last.Tokens < opts.MinBatchTokens && prev.Tokens+last.Tokens <= opts.MaxBatchTokens {
			merged := Batch{
				Indices: append(append([]int{}, prev.Indices...), last.Indices...),
				Tokens:  prev.Tokens + last.Tokens,
			}
			batches = append(batches[:len(batches)-2], merged)
		}
	}
	return batches
}

// ExtractBatch runs Extract over every input, batched per BuildBatches,
// with per-entity calls inside a batch running in parallel (§4.5,
// §5 "LLM calls within a batch proceed in parallel").
func (x *Extractor) ExtractBatch(ctx context.Context, inputs []EntityInput, opts BatchOptions) ([]rpg.SemanticFeature, error) {
	features := make([]rpg.SemanticFeature, len(inputs))
	for _, batch := range BuildBatches(inputs, opts) {
		g, gctx := errgroup.WithContext(ctx)
		for _, idx := range batch.Indices {
			idx := idx
			g.Go(func() error {
				features[idx] = x.Extract(gctx, inputs[idx])
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}
	return features, nil
}
