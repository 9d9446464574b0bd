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

// Package metrics holds the Prometheus instrumentation for the encoder
// pipeline, grounded on pkg/ingestion/metrics.go's counters-and-
// histograms shape.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

type encoderMetrics struct {
	once sync.Once

	FilesDiscovered   prometheus.Counter
	EntitiesExtracted prometheus.Counter
	CacheHits         prometheus.Counter
	CacheMisses       prometheus.Counter
	LLMRequests       prometheus.Counter
	LLMPromptTokens   prometheus.Counter
	LLMCompletionTokens prometheus.Counter
	WarningsByKind    *prometheus.CounterVec

	EvolveInserted prometheus.Counter
	EvolveDeleted  prometheus.Counter
	EvolveModified prometheus.Counter
	EvolveRerouted prometheus.Counter
	EvolvePruned   prometheus.Counter

	PhaseDuration *prometheus.HistogramVec
}

var m encoderMetrics

func (e *encoderMetrics) init() {
	e.once.Do(func() {
		e.FilesDiscovered = prometheus.NewCounter(prometheus.CounterOpts{Name: "rpg_files_discovered_total", Help: "Files returned by discovery"})
		e.EntitiesExtracted = prometheus.NewCounter(prometheus.CounterOpts{Name: "rpg_entities_extracted_total", Help: "Code entities extracted by the AST extractor"})
		e.CacheHits = prometheus.NewCounter(prometheus.CounterOpts{Name: "rpg_semantic_cache_hits_total", Help: "Semantic cache hits"})
		e.CacheMisses = prometheus.NewCounter(prometheus.CounterOpts{Name: "rpg_semantic_cache_misses_total", Help: "Semantic cache misses"})
		e.LLMRequests = prometheus.NewCounter(prometheus.CounterOpts{Name: "rpg_llm_requests_total", Help: "LLM requests issued"})
		e.LLMPromptTokens = prometheus.NewCounter(prometheus.CounterOpts{Name: "rpg_llm_prompt_tokens_total", Help: "Cumulative LLM prompt tokens"})
		e.LLMCompletionTokens = prometheus.NewCounter(prometheus.CounterOpts{Name: "rpg_llm_completion_tokens_total", Help: "Cumulative LLM completion tokens"})
		e.WarningsByKind = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "rpg_warnings_total", Help: "Warnings emitted, by kind"}, []string{"kind"})

		e.EvolveInserted = prometheus.NewCounter(prometheus.CounterOpts{Name: "rpg_evolve_inserted_total", Help: "Nodes inserted by the evolver"})
		e.EvolveDeleted = prometheus.NewCounter(prometheus.CounterOpts{Name: "rpg_evolve_deleted_total", Help: "Nodes deleted by the evolver"})
		e.EvolveModified = prometheus.NewCounter(prometheus.CounterOpts{Name: "rpg_evolve_modified_total", Help: "Nodes modified in place by the evolver"})
		e.EvolveRerouted = prometheus.NewCounter(prometheus.CounterOpts{Name: "rpg_evolve_rerouted_total", Help: "Nodes re-routed due to semantic drift"})
		e.EvolvePruned = prometheus.NewCounter(prometheus.CounterOpts{Name: "rpg_evolve_pruned_ancestors_total", Help: "Orphan ancestors pruned by the evolver"})

		e.PhaseDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: "rpg_phase_duration_seconds", Help: "Duration of each orchestrator phase"}, []string{"phase"})
	})
}

// Registry returns the metrics singleton, initializing it on first use.
func Registry() *encoderMetrics {
	m.init()
	return &m
}
