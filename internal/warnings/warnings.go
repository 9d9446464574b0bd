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

// Package warnings defines the structured warning type recoverable
// errors (§7) are converted into, plus an append-only, concurrency-safe
// collector (§5 "Token counters and warning lists are append-only across
// workers").
package warnings

import (
	"sync"

	"github.com/google/uuid"

	rpgerrors "github.com/kraklabs/rpgraph/internal/errors"
	"github.com/kraklabs/rpgraph/internal/metrics"
)

// Warning is a single recoverable failure recorded during a phase.
type Warning struct {
	ID      string          `json:"id"`
	Phase   string          `json:"phase"`
	Kind    rpgerrors.Kind  `json:"kind"`
	Message string          `json:"message"`
	Entity  string          `json:"entity,omitempty"`
}

// Collector accumulates warnings from concurrent workers. Safe for use
// from multiple goroutines; Drain is the only point of contention and is
// called once at phase end (§5 "aggregation is reduced at phase end").
type Collector struct {
	mu   sync.Mutex
	list []Warning
}

// NewCollector returns an empty Collector.
func NewCollector() *Collector { return &Collector{} }

// Add records a warning, generating a correlation ID.
func (c *Collector) Add(phase string, kind rpgerrors.Kind, message, entity string) {
	w := Warning{ID: uuid.NewString(), Phase: phase, Kind: kind, Message: message, Entity: entity}
	metrics.Registry().WarningsByKind.WithLabelValues(string(kind)).Inc()
	c.mu.Lock()
	c.list = append(c.list, w)
	c.mu.Unlock()
}

// AddErr records a warning from a recoverable TaxonomyError. It panics
// (a programming error, not a runtime one) if err.Kind is not
// Recoverable — callers must not route non-recoverable kinds here.
func (c *Collector) AddErr(phase string, err *rpgerrors.TaxonomyError, entity string) {
	if !err.Kind.Recoverable() {
		panic("warnings: attempted to collect a non-recoverable error kind: " + string(err.Kind))
	}
	c.Add(phase, err.Kind, err.Error(), entity)
}

// Drain returns all collected warnings and resets the collector.
func (c *Collector) Drain() []Warning {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.list
	c.list = nil
	return out
}

// Len reports the number of warnings collected so far.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.list)
}
