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

package rpg

// DependencyKind enumerates the wiring-edge kinds of §3. Import edges
// take precedence over call/inherit/implement when more than one would
// be created for the same (source, target) pair (§3, §9 OQ1).
type DependencyKind string

const (
	DependencyImport    DependencyKind = "import"
	DependencyCall      DependencyKind = "call"
	DependencyInherit   DependencyKind = "inherit"
	DependencyImplement DependencyKind = "implement"
)

// dependencyRank orders kinds for the dedup-wins rule: lower wins.
var dependencyRank = map[DependencyKind]int{
	DependencyImport:    0,
	DependencyCall:      1,
	DependencyInherit:   1,
	DependencyImplement: 1,
}

// FunctionalEdge is a containment edge: source is the parent, target the
// child. The functional relation restricted to high-level nodes forms a
// forest (§3 invariant).
type FunctionalEdge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// DependencyEdge is a wiring edge between two low-level (file-granularity)
// nodes.
type DependencyEdge struct {
	Source       string         `json:"source"`
	Target       string         `json:"target"`
	Kind         DependencyKind `json:"kind"`
	Symbol       string         `json:"symbol,omitempty"`
	TargetSymbol string         `json:"targetSymbol,omitempty"`
	Line         int            `json:"line,omitempty"`
}

// DataFlowKind enumerates the data-flow edge kinds of §3/§4.9.
type DataFlowKind string

const (
	DataFlowImport        DataFlowKind = "import"
	DataFlowParameter     DataFlowKind = "parameter"
	DataFlowVariableChain DataFlowKind = "variable_chain"
)

// DataFlowEdge represents a value flow between two nodes; "from" and "to"
// may be the same node (self-loop) for intra-module flow.
type DataFlowEdge struct {
	From     string       `json:"from"`
	To       string       `json:"to"`
	DataID   string       `json:"dataId"`
	DataType DataFlowKind `json:"dataType"`
}
