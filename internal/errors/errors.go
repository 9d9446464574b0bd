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

// Package errors implements the §7 error taxonomy shared across the
// encoder pipeline: a Kind classifying what went wrong, plus enough
// context (Cause/Fix) for a caller embedding this library to surface a
// useful message.
package errors

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
)

// Kind classifies a TaxonomyError per spec §7.
type Kind string

const (
	KindInvalidInput     Kind = "invalid_input"
	KindNodeNotFound     Kind = "node_not_found"
	KindStaleRevision    Kind = "stale_revision"
	KindExtractionFailed Kind = "extraction_failed"
	KindBatchFailed      Kind = "batch_failed"
	KindDiscoveryFailed  Kind = "discovery_failed"
	KindGroundingFailed  Kind = "grounding_failed"
	KindInjectionFailed  Kind = "injection_failed"
	KindDataFlowFailed   Kind = "dataflow_failed"
	KindEvolveFailed     Kind = "evolve_failed"
	KindFatal            Kind = "fatal"
)

// Recoverable reports whether a Kind is recovered locally (turned into a
// warning) rather than surfaced as a hard failure, per §7.
func (k Kind) Recoverable() bool {
	switch k {
	case KindExtractionFailed, KindBatchFailed, KindDiscoveryFailed,
		KindGroundingFailed, KindInjectionFailed, KindDataFlowFailed:
		return true
	default:
		return false
	}
}

// TaxonomyError carries structured context: what happened (Kind/Message),
// why (Cause), and what a caller can do about it (Fix).
type TaxonomyError struct {
	Kind    Kind
	Message string
	Cause   string
	Fix     string
	Err     error
}

func (e *TaxonomyError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *TaxonomyError) Unwrap() error { return e.Err }

// New constructs a TaxonomyError of the given kind.
func New(kind Kind, message, cause, fix string, err error) *TaxonomyError {
	return &TaxonomyError{Kind: kind, Message: message, Cause: cause, Fix: fix, Err: err}
}

// InvalidInput constructs a KindInvalidInput error (schema violation, bad
// commit range, absent rootPath).
func InvalidInput(message, cause, fix string) *TaxonomyError {
	return New(KindInvalidInput, message, cause, fix, nil)
}

// NodeNotFound constructs a KindNodeNotFound error.
func NodeNotFound(id string) *TaxonomyError {
	return New(KindNodeNotFound, fmt.Sprintf("node %q not found", id), "", "", nil)
}

// StaleRevision constructs a KindStaleRevision error for optimistic
// concurrency failures (§5 "Shared-resource policy").
func StaleRevision(got, want string) *TaxonomyError {
	return New(KindStaleRevision, "routing revision is stale",
		fmt.Sprintf("caller submitted revision %q, current revision is %q", got, want),
		"re-fetch the current graph revision before submitting a routing decision", nil)
}

// Fatal constructs a KindFatal error: an RPG invariant violation or an
// operator request that cannot be satisfied (e.g. LLM demanded but none
// configured).
func Fatal(message, cause, fix string, err error) *TaxonomyError {
	return New(KindFatal, message, cause, fix, err)
}

var (
	colorError = color.New(color.FgRed, color.Bold)
	colorCause = color.New(color.FgYellow)
	colorFix   = color.New(color.FgGreen)
)

// Format renders a colored, terminal-friendly message. Honors NO_COLOR.
func (e *TaxonomyError) Format(noColor bool) string {
	originalNoColor := color.NoColor
	defer func() { color.NoColor = originalNoColor }()
	if noColor || os.Getenv("NO_COLOR") != "" {
		color.NoColor = true
	}

	var out strings.Builder
	out.WriteString(colorError.Sprintf("Error [%s]: ", e.Kind))
	out.WriteString(e.Message)
	out.WriteString("\n")
	if e.Cause != "" {
		out.WriteString(colorCause.Sprint("Cause: "))
		out.WriteString(e.Cause)
		out.WriteString("\n")
	}
	if e.Fix != "" {
		out.WriteString(colorFix.Sprint("Fix:   "))
		out.WriteString(e.Fix)
		out.WriteString("\n")
	}
	return out.String()
}

// JSON is the machine-readable rendering of a TaxonomyError.
type JSON struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	Cause   string `json:"cause,omitempty"`
	Fix     string `json:"fix,omitempty"`
}

// ToJSON converts e to its JSON-serializable form.
func (e *TaxonomyError) ToJSON() JSON {
	return JSON{Kind: e.Kind, Message: e.Message, Cause: e.Cause, Fix: e.Fix}
}

// MarshalJSON implements json.Marshaler.
func (e *TaxonomyError) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.ToJSON())
}
