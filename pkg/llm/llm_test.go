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
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractJSON_PlainObject(t *testing.T) {
	obj, err := ExtractJSON(`{"a": 1, "b": "two"}`)
	require.NoError(t, err)
	require.Equal(t, float64(1), obj["a"])
	require.Equal(t, "two", obj["b"])
}

func TestExtractJSON_SolutionTag(t *testing.T) {
	raw := "Here is my answer.\n<solution>\n{\"area\": \"auth\"}\n</solution>\nThanks."
	obj, err := ExtractJSON(raw)
	require.NoError(t, err)
	require.Equal(t, "auth", obj["area"])
}

func TestExtractJSON_SolutionTagWithPrefixNoise(t *testing.T) {
	raw := "<solution>prefix chatter {\"x\": 1} trailing</solution>"
	obj, err := ExtractJSON(raw)
	require.NoError(t, err)
	require.Equal(t, float64(1), obj["x"])
}

func TestExtractJSON_FirstBraceObject(t *testing.T) {
	raw := "Sure, the result is {\"ok\": true} and nothing else follows."
	obj, err := ExtractJSON(raw)
	require.NoError(t, err)
	require.Equal(t, true, obj["ok"])
}

func TestExtractJSON_BracesInsideStrings(t *testing.T) {
	raw := `{"text": "a { b } c", "n": 2}`
	obj, err := ExtractJSON(raw)
	require.NoError(t, err)
	require.Equal(t, "a { b } c", obj["text"])
	require.Equal(t, float64(2), obj["n"])
}

func TestExtractJSON_Unparseable(t *testing.T) {
	_, err := ExtractJSON("not json at all, no braces here")
	require.Error(t, err)
}

func TestMockClient_CompleteJSON(t *testing.T) {
	m := NewMockClient()
	m.Respond = func(user, system string) string {
		return `{"keywords": ["auth", "token"]}`
	}
	obj, usage, err := m.CompleteJSON(context.Background(), "describe this", "system", nil)
	require.NoError(t, err)
	require.NotNil(t, obj)
	require.Greater(t, usage.PromptTokens, 0)

	stats := m.UsageStats()
	require.Equal(t, 1, stats.Requests)
	require.Zero(t, m.EstimateCost(stats))
}

func TestMockClient_CompleteJSON_MalformedIsNotError(t *testing.T) {
	m := NewMockClient()
	m.Respond = func(string, string) string { return "not json" }
	obj, _, err := m.CompleteJSON(context.Background(), "x", "y", nil)
	require.NoError(t, err)
	require.Nil(t, obj)
}

func TestOllamaClient_Complete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/generate", r.URL.Path)
		var req ollamaGenerateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "llama3", req.Model)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(ollamaGenerateResponse{
			Response:        `{"area":"storage"}`,
			Done:            true,
			PromptEvalCount: 12,
			EvalCount:       4,
		})
	}))
	defer srv.Close()

	client := NewOllamaClient(OllamaConfig{BaseURL: srv.URL, Model: "llama3"})
	result, err := client.Complete(context.Background(), "classify", "you are a classifier")
	require.NoError(t, err)
	require.Equal(t, `{"area":"storage"}`, result.Content)
	require.Equal(t, 12, result.Usage.PromptTokens)
	require.Equal(t, 4, result.Usage.CompletionTokens)

	stats := client.UsageStats()
	require.Equal(t, 1, stats.Requests)
}

func TestOllamaClient_CompleteJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(ollamaGenerateResponse{Response: `{"domains":["api","db"]}`, Done: true})
	}))
	defer srv.Close()

	client := NewOllamaClient(OllamaConfig{BaseURL: srv.URL, Model: "llama3"})
	obj, _, err := client.CompleteJSON(context.Background(), "list domains", "system", nil)
	require.NoError(t, err)
	require.NotNil(t, obj)
}

func TestOllamaClient_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("model not found"))
	}))
	defer srv.Close()

	client := NewOllamaClient(OllamaConfig{BaseURL: srv.URL, Model: "llama3"})
	_, err := client.Complete(context.Background(), "x", "")
	require.Error(t, err)
}

func TestOllamaClient_MissingModel(t *testing.T) {
	client := NewOllamaClient(OllamaConfig{BaseURL: "http://localhost:1"})
	_, err := client.Complete(context.Background(), "x", "")
	require.Error(t, err)
}
