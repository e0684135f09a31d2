// Copyright 2025 Google LLC
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

// Package model defines the LLM backend abstraction used by the persona
// constructor, the patient simulation agent and the scoring engine.
//
// Requests and responses use genai content types so any backend that can
// translate them (Gemini, OpenAI-compatible, test fakes) plugs in behind
// the same interface. The pipeline is strictly sequential, so only unary
// generation is exposed.
package model

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// LLM is a synchronous text/structured-output generation backend.
type LLM interface {
	// Name returns the backend's model identifier.
	Name() string

	// GenerateContent performs a single blocking generation round-trip.
	GenerateContent(ctx context.Context, req *LLMRequest) (*LLMResponse, error)
}

// LLMRequest is a single generation request.
type LLMRequest struct {
	Contents []*genai.Content
	Config   *genai.GenerateContentConfig
}

// LLMResponse is the final (non-streaming) model output.
type LLMResponse struct {
	Content *genai.Content
}

// Text concatenates the text parts of the response content.
func (r *LLMResponse) Text() string {
	if r == nil || r.Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range r.Content.Parts {
		sb.WriteString(part.Text)
	}
	return sb.String()
}

// UnmarshalJSONResponse decodes a structured-output response into v.
// An empty response or a payload that does not decode is an error so the
// caller's retry policy treats it as a failed attempt.
func UnmarshalJSONResponse(resp *LLMResponse, v any) error {
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return fmt.Errorf("model: empty structured response")
	}
	if err := json.Unmarshal([]byte(text), v); err != nil {
		return fmt.Errorf("model: decoding structured response: %w", err)
	}
	return nil
}

// NewUserText builds a user-role content from plain text.
func NewUserText(text string) *genai.Content {
	return genai.NewContentFromText(text, genai.RoleUser)
}

// NewModelText builds a model-role content from plain text.
func NewModelText(text string) *genai.Content {
	return genai.NewContentFromText(text, genai.RoleModel)
}
