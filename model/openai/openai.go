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

// Package openai implements model.LLM against any OpenAI-compatible chat
// completions endpoint.
//
// The adapter translates genai content and generation config into the chat
// completions wire format, including structured output via
// response_format json_schema. It performs no retries of its own; retry
// policies belong to the pipeline components that call it.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/MadGAA-Lab/OSCE-Project-Stage2/model"
)

const defaultTimeout = 120 * time.Second

// Config configures an OpenAI-compatible backend.
type Config struct {
	// BaseURL is the API root, e.g. "https://api.openai.com/v1".
	BaseURL string
	// APIKey is sent as a bearer token when non-empty.
	APIKey string
	// Model is the model name used for every request.
	Model string
	// HTTPClient overrides the default client (mainly for tests).
	HTTPClient *http.Client
}

type openaiModel struct {
	baseURL string
	apiKey  string
	name    string
	client  *http.Client
}

// New creates an OpenAI-compatible model backend.
func New(cfg Config) (model.LLM, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("openai: BaseURL is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("openai: Model is required")
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &openaiModel{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		name:    cfg.Model,
		client:  client,
	}, nil
}

func (m *openaiModel) Name() string { return m.name }

// GenerateContent performs a single non-streaming chat completion.
func (m *openaiModel) GenerateContent(ctx context.Context, req *model.LLMRequest) (*model.LLMResponse, error) {
	messages, err := convertMessages(req)
	if err != nil {
		return nil, fmt.Errorf("openai: converting messages: %w", err)
	}

	chatReq := ChatCompletionRequest{
		Model:    m.name,
		Messages: messages,
	}
	applyConfig(&chatReq, req.Config)

	body, err := json.Marshal(chatReq)
	if err != nil {
		return nil, fmt.Errorf("openai: marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("openai: building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if m.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+m.apiKey)
	}

	resp, err := m.client.Do(httpReq)
	if err != nil {
		return nil, &APIError{Type: ErrorTypeNetwork, Message: err.Error()}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &APIError{Type: ErrorTypeNetwork, Message: fmt.Sprintf("reading response: %v", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, classifyHTTPError(resp.StatusCode, payload)
	}

	var completion ChatCompletionResponse
	if err := json.Unmarshal(payload, &completion); err != nil {
		return nil, &APIError{Type: ErrorTypeInvalidJSON, Message: fmt.Sprintf("decoding response: %v", err)}
	}
	if len(completion.Choices) == 0 {
		return nil, &APIError{Type: ErrorTypeUnknown, Message: "response contained no choices"}
	}

	return &model.LLMResponse{
		Content: model.NewModelText(completion.Choices[0].Message.Content),
	}, nil
}

// convertMessages flattens genai contents into chat completion messages.
// A system instruction in the config becomes the leading system message.
func convertMessages(req *model.LLMRequest) ([]ChatMessage, error) {
	var messages []ChatMessage

	if req.Config != nil && req.Config.SystemInstruction != nil {
		messages = append(messages, ChatMessage{
			Role:    "system",
			Content: contentText(req.Config.SystemInstruction),
		})
	}

	for _, content := range req.Contents {
		var role string
		switch content.Role {
		case string(genai.RoleUser), "":
			role = "user"
		case string(genai.RoleModel):
			role = "assistant"
		default:
			return nil, fmt.Errorf("unsupported content role %q", content.Role)
		}
		messages = append(messages, ChatMessage{Role: role, Content: contentText(content)})
	}

	if len(messages) == 0 {
		return nil, fmt.Errorf("request has no contents")
	}
	return messages, nil
}

func contentText(content *genai.Content) string {
	var sb strings.Builder
	for _, part := range content.Parts {
		sb.WriteString(part.Text)
	}
	return sb.String()
}

// applyConfig maps the genai generation config onto the wire request.
func applyConfig(chatReq *ChatCompletionRequest, cfg *genai.GenerateContentConfig) {
	if cfg == nil {
		return
	}
	if cfg.Temperature != nil {
		chatReq.Temperature = cfg.Temperature
	}
	if cfg.TopP != nil {
		chatReq.TopP = cfg.TopP
	}
	if cfg.MaxOutputTokens > 0 {
		chatReq.MaxTokens = cfg.MaxOutputTokens
	}
	if cfg.ResponseMIMEType == "application/json" && cfg.ResponseSchema != nil {
		chatReq.ResponseFormat = &ResponseFormat{
			Type: "json_schema",
			JSONSchema: &JSONSchemaSpec{
				Name:   "response",
				Strict: true,
				Schema: convertSchema(cfg.ResponseSchema),
			},
		}
	}
}

// convertSchema translates a genai.Schema into a JSON schema document.
func convertSchema(s *genai.Schema) map[string]any {
	if s == nil {
		return nil
	}
	out := map[string]any{}
	switch s.Type {
	case genai.TypeObject:
		out["type"] = "object"
		props := map[string]any{}
		for name, prop := range s.Properties {
			props[name] = convertSchema(prop)
		}
		out["properties"] = props
		if len(s.Required) > 0 {
			out["required"] = s.Required
		}
		out["additionalProperties"] = false
	case genai.TypeArray:
		out["type"] = "array"
		if s.Items != nil {
			out["items"] = convertSchema(s.Items)
		}
	case genai.TypeString:
		out["type"] = "string"
		if len(s.Enum) > 0 {
			out["enum"] = s.Enum
		}
	case genai.TypeInteger:
		out["type"] = "integer"
	case genai.TypeNumber:
		out["type"] = "number"
	case genai.TypeBoolean:
		out["type"] = "boolean"
	}
	if s.Description != "" {
		out["description"] = s.Description
	}
	if s.Nullable != nil && *s.Nullable {
		out["type"] = []any{out["type"], "null"}
	}
	return out
}
