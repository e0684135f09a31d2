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

package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
	"google.golang.org/genai"

	"github.com/MadGAA-Lab/OSCE-Project-Stage2/model"
)

func TestConvertMessages(t *testing.T) {
	req := &model.LLMRequest{
		Contents: []*genai.Content{
			model.NewUserText("Hello doctor."),
			model.NewModelText("Hello, please sit down."),
			model.NewUserText("I have a question."),
		},
		Config: &genai.GenerateContentConfig{
			SystemInstruction: model.NewUserText("You are a doctor."),
		},
	}

	messages, err := convertMessages(req)
	if err != nil {
		t.Fatal(err)
	}
	want := []ChatMessage{
		{Role: "system", Content: "You are a doctor."},
		{Role: "user", Content: "Hello doctor."},
		{Role: "assistant", Content: "Hello, please sit down."},
		{Role: "user", Content: "I have a question."},
	}
	if diff := cmp.Diff(want, messages); diff != "" {
		t.Errorf("messages mismatch (-want +got):\n%s", diff)
	}
}

func TestConvertMessagesUnknownRole(t *testing.T) {
	req := &model.LLMRequest{
		Contents: []*genai.Content{
			{Role: "narrator", Parts: []*genai.Part{{Text: "Meanwhile..."}}},
		},
	}
	if _, err := convertMessages(req); err == nil {
		t.Fatal("expected error for unknown role")
	}
}

func TestConvertMessagesEmptyRequest(t *testing.T) {
	if _, err := convertMessages(&model.LLMRequest{}); err == nil {
		t.Fatal("expected error for empty request")
	}
}

func TestApplyConfigResponseFormat(t *testing.T) {
	nullable := true
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"verdict": {Type: genai.TypeString, Enum: []string{"met", "not_met"}},
				"count":   {Type: genai.TypeInteger, Description: "met criteria"},
				"reason":  {Type: genai.TypeString, Nullable: &nullable},
				"items":   {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
			},
			Required: []string{"verdict"},
		},
	}

	var chatReq ChatCompletionRequest
	applyConfig(&chatReq, cfg)

	if chatReq.ResponseFormat == nil {
		t.Fatal("ResponseFormat not set")
	}
	if chatReq.ResponseFormat.Type != "json_schema" {
		t.Errorf("ResponseFormat.Type = %q", chatReq.ResponseFormat.Type)
	}
	spec := chatReq.ResponseFormat.JSONSchema
	if spec == nil || !spec.Strict {
		t.Fatalf("JSONSchema spec = %+v, want strict", spec)
	}

	want := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"verdict": map[string]any{"type": "string", "enum": []string{"met", "not_met"}},
			"count":   map[string]any{"type": "integer", "description": "met criteria"},
			"reason":  map[string]any{"type": []any{"string", "null"}},
			"items": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
		"required":             []string{"verdict"},
		"additionalProperties": false,
	}
	if diff := cmp.Diff(want, spec.Schema); diff != "" {
		t.Errorf("schema mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyConfigSkipsFormatWithoutSchema(t *testing.T) {
	var chatReq ChatCompletionRequest
	applyConfig(&chatReq, &genai.GenerateContentConfig{ResponseMIMEType: "application/json"})
	if chatReq.ResponseFormat != nil {
		t.Error("ResponseFormat set without a schema")
	}
}

func TestGenerateContent(t *testing.T) {
	var gotReq ChatCompletionRequest
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Error(err)
		}
		json.NewEncoder(w).Encode(ChatCompletionResponse{
			Choices: []Choice{{Message: ChatMessage{Role: "assistant", Content: "Say: Hello."}}},
		})
	}))
	defer server.Close()

	llm, err := New(Config{BaseURL: server.URL, APIKey: "secret", Model: "patient-sim"})
	if err != nil {
		t.Fatal(err)
	}

	resp, err := llm.GenerateContent(context.Background(), &model.LLMRequest{
		Contents: []*genai.Content{model.NewUserText("Hi.")},
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := resp.Text(); got != "Say: Hello." {
		t.Errorf("Text() = %q", got)
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotReq.Model != "patient-sim" {
		t.Errorf("request model = %q", gotReq.Model)
	}
}

func TestGenerateContentErrorClassification(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantType ErrorType
		wantCode string
	}{
		{
			name:     "rate limited",
			status:   http.StatusTooManyRequests,
			body:     `{"error":{"message":"slow down","code":"rate_limit_exceeded"}}`,
			wantType: ErrorTypeRateLimit,
			wantCode: "rate_limit_exceeded",
		},
		{
			name:     "unauthorized",
			status:   http.StatusUnauthorized,
			body:     `{"error":{"message":"bad key"}}`,
			wantType: ErrorTypeAuth,
		},
		{
			name:     "validation",
			status:   http.StatusBadRequest,
			body:     `{"error":{"message":"bad request"}}`,
			wantType: ErrorTypeValidation,
		},
		{
			name:     "server error with unparseable body",
			status:   http.StatusInternalServerError,
			body:     `oops`,
			wantType: ErrorTypeServer,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			llm, err := New(Config{BaseURL: server.URL, Model: "m"})
			if err != nil {
				t.Fatal(err)
			}
			_, err = llm.GenerateContent(context.Background(), &model.LLMRequest{
				Contents: []*genai.Content{model.NewUserText("Hi.")},
			})
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("err = %v, want *APIError", err)
			}
			if apiErr.Type != tt.wantType {
				t.Errorf("Type = %q, want %q", apiErr.Type, tt.wantType)
			}
			if apiErr.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", apiErr.StatusCode, tt.status)
			}
			if tt.wantCode != "" && apiErr.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", apiErr.Code, tt.wantCode)
			}
		})
	}
}

func TestGenerateContentNoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ChatCompletionResponse{})
	}))
	defer server.Close()

	llm, err := New(Config{BaseURL: server.URL, Model: "m"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := llm.GenerateContent(context.Background(), &model.LLMRequest{
		Contents: []*genai.Content{model.NewUserText("Hi.")},
	}); err == nil {
		t.Fatal("expected error for empty choices")
	}
}
