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

// Package testutil provides shared test fakes for the evaluation pipeline.
package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/MadGAA-Lab/OSCE-Project-Stage2/model"
)

// FakeLLM is a scripted model.LLM for tests. Responses are consumed in
// order; once the script runs out the last entry repeats. An entry with a
// non-nil Err fails the call.
type FakeLLM struct {
	mu        sync.Mutex
	script    []FakeResponse
	calls     int
	requests  []*model.LLMRequest
	generate  func(call int, req *model.LLMRequest) (*model.LLMResponse, error)
	modelName string
}

// FakeResponse is one scripted reply.
type FakeResponse struct {
	Text string
	Err  error
}

// NewFakeLLM creates a fake that replays the given script.
func NewFakeLLM(script ...FakeResponse) *FakeLLM {
	return &FakeLLM{script: script, modelName: "fake-model"}
}

// NewFakeLLMFunc creates a fake whose replies come from fn.
func NewFakeLLMFunc(fn func(call int, req *model.LLMRequest) (*model.LLMResponse, error)) *FakeLLM {
	return &FakeLLM{generate: fn, modelName: "fake-model"}
}

func (f *FakeLLM) Name() string { return f.modelName }

// GenerateContent replays the next scripted response.
func (f *FakeLLM) GenerateContent(ctx context.Context, req *model.LLMRequest) (*model.LLMResponse, error) {
	f.mu.Lock()
	call := f.calls
	f.calls++
	f.requests = append(f.requests, req)
	fn := f.generate
	var resp FakeResponse
	if fn == nil {
		if len(f.script) == 0 {
			f.mu.Unlock()
			return nil, fmt.Errorf("fake llm: no scripted responses")
		}
		idx := call
		if idx >= len(f.script) {
			idx = len(f.script) - 1
		}
		resp = f.script[idx]
	}
	f.mu.Unlock()

	if fn != nil {
		return fn(call, req)
	}
	if resp.Err != nil {
		return nil, resp.Err
	}
	return &model.LLMResponse{Content: model.NewModelText(resp.Text)}, nil
}

// Calls returns how many times GenerateContent was invoked.
func (f *FakeLLM) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// Requests returns the captured requests in call order.
func (f *FakeLLM) Requests() []*model.LLMRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*model.LLMRequest, len(f.requests))
	copy(out, f.requests)
	return out
}
