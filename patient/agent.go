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

// Package patient implements the patient simulation agent: a stateful
// turn generator that plays the constructed persona against the remote
// doctor while keeping its internal thoughts on this side of the
// information-hiding boundary.
package patient

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"github.com/MadGAA-Lab/OSCE-Project-Stage2/internal/retry"
	"github.com/MadGAA-Lab/OSCE-Project-Stage2/model"
)

// fallbackMessages are natural patient deflections substituted when the
// backend stays unavailable. Conversational continuity matters more than
// any single reply's fidelity, so the session continues instead of
// failing.
var fallbackMessages = []string{
	"Sorry, what were you saying? I zoned out for a second there.",
	"Wait, can you repeat that? I'm having trouble focusing right now.",
	"I... I'm not sure what to say to that.",
	"Hold on, I need to think about this for a moment.",
	"I'm sorry, my mind is just racing right now.",
	"Can we slow down? This is a lot to process.",
	"I don't know... I'm really confused about all this.",
	"Everything you're saying is just... it's overwhelming.",
}

// Config configures a patient agent for one session.
type Config struct {
	// LLM is the backend playing the patient.
	LLM model.LLM
	// SystemPrompt frames the roleplay. When priming messages are used it
	// stays generic; the character lives in the priming messages.
	SystemPrompt string
	// Priming are the formatted role-play context messages prepended to
	// every request.
	Priming []*genai.Content
	// Retry bounds backend attempts per turn. Zero uses the patient
	// default.
	Retry retry.Policy
	// Rand drives fallback selection; nil uses the global source.
	Rand *rand.Rand
}

// Agent simulates one patient for one dialogue session. It exclusively
// owns its turn history; histories are never shared across sessions.
type Agent struct {
	llm          model.LLM
	systemPrompt string
	priming      []*genai.Content
	policy       retry.Policy
	rng          *rand.Rand

	// history holds doctor turns as user contents and the patient's own
	// full (unfiltered) replies as model contents.
	history []*genai.Content
}

// New creates a patient agent.
func New(cfg Config) (*Agent, error) {
	if cfg.LLM == nil {
		return nil, fmt.Errorf("patient: LLM is required")
	}
	if cfg.SystemPrompt == "" {
		return nil, fmt.Errorf("patient: system prompt is required")
	}
	policy := cfg.Retry
	if policy.MaxAttempts == 0 {
		policy = retry.DefaultPatient()
	}
	return &Agent{
		llm:          cfg.LLM,
		systemPrompt: cfg.SystemPrompt,
		priming:      cfg.Priming,
		policy:       policy,
		rng:          cfg.Rand,
	}, nil
}

// Respond generates the patient's reply to the doctor's message and
// returns only the doctor-visible portion. The unfiltered reply, thought
// segment included, is retained in history so later turns can reference
// earlier private reasoning.
//
// Backend failure is absorbed: after the retry budget a canned deflection
// keeps the dialogue alive. Exactly one doctor turn and one patient turn
// are appended per call, fallback or not.
func (a *Agent) Respond(ctx context.Context, doctorMessage string) string {
	a.history = append(a.history, model.NewUserText(doctorMessage))

	contents := make([]*genai.Content, 0, len(a.priming)+len(a.history))
	contents = append(contents, a.priming...)
	contents = append(contents, a.history...)

	req := &model.LLMRequest{
		Contents: contents,
		Config: &genai.GenerateContentConfig{
			SystemInstruction: model.NewUserText(a.systemPrompt),
		},
	}

	reply, err := retry.Do(ctx, a.policy, "patient response generation", func(ctx context.Context) (string, error) {
		resp, err := a.llm.GenerateContent(ctx, req)
		if err != nil {
			return "", err
		}
		text := resp.Text()
		if strings.TrimSpace(text) == "" {
			return "", fmt.Errorf("empty patient response")
		}
		return text, nil
	})
	if err != nil {
		reply = a.fallback()
		log.Error().Err(err).Str("fallback", reply).Msg("patient backend exhausted, substituting fallback reply")
	}

	a.history = append(a.history, model.NewModelText(reply))

	return ExtractVisible(reply)
}

func (a *Agent) fallback() string {
	if a.rng != nil {
		return fallbackMessages[a.rng.Intn(len(fallbackMessages))]
	}
	return fallbackMessages[rand.Intn(len(fallbackMessages))]
}

// History returns a copy of the full dialogue history, unfiltered patient
// replies included.
func (a *Agent) History() []*genai.Content {
	out := make([]*genai.Content, len(a.history))
	copy(out, a.history)
	return out
}

// Transcript renders the visible dialogue as a labeled plain-text
// transcript for judge prompts.
func (a *Agent) Transcript() string {
	var sb strings.Builder
	for _, content := range a.history {
		text := contentText(content)
		if content.Role == string(genai.RoleUser) {
			fmt.Fprintf(&sb, "Doctor: %s\n", text)
		} else {
			fmt.Fprintf(&sb, "Patient: %s\n", ExtractVisible(text))
		}
	}
	return sb.String()
}

// Reset clears the history for a new session.
func (a *Agent) Reset() {
	a.history = nil
}

func contentText(content *genai.Content) string {
	var sb strings.Builder
	for _, part := range content.Parts {
		sb.WriteString(part.Text)
	}
	return sb.String()
}
