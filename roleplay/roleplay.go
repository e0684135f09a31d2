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

// Package roleplay loads the few-shot priming script and formats it with
// persona-specific material.
//
// The script separates the rules of the game from the content of the role:
// the returned system prompt only frames the roleplay, while the character
// itself lives entirely in the substituted priming messages.
package roleplay

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"google.golang.org/genai"

	"github.com/MadGAA-Lab/OSCE-Project-Stage2/model"
	"github.com/MadGAA-Lab/OSCE-Project-Stage2/persona"
)

// SystemPrompt is the minimal role-play framing returned alongside the
// priming messages. It is deliberately generic; no persona content is
// baked into it.
const SystemPrompt = "You are participating in a roleplay. Follow the instructions provided in the conversation history to play your assigned role."

// scriptLine is one row of the priming script.
type scriptLine struct {
	role    genai.Role
	message string
}

// Loader reads and formats the role-play priming script.
type Loader struct {
	scriptPath string
	lines      []scriptLine
}

// NewLoader loads the priming script from scriptPath. A missing or empty
// script is a fatal resource error: a patient agent cannot be primed
// correctly without it.
func NewLoader(scriptPath string) (*Loader, error) {
	f, err := os.Open(scriptPath)
	if err != nil {
		return nil, fmt.Errorf("roleplay: opening script: %w", err)
	}
	defer f.Close()

	lines, err := parseScript(f)
	if err != nil {
		return nil, fmt.Errorf("roleplay: parsing %s: %w", scriptPath, err)
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("roleplay: script %s contains no messages", scriptPath)
	}
	return &Loader{scriptPath: scriptPath, lines: lines}, nil
}

// parseScript reads the two-column (Role, Message) CSV. The role column is
// case-insensitive and the header is byte-order-mark tolerant.
func parseScript(r io.Reader) ([]scriptLine, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	roleIdx, messageIdx := -1, -1
	for i, name := range header {
		switch strings.TrimSpace(strings.TrimPrefix(name, "\uFEFF")) {
		case "Role":
			roleIdx = i
		case "Message":
			messageIdx = i
		}
	}
	if roleIdx < 0 || messageIdx < 0 {
		return nil, fmt.Errorf("header must contain Role and Message columns, got %v", header)
	}

	var lines []scriptLine
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(record) <= roleIdx || len(record) <= messageIdx {
			continue
		}

		var role genai.Role
		switch strings.ToUpper(strings.TrimSpace(record[roleIdx])) {
		case "USER":
			role = genai.RoleUser
		case "ASSISTANT":
			role = genai.RoleModel
		default:
			return nil, fmt.Errorf("unknown role %q", record[roleIdx])
		}
		lines = append(lines, scriptLine{role: role, message: strings.TrimSpace(record[messageIdx])})
	}
	return lines, nil
}

// placeholders maps script slots to their substitution values.
func placeholders(ex *persona.RoleplayExamples) map[string]string {
	return map[string]string{
		"{ROLE_CORE_DESCRIPTION}":       ex.RoleCoreDescription,
		"{ROLE_ACKNOWLEDGEMENT_PHRASE}": ex.RoleAcknowledgementPhrase,
		"{ROLE_RULES_AND_CONSTRAINTS}":  ex.RoleRulesAndConstraints,
		"{ROLE_CONFIRMATION_PHRASE}":    ex.RoleConfirmationPhrase,
		"{EXAMPLE_SAY}":                 ex.ExampleSay,
		"{EXAMPLE_THINK}":               ex.ExampleThink,
		"{EXAMPLE_DO}":                  ex.ExampleDo,
	}
}

// FormatContext substitutes the seven placeholders verbatim into every
// script line, preserving message order and role, and returns the minimal
// system prompt plus the priming messages.
func (l *Loader) FormatContext(ex *persona.RoleplayExamples) (string, []*genai.Content) {
	subs := placeholders(ex)

	messages := make([]*genai.Content, 0, len(l.lines))
	for _, line := range l.lines {
		content := line.message
		for placeholder, value := range subs {
			content = strings.ReplaceAll(content, placeholder, value)
		}
		if line.role == genai.RoleUser {
			messages = append(messages, model.NewUserText(content))
		} else {
			messages = append(messages, model.NewModelText(content))
		}
	}
	return SystemPrompt, messages
}
