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

package roleplay

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"google.golang.org/genai"

	"github.com/MadGAA-Lab/OSCE-Project-Stage2/persona"
)

func writeScript(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "role_play.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const testScript = `Role,Message
USER,"Play this character: {ROLE_CORE_DESCRIPTION}"
ASSISTANT,"{ROLE_ACKNOWLEDGEMENT_PHRASE}"
USER,"Rules: {ROLE_RULES_AND_CONSTRAINTS}"
ASSISTANT,"{ROLE_CONFIRMATION_PHRASE}"
USER,"Show me an example."
ASSISTANT,"Say: {EXAMPLE_SAY} Think: {EXAMPLE_THINK} Do: {EXAMPLE_DO}"
`

func testExamples() *persona.RoleplayExamples {
	return &persona.RoleplayExamples{
		RoleCoreDescription:       "a guarded architect",
		RoleAcknowledgementPhrase: "I understand my role.",
		RoleRulesAndConstraints:   "stay skeptical",
		RoleConfirmationPhrase:    "rules accepted",
		ExampleSay:                "Show me the numbers.",
		ExampleThink:              "They're softening it.",
		ExampleDo:                 "crosses arms",
	}
}

func TestFormatContext(t *testing.T) {
	loader, err := NewLoader(writeScript(t, testScript))
	if err != nil {
		t.Fatal(err)
	}

	systemPrompt, messages := loader.FormatContext(testExamples())
	if systemPrompt != SystemPrompt {
		t.Errorf("system prompt = %q, want the generic roleplay framing", systemPrompt)
	}
	if len(messages) != 6 {
		t.Fatalf("got %d messages, want 6", len(messages))
	}

	wantRoles := []genai.Role{
		genai.RoleUser, genai.RoleModel, genai.RoleUser,
		genai.RoleModel, genai.RoleUser, genai.RoleModel,
	}
	for i, msg := range messages {
		if msg.Role != string(wantRoles[i]) {
			t.Errorf("message %d role = %q, want %q", i, msg.Role, wantRoles[i])
		}
	}

	first := messages[0].Parts[0].Text
	if !strings.Contains(first, "a guarded architect") {
		t.Errorf("core description not substituted: %q", first)
	}
	if strings.Contains(first, "{ROLE_CORE_DESCRIPTION}") {
		t.Errorf("placeholder left in message: %q", first)
	}
	last := messages[5].Parts[0].Text
	if want := "Say: Show me the numbers. Think: They're softening it. Do: crosses arms"; last != want {
		t.Errorf("example message = %q, want %q", last, want)
	}
}

func TestFormatContextNoPlaceholdersLeft(t *testing.T) {
	loader, err := NewLoader(writeScript(t, testScript))
	if err != nil {
		t.Fatal(err)
	}
	_, messages := loader.FormatContext(testExamples())
	for i, msg := range messages {
		for _, part := range msg.Parts {
			if strings.Contains(part.Text, "{ROLE_") || strings.Contains(part.Text, "{EXAMPLE_") {
				t.Errorf("message %d still contains a placeholder: %q", i, part.Text)
			}
		}
	}
}

func TestNewLoaderBOMHeader(t *testing.T) {
	if _, err := NewLoader(writeScript(t, "\uFEFF"+testScript)); err != nil {
		t.Fatalf("loader rejected byte-order-marked script: %v", err)
	}
}

func TestNewLoaderErrors(t *testing.T) {
	tests := []struct {
		name   string
		script string
	}{
		{"missing columns", "Who,What\nUSER,hi\n"},
		{"unknown role", "Role,Message\nNARRATOR,hello\n"},
		{"empty script", "Role,Message\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewLoader(writeScript(t, tc.script)); err == nil {
				t.Fatal("NewLoader succeeded, want error")
			}
		})
	}
}

func TestNewLoaderMissingFile(t *testing.T) {
	if _, err := NewLoader(filepath.Join(t.TempDir(), "absent.csv")); err == nil {
		t.Fatal("NewLoader succeeded for missing file, want error")
	}
}
