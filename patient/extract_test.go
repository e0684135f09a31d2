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

package patient

import "testing"

func TestExtractVisible(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  string
	}{
		{
			name:  "think between say and do",
			reply: "Say: I'm scared. Think: I don't trust doctors. Do: looks away.",
			want:  "Say: I'm scared. Do: looks away.",
		},
		{
			name:  "think at end without do",
			reply: "Say: Fine. Think: ...",
			want:  "Say: Fine.",
		},
		{
			name:  "no think marker",
			reply: "Say: Okay, tell me more. Do: leans forward.",
			want:  "Say: Okay, tell me more. Do: leans forward.",
		},
		{
			name:  "no markers at all",
			reply: "I guess that makes sense.",
			want:  "I guess that makes sense.",
		},
		{
			name:  "multiple think segments",
			reply: "Say: Alright. Think: He's pushing me. Do: nods. Say: But... Think: I want to leave.",
			want:  "Say: Alright. Do: nods. Say: But...",
		},
		{
			name:  "think first",
			reply: "Think: Here we go again. Do: sighs. Say: What now?",
			want:  "Do: sighs. Say: What now?",
		},
		{
			name:  "only think",
			reply: "Think: I have nothing to say.",
			want:  "",
		},
		{
			name:  "empty reply",
			reply: "",
			want:  "",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ExtractVisible(tc.reply); got != tc.want {
				t.Errorf("ExtractVisible(%q) = %q, want %q", tc.reply, got, tc.want)
			}
		})
	}
}
