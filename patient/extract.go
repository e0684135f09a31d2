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

import "strings"

// Markers of the three-segment roleplay convention. The patient model is
// instructed (not structurally forced) to partition replies into spoken,
// internal-thought, and action segments.
const (
	thinkMarker = "Think:"
	doMarker    = "Do:"
)

// ExtractVisible strips internal-thought segments from a raw patient
// reply, returning only what the doctor can see and hear.
//
// Each Think segment runs from its marker to the next Do marker (which
// stays visible) or, if no action segment follows, to the end of the
// text. A reply without a Think marker is visible verbatim. The full
// unfiltered reply stays in the agent's own history; only the
// doctor-facing channel is filtered.
func ExtractVisible(reply string) string {
	visible := reply
	for {
		start := strings.Index(visible, thinkMarker)
		if start < 0 {
			break
		}
		rest := visible[start+len(thinkMarker):]
		if end := strings.Index(rest, doMarker); end >= 0 {
			visible = visible[:start] + rest[end:]
		} else {
			visible = visible[:start]
		}
	}
	return strings.TrimSpace(visible)
}
