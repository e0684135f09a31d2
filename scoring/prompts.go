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

package scoring

import (
	"fmt"
	"strings"

	"github.com/MadGAA-Lab/OSCE-Project-Stage2/evaluation"
)

func formatCriteriaForPrompt(category evaluation.Category, criteria []Criterion) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "\n=== %s CRITERIA ===\n", strings.ToUpper(string(category)))
	for _, c := range criteria {
		fmt.Fprintf(&sb, "\n\n%d. %s", c.ID, c.Text)
		fmt.Fprintf(&sb, "\n   ✓ Good example: %s", c.GoodExample)
		fmt.Fprintf(&sb, "\n   ✗ Bad example: %s", c.BadExample)
	}
	return sb.String()
}

func categorySystemPrompt(category evaluation.Category, criteria []Criterion) string {
	return fmt.Sprintf(`You are an expert medical dialogue evaluator using standardized criteria.

Evaluate the doctor's performance on **%[1]s** criteria only.

For EACH criterion, determine:
1. **status**: "met", "not_met", or "not_relevant"
   - "met": The doctor clearly demonstrated this criterion in their message
   - "not_met": This criterion was relevant but the doctor did not meet it
   - "not_relevant": This criterion does not apply to this specific round/interaction

2. **evidence**: Brief explanation (1-2 sentences) citing specific parts of the doctor's message

%[2]s

IMPORTANT:
- A criterion is "not_relevant" only if it doesn't apply to this specific interaction
- If a criterion is relevant but the doctor didn't meet it, mark as "not_met"
- Be objective and evidence-based
- Cite specific phrases or approaches from the doctor's message`, category, formatCriteriaForPrompt(category, criteria))
}

func categoryUserPrompt(category evaluation.Category, roundNumber int, doctorMessage, patientResponse, dialogueHistory string) string {
	return fmt.Sprintf(`Evaluate the %[1]s criteria for Round %[2]d:

=== Doctor's Message ===
%[3]s

=== Patient's Response ===
%[4]s

=== Full Dialogue History (for context) ===
%[5]s

Evaluate each %[1]s criterion and provide your assessment.`, category, roundNumber, doctorMessage, patientResponse, dialogueHistory)
}

const stopConditionSystemPrompt = `You are an expert medical dialogue evaluator.

Assess the patient's state and whether the dialogue should continue or stop.

Evaluate:
1. **patient_state_change**: How did the patient's attitude/receptiveness change this round?
   - Describe the shift in patient's openness to treatment
   - Note any breakthrough moments or setbacks
   - Be specific about what changed

2. **should_stop**: Should the dialogue end now?
   - Stop if patient clearly accepted the treatment
   - Stop if patient clearly rejected and wants to leave
   - Stop if max rounds reached
   - Continue otherwise

3. **stop_reason**: If stopping, specify why:
   - "patient_accepted": Patient agreed to treatment
   - "patient_left": Patient refused and wants to end consultation
   - "max_rounds_reached": Hit maximum round limit
   - null: Continue dialogue`

func stopConditionUserPrompt(roundNumber, maxRounds int, doctorMessage, patientResponse, dialogueHistory string) string {
	return fmt.Sprintf(`Assess stop condition for Round %d of %d:

=== Doctor's Message ===
%s

=== Patient's Response ===
%s

=== Full Dialogue History ===
%s

Provide your assessment of patient state change and stop condition.`, roundNumber, maxRounds, doctorMessage, patientResponse, dialogueHistory)
}
