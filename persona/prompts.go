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

package persona

import (
	"fmt"
	"strings"
)

const backgroundSystemPrompt = `You are generating a complete patient background for a medical dialogue simulation.

Generate a realistic, detailed patient profile that includes:
1. Demographics (age 35-65, gender, occupation aligned with the personality)
2. Complete medical information (symptoms, diagnosis, treatment details, prognosis)
3. Personal background (family, lifestyle, values, concerns)

The patient background must be:
- Medically accurate and realistic
- Consistent with the MBTI personality type
- Cohesive and believable as a real person

Return a structured JSON object with ALL required fields filled in with realistic, detailed content.`

func backgroundUserPrompt(id ID, templates *Templates) string {
	var genderInstruction string
	if id.Gender != GenderUnspecified {
		genderInstruction = fmt.Sprintf("Gender is specified as: %s", id.Gender)
		if templates.Gender != "" {
			genderInstruction += "\nGender context:\n" + templates.Gender
		}
	} else {
		genderInstruction = "Gender is NOT specified. You should randomly choose male or female and generate an appropriate background."
	}

	return fmt.Sprintf(`Generate a complete patient background by combining these elements:

=== MBTI Personality Type: %s ===
%s

=== Gender ===
%s

=== Medical Case: %s ===
%s

Fill every field of the structured output, including medical_case set to %q.`,
		id.MBTI, templates.MBTI, genderInstruction, id.Case, templates.Case, id.Case)
}

const rolePromptSystemPrompt = `You are creating a patient roleplay system prompt from structured background information.

Your task: Transform the patient background data into a compelling, second-person narrative that will instruct an AI to roleplay this patient.

Write in SECOND PERSON ("You are...") as direct instructions to roleplay this character.
The prompt should:
- Establish the character's identity, background, and current situation
- Describe their personality and communication style based on the MBTI type
- Detail their medical situation and concerns
- Explain how they respond to doctors and medical discussions

Output 300-500 words of cohesive narrative.`

func rolePromptUserPrompt(id ID, templates *Templates, background *PatientBackground) string {
	return fmt.Sprintf(`Transform this patient background into a roleplay system prompt:

=== MBTI Type: %s ===
%s

=== Patient Background ===
Age: %d
Gender: %s
Occupation: %s

Medical Situation:
- Case: %s
- Symptoms: %s
- Diagnosis: %s
- Recommended Treatment: %s
- Treatment Risks: %s
- Treatment Benefits: %s
- Prognosis with Treatment: %s
- Prognosis without Treatment: %s

Personal Background:
- Family: %s
- Lifestyle: %s
- Values: %s
- Concerns and Fears: %s

Write a cohesive patient persona in second person ("You are...") that brings this character to life.`,
		id.MBTI, templates.MBTI,
		background.Age, background.Gender, background.Occupation,
		background.MedicalCase, background.Symptoms, background.Diagnosis,
		background.RecommendedTreatment, background.TreatmentRisks, background.TreatmentBenefits,
		background.PrognosisWithTreatment, background.PrognosisWithoutTreatment,
		background.FamilySituation, background.Lifestyle, background.Values, background.ConcernsAndFears)
}

const roleplayFooter = `

---
ROLEPLAY INSTRUCTIONS:
You are roleplaying this patient character in a medical consultation with a doctor. Stay fully in character throughout the entire conversation. Respond naturally as this patient would, expressing their concerns, asking questions, and reacting to the doctor's explanations based on your personality, background, and medical situation. Do not break character or discuss the roleplay itself.`

const roleplayExamplesSystemPrompt = `You are preparing the priming material for a patient roleplay session.

From the character description and background, produce:
- a core description the roleplay script hands to the actor
- short in-character acknowledgement and confirmation phrases
- the rules the actor must follow to stay in character
- one example each of what this patient would say, think, and do in a consultation

The say/think/do examples must sound like this specific patient: same vocabulary, same emotional register, same concerns.

Return a structured JSON object with all seven fields filled in.`

func roleplayExamplesUserPrompt(persona *PatientPersona, background *PatientBackground) string {
	var sb strings.Builder
	sb.WriteString("=== Character Description ===\n")
	sb.WriteString(persona.RolePrompt)
	sb.WriteString("\n\n=== Key Facts ===\n")
	fmt.Fprintf(&sb, "MBTI: %s, age %d, occupation %s\n", persona.MBTIType, background.Age, background.Occupation)
	fmt.Fprintf(&sb, "Diagnosis: %s\n", background.Diagnosis)
	fmt.Fprintf(&sb, "Concerns: %s\n", background.ConcernsAndFears)
	sb.WriteString("\nGenerate the seven roleplay priming fields for this character.")
	return sb.String()
}
