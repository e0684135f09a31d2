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
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"github.com/MadGAA-Lab/OSCE-Project-Stage2/internal/retry"
	"github.com/MadGAA-Lab/OSCE-Project-Stage2/model"
)

// Constructor generates patient personas from catalog templates.
//
// Stage 1 generates the full private background (structured output),
// stage 2 renders it into a second-person role prompt, and the clinical
// view is a pure projection of the background. Persona generation is
// quality-critical: a garbled background would silently corrupt every
// score derived from the session, so retry exhaustion here is fatal.
type Constructor struct {
	llm     model.LLM
	catalog *Catalog
	policy  retry.Policy
}

// NewConstructor creates a persona constructor. A zero policy falls back
// to the constructor default.
func NewConstructor(llm model.LLM, catalog *Catalog, policy retry.Policy) *Constructor {
	if policy.MaxAttempts == 0 {
		policy = retry.DefaultConstructor()
	}
	return &Constructor{llm: llm, catalog: catalog, policy: policy}
}

// Construct generates the complete persona for id: the playable persona,
// the private background, and the clinical view handed to the doctor
// boundary. Gender appears in the clinical view only when id specified it.
func (c *Constructor) Construct(ctx context.Context, id ID) (*PatientPersona, *PatientBackground, PatientClinicalInfo, error) {
	templates, err := c.catalog.LoadTemplates(id)
	if err != nil {
		return nil, nil, PatientClinicalInfo{}, err
	}

	background, err := c.generateBackground(ctx, id, templates)
	if err != nil {
		return nil, nil, PatientClinicalInfo{}, err
	}

	rolePrompt, err := c.buildRolePrompt(ctx, id, templates, background)
	if err != nil {
		return nil, nil, PatientClinicalInfo{}, err
	}

	persona := &PatientPersona{
		PersonaID:   id.String(),
		MBTIType:    id.MBTI,
		Gender:      background.Gender,
		MedicalCase: id.Case,
		RolePrompt:  rolePrompt,
	}
	clinicalInfo := DeriveClinicalInfo(background, id.Gender != GenderUnspecified)

	log.Info().
		Str("persona_id", id.String()).
		Int("age", background.Age).
		Str("occupation", background.Occupation).
		Msg("constructed patient persona")
	return persona, background, clinicalInfo, nil
}

// generateBackground runs the stage-1 structured-output call.
func (c *Constructor) generateBackground(ctx context.Context, id ID, templates *Templates) (*PatientBackground, error) {
	req := &model.LLMRequest{
		Contents: []*genai.Content{model.NewUserText(backgroundUserPrompt(id, templates))},
		Config: &genai.GenerateContentConfig{
			SystemInstruction: model.NewUserText(backgroundSystemPrompt),
			ResponseMIMEType:  "application/json",
			ResponseSchema:    backgroundSchema(),
		},
	}

	background, err := retry.Do(ctx, c.policy, "persona background generation", func(ctx context.Context) (*PatientBackground, error) {
		resp, err := c.llm.GenerateContent(ctx, req)
		if err != nil {
			return nil, err
		}
		var bg PatientBackground
		if err := model.UnmarshalJSONResponse(resp, &bg); err != nil {
			return nil, err
		}
		if err := validateBackground(&bg, id); err != nil {
			return nil, err
		}
		return &bg, nil
	})
	if err != nil {
		return nil, fmt.Errorf("persona %s: %w", id, err)
	}
	return background, nil
}

// validateBackground rejects structurally valid but semantically broken
// generations so the retry loop can take another attempt.
func validateBackground(bg *PatientBackground, id ID) error {
	switch bg.Gender {
	case GenderMale, GenderFemale:
	default:
		return fmt.Errorf("generated background has no concrete gender (got %q)", bg.Gender)
	}
	if id.Gender != GenderUnspecified && bg.Gender != id.Gender {
		return fmt.Errorf("generated gender %q contradicts persona gender %q", bg.Gender, id.Gender)
	}
	if bg.Age <= 0 {
		return fmt.Errorf("generated background has no age")
	}
	if bg.Diagnosis == "" || bg.RecommendedTreatment == "" {
		return fmt.Errorf("generated background is missing medical fields")
	}
	bg.MedicalCase = id.Case
	return nil
}

// buildRolePrompt runs the stage-2 narrative call and appends the fixed
// roleplay-discipline footer.
func (c *Constructor) buildRolePrompt(ctx context.Context, id ID, templates *Templates, background *PatientBackground) (string, error) {
	req := &model.LLMRequest{
		Contents: []*genai.Content{model.NewUserText(rolePromptUserPrompt(id, templates, background))},
		Config: &genai.GenerateContentConfig{
			SystemInstruction: model.NewUserText(rolePromptSystemPrompt),
		},
	}

	narrative, err := retry.Do(ctx, c.policy, "persona role prompt generation", func(ctx context.Context) (string, error) {
		resp, err := c.llm.GenerateContent(ctx, req)
		if err != nil {
			return "", err
		}
		text := resp.Text()
		if text == "" {
			return "", fmt.Errorf("empty role prompt")
		}
		return text, nil
	})
	if err != nil {
		return "", fmt.Errorf("persona %s: %w", id, err)
	}
	return narrative + roleplayFooter, nil
}

// GenerateRoleplayExamples produces the seven priming fields the roleplay
// formatter substitutes into the context script. Like the other
// constructor stages it is fatal on retry exhaustion.
func (c *Constructor) GenerateRoleplayExamples(ctx context.Context, id ID, persona *PatientPersona, background *PatientBackground) (*RoleplayExamples, error) {
	req := &model.LLMRequest{
		Contents: []*genai.Content{model.NewUserText(roleplayExamplesUserPrompt(persona, background))},
		Config: &genai.GenerateContentConfig{
			SystemInstruction: model.NewUserText(roleplayExamplesSystemPrompt),
			ResponseMIMEType:  "application/json",
			ResponseSchema:    roleplayExamplesSchema(),
		},
	}

	examples, err := retry.Do(ctx, c.policy, "roleplay example generation", func(ctx context.Context) (*RoleplayExamples, error) {
		resp, err := c.llm.GenerateContent(ctx, req)
		if err != nil {
			return nil, err
		}
		var ex RoleplayExamples
		if err := model.UnmarshalJSONResponse(resp, &ex); err != nil {
			return nil, err
		}
		if ex.RoleCoreDescription == "" || ex.ExampleSay == "" {
			return nil, fmt.Errorf("roleplay examples incomplete")
		}
		return &ex, nil
	})
	if err != nil {
		return nil, fmt.Errorf("persona %s: %w", id, err)
	}
	return examples, nil
}

func backgroundSchema() *genai.Schema {
	stringProp := func(desc string) *genai.Schema {
		return &genai.Schema{Type: genai.TypeString, Description: desc}
	}
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"age":        {Type: genai.TypeInteger, Description: "Patient age, 35-65, realistic for the condition"},
			"gender":     {Type: genai.TypeString, Enum: []string{"male", "female"}},
			"occupation": stringProp("Job aligned with the personality"),

			"medical_case":                stringProp("The medical case identifier"),
			"symptoms":                    stringProp("Current symptoms the patient experiences"),
			"diagnosis":                   stringProp("Medical diagnosis from tests and imaging"),
			"recommended_treatment":       stringProp("Recommended surgical procedure"),
			"treatment_risks":             stringProp("Risks of the treatment"),
			"treatment_benefits":          stringProp("Benefits of the treatment"),
			"prognosis_with_treatment":    stringProp("Expected outcome if treated"),
			"prognosis_without_treatment": stringProp("Expected outcome if untreated"),

			"family_situation":   stringProp("Family context"),
			"lifestyle":          stringProp("Daily life and habits"),
			"values":             stringProp("What matters to this person"),
			"concerns_and_fears": stringProp("Personality-driven concerns about the medical situation"),
		},
		Required: []string{
			"age", "gender", "occupation", "medical_case", "symptoms", "diagnosis",
			"recommended_treatment", "treatment_risks", "treatment_benefits",
			"prognosis_with_treatment", "prognosis_without_treatment",
			"family_situation", "lifestyle", "values", "concerns_and_fears",
		},
	}
}

func roleplayExamplesSchema() *genai.Schema {
	stringProp := func(desc string) *genai.Schema {
		return &genai.Schema{Type: genai.TypeString, Description: desc}
	}
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"role_core_description":       stringProp("Detailed character description for the priming script"),
			"role_acknowledgement_phrase": stringProp("In-character acknowledgement after receiving the description"),
			"role_rules_and_constraints":  stringProp("Rules for staying in character"),
			"role_confirmation_phrase":    stringProp("In-character confirmation after receiving the rules"),
			"example_say":                 stringProp("Example spoken dialogue from this patient"),
			"example_think":               stringProp("Example inner thought of this patient"),
			"example_do":                  stringProp("Example visible action of this patient"),
		},
		Required: []string{
			"role_core_description", "role_acknowledgement_phrase",
			"role_rules_and_constraints", "role_confirmation_phrase",
			"example_say", "example_think", "example_do",
		},
	}
}
