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

// PatientPersona is the minimal persona record handed to the session
// runner. The generated role prompt conditions the patient agent; nothing
// in it crosses the doctor-facing boundary.
type PatientPersona struct {
	PersonaID   string `json:"persona_id"`
	MBTIType    string `json:"mbti_type"`
	Gender      Gender `json:"gender,omitempty"`
	MedicalCase Case   `json:"medical_case"`
	RolePrompt  string `json:"role_prompt"`
}

// PatientBackground is the full private patient profile. It is generated
// once per session, immutable afterward, and never shared in full with the
// doctor-facing boundary.
type PatientBackground struct {
	Age        int    `json:"age"`
	Gender     Gender `json:"gender"`
	Occupation string `json:"occupation"`

	MedicalCase               Case   `json:"medical_case"`
	Symptoms                  string `json:"symptoms"`
	Diagnosis                 string `json:"diagnosis"`
	RecommendedTreatment      string `json:"recommended_treatment"`
	TreatmentRisks            string `json:"treatment_risks"`
	TreatmentBenefits         string `json:"treatment_benefits"`
	PrognosisWithTreatment    string `json:"prognosis_with_treatment"`
	PrognosisWithoutTreatment string `json:"prognosis_without_treatment"`

	FamilySituation  string `json:"family_situation"`
	Lifestyle        string `json:"lifestyle"`
	Values           string `json:"values"`
	ConcernsAndFears string `json:"concerns_and_fears"`
}

// PatientClinicalInfo is the projection of PatientBackground a treating
// clinician would legitimately have: chart data only. It carries no
// symptoms (the patient reports those), no personality, no lifestyle, no
// concerns. Gender is present only when the persona ID fixed it.
type PatientClinicalInfo struct {
	Age                       int    `json:"age"`
	Gender                    Gender `json:"gender,omitempty"`
	MedicalCase               Case   `json:"medical_case"`
	Diagnosis                 string `json:"diagnosis"`
	RecommendedTreatment      string `json:"recommended_treatment"`
	TreatmentRisks            string `json:"treatment_risks"`
	TreatmentBenefits         string `json:"treatment_benefits"`
	PrognosisWithTreatment    string `json:"prognosis_with_treatment"`
	PrognosisWithoutTreatment string `json:"prognosis_without_treatment"`
}

// RoleplayExamples are the generated narrative fragments that prime the
// patient agent; they condition the roleplay only and are never persisted
// as part of the clinical record.
type RoleplayExamples struct {
	RoleCoreDescription       string `json:"role_core_description"`
	RoleAcknowledgementPhrase string `json:"role_acknowledgement_phrase"`
	RoleRulesAndConstraints   string `json:"role_rules_and_constraints"`
	RoleConfirmationPhrase    string `json:"role_confirmation_phrase"`
	ExampleSay                string `json:"example_say"`
	ExampleThink              string `json:"example_think"`
	ExampleDo                 string `json:"example_do"`
}

// DeriveClinicalInfo projects a background into its clinical view. It is a
// pure function: no model call, no randomness, bit-identical output for
// identical input. includeGender implements the privacy rule that a gender
// the caller never specified stays out of the clinical view even though
// the background generation made it concrete.
func DeriveClinicalInfo(background *PatientBackground, includeGender bool) PatientClinicalInfo {
	info := PatientClinicalInfo{
		Age:                       background.Age,
		MedicalCase:               background.MedicalCase,
		Diagnosis:                 background.Diagnosis,
		RecommendedTreatment:      background.RecommendedTreatment,
		TreatmentRisks:            background.TreatmentRisks,
		TreatmentBenefits:         background.TreatmentBenefits,
		PrognosisWithTreatment:    background.PrognosisWithTreatment,
		PrognosisWithoutTreatment: background.PrognosisWithoutTreatment,
	}
	if includeGender {
		info.Gender = background.Gender
	}
	return info
}
