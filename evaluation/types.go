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

// Package evaluation defines the data model of the medical dialogue
// evaluation pipeline and the pure arithmetic that rolls per-round scores
// into session and run reports.
//
// Entities flow between components by value; no component mutates
// another's records after creation.
package evaluation

import "time"

// Speaker identifies who produced a dialogue turn.
type Speaker string

const (
	SpeakerDoctor  Speaker = "doctor"
	SpeakerPatient Speaker = "patient"
)

// Category is one of the three rubric categories.
type Category string

const (
	CategoryEmpathy    Category = "Empathy"
	CategoryPersuasion Category = "Persuasion"
	CategorySafety     Category = "Safety"
)

// Categories lists the rubric categories in scoring order.
var Categories = []Category{CategoryEmpathy, CategoryPersuasion, CategorySafety}

// CriterionStatus is the judge's verdict for one criterion in one round.
type CriterionStatus string

const (
	StatusMet         CriterionStatus = "met"
	StatusNotMet      CriterionStatus = "not_met"
	StatusNotRelevant CriterionStatus = "not_relevant"
)

// StopReason enumerates why a session terminated.
type StopReason string

const (
	StopPatientAccepted  StopReason = "patient_accepted"
	StopPatientLeft      StopReason = "patient_left"
	StopMaxRoundsReached StopReason = "max_rounds_reached"
)

// CriterionEvaluation is the judge's verdict on a single rubric criterion.
type CriterionEvaluation struct {
	CriterionID   int             `json:"criterion_id"`
	CriterionText string          `json:"criterion_text"`
	Category      Category        `json:"category"`
	Status        CriterionStatus `json:"status"`
	Evidence      string          `json:"evidence,omitempty"`
}

// RoundEvaluation holds the complete judgment of one doctor→patient round:
// all criterion verdicts, the three derived category scores (0-10), and
// the stop recommendation. The engine only recommends stopping; the
// session runner enforces it alongside the hard round ceiling.
type RoundEvaluation struct {
	RoundNumber int `json:"round_number"`

	CriteriaEvaluations []CriterionEvaluation `json:"criteria_evaluations"`

	EmpathyScore    float64 `json:"empathy_score"`
	PersuasionScore float64 `json:"persuasion_score"`
	SafetyScore     float64 `json:"safety_score"`

	PatientStateChange string     `json:"patient_state_change"`
	ShouldStop         bool       `json:"should_stop"`
	StopReason         StopReason `json:"stop_reason,omitempty"`
}

// DialogueTurn is one message in a session; turn numbers are strictly
// increasing. A completed round's evaluation hangs off the patient turn.
type DialogueTurn struct {
	TurnNumber      int              `json:"turn_number"`
	Speaker         Speaker          `json:"speaker"`
	Message         string           `json:"message"`
	Timestamp       time.Time        `json:"timestamp"`
	RoundEvaluation *RoundEvaluation `json:"round_evaluation,omitempty"`
}

// DialogueSession is one full conversation for one persona against one
// doctor endpoint.
type DialogueSession struct {
	SessionID      string         `json:"session_id"`
	PersonaID      string         `json:"persona_id"`
	DoctorAgentURL string         `json:"doctor_agent_url"`
	StartTime      time.Time      `json:"start_time"`
	EndTime        *time.Time     `json:"end_time,omitempty"`
	Turns          []DialogueTurn `json:"turns"`
	TotalRounds    int            `json:"total_rounds"`
	FinalOutcome   StopReason     `json:"final_outcome,omitempty"`
}

// RoundEvaluations collects the evaluations of all completed rounds in
// turn order.
func (s *DialogueSession) RoundEvaluations() []RoundEvaluation {
	var evals []RoundEvaluation
	for _, turn := range s.Turns {
		if turn.RoundEvaluation != nil {
			evals = append(evals, *turn.RoundEvaluation)
		}
	}
	return evals
}

// PerformanceReport is the per-session rollup: per-round scores, overall
// category means, the weighted 0-100 aggregate, and the qualitative
// synthesis.
type PerformanceReport struct {
	SessionID    string     `json:"session_id"`
	FinalOutcome StopReason `json:"final_outcome"`
	TotalRounds  int        `json:"total_rounds"`

	RoundScores []RoundEvaluation `json:"round_scores"`

	OverallEmpathy    float64 `json:"overall_empathy"`
	OverallPersuasion float64 `json:"overall_persuasion"`
	OverallSafety     float64 `json:"overall_safety"`
	AggregateScore    float64 `json:"aggregate_score"`

	Strengths  []string `json:"strengths,omitempty"`
	Weaknesses []string `json:"weaknesses,omitempty"`
	KeyMoments []string `json:"key_moments,omitempty"`

	ImprovementRecommendations []string `json:"improvement_recommendations,omitempty"`
	AlternativeApproaches      []string `json:"alternative_approaches,omitempty"`

	EvaluationSummary string `json:"evaluation_summary"`
}

// MedicalEvalResult is the run-level collection across all evaluated
// personas.
type MedicalEvalResult struct {
	AssessmentID       string              `json:"assessment_id"`
	DoctorAgentURL     string              `json:"doctor_agent_url"`
	Timestamp          time.Time           `json:"timestamp"`
	Sessions           []DialogueSession   `json:"sessions"`
	Reports            []PerformanceReport `json:"reports"`
	MeanAggregateScore float64             `json:"mean_aggregate_score"`
	OverallSummary     string              `json:"overall_summary,omitempty"`
}
