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

package runner

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/MadGAA-Lab/OSCE-Project-Stage2/evaluation"
	"github.com/MadGAA-Lab/OSCE-Project-Stage2/internal/testutil"
)

func reportSession() *evaluation.DialogueSession {
	return &evaluation.DialogueSession{
		SessionID:    "session-1",
		PersonaID:    "ENFP_F_LUNG",
		FinalOutcome: evaluation.StopPatientAccepted,
		TotalRounds:  2,
		Turns: []evaluation.DialogueTurn{
			{TurnNumber: 1, Speaker: evaluation.SpeakerDoctor, Message: "Hello."},
			{
				TurnNumber: 2, Speaker: evaluation.SpeakerPatient, Message: "Say: Hi.",
				RoundEvaluation: &evaluation.RoundEvaluation{RoundNumber: 1, EmpathyScore: 8, PersuasionScore: 6, SafetyScore: 10},
			},
			{TurnNumber: 3, Speaker: evaluation.SpeakerDoctor, Message: "The surgery is safe."},
			{
				TurnNumber: 4, Speaker: evaluation.SpeakerPatient, Message: "Say: Okay, let's do it.",
				RoundEvaluation: &evaluation.RoundEvaluation{RoundNumber: 2, EmpathyScore: 7, PersuasionScore: 9, SafetyScore: 8},
			},
		},
	}
}

func TestReport(t *testing.T) {
	llm := testutil.NewFakeLLM(testutil.FakeResponse{Text: `{
		"strengths": ["Acknowledged the patient's fear"],
		"weaknesses": ["Rushed the risk discussion"],
		"key_moments": ["Patient agreed after hearing the success rate"],
		"improvement_recommendations": ["Pause after delivering statistics"],
		"alternative_approaches": ["Offer a second opinion"],
		"evaluation_summary": "A persuasive consultation ending in acceptance."
	}`})
	reporter := NewReporter(llm, evaluation.NewAggregator(evaluation.DefaultWeights()), testPolicy)

	report := reporter.Report(context.Background(), reportSession())

	if report.SessionID != "session-1" {
		t.Errorf("SessionID = %q", report.SessionID)
	}
	if report.FinalOutcome != evaluation.StopPatientAccepted {
		t.Errorf("FinalOutcome = %q", report.FinalOutcome)
	}
	if report.OverallEmpathy != 7.5 || report.OverallPersuasion != 7.5 || report.OverallSafety != 9 {
		t.Errorf("overall scores = %v/%v/%v, want 7.5/7.5/9", report.OverallEmpathy, report.OverallPersuasion, report.OverallSafety)
	}
	if report.AggregateScore != 80 {
		t.Errorf("AggregateScore = %v, want 80", report.AggregateScore)
	}
	if len(report.RoundScores) != 2 {
		t.Errorf("RoundScores has %d rounds, want 2", len(report.RoundScores))
	}
	if report.EvaluationSummary != "A persuasive consultation ending in acceptance." {
		t.Errorf("EvaluationSummary = %q", report.EvaluationSummary)
	}
	if len(report.Strengths) != 1 || len(report.ImprovementRecommendations) != 1 {
		t.Errorf("qualitative fields not carried over: %+v", report)
	}
}

func TestReportDegradesWhenJudgeUnavailable(t *testing.T) {
	llm := testutil.NewFakeLLM(testutil.FakeResponse{Err: fmt.Errorf("judge down")})
	reporter := NewReporter(llm, evaluation.NewAggregator(evaluation.DefaultWeights()), testPolicy)

	report := reporter.Report(context.Background(), reportSession())

	// Arithmetic survives the failed narrative call.
	if report.AggregateScore != 80 {
		t.Errorf("AggregateScore = %v, want 80", report.AggregateScore)
	}
	if report.EvaluationSummary == "" {
		t.Error("EvaluationSummary empty on degraded report")
	}
	if !strings.Contains(report.EvaluationSummary, "patient_accepted") {
		t.Errorf("degraded summary missing outcome: %q", report.EvaluationSummary)
	}
	if len(report.Strengths) != 0 {
		t.Error("qualitative fields set despite judge failure")
	}
	if calls := llm.Calls(); calls != testPolicy.MaxAttempts {
		t.Errorf("judge calls = %d, want %d attempts", calls, testPolicy.MaxAttempts)
	}
}

func TestReportUserPromptCarriesDialogue(t *testing.T) {
	session := reportSession()
	scores := evaluation.SessionScores{Empathy: 7.5, Persuasion: 7.5, Safety: 9, Aggregate: 80}
	prompt := reportUserPrompt(session, scores)
	for _, want := range []string{"Doctor: The surgery is safe.", "Patient: Say: Okay, let's do it.", "patient_accepted after 2 rounds"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestOverallSummary(t *testing.T) {
	reports := []evaluation.PerformanceReport{
		{FinalOutcome: evaluation.StopPatientAccepted},
		{FinalOutcome: evaluation.StopPatientAccepted},
		{FinalOutcome: evaluation.StopPatientLeft},
		{FinalOutcome: evaluation.StopMaxRoundsReached},
	}
	got := overallSummary(reports, 1)
	want := "Evaluated 4 sessions (1 failed): 2 accepted treatment, 1 left, 1 reached the round limit."
	if got != want {
		t.Errorf("overallSummary = %q, want %q", got, want)
	}
}
