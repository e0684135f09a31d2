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

package evaluation

import "testing"

func TestSessionScores(t *testing.T) {
	agg := NewAggregator(DefaultWeights())
	rounds := []RoundEvaluation{
		{EmpathyScore: 8, PersuasionScore: 6, SafetyScore: 10},
		{EmpathyScore: 7, PersuasionScore: 9, SafetyScore: 8},
	}

	got := agg.SessionScores(rounds)
	if got.Empathy != 7.5 {
		t.Errorf("Empathy = %v, want 7.5", got.Empathy)
	}
	if got.Persuasion != 7.5 {
		t.Errorf("Persuasion = %v, want 7.5", got.Persuasion)
	}
	if got.Safety != 9 {
		t.Errorf("Safety = %v, want 9", got.Safety)
	}
	// Equal weights: mean(7.5, 7.5, 9) = 8.0 → 80 on the 0-100 scale.
	if got.Aggregate != 80 {
		t.Errorf("Aggregate = %v, want 80", got.Aggregate)
	}
}

func TestSessionScoresWeighted(t *testing.T) {
	agg := NewAggregator(Weights{Empathy: 1, Persuasion: 2, Safety: 1})
	rounds := []RoundEvaluation{
		{EmpathyScore: 4, PersuasionScore: 8, SafetyScore: 6},
	}

	got := agg.SessionScores(rounds)
	// (4*1 + 8*2 + 6*1) / 4 = 6.5 → 65.
	if got.Aggregate != 65 {
		t.Errorf("Aggregate = %v, want 65", got.Aggregate)
	}
}

func TestSessionScoresZeroRounds(t *testing.T) {
	agg := NewAggregator(DefaultWeights())
	got := agg.SessionScores(nil)
	if got != (SessionScores{}) {
		t.Errorf("SessionScores(nil) = %+v, want zero scores", got)
	}
}

func TestSessionScoresRounding(t *testing.T) {
	agg := NewAggregator(DefaultWeights())
	rounds := []RoundEvaluation{
		{EmpathyScore: 7.78, PersuasionScore: 5, SafetyScore: 5},
		{EmpathyScore: 6.67, PersuasionScore: 5, SafetyScore: 5},
		{EmpathyScore: 8.89, PersuasionScore: 5, SafetyScore: 5},
	}

	got := agg.SessionScores(rounds)
	// (7.78 + 6.67 + 8.89) / 3 = 7.78.
	if got.Empathy != 7.78 {
		t.Errorf("Empathy = %v, want 7.78", got.Empathy)
	}
}

func TestNewAggregatorRejectsNonPositiveWeights(t *testing.T) {
	agg := NewAggregator(Weights{})
	rounds := []RoundEvaluation{{EmpathyScore: 6, PersuasionScore: 6, SafetyScore: 6}}
	if got := agg.SessionScores(rounds); got.Aggregate != 60 {
		t.Errorf("Aggregate = %v, want 60 with fallback equal weights", got.Aggregate)
	}
}

func TestMeanAggregate(t *testing.T) {
	agg := NewAggregator(DefaultWeights())
	reports := []PerformanceReport{
		{AggregateScore: 80},
		{AggregateScore: 65.5},
		{AggregateScore: 71},
	}
	if got := agg.MeanAggregate(reports); got != 72.17 {
		t.Errorf("MeanAggregate = %v, want 72.17", got)
	}
	if got := agg.MeanAggregate(nil); got != 0 {
		t.Errorf("MeanAggregate(nil) = %v, want 0", got)
	}
}

func TestRoundEvaluations(t *testing.T) {
	eval1 := &RoundEvaluation{RoundNumber: 1}
	eval2 := &RoundEvaluation{RoundNumber: 2}
	session := DialogueSession{Turns: []DialogueTurn{
		{TurnNumber: 1, Speaker: SpeakerDoctor},
		{TurnNumber: 2, Speaker: SpeakerPatient, RoundEvaluation: eval1},
		{TurnNumber: 3, Speaker: SpeakerDoctor},
		{TurnNumber: 4, Speaker: SpeakerPatient, RoundEvaluation: eval2},
	}}

	evals := session.RoundEvaluations()
	if len(evals) != 2 {
		t.Fatalf("RoundEvaluations returned %d evals, want 2", len(evals))
	}
	if evals[0].RoundNumber != 1 || evals[1].RoundNumber != 2 {
		t.Errorf("rounds out of order: %d, %d", evals[0].RoundNumber, evals[1].RoundNumber)
	}
}
