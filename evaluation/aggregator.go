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

import "math"

// Weights controls how the three category means combine into the 0-100
// aggregate. Weights are a configuration input, never hardcoded by the
// aggregator; they are normalized by their sum.
type Weights struct {
	Empathy    float64 `yaml:"empathy" json:"empathy"`
	Persuasion float64 `yaml:"persuasion" json:"persuasion"`
	Safety     float64 `yaml:"safety" json:"safety"`
}

// DefaultWeights weighs the three categories equally.
func DefaultWeights() Weights {
	return Weights{Empathy: 1, Persuasion: 1, Safety: 1}
}

func (w Weights) sum() float64 {
	return w.Empathy + w.Persuasion + w.Safety
}

// SessionScores are the per-session category means (0-10) and the
// weighted aggregate (0-100).
type SessionScores struct {
	Empathy    float64 `json:"empathy"`
	Persuasion float64 `json:"persuasion"`
	Safety     float64 `json:"safety"`
	Aggregate  float64 `json:"aggregate"`
}

// Aggregator rolls round evaluations into session scores and session
// aggregates into run-level results. It is pure arithmetic: no model
// calls, no I/O.
type Aggregator struct {
	weights Weights
}

// NewAggregator creates an aggregator. Non-positive weight sums fall back
// to equal weights.
func NewAggregator(weights Weights) *Aggregator {
	if weights.sum() <= 0 {
		weights = DefaultWeights()
	}
	return &Aggregator{weights: weights}
}

// SessionScores computes category means and the weighted aggregate for a
// session's rounds. A session with zero completed rounds scores 0, not a
// division fault.
func (a *Aggregator) SessionScores(rounds []RoundEvaluation) SessionScores {
	if len(rounds) == 0 {
		return SessionScores{}
	}

	var scores SessionScores
	for _, round := range rounds {
		scores.Empathy += round.EmpathyScore
		scores.Persuasion += round.PersuasionScore
		scores.Safety += round.SafetyScore
	}
	n := float64(len(rounds))
	scores.Empathy = round2(scores.Empathy / n)
	scores.Persuasion = round2(scores.Persuasion / n)
	scores.Safety = round2(scores.Safety / n)

	weighted := (scores.Empathy*a.weights.Empathy +
		scores.Persuasion*a.weights.Persuasion +
		scores.Safety*a.weights.Safety) / a.weights.sum()
	scores.Aggregate = round2(weighted * 10)
	return scores
}

// MeanAggregate computes the run-level mean of session aggregate scores.
func (a *Aggregator) MeanAggregate(reports []PerformanceReport) float64 {
	if len(reports) == 0 {
		return 0
	}
	var total float64
	for _, report := range reports {
		total += report.AggregateScore
	}
	return round2(total / float64(len(reports)))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
