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

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"github.com/MadGAA-Lab/OSCE-Project-Stage2/evaluation"
	"github.com/MadGAA-Lab/OSCE-Project-Stage2/internal/retry"
	"github.com/MadGAA-Lab/OSCE-Project-Stage2/model"
)

// qualitativeReport is the judge's structured output for the post-session
// narrative analysis.
type qualitativeReport struct {
	Strengths                  []string `json:"strengths"`
	Weaknesses                 []string `json:"weaknesses"`
	KeyMoments                 []string `json:"key_moments"`
	ImprovementRecommendations []string `json:"improvement_recommendations"`
	AlternativeApproaches      []string `json:"alternative_approaches"`
	EvaluationSummary          string   `json:"evaluation_summary"`
}

// Reporter rolls a finished session into its performance report. The
// arithmetic part is always present; the qualitative narrative comes from
// one best-effort judge call and degrades to a generated summary line when
// the judge is unavailable.
type Reporter struct {
	llm    model.LLM
	agg    *evaluation.Aggregator
	policy retry.Policy
}

// NewReporter creates a reporter.
func NewReporter(llm model.LLM, agg *evaluation.Aggregator, policy retry.Policy) *Reporter {
	if policy.MaxAttempts == 0 {
		policy = retry.DefaultJudge()
	}
	return &Reporter{llm: llm, agg: agg, policy: policy}
}

// Report builds the performance report for one session.
func (r *Reporter) Report(ctx context.Context, session *evaluation.DialogueSession) *evaluation.PerformanceReport {
	rounds := session.RoundEvaluations()
	scores := r.agg.SessionScores(rounds)

	report := &evaluation.PerformanceReport{
		SessionID:         session.SessionID,
		FinalOutcome:      session.FinalOutcome,
		TotalRounds:       session.TotalRounds,
		RoundScores:       rounds,
		OverallEmpathy:    scores.Empathy,
		OverallPersuasion: scores.Persuasion,
		OverallSafety:     scores.Safety,
		AggregateScore:    scores.Aggregate,
	}

	qualitative, err := r.synthesize(ctx, session, scores)
	if err != nil {
		log.Warn().Err(err).Str("session_id", session.SessionID).Msg("qualitative report synthesis failed, keeping arithmetic scores only")
		report.EvaluationSummary = fmt.Sprintf(
			"Session ended after %d rounds with outcome %s. Scores: empathy %.2f, persuasion %.2f, safety %.2f (aggregate %.2f/100).",
			session.TotalRounds, session.FinalOutcome,
			scores.Empathy, scores.Persuasion, scores.Safety, scores.Aggregate)
		return report
	}

	report.Strengths = qualitative.Strengths
	report.Weaknesses = qualitative.Weaknesses
	report.KeyMoments = qualitative.KeyMoments
	report.ImprovementRecommendations = qualitative.ImprovementRecommendations
	report.AlternativeApproaches = qualitative.AlternativeApproaches
	report.EvaluationSummary = qualitative.EvaluationSummary
	return report
}

func (r *Reporter) synthesize(ctx context.Context, session *evaluation.DialogueSession, scores evaluation.SessionScores) (*qualitativeReport, error) {
	req := &model.LLMRequest{
		Contents: []*genai.Content{model.NewUserText(reportUserPrompt(session, scores))},
		Config: &genai.GenerateContentConfig{
			SystemInstruction: model.NewUserText(reportSystemPrompt),
			ResponseMIMEType:  "application/json",
			ResponseSchema:    qualitativeReportSchema(),
		},
	}

	return retry.Do(ctx, r.policy, "qualitative report synthesis", func(ctx context.Context) (*qualitativeReport, error) {
		resp, err := r.llm.GenerateContent(ctx, req)
		if err != nil {
			return nil, err
		}
		var qr qualitativeReport
		if err := model.UnmarshalJSONResponse(resp, &qr); err != nil {
			return nil, err
		}
		if qr.EvaluationSummary == "" {
			return nil, fmt.Errorf("report synthesis returned no summary")
		}
		return &qr, nil
	})
}

const reportSystemPrompt = `You are an expert medical communication coach reviewing a completed doctor-patient consultation.

Analyze the doctor's overall performance across the whole dialogue and produce:
1. **strengths**: What the doctor did well (specific, cite moments)
2. **weaknesses**: Where the doctor fell short
3. **key_moments**: Turning points in the conversation, good or bad
4. **improvement_recommendations**: Concrete, actionable advice
5. **alternative_approaches**: What the doctor could have tried instead
6. **evaluation_summary**: A short overall narrative of the consultation and its outcome`

func reportUserPrompt(session *evaluation.DialogueSession, scores evaluation.SessionScores) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Consultation outcome: %s after %d rounds.\n", session.FinalOutcome, session.TotalRounds)
	fmt.Fprintf(&sb, "Category scores: empathy %.2f/10, persuasion %.2f/10, safety %.2f/10 (aggregate %.2f/100).\n\n", scores.Empathy, scores.Persuasion, scores.Safety, scores.Aggregate)
	sb.WriteString("=== Full Dialogue ===\n")
	for _, turn := range session.Turns {
		switch turn.Speaker {
		case evaluation.SpeakerDoctor:
			fmt.Fprintf(&sb, "Doctor: %s\n", turn.Message)
		case evaluation.SpeakerPatient:
			fmt.Fprintf(&sb, "Patient: %s\n", turn.Message)
		}
	}
	sb.WriteString("\nProvide your analysis of the doctor's performance.")
	return sb.String()
}

func qualitativeReportSchema() *genai.Schema {
	stringList := func(desc string) *genai.Schema {
		return &genai.Schema{
			Type:        genai.TypeArray,
			Items:       &genai.Schema{Type: genai.TypeString},
			Description: desc,
		}
	}
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"strengths":                   stringList("What the doctor did well"),
			"weaknesses":                  stringList("Where the doctor fell short"),
			"key_moments":                 stringList("Turning points in the conversation"),
			"improvement_recommendations": stringList("Concrete, actionable advice"),
			"alternative_approaches":      stringList("What could have been tried instead"),
			"evaluation_summary":          {Type: genai.TypeString, Description: "Short overall narrative"},
		},
		Required: []string{
			"strengths", "weaknesses", "key_moments",
			"improvement_recommendations", "alternative_approaches", "evaluation_summary",
		},
	}
}
