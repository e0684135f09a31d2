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
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"github.com/MadGAA-Lab/OSCE-Project-Stage2/evaluation"
	"github.com/MadGAA-Lab/OSCE-Project-Stage2/internal/retry"
	"github.com/MadGAA-Lab/OSCE-Project-Stage2/model"
)

// categoryEvaluation is the judge's structured output for one category
// pass.
type categoryEvaluation struct {
	CriteriaEvaluations []evaluation.CriterionEvaluation `json:"criteria_evaluations"`
}

// stopConditionEvaluation is the judge's structured output for the stop
// assessment pass.
type stopConditionEvaluation struct {
	PatientStateChange string  `json:"patient_state_change"`
	ShouldStop         bool    `json:"should_stop"`
	StopReason         *string `json:"stop_reason"`
}

// Engine scores one dialogue round at a time with four judge calls: one
// structured pass per rubric category plus a stop-condition pass.
//
// Scoring integrity is the whole point of the pipeline, so unlike the
// patient agent there is no degraded fallback here: if the judge cannot
// produce a verdict within the retry budget, evaluation of the session
// fails.
type Engine struct {
	llm    model.LLM
	rubric *Rubric
	policy retry.Policy
}

// NewEngine creates a scoring engine over the given rubric. A zero policy
// falls back to the judge default.
func NewEngine(llm model.LLM, rubric *Rubric, policy retry.Policy) *Engine {
	if policy.MaxAttempts == 0 {
		policy = retry.DefaultJudge()
	}
	return &Engine{llm: llm, rubric: rubric, policy: policy}
}

// EvaluateRound judges one completed doctor→patient exchange. The returned
// evaluation carries every criterion verdict, the three derived category
// scores and the stop recommendation.
func (e *Engine) EvaluateRound(ctx context.Context, roundNumber int, doctorMessage, patientResponse, dialogueHistory string, maxRounds int) (*evaluation.RoundEvaluation, error) {
	log.Info().Int("round", roundNumber).Msg("evaluating round")

	var allEvals []evaluation.CriterionEvaluation
	for _, category := range evaluation.Categories {
		categoryEvals, err := e.evaluateCategory(ctx, category, roundNumber, doctorMessage, patientResponse, dialogueHistory)
		if err != nil {
			return nil, err
		}
		allEvals = append(allEvals, categoryEvals...)
		log.Info().
			Int("round", roundNumber).
			Str("category", string(category)).
			Int("criteria", len(categoryEvals)).
			Msg("category evaluation complete")
	}

	stopEval, err := e.evaluateStopCondition(ctx, roundNumber, doctorMessage, patientResponse, dialogueHistory, maxRounds)
	if err != nil {
		return nil, err
	}

	scores := CalculateScores(allEvals)
	result := &evaluation.RoundEvaluation{
		RoundNumber:         roundNumber,
		CriteriaEvaluations: allEvals,
		EmpathyScore:        scores[evaluation.CategoryEmpathy],
		PersuasionScore:     scores[evaluation.CategoryPersuasion],
		SafetyScore:         scores[evaluation.CategorySafety],
		PatientStateChange:  stopEval.PatientStateChange,
		ShouldStop:          stopEval.ShouldStop,
	}
	if stopEval.StopReason != nil {
		result.StopReason = evaluation.StopReason(*stopEval.StopReason)
	}

	log.Info().
		Int("round", roundNumber).
		Float64("empathy", result.EmpathyScore).
		Float64("persuasion", result.PersuasionScore).
		Float64("safety", result.SafetyScore).
		Bool("should_stop", result.ShouldStop).
		Msg("round evaluation complete")
	return result, nil
}

// evaluateCategory runs one structured judge pass over a single category's
// ten criteria. The verdicts are normalized so score arithmetic never sees
// an unknown status or a criterion from the wrong category.
func (e *Engine) evaluateCategory(ctx context.Context, category evaluation.Category, roundNumber int, doctorMessage, patientResponse, dialogueHistory string) ([]evaluation.CriterionEvaluation, error) {
	criteria := e.rubric.ForCategory(category)
	req := &model.LLMRequest{
		Contents: []*genai.Content{model.NewUserText(categoryUserPrompt(category, roundNumber, doctorMessage, patientResponse, dialogueHistory))},
		Config: &genai.GenerateContentConfig{
			SystemInstruction: model.NewUserText(categorySystemPrompt(category, criteria)),
			ResponseMIMEType:  "application/json",
			ResponseSchema:    categoryEvaluationSchema(),
		},
	}

	name := fmt.Sprintf("%s evaluation", category)
	result, err := retry.Do(ctx, e.policy, name, func(ctx context.Context) (*categoryEvaluation, error) {
		resp, err := e.llm.GenerateContent(ctx, req)
		if err != nil {
			return nil, err
		}
		var ce categoryEvaluation
		if err := model.UnmarshalJSONResponse(resp, &ce); err != nil {
			return nil, err
		}
		if len(ce.CriteriaEvaluations) == 0 {
			return nil, fmt.Errorf("judge returned no criterion verdicts for %s", category)
		}
		return &ce, nil
	})
	if err != nil {
		return nil, fmt.Errorf("scoring round %d: %w", roundNumber, err)
	}

	evals := result.CriteriaEvaluations
	for i := range evals {
		evals[i].Category = category
		switch evals[i].Status {
		case evaluation.StatusMet, evaluation.StatusNotMet, evaluation.StatusNotRelevant:
		default:
			evals[i].Status = evaluation.StatusNotRelevant
		}
	}
	return evals, nil
}

// evaluateStopCondition runs the structured stop-assessment pass.
func (e *Engine) evaluateStopCondition(ctx context.Context, roundNumber int, doctorMessage, patientResponse, dialogueHistory string, maxRounds int) (*stopConditionEvaluation, error) {
	req := &model.LLMRequest{
		Contents: []*genai.Content{model.NewUserText(stopConditionUserPrompt(roundNumber, maxRounds, doctorMessage, patientResponse, dialogueHistory))},
		Config: &genai.GenerateContentConfig{
			SystemInstruction: model.NewUserText(stopConditionSystemPrompt),
			ResponseMIMEType:  "application/json",
			ResponseSchema:    stopConditionSchema(),
		},
	}

	result, err := retry.Do(ctx, e.policy, "stop condition evaluation", func(ctx context.Context) (*stopConditionEvaluation, error) {
		resp, err := e.llm.GenerateContent(ctx, req)
		if err != nil {
			return nil, err
		}
		var se stopConditionEvaluation
		if err := model.UnmarshalJSONResponse(resp, &se); err != nil {
			return nil, err
		}
		return &se, nil
	})
	if err != nil {
		return nil, fmt.Errorf("scoring round %d: %w", roundNumber, err)
	}
	if result.StopReason != nil {
		switch evaluation.StopReason(*result.StopReason) {
		case evaluation.StopPatientAccepted, evaluation.StopPatientLeft, evaluation.StopMaxRoundsReached:
		default:
			result.StopReason = nil
		}
	}
	return result, nil
}

// CalculateScores derives the three category scores from criterion
// verdicts. A category scores 10 × met / active, where active excludes
// "not_relevant" verdicts; a category with no active criteria scores a
// neutral 5.0. Scores are rounded to two decimal places.
func CalculateScores(evals []evaluation.CriterionEvaluation) map[evaluation.Category]float64 {
	scores := make(map[evaluation.Category]float64, len(evaluation.Categories))
	for _, category := range evaluation.Categories {
		met, active := 0, 0
		for _, ev := range evals {
			if ev.Category != category {
				continue
			}
			if ev.Status != evaluation.StatusNotRelevant {
				active++
			}
			if ev.Status == evaluation.StatusMet {
				met++
			}
		}
		score := 5.0
		if active > 0 {
			score = float64(met) / float64(active) * 10
		}
		scores[category] = math.Round(score*100) / 100
	}
	return scores
}

func categoryEvaluationSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"criteria_evaluations": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"criterion_id":   {Type: genai.TypeInteger, Description: "Rubric number of the criterion"},
						"criterion_text": {Type: genai.TypeString, Description: "The criterion text being judged"},
						"category":       {Type: genai.TypeString, Enum: []string{"Empathy", "Persuasion", "Safety"}},
						"status":         {Type: genai.TypeString, Enum: []string{"met", "not_met", "not_relevant"}},
						"evidence":       {Type: genai.TypeString, Description: "Brief evidence citing the doctor's message"},
					},
					Required: []string{"criterion_id", "criterion_text", "category", "status", "evidence"},
				},
			},
		},
		Required: []string{"criteria_evaluations"},
	}
}

func stopConditionSchema() *genai.Schema {
	nullable := true
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"patient_state_change": {Type: genai.TypeString, Description: "How the patient's receptiveness shifted this round"},
			"should_stop":          {Type: genai.TypeBoolean},
			"stop_reason": {
				Type:     genai.TypeString,
				Enum:     []string{"patient_accepted", "patient_left", "max_rounds_reached"},
				Nullable: &nullable,
			},
		},
		Required: []string{"patient_state_change", "should_stop", "stop_reason"},
	}
}
