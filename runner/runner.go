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
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/MadGAA-Lab/OSCE-Project-Stage2/doctor"
	"github.com/MadGAA-Lab/OSCE-Project-Stage2/evaluation"
	"github.com/MadGAA-Lab/OSCE-Project-Stage2/model"
	"github.com/MadGAA-Lab/OSCE-Project-Stage2/patient"
	"github.com/MadGAA-Lab/OSCE-Project-Stage2/persona"
	"github.com/MadGAA-Lab/OSCE-Project-Stage2/roleplay"
	"github.com/MadGAA-Lab/OSCE-Project-Stage2/scoring"
)

// Deps are the injectable pieces of a Runner. DialDoctor and Rand exist
// so tests can substitute a scripted doctor and a deterministic source;
// both may be nil in production use.
type Deps struct {
	PatientLLM model.LLM
	JudgeLLM   model.LLM
	Storage    evaluation.Storage

	DialDoctor func(ctx context.Context, url string) (doctor.Agent, error)
	Rand       *rand.Rand
}

// Runner executes a full evaluation run: persona expansion, one session
// per persona with bounded concurrency, per-session reports, and the
// persisted run-level result.
type Runner struct {
	cfg  Config
	deps Deps

	catalog  *persona.Catalog
	loader   *roleplay.Loader
	rubric   *scoring.Rubric
	reporter *Reporter
	agg      *evaluation.Aggregator
}

// New creates a runner, loading the prompt catalog, the roleplay script
// and the judge rubric from the configured data paths. Any missing
// resource fails here, before the first session starts.
func New(cfg Config, deps Deps) (*Runner, error) {
	if deps.PatientLLM == nil || deps.JudgeLLM == nil {
		return nil, fmt.Errorf("runner: patient and judge LLMs are required")
	}
	if deps.Storage == nil {
		return nil, fmt.Errorf("runner: storage is required")
	}
	if deps.DialDoctor == nil {
		deps.DialDoctor = func(ctx context.Context, url string) (doctor.Agent, error) {
			return doctor.Dial(ctx, url)
		}
	}

	catalog, err := persona.NewCatalog(cfg.Data.PromptsDir)
	if err != nil {
		return nil, err
	}
	loader, err := roleplay.NewLoader(cfg.Data.RoleplayScript)
	if err != nil {
		return nil, err
	}
	rubric, err := scoring.LoadRubric(cfg.Data.CriteriaFile)
	if err != nil {
		return nil, err
	}

	agg := evaluation.NewAggregator(cfg.Weights)
	return &Runner{
		cfg:      cfg,
		deps:     deps,
		catalog:  catalog,
		loader:   loader,
		rubric:   rubric,
		reporter: NewReporter(deps.JudgeLLM, agg, cfg.Retry.Judge),
		agg:      agg,
	}, nil
}

// Run evaluates every configured persona against the doctor endpoint and
// persists the collected result. A failed session is logged and skipped;
// completed sessions still count. Run fails only when configuration is
// unusable or every session failed.
func (r *Runner) Run(ctx context.Context) (*evaluation.MedicalEvalResult, error) {
	ids, err := persona.Expand(r.cfg.Personas, r.deps.Rand)
	if err != nil {
		return nil, err
	}
	log.Info().
		Int("personas", len(ids)).
		Str("doctor_url", r.cfg.DoctorURL).
		Int("concurrency", r.cfg.Concurrency).
		Msg("starting evaluation run")

	var mu sync.Mutex
	var sessions []evaluation.DialogueSession
	var reports []evaluation.PerformanceReport
	var failures int

	var g errgroup.Group
	g.SetLimit(r.cfg.Concurrency)
	for _, id := range ids {
		g.Go(func() error {
			session, report, err := r.runPersona(ctx, id)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures++
				log.Error().Err(err).Str("persona_id", id.String()).Msg("session failed")
				return nil
			}
			sessions = append(sessions, *session)
			reports = append(reports, *report)
			return nil
		})
	}
	_ = g.Wait()

	if len(sessions) == 0 {
		return nil, fmt.Errorf("runner: all %d sessions failed", len(ids))
	}

	result := &evaluation.MedicalEvalResult{
		AssessmentID:       uuid.NewString(),
		DoctorAgentURL:     r.cfg.DoctorURL,
		Timestamp:          time.Now(),
		Sessions:           sessions,
		Reports:            reports,
		MeanAggregateScore: r.agg.MeanAggregate(reports),
		OverallSummary:     overallSummary(reports, failures),
	}
	if err := r.deps.Storage.SaveResult(ctx, result); err != nil {
		return nil, err
	}

	log.Info().
		Str("assessment_id", result.AssessmentID).
		Int("sessions", len(sessions)).
		Int("failures", failures).
		Float64("mean_aggregate", result.MeanAggregateScore).
		Msg("evaluation run complete")
	return result, nil
}

// runPersona builds one persona end to end and runs its session.
func (r *Runner) runPersona(ctx context.Context, id persona.ID) (*evaluation.DialogueSession, *evaluation.PerformanceReport, error) {
	constructor := persona.NewConstructor(r.deps.PatientLLM, r.catalog, r.cfg.Retry.Constructor)
	p, background, clinicalInfo, err := constructor.Construct(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	examples, err := constructor.GenerateRoleplayExamples(ctx, id, p, background)
	if err != nil {
		return nil, nil, err
	}
	systemPrompt, priming := r.loader.FormatContext(examples)

	patientAgent, err := patient.New(patient.Config{
		LLM:          r.deps.PatientLLM,
		SystemPrompt: systemPrompt,
		Priming:      priming,
		Retry:        r.cfg.Retry.Patient,
		Rand:         r.deps.Rand,
	})
	if err != nil {
		return nil, nil, err
	}

	doctorAgent, err := r.deps.DialDoctor(ctx, r.cfg.DoctorURL)
	if err != nil {
		return nil, nil, err
	}
	if closer, ok := doctorAgent.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	session, err := NewSession(SessionConfig{
		PersonaID:    id.String(),
		DoctorURL:    r.cfg.DoctorURL,
		ClinicalInfo: clinicalInfo,
		Doctor:       doctorAgent,
		Patient:      patientAgent,
		Engine:       scoring.NewEngine(r.deps.JudgeLLM, r.rubric, r.cfg.Retry.Judge),
		MaxRounds:    r.cfg.MaxRounds,
	})
	if err != nil {
		return nil, nil, err
	}

	record, err := session.Run(ctx)
	if err != nil {
		return nil, nil, err
	}
	if saveErr := r.deps.Storage.SaveSession(ctx, record); saveErr != nil {
		log.Error().Err(saveErr).Str("session_id", record.SessionID).Msg("failed to persist session")
	}

	report := r.reporter.Report(ctx, record)
	return record, report, nil
}

// overallSummary is a deterministic run-level rollup line; the qualitative
// narrative lives in the per-session reports.
func overallSummary(reports []evaluation.PerformanceReport, failures int) string {
	outcomes := map[evaluation.StopReason]int{}
	for _, report := range reports {
		outcomes[report.FinalOutcome]++
	}
	return fmt.Sprintf(
		"Evaluated %d sessions (%d failed): %d accepted treatment, %d left, %d reached the round limit.",
		len(reports), failures,
		outcomes[evaluation.StopPatientAccepted],
		outcomes[evaluation.StopPatientLeft],
		outcomes[evaluation.StopMaxRoundsReached],
	)
}
