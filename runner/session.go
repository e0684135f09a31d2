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
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/MadGAA-Lab/OSCE-Project-Stage2/doctor"
	"github.com/MadGAA-Lab/OSCE-Project-Stage2/evaluation"
	"github.com/MadGAA-Lab/OSCE-Project-Stage2/patient"
	"github.com/MadGAA-Lab/OSCE-Project-Stage2/persona"
	"github.com/MadGAA-Lab/OSCE-Project-Stage2/scoring"
)

// Session drives one consultation: one persona against one doctor
// endpoint, strictly sequential, judged after every round.
type Session struct {
	personaID    string
	doctorURL    string
	clinicalInfo persona.PatientClinicalInfo

	doctor  doctor.Agent
	patient *patient.Agent
	engine  *scoring.Engine

	maxRounds int
	now       func() time.Time
}

// SessionConfig assembles a session from already-constructed parts.
type SessionConfig struct {
	PersonaID    string
	DoctorURL    string
	ClinicalInfo persona.PatientClinicalInfo

	Doctor  doctor.Agent
	Patient *patient.Agent
	Engine  *scoring.Engine

	MaxRounds int

	// Now overrides the clock in tests; nil uses time.Now.
	Now func() time.Time
}

// NewSession creates a session.
func NewSession(cfg SessionConfig) (*Session, error) {
	if cfg.Doctor == nil || cfg.Patient == nil || cfg.Engine == nil {
		return nil, fmt.Errorf("runner: doctor, patient and engine are required")
	}
	if cfg.MaxRounds <= 0 {
		return nil, fmt.Errorf("runner: max rounds must be positive")
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Session{
		personaID:    cfg.PersonaID,
		doctorURL:    cfg.DoctorURL,
		clinicalInfo: cfg.ClinicalInfo,
		doctor:       cfg.Doctor,
		patient:      cfg.Patient,
		engine:       cfg.Engine,
		maxRounds:    cfg.MaxRounds,
		now:          now,
	}, nil
}

// Run executes the consultation loop. Each round the doctor speaks, the
// patient answers with its visible reply, and the judge scores the
// exchange. The loop ends when the judge recommends stopping or the hard
// round ceiling is reached; either way the session records its final
// outcome.
//
// A doctor transport failure or judge retry exhaustion aborts this session
// and returns the partial record alongside the error.
func (s *Session) Run(ctx context.Context) (*evaluation.DialogueSession, error) {
	session := &evaluation.DialogueSession{
		SessionID:      uuid.NewString(),
		PersonaID:      s.personaID,
		DoctorAgentURL: s.doctorURL,
		StartTime:      s.now(),
	}
	log.Info().
		Str("session_id", session.SessionID).
		Str("persona_id", s.personaID).
		Int("max_rounds", s.maxRounds).
		Msg("starting dialogue session")

	finish := func(outcome evaluation.StopReason) {
		end := s.now()
		session.EndTime = &end
		session.FinalOutcome = outcome
	}

	doctorMessage, err := s.doctor.Consult(ctx, openingMessage(s.clinicalInfo))
	if err != nil {
		finish("")
		return session, fmt.Errorf("runner: session %s: %w", session.SessionID, err)
	}

	turn := 0
	for round := 1; round <= s.maxRounds; round++ {
		turn++
		session.Turns = append(session.Turns, evaluation.DialogueTurn{
			TurnNumber: turn,
			Speaker:    evaluation.SpeakerDoctor,
			Message:    doctorMessage,
			Timestamp:  s.now(),
		})

		patientReply := s.patient.Respond(ctx, doctorMessage)
		turn++
		session.Turns = append(session.Turns, evaluation.DialogueTurn{
			TurnNumber: turn,
			Speaker:    evaluation.SpeakerPatient,
			Message:    patientReply,
			Timestamp:  s.now(),
		})

		roundEval, err := s.engine.EvaluateRound(ctx, round, doctorMessage, patientReply, s.patient.Transcript(), s.maxRounds)
		if err != nil {
			finish("")
			return session, fmt.Errorf("runner: session %s: %w", session.SessionID, err)
		}
		session.Turns[len(session.Turns)-1].RoundEvaluation = roundEval
		session.TotalRounds = round

		if roundEval.ShouldStop && roundEval.StopReason != "" {
			finish(roundEval.StopReason)
			break
		}
		if round == s.maxRounds {
			finish(evaluation.StopMaxRoundsReached)
			break
		}

		doctorMessage, err = s.doctor.Consult(ctx, patientReply)
		if err != nil {
			finish("")
			return session, fmt.Errorf("runner: session %s: %w", session.SessionID, err)
		}
	}

	log.Info().
		Str("session_id", session.SessionID).
		Int("rounds", session.TotalRounds).
		Str("outcome", string(session.FinalOutcome)).
		Msg("dialogue session complete")
	return session, nil
}

// openingMessage introduces the consultation to the doctor. Only the
// clinical chart crosses this boundary; the patient reports symptoms in
// the dialogue itself.
func openingMessage(info persona.PatientClinicalInfo) string {
	var sb strings.Builder
	sb.WriteString("You are about to see a patient to discuss a recommended surgical treatment. ")
	sb.WriteString("Here is the patient's chart:\n\n")
	fmt.Fprintf(&sb, "Age: %d\n", info.Age)
	if info.Gender != "" {
		fmt.Fprintf(&sb, "Gender: %s\n", info.Gender)
	}
	fmt.Fprintf(&sb, "Diagnosis: %s\n", info.Diagnosis)
	fmt.Fprintf(&sb, "Recommended treatment: %s\n", info.RecommendedTreatment)
	fmt.Fprintf(&sb, "Treatment risks: %s\n", info.TreatmentRisks)
	fmt.Fprintf(&sb, "Treatment benefits: %s\n", info.TreatmentBenefits)
	fmt.Fprintf(&sb, "Prognosis with treatment: %s\n", info.PrognosisWithTreatment)
	fmt.Fprintf(&sb, "Prognosis without treatment: %s\n", info.PrognosisWithoutTreatment)
	sb.WriteString("\nThe patient has just entered the room. Greet them and begin the consultation.")
	return sb.String()
}
