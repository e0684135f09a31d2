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

// Command medicaleval evaluates a remote doctor agent by running simulated
// patient consultations against it and scoring every round with an LLM
// judge.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/MadGAA-Lab/OSCE-Project-Stage2/evaluation"
	"github.com/MadGAA-Lab/OSCE-Project-Stage2/evaluation/storage"
	"github.com/MadGAA-Lab/OSCE-Project-Stage2/model"
	"github.com/MadGAA-Lab/OSCE-Project-Stage2/model/openai"
	"github.com/MadGAA-Lab/OSCE-Project-Stage2/runner"
)

type rootFlags struct {
	configPath string
	doctorURL  string
	personas   []string
	verbose    bool
}

var flags rootFlags

var rootCmd = &cobra.Command{
	Use:   "medicaleval",
	Short: "Evaluates a doctor agent through simulated patient consultations.",
	Long: `medicaleval runs scripted patient personas against a remote doctor agent
over A2A and scores each dialogue round with an LLM judge against a fixed
clinical communication rubric.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "config.yaml", "Path to the run configuration file")
	rootCmd.PersistentFlags().StringVar(&flags.doctorURL, "doctor-url", "", "Doctor agent endpoint (overrides config)")
	rootCmd.PersistentFlags().StringSliceVar(&flags.personas, "personas", nil, "Persona IDs or keywords (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable debug logging")
}

func run(cmd *cobra.Command) error {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if flags.verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := runner.LoadConfig(flags.configPath)
	if err != nil {
		return err
	}
	if flags.doctorURL != "" {
		cfg.DoctorURL = flags.doctorURL
	}
	if len(flags.personas) > 0 {
		cfg.Personas = flags.personas
	}

	patientLLM, err := newModel(cfg.PatientModel)
	if err != nil {
		return fmt.Errorf("patient model: %w", err)
	}
	judgeLLM, err := newModel(cfg.JudgeModel)
	if err != nil {
		return fmt.Errorf("judge model: %w", err)
	}
	store, err := newStorage(cfg.Storage)
	if err != nil {
		return err
	}

	r, err := runner.New(*cfg, runner.Deps{
		PatientLLM: patientLLM,
		JudgeLLM:   judgeLLM,
		Storage:    store,
	})
	if err != nil {
		return err
	}

	result, err := r.Run(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Assessment %s: mean aggregate score %.2f/100 across %d sessions\n",
		result.AssessmentID, result.MeanAggregateScore, len(result.Sessions))
	fmt.Fprintln(cmd.OutOrStdout(), result.OverallSummary)
	return nil
}

func newModel(cfg runner.ModelConfig) (model.LLM, error) {
	return openai.New(openai.Config{
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey(),
		Model:   cfg.Model,
	})
}

func newStorage(cfg runner.StorageConfig) (evaluation.Storage, error) {
	switch cfg.Type {
	case "memory":
		return storage.NewMemoryStorage(), nil
	case "file":
		return storage.NewFileStorage(cfg.Path)
	case "sqlite":
		return storage.NewSQLiteStorage(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Type)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
