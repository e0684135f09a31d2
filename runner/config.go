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

// Package runner orchestrates evaluation runs: persona construction, the
// per-session turn loop against the remote doctor, per-round judging, and
// report assembly.
package runner

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/MadGAA-Lab/OSCE-Project-Stage2/evaluation"
	"github.com/MadGAA-Lab/OSCE-Project-Stage2/internal/retry"
)

// ModelConfig selects one LLM backend. The API key is looked up from the
// named environment variable so credentials stay out of config files.
type ModelConfig struct {
	BaseURL   string `yaml:"base_url"`
	Model     string `yaml:"model"`
	APIKeyEnv string `yaml:"api_key_env"`
}

// APIKey resolves the configured credential.
func (m ModelConfig) APIKey() string {
	if m.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(m.APIKeyEnv)
}

// DataConfig locates the on-disk resources the pipeline loads at startup.
type DataConfig struct {
	PromptsDir     string `yaml:"prompts_dir"`
	RoleplayScript string `yaml:"roleplay_script"`
	CriteriaFile   string `yaml:"criteria_file"`
}

// RetryConfig carries the per-component retry policies.
type RetryConfig struct {
	Patient     retry.Policy `yaml:"patient"`
	Judge       retry.Policy `yaml:"judge"`
	Constructor retry.Policy `yaml:"constructor"`
}

// StorageConfig selects where sessions and results are persisted.
type StorageConfig struct {
	// Type is one of "memory", "file", "sqlite".
	Type string `yaml:"type"`
	// Path is the base directory (file) or database file (sqlite).
	Path string `yaml:"path"`
}

// Config is the full evaluation run configuration.
type Config struct {
	DoctorURL string `yaml:"doctor_url"`

	// Personas lists persona IDs or collection keywords ("all",
	// "all_no_gender", "random", "random_no_gender").
	Personas []string `yaml:"personas"`

	MaxRounds   int `yaml:"max_rounds"`
	Concurrency int `yaml:"concurrency"`

	Weights evaluation.Weights `yaml:"weights"`
	Retry   RetryConfig        `yaml:"retry"`
	Data    DataConfig         `yaml:"data"`

	PatientModel ModelConfig `yaml:"patient_model"`
	JudgeModel   ModelConfig `yaml:"judge_model"`

	Storage StorageConfig `yaml:"storage"`
}

// LoadConfig reads and validates a yaml config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("runner: reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("runner: parsing config %s: %w", path, err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("runner: config %s: %w", path, err)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.MaxRounds <= 0 {
		c.MaxRounds = 10
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 1
	}
	if c.Weights == (evaluation.Weights{}) {
		c.Weights = evaluation.DefaultWeights()
	}
	if c.Retry.Patient.MaxAttempts == 0 {
		c.Retry.Patient = retry.DefaultPatient()
	}
	if c.Retry.Judge.MaxAttempts == 0 {
		c.Retry.Judge = retry.DefaultJudge()
	}
	if c.Retry.Constructor.MaxAttempts == 0 {
		c.Retry.Constructor = retry.DefaultConstructor()
	}
	if c.Storage.Type == "" {
		c.Storage.Type = "memory"
	}
}

func (c *Config) validate() error {
	if c.DoctorURL == "" {
		return fmt.Errorf("doctor_url is required")
	}
	if len(c.Personas) == 0 {
		return fmt.Errorf("at least one persona is required")
	}
	if c.Data.PromptsDir == "" || c.Data.RoleplayScript == "" || c.Data.CriteriaFile == "" {
		return fmt.Errorf("data.prompts_dir, data.roleplay_script and data.criteria_file are required")
	}
	switch c.Storage.Type {
	case "memory":
	case "file", "sqlite":
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path is required for %s storage", c.Storage.Type)
		}
	default:
		return fmt.Errorf("unknown storage type %q", c.Storage.Type)
	}
	return nil
}
