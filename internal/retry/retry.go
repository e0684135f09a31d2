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

// Package retry provides bounded exponential-backoff retry for unreliable
// model calls. Each pipeline component carries its own Policy: the patient
// agent degrades to a fallback after exhaustion, while the persona
// constructor and the scoring engine treat exhaustion as fatal. Keeping the
// policies separate is deliberate; see the respective packages.
package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Policy bounds retried model calls.
type Policy struct {
	// MaxAttempts is the total attempt budget, including the first try.
	MaxAttempts int `yaml:"max_attempts"`
	// InitialInterval is the delay before the first retry; subsequent
	// delays grow exponentially.
	InitialInterval time.Duration `yaml:"initial_interval"`
}

// DefaultPatient mirrors the patient agent's historical settings.
func DefaultPatient() Policy {
	return Policy{MaxAttempts: 3, InitialInterval: 2 * time.Second}
}

// DefaultJudge mirrors the scoring engine's historical settings.
func DefaultJudge() Policy {
	return Policy{MaxAttempts: 5, InitialInterval: 3 * time.Second}
}

// DefaultConstructor is the persona constructor's attempt budget.
func DefaultConstructor() Policy {
	return Policy{MaxAttempts: 3, InitialInterval: 2 * time.Second}
}

// UnmarshalYAML accepts durations in Go syntax ("2s", "500ms").
func (p *Policy) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		MaxAttempts     int    `yaml:"max_attempts"`
		InitialInterval string `yaml:"initial_interval"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	p.MaxAttempts = raw.MaxAttempts
	if raw.InitialInterval != "" {
		interval, err := time.ParseDuration(raw.InitialInterval)
		if err != nil {
			return fmt.Errorf("retry: invalid initial_interval %q: %w", raw.InitialInterval, err)
		}
		p.InitialInterval = interval
	}
	return nil
}

func (p Policy) normalized() Policy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 1
	}
	if p.InitialInterval <= 0 {
		p.InitialInterval = time.Second
	}
	return p
}

// Do runs op under the policy. It returns the first successful result, or
// the last error once the attempt budget is exhausted. Context
// cancellation aborts between attempts.
func Do[T any](ctx context.Context, policy Policy, name string, op func(ctx context.Context) (T, error)) (T, error) {
	policy = policy.normalized()

	attempt := 0
	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = policy.InitialInterval

	result, err := backoff.Retry(ctx, func() (T, error) {
		attempt++
		res, opErr := op(ctx)
		if opErr != nil {
			log.Warn().
				Str("operation", name).
				Int("attempt", attempt).
				Int("max_attempts", policy.MaxAttempts).
				Err(opErr).
				Msg("attempt failed")
		}
		return res, opErr
	}, backoff.WithBackOff(expo), backoff.WithMaxTries(uint(policy.MaxAttempts)))
	if err != nil {
		var zero T
		return zero, fmt.Errorf("%s failed after %d attempts: %w", name, policy.MaxAttempts, err)
	}
	return result, nil
}
