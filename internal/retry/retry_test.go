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

package retry

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

var testPolicy = Policy{MaxAttempts: 3, InitialInterval: time.Millisecond}

func TestDoSucceedsAfterFailures(t *testing.T) {
	calls := 0
	got, err := Do(context.Background(), testPolicy, "flaky op", func(ctx context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("transient")
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if got != "ok" {
		t.Errorf("result = %q", got)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestDoExhaustsBudget(t *testing.T) {
	sentinel := errors.New("still broken")
	calls := 0
	_, err := Do(context.Background(), testPolicy, "doomed op", func(ctx context.Context) (int, error) {
		calls++
		return 0, sentinel
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != testPolicy.MaxAttempts {
		t.Errorf("calls = %d, want %d", calls, testPolicy.MaxAttempts)
	}
	if !errors.Is(err, sentinel) {
		t.Errorf("err = %v, want wrapped sentinel", err)
	}
	if !strings.Contains(err.Error(), "doomed op failed after 3 attempts") {
		t.Errorf("err = %v", err)
	}
}

func TestDoFirstTrySuccess(t *testing.T) {
	calls := 0
	got, err := Do(context.Background(), testPolicy, "healthy op", func(ctx context.Context) (int, error) {
		calls++
		return 42, nil
	})
	if err != nil || got != 42 || calls != 1 {
		t.Errorf("got %d, err %v, calls %d", got, err, calls)
	}
}

func TestDoZeroPolicyRunsOnce(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), Policy{}, "unbudgeted op", func(ctx context.Context) (int, error) {
		calls++
		return 0, errors.New("nope")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestPolicyUnmarshalYAML(t *testing.T) {
	var p Policy
	if err := yaml.Unmarshal([]byte("max_attempts: 5\ninitial_interval: 3s\n"), &p); err != nil {
		t.Fatal(err)
	}
	if p.MaxAttempts != 5 || p.InitialInterval != 3*time.Second {
		t.Errorf("policy = %+v", p)
	}

	if err := yaml.Unmarshal([]byte("max_attempts: 2\ninitial_interval: soonish\n"), &p); err == nil {
		t.Error("expected error for unparseable duration")
	}

	var empty Policy
	if err := yaml.Unmarshal([]byte("max_attempts: 4\n"), &empty); err != nil {
		t.Fatal(err)
	}
	if empty.MaxAttempts != 4 || empty.InitialInterval != 0 {
		t.Errorf("policy = %+v", empty)
	}
}
