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

import (
	"context"
	"errors"
)

var (
	// ErrNotFound indicates the requested record was not found.
	ErrNotFound = errors.New("evaluation: not found")

	// ErrAlreadyExists indicates the record already exists.
	ErrAlreadyExists = errors.New("evaluation: already exists")

	// ErrInvalidInput indicates invalid input parameters.
	ErrInvalidInput = errors.New("evaluation: invalid input")
)

// Storage persists dialogue sessions and evaluation results. The exact
// wire format is an implementation concern; records round-trip through
// JSON-compatible serialization.
type Storage interface {
	// SaveSession stores a completed dialogue session.
	SaveSession(ctx context.Context, session *DialogueSession) error

	// GetSession retrieves a session by ID.
	GetSession(ctx context.Context, sessionID string) (*DialogueSession, error)

	// ListSessions returns all stored sessions.
	ListSessions(ctx context.Context) ([]DialogueSession, error)

	// SaveResult stores a run-level evaluation result.
	SaveResult(ctx context.Context, result *MedicalEvalResult) error

	// GetResult retrieves a run-level result by assessment ID.
	GetResult(ctx context.Context, assessmentID string) (*MedicalEvalResult, error)

	// ListResults returns all stored run-level results.
	ListResults(ctx context.Context) ([]MedicalEvalResult, error)
}
