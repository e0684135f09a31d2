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

// Package storage provides evaluation.Storage implementations: in-memory
// (tests), JSON files, and sqlite.
package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/MadGAA-Lab/OSCE-Project-Stage2/evaluation"
)

// MemoryStorage is an in-memory Storage, primarily for tests and
// short-lived runs.
type MemoryStorage struct {
	mu       sync.RWMutex
	sessions map[string]*evaluation.DialogueSession
	results  map[string]*evaluation.MedicalEvalResult
}

// NewMemoryStorage creates an empty in-memory storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		sessions: make(map[string]*evaluation.DialogueSession),
		results:  make(map[string]*evaluation.MedicalEvalResult),
	}
}

// SaveSession stores a session copy keyed by its ID.
func (m *MemoryStorage) SaveSession(ctx context.Context, session *evaluation.DialogueSession) error {
	if session == nil || session.SessionID == "" {
		return evaluation.ErrInvalidInput
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *session
	m.sessions[session.SessionID] = &copied
	return nil
}

// GetSession retrieves a session by ID.
func (m *MemoryStorage) GetSession(ctx context.Context, sessionID string) (*evaluation.DialogueSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	session, ok := m.sessions[sessionID]
	if !ok {
		return nil, evaluation.ErrNotFound
	}
	copied := *session
	return &copied, nil
}

// ListSessions returns all sessions ordered by ID.
func (m *MemoryStorage) ListSessions(ctx context.Context) ([]evaluation.DialogueSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sessions := make([]evaluation.DialogueSession, 0, len(m.sessions))
	for _, session := range m.sessions {
		sessions = append(sessions, *session)
	}
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].SessionID < sessions[j].SessionID })
	return sessions, nil
}

// SaveResult stores a run-level result copy keyed by its assessment ID.
func (m *MemoryStorage) SaveResult(ctx context.Context, result *evaluation.MedicalEvalResult) error {
	if result == nil || result.AssessmentID == "" {
		return evaluation.ErrInvalidInput
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *result
	m.results[result.AssessmentID] = &copied
	return nil
}

// GetResult retrieves a run-level result by assessment ID.
func (m *MemoryStorage) GetResult(ctx context.Context, assessmentID string) (*evaluation.MedicalEvalResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result, ok := m.results[assessmentID]
	if !ok {
		return nil, evaluation.ErrNotFound
	}
	copied := *result
	return &copied, nil
}

// ListResults returns all run-level results ordered by assessment ID.
func (m *MemoryStorage) ListResults(ctx context.Context) ([]evaluation.MedicalEvalResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	results := make([]evaluation.MedicalEvalResult, 0, len(m.results))
	for _, result := range m.results {
		results = append(results, *result)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].AssessmentID < results[j].AssessmentID })
	return results, nil
}
