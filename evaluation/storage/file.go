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

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/MadGAA-Lab/OSCE-Project-Stage2/evaluation"
)

// FileStorage persists sessions and results as JSON documents:
//
//	<basePath>/
//	  sessions/<sessionID>.json
//	  results/<assessmentID>.json
type FileStorage struct {
	mu       sync.RWMutex
	basePath string
}

// NewFileStorage creates a file-based storage rooted at basePath.
func NewFileStorage(basePath string) (*FileStorage, error) {
	for _, dir := range []string{"sessions", "results"} {
		if err := os.MkdirAll(filepath.Join(basePath, dir), 0755); err != nil {
			return nil, fmt.Errorf("storage: creating %s directory: %w", dir, err)
		}
	}
	return &FileStorage{basePath: basePath}, nil
}

// SaveSession writes a session document.
func (f *FileStorage) SaveSession(ctx context.Context, session *evaluation.DialogueSession) error {
	if session == nil || session.SessionID == "" {
		return evaluation.ErrInvalidInput
	}
	return f.write(filepath.Join("sessions", session.SessionID+".json"), session)
}

// GetSession reads a session document by ID.
func (f *FileStorage) GetSession(ctx context.Context, sessionID string) (*evaluation.DialogueSession, error) {
	var session evaluation.DialogueSession
	if err := f.read(filepath.Join("sessions", sessionID+".json"), &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// ListSessions reads all session documents.
func (f *FileStorage) ListSessions(ctx context.Context) ([]evaluation.DialogueSession, error) {
	ids, err := f.list("sessions")
	if err != nil {
		return nil, err
	}
	sessions := make([]evaluation.DialogueSession, 0, len(ids))
	for _, id := range ids {
		session, err := f.GetSession(ctx, id)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *session)
	}
	return sessions, nil
}

// SaveResult writes a run-level result document.
func (f *FileStorage) SaveResult(ctx context.Context, result *evaluation.MedicalEvalResult) error {
	if result == nil || result.AssessmentID == "" {
		return evaluation.ErrInvalidInput
	}
	return f.write(filepath.Join("results", result.AssessmentID+".json"), result)
}

// GetResult reads a run-level result document by assessment ID.
func (f *FileStorage) GetResult(ctx context.Context, assessmentID string) (*evaluation.MedicalEvalResult, error) {
	var result evaluation.MedicalEvalResult
	if err := f.read(filepath.Join("results", assessmentID+".json"), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListResults reads all run-level result documents.
func (f *FileStorage) ListResults(ctx context.Context) ([]evaluation.MedicalEvalResult, error) {
	ids, err := f.list("results")
	if err != nil {
		return nil, err
	}
	results := make([]evaluation.MedicalEvalResult, 0, len(ids))
	for _, id := range ids {
		result, err := f.GetResult(ctx, id)
		if err != nil {
			return nil, err
		}
		results = append(results, *result)
	}
	return results, nil
}

func (f *FileStorage) write(relPath string, v any) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("storage: marshaling %s: %w", relPath, err)
	}
	if err := os.WriteFile(filepath.Join(f.basePath, relPath), data, 0644); err != nil {
		return fmt.Errorf("storage: writing %s: %w", relPath, err)
	}
	return nil
}

func (f *FileStorage) read(relPath string, v any) error {
	f.mu.RLock()
	defer f.mu.RUnlock()

	data, err := os.ReadFile(filepath.Join(f.basePath, relPath))
	if errors.Is(err, fs.ErrNotExist) {
		return evaluation.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("storage: reading %s: %w", relPath, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("storage: decoding %s: %w", relPath, err)
	}
	return nil
}

func (f *FileStorage) list(dir string) ([]string, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	entries, err := os.ReadDir(filepath.Join(f.basePath, dir))
	if err != nil {
		return nil, fmt.Errorf("storage: listing %s: %w", dir, err)
	}
	var ids []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(entry.Name(), ".json"))
	}
	sort.Strings(ids)
	return ids, nil
}
