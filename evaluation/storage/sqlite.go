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

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/MadGAA-Lab/OSCE-Project-Stage2/evaluation"
)

// sessionRecord is the sqlite row for a dialogue session; the full record
// is stored as a JSON document next to the queryable columns.
type sessionRecord struct {
	SessionID string `gorm:"primaryKey"`
	PersonaID string `gorm:"index"`
	Document  []byte
}

type resultRecord struct {
	AssessmentID string `gorm:"primaryKey"`
	Document     []byte
}

// SQLiteStorage persists sessions and results in a sqlite database.
type SQLiteStorage struct {
	db *gorm.DB
}

// NewSQLiteStorage opens (and migrates) a sqlite database at path.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("storage: opening sqlite database: %w", err)
	}
	if err := db.AutoMigrate(&sessionRecord{}, &resultRecord{}); err != nil {
		return nil, fmt.Errorf("storage: migrating schema: %w", err)
	}
	return &SQLiteStorage{db: db}, nil
}

// SaveSession upserts a session row.
func (s *SQLiteStorage) SaveSession(ctx context.Context, session *evaluation.DialogueSession) error {
	if session == nil || session.SessionID == "" {
		return evaluation.ErrInvalidInput
	}
	document, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("storage: marshaling session: %w", err)
	}
	record := sessionRecord{SessionID: session.SessionID, PersonaID: session.PersonaID, Document: document}
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&record).Error; err != nil {
		return fmt.Errorf("storage: saving session: %w", err)
	}
	return nil
}

// GetSession loads a session row by ID.
func (s *SQLiteStorage) GetSession(ctx context.Context, sessionID string) (*evaluation.DialogueSession, error) {
	var record sessionRecord
	err := s.db.WithContext(ctx).First(&record, "session_id = ?", sessionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, evaluation.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("storage: loading session: %w", err)
	}
	var session evaluation.DialogueSession
	if err := json.Unmarshal(record.Document, &session); err != nil {
		return nil, fmt.Errorf("storage: decoding session: %w", err)
	}
	return &session, nil
}

// ListSessions loads all session rows ordered by ID.
func (s *SQLiteStorage) ListSessions(ctx context.Context) ([]evaluation.DialogueSession, error) {
	var records []sessionRecord
	if err := s.db.WithContext(ctx).Order("session_id").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("storage: listing sessions: %w", err)
	}
	sessions := make([]evaluation.DialogueSession, 0, len(records))
	for _, record := range records {
		var session evaluation.DialogueSession
		if err := json.Unmarshal(record.Document, &session); err != nil {
			return nil, fmt.Errorf("storage: decoding session %s: %w", record.SessionID, err)
		}
		sessions = append(sessions, session)
	}
	return sessions, nil
}

// SaveResult upserts a run-level result row.
func (s *SQLiteStorage) SaveResult(ctx context.Context, result *evaluation.MedicalEvalResult) error {
	if result == nil || result.AssessmentID == "" {
		return evaluation.ErrInvalidInput
	}
	document, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("storage: marshaling result: %w", err)
	}
	record := resultRecord{AssessmentID: result.AssessmentID, Document: document}
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&record).Error; err != nil {
		return fmt.Errorf("storage: saving result: %w", err)
	}
	return nil
}

// GetResult loads a run-level result row by assessment ID.
func (s *SQLiteStorage) GetResult(ctx context.Context, assessmentID string) (*evaluation.MedicalEvalResult, error) {
	var record resultRecord
	err := s.db.WithContext(ctx).First(&record, "assessment_id = ?", assessmentID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, evaluation.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("storage: loading result: %w", err)
	}
	var result evaluation.MedicalEvalResult
	if err := json.Unmarshal(record.Document, &result); err != nil {
		return nil, fmt.Errorf("storage: decoding result: %w", err)
	}
	return &result, nil
}

// ListResults loads all run-level result rows ordered by assessment ID.
func (s *SQLiteStorage) ListResults(ctx context.Context) ([]evaluation.MedicalEvalResult, error) {
	var records []resultRecord
	if err := s.db.WithContext(ctx).Order("assessment_id").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("storage: listing results: %w", err)
	}
	results := make([]evaluation.MedicalEvalResult, 0, len(records))
	for _, record := range records {
		var result evaluation.MedicalEvalResult
		if err := json.Unmarshal(record.Document, &result); err != nil {
			return nil, fmt.Errorf("storage: decoding result %s: %w", record.AssessmentID, err)
		}
		results = append(results, result)
	}
	return results, nil
}
