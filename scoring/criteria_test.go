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

package scoring

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/MadGAA-Lab/OSCE-Project-Stage2/evaluation"
)

func validCriteriaCSV() string {
	var sb strings.Builder
	sb.WriteString("No.,Criteria,Good example,Bad example,Category\n")
	id := 1
	for _, category := range evaluation.Categories {
		for i := 0; i < criteriaPerCategory; i++ {
			fmt.Fprintf(&sb, "%d,Criterion %d text,Good %d,Bad %d,%s\n", id, id, id, id, category)
			id++
		}
	}
	return sb.String()
}

func TestParseCriteria(t *testing.T) {
	criteria, err := parseCriteria(strings.NewReader(validCriteriaCSV()))
	if err != nil {
		t.Fatal(err)
	}
	if len(criteria) != 30 {
		t.Fatalf("parsed %d criteria, want 30", len(criteria))
	}
	if criteria[0].Category != evaluation.CategoryEmpathy {
		t.Errorf("criterion 1 category = %s, want Empathy", criteria[0].Category)
	}
	if criteria[10].Category != evaluation.CategoryPersuasion {
		t.Errorf("criterion 11 category = %s, want Persuasion", criteria[10].Category)
	}
	if criteria[29].Category != evaluation.CategorySafety {
		t.Errorf("criterion 30 category = %s, want Safety", criteria[29].Category)
	}
	if criteria[4].ID != 5 || criteria[4].GoodExample != "Good 5" || criteria[4].BadExample != "Bad 5" {
		t.Errorf("criterion 5 fields wrong: %+v", criteria[4])
	}
}

func TestParseCriteriaBOMHeader(t *testing.T) {
	if _, err := parseCriteria(strings.NewReader("\uFEFF" + validCriteriaCSV())); err != nil {
		t.Fatalf("BOM-prefixed header rejected: %v", err)
	}
}

func TestParseCriteriaErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(string) string
		wantErr string
	}{
		{
			name:    "missing column",
			mutate:  func(s string) string { return strings.Replace(s, "Category", "Kind", 1) },
			wantErr: `missing column "Category"`,
		},
		{
			name: "wrong row count",
			mutate: func(s string) string {
				lines := strings.SplitAfter(s, "\n")
				return strings.Join(lines[:len(lines)-2], "")
			},
			wantErr: "expected 30 criteria",
		},
		{
			name:    "unknown category",
			mutate:  func(s string) string { return strings.Replace(s, "Empathy", "Charm", 1) },
			wantErr: "unknown category",
		},
		{
			name:    "non-contiguous numbering",
			mutate:  func(s string) string { return strings.Replace(s, "\n7,", "\n70,", 1) },
			wantErr: "has number 70",
		},
		{
			name:    "category out of block order",
			mutate:  func(s string) string { return strings.Replace(s, "Bad 3,Empathy", "Bad 3,Safety", 1) },
			wantErr: "criterion 3 has category Safety",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseCriteria(strings.NewReader(tt.mutate(validCriteriaCSV())))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadRubric(t *testing.T) {
	path := filepath.Join(t.TempDir(), "criteria.csv")
	if err := os.WriteFile(path, []byte(validCriteriaCSV()), 0o644); err != nil {
		t.Fatal(err)
	}

	rubric, err := LoadRubric(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, category := range evaluation.Categories {
		got := rubric.ForCategory(category)
		if len(got) != criteriaPerCategory {
			t.Errorf("ForCategory(%s) returned %d criteria, want %d", category, len(got), criteriaPerCategory)
		}
		for _, c := range got {
			if c.Category != category {
				t.Errorf("ForCategory(%s) returned criterion %d with category %s", category, c.ID, c.Category)
			}
		}
	}
	if len(rubric.All()) != 30 {
		t.Errorf("All() returned %d criteria, want 30", len(rubric.All()))
	}
}

func TestLoadRubricMissingFile(t *testing.T) {
	if _, err := LoadRubric(filepath.Join(t.TempDir(), "nope.csv")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
