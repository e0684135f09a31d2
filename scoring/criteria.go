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

// Package scoring implements the LLM-as-judge engine that evaluates each
// dialogue round against a fixed 30-criterion rubric and decides whether
// the conversation should stop.
package scoring

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/MadGAA-Lab/OSCE-Project-Stage2/evaluation"
)

// criteriaPerCategory is the fixed rubric shape: ten criteria per category,
// numbered contiguously in category order.
const criteriaPerCategory = 10

// Criterion is one rubric entry loaded from the judge criteria CSV.
type Criterion struct {
	ID          int
	Text        string
	GoodExample string
	BadExample  string
	Category    evaluation.Category
}

// Rubric is the full ordered criteria set.
type Rubric struct {
	criteria []Criterion
}

// LoadRubric reads the judge criteria CSV and validates the rubric shape.
// The file must carry exactly 30 rows with IDs 1..30 in three contiguous
// ten-row category blocks (Empathy, Persuasion, Safety). A malformed
// rubric is a configuration error and aborts startup.
func LoadRubric(path string) (*Rubric, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("scoring: opening criteria file: %w", err)
	}
	defer f.Close()

	criteria, err := parseCriteria(f)
	if err != nil {
		return nil, fmt.Errorf("scoring: %s: %w", path, err)
	}
	return &Rubric{criteria: criteria}, nil
}

func parseCriteria(r io.Reader) ([]Criterion, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{"No.", "Criteria", "Good example", "Bad example", "Category"} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("missing column %q", required)
		}
	}

	var criteria []Criterion
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row: %w", err)
		}

		field := func(name string) string {
			idx := columns[name]
			if idx >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[idx])
		}

		id, err := strconv.Atoi(field("No."))
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid criterion number %q", len(criteria)+1, field("No."))
		}
		category := evaluation.Category(field("Category"))
		switch category {
		case evaluation.CategoryEmpathy, evaluation.CategoryPersuasion, evaluation.CategorySafety:
		default:
			return nil, fmt.Errorf("criterion %d: unknown category %q", id, category)
		}
		text := field("Criteria")
		if text == "" {
			return nil, fmt.Errorf("criterion %d: empty criterion text", id)
		}

		criteria = append(criteria, Criterion{
			ID:          id,
			Text:        text,
			GoodExample: field("Good example"),
			BadExample:  field("Bad example"),
			Category:    category,
		})
	}

	want := criteriaPerCategory * len(evaluation.Categories)
	if len(criteria) != want {
		return nil, fmt.Errorf("expected %d criteria, found %d", want, len(criteria))
	}
	for i, c := range criteria {
		if c.ID != i+1 {
			return nil, fmt.Errorf("criterion at position %d has number %d, want %d", i+1, c.ID, i+1)
		}
		wantCategory := evaluation.Categories[i/criteriaPerCategory]
		if c.Category != wantCategory {
			return nil, fmt.Errorf("criterion %d has category %s, want %s", c.ID, c.Category, wantCategory)
		}
	}
	return criteria, nil
}

// All returns the criteria in rubric order.
func (r *Rubric) All() []Criterion {
	out := make([]Criterion, len(r.criteria))
	copy(out, r.criteria)
	return out
}

// ForCategory returns the ten criteria of one category in rubric order.
func (r *Rubric) ForCategory(category evaluation.Category) []Criterion {
	var out []Criterion
	for _, c := range r.criteria {
		if c.Category == category {
			out = append(out, c)
		}
	}
	return out
}
