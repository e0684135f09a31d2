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

package persona

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// templateCacheSize covers the whole template space (16 MBTI + 2 gender +
// 2 case files) with room to spare.
const templateCacheSize = 32

// Templates holds the raw prompt material for one persona. Gender is empty
// when the persona ID leaves gender unspecified.
type Templates struct {
	MBTI   string
	Gender string
	Case   string
}

// Catalog resolves persona template files by the fixed directory layout:
//
//	<promptsDir>/
//	  mbti/<type>.txt      (lower-case MBTI code)
//	  gender/<gender>.txt  (male, female)
//	  cases/<case>.txt     (pneumothorax, lung_cancer)
//
// Templates are read-only after load and safe to share across sessions.
type Catalog struct {
	promptsDir string
	cache      *lru.Cache[string, string]
}

// NewCatalog creates a catalog rooted at promptsDir.
func NewCatalog(promptsDir string) (*Catalog, error) {
	if promptsDir == "" {
		return nil, fmt.Errorf("persona: prompts directory is required")
	}
	cache, err := lru.New[string, string](templateCacheSize)
	if err != nil {
		return nil, err
	}
	return &Catalog{promptsDir: promptsDir, cache: cache}, nil
}

// TemplatePaths returns the file paths backing a persona's templates. The
// gender path is empty when the ID has no gender component.
func (c *Catalog) TemplatePaths(id ID) (mbti, gender, medicalCase string) {
	mbti = filepath.Join(c.promptsDir, "mbti", strings.ToLower(id.MBTI)+".txt")
	medicalCase = filepath.Join(c.promptsDir, "cases", string(id.Case)+".txt")
	if id.Gender != GenderUnspecified {
		gender = filepath.Join(c.promptsDir, "gender", string(id.Gender)+".txt")
	}
	return mbti, gender, medicalCase
}

// LoadTemplates loads and caches the prompt templates for a persona. A
// missing template file is a fatal resource error: the constructor cannot
// produce a faithful persona without its character material.
func (c *Catalog) LoadTemplates(id ID) (*Templates, error) {
	if err := id.validate(); err != nil {
		return nil, err
	}

	mbtiPath, genderPath, casePath := c.TemplatePaths(id)

	templates := &Templates{}
	var err error
	if templates.MBTI, err = c.readTemplate(mbtiPath); err != nil {
		return nil, err
	}
	if templates.Case, err = c.readTemplate(casePath); err != nil {
		return nil, err
	}
	if genderPath != "" {
		if templates.Gender, err = c.readTemplate(genderPath); err != nil {
			return nil, err
		}
	}
	return templates, nil
}

func (c *Catalog) readTemplate(path string) (string, error) {
	if cached, ok := c.cache.Get(path); ok {
		return cached, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("persona: loading template: %w", err)
	}
	text := strings.TrimSpace(string(data))
	c.cache.Add(path, text)
	return text, nil
}
