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

// Package persona defines the patient persona space (MBTI type, optional
// gender, medical case), the template catalog behind it, and the two-stage
// constructor that turns a persona ID into a playable patient identity.
package persona

import (
	"fmt"
	"math/rand"
	"strings"
)

// MBTITypes is the full 16-type personality vocabulary.
var MBTITypes = []string{
	"INTJ", "INTP", "ENTJ", "ENTP",
	"INFJ", "INFP", "ENFJ", "ENFP",
	"ISTJ", "ISFJ", "ESTJ", "ESFJ",
	"ISTP", "ISFP", "ESTP", "ESFP",
}

// Gender is the optional gender component of a persona ID.
type Gender string

const (
	GenderUnspecified Gender = ""
	GenderMale        Gender = "male"
	GenderFemale      Gender = "female"
)

// Case is the medical case component of a persona ID.
type Case string

const (
	CasePneumothorax Case = "pneumothorax"
	CaseLungCancer   Case = "lung_cancer"
)

// Cases lists the supported medical cases.
var Cases = []Case{CasePneumothorax, CaseLungCancer}

const (
	caseCodePneumo = "PNEUMO"
	caseCodeLung   = "LUNG"
)

// Collection keywords accepted by Expand.
const (
	KeywordAll            = "all"
	KeywordAllNoGender    = "all_no_gender"
	KeywordRandom         = "random"
	KeywordRandomNoGender = "random_no_gender"
)

// InvalidPersonaIDError reports a malformed or out-of-vocabulary persona ID.
type InvalidPersonaIDError struct {
	ID     string
	Reason string
}

func (e *InvalidPersonaIDError) Error() string {
	return fmt.Sprintf("invalid persona id %q: %s", e.ID, e.Reason)
}

// ID is a parsed persona identifier. The zero value is not valid; use
// ParseID or NewID.
type ID struct {
	MBTI   string
	Gender Gender
	Case   Case
}

// NewID builds an ID from components, validating each against the fixed
// vocabulary.
func NewID(mbti string, gender Gender, medicalCase Case) (ID, error) {
	id := ID{MBTI: strings.ToUpper(mbti), Gender: gender, Case: medicalCase}
	if err := id.validate(); err != nil {
		return ID{}, err
	}
	return id, nil
}

// ParseID parses "MBTI_CASE" or "MBTI_GENDER_CASE" tokens, e.g.
// "INTJ_PNEUMO" or "ESFP_F_LUNG".
func ParseID(raw string) (ID, error) {
	parts := strings.Split(raw, "_")

	var id ID
	switch len(parts) {
	case 2:
		id.MBTI = strings.ToUpper(parts[0])
		var err error
		if id.Case, err = parseCaseCode(raw, parts[1]); err != nil {
			return ID{}, err
		}
	case 3:
		id.MBTI = strings.ToUpper(parts[0])
		switch strings.ToUpper(parts[1]) {
		case "M":
			id.Gender = GenderMale
		case "F":
			id.Gender = GenderFemale
		default:
			return ID{}, &InvalidPersonaIDError{ID: raw, Reason: fmt.Sprintf("gender code %q, want M or F", parts[1])}
		}
		var err error
		if id.Case, err = parseCaseCode(raw, parts[2]); err != nil {
			return ID{}, err
		}
	default:
		return ID{}, &InvalidPersonaIDError{ID: raw, Reason: "want MBTI_CASE or MBTI_GENDER_CASE"}
	}

	if !validMBTI(id.MBTI) {
		return ID{}, &InvalidPersonaIDError{ID: raw, Reason: fmt.Sprintf("unknown MBTI type %q", id.MBTI)}
	}
	return id, nil
}

func parseCaseCode(raw, code string) (Case, error) {
	switch strings.ToUpper(code) {
	case caseCodePneumo:
		return CasePneumothorax, nil
	case caseCodeLung:
		return CaseLungCancer, nil
	default:
		return "", &InvalidPersonaIDError{ID: raw, Reason: fmt.Sprintf("case code %q, want PNEUMO or LUNG", code)}
	}
}

func validMBTI(mbti string) bool {
	for _, t := range MBTITypes {
		if t == mbti {
			return true
		}
	}
	return false
}

func (id ID) validate() error {
	if !validMBTI(id.MBTI) {
		return &InvalidPersonaIDError{ID: id.String(), Reason: fmt.Sprintf("unknown MBTI type %q", id.MBTI)}
	}
	switch id.Gender {
	case GenderUnspecified, GenderMale, GenderFemale:
	default:
		return &InvalidPersonaIDError{ID: id.String(), Reason: fmt.Sprintf("unknown gender %q", id.Gender)}
	}
	switch id.Case {
	case CasePneumothorax, CaseLungCancer:
	default:
		return &InvalidPersonaIDError{ID: id.String(), Reason: fmt.Sprintf("unknown medical case %q", id.Case)}
	}
	return nil
}

// String formats the ID back into its token form; ParseID(id.String())
// round-trips.
func (id ID) String() string {
	caseCode := caseCodePneumo
	if id.Case == CaseLungCancer {
		caseCode = caseCodeLung
	}
	switch id.Gender {
	case GenderMale:
		return fmt.Sprintf("%s_M_%s", id.MBTI, caseCode)
	case GenderFemale:
		return fmt.Sprintf("%s_F_%s", id.MBTI, caseCode)
	default:
		return fmt.Sprintf("%s_%s", id.MBTI, caseCode)
	}
}

// AllIDs enumerates the persona space: 64 IDs with gender, 32 without.
func AllIDs(includeGender bool) []ID {
	var ids []ID
	for _, mbti := range MBTITypes {
		for _, c := range Cases {
			if includeGender {
				ids = append(ids,
					ID{MBTI: mbti, Gender: GenderMale, Case: c},
					ID{MBTI: mbti, Gender: GenderFemale, Case: c},
				)
			} else {
				ids = append(ids, ID{MBTI: mbti, Case: c})
			}
		}
	}
	return ids
}

// Expand resolves collection keywords into concrete persona IDs:
// "all" (64), "all_no_gender" (32), "random" (one uniform draw over the
// full space), "random_no_gender". Entries that are not keywords are
// parsed as persona IDs. rng may be nil for the global source.
func Expand(tokens []string, rng *rand.Rand) ([]ID, error) {
	intn := rand.Intn
	if rng != nil {
		intn = rng.Intn
	}

	for _, token := range tokens {
		switch token {
		case KeywordAll:
			return AllIDs(true), nil
		case KeywordAllNoGender:
			return AllIDs(false), nil
		case KeywordRandom:
			gender := GenderMale
			if intn(2) == 1 {
				gender = GenderFemale
			}
			return []ID{{
				MBTI:   MBTITypes[intn(len(MBTITypes))],
				Gender: gender,
				Case:   Cases[intn(len(Cases))],
			}}, nil
		case KeywordRandomNoGender:
			return []ID{{
				MBTI: MBTITypes[intn(len(MBTITypes))],
				Case: Cases[intn(len(Cases))],
			}}, nil
		}
	}

	ids := make([]ID, 0, len(tokens))
	for _, token := range tokens {
		id, err := ParseID(token)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
