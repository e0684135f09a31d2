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

package openai

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// ErrorType categorizes adapter errors.
type ErrorType string

const (
	ErrorTypeInvalidJSON ErrorType = "invalid_json"
	ErrorTypeRateLimit   ErrorType = "rate_limit"
	ErrorTypeAuth        ErrorType = "auth"
	ErrorTypeServer      ErrorType = "server"
	ErrorTypeNetwork     ErrorType = "network"
	ErrorTypeValidation  ErrorType = "validation"
	ErrorTypeUnknown     ErrorType = "unknown"
)

// APIError is a structured error from the OpenAI adapter.
type APIError struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	Code       string    `json:"code,omitempty"`
	StatusCode int       `json:"status_code,omitempty"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("[%s:%s] %s", e.Type, e.Code, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// classifyHTTPError maps a non-200 response onto an *APIError.
func classifyHTTPError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status, Message: http.StatusText(status)}

	var envelope apiErrorEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		apiErr.Message = envelope.Error.Message
		apiErr.Code = envelope.Error.Code
	}

	switch {
	case status == http.StatusTooManyRequests:
		apiErr.Type = ErrorTypeRateLimit
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		apiErr.Type = ErrorTypeAuth
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		apiErr.Type = ErrorTypeValidation
	case status >= 500:
		apiErr.Type = ErrorTypeServer
	default:
		apiErr.Type = ErrorTypeUnknown
	}
	return apiErr
}
