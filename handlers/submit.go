// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/danielhkuo/live-poll/catalog"
	"github.com/danielhkuo/live-poll/models"
)

var (
	ErrMalformedPayload = errors.New("malformed payload")
	ErrUnknownEvent     = errors.New("unknown event")
)

// Submission is a validated submitResponse payload
type Submission struct {
	QuestionID     int
	SelectedOption string
}

// DecodeSubmission validates a submitResponse payload.
// When strict is set the question and option must exist in the catalog.
func DecodeSubmission(data json.RawMessage, c *catalog.Catalog, strict bool) (Submission, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Submission{}, fmt.Errorf("%w: data is required", ErrMalformedPayload)
	}

	var req models.SubmitResponseRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return Submission{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	if req.QuestionID == nil {
		return Submission{}, fmt.Errorf("%w: questionId is required", ErrMalformedPayload)
	}
	if req.SelectedOption == nil || strings.TrimSpace(*req.SelectedOption) == "" {
		return Submission{}, fmt.Errorf("%w: selectedOption is required", ErrMalformedPayload)
	}

	sub := Submission{QuestionID: *req.QuestionID, SelectedOption: *req.SelectedOption}

	if strict && c != nil {
		if err := c.Validate(sub.QuestionID, sub.SelectedOption); err != nil {
			return Submission{}, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
		}
	}

	return sub, nil
}
