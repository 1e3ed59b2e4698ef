// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/danielhkuo/live-poll/models"
)

var (
	ErrEmptyCatalog    = errors.New("catalog has no questions")
	ErrDuplicateID     = errors.New("duplicate question id")
	ErrInvalidQuestion = errors.New("invalid question")
	ErrUnknownQuestion = errors.New("unknown question")
	ErrUnknownOption   = errors.New("unknown option")
)

// Catalog is the read-only set of poll questions
type Catalog struct {
	questions []models.Question
	options   map[int]map[string]bool
}

// Default returns the built-in sample questions
func Default() *Catalog {
	c, _ := New([]models.Question{
		{
			ID:       1,
			Question: "What is your favorite programming language?",
			Options:  []string{"JavaScript", "Python", "Java", "Other"},
		},
		{
			ID:       2,
			Question: "What is your favorite programming language?",
			Options:  []string{"hello4", "Phello3", "hello2", "hello"},
		},
	})
	return c
}

// New validates questions and builds a catalog from them
func New(questions []models.Question) (*Catalog, error) {
	if len(questions) == 0 {
		return nil, ErrEmptyCatalog
	}

	c := &Catalog{
		questions: make([]models.Question, 0, len(questions)),
		options:   make(map[int]map[string]bool, len(questions)),
	}

	for _, q := range questions {
		if q.Question == "" || len(q.Options) == 0 {
			return nil, fmt.Errorf("%w: question %d needs text and options", ErrInvalidQuestion, q.ID)
		}
		if _, exists := c.options[q.ID]; exists {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateID, q.ID)
		}

		valid := make(map[string]bool, len(q.Options))
		for _, option := range q.Options {
			valid[option] = true
		}
		c.options[q.ID] = valid

		q.Options = append([]string(nil), q.Options...)
		c.questions = append(c.questions, q)
	}

	return c, nil
}

// Load reads a JSON array of questions from path
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	var questions []models.Question
	if err := json.Unmarshal(data, &questions); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	return New(questions)
}

// Questions returns a copy of the questions in catalog order
func (c *Catalog) Questions() []models.Question {
	out := make([]models.Question, len(c.questions))
	for i, q := range c.questions {
		q.Options = append([]string(nil), q.Options...)
		out[i] = q
	}
	return out
}

// Validate checks that option is one of the answers for questionID
func (c *Catalog) Validate(questionID int, option string) error {
	valid, ok := c.options[questionID]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownQuestion, questionID)
	}
	if !valid[option] {
		return fmt.Errorf("%w: %q for question %d", ErrUnknownOption, option, questionID)
	}
	return nil
}
