package models

import (
	"encoding/json"
	"time"
)

// Realtime event names
const (
	EventSubmitResponse    = "submitResponse"
	EventUpdateLeaderboard = "updateLeaderboard"
	EventError             = "error"
)

// Domain types

// Question is one entry of the static poll catalog.
type Question struct {
	ID       int      `json:"id"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

// Vote is a single recorded answer. Never mutated once stored.
type Vote struct {
	ID             string    `json:"id"`
	QuestionID     int       `json:"questionId"`
	SelectedOption string    `json:"selectedOption"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Tally maps question id -> option -> count.
// Snapshots are built fresh on every recompute and must not be modified after.
type Tally map[int]map[string]int

// Request types

// Pointers so a missing field can be told apart from a zero value.
type SubmitResponseRequest struct {
	QuestionID     *int    `json:"questionId"`
	SelectedOption *string `json:"selectedOption"`
}

// Realtime envelopes

// InboundEvent is a frame received from an observer.
type InboundEvent struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// OutboundEvent is a frame pushed to observers.
type OutboundEvent struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data,omitempty"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
