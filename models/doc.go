// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines domain, request, and wire types for the live poll API.

# Domain Types

  - Question: catalog entry (id, question, options)
  - Vote: one recorded answer (id, questionId, selectedOption, createdAt)
  - Tally: question id -> option -> count

A Tally serializes with string keys, matching what browser clients expect:

	{"1": {"JavaScript": 3, "Python": 1}}

# Request Types

  - SubmitResponseRequest: questionId, selectedOption (both required)

# Realtime Envelopes

Every WebSocket frame is a JSON envelope:

	{"event": "submitResponse", "data": {"questionId": 1, "selectedOption": "Python"}}

Event names:

	EventSubmitResponse    = "submitResponse"    (observer -> server)
	EventUpdateLeaderboard = "updateLeaderboard" (server -> observers)
	EventError             = "error"             (server -> one observer)

# Error Response

ErrorResponse is used for both HTTP error bodies and error frames:

	{"error": "Internal Server Error", "message": "..."}
*/
package models
