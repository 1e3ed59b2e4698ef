// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/live-poll/cliparse"
	"github.com/danielhkuo/live-poll/models"
	"github.com/danielhkuo/live-poll/realtime"
	"github.com/danielhkuo/live-poll/store"
)

// ErrTestStoreDown is returned by every FailingStore call
var ErrTestStoreDown = errors.New("test store down")

// SetupTestStore opens a fresh in-memory SQLite vote store with the schema applied
func SetupTestStore(t *testing.T) *store.SQLStore {
	t.Helper()

	db, err := store.OpenSQL(context.Background(), cliparse.DatabaseSQLite, ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	s := store.NewSQLStore(db)
	t.Cleanup(func() { s.Close() })
	return s
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:              5000,
		DatabaseType:      cliparse.DatabaseSQLite,
		DatabaseURL:       ":memory:",
		AllowedOrigin:     "*",
		StoreTimeout:      2 * time.Second,
		StoreRetries:      0,
		StoreRetryBackoff: 10 * time.Millisecond,
	}
}

// RetryPolicy builds the store call bounds from cfg
func RetryPolicy(cfg cliparse.Config) realtime.RetryPolicy {
	return realtime.RetryPolicy{
		Timeout: cfg.StoreTimeout,
		Retries: cfg.StoreRetries,
		Backoff: cfg.StoreRetryBackoff,
	}
}

// NewTestCoordinator wires a coordinator and registry around s.
// The coordinator is closed when the test ends.
func NewTestCoordinator(t *testing.T, s store.VoteStore, cfg cliparse.Config) *realtime.Coordinator {
	t.Helper()
	coord := realtime.NewCoordinator(s, realtime.NewRegistry(), RetryPolicy(cfg), nil)
	t.Cleanup(coord.Close)
	return coord
}

// SeedVotes stores count votes for one option directly, bypassing the coordinator
func SeedVotes(t *testing.T, s store.VoteStore, questionID int, option string, count int) {
	t.Helper()

	for i := 0; i < count; i++ {
		vote := models.Vote{
			ID:             uuid.NewString(),
			QuestionID:     questionID,
			SelectedOption: option,
			CreatedAt:      time.Now().UTC(),
		}
		if err := s.Append(context.Background(), vote); err != nil {
			t.Fatalf("Failed to seed vote %d for %d/%s: %v", i, questionID, option, err)
		}
	}
}

// FailingStore is a vote store whose every call fails
type FailingStore struct{}

func (FailingStore) Append(context.Context, models.Vote) error {
	return fmt.Errorf("%w: append: %w", store.ErrStoreUnavailable, ErrTestStoreDown)
}

func (FailingStore) FetchAll(context.Context) ([]models.Vote, error) {
	return nil, fmt.Errorf("%w: fetch: %w", store.ErrStoreUnavailable, ErrTestStoreDown)
}

func (FailingStore) Close() error { return nil }

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
