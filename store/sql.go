// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/danielhkuo/live-poll/models"
)

// SQLStore keeps votes in the vote table (PostgreSQL or SQLite)
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) Append(ctx context.Context, vote models.Vote) error {
	createdAt := vote.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO vote (id, question_id, selected_option, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO NOTHING
	`, vote.ID, vote.QuestionID, vote.SelectedOption, createdAt.UTC())
	if err != nil {
		return fmt.Errorf("%w: failed to insert vote: %w", ErrStoreUnavailable, err)
	}

	return nil
}

func (s *SQLStore) FetchAll(ctx context.Context) ([]models.Vote, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, question_id, selected_option FROM vote
	`)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query votes: %w", ErrStoreUnavailable, err)
	}
	defer rows.Close()

	votes := []models.Vote{}
	for rows.Next() {
		var vote models.Vote
		if err := rows.Scan(&vote.ID, &vote.QuestionID, &vote.SelectedOption); err != nil {
			return nil, fmt.Errorf("%w: failed to scan vote: %w", ErrStoreUnavailable, err)
		}
		votes = append(votes, vote)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to read votes: %w", ErrStoreUnavailable, err)
	}

	return votes, nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}
