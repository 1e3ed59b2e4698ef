// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"sync"

	"github.com/danielhkuo/live-poll/models"
)

// MemoryStore keeps votes in process memory. Votes are lost on restart,
// so it is only meant for local development and tests.
type MemoryStore struct {
	mu    sync.RWMutex
	votes []models.Vote
	ids   map[string]struct{}
}

func NewMemoryStore(seed ...models.Vote) *MemoryStore {
	s := &MemoryStore{ids: make(map[string]struct{})}
	for _, vote := range seed {
		_ = s.Append(context.Background(), vote)
	}
	return s
}

func (s *MemoryStore) Append(ctx context.Context, vote models.Vote) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if vote.ID != "" {
		if _, exists := s.ids[vote.ID]; exists {
			return nil
		}
		s.ids[vote.ID] = struct{}{}
	}
	s.votes = append(s.votes, vote)
	return nil
}

func (s *MemoryStore) FetchAll(ctx context.Context) ([]models.Vote, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]models.Vote(nil), s.votes...), nil
}

func (s *MemoryStore) Close() error {
	return nil
}
