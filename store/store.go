// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"errors"

	"github.com/danielhkuo/live-poll/models"
)

var (
	ErrStoreUnavailable = errors.New("vote store unavailable")
	ErrUnknownDatabase  = errors.New("unknown database type")
)

// VoteStore is the durable, append-only home of every vote.
type VoteStore interface {
	// Append persists one vote. It returns only after the vote is durable.
	// Appending a vote whose ID is already stored is a no-op.
	Append(ctx context.Context, vote models.Vote) error

	// FetchAll returns every vote persisted so far, in no particular order.
	FetchAll(ctx context.Context) ([]models.Vote, error)

	Close() error
}
