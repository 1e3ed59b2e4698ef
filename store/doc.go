// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package store provides the durable vote store and its backends.

# Contract

Every backend implements VoteStore:

	Append(ctx, vote) error          // durable before returning nil
	FetchAll(ctx) ([]models.Vote, error)
	Close() error

Append is idempotent on Vote.ID, so a caller may retry an append whose
outcome is unknown (timeout, dropped connection) without double counting.
Failures are wrapped with ErrStoreUnavailable:

	if errors.Is(err, store.ErrStoreUnavailable) { ... }

# Backends

  - SQLStore: PostgreSQL (github.com/lib/pq) or SQLite (modernc.org/sqlite)
  - MongoStore: MongoDB votes collection (go.mongodb.org/mongo-driver);
    documents that do not decode are skipped rather than failing FetchAll
  - MemoryStore: process memory, for development and tests

Open picks the backend from configuration:

	s, err := store.Open(ctx, cfg)
	defer s.Close()

SQL backends are migrated on open (see package db).
*/
package store
