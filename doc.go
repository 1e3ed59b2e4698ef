// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the live poll server.

Observers connect over a websocket, submit answers to a fixed set of
questions and watch a leaderboard of vote counts update live.

# Starting the Server

With no configuration the server listens on port 5000 and needs a database
URL:

	DATABASE_URL=./votes.db go run .

Or with flags:

	go run . -p 5000 -t postgres -d "postgres://..."
	go run . -t mongo -d "mongodb://localhost:27017" -db-name live_polling
	go run . -t memory

# Configuration

  - PORT (-p): Server port (default: 5000)
  - DATABASE_TYPE (-t): sqlite, postgres, mongo or memory (default: sqlite)
  - DATABASE_URL or MONGODB_URI (-d): Store connection string (not needed for memory)
  - DATABASE_NAME (-db-name): Mongo database (default: live_polling)
  - ALLOWED_ORIGIN (-origin): CORS and websocket origin, * for any
  - POLL_CATALOG (-catalog): JSON file with the questions
  - STRICT_CATALOG (-strict-catalog): Reject answers not in the catalog
  - STORE_TIMEOUT, STORE_RETRIES, STORE_RETRY_BACKOFF: Store call bounds
  - LOG_LEVEL (-log-level): debug, info, warn or error

A .env file in the working directory is read first.

# Architecture

  - handlers: HTTP and websocket handlers
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers
  - realtime: Vote pipeline, sessions and broadcast
  - tally: Vote counting
  - store: Vote stores (SQL, MongoDB, memory)
  - catalog: Question catalog
  - models: Wire and domain types
  - db: SQL schema creation
  - cliparse: Configuration parsing

SIGINT or SIGTERM stops the server and closes the store.
*/
package main
