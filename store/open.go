// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/danielhkuo/live-poll/cliparse"
	"github.com/danielhkuo/live-poll/db"
)

// Open connects the backend selected by cfg.DatabaseType and makes sure
// it is ready to accept votes.
func Open(ctx context.Context, cfg cliparse.Config) (VoteStore, error) {
	switch cfg.DatabaseType {
	case cliparse.DatabaseMemory:
		return NewMemoryStore(), nil

	case cliparse.DatabaseMongo:
		return NewMongoStore(ctx, cfg.DatabaseURL, cfg.DatabaseName)

	case cliparse.DatabaseSQLite, cliparse.DatabasePostgres:
		conn, err := OpenSQL(ctx, cfg.DatabaseType, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return NewSQLStore(conn), nil
	}

	return nil, fmt.Errorf("%w: %s", ErrUnknownDatabase, cfg.DatabaseType)
}

// OpenSQL opens, pings and migrates a SQL database
func OpenSQL(ctx context.Context, databaseType, url string) (*sql.DB, error) {
	driver := "postgres"
	if databaseType == cliparse.DatabaseSQLite {
		driver = "sqlite"
	}

	conn, err := sql.Open(driver, url)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	// SQLite allows a single writer; one connection also keeps
	// ":memory:" databases from splitting per connection.
	if driver == "sqlite" {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	if err := db.CreateSchema(ctx, conn); err != nil {
		conn.Close()
		return nil, err
	}

	return conn, nil
}
