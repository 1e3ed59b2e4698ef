// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

A .env file in the working directory is loaded first (github.com/joho/godotenv).
Variables already present in the environment win over the file.

# Config Fields

  - Port: Server listen port (default: 5000)
  - DatabaseType: sqlite, postgres, mongo or memory (default: sqlite)
  - DatabaseURL: Connection string / file path (required except for memory)
  - DatabaseName: MongoDB database name (default: live_polling)
  - AllowedOrigin: The single origin allowed by CORS and the WebSocket handshake
  - CatalogPath: Optional JSON file with poll questions
  - StrictCatalog: Reject votes for unknown questions/options (default: false)
  - StoreTimeout: Bound on every store call (default: 5s)
  - StoreRetries: Extra attempts after a failed store call (default: 2)
  - StoreRetryBackoff: First retry delay, doubled each attempt (default: 100ms)
  - LogLevel: slog level (default: info)

# CLI Flags

	-p               Server port
	-origin          Allowed origin
	-d               Database URL
	-t               Database type
	-db-name         Database name (mongo)
	-store-timeout   Store call timeout
	-store-retries   Store retry count
	-store-backoff   Store retry backoff
	-catalog         Poll catalog path
	-strict-catalog  Validate votes against the catalog
	-log-level       Log level

# Environment Variables

Flags fall back to environment variables:

	PORT                → -p
	ALLOWED_ORIGIN      → -origin
	DATABASE_URL        → -d   (MONGODB_URI also accepted for mongo)
	DATABASE_TYPE       → -t
	DATABASE_NAME       → -db-name
	STORE_TIMEOUT       → -store-timeout
	STORE_RETRIES       → -store-retries
	STORE_RETRY_BACKOFF → -store-backoff
	POLL_CATALOG        → -catalog
	STRICT_CATALOG      → -strict-catalog
	LOG_LEVEL           → -log-level

CLI flags take precedence over environment variables.

# Validation

ParseFlags returns an error if:

  - DATABASE_TYPE is not one of the supported backends
  - DATABASE_URL is missing for a persistent backend
  - a duration, number or log level does not parse
*/
package cliparse
