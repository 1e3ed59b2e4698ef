package cliparse

import (
	"errors"
	"flag"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Supported vote store backends
const (
	DatabaseSQLite   = "sqlite"
	DatabasePostgres = "postgres"
	DatabaseMongo    = "mongo"
	DatabaseMemory   = "memory"
)

const DefaultAllowedOrigin = "https://live-polling-2023.netlify.app"

type Config struct {
	Port          int
	DatabaseURL   string
	DatabaseType  string
	DatabaseName  string
	AllowedOrigin string
	CatalogPath   string
	StrictCatalog bool
	LogLevel      slog.Level

	// Store call bounds
	StoreTimeout      time.Duration
	StoreRetries      int
	StoreRetryBackoff time.Duration
}

// ParseFlags validates flags and fills the rest from the environment.
// A .env file in the working directory is loaded first if present;
// it never overrides variables that are already set.
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var logLevel string

	// Missing .env is fine
	_ = godotenv.Load()

	fs := flag.NewFlagSet("live-poll", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.AllowedOrigin, "origin", "", "Allowed CORS / WebSocket origin (* for any)")

	// Storage
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite, postgres, mongo or memory)")
	fs.StringVar(&cfg.DatabaseName, "db-name", "", "Database name (mongo only)")
	fs.DurationVar(&cfg.StoreTimeout, "store-timeout", 0, "Timeout for a single store call")
	fs.IntVar(&cfg.StoreRetries, "store-retries", -1, "Extra attempts after a failed store call")
	fs.DurationVar(&cfg.StoreRetryBackoff, "store-backoff", 0, "Delay before the first retry (doubles each time)")

	// Poll catalog
	fs.StringVar(&cfg.CatalogPath, "catalog", "", "Path to a JSON poll catalog")
	fs.BoolVar(&cfg.StrictCatalog, "strict-catalog", false, "Reject votes for questions/options not in the catalog")

	fs.StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 5000 // default
		}
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = DatabaseSQLite
		}
	}
	cfg.DatabaseType = strings.ToLower(cfg.DatabaseType)
	switch cfg.DatabaseType {
	case DatabaseSQLite, DatabasePostgres, DatabaseMongo, DatabaseMemory:
	default:
		return Config{}, errors.New("database type must be one of: sqlite, postgres, mongo, memory")
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" && cfg.DatabaseType == DatabaseMongo {
		cfg.DatabaseURL = os.Getenv("MONGODB_URI")
	}
	if cfg.DatabaseURL == "" && cfg.DatabaseType != DatabaseMemory {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if cfg.DatabaseName == "" {
		cfg.DatabaseName = os.Getenv("DATABASE_NAME")
		if cfg.DatabaseName == "" {
			cfg.DatabaseName = "live_polling"
		}
	}

	if cfg.AllowedOrigin == "" {
		cfg.AllowedOrigin = os.Getenv("ALLOWED_ORIGIN")
		if cfg.AllowedOrigin == "" {
			cfg.AllowedOrigin = DefaultAllowedOrigin
		}
	}

	if cfg.CatalogPath == "" {
		cfg.CatalogPath = os.Getenv("POLL_CATALOG")
	}
	if !cfg.StrictCatalog {
		cfg.StrictCatalog = envBool("STRICT_CATALOG")
	}

	var err error
	if cfg.StoreTimeout == 0 {
		cfg.StoreTimeout, err = envDuration("STORE_TIMEOUT", 5*time.Second)
		if err != nil {
			return Config{}, errors.New("invalid STORE_TIMEOUT env variable")
		}
	}
	if cfg.StoreTimeout <= 0 {
		return Config{}, errors.New("store timeout must be positive")
	}

	if cfg.StoreRetries < 0 {
		cfg.StoreRetries = 2
		if retriesStr := os.Getenv("STORE_RETRIES"); retriesStr != "" {
			retries, err := strconv.Atoi(retriesStr)
			if err != nil || retries < 0 {
				return Config{}, errors.New("invalid STORE_RETRIES env variable")
			}
			cfg.StoreRetries = retries
		}
	}

	if cfg.StoreRetryBackoff == 0 {
		cfg.StoreRetryBackoff, err = envDuration("STORE_RETRY_BACKOFF", 100*time.Millisecond)
		if err != nil {
			return Config{}, errors.New("invalid STORE_RETRY_BACKOFF env variable")
		}
	}

	if logLevel == "" {
		logLevel = os.Getenv("LOG_LEVEL")
	}
	if logLevel != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(logLevel)); err != nil {
			return Config{}, errors.New("invalid log level")
		}
	}

	return cfg, nil
}

func envBool(name string) bool {
	switch strings.TrimSpace(strings.ToLower(os.Getenv(name))) {
	case "1", "true", "t", "yes", "y", "on":
		return true
	default:
		return false
	}
}

func envDuration(name string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback, nil
	}
	return time.ParseDuration(raw)
}
