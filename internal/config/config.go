package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Remote backends. "none" keeps the tracker local-only: records live in
// SQLite and every sync endpoint reports the feature as unconfigured.
const (
	RemoteNone   = "none"
	RemoteHTTP   = "http"
	RemoteSheets = "sheets"
)

type Config struct {
	// HTTP server
	Port           string
	RateLimitRPS   float64
	RateLimitBurst int

	// Database
	SQLiteDBPath string

	// Identity
	JWTSecret            string
	JWTExpiry            time.Duration
	AdminPassword        string
	MaxUsers             int
	AvailabilityCacheTTL time.Duration

	// Sync
	SyncLimitPerDay int

	// Remote store selection
	RemoteBackend string

	// HTTP remote (cloud-function style endpoint)
	RemoteBaseURL    string
	RemoteTimeout    time.Duration
	RemoteMaxRetries int
	RemoteRetryDelay time.Duration

	// Google Sheets remote
	GoogleSpreadsheetID   string
	GoogleSheetName       string
	GoogleCredentialsFile string
	GoogleCredentialsJSON string

	// AMQP (optional async push queue)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "8082"),
		RateLimitRPS:   getEnvFloat("RATE_LIMIT_RPS", 10),
		RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 20),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/lootledger.db"),

		JWTSecret:            getEnv("JWT_SECRET", ""),
		JWTExpiry:            getEnvDuration("JWT_EXPIRY", 24*time.Hour),
		AdminPassword:        getEnv("ADMIN_PASSWORD", ""),
		MaxUsers:             getEnvInt("MAX_USERS", 100),
		AvailabilityCacheTTL: getEnvDuration("AVAILABILITY_CACHE_TTL", 5*time.Minute),

		SyncLimitPerDay: getEnvInt("SYNC_LIMIT_PER_DAY", 1),

		RemoteBackend: getEnv("REMOTE_BACKEND", RemoteNone),

		RemoteBaseURL:    getEnv("REMOTE_BASE_URL", ""),
		RemoteTimeout:    getEnvDuration("REMOTE_TIMEOUT", 10*time.Second),
		RemoteMaxRetries: getEnvInt("REMOTE_MAX_RETRIES", 2),
		RemoteRetryDelay: getEnvDuration("REMOTE_RETRY_DELAY", time.Second),

		GoogleSpreadsheetID:   getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:       getEnv("GOOGLE_SHEET_NAME", "Records"),
		GoogleCredentialsFile: getEnv("GOOGLE_CREDENTIALS_FILE", ""),
		GoogleCredentialsJSON: getEnv("GOOGLE_CREDENTIALS_JSON", ""),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "lootledger"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "push_records"),
	}
}

// Validate checks the configuration and returns every problem at once.
func (c *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.JWTSecret == "" {
		errs = append(errs, "JWT_SECRET is required")
	}

	if c.MaxUsers < 1 {
		errs = append(errs, fmt.Sprintf("invalid max users %d: must be at least 1", c.MaxUsers))
	}

	if c.SyncLimitPerDay < 1 {
		errs = append(errs, fmt.Sprintf("invalid sync limit %d: must be at least 1", c.SyncLimitPerDay))
	}

	if c.SQLiteDBPath == "" {
		errs = append(errs, "SQLite database path cannot be empty")
	} else if dir := filepath.Dir(c.SQLiteDBPath); dir != "." && dir != "" {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := os.MkdirAll(dir, 0755); err != nil {
				errs = append(errs, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
			}
		}
	}

	switch c.RemoteBackend {
	case RemoteNone:
	case RemoteHTTP:
		if c.RemoteBaseURL == "" {
			errs = append(errs, "REMOTE_BASE_URL is required for the http remote backend")
		} else if u, err := url.Parse(c.RemoteBaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			errs = append(errs, fmt.Sprintf("invalid remote base URL '%s': must be http or https", c.RemoteBaseURL))
		}
		if c.RemoteMaxRetries < 0 {
			errs = append(errs, fmt.Sprintf("invalid remote max retries %d: must not be negative", c.RemoteMaxRetries))
		}
	case RemoteSheets:
		if c.GoogleSpreadsheetID == "" {
			errs = append(errs, "Google Spreadsheet ID is required for the sheets remote backend")
		}
		if c.GoogleSheetName == "" {
			errs = append(errs, "Google Sheet name is required for the sheets remote backend")
		}
		if c.GoogleCredentialsFile == "" && c.GoogleCredentialsJSON == "" {
			errs = append(errs, "either GOOGLE_CREDENTIALS_FILE or GOOGLE_CREDENTIALS_JSON must be provided for the sheets remote backend")
		}
	default:
		errs = append(errs, fmt.Sprintf("invalid remote backend '%s': must be one of [none http sheets]", c.RemoteBackend))
	}

	if c.AMQPURL != "" {
		if parsed, err := url.Parse(c.AMQPURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsed.Scheme != "amqp" && parsed.Scheme != "amqps" {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsed.Scheme))
		}
		if c.AMQPExchange == "" {
			errs = append(errs, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errs = append(errs, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.RateLimitRPS <= 0 {
		errs = append(errs, fmt.Sprintf("invalid rate limit %v: must be positive", c.RateLimitRPS))
	}
	if c.RateLimitBurst < 1 {
		errs = append(errs, fmt.Sprintf("invalid rate limit burst %d: must be at least 1", c.RateLimitBurst))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
