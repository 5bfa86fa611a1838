// pkg/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Knowledge-base backends
const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Lookup store backends
const (
	LookupFile  = "file"
	LookupRedis = "redis"
)

// Config represents the application configuration
type Config struct {
	// Knowledge base triple store
	KBBackend string `env:"KB_BACKEND" envDefault:"postgres"`
	Postgres  PostgresConfig

	// YAML triples loaded into the memory backend at startup
	KBSeedFile string `env:"KB_SEED_FILE"`

	// Optional HR extract warehouse
	Snowflake SnowflakeConfig

	// Contact, privacy and exception list stores
	Lookup LookupConfig
	Redis  RedisConfig

	Ingest IngestConfig

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"console"`

	// Prometheus textfile written at the end of each run
	MetricsTextfile string `env:"METRICS_TEXTFILE"`
}

// IngestConfig holds the reconciliation settings
type IngestConfig struct {
	URIPrefix         string `env:"VIVO_URI_PREFIX" envDefault:"http://vivo.ufl.edu/individual/n"`
	HarvestSource     string `env:"HARVEST_SOURCE" envDefault:"Go Person Ingest 2.00"`
	DefaultAreaCode   string `env:"DEFAULT_AREA_CODE" envDefault:"352"`
	PositionTypesFile string `env:"POSITION_TYPES_FILE"`
	ProgressEvery     int    `env:"PROGRESS_EVERY" envDefault:"1000"`
}

// LookupConfig names the keyed stores consulted during validation
type LookupConfig struct {
	Backend string `env:"LOOKUP_BACKEND" envDefault:"file"`
	Dir     string `env:"LOOKUP_DIR" envDefault:"."`

	ContactFile            string `env:"CONTACT_FILE" envDefault:"contact_data.csv"`
	PrivacyFile            string `env:"PRIVACY_FILE" envDefault:"privacy_data.csv"`
	DeptExceptionsFile     string `env:"DEPTID_EXCEPTIONS_FILE" envDefault:"deptid_exceptions.txt"`
	UFIDExceptionsFile     string `env:"UFID_EXCEPTIONS_FILE" envDefault:"ufid_exceptions.txt"`
	URIExceptionsFile      string `env:"URI_EXCEPTIONS_FILE" envDefault:"uri_exceptions.txt"`
	PositionExceptionsFile string `env:"POSITION_EXCEPTIONS_FILE" envDefault:"position_exceptions.txt"`

	// Key column of the contact and privacy files
	KeyColumn string `env:"LOOKUP_KEY_COLUMN" envDefault:"UFID"`
}

// Load reads the given .env files (missing files are skipped) and parses the
// environment into a validated Config
func Load(envFiles ...string) (*Config, error) {
	existing := make([]string, 0, len(envFiles))
	for _, f := range envFiles {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) > 0 {
		if err := godotenv.Load(existing...); err != nil {
			return nil, fmt.Errorf("failed to load env files: %w", err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures all required configuration is present and valid
func (c *Config) Validate() error {
	switch c.KBBackend {
	case BackendPostgres:
		if err := c.Postgres.Validate(); err != nil {
			return fmt.Errorf("postgreSQL configuration: %w", err)
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown KB_BACKEND %q", c.KBBackend)
	}

	switch c.Lookup.Backend {
	case LookupFile:
	case LookupRedis:
		if c.Redis.URL == "" {
			return errors.New("REDIS_URL is required when LOOKUP_BACKEND=redis")
		}
	default:
		return fmt.Errorf("unknown LOOKUP_BACKEND %q", c.Lookup.Backend)
	}

	if !strings.HasPrefix(c.Ingest.URIPrefix, "http://") && !strings.HasPrefix(c.Ingest.URIPrefix, "https://") {
		return fmt.Errorf("VIVO_URI_PREFIX must be an http(s) URI, got %q", c.Ingest.URIPrefix)
	}

	if len(c.Ingest.DefaultAreaCode) != 3 {
		return errors.New("DEFAULT_AREA_CODE must have three digits")
	}

	if c.Ingest.ProgressEvery <= 0 {
		return errors.New("progress interval must be positive")
	}

	switch c.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("unknown LOG_FORMAT %q", c.LogFormat)
	}

	return nil
}
