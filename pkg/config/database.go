// pkg/config/database.go
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/snowflakedb/gosnowflake"
)

// SnowflakeConfig holds Snowflake connection parameters for the HR warehouse
type SnowflakeConfig struct {
	User          string `env:"SNOWFLAKE_USER"`
	Password      string `env:"SNOWFLAKE_PASSWORD"`
	Account       string `env:"SNOWFLAKE_ACCOUNT"`
	Warehouse     string `env:"SNOWFLAKE_WAREHOUSE"`
	Database      string `env:"SNOWFLAKE_DATABASE" envDefault:"HR"`
	Role          string `env:"SNOWFLAKE_ROLE"`
	Authenticator string `env:"SNOWFLAKE_AUTHENTICATOR" envDefault:"snowflake"`

	// Query returning the position extract columns
	PositionQuery string `env:"SNOWFLAKE_POSITION_QUERY" envDefault:"SELECT UFID, HR_POSITION, DEPTID, SAL_ADMIN_PLAN, JOBCODE_DESCRIPTION, START_DATE, END_DATE FROM POSITION_DATA ORDER BY UFID, START_DATE, END_DATE, DEPTID, SAL_ADMIN_PLAN, JOBCODE_DESCRIPTION, HR_POSITION"`

	// Connection pool settings
	MaxOpenConns    int           `env:"SNOWFLAKE_MAX_OPEN_CONNS" envDefault:"4"`
	MaxIdleConns    int           `env:"SNOWFLAKE_MAX_IDLE_CONNS" envDefault:"2"`
	ConnMaxLifetime time.Duration `env:"SNOWFLAKE_CONN_MAX_LIFETIME" envDefault:"10m"`
	ConnMaxIdleTime time.Duration `env:"SNOWFLAKE_CONN_MAX_IDLE_TIME" envDefault:"5m"`

	// Rows fetched per page of the position query
	BatchSize int `env:"SNOWFLAKE_BATCH_SIZE" envDefault:"10000"`

	// Query timeout
	QueryTimeout time.Duration `env:"SNOWFLAKE_QUERY_TIMEOUT" envDefault:"5m"`
}

// PostgresConfig holds PostgreSQL connection parameters for the triple store
type PostgresConfig struct {
	Host     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	Port     int    `env:"POSTGRES_PORT" envDefault:"5432"`
	User     string `env:"POSTGRES_USER"`
	Password string `env:"POSTGRES_PASSWORD"`
	Database string `env:"POSTGRES_DB"`
	SSLMode  string `env:"POSTGRES_SSLMODE" envDefault:"disable"`

	// Where the triples live
	Schema string `env:"POSTGRES_SCHEMA" envDefault:"public"`
	Table  string `env:"POSTGRES_TRIPLES_TABLE" envDefault:"vivo_triples"`

	// Connection pool settings
	MaxOpenConns    int           `env:"POSTGRES_MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns    int           `env:"POSTGRES_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"POSTGRES_CONN_MAX_LIFETIME" envDefault:"30m"`
	ConnMaxIdleTime time.Duration `env:"POSTGRES_CONN_MAX_IDLE_TIME" envDefault:"10m"`

	// Statement timeout
	StatementTimeout time.Duration `env:"POSTGRES_STATEMENT_TIMEOUT" envDefault:"5m"`
}

// RedisConfig holds the connection settings for redis-backed lookups
type RedisConfig struct {
	URL          string        `env:"REDIS_URL"`
	KeyPrefix    string        `env:"REDIS_KEY_PREFIX" envDefault:"vivo-ingest"`
	PoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"4"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"1"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`
}

// Validate checks the Snowflake settings; only called when the extract is
// read from the warehouse
func (c *SnowflakeConfig) Validate() error {
	if c.User == "" {
		return errors.New("SNOWFLAKE_USER environment variable is required")
	}
	if c.Password == "" && c.AuthType() == gosnowflake.AuthTypeSnowflake {
		return errors.New("SNOWFLAKE_PASSWORD environment variable is required")
	}
	if c.Account == "" {
		return errors.New("SNOWFLAKE_ACCOUNT environment variable is required")
	}
	if c.Warehouse == "" {
		return errors.New("SNOWFLAKE_WAREHOUSE environment variable is required")
	}
	if c.PositionQuery == "" {
		return errors.New("SNOWFLAKE_POSITION_QUERY cannot be empty")
	}
	return nil
}

// Validate checks the PostgreSQL settings
func (c *PostgresConfig) Validate() error {
	if c.User == "" {
		return errors.New("POSTGRES_USER environment variable is required")
	}
	if c.Database == "" {
		return errors.New("POSTGRES_DB environment variable is required")
	}
	if c.Table == "" {
		return errors.New("POSTGRES_TRIPLES_TABLE cannot be empty")
	}
	return nil
}

// AuthType converts the configured authenticator name
func (c *SnowflakeConfig) AuthType() gosnowflake.AuthType {
	switch c.Authenticator {
	case "oauth":
		return gosnowflake.AuthTypeOAuth
	case "externalbrowser":
		return gosnowflake.AuthTypeExternalBrowser
	case "username_password_mfa":
		return gosnowflake.AuthTypeUsernamePasswordMFA
	case "jwt":
		return gosnowflake.AuthTypeJwt
	case "token":
		return gosnowflake.AuthTypeTokenAccessor
	case "okta":
		return gosnowflake.AuthTypeOkta
	default:
		return gosnowflake.AuthTypeSnowflake
	}
}

// ConnectionString returns a formatted PostgreSQL connection string
func (c *PostgresConfig) ConnectionString() string {
	dsn := fmt.Sprintf("host=%s port=%d user=%s dbname=%s sslmode=%s",
		c.Host,
		c.Port,
		c.User,
		c.Database,
		c.SSLMode,
	)
	if c.Password != "" {
		dsn += " password=" + c.Password
	}
	return dsn
}
