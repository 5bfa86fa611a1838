// pkg/connector/snowflake.go
package connector

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	sf "github.com/snowflakedb/gosnowflake"
	"go.uber.org/zap"

	"github.com/mconlon17/vivo-person-ingest/pkg/config"
)

const defaultQueryTimeout = 30 * time.Second

// SnowflakeConnector reaches the Snowflake warehouse holding the HR
// position extract
type SnowflakeConnector struct {
	db     *sql.DB
	logger *zap.Logger
	cfg    *config.SnowflakeConfig
}

// NewSnowflakeConnector opens and pings a pool for cfg
func NewSnowflakeConnector(ctx context.Context, cfg *config.SnowflakeConfig) (*SnowflakeConnector, error) {
	logger := zap.L().Named("snowflake-connector")
	logger.Info("Connecting to Snowflake",
		zap.String("account", cfg.Account),
		zap.String("user", cfg.User),
		zap.String("database", cfg.Database),
		zap.String("warehouse", cfg.Warehouse),
		zap.String("role", cfg.Role))

	dsn, err := sf.DSN(&sf.Config{
		Account:       cfg.Account,
		User:          cfg.User,
		Password:      cfg.Password,
		Database:      cfg.Database,
		Warehouse:     cfg.Warehouse,
		Role:          cfg.Role,
		Authenticator: cfg.AuthType(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build Snowflake DSN: %w", err)
	}

	db, err := open(ctx, "snowflake", dsn, PoolSettings{
		MaxOpen:     cfg.MaxOpenConns,
		MaxIdle:     cfg.MaxIdleConns,
		MaxLifetime: cfg.ConnMaxLifetime,
		MaxIdleTime: cfg.ConnMaxIdleTime,
	}, snowflakePingTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Snowflake: %w", err)
	}

	c := &SnowflakeConnector{db: db, logger: logger, cfg: cfg}
	LogPoolStats(logger, cfg.Database, db)
	return c, nil
}

// NewSnowflakeConnectorFromDB wraps an already opened database
func NewSnowflakeConnectorFromDB(db *sql.DB, cfg *config.SnowflakeConfig) *SnowflakeConnector {
	return &SnowflakeConnector{
		db:     db,
		logger: zap.L().Named("snowflake-connector"),
		cfg:    cfg,
	}
}

// DB returns the underlying pool
func (c *SnowflakeConnector) DB() *sql.DB {
	return c.db
}

func (c *SnowflakeConnector) queryTimeout() time.Duration {
	if c.cfg.QueryTimeout > 0 {
		return c.cfg.QueryTimeout
	}
	return defaultQueryTimeout
}

// Validate checks the session lands in the configured database and that the
// position query can be planned
func (c *SnowflakeConnector) Validate() error {
	ctx, cancel := context.WithTimeout(context.Background(), c.queryTimeout())
	defer cancel()

	var role, database, warehouse string
	if err := c.db.QueryRowContext(ctx, "SELECT CURRENT_ROLE(), CURRENT_DATABASE(), CURRENT_WAREHOUSE()").
		Scan(&role, &database, &warehouse); err != nil {
		return fmt.Errorf("failed to verify Snowflake access: %w", err)
	}
	if database != c.cfg.Database {
		return fmt.Errorf("connected to wrong database: %s (expected: %s)", database, c.cfg.Database)
	}

	columns, err := c.PositionColumns(ctx)
	if err != nil {
		return fmt.Errorf("failed to verify position query: %w", err)
	}

	c.logger.Info("Connected to Snowflake",
		zap.String("role", role),
		zap.String("database", database),
		zap.String("warehouse", warehouse),
		zap.Strings("columns", columns))
	return nil
}

// Close closes the pool
func (c *SnowflakeConnector) Close() error {
	c.logger.Info("Closing Snowflake connection")
	LogPoolStats(c.logger, c.cfg.Database, c.db)
	return c.db.Close()
}

// PositionColumns returns the upper-cased column names produced by the
// configured position query without fetching any rows
func (c *SnowflakeConnector) PositionColumns(ctx context.Context) ([]string, error) {
	rows, err := c.db.QueryContext(ctx, fmt.Sprintf("SELECT * FROM (%s) LIMIT 0", c.cfg.PositionQuery))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}
	for i, col := range columns {
		columns[i] = strings.ToUpper(col)
	}
	return columns, nil
}

// BatchQuery pages through query with LIMIT/OFFSET, handing every row to
// processor. The query needs a total ORDER BY for the pages to be stable.
func (c *SnowflakeConnector) BatchQuery(
	ctx context.Context,
	query string,
	batchSize int,
	processor func(*sql.Rows) error,
) error {
	if batchSize <= 0 {
		batchSize = 10000
	}

	for offset := 0; ; offset += batchSize {
		n, err := c.page(ctx, fmt.Sprintf("%s LIMIT %d OFFSET %d", query, batchSize, offset), processor)
		if err != nil {
			return fmt.Errorf("batch at offset %d: %w", offset, err)
		}
		c.logger.Debug("Fetched batch", zap.Int("offset", offset), zap.Int("rows", n))
		if n < batchSize {
			return nil
		}
	}
}

// page runs one page under the query timeout and returns its row count
func (c *SnowflakeConnector) page(ctx context.Context, query string, processor func(*sql.Rows) error) (int, error) {
	pageCtx, cancel := context.WithTimeout(ctx, c.queryTimeout())
	defer cancel()

	rows, err := c.db.QueryContext(pageCtx, query)
	if err != nil {
		return 0, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	n := 0
	for rows.Next() {
		n++
		if err := processor(rows); err != nil {
			return n, fmt.Errorf("row processing failed: %w", err)
		}
	}
	if err := rows.Err(); err != nil {
		return n, fmt.Errorf("error iterating rows: %w", err)
	}
	return n, nil
}
