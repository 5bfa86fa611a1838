// pkg/connector/postgres.go
package connector

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v4/stdlib"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/mconlon17/vivo-person-ingest/pkg/config"
)

// PostgresConnector reaches the PostgreSQL database holding the
// knowledge-base triples
type PostgresConnector struct {
	db     *sql.DB
	logger *zap.Logger
	cfg    *config.PostgresConfig
}

// NewPostgresConnector opens and pings a pool for cfg
func NewPostgresConnector(ctx context.Context, cfg *config.PostgresConfig) (*PostgresConnector, error) {
	logger := zap.L().Named("postgres-connector")
	logger.Info("Connecting to PostgreSQL",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.Database),
		zap.String("user", cfg.User))

	db, err := open(ctx, "pgx", cfg.ConnectionString(), PoolSettings{
		MaxOpen:     cfg.MaxOpenConns,
		MaxIdle:     cfg.MaxIdleConns,
		MaxLifetime: cfg.ConnMaxLifetime,
		MaxIdleTime: cfg.ConnMaxIdleTime,
	}, postgresPingTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	c := &PostgresConnector{db: db, logger: logger, cfg: cfg}
	LogPoolStats(logger, cfg.Database, db)
	return c, nil
}

// NewPostgresConnectorFromDB wraps an already opened database
func NewPostgresConnectorFromDB(db *sql.DB, cfg *config.PostgresConfig) *PostgresConnector {
	return &PostgresConnector{
		db:     db,
		logger: zap.L().Named("postgres-connector"),
		cfg:    cfg,
	}
}

// DB returns the underlying pool
func (c *PostgresConnector) DB() *sql.DB {
	return c.db
}

// Validate reports the server version and makes sure the triples schema
// exists
func (c *PostgresConnector) Validate() error {
	ctx, cancel := c.statementContext(context.Background())
	defer cancel()

	var version string
	if err := c.db.QueryRowContext(ctx, "SELECT version()").Scan(&version); err != nil {
		return fmt.Errorf("failed to query PostgreSQL version: %w", err)
	}

	if _, err := c.db.ExecContext(ctx, "CREATE SCHEMA IF NOT EXISTS "+pq.QuoteIdentifier(c.cfg.Schema)); err != nil {
		return fmt.Errorf("failed to create/verify schema %s: %w", c.cfg.Schema, err)
	}

	c.logger.Info("PostgreSQL connection validated",
		zap.String("version", version),
		zap.String("database", c.cfg.Database),
		zap.String("schema", c.cfg.Schema),
		zap.String("table", c.cfg.Table))
	return nil
}

// Close closes the pool
func (c *PostgresConnector) Close() error {
	c.logger.Info("Closing PostgreSQL connection")
	LogPoolStats(c.logger, c.cfg.Database, c.db)
	return c.db.Close()
}

// statementContext bounds one statement by POSTGRES_STATEMENT_TIMEOUT
func (c *PostgresConnector) statementContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.cfg.StatementTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.cfg.StatementTimeout)
}

// BatchInsert inserts valueRows into schema.table, batchSize rows per
// statement. Rows colliding with an existing key are skipped, so the count
// returned may be lower than len(valueRows).
func (c *PostgresConnector) BatchInsert(
	ctx context.Context,
	schema, table string,
	columns []string,
	valueRows [][]interface{},
	batchSize int,
) (int64, error) {
	if batchSize <= 0 {
		batchSize = 1000
	}

	quoted := make([]string, len(columns))
	for i, col := range columns {
		quoted[i] = pq.QuoteIdentifier(col)
	}
	prefix := fmt.Sprintf("INSERT INTO %s (%s) VALUES ", QualifiedName(schema, table), strings.Join(quoted, ", "))

	var inserted int64
	for start := 0; start < len(valueRows); start += batchSize {
		batch := valueRows[start:min(start+batchSize, len(valueRows))]
		query, args := insertStatement(prefix, len(columns), batch)

		stmtCtx, cancel := c.statementContext(ctx)
		res, err := c.db.ExecContext(stmtCtx, query, args...)
		cancel()
		if err != nil {
			return inserted, fmt.Errorf("batch insert at row %d failed: %w", start, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += n
		}
	}
	return inserted, nil
}

// insertStatement numbers the placeholders of rows after prefix
func insertStatement(prefix string, width int, rows [][]interface{}) (string, []interface{}) {
	var b strings.Builder
	b.WriteString(prefix)
	args := make([]interface{}, 0, len(rows)*width)
	for i, row := range rows {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('(')
		for k := 0; k < width; k++ {
			if k > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "$%d", len(args)+1)
			args = append(args, row[k])
		}
		b.WriteByte(')')
	}
	b.WriteString(" ON CONFLICT DO NOTHING")
	return b.String(), args
}

// CreateTableIfNotExists creates schema.table from columnDefs unless
// information_schema already lists it
func (c *PostgresConnector) CreateTableIfNotExists(
	ctx context.Context,
	schema, table string,
	columnDefs []string,
	primaryKey string,
) error {
	name := QualifiedName(schema, table)

	var exists bool
	if err := c.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT FROM information_schema.tables WHERE table_schema = $1 AND table_name = $2)`,
		schema, table).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check if table exists: %w", err)
	}
	if exists {
		c.logger.Debug("Table already exists", zap.String("table", name))
		return nil
	}

	defs := columnDefs
	if primaryKey != "" {
		defs = append(append([]string{}, columnDefs...), "PRIMARY KEY ("+primaryKey+")")
	}
	stmtCtx, cancel := c.statementContext(ctx)
	defer cancel()
	if _, err := c.db.ExecContext(stmtCtx,
		fmt.Sprintf("CREATE TABLE %s (\n\t%s\n)", name, strings.Join(defs, ",\n\t"))); err != nil {
		return fmt.Errorf("failed to create table %s: %w", name, err)
	}

	c.logger.Info("Created table", zap.String("table", name))
	return nil
}

// QualifiedName returns the quoted schema.table name
func QualifiedName(schema, table string) string {
	return pq.QuoteIdentifier(schema) + "." + pq.QuoteIdentifier(table)
}
