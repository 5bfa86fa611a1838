// pkg/connector/connector.go
package connector

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Time allowed for the first ping of a new pool
const (
	postgresPingTimeout  = 5 * time.Second
	snowflakePingTimeout = 10 * time.Second
)

// PoolSettings sizes a database/sql connection pool. Zero values keep the
// driver defaults.
type PoolSettings struct {
	MaxOpen     int
	MaxIdle     int
	MaxLifetime time.Duration
	MaxIdleTime time.Duration
}

// Apply configures the pool of db
func (p PoolSettings) Apply(db *sql.DB) {
	if p.MaxOpen > 0 {
		db.SetMaxOpenConns(p.MaxOpen)
	}
	if p.MaxIdle > 0 {
		db.SetMaxIdleConns(p.MaxIdle)
	}
	if p.MaxLifetime > 0 {
		db.SetConnMaxLifetime(p.MaxLifetime)
	}
	if p.MaxIdleTime > 0 {
		db.SetConnMaxIdleTime(p.MaxIdleTime)
	}
}

// LogPoolStats logs the pool counters of db at debug level
func LogPoolStats(logger *zap.Logger, name string, db *sql.DB) {
	s := db.Stats()
	logger.Debug("Connection pool stats",
		zap.String("database", name),
		zap.Int("open_connections", s.OpenConnections),
		zap.Int("in_use", s.InUse),
		zap.Int("idle", s.Idle),
		zap.Int("max_open", s.MaxOpenConnections),
		zap.Int64("wait_count", s.WaitCount),
		zap.Duration("wait_duration", s.WaitDuration))
}

// Ping checks that db answers within timeout
func Ping(ctx context.Context, db *sql.DB, timeout time.Duration) error {
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return fmt.Errorf("ping failed within %v: %w", timeout, err)
	}
	return nil
}

// open starts a pool for driver, sizes it and pings it. The pool is closed
// again when the ping fails.
func open(ctx context.Context, driver, dsn string, pool PoolSettings, timeout time.Duration) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	pool.Apply(db)
	if err := Ping(ctx, db, timeout); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
