// pkg/connector/factory.go
package connector

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mconlon17/vivo-person-ingest/pkg/config"
)

// ConnectorFactory creates the connectors a run needs
type ConnectorFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewConnectorFactory creates a new connector factory
func NewConnectorFactory(cfg *config.Config, logger *zap.Logger) *ConnectorFactory {
	return &ConnectorFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateSnowflakeConnector creates a connector to the HR warehouse
func (f *ConnectorFactory) CreateSnowflakeConnector(ctx context.Context) (*SnowflakeConnector, error) {
	f.logger.Info("Creating Snowflake connector")

	if err := f.cfg.Snowflake.Validate(); err != nil {
		return nil, fmt.Errorf("snowflake configuration: %w", err)
	}

	connector, err := NewSnowflakeConnector(ctx, &f.cfg.Snowflake)
	if err != nil {
		return nil, fmt.Errorf("failed to create Snowflake connector: %w", err)
	}

	return connector, nil
}

// CreatePostgresConnector creates a connector to the knowledge-base triple
// store and validates it
func (f *ConnectorFactory) CreatePostgresConnector(ctx context.Context) (*PostgresConnector, error) {
	f.logger.Info("Creating PostgreSQL connector")

	connector, err := NewPostgresConnector(ctx, &f.cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("failed to create PostgreSQL connector: %w", err)
	}

	if err := connector.Validate(); err != nil {
		connector.Close()
		return nil, err
	}

	return connector, nil
}

// CreateRedisConnector creates a connector for redis-backed lookups
func (f *ConnectorFactory) CreateRedisConnector(ctx context.Context) (*RedisConnector, error) {
	f.logger.Info("Creating Redis connector")

	connector, err := NewRedisConnector(ctx, f.cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis connector: %w", err)
	}

	return connector, nil
}
