// pkg/extract/snowflake.go
package extract

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/mconlon17/vivo-person-ingest/pkg/connector"
	"github.com/mconlon17/vivo-person-ingest/pkg/converter"
	"github.com/mconlon17/vivo-person-ingest/pkg/model"
)

// SnowflakeSource reads the extract from the HR warehouse
type SnowflakeSource struct {
	conn      *connector.SnowflakeConnector
	converter *converter.TypeConverter
	query     string
	batchSize int
	logger    *zap.Logger
}

// NewSnowflakeSource creates a source running query page by page
func NewSnowflakeSource(conn *connector.SnowflakeConnector, query string, batchSize int) *SnowflakeSource {
	logger := zap.L().Named("snowflake-extract")
	return &SnowflakeSource{
		conn:      conn,
		converter: converter.NewTypeConverter(logger),
		query:     query,
		batchSize: batchSize,
		logger:    logger,
	}
}

// Name implements Source
func (s *SnowflakeSource) Name() string { return "position_data" }

// Rows implements Source
func (s *SnowflakeSource) Rows(ctx context.Context) ([]model.PositionRow, error) {
	var (
		md   *model.ExtractMetadata
		rows []model.PositionRow
	)

	err := s.conn.BatchQuery(ctx, s.query, s.batchSize, func(r *sql.Rows) error {
		if md == nil {
			cols, err := r.Columns()
			if err != nil {
				return err
			}
			md = model.NewExtractMetadata(s.Name(), cols)
			if err := checkColumns(md); err != nil {
				return err
			}
		}

		values := make([]interface{}, len(md.Columns))
		ptrs := make([]interface{}, len(values))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := r.Scan(ptrs...); err != nil {
			return fmt.Errorf("failed to scan position row: %w", err)
		}

		names := make([]string, len(md.Columns))
		for i, c := range md.Columns {
			names[i] = c.Name
		}
		rec, err := s.converter.ConvertRow(names, values)
		if err != nil {
			return err
		}
		rows = append(rows, rowFromRecord(md, rec, len(rows)+1))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read positions from Snowflake: %w", err)
	}

	s.logger.Info("Read position extract", zap.Int("rows", len(rows)))
	return rows, nil
}
