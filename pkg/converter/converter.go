// pkg/converter/converter.go
package converter

import (
	"fmt"

	"go.uber.org/zap"
)

// TypeConverter turns driver values from the HR warehouse into the text
// form the row selector and validator expect
type TypeConverter struct {
	logger *zap.Logger
	config TypeConverterConfig
}

// TypeConverterConfig provides configuration options for value conversion
type TypeConverterConfig struct {
	// Layout used for DATE and TIMESTAMP columns
	DateLayout string
	// Values treated as missing
	NullStrings []string
}

// DefaultConfig returns the default configuration
func DefaultConfig() TypeConverterConfig {
	return TypeConverterConfig{
		DateLayout:  "2006-01-02",
		NullStrings: []string{"null", "NULL", "nil", "NIL"},
	}
}

// NewTypeConverter creates a new TypeConverter with default configuration
func NewTypeConverter(logger *zap.Logger) *TypeConverter {
	return NewTypeConverterWithConfig(logger, DefaultConfig())
}

// NewTypeConverterWithConfig creates a TypeConverter with custom configuration
func NewTypeConverterWithConfig(logger *zap.Logger, config TypeConverterConfig) *TypeConverter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TypeConverter{
		logger: logger,
		config: config,
	}
}

// ConvertRow converts one scanned row. columns names each value and is used
// only for error messages.
func (c *TypeConverter) ConvertRow(columns []string, values []interface{}) ([]string, error) {
	if len(columns) != len(values) {
		return nil, fmt.Errorf("row has %d values for %d columns", len(values), len(columns))
	}
	out := make([]string, len(values))
	for i, v := range values {
		s, err := c.ToText(v)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", columns[i], err)
		}
		out[i] = s
	}
	return out, nil
}
