// pkg/converter/values.go
package converter

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ToText converts a driver value to its extract-file representation.
// NULL becomes the empty string, dates use the configured layout and
// integral floats lose their fraction so HR_POSITION reads "1" not "1.0".
func (c *TypeConverter) ToText(value interface{}) (string, error) {
	if c.isNull(value) {
		return "", nil
	}

	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v), nil
	case *string:
		return c.ToText(*v)
	case []byte:
		return strings.TrimSpace(string(v)), nil
	case bool:
		if v {
			return "1", nil
		}
		return "0", nil
	case int:
		return strconv.Itoa(v), nil
	case int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", v), nil
	case float32:
		return formatFloat(float64(v)), nil
	case float64:
		return formatFloat(v), nil
	case time.Time:
		return v.Format(c.config.DateLayout), nil
	case *time.Time:
		return c.ToText(*v)
	case fmt.Stringer:
		return strings.TrimSpace(v.String()), nil
	default:
		return "", fmt.Errorf("cannot convert %T to text", value)
	}
}

// isNull determines if a value should be treated as missing
func (c *TypeConverter) isNull(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return true
	case *string:
		return v == nil
	case *time.Time:
		return v == nil
	case string:
		for _, null := range c.config.NullStrings {
			if v == null {
				return true
			}
		}
	}
	return false
}

func formatFloat(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
