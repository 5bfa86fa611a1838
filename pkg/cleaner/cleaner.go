// pkg/cleaner/cleaner.go
package cleaner

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mconlon17/vivo-person-ingest/pkg/model"
)

// Operation names a normalization applied to a field
type Operation string

const (
	OpTitleCase    Operation = "title_case"
	OpDisplayName  Operation = "display_name"
	OpLowerCase    Operation = "lower_case"
	OpRepairPhone  Operation = "repair_phone"
	OpRepairEmail  Operation = "repair_email"
	OpImproveTitle Operation = "improve_job_title"
	OpTrim         Operation = "trim"
)

// FieldCleaner normalizes contact and position fields and keeps a record of
// every value it changed
type FieldCleaner struct {
	areaCode string
	logger   *zap.Logger
	repairs  []model.FieldRepair
}

// NewFieldCleaner creates a FieldCleaner. areaCode is used for seven-digit
// phone numbers.
func NewFieldCleaner(areaCode string, logger *zap.Logger) (*FieldCleaner, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if len(areaCode) != 3 || strings.Trim(areaCode, "0123456789") != "" {
		return nil, fmt.Errorf("invalid area code %q", areaCode)
	}

	return &FieldCleaner{
		areaCode: areaCode,
		logger:   logger,
	}, nil
}

// Clean applies op to value and returns the result. A change is recorded
// against ufid and field.
func (c *FieldCleaner) Clean(ufid, field string, op Operation, value string) string {
	cleaned := c.apply(op, value)

	if cleaned != value && value != "" {
		c.repairs = append(c.repairs, model.FieldRepair{
			UFID:      ufid,
			Field:     field,
			Original:  value,
			Repaired:  cleaned,
			Operation: string(op),
		})
	}

	return cleaned
}

func (c *FieldCleaner) apply(op Operation, value string) string {
	switch op {
	case OpTitleCase:
		return TitleCase(value)
	case OpDisplayName:
		return CommaSpace(TitleCase(value))
	case OpLowerCase:
		return strings.ToLower(strings.TrimSpace(value))
	case OpRepairPhone:
		return RepairPhoneWithArea(value, c.areaCode)
	case OpRepairEmail:
		return RepairEmail(value)
	case OpImproveTitle:
		return ImproveJobTitle(value)
	default:
		return strings.TrimSpace(value)
	}
}

// Repairs returns the changes recorded since the last Flush
func (c *FieldCleaner) Repairs() []model.FieldRepair {
	return c.repairs
}

// Flush logs the recorded changes at debug level and clears them
func (c *FieldCleaner) Flush() []model.FieldRepair {
	repairs := c.repairs
	c.repairs = nil

	for _, r := range repairs {
		c.logger.Debug("Repaired field",
			zap.String("ufid", r.UFID),
			zap.String("field", r.Field),
			zap.String("operation", r.Operation),
			zap.String("original", r.Original),
			zap.String("repaired", r.Repaired))
	}

	return repairs
}
