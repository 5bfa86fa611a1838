// pkg/model/metadata.go
package model

import "strings"

// HR extract column names
const (
	ColUFID               = "UFID"
	ColHRPosition         = "HR_POSITION"
	ColDeptID             = "DEPTID"
	ColSalaryPlan         = "SAL_ADMIN_PLAN"
	ColJobCodeDescription = "JOBCODE_DESCRIPTION"
	ColStartDate          = "START_DATE"
	ColEndDate            = "END_DATE"
)

// PositionColumns are the columns every HR extract must carry
var PositionColumns = []string{
	ColUFID,
	ColHRPosition,
	ColDeptID,
	ColSalaryPlan,
	ColJobCodeDescription,
	ColStartDate,
	ColEndDate,
}

// ExtractMetadata describes the header of a tabular source
type ExtractMetadata struct {
	Source  string   // File name or query
	Columns []Column // Columns in source order
}

// Column represents one header cell
type Column struct {
	Name  string
	Index int
}

// NewExtractMetadata builds metadata from a header row
func NewExtractMetadata(source string, header []string) *ExtractMetadata {
	md := &ExtractMetadata{Source: source, Columns: make([]Column, len(header))}
	for i, name := range header {
		md.Columns[i] = Column{Name: strings.TrimSpace(name), Index: i}
	}
	return md
}

// GetColumnByName returns a column by name (case-insensitive)
// Returns nil if column not found
func (md *ExtractMetadata) GetColumnByName(name string) *Column {
	for i, col := range md.Columns {
		if strings.EqualFold(col.Name, name) {
			return &md.Columns[i]
		}
	}
	return nil
}

// Missing returns the required columns absent from the header
func (md *ExtractMetadata) Missing(required []string) []string {
	var missing []string
	for _, name := range required {
		if md.GetColumnByName(name) == nil {
			missing = append(missing, name)
		}
	}
	return missing
}

// Value returns the cell of record under the named column, or "" when the
// column is absent or the record is short
func (md *ExtractMetadata) Value(record []string, name string) string {
	col := md.GetColumnByName(name)
	if col == nil || col.Index >= len(record) {
		return ""
	}
	return record[col.Index]
}
