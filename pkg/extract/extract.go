// pkg/extract/extract.go

// Package extract reads the HR position extract from a delimited file, an
// Excel workbook or the Snowflake warehouse.
package extract

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mconlon17/vivo-person-ingest/pkg/model"
)

// ErrMissingColumn is returned when the extract lacks a required column
var ErrMissingColumn = errors.New("missing required column")

// Source yields the position rows of one extract
type Source interface {
	// Name identifies the extract in logs and output names
	Name() string

	// Rows reads every data row in source order
	Rows(ctx context.Context) ([]model.PositionRow, error)
}

// NewFileSource picks the reader for path by extension
func NewFileSource(path string) Source {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return &WorkbookSource{path: path}
	default:
		return &DelimitedSource{path: path}
	}
}

// BaseName returns the output base name for an input path: the file name
// with its extension removed
func BaseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// checkColumns fails with ErrMissingColumn when md lacks a position column
func checkColumns(md *model.ExtractMetadata) error {
	if missing := md.Missing(model.PositionColumns); len(missing) > 0 {
		return fmt.Errorf("%s: %w: %s", md.Source, ErrMissingColumn, strings.Join(missing, ", "))
	}
	return nil
}

// rowFromRecord maps one record onto a PositionRow using the header
func rowFromRecord(md *model.ExtractMetadata, rec []string, line int) model.PositionRow {
	get := func(col string) string {
		return strings.TrimSpace(md.Value(rec, col))
	}
	return model.PositionRow{
		Line:               line,
		UFID:               get(model.ColUFID),
		HRPosition:         model.ParseHRPosition(get(model.ColHRPosition)),
		DeptID:             get(model.ColDeptID),
		SalaryPlan:         get(model.ColSalaryPlan),
		JobCodeDescription: get(model.ColJobCodeDescription),
		StartDate:          get(model.ColStartDate),
		EndDate:            get(model.ColEndDate),
	}
}
