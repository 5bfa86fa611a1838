// pkg/extract/file.go
package extract

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/mconlon17/vivo-person-ingest/pkg/model"
	"github.com/mconlon17/vivo-person-ingest/pkg/tabular"
)

// DelimitedSource reads a header-led delimited text file
type DelimitedSource struct {
	path string
}

// Name implements Source
func (s *DelimitedSource) Name() string { return s.path }

// Rows implements Source
func (s *DelimitedSource) Rows(ctx context.Context) ([]model.PositionRow, error) {
	r, err := tabular.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open extract: %w", err)
	}
	defer r.Close()

	if err := checkColumns(r.Meta); err != nil {
		return nil, err
	}

	var rows []model.PositionRow
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, line, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: row %d: %w", s.path, line, err)
		}
		rows = append(rows, rowFromRecord(r.Meta, rec, line))
	}
	return rows, nil
}

// WorkbookSource reads the first sheet of an Excel workbook
type WorkbookSource struct {
	path string
}

// Name implements Source
func (s *WorkbookSource) Name() string { return s.path }

// Rows implements Source
func (s *WorkbookSource) Rows(ctx context.Context) ([]model.PositionRow, error) {
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%s: %w", s.path, tabular.ErrMissingHeader)
	}

	iter, err := f.Rows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read sheet %s: %w", s.path, sheets[0], err)
	}
	defer iter.Close()

	var (
		md   *model.ExtractMetadata
		rows []model.PositionRow
		line int
	)
	for iter.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cells, err := iter.Columns()
		if err != nil {
			return nil, fmt.Errorf("%s: failed to read row: %w", s.path, err)
		}
		if md == nil {
			if blankRecord(cells) {
				continue
			}
			md = model.NewExtractMetadata(s.path, cells)
			if err := checkColumns(md); err != nil {
				return nil, err
			}
			continue
		}
		line++
		if blankRecord(cells) {
			continue
		}
		rows = append(rows, rowFromRecord(md, cells, line))
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("%s: %w", s.path, err)
	}
	if md == nil {
		return nil, fmt.Errorf("%s: %w", s.path, tabular.ErrMissingHeader)
	}
	return rows, nil
}

func blankRecord(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return false
		}
	}
	return true
}
