// pkg/ingest/selector.go
package ingest

import (
	"sort"

	"github.com/mconlon17/vivo-person-ingest/pkg/model"
)

// SelectRows keeps one row per identifier. Rows are ordered by their field
// tuple (identifier, dates, department, plan, job code, position flag, then
// source line) and the last row of each identifier wins. The result is in
// that order, so equal input always yields equal output.
func SelectRows(rows []model.PositionRow) []model.PositionRow {
	sorted := make([]model.PositionRow, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return rowLess(sorted[i], sorted[j])
	})

	selected := make([]model.PositionRow, 0, len(sorted))
	for i, row := range sorted {
		if i+1 < len(sorted) && sorted[i+1].UFID == row.UFID {
			continue
		}
		selected = append(selected, row)
	}
	return selected
}

func rowLess(a, b model.PositionRow) bool {
	keys := [][2]string{
		{a.UFID, b.UFID},
		{a.StartDate, b.StartDate},
		{a.EndDate, b.EndDate},
		{a.DeptID, b.DeptID},
		{a.SalaryPlan, b.SalaryPlan},
		{a.JobCodeDescription, b.JobCodeDescription},
	}
	for _, k := range keys {
		if k[0] != k[1] {
			return k[0] < k[1]
		}
	}
	if a.HRPosition != b.HRPosition {
		return !a.HRPosition
	}
	return a.Line < b.Line
}

// Identifiers returns the set of identifiers of every row, unfiltered
func Identifiers(rows []model.PositionRow) map[string]struct{} {
	ids := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		if row.UFID != "" {
			ids[row.UFID] = struct{}{}
		}
	}
	return ids
}
