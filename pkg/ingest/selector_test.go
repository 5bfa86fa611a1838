package ingest

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mconlon17/vivo-person-ingest/pkg/model"
)

func TestSelectRowsLastWins(t *testing.T) {
	rows := []model.PositionRow{
		{Line: 1, UFID: "2", StartDate: "2012-01-01", DeptID: "A"},
		{Line: 2, UFID: "1", StartDate: "2014-08-07", DeptID: "B"},
		{Line: 3, UFID: "1", StartDate: "2010-01-01", DeptID: "C"},
		{Line: 4, UFID: "2", StartDate: "2012-01-01", DeptID: "B"},
		{Line: 5, UFID: "3"},
	}

	selected := SelectRows(rows)
	require.Len(t, selected, 3)
	assert.Equal(t, []int{2, 4, 5}, lines(selected))
}

func TestSelectRowsTieBreaksOnSourceLine(t *testing.T) {
	rows := []model.PositionRow{
		{Line: 7, UFID: "1", DeptID: "A"},
		{Line: 3, UFID: "1", DeptID: "A"},
	}
	assert.Equal(t, []int{7}, lines(SelectRows(rows)))
}

func TestSelectRowsHRPositionSortsLast(t *testing.T) {
	rows := []model.PositionRow{
		{Line: 1, UFID: "1", DeptID: "A", HRPosition: true},
		{Line: 2, UFID: "1", DeptID: "A", HRPosition: false},
	}
	assert.Equal(t, []int{1}, lines(SelectRows(rows)))
}

func TestSelectRowsIgnoresInputOrder(t *testing.T) {
	var rows []model.PositionRow
	for i := 0; i < 50; i++ {
		rows = append(rows, model.PositionRow{
			Line:       i + 1,
			UFID:       string(rune('a' + i%7)),
			DeptID:     string(rune('A' + i%5)),
			SalaryPlan: string(rune('0' + i%3)),
		})
	}
	want := SelectRows(rows)

	r := rand.New(rand.NewSource(1))
	for n := 0; n < 10; n++ {
		shuffled := append([]model.PositionRow(nil), rows...)
		r.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		assert.Equal(t, want, SelectRows(shuffled))
	}
	assert.Len(t, want, 7)
}

func TestSelectRowsDoesNotModifyInput(t *testing.T) {
	rows := []model.PositionRow{{Line: 1, UFID: "b"}, {Line: 2, UFID: "a"}}
	SelectRows(rows)
	assert.Equal(t, "b", rows[0].UFID)
}

func TestIdentifiers(t *testing.T) {
	ids := Identifiers([]model.PositionRow{{UFID: "1"}, {UFID: "1"}, {UFID: ""}, {UFID: "2"}})
	assert.Equal(t, map[string]struct{}{"1": {}, "2": {}}, ids)
}

func lines(rows []model.PositionRow) []int {
	out := make([]int, len(rows))
	for i, r := range rows {
		out[i] = r.Line
	}
	return out
}
