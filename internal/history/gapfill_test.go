package history_test

import (
	"testing"

	"github.com/2beens/dailyscore/internal/history"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFillGaps_Day1Day5(t *testing.T) {
	rec := history.NewRecord([]history.DayTotal{
		{Date: day(t, "2024-01-01"), Score: 2.0},
		{Date: day(t, "2024-01-05"), Score: 1.0},
	})

	filled := rec.FillGaps(day(t, "2024-01-05"))
	rows := filled.Ascending()
	require.Len(t, rows, 5)
	assert.Equal(t, 2.0, rows[0].Score)
	for i, d := range []string{"2024-01-02", "2024-01-03", "2024-01-04"} {
		assert.Equal(t, day(t, d), rows[i+1].Date)
		assert.Equal(t, 0.0, rows[i+1].Score)
	}
	assert.Equal(t, 1.0, rows[4].Score)
	assert.Equal(t, 3, rec.Missing(day(t, "2024-01-05")))
}

func TestFillGaps_PlaceholderOnly(t *testing.T) {
	rec := history.NewRecord([]history.DayTotal{
		{Date: day(t, "2024-01-01"), Hours: "", Score: 0},
	})

	rows := rec.FillGaps(day(t, "2024-01-04")).Ascending()
	require.Len(t, rows, 4)
	for i, d := range []string{"2024-01-01", "2024-01-02", "2024-01-03", "2024-01-04"} {
		assert.Equal(t, day(t, d), rows[i].Date)
		assert.Equal(t, 0.0, rows[i].Score)
	}
}

func TestFillGaps_Empty(t *testing.T) {
	rows := history.NewRecord(nil).FillGaps(day(t, "2024-02-29")).Ascending()
	require.Len(t, rows, 1)
	assert.Equal(t, history.DayTotal{Date: day(t, "2024-02-29")}, rows[0])
}

func TestFillGaps_KeepsExistingAndFuture(t *testing.T) {
	rec := history.NewRecord([]history.DayTotal{
		{Date: day(t, "2024-01-01"), Hours: "3", Score: 1},
		{Date: day(t, "2024-01-02"), Hours: "6", Score: 2},
		{Date: day(t, "2024-01-10"), Score: 7},
	})

	rows := rec.FillGaps(day(t, "2024-01-03")).Ascending()
	require.Len(t, rows, 4)
	assert.Equal(t, history.DayTotal{Date: day(t, "2024-01-01"), Hours: "3", Score: 1}, rows[0])
	assert.Equal(t, history.DayTotal{Date: day(t, "2024-01-02"), Hours: "6", Score: 2}, rows[1])
	assert.Equal(t, history.DayTotal{Date: day(t, "2024-01-03")}, rows[2])
	assert.Equal(t, 7.0, rows[3].Score)
}

func TestFillGaps_AcrossMonthEnd(t *testing.T) {
	rec := history.NewRecord([]history.DayTotal{{Date: day(t, "2024-02-27"), Score: 1}})
	rows := rec.FillGaps(day(t, "2024-03-02")).Ascending()
	require.Len(t, rows, 5)
	assert.Equal(t, day(t, "2024-02-29"), rows[2].Date)
	assert.Equal(t, day(t, "2024-03-02"), rows[4].Date)
}
