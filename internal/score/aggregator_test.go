package score_test

import (
	"strconv"
	"testing"

	"github.com/2beens/dailyscore/internal/score"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func TestTotal(t *testing.T) {
	assert.Equal(t, 0.0, score.Total(nil))
	assert.Equal(t, 0.333, score.Total([]score.Contribution{
		{Label: "慢跑5千米60m", Hour: 7, Score: 0.333},
	}))
	// float noise is rounded away
	assert.Equal(t, 0.333, score.Total([]score.Contribution{
		{Label: "易筋经20m", Hour: 7, Score: 0.111},
		{Label: "易筋经20m", Hour: 8, Score: 0.111},
		{Label: "易筋经20m", Hour: 9, Score: 0.111},
	}))
}

func TestTotal_ClampedNonNegative(t *testing.T) {
	entries := []score.Contribution{
		{Label: "a", Hour: 5, Score: 0.2},
		{Label: "b", Hour: 6, Score: -1.5},
	}
	assert.Equal(t, 0.0, score.Total(entries))
}

func TestGroupByActivityHour(t *testing.T) {
	entries := []score.Contribution{
		{Label: "太极5m", Hour: 18, Score: 0.028},
		{Label: "静坐30m", Hour: 7, Score: 0.16},
		{Label: "太极5m", Hour: 18, Score: 0.028},
		{Label: "五行气功10m", Hour: 7, Score: 0.056},
		{Label: "legacy", Hour: score.NoHour, Score: 0.1},
	}

	groups := score.GroupByActivityHour(entries)
	require.Len(t, groups, 4)
	assert.Equal(t, score.Group{Activity: "五行气功10m", Hour: 7, Score: 0.056}, groups[0])
	assert.Equal(t, score.Group{Activity: "静坐30m", Hour: 7, Score: 0.16}, groups[1])
	assert.Equal(t, score.Group{Activity: "太极5m", Hour: 18, Score: 0.056}, groups[2])
	assert.Equal(t, score.Group{Activity: "legacy", Hour: score.NoHour, Score: 0.1}, groups[3])

	// projection does not touch the input
	assert.Len(t, entries, 5)
	assert.Equal(t, "太极5m", entries[0].Label)
}

func TestCumulative(t *testing.T) {
	entries := []score.Contribution{
		{Label: "静坐30m", Hour: 5, Score: 0.16},
		{Label: "慢跑5千米60m", Hour: 7, Score: 0.333},
		{Label: "fix", Hour: 8, Score: -2},
		{Label: "太极5m", Hour: 9, Score: 0.3},
		{Label: "late", Hour: 22, Score: 5},
	}

	points := score.Cumulative(entries, 4, 9)
	require.Len(t, points, 6)
	assert.Equal(t, score.CumulativePoint{Hour: 4, Label: "4 AM", Score: 0}, points[0])
	assert.Equal(t, 0.2, points[1].Score)
	assert.Equal(t, 0.2, points[2].Score)
	assert.Equal(t, 0.5, points[3].Score)
	// clamped at zero after the negative correction
	assert.Equal(t, 0.0, points[4].Score)
	assert.Equal(t, 0.3, points[5].Score)
	assert.Equal(t, "9 AM", points[5].Label)

	assert.Empty(t, score.Cumulative(entries, 4, 3))
}

func TestHourLabel(t *testing.T) {
	assert.Equal(t, "12 AM", score.HourLabel(0))
	assert.Equal(t, "4 AM", score.HourLabel(4))
	assert.Equal(t, "12 PM", score.HourLabel(12))
	assert.Equal(t, "5 PM", score.HourLabel(17))
	assert.Equal(t, "11 PM", score.HourLabel(23))
}
