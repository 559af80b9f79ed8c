package score

import (
	"fmt"
	"sort"
)

// NoHour marks an entry without a recorded hour.
const NoHour = -1

// Contribution is a single scored entry of the daily buffer.
type Contribution struct {
	Label string
	Hour  int
	Score float64
}

type Group struct {
	Activity string  `json:"activity"`
	Hour     int     `json:"hour"`
	Score    float64 `json:"score"`
}

type CumulativePoint struct {
	Hour  int     `json:"hour"`
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Total sums contributions, clamped to >= 0 and rounded to 3 places.
func Total(entries []Contribution) float64 {
	var total float64
	for _, e := range entries {
		total += e.Score
	}
	return Round(NonNegative(total), 3)
}

// GroupByActivityHour sums scores per (activity, hour), sorted by hour then activity.
// Entries without an hour sort last.
func GroupByActivityHour(entries []Contribution) []Group {
	type key struct {
		activity string
		hour     int
	}
	sums := make(map[key]float64)
	for _, e := range entries {
		sums[key{e.Label, e.Hour}] += e.Score
	}

	groups := make([]Group, 0, len(sums))
	for k, sum := range sums {
		groups = append(groups, Group{
			Activity: k.activity,
			Hour:     k.hour,
			Score:    Round(sum, 3),
		})
	}

	sort.Slice(groups, func(i, j int) bool {
		hi, hj := sortableHour(groups[i].Hour), sortableHour(groups[j].Hour)
		if hi != hj {
			return hi < hj
		}
		return groups[i].Activity < groups[j].Activity
	})

	return groups
}

func sortableHour(h int) int {
	if h == NoHour {
		return 24
	}
	return h
}

// Cumulative returns the running score for each hour in [fromHour, toHour].
// The running total never drops below 0 and every point is rounded to 1 place.
func Cumulative(entries []Contribution, fromHour, toHour int) []CumulativePoint {
	if toHour < fromHour {
		return []CumulativePoint{}
	}

	perHour := make(map[int]float64)
	for _, e := range entries {
		perHour[e.Hour] += e.Score
	}

	points := make([]CumulativePoint, 0, toHour-fromHour+1)
	var running float64
	for h := fromHour; h <= toHour; h++ {
		running = NonNegative(running + perHour[h])
		points = append(points, CumulativePoint{
			Hour:  h,
			Label: HourLabel(h),
			Score: Round(running, 1),
		})
	}
	return points
}

// HourLabel formats an hour of the day as "4 AM", "12 PM" etc.
func HourLabel(hour int) string {
	switch {
	case hour == 0:
		return "12 AM"
	case hour < 12:
		return fmt.Sprintf("%d AM", hour)
	case hour == 12:
		return "12 PM"
	default:
		return fmt.Sprintf("%d PM", hour-12)
	}
}
