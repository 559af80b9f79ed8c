package score

import (
	"math"
	"strconv"
	"strings"
)

// hoursPerPoint is how many logged hours make one score point.
const hoursPerPoint = 3

// Round rounds v half away from zero to the given number of decimal places.
func Round(v float64, places int) float64 {
	pow := math.Pow(10, float64(places))
	return math.Round(v*pow) / pow
}

// NonNegative clamps negative values (and NaN) to 0.
func NonNegative(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return v
}

// ParseHours parses a free-form hours value.
// Blank, non-numeric, negative or non-finite input is reported as invalid.
func ParseHours(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	hours, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(hours) || math.IsInf(hours, 0) || hours < 0 {
		return 0, false
	}
	return hours, true
}

// HoursScore maps a logged hours value to its score, hours / 3 rounded to 2 places.
// Invalid input scores 0, it never fails.
func HoursScore(raw string) float64 {
	hours, ok := ParseHours(raw)
	if !ok {
		return 0
	}
	return Round(hours/hoursPerPoint, 2)
}
