package tracker

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/2beens/dailyscore/internal/csvstore"
	"github.com/2beens/dailyscore/internal/history"
	"github.com/2beens/dailyscore/internal/score"

	log "github.com/sirupsen/logrus"
)

const (
	colActivity      = "Activity"
	colExerciseScore = "Exercise Score"
	colHour          = "Hour"
	colDate          = "Date"
	colTotalScore    = "Total Exercise Score"
)

// DailySchema v1 files had no Date column, their rows belong to the day they are loaded on.
var DailySchema = csvstore.Schema{
	Name:    "daily",
	Version: 2,
	Columns: []csvstore.Column{
		{Name: colActivity},
		{Name: colExerciseScore, Default: "0"},
		{Name: colHour},
		{Name: colDate},
	},
}

var MonthlySchema = csvstore.Schema{
	Name:    "monthly",
	Version: 1,
	Columns: []csvstore.Column{
		{Name: colDate},
		{Name: colTotalScore, Default: "0"},
	},
}

// Entry is one submitted activity of the daily buffer.
type Entry struct {
	Date     time.Time `json:"-"`
	Activity string    `json:"activity"`
	Score    float64   `json:"score"`
	Hour     int       `json:"hour"`
}

func contributions(entries []Entry) []score.Contribution {
	out := make([]score.Contribution, len(entries))
	for i, e := range entries {
		out[i] = score.Contribution{Label: e.Activity, Hour: e.Hour, Score: e.Score}
	}
	return out
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func parseScore(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// parseHour accepts "7" as well as the "7.0" older files were written with.
func parseHour(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return score.NoHour
	}
	if h, err := strconv.Atoi(raw); err == nil && h >= 0 && h <= 23 {
		return h
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil && f == math.Trunc(f) && f >= 0 && f <= 23 {
		return int(f)
	}
	return score.NoHour
}

func decodeDaily(table *csvstore.Table, today time.Time) []Entry {
	entries := make([]Entry, 0, len(table.Rows))
	for _, row := range table.Rows {
		s, ok := parseScore(row[colExerciseScore])
		if !ok {
			log.Warnf("daily data: invalid score [%s] for [%s], using 0", row[colExerciseScore], row[colActivity])
		}

		date := today
		if raw := strings.TrimSpace(row[colDate]); raw != "" {
			d, err := history.ParseDay(raw)
			if err != nil {
				log.Warnf("daily data: %s, assuming today", err)
			} else {
				date = d
			}
		}

		entries = append(entries, Entry{
			Date:     history.Day(date),
			Activity: row[colActivity],
			Score:    s,
			Hour:     parseHour(row[colHour]),
		})
	}
	return entries
}

func encodeDaily(entries []Entry) *csvstore.Table {
	table := csvstore.NewTable(DailySchema)
	for _, e := range entries {
		hour := ""
		if e.Hour != score.NoHour {
			hour = strconv.Itoa(e.Hour)
		}
		table.Append(csvstore.Row{
			colActivity:      e.Activity,
			colExerciseScore: formatScore(e.Score),
			colHour:          hour,
			colDate:          history.FormatDay(e.Date),
		})
	}
	return table
}

// decodeMonthly splits the rows into parsed day totals and rows whose date cannot be parsed.
func decodeMonthly(table *csvstore.Table) ([]history.DayTotal, []csvstore.Row) {
	var quarantined []csvstore.Row
	totals := make([]history.DayTotal, 0, len(table.Rows))
	for _, row := range table.Rows {
		d, err := history.ParseDay(row[colDate])
		if err != nil {
			quarantined = append(quarantined, row)
			continue
		}
		s, ok := parseScore(row[colTotalScore])
		if !ok {
			log.Warnf("monthly data: invalid total [%s] for %s, using 0", row[colTotalScore], history.FormatDay(d))
		}
		if s < 0 {
			log.Warnf("monthly data: negative total [%s] for %s, using 0", row[colTotalScore], history.FormatDay(d))
			s = score.NonNegative(s)
		}
		totals = append(totals, history.DayTotal{Date: d, Score: s})
	}
	return totals, quarantined
}

// encodeMonthly writes the non-zero days, followed by any quarantined rows.
func encodeMonthly(rec *history.Record, quarantined []csvstore.Row) *csvstore.Table {
	table := csvstore.NewTable(MonthlySchema)
	for _, d := range rec.WithoutZero().Ascending() {
		table.Append(csvstore.Row{
			colDate:       history.FormatDay(d.Date),
			colTotalScore: formatScore(score.NonNegative(d.Score)),
		})
	}
	for _, row := range quarantined {
		table.Append(row)
	}
	return table
}
