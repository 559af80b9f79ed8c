package history

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// Day returns the calendar date of t, in t's own location, as midnight UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ParseDay(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date [%s]: %w", s, err)
	}
	return d, nil
}

func FormatDay(d time.Time) string {
	return d.Format(DateLayout)
}

// DayTotal is the committed score of one calendar day.
// Hours carries the raw hours value of the hours log and is empty for activity totals.
type DayTotal struct {
	Date  time.Time
	Hours string
	Score float64
}

type dayTotalJSON struct {
	Date  string  `json:"date"`
	Hours string  `json:"hours,omitempty"`
	Score float64 `json:"score"`
}

func (d DayTotal) MarshalJSON() ([]byte, error) {
	return json.Marshal(dayTotalJSON{
		Date:  FormatDay(d.Date),
		Hours: d.Hours,
		Score: d.Score,
	})
}

func (d *DayTotal) UnmarshalJSON(data []byte) error {
	var raw dayTotalJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	date, err := ParseDay(raw.Date)
	if err != nil {
		return err
	}
	d.Date, d.Hours, d.Score = date, raw.Hours, raw.Score
	return nil
}

// Record is the per-day history, one row per date, kept in ascending date order.
// Methods never modify the receiver; changes return a new Record so a caller
// can persist the new state before swapping it in.
type Record struct {
	days []DayTotal
}

// NewRecord merges rows by date (scores summed, first non-empty hours kept)
// and sorts them ascending.
func NewRecord(rows []DayTotal) *Record {
	byDay := make(map[time.Time]int, len(rows))
	days := make([]DayTotal, 0, len(rows))
	for _, row := range rows {
		row.Date = Day(row.Date)
		if i, ok := byDay[row.Date]; ok {
			days[i].Score += row.Score
			if days[i].Hours == "" {
				days[i].Hours = row.Hours
			}
			continue
		}
		byDay[row.Date] = len(days)
		days = append(days, row)
	}

	sort.Slice(days, func(i, j int) bool {
		return days[i].Date.Before(days[j].Date)
	})

	return &Record{days: days}
}

func (r *Record) Len() int {
	return len(r.days)
}

// Ascending returns a copy of the rows, oldest first. Used for trend analysis.
func (r *Record) Ascending() []DayTotal {
	out := make([]DayTotal, len(r.days))
	copy(out, r.days)
	return out
}

// Descending returns a copy of the rows, newest first. Used for display.
func (r *Record) Descending() []DayTotal {
	out := make([]DayTotal, len(r.days))
	for i, d := range r.days {
		out[len(r.days)-1-i] = d
	}
	return out
}

func (r *Record) Get(date time.Time) (DayTotal, bool) {
	date = Day(date)
	i := r.search(date)
	if i < len(r.days) && r.days[i].Date.Equal(date) {
		return r.days[i], true
	}
	return DayTotal{}, false
}

// Add merges score into the row of date, creating it if missing.
func (r *Record) Add(date time.Time, score float64) *Record {
	rows := r.Ascending()
	rows = append(rows, DayTotal{Date: date, Score: score})
	return NewRecord(rows)
}

// Set replaces the row of row.Date, creating it if missing.
func (r *Record) Set(row DayTotal) *Record {
	row.Date = Day(row.Date)
	rows := make([]DayTotal, 0, len(r.days)+1)
	for _, d := range r.days {
		if d.Date.Equal(row.Date) {
			continue
		}
		rows = append(rows, d)
	}
	rows = append(rows, row)
	return NewRecord(rows)
}

// WithoutZero drops the days whose score is exactly 0.
func (r *Record) WithoutZero() *Record {
	rows := make([]DayTotal, 0, len(r.days))
	for _, d := range r.days {
		if d.Score == 0 {
			continue
		}
		rows = append(rows, d)
	}
	return &Record{days: rows}
}

func (r *Record) search(date time.Time) int {
	return sort.Search(len(r.days), func(i int) bool {
		return !r.days[i].Date.Before(date)
	})
}
