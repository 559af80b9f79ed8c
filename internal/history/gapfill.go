package history

import "time"

// FillGaps inserts a zero-score row for every calendar day from the earliest
// recorded day through today that has no row. Existing rows are kept as they are.
// An empty record gets a single placeholder row for today.
func (r *Record) FillGaps(today time.Time) *Record {
	today = Day(today)
	if len(r.days) == 0 {
		return &Record{days: []DayTotal{{Date: today}}}
	}

	rows := make([]DayTotal, 0, len(r.days))
	i := 0
	for day := r.days[0].Date; !day.After(today); day = day.AddDate(0, 0, 1) {
		if i < len(r.days) && r.days[i].Date.Equal(day) {
			rows = append(rows, r.days[i])
			i++
			continue
		}
		rows = append(rows, DayTotal{Date: day})
	}
	// days after today stay untouched
	rows = append(rows, r.days[i:]...)

	return &Record{days: rows}
}

// Missing counts the days FillGaps would insert.
func (r *Record) Missing(today time.Time) int {
	return r.FillGaps(today).Len() - r.Len()
}
