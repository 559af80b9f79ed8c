package hourslog

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/2beens/dailyscore/internal/csvstore"
	"github.com/2beens/dailyscore/internal/history"
	"github.com/2beens/dailyscore/internal/score"

	log "github.com/sirupsen/logrus"
)

const (
	colDate  = "Date"
	colHours = "Hours"
	colScore = "Score"
)

var Schema = csvstore.Schema{
	Name:    "hours",
	Version: 1,
	Columns: []csvstore.Column{
		{Name: colDate},
		{Name: colHours},
		{Name: colScore, Default: "0"},
	},
}

// FileRepo keeps the hours log in a single CSV file.
type FileRepo struct {
	store *csvstore.Store
	path  string

	mu          sync.Mutex
	quarantined []csvstore.Row
}

func NewFileRepo(store *csvstore.Store, path string) *FileRepo {
	return &FileRepo{
		store: store,
		path:  path,
	}
}

// Load reads all rows, zero days included. Rows with a date that cannot be
// parsed are kept aside and written back by the next Save.
func (r *FileRepo) Load(ctx context.Context) (*history.Record, error) {
	table, err := r.store.Load(ctx, r.path, Schema)
	if err != nil {
		return nil, fmt.Errorf("load hours log: %w", err)
	}

	var quarantined []csvstore.Row
	days := make([]history.DayTotal, 0, len(table.Rows))
	for _, row := range table.Rows {
		d, err := history.ParseDay(row[colDate])
		if err != nil {
			log.Warnf("hours log: keeping row with invalid date [%s] aside", row[colDate])
			quarantined = append(quarantined, row)
			continue
		}
		days = append(days, history.DayTotal{
			Date:  d,
			Hours: strings.TrimSpace(row[colHours]),
			Score: rowScore(row),
		})
	}

	r.mu.Lock()
	r.quarantined = quarantined
	r.mu.Unlock()

	return history.NewRecord(days), nil
}

// rowScore trusts the stored score and derives it from the hours when it is unusable.
func rowScore(row csvstore.Row) float64 {
	s, err := strconv.ParseFloat(strings.TrimSpace(row[colScore]), 64)
	if err != nil || s < 0 {
		return score.HoursScore(row[colHours])
	}
	return s
}

// Save overwrites the file with the non-zero days and the quarantined rows.
func (r *FileRepo) Save(ctx context.Context, rec *history.Record) error {
	table := csvstore.NewTable(Schema)
	for _, d := range rec.WithoutZero().Ascending() {
		table.Append(csvstore.Row{
			colDate:  history.FormatDay(d.Date),
			colHours: d.Hours,
			colScore: strconv.FormatFloat(d.Score, 'f', -1, 64),
		})
	}

	r.mu.Lock()
	for _, row := range r.quarantined {
		table.Append(row)
	}
	r.mu.Unlock()

	if err := r.store.Save(ctx, r.path, table); err != nil {
		return fmt.Errorf("save hours log: %w", err)
	}
	return nil
}
