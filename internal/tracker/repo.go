package tracker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/2beens/dailyscore/internal/csvstore"
	"github.com/2beens/dailyscore/internal/history"

	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

// FileRepo keeps the daily buffer and the monthly history in two CSV files.
type FileRepo struct {
	store       *csvstore.Store
	dailyPath   string
	monthlyPath string

	mu sync.Mutex
	// monthly rows with an unparseable date, written back untouched on every save
	quarantined []csvstore.Row
}

func NewFileRepo(store *csvstore.Store, dailyPath, monthlyPath string) *FileRepo {
	return &FileRepo{
		store:       store,
		dailyPath:   dailyPath,
		monthlyPath: monthlyPath,
	}
}

func (r *FileRepo) LoadDaily(ctx context.Context, today time.Time) ([]Entry, error) {
	table, err := r.store.Load(ctx, r.dailyPath, DailySchema)
	if err != nil {
		return nil, fmt.Errorf("load daily data: %w", err)
	}
	return decodeDaily(table, today), nil
}

func (r *FileRepo) LoadMonthly(ctx context.Context) (*history.Record, error) {
	table, err := r.store.Load(ctx, r.monthlyPath, MonthlySchema)
	if err != nil {
		return nil, fmt.Errorf("load monthly data: %w", err)
	}

	totals, quarantined := decodeMonthly(table)
	for _, row := range quarantined {
		log.Warnf("monthly data: keeping row with invalid date [%s] aside", row[colDate])
	}

	r.mu.Lock()
	r.quarantined = quarantined
	r.mu.Unlock()

	return history.NewRecord(totals), nil
}

func (r *FileRepo) SaveDaily(ctx context.Context, entries []Entry) error {
	if err := r.store.Save(ctx, r.dailyPath, encodeDaily(entries)); err != nil {
		return fmt.Errorf("save daily data: %w", err)
	}
	return nil
}

// Commit writes the monthly history and then the daily buffer. When the daily
// write fails the monthly file is put back the way it was.
func (r *FileRepo) Commit(ctx context.Context, daily []Entry, monthly *history.Record) error {
	snap, err := r.store.Snapshot(r.monthlyPath)
	if err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	r.mu.Lock()
	quarantined := r.quarantined
	r.mu.Unlock()

	if err := r.store.Save(ctx, r.monthlyPath, encodeMonthly(monthly, quarantined)); err != nil {
		return fmt.Errorf("commit: save monthly data: %w", err)
	}

	if err := r.store.Save(ctx, r.dailyPath, encodeDaily(daily)); err != nil {
		err = fmt.Errorf("commit: save daily data: %w", err)
		if restoreErr := r.store.Restore(snap); restoreErr != nil {
			log.Errorf("commit: monthly data could not be restored: %s", restoreErr)
			return multierr.Append(err, restoreErr)
		}
		return err
	}

	return nil
}
