package tracker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/2beens/dailyscore/internal/csvstore"
	"github.com/2beens/dailyscore/internal/history"
	"github.com/2beens/dailyscore/internal/score"
	"github.com/2beens/dailyscore/internal/telemetry/metrics"
	"github.com/2beens/dailyscore/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

//go:generate mockgen -source=$GOFILE -destination=tracker_mocks_test.go -package=tracker_test

type trackerRepo interface {
	LoadDaily(ctx context.Context, today time.Time) ([]Entry, error)
	LoadMonthly(ctx context.Context) (*history.Record, error)
	SaveDaily(ctx context.Context, entries []Entry) error
	Commit(ctx context.Context, daily []Entry, monthly *history.Record) error
}

type Trigger string

const (
	TriggerCutoff Trigger = "cutoff"
	TriggerManual Trigger = "manual"
	// TriggerStale commits a buffer left over from a previous day.
	TriggerStale Trigger = "stale"
)

var ErrNoSession = errors.New("session is nil")

type SubmitResult struct {
	Added     int  `json:"added"`
	Duplicate bool `json:"duplicate"`
}

type RolloverResult struct {
	Date    time.Time `json:"-"`
	Total   float64   `json:"total"`
	Trigger Trigger   `json:"trigger"`
	// Skipped is set when the day was already rolled over and there was nothing to add.
	Skipped bool `json:"skipped"`
}

type DailyView struct {
	Date         string                  `json:"date"`
	Entries      []Entry                 `json:"entries"`
	Groups       []score.Group           `json:"groups"`
	Total        float64                 `json:"total"`
	Cumulative   []score.CumulativePoint `json:"cumulative"`
	LastRollover string                  `json:"lastRollover,omitempty"`
	CutoffHour   int                     `json:"cutoffHour"`
}

type Params struct {
	Repo           trackerRepo
	Clock          Clock
	Catalog        *score.Catalog
	Metrics        *metrics.Manager
	CutoffHour     int
	ChartStartHour int
}

// Tracker owns the daily buffer and the monthly history of Flow A and moves
// the buffer into the history once a day. Every exported method runs under
// one lock, so an interaction sees and leaves a consistent state.
type Tracker struct {
	repo           trackerRepo
	clock          Clock
	catalog        *score.Catalog
	metrics        *metrics.Manager
	cutoffHour     int
	chartStartHour int

	mu      sync.Mutex
	buffer  []Entry
	monthly *history.Record
	// calendar day of the last committed rollover
	lastRollover time.Time
}

func New(ctx context.Context, p Params) (*Tracker, error) {
	if p.Repo == nil || p.Clock == nil || p.Catalog == nil || p.Metrics == nil {
		return nil, errors.New("tracker: repo, clock, catalog and metrics are required")
	}

	today := history.Day(p.Clock.Now())
	buffer, err := p.Repo.LoadDaily(ctx, today)
	if err != nil {
		return nil, err
	}
	monthly, err := p.Repo.LoadMonthly(ctx)
	if err != nil {
		return nil, err
	}

	t := &Tracker{
		repo:           p.Repo,
		clock:          p.Clock,
		catalog:        p.Catalog,
		metrics:        p.Metrics,
		cutoffHour:     p.CutoffHour,
		chartStartHour: p.ChartStartHour,
		buffer:         buffer,
		monthly:        monthly,
	}

	// a row for today means today was already rolled over before a restart.
	// a cutoff rollover of an empty day leaves no row, an empty buffer past
	// the cutoff is treated the same way.
	if _, ok := monthly.Get(today); ok {
		t.lastRollover = today
	} else if len(buffer) == 0 && p.Clock.Now().Hour() >= p.CutoffHour {
		t.lastRollover = today
	}

	t.metrics.GaugeDailyScore.Set(score.Total(contributions(buffer)))
	log.Debugf("tracker: loaded %d buffered entries and %d history days", len(buffer), monthly.Len())

	return t, nil
}

func (t *Tracker) Catalog() *score.Catalog {
	return t.catalog
}

// Submit appends the selected activities to the daily buffer and persists it.
// A form whose sequence does not match the session is a re-post and is ignored.
func (t *Tracker) Submit(ctx context.Context, sess *Session, seq int, names []string) (_ *SubmitResult, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "tracker.submit")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("activities", len(names)))

	if sess == nil {
		return nil, ErrNoSession
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, err := t.tickLocked(ctx); err != nil {
		return nil, err
	}

	if !sess.accept(seq) {
		log.Debugf("tracker: ignoring re-posted form, seq %d", seq)
		return &SubmitResult{Duplicate: true}, nil
	}

	now := t.clock.Now()
	today := history.Day(now)
	entries := make([]Entry, 0, len(names))
	for _, name := range names {
		weight, err := t.catalog.Weight(name)
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{
			Date:     today,
			Activity: name,
			Score:    weight,
			Hour:     now.Hour(),
		})
	}

	if len(entries) == 0 {
		sess.committed()
		return &SubmitResult{}, nil
	}

	buffer := make([]Entry, 0, len(t.buffer)+len(entries))
	buffer = append(buffer, t.buffer...)
	buffer = append(buffer, entries...)
	if err := t.repo.SaveDaily(ctx, buffer); err != nil {
		t.metrics.CounterPersistFailures.WithLabelValues("daily").Inc()
		return nil, err
	}

	t.buffer = buffer
	sess.committed()
	t.metrics.CounterSubmissions.Add(float64(len(entries)))
	t.metrics.GaugeDailyScore.Set(score.Total(contributions(buffer)))

	return &SubmitResult{Added: len(entries)}, nil
}

// Tick applies the time based rollover: a stale buffer is committed under its
// own date, and once the cutoff hour is reached today is rolled over, at most
// once per date. It returns nil when nothing was committed.
func (t *Tracker) Tick(ctx context.Context) (*RolloverResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.tickLocked(ctx)
}

func (t *Tracker) tickLocked(ctx context.Context) (*RolloverResult, error) {
	now := t.clock.Now()
	today := history.Day(now)

	res, err := t.commitStaleLocked(ctx, today)
	if err != nil {
		return nil, err
	}

	if now.Hour() < t.cutoffHour || t.lastRollover.Equal(today) {
		return res, nil
	}

	return t.rolloverLocked(ctx, today, TriggerCutoff)
}

func (t *Tracker) commitStaleLocked(ctx context.Context, today time.Time) (*RolloverResult, error) {
	if len(t.buffer) == 0 {
		return nil, nil
	}
	day := t.buffer[0].Date
	if !day.Before(today) {
		return nil, nil
	}
	log.Infof("tracker: daily buffer is from %s, committing it", history.FormatDay(day))
	return t.rolloverLocked(ctx, day, TriggerStale)
}

// EndDay rolls today over on request. On an already rolled over day an empty
// buffer makes it a no-op, and later entries are added to today's row.
func (t *Tracker) EndDay(ctx context.Context, sess *Session) (*RolloverResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	today := history.Day(t.clock.Now())
	if _, err := t.commitStaleLocked(ctx, today); err != nil {
		return nil, err
	}

	if t.lastRollover.Equal(today) && len(t.buffer) == 0 {
		log.Debugf("tracker: %s already rolled over, nothing to add", history.FormatDay(today))
		return &RolloverResult{Date: today, Trigger: TriggerManual, Skipped: true}, nil
	}

	res, err := t.rolloverLocked(ctx, today, TriggerManual)
	if err != nil {
		return nil, err
	}
	if sess != nil {
		sess.markDownloadReady()
	}
	return res, nil
}

// rolloverLocked commits the buffer total as the row of day and clears the buffer.
// State changes only after both files were written.
func (t *Tracker) rolloverLocked(ctx context.Context, day time.Time, trigger Trigger) (_ *RolloverResult, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "tracker.rollover")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.String("trigger", string(trigger)),
		attribute.String("date", history.FormatDay(day)),
	)

	total := score.Total(contributions(t.buffer))
	monthly := t.monthly.Add(day, total)

	if err := t.repo.Commit(ctx, []Entry{}, monthly); err != nil {
		t.metrics.CounterPersistFailures.WithLabelValues("rollover").Inc()
		log.Errorf("tracker: %s rollover of %s failed: %s", trigger, history.FormatDay(day), err)
		return nil, fmt.Errorf("rollover %s: %w", history.FormatDay(day), err)
	}

	t.buffer = nil
	t.monthly = monthly.WithoutZero()
	t.lastRollover = day
	t.metrics.CounterRollovers.WithLabelValues(string(trigger)).Inc()
	t.metrics.GaugeDailyScore.Set(0)

	log.Infof("tracker: %s rollover of %s committed, total %v", trigger, history.FormatDay(day), total)
	return &RolloverResult{Date: day, Total: total, Trigger: trigger}, nil
}

func (t *Tracker) Daily() DailyView {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.clock.Now()
	contribs := contributions(t.buffer)
	entries := make([]Entry, len(t.buffer))
	copy(entries, t.buffer)

	view := DailyView{
		Date:       history.FormatDay(history.Day(now)),
		Entries:    entries,
		Groups:     score.GroupByActivityHour(contribs),
		Total:      score.Total(contribs),
		Cumulative: score.Cumulative(contribs, t.chartStartHour, now.Hour()),
		CutoffHour: t.cutoffHour,
	}
	if !t.lastRollover.IsZero() {
		view.LastRollover = history.FormatDay(t.lastRollover)
	}
	return view
}

// Monthly returns the committed day totals, oldest first.
func (t *Tracker) Monthly() []history.DayTotal {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.monthly.Ascending()
}

func (t *Tracker) LastRollover() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastRollover
}

// ExportMonthly writes the monthly history as CSV, without zero days.
func (t *Tracker) ExportMonthly(w io.Writer) error {
	t.mu.Lock()
	table := encodeMonthly(t.monthly, nil)
	t.mu.Unlock()

	if err := csvstore.Encode(w, table); err != nil {
		return fmt.Errorf("export monthly data: %w", err)
	}
	return nil
}
