package hourslog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/2beens/dailyscore/internal/history"
	"github.com/2beens/dailyscore/internal/score"
	"github.com/2beens/dailyscore/internal/telemetry/metrics"
	"github.com/2beens/dailyscore/internal/telemetry/tracing"
	"github.com/2beens/dailyscore/internal/trend"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

var ErrFutureDate = errors.New("date is after today")

type Clock interface {
	Now() time.Time
}

type hoursRepo interface {
	Load(ctx context.Context) (*history.Record, error)
	Save(ctx context.Context, rec *history.Record) error
}

// Service is the hours log: one row per day from the first logged day through
// today, each with the hours entered and the score derived from them.
type Service struct {
	repo    hoursRepo
	clock   Clock
	metrics *metrics.Manager
	degree  int

	mu     sync.Mutex
	record *history.Record
}

func NewService(ctx context.Context, repo hoursRepo, clock Clock, metricsManager *metrics.Manager, degree int) (*Service, error) {
	rec, err := repo.Load(ctx)
	if err != nil {
		return nil, err
	}

	s := &Service{
		repo:    repo,
		clock:   clock,
		metrics: metricsManager,
		degree:  degree,
		record:  rec,
	}

	missing := rec.Missing(s.today())
	s.fillLocked()
	log.Debugf("hours log: loaded %d days, %d missing days filled", rec.Len(), missing)

	return s, nil
}

func (s *Service) today() time.Time {
	return history.Day(s.clock.Now())
}

// fillLocked extends the record through today, the app may stay up across midnight.
func (s *Service) fillLocked() {
	s.record = s.record.FillGaps(s.today())
}

// Rows returns all days, newest first.
func (s *Service) Rows() []history.DayTotal {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fillLocked()
	return s.record.Descending()
}

// Today returns today's row, it always exists.
func (s *Service) Today() history.DayTotal {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fillLocked()
	row, _ := s.record.Get(s.today())
	return row
}

// UpdateHours stores the raw hours of date and recomputes its score.
// Hours that are not a non-negative number score 0.
func (s *Service) UpdateHours(ctx context.Context, date time.Time, hours string) (_ history.DayTotal, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "hourslog.updateHours")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("date", history.FormatDay(date)))

	s.mu.Lock()
	defer s.mu.Unlock()

	date = history.Day(date)
	if date.After(s.today()) {
		return history.DayTotal{}, fmt.Errorf("update %s: %w", history.FormatDay(date), ErrFutureDate)
	}

	row := history.DayTotal{
		Date:  date,
		Hours: strings.TrimSpace(hours),
		Score: score.HoursScore(hours),
	}
	updated := s.record.Set(row)
	if err := s.repo.Save(ctx, updated); err != nil {
		s.metrics.CounterPersistFailures.WithLabelValues("hours").Inc()
		return history.DayTotal{}, err
	}

	s.record = updated
	s.fillLocked()
	s.metrics.CounterHoursEdits.Inc()

	return row, nil
}

// Trend fits the regression models to the days, oldest first.
func (s *Service) Trend() (*trend.Analysis, error) {
	s.mu.Lock()
	s.fillLocked()
	days := s.record.Ascending()
	s.mu.Unlock()

	today := s.today()
	past := days[:0]
	for _, d := range days {
		if d.Date.After(today) {
			break
		}
		past = append(past, d)
	}

	return trend.Analyze(past, s.degree)
}
