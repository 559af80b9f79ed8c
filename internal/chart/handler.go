package chart

import (
	"errors"
	"net/http"

	"github.com/2beens/dailyscore/internal/history"
	"github.com/2beens/dailyscore/internal/telemetry/tracing"
	"github.com/2beens/dailyscore/internal/tracker"
	"github.com/2beens/dailyscore/internal/trend"
	"github.com/2beens/dailyscore/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type activitySource interface {
	Daily() tracker.DailyView
	Monthly() []history.DayTotal
}

type trendSource interface {
	Trend() (*trend.Analysis, error)
}

type Handler struct {
	renderer   *Renderer
	activities activitySource
	hours      trendSource
}

func NewHandler(renderer *Renderer, activities activitySource, hours trendSource) *Handler {
	return &Handler{
		renderer:   renderer,
		activities: activities,
		hours:      hours,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/charts/daily.png", handler.handleDaily).Methods("GET").Name("chart-daily")
	router.HandleFunc("/charts/monthly.png", handler.handleMonthly).Methods("GET").Name("chart-monthly")
	router.HandleFunc("/charts/trend.png", handler.handleTrend).Methods("GET").Name("chart-trend")
}

func (handler *Handler) handleDaily(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.chart.daily")
	defer span.End()

	img, err := handler.renderer.DailyCumulative(handler.activities.Daily().Cumulative)
	handler.writePNG(w, "daily", img, err)
}

func (handler *Handler) handleMonthly(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.chart.monthly")
	defer span.End()

	img, err := handler.renderer.Monthly(handler.activities.Monthly())
	handler.writePNG(w, "monthly", img, err)
}

func (handler *Handler) handleTrend(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.chart.trend")
	defer span.End()

	analysis, err := handler.hours.Trend()
	if err != nil {
		if errors.Is(err, trend.ErrNotEnoughPoints) {
			http.Error(w, "not enough days for a trend", http.StatusUnprocessableEntity)
			return
		}
		log.Errorf("trend chart: %s", err)
		http.Error(w, "trend error", http.StatusInternalServerError)
		return
	}

	img, err := handler.renderer.Trend(analysis)
	handler.writePNG(w, "trend", img, err)
}

func (handler *Handler) writePNG(w http.ResponseWriter, kind string, img []byte, err error) {
	if err != nil {
		log.Errorf("render %s chart: %s", kind, err)
		http.Error(w, "chart error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Cache-Control", "no-cache")
	pkg.WriteResponseBytesOK(w, pkg.ContentType.PNG, img)
}
