package tracker

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/2beens/dailyscore/internal/score"
	"github.com/2beens/dailyscore/internal/telemetry/tracing"
	"github.com/2beens/dailyscore/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

const ExportFileName = "monthly_data.csv"

type Handler struct {
	tracker *Tracker
	session *Session
}

func NewHandler(tracker *Tracker, session *Session) *Handler {
	return &Handler{
		tracker: tracker,
		session: session,
	}
}

// SetupRoutes registers the tracker routes. The guard middlewares wrap the
// routes that change state.
func (handler *Handler) SetupRoutes(router *mux.Router, guard ...mux.MiddlewareFunc) {
	router.HandleFunc("/monthly/export", handler.handleExport).Methods("GET").Name("monthly-export")
	router.HandleFunc("/api/daily", handler.handleDaily).Methods("GET").Name("api-daily")
	router.HandleFunc("/api/monthly", handler.handleMonthly).Methods("GET").Name("api-monthly")

	writeRouter := router.NewRoute().Subrouter()
	writeRouter.HandleFunc("/activities/submit", handler.handleSubmit).Methods("POST").Name("activities-submit")
	writeRouter.HandleFunc("/day/end", handler.handleEndDay).Methods("POST").Name("day-end")
	writeRouter.Use(guard...)
}

// RolloverCheck runs the time based rollover before every request is served.
func (handler *Handler) RolloverCheck() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res, err := handler.tracker.Tick(r.Context())
			if err != nil {
				// reads still work on the current state, writes retry the rollover themselves
				log.Errorf("rollover check: %s", err)
			} else if res != nil && res.Trigger == TriggerCutoff && handler.session != nil {
				handler.session.markDownloadReady()
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (handler *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.tracker.submit")
	defer span.End()

	if err := r.ParseForm(); err != nil {
		http.Error(w, "parse form error", http.StatusBadRequest)
		return
	}

	seq, err := strconv.Atoi(r.PostForm.Get("seq"))
	if err != nil {
		http.Error(w, "error, seq NaN", http.StatusBadRequest)
		return
	}
	names := r.PostForm["activity"]
	span.SetAttributes(attribute.Int("seq", seq))

	res, err := handler.tracker.Submit(ctx, handler.session, seq, names)
	if err != nil {
		handler.session.Remember(names)
		if errors.Is(err, score.ErrUnknownActivity) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Errorf("submit activities %v: %s", names, err)
		http.Error(w, "error, failed to save activities", http.StatusInternalServerError)
		return
	}

	log.Debugf("submitted %d activities, duplicate: %t", res.Added, res.Duplicate)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (handler *Handler) handleEndDay(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.tracker.endDay")
	defer span.End()

	res, err := handler.tracker.EndDay(ctx, handler.session)
	if err != nil {
		log.Errorf("end day: %s", err)
		http.Error(w, "error, failed to end the day", http.StatusInternalServerError)
		return
	}

	span.SetAttributes(attribute.Bool("skipped", res.Skipped))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (handler *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.tracker.export")
	defer span.End()

	var buf bytes.Buffer
	if err := handler.tracker.ExportMonthly(&buf); err != nil {
		log.Errorf("export monthly: %s", err)
		http.Error(w, "error, failed to export", http.StatusInternalServerError)
		return
	}

	pkg.WriteAttachment(w, pkg.ContentType.CSV, ExportFileName, buf.Bytes())
}

func (handler *Handler) handleDaily(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.tracker.daily")
	defer span.End()

	resp, err := json.Marshal(handler.tracker.Daily())
	if err != nil {
		log.Errorf("marshal daily view: %s", err)
		http.Error(w, "marshal error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, resp)
}

func (handler *Handler) handleMonthly(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.tracker.monthly")
	defer span.End()

	resp, err := json.Marshal(handler.tracker.Monthly())
	if err != nil {
		log.Errorf("marshal monthly history: %s", err)
		http.Error(w, "marshal error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, resp)
}
