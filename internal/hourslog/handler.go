package hourslog

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/2beens/dailyscore/internal/history"
	"github.com/2beens/dailyscore/internal/telemetry/tracing"
	"github.com/2beens/dailyscore/internal/trend"
	"github.com/2beens/dailyscore/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type UpdateHoursRequest struct {
	Hours string `json:"hours"`
}

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service: service,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router, guard ...mux.MiddlewareFunc) {
	router.HandleFunc("/api/hours", handler.handleList).Methods("GET").Name("api-hours")
	router.HandleFunc("/api/trend", handler.handleTrend).Methods("GET").Name("api-trend")

	writeRouter := router.NewRoute().Subrouter()
	writeRouter.HandleFunc("/hours/{date}", handler.handleFormUpdate).Methods("POST").Name("hours-update")
	writeRouter.HandleFunc("/api/hours/{date}", handler.handleUpdate).Methods("PUT").Name("api-hours-update")
	writeRouter.Use(guard...)
}

func (handler *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.hours.list")
	defer span.End()

	resp, err := json.Marshal(handler.service.Rows())
	if err != nil {
		log.Errorf("marshal hours log: %s", err)
		http.Error(w, "marshal error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, resp)
}

func (handler *Handler) handleTrend(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.hours.trend")
	defer span.End()

	analysis, err := handler.service.Trend()
	if err != nil {
		if errors.Is(err, trend.ErrNotEnoughPoints) {
			http.Error(w, "not enough days for a trend", http.StatusUnprocessableEntity)
			return
		}
		log.Errorf("hours trend: %s", err)
		http.Error(w, "trend error", http.StatusInternalServerError)
		return
	}

	resp, err := json.Marshal(analysis)
	if err != nil {
		log.Errorf("marshal trend: %s", err)
		http.Error(w, "marshal error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, resp)
}

func (handler *Handler) handleFormUpdate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "parse form error", http.StatusBadRequest)
		return
	}

	if _, ok := handler.update(w, r, r.PostForm.Get("hours")); !ok {
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (handler *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var req UpdateHoursRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("update hours, unmarshal json params: %s", err)
		http.Error(w, "update hours failed", http.StatusBadRequest)
		return
	}

	row, ok := handler.update(w, r, req.Hours)
	if !ok {
		return
	}

	resp, err := json.Marshal(row)
	if err != nil {
		log.Errorf("marshal hours row: %s", err)
		http.Error(w, "marshal error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, resp)
}

func (handler *Handler) update(w http.ResponseWriter, r *http.Request, hours string) (history.DayTotal, bool) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.hours.update")
	defer span.End()

	date, err := history.ParseDay(mux.Vars(r)["date"])
	if err != nil {
		http.Error(w, "error, invalid date", http.StatusBadRequest)
		return history.DayTotal{}, false
	}

	row, err := handler.service.UpdateHours(ctx, date, hours)
	if err != nil {
		if errors.Is(err, ErrFutureDate) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return history.DayTotal{}, false
		}
		log.Errorf("update hours of %s: %s", history.FormatDay(date), err)
		http.Error(w, "error, failed to save hours", http.StatusInternalServerError)
		return history.DayTotal{}, false
	}

	log.Debugf("hours of %s set to [%s], score %v", history.FormatDay(date), row.Hours, row.Score)
	return row, true
}
