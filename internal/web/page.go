package web

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/2beens/dailyscore/internal/history"
	"github.com/2beens/dailyscore/internal/score"
	"github.com/2beens/dailyscore/internal/telemetry/tracing"
	"github.com/2beens/dailyscore/internal/tracker"
	"github.com/2beens/dailyscore/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:embed templates/*.html
var templatesFS embed.FS

type activitySource interface {
	Catalog() *score.Catalog
	Daily() tracker.DailyView
	Monthly() []history.DayTotal
}

type hoursSource interface {
	Rows() []history.DayTotal
}

type activityOption struct {
	score.Activity
	Checked bool
}

type pageData struct {
	Activities   []activityOption
	Seq          int
	KeyRequired  bool
	Daily        tracker.DailyView
	Monthly      []history.DayTotal
	Hours        []history.DayTotal
	ShowDownload bool
	ExportFile   string
}

type Handler struct {
	activities  activitySource
	hours       hoursSource
	session     *tracker.Session
	keyRequired bool
	tmpl        *template.Template
}

func NewHandler(activities activitySource, hours hoursSource, session *tracker.Session, keyRequired bool) (*Handler, error) {
	tmpl, err := template.New("index.html").Funcs(template.FuncMap{
		"day":  history.FormatDay,
		"hour": hourLabel,
	}).ParseFS(templatesFS, "templates/index.html")
	if err != nil {
		return nil, err
	}

	return &Handler{
		activities:  activities,
		hours:       hours,
		session:     session,
		keyRequired: keyRequired,
		tmpl:        tmpl,
	}, nil
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/", handler.handleIndex).Methods("GET").Name("index")
	router.HandleFunc("/health", handler.handleHealth).Methods("GET").Name("health")
}

func (handler *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.web.index")
	defer span.End()

	catalog := handler.activities.Catalog().Activities()
	options := make([]activityOption, len(catalog))
	for i, a := range catalog {
		options[i] = activityOption{Activity: a, Checked: handler.session.IsChecked(a.Name)}
	}

	monthly := handler.activities.Monthly()
	// newest first
	for i, j := 0, len(monthly)-1; i < j; i, j = i+1, j-1 {
		monthly[i], monthly[j] = monthly[j], monthly[i]
	}

	data := pageData{
		Activities:   options,
		Seq:          handler.session.Seq(),
		KeyRequired:  handler.keyRequired,
		Daily:        handler.activities.Daily(),
		Monthly:      monthly,
		Hours:        handler.hours.Rows(),
		ShowDownload: handler.session.TakeDownloadReady(),
		ExportFile:   tracker.ExportFileName,
	}

	var buf bytes.Buffer
	if err := handler.tmpl.Execute(&buf, data); err != nil {
		log.Errorf("render index page: %s", err)
		http.Error(w, "render error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytesOK(w, pkg.ContentType.HTML, buf.Bytes())
}

func (handler *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteTextResponseOK(w, "I'm OK, thanks ;)")
}

func hourLabel(hour int) string {
	if hour == score.NoHour {
		return "-"
	}
	return time.Date(0, 1, 1, hour, 0, 0, 0, time.UTC).Format("15:00")
}
