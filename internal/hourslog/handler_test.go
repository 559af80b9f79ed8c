package hourslog_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/2beens/dailyscore/internal/history"
	"github.com/2beens/dailyscore/internal/hourslog"
	"github.com/2beens/dailyscore/internal/trend"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (*mux.Router, *hourslog.Service) {
	t.Helper()
	s, _ := newService(t, filepath.Join(t.TempDir(), "hours_data.csv"), &fakeClock{now: january(4)})
	r := mux.NewRouter()
	hourslog.NewHandler(s).SetupRoutes(r)
	return r, s
}

func TestHandler_FormUpdate(t *testing.T) {
	r, s := newTestRouter(t)

	form := url.Values{"hours": {"6"}}
	req := httptest.NewRequest(http.MethodPost, "/hours/2024-01-04", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, 2.0, s.Today().Score)
}

func TestHandler_JSONUpdateAndList(t *testing.T) {
	r, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPut, "/api/hours/2024-01-02", strings.NewReader(`{"hours":"1.5"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"date":"2024-01-02","hours":"1.5","score":0.5}`, rec.Body.String())

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/hours", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var rows []history.DayTotal
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	assert.Equal(t, []string{"2024-01-04", "2024-01-03", "2024-01-02"}, dates(rows))
	assert.Equal(t, 0.5, rows[2].Score)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/trend", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var analysis trend.Analysis
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &analysis))
	assert.Equal(t, []string{"2024-01-02", "2024-01-03", "2024-01-04"}, analysis.Dates)
	assert.NotNil(t, analysis.Linear)
	assert.Nil(t, analysis.Polynomial)
}

func TestHandler_BadRequests(t *testing.T) {
	r, _ := newTestRouter(t)

	cases := []struct {
		name        string
		method      string
		path        string
		contentType string
		body        string
	}{
		{"invalid date", http.MethodPut, "/api/hours/yesterday", "application/json", `{"hours":"1"}`},
		{"future date", http.MethodPut, "/api/hours/2024-01-09", "application/json", `{"hours":"1"}`},
		{"wrong content type", http.MethodPut, "/api/hours/2024-01-02", "text/plain", `{"hours":"1"}`},
		{"broken json", http.MethodPut, "/api/hours/2024-01-02", "application/json", `{"hours":`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body))
			req.Header.Set("Content-Type", tc.contentType)
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestHandler_TrendNeedsTwoDays(t *testing.T) {
	s, _ := newService(t, filepath.Join(t.TempDir(), "hours_data.csv"), &fakeClock{now: january(1)})
	r := mux.NewRouter()
	hourslog.NewHandler(s).SetupRoutes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/trend", nil))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
