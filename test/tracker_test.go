package test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2beens/dailyscore/internal/middleware"
	"github.com/2beens/dailyscore/internal/tracker"
)

var seqInput = regexp.MustCompile(`name="seq" value="(\d+)"`)

func (s *IntegrationTestSuite) get(ctx context.Context, endpoint, path string) (int, string) {
	t := s.T()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+path, nil)
	require.NoError(t, err)

	resp, err := s.httpClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func (s *IntegrationTestSuite) postForm(ctx context.Context, path string, form url.Values, withKey bool) *http.Response {
	t := s.T()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, serverEndpoint+path, strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if withKey {
		req.Header.Set(middleware.SubmitKeyHeader, testSubmitKey)
	}

	resp, err := s.httpClient.Do(req)
	require.NoError(t, err)
	_, _ = io.Copy(io.Discard, resp.Body)
	require.NoError(t, resp.Body.Close())
	return resp
}

// currentSeq reads the submit sequence the page hands out with its form.
func (s *IntegrationTestSuite) currentSeq(ctx context.Context) string {
	status, page := s.get(ctx, serverEndpoint, "/")
	require.Equal(s.T(), http.StatusOK, status)
	m := seqInput.FindStringSubmatch(page)
	require.Len(s.T(), m, 2, "seq input missing from page")
	return m[1]
}

func (s *IntegrationTestSuite) TestTracker_SubmitEndDayExport() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	t := s.T()

	seq := s.currentSeq(ctx)
	form := url.Values{"seq": {seq}, "activity": {"静坐30m", "太极5m"}}

	resp := s.postForm(ctx, "/activities/submit", form, false)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = s.postForm(ctx, "/activities/submit", form, true)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	// the same form posted again is ignored
	resp = s.postForm(ctx, "/activities/submit", form, true)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	status, body := s.get(ctx, serverEndpoint, "/api/daily")
	require.Equal(t, http.StatusOK, status)
	var daily tracker.DailyView
	require.NoError(t, json.Unmarshal([]byte(body), &daily))
	assert.Equal(t, "2024-03-10", daily.Date)
	assert.Equal(t, 0.188, daily.Total)
	assert.Len(t, daily.Entries, 2)

	resp = s.postForm(ctx, "/day/end", url.Values{}, true)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	status, body = s.get(ctx, serverEndpoint, "/monthly/export")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Date,Total Exercise Score\n2024-03-10,0.188\n", body)

	monthly, err := os.ReadFile(s.cfg.MonthlyPath())
	require.NoError(t, err)
	assert.Equal(t, body, string(monthly))

	status, page := s.get(ctx, serverEndpoint, "/")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, page, "Download "+tracker.ExportFileName)

	nextSeq, err := strconv.Atoi(s.currentSeq(ctx))
	require.NoError(t, err)
	prevSeq, err := strconv.Atoi(seq)
	require.NoError(t, err)
	assert.Greater(t, nextSeq, prevSeq)
}

func (s *IntegrationTestSuite) TestHours_UpdateAndTrend() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	t := s.T()

	resp := s.postForm(ctx, "/hours/2024-03-10", url.Values{"hours": {"6"}}, true)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	status, body := s.get(ctx, serverEndpoint, "/api/hours")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `{"date":"2024-03-10","hours":"6","score":2}`)

	// a single day is not enough for a trend line
	status, _ = s.get(ctx, serverEndpoint, "/api/trend")
	assert.Equal(t, http.StatusUnprocessableEntity, status)
}
