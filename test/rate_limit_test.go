package test

import (
	"context"
	"net/http"
	"net/url"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *IntegrationTestSuite) TestWriteEndpoints_RateLimited() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	t := s.T()

	// requests without the key still count, the limiter runs before the key check
	for i := 0; i < testRateLimitPerM; i++ {
		resp := s.postForm(ctx, "/day/end", url.Values{}, false)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode, "request %d", i)
	}

	resp := s.postForm(ctx, "/day/end", url.Values{}, true)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)

	// reads are not limited
	status, _ := s.get(ctx, serverEndpoint, "/api/daily")
	assert.Equal(t, http.StatusOK, status)

	keys, err := s.redis.Keys(ctx, "rate:write*").Result()
	require.NoError(t, err)
	assert.NotEmpty(t, keys)
}

func (s *IntegrationTestSuite) TestMetricsEndpoint() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	t := s.T()

	status, _ := s.get(ctx, serverEndpoint, "/health")
	require.Equal(t, http.StatusOK, status)

	status, body := s.get(ctx, metricsEndpoint, "/metrics")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "dailyscore_main_life_signal 1")
	assert.Contains(t, body, "dailyscore_main_request_duration_seconds")
	assert.Contains(t, body, "go_goroutines")
}
