package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/2beens/dailyscore/internal/middleware"
	"github.com/2beens/dailyscore/pkg"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestSubmitKey(t *testing.T) {
	keyHash, err := pkg.HashPasswordWithCost("open sesame", bcrypt.MinCost)
	require.NoError(t, err)

	testCases := []struct {
		name               string
		keyHash            string
		header             string
		formKey            string
		expectedStatusCode int
	}{
		{
			name:               "CheckDisabled",
			keyHash:            "",
			expectedStatusCode: http.StatusOK,
		},
		{
			name:               "MissingKey",
			keyHash:            keyHash,
			expectedStatusCode: http.StatusUnauthorized,
		},
		{
			name:               "ValidHeaderKey",
			keyHash:            keyHash,
			header:             "open sesame",
			expectedStatusCode: http.StatusOK,
		},
		{
			name:               "InvalidHeaderKey",
			keyHash:            keyHash,
			header:             "open barley",
			expectedStatusCode: http.StatusUnauthorized,
		},
		{
			name:               "ValidFormKey",
			keyHash:            keyHash,
			formKey:            "open sesame",
			expectedStatusCode: http.StatusOK,
		},
		{
			name:               "InvalidFormKey",
			keyHash:            keyHash,
			formKey:            "sesame",
			expectedStatusCode: http.StatusUnauthorized,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			form := url.Values{"activity": {"太极5m"}}
			if tc.formKey != "" {
				form.Set("key", tc.formKey)
			}
			req := httptest.NewRequest(http.MethodPost, "/activities/submit", strings.NewReader(form.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			if tc.header != "" {
				req.Header.Set(middleware.SubmitKeyHeader, tc.header)
			}

			var called bool
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				// the form is still readable behind the middleware
				assert.Equal(t, "太极5m", r.FormValue("activity"))
			})

			rr := httptest.NewRecorder()
			middleware.SubmitKey(tc.keyHash)(next).ServeHTTP(rr, req)

			assert.Equal(t, tc.expectedStatusCode, rr.Code)
			assert.Equal(t, tc.expectedStatusCode == http.StatusOK, called)
		})
	}
}
