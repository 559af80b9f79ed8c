package middleware

import (
	"net/http"

	"github.com/2beens/dailyscore/internal/telemetry/tracing"
	"github.com/2beens/dailyscore/pkg"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
)

const SubmitKeyHeader = "X-Submit-Key"

// SubmitKey lets a request through only when it carries the key matching the
// bcrypt hash, in the X-Submit-Key header or the "key" form field.
// An empty hash turns the check off.
func SubmitKey(keyHash string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if keyHash == "" {
				next.ServeHTTP(w, r)
				return
			}

			_, span := tracing.GlobalTracer.Start(r.Context(), "middleware.submitKey")
			defer span.End()

			key := r.Header.Get(SubmitKeyHeader)
			if key == "" {
				key = r.FormValue("key")
			}

			if key == "" || !pkg.CheckPasswordHash(key, keyHash) {
				reqIp, _ := pkg.ReadUserIP(r)
				log.Warnf("[submit key] unauthorized %s %s from %s", r.Method, r.URL.Path, reqIp)
				http.Error(w, "no can do", http.StatusUnauthorized)
				span.SetStatus(codes.Error, "invalid-submit-key")
				return
			}

			span.SetStatus(codes.Ok, "ok")
			next.ServeHTTP(w, r)
		})
	}
}
