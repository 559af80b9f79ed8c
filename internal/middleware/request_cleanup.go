package middleware

import (
	"io"
	"net/http"

	"github.com/gorilla/mux"
)

// forms and hours payloads are tiny, anything beyond this is not worth reading
const maxDrainBytes = 64 << 10

// DrainAndCloseRequest drains what the handler left of the request body, up to
// maxDrainBytes, and closes it so the connection can be reused.
func DrainAndCloseRequest() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r)
			if r.Body == nil || r.Body == http.NoBody {
				return
			}
			_, _ = io.CopyN(io.Discard, r.Body, maxDrainBytes)
			_ = r.Body.Close()
		})
	}
}
