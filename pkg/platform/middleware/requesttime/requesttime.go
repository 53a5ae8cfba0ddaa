// Package requesttime pins one "now" per request so step completion times,
// audit rows and log lines written by the same request agree.
package requesttime

import (
	"net/http"
	"time"

	"propex/pkg/requestcontext"
)

// Middleware captures the current time at the start of the request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now().UTC())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
