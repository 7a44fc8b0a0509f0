package metrics

import (
	"net/http"
	"time"
)

// unmatchedRoute labels requests no mux pattern handled.
const unmatchedRoute = "unmatched"

// statusRecorder remembers the status sent downstream, including the
// implicit 200 of a bare Write.
type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func newStatusRecorder(w http.ResponseWriter) *statusRecorder {
	return &statusRecorder{ResponseWriter: w, status: http.StatusOK}
}

func (rw *statusRecorder) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.status = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *statusRecorder) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	return rw.ResponseWriter.Write(b)
}

// route returns the mux pattern that served r. Raw paths carry symbols
// and would blow up label cardinality.
func route(r *http.Request) string {
	if r.Pattern != "" {
		return r.Pattern
	}
	return unmatchedRoute
}

// HTTPMiddleware records request counts, latency and in-flight requests
// per route. Wrap the mux, not individual handlers.
func HTTPMiddleware(reg *Registry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reg.InFlightInc()
			defer reg.InFlightDec()

			start := time.Now()
			rw := newStatusRecorder(w)
			next.ServeHTTP(rw, r)

			reg.RecordRequest(r.Method, route(r), rw.status, time.Since(start).Seconds())
		})
	}
}
