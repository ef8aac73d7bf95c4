package middlewares

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"smartexpense/internal/utils"
)

// Instrument records request count, latency and response size. Paths are
// labelled by route template so ids do not explode label cardinality.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		utils.InFlightRequests.Inc()
		defer utils.InFlightRequests.Dec()

		lrw := &loggingResponseWriter{ResponseWriter: w}
		next.ServeHTTP(lrw, r)

		statusCode := strconv.Itoa(lrw.status())
		path := routeTemplate(r)
		method := r.Method

		utils.HTTPRequestsTotal.WithLabelValues(method, path, statusCode).Inc()
		utils.HTTPRequestDurationSeconds.WithLabelValues(method, path, statusCode).Observe(time.Since(start).Seconds())
		utils.HTTPResponseSizeBytes.WithLabelValues(method, path, statusCode).Observe(float64(lrw.responseSize))
	})
}

func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}

// loggingResponseWriter captures the status code and response size.
type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode   int
	responseSize int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	if lrw.statusCode == 0 {
		lrw.statusCode = code
	}
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Write(data []byte) (int, error) {
	if lrw.statusCode == 0 {
		lrw.statusCode = http.StatusOK
	}
	n, err := lrw.ResponseWriter.Write(data)
	lrw.responseSize += n
	return n, err
}

func (lrw *loggingResponseWriter) status() int {
	if lrw.statusCode == 0 {
		return http.StatusOK
	}
	return lrw.statusCode
}
