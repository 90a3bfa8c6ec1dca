package middleware

import (
	"net/http"
	"time"

	"github.com/raunelaunch/fooddiscovery/internal/infrastructure/observability"
	"github.com/rs/zerolog"
)

// LoggingMiddleware writes one access log line per request. Location streams
// are logged when they close, so their duration is the stream lifetime.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &loggingResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		logger := observability.LoggerFromContext(r.Context())
		var event *zerolog.Event
		switch {
		case rw.statusCode >= http.StatusInternalServerError:
			event = logger.Error()
		case rw.statusCode >= http.StatusBadRequest:
			event = logger.Warn()
		default:
			event = logger.Info()
		}

		if clientID := r.URL.Query().Get("client_id"); clientID != "" {
			event = event.Str("client_id", clientID)
		}
		if isEventStream(r) {
			event = event.Bool("stream", true)
		}

		event.
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("route", routeOf(r)).
			Int("status", rw.statusCode).
			Int("bytes", rw.bytes).
			Dur("duration", time.Since(start)).
			Msg("HTTP request")
	})
}

// routeOf returns the matched mux pattern, or the raw path when none matched.
func routeOf(r *http.Request) string {
	if r.Pattern != "" {
		return r.Pattern
	}
	return r.URL.Path
}

// loggingResponseWriter captures the status code and body size
type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
	bytes      int
}

func (rw *loggingResponseWriter) WriteHeader(statusCode int) {
	rw.statusCode = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
}

func (rw *loggingResponseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.bytes += n
	return n, err
}

func (rw *loggingResponseWriter) Flush() {
	if flusher, ok := rw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}
