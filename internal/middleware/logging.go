package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/splitit-app/splitit/internal/metrics"
)

// Logging logs every request and feeds the request duration histogram. The
// metric is labeled with the chi route pattern, not the raw path, so
// /api/splits/{id}/settle stays one series regardless of the split ID.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		duration := time.Since(start)
		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		metrics.RequestDuration.WithLabelValues(r.Method, route, strconv.Itoa(status)).Observe(duration.Seconds())

		logFn := slog.Info
		if status >= http.StatusInternalServerError {
			logFn = slog.Error
		} else if status >= http.StatusBadRequest {
			logFn = slog.Warn
		}
		logFn("request",
			"method", r.Method,
			"route", route,
			"status", status,
			"user_id", GetUserID(r.Context()),
			"duration_ms", duration.Milliseconds(),
		)
	})
}
